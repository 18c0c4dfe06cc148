package importer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-diet-planner/internal/dietplan"
	"ai-diet-planner/internal/llm"
	"ai-diet-planner/internal/shared"
)

const planPage = `<html>
<head><title>My Week Plan</title><script>track()</script></head>
<body>
	<nav>Home | Plans</nav>
	<h2>Weekly plan</h2>
	<h3>Day 1 - High Protein Start</h3>
	<p><strong>Breakfast:</strong> Oatmeal with almonds (320 kcal, 12g protein)</p>
	<p><em>Medical Note</em>: Slow carbs.</p>
	<p><b>Lunch</b>: Dal and rice<br>(500 kcal)</p>
	<div class="ads">Buy now!</div>
	<h3>Day 2 - Light</h3>
	<ul><li><strong>Dinner</strong>: Grilled fish (400 kcal)</li></ul>
	<footer>Copyright</footer>
</body>
</html>`

type MockTextGenerator struct {
	Response string
	Err      error
	Calls    int
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.Calls++
	if m.Err != nil {
		return llm.ContentResponse{}, m.Err
	}
	return llm.ContentResponse{Content: m.Response, Usage: shared.TokenUsage{PromptTokens: 5, CompletionTokens: 7}}, nil
}

func TestFromHTML(t *testing.T) {
	text, title, err := FromHTML(strings.NewReader(planPage))
	if err != nil {
		t.Fatalf("FromHTML failed: %v", err)
	}

	if title != "My Week Plan" {
		t.Errorf("Expected title 'My Week Plan', got '%s'", title)
	}
	for _, want := range []string{
		"### Day 1 - High Protein Start",
		"**Breakfast**: Oatmeal with almonds (320 kcal, 12g protein)",
		"*Medical Note*: Slow carbs.",
		"**Lunch**: Dal and rice",
		"### Day 2 - Light",
		"**Dinner**: Grilled fish (400 kcal)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, text)
		}
	}
	for _, noise := range []string{"track()", "Buy now!", "Copyright", "Home | Plans"} {
		if strings.Contains(text, noise) {
			t.Errorf("Expected %q to be stripped, got:\n%s", noise, text)
		}
	}

	e := dietplan.NewExtractor()
	breakfast := e.Meal(text, 1, dietplan.Breakfast)
	if breakfast.Calories != 320 || breakfast.ProteinGrams != 12 {
		t.Errorf("Expected imported breakfast to extract, got %+v", breakfast)
	}
	if breakfast.MedicalNote != "Slow carbs." {
		t.Errorf("Expected imported medical note, got '%s'", breakfast.MedicalNote)
	}
}

func TestImportURL(t *testing.T) {
	ctx := context.Background()

	t.Run("HTML", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(planPage))
		}))
		defer ts.Close()

		gen := &MockTextGenerator{}
		result, err := NewImporter(gen, AllowPrivateHosts()).ImportURL(ctx, ts.URL)
		if err != nil {
			t.Fatalf("ImportURL failed: %v", err)
		}
		if len(dietplan.Sections(result.RawText)) != 2 {
			t.Errorf("Expected 2 day sections, got:\n%s", result.RawText)
		}
		if gen.Calls != 0 || result.Meta != nil {
			t.Error("Expected no LLM call for a page with day headings")
		}
	})

	t.Run("PlainTextPassThrough", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("### Day 1 - Plain\r\n\r\n**Breakfast**: Eggs (150 kcal)\r\n"))
		}))
		defer ts.Close()

		result, err := NewImporter(nil, AllowPrivateHosts()).ImportURL(ctx, ts.URL)
		if err != nil {
			t.Fatalf("ImportURL failed: %v", err)
		}
		if result.RawText != "### Day 1 - Plain\n**Breakfast**: Eggs (150 kcal)" {
			t.Errorf("Unexpected text %q", result.RawText)
		}
	})

	t.Run("ReformatsUnstructuredPage", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><body><p>Monday: eggs for breakfast</p></body></html>"))
		}))
		defer ts.Close()

		gen := &MockTextGenerator{Response: "```\n### Day 1 - Monday\n**Breakfast**: Eggs\n```"}
		result, err := NewImporter(gen, AllowPrivateHosts()).ImportURL(ctx, ts.URL)
		if err != nil {
			t.Fatalf("ImportURL failed: %v", err)
		}
		if result.RawText != "### Day 1 - Monday\n**Breakfast**: Eggs" {
			t.Errorf("Unexpected text %q", result.RawText)
		}
		if result.Meta == nil || result.Meta.AgentName != "Reformatter" {
			t.Errorf("Expected reformatter meta, got %+v", result.Meta)
		}
	})

	t.Run("NoSectionsWithoutGenerator", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><body><p>Nothing here</p></body></html>"))
		}))
		defer ts.Close()

		if _, err := NewImporter(nil, AllowPrivateHosts()).ImportURL(ctx, ts.URL); err == nil {
			t.Fatal("Expected an error for a page without day sections")
		}
	})

	t.Run("GeneratorError", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><body><p>Nothing here</p></body></html>"))
		}))
		defer ts.Close()

		gen := &MockTextGenerator{Err: errors.New("boom")}
		if _, err := NewImporter(gen, AllowPrivateHosts()).ImportURL(ctx, ts.URL); err == nil {
			t.Fatal("Expected the generator error to surface")
		}
	})

	t.Run("BadStatus", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		if _, err := NewImporter(nil, AllowPrivateHosts()).ImportURL(ctx, ts.URL); err == nil {
			t.Fatal("Expected an error for a 404 page")
		}
	})

	t.Run("RefusesLoopbackByDefault", func(t *testing.T) {
		hits := 0
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("### Day 1 - Internal\n**Breakfast**: Eggs"))
		}))
		defer ts.Close()

		_, err := NewImporter(nil).ImportURL(ctx, ts.URL)
		if !errors.Is(err, ErrBlockedHost) {
			t.Fatalf("Expected ErrBlockedHost, got %v", err)
		}
		if hits != 0 {
			t.Errorf("Expected no request to reach the server, got %d", hits)
		}
	})

	t.Run("RefusesLinkLocalMetadata", func(t *testing.T) {
		_, err := NewImporter(nil).ImportURL(ctx, "http://169.254.169.254/latest/meta-data/")
		if !errors.Is(err, ErrBlockedHost) {
			t.Fatalf("Expected ErrBlockedHost, got %v", err)
		}
	})
}

func TestIsPublicIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"8.8.8.8", true},
		{"2606:4700:4700::1111", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.9", false},
		{"192.168.1.10", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"0.0.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := isPublicIP(net.ParseIP(tt.ip)); got != tt.want {
				t.Errorf("isPublicIP(%s) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}
