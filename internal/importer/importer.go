// Package importer turns diet plans published on web pages back into plan text.
package importer

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html"
	"io"
	"mime"
	"net"
	"net/http"
	"regexp"
	"strings"
	"syscall"
	"text/template"
	"time"

	"ai-diet-planner/internal/dietplan"
	"ai-diet-planner/internal/llm"
	"ai-diet-planner/internal/shared"

	"github.com/PuerkitoBio/goquery"
)

//go:embed reformat_prompt.md
var reformatPrompt string

var reformatTemplate = template.Must(template.New("reformat").Parse(reformatPrompt))

const (
	maxPageBytes = 2 << 20
	fetchTimeout = 15 * time.Second
)

// ErrBlockedHost is returned when a URL resolves to a loopback, private or
// link-local address.
var ErrBlockedHost = errors.New("host is not allowed")

var dayHeadingText = regexp.MustCompile(`^Day \d+ - `)

// Result is an imported plan. Meta is only set when the page needed the LLM.
type Result struct {
	RawText string
	Title   string
	Meta    *shared.AgentMeta
}

// Importer fetches pages and extracts plan text from them.
type Importer struct {
	httpClient *http.Client
	textGen    llm.TextGenerator
}

// Option configures an Importer.
type Option func(*Importer)

// AllowPrivateHosts lets the importer fetch loopback and private addresses.
func AllowPrivateHosts() Option {
	return func(i *Importer) {
		i.httpClient = &http.Client{Timeout: fetchTimeout}
	}
}

// NewImporter creates an Importer. textGen may be nil, in which case pages
// without recognisable day headings are rejected instead of reformatted. Only
// public addresses are fetched unless AllowPrivateHosts is given.
func NewImporter(textGen llm.TextGenerator, opts ...Option) *Importer {
	i := &Importer{
		httpClient: newPublicClient(),
		textGen:    textGen,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// newPublicClient checks every dialled address, so redirects and DNS answers
// pointing inside the network are refused too.
func newPublicClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = (&net.Dialer{
		Timeout: 10 * time.Second,
		Control: publicOnly,
	}).DialContext
	return &http.Client{Timeout: fetchTimeout, Transport: transport}
}

func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublicIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedHost, host)
	}
	return nil
}

func isPublicIP(ip net.IP) bool {
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast())
}

// ImportURL fetches url and returns its plan text.
func (i *Importer) ImportURL(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxPageBytes)
	result := &Result{}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch mediaType {
	case "text/plain", "text/markdown", "text/x-markdown":
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read body: %w", err)
		}
		result.RawText = normalizeLines(string(data))
	default:
		text, title, err := FromHTML(body)
		if err != nil {
			return nil, err
		}
		result.RawText, result.Title = text, title
	}

	if len(dietplan.Sections(result.RawText)) > 0 {
		return result, nil
	}
	if i.textGen == nil {
		return nil, fmt.Errorf("no day sections found at %s", url)
	}
	return i.reformat(ctx, result)
}

func (i *Importer) reformat(ctx context.Context, result *Result) (*Result, error) {
	start := time.Now()

	var sb strings.Builder
	if err := reformatTemplate.Execute(&sb, result.RawText); err != nil {
		return nil, fmt.Errorf("failed to render reformat prompt: %w", err)
	}

	resp, err := i.textGen.GenerateContent(ctx, sb.String())
	if err != nil {
		return nil, fmt.Errorf("ai reformatting failed: %w", err)
	}

	meta := &shared.AgentMeta{AgentName: "Reformatter", Usage: resp.Usage, Latency: time.Since(start)}
	text := normalizeLines(llm.StripCodeFence(resp.Content))
	if len(dietplan.Sections(text)) == 0 {
		return &Result{Meta: meta}, fmt.Errorf("no day sections found after reformatting. Response: %s", resp.Content)
	}
	return &Result{RawText: text, Title: result.Title, Meta: meta}, nil
}

// FromHTML converts an HTML document back to plan markers: day headings become
// "### ", bold text "**...**" and italic text "*...*".
func FromHTML(r io.Reader) (text, title string, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, nav, footer, iframe, noscript, .ads, #ads").Remove()

	doc.Find("strong, b").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml(html.EscapeString(wrapMarker(s.Text(), "**")))
	})
	doc.Find("em, i").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml(html.EscapeString(wrapMarker(s.Text(), "*")))
	})

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		heading := strings.Trim(strings.TrimSpace(s.Text()), "*# ")
		if goquery.NodeName(s) == "h3" || dayHeadingText.MatchString(heading) {
			heading = "### " + heading
		}
		s.SetText(heading)
	})

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, section, article, h1, h2, h3, h4, h5, h6").AfterHtml("\n")

	return normalizeLines(doc.Find("body").Text()), title, nil
}

// wrapMarker wraps text in marker, keeping a trailing colon outside so that
// "<b>Lunch:</b>" becomes "**Lunch**:".
func wrapMarker(text, marker string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	suffix := ""
	if strings.HasSuffix(text, ":") {
		text = strings.TrimSpace(strings.TrimSuffix(text, ":"))
		suffix = ":"
	}
	return marker + text + marker + suffix
}

func normalizeLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
