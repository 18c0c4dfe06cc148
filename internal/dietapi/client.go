// Package dietapi reads diet plans from the health backend used by the mobile app.
package dietapi

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/dietplan"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoPlan is returned when the backend has no diet plan for the user.
var ErrNoPlan = errors.New("backend has no diet plan for user")

const (
	tokenAudience = "/v1/diet-plans/"
	tokenTTL      = 5 * time.Minute
	maxBodyBytes  = 2 << 20
)

// Client is an interface for the diet backend.
type Client interface {
	FetchDietPlan(ctx context.Context, userID string) (dietplan.Payload, error)
}

// dietClient is the concrete implementation of the backend client.
type dietClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new backend client.
func NewClient(cfg *config.Config) Client {
	return &dietClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.DietAPIURL, "/"),
		apiKey:     cfg.DietAPIKey,
	}
}

// FetchDietPlan fetches the current plan of a user and decodes it with
// dietplan.ParsePayload, so missing profile fields take their defaults.
func (c *dietClient) FetchDietPlan(ctx context.Context, userID string) (dietplan.Payload, error) {
	token, err := c.createServiceToken()
	if err != nil {
		return dietplan.Payload{}, fmt.Errorf("failed to create service token: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/users/%s/diet-plan", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return dietplan.Payload{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dietplan.Payload{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return dietplan.Payload{}, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return dietplan.Payload{}, ErrNoPlan
	case resp.StatusCode != http.StatusOK:
		return dietplan.Payload{}, fmt.Errorf("diet api error: status %d, body: %s", resp.StatusCode, body)
	}

	payload, err := dietplan.ParsePayload(body)
	if err != nil {
		return dietplan.Payload{}, err
	}
	if strings.TrimSpace(payload.DietPlan) == "" {
		return dietplan.Payload{}, ErrNoPlan
	}
	return payload, nil
}

// createServiceToken generates a short-lived HS256 JWT from the "{id}:{hexsecret}" key.
func (c *dietClient) createServiceToken() (string, error) {
	id, secretHex, ok := strings.Cut(c.apiKey, ":")
	if !ok {
		return "", fmt.Errorf("invalid api key format: expected id:secret")
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
		"aud": tokenAudience,
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
