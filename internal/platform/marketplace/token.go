package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mateus-bonette00/qota-store/internal/config"
)

// TokenSource yields a bearer token for marketplace calls. The auth
// handshake behind it is opaque to the rest of the system.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// lwaTokenSource exchanges a long-lived refresh token for short-lived access
// tokens, caching each until shortly before expiry.
type lwaTokenSource struct {
	authURL      string
	refreshToken string
	clientID     string
	clientSecret string
	http         *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewTokenSource builds the refresh-token exchanging source.
func NewTokenSource(cfg *config.MarketplaceConfig) TokenSource {
	return &lwaTokenSource{
		authURL:      cfg.AuthURL,
		refreshToken: cfg.RefreshToken,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *lwaTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expiry) {
		return s.token, nil
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {s.refreshToken},
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", &UpstreamError{Op: "token", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Op: "token", Err: fmt.Errorf("auth endpoint returned status %d", resp.StatusCode)}
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", &UpstreamError{Op: "token", Err: fmt.Errorf("auth endpoint returned empty token")}
	}

	s.token = body.AccessToken
	// refresh one minute early so in-flight requests never carry a dead token
	s.expiry = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - time.Minute)

	return s.token, nil
}

// StaticTokenSource returns a fixed token, for tests and local development.
func StaticTokenSource(token string) TokenSource {
	return staticToken(token)
}

type staticToken string

func (t staticToken) Token(context.Context) (string, error) { return string(t), nil }
