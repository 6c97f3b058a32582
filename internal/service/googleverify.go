package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"myfuture/api/internal/auth"
)

// GoogleTokenVerifier validates Google ID tokens against the tokeninfo
// endpoint, which checks signature, issuer and expiry for us. Audience
// is checked here against the configured client ID. Every failure mode
// wraps auth.ErrInvalidExternalToken so the caller can't end up with a
// partially linked account.
type GoogleTokenVerifier struct {
	Endpoint string
	ClientID string
	Client   *http.Client
}

func NewGoogleTokenVerifier(endpoint, clientID string) *GoogleTokenVerifier {
	return &GoogleTokenVerifier{
		Endpoint: endpoint,
		ClientID: clientID,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type tokeninfoResponse struct {
	Email         string `json:"email"`
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	Aud           string `json:"aud"`
	EmailVerified any    `json:"email_verified"`
}

func (g *GoogleTokenVerifier) Verify(ctx context.Context, idToken string) (*auth.GoogleClaims, error) {
	if g.ClientID == "" {
		return nil, fmt.Errorf("%w: google login is not configured", auth.ErrInvalidExternalToken)
	}

	reqURL := g.Endpoint + "?id_token=" + url.QueryEscape(idToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrInvalidExternalToken, err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrInvalidExternalToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo returned %d", auth.ErrInvalidExternalToken, resp.StatusCode)
	}

	var info tokeninfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrInvalidExternalToken, err)
	}

	if info.Aud != g.ClientID {
		return nil, fmt.Errorf("%w: audience mismatch", auth.ErrInvalidExternalToken)
	}

	if info.Email == "" || info.Sub == "" {
		return nil, fmt.Errorf("%w: token missing email or subject", auth.ErrInvalidExternalToken)
	}

	return &auth.GoogleClaims{
		Email:         info.Email,
		Subject:       info.Sub,
		Name:          info.Name,
		EmailVerified: parseEmailVerified(info.EmailVerified),
	}, nil
}

// parseEmailVerified handles the endpoint returning the flag as either
// a bool or the strings "true"/"false". nil means Google didn't say.
func parseEmailVerified(v any) *bool {
	switch t := v.(type) {
	case bool:
		return &t
	case string:
		b := strings.EqualFold(t, "true")
		return &b
	default:
		return nil
	}
}
