package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"arlingtonfleet/fleetmaint/internal/constants"
)

// ErrNotSignedIn is the single failure condition of the identity layer:
// no usable account or credentials. Its text is surfaced to the user.
var ErrNotSignedIn = errors.New(constants.MsgNoAccount)

// DefaultScopes are the document-store permissions requested on every
// token acquisition.
var DefaultScopes = []string{
	"Files.Read.All",
	"Sites.Read.All",
	"Files.ReadWrite.All",
	"Sites.ReadWrite.All",
}

// TokenSource supplies a bearer token for document-store calls. Tokens are
// acquired on demand; implementations handle their own caching.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ClientCredentials acquires tokens from the identity provider's token
// endpoint with the client-credentials grant, caching each token until
// shortly before it expires.
type ClientCredentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Client       *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewClientCredentials builds a token source for the given endpoint. Empty
// credentials are allowed at construction; Token then fails with
// ErrNotSignedIn, which callers surface as-is.
func NewClientCredentials(tokenURL, clientID, clientSecret string) *ClientCredentials {
	return &ClientCredentials{
		TokenURL:     tokenURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       DefaultScopes,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns the cached token, refreshing it when it is within 30s of
// expiry. The identity provider's own caching makes the per-call refresh
// cheap; ours only avoids the round trip.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiry.Add(-30*time.Second)) {
		return c.token, nil
	}

	if c.TokenURL == "" || c.ClientID == "" {
		return "", ErrNotSignedIn
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("scope", strings.Join(c.Scopes, " "))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", constants.MsgNoAccount, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%s: token endpoint returned %d: %s",
			constants.MsgNoAccount, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", ErrNotSignedIn
	}

	c.token = tr.AccessToken
	c.expiry = tokenExpiry(tr)
	return c.token, nil
}

// tokenExpiry schedules the refresh from the JWT exp claim when the token
// is a parseable JWT, falling back to expires_in. The signature is the
// provider's business; we only read the clock out of it.
func tokenExpiry(tr tokenResponse) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tr.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if tr.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	// Unknown lifetime: refresh on next call.
	return time.Now()
}

// StaticTokenSource returns a fixed token; used in tests and for
// pre-acquired tokens handed in from an interactive sign-in.
type StaticTokenSource string

func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrNotSignedIn
	}
	return string(s), nil
}
