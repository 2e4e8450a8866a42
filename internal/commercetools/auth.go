package commercetools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
}

// accessToken returns the cached client-credentials token, fetching a fresh
// one when absent or about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-30*time.Second)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", "manage_project:"+c.projectKey)

	tok, err := c.tokenRequest(ctx, "/oauth/token", form)
	if err != nil {
		return "", err
	}
	c.token = tok.AccessToken
	c.tokenExpiry = tok.ExpiresAt
	return c.token, nil
}

// AnonymousToken issues a checkout token bound to the given anonymous
// identifier. The platform correlates the identifier with carts and orders
// created under it.
func (c *Client) AnonymousToken(ctx context.Context, anonymousID string) (domain.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", "manage_my_orders:"+c.projectKey+" manage_my_payments:"+c.projectKey)
	form.Set("anonymous_id", anonymousID)

	return c.tokenRequest(ctx, "/oauth/"+c.projectKey+"/anonymous/token", form)
}

// RefreshToken exchanges a refresh token for a new checkout token. The
// anonymous identifier stays unchanged.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (domain.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	tok, err := c.tokenRequest(ctx, "/oauth/token", form)
	if err != nil {
		return domain.Token{}, err
	}
	// The refresh grant does not return a new refresh token; keep the old one.
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	return tok, nil
}

func (c *Client) tokenRequest(ctx context.Context, path string, form url.Values) (domain.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Token{}, fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Token{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Token{}, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return domain.Token{}, decodeError(resp.StatusCode, raw)
	}

	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return domain.Token{}, fmt.Errorf("decode token response: %w", err)
	}
	return domain.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
	}, nil
}
