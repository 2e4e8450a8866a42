package commercetools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Nuvei/nuvei-plugin-commerce-tools/internal/domain"
)

// Config carries the project credentials for one commercetools project.
type Config struct {
	AuthURL      string
	APIURL       string
	ProjectKey   string
	ClientID     string
	ClientSecret string
}

// Client issues authenticated JSON requests against a single commercetools
// project. One client is shared by all requests; the lazily fetched
// client-credentials token is the only mutable state and is guarded by mu.
type Client struct {
	httpClient   *http.Client
	authURL      string
	apiURL       string
	projectKey   string
	clientID     string
	clientSecret string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func New(cfg Config) (*Client, error) {
	if cfg.AuthURL == "" || cfg.APIURL == "" {
		return nil, errors.New("commercetools: auth and api URLs are required")
	}
	if cfg.ProjectKey == "" {
		return nil, errors.New("commercetools: project key is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("commercetools: client credentials are required")
	}
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		authURL:      cfg.AuthURL,
		apiURL:       cfg.APIURL,
		projectKey:   cfg.ProjectKey,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}, nil
}

// cartExpand is carried on every cart and order read/write so discounts and
// payments come back expanded.
var cartExpand = []string{
	"lineItems[*].discountedPrice.includedDiscounts[*].discount",
	"discountCodes[*].discountCode",
	"paymentInfo.payments[*]",
}

func expandQuery() url.Values {
	q := url.Values{}
	for _, e := range cartExpand {
		q.Add("expand", e)
	}
	return q
}

// do issues one API request against the project endpoint. A nil out discards
// the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/%s%s", c.apiURL, c.projectKey, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("commercetools request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}

// decodeError maps a non-2xx response onto the domain error taxonomy. Version
// conflicts become their own retryable kind so callers can branch on them.
func decodeError(status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	message := body.Message
	if message == "" {
		message = http.StatusText(status)
	}

	ext := domain.ExternalError{
		StatusCode: status,
		Message:    message,
		Body:       raw,
	}
	if len(body.Errors) > 0 {
		ext.ErrorCode = body.Errors[0].Code
	}

	if status == http.StatusConflict {
		conflict := &domain.ConcurrentModificationError{ExternalError: ext}
		if len(body.Errors) > 0 {
			conflict.CurrentVersion = body.Errors[0].CurrentVersion
		}
		return conflict
	}
	return &ext
}
