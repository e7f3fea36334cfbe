package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/nobel/internal/model"
)

// HTTPClient implements PrizesClient using the HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithBasicAuth sets the credentials sent on every request.
func WithBasicAuth(username, password string) Option {
	return func(c *HTTPClient) {
		c.username = username
		c.password = password
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8001").
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Service info ---

func (c *HTTPClient) Status(ctx context.Context) (*model.Status, error) {
	var st model.Status
	if err := c.doJSON(ctx, http.MethodGet, "/", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *HTTPClient) SecurityInfo(ctx context.Context) (*model.SecurityInfo, error) {
	var info model.SecurityInfo
	if err := c.doJSON(ctx, http.MethodGet, "/security/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- Queries ---

func (c *HTTPClient) ListPrizes(ctx context.Context) ([]*model.Prize, error) {
	return c.prizes(ctx, "/prizes")
}

func (c *HTTPClient) PrizesByYear(ctx context.Context, year string) ([]*model.Prize, error) {
	return c.prizes(ctx, "/prizes/year/"+url.PathEscape(year))
}

func (c *HTTPClient) PrizesByCategory(ctx context.Context, category string) ([]*model.Prize, error) {
	return c.prizes(ctx, "/prizes/category/"+url.PathEscape(category))
}

func (c *HTTPClient) Motivation(ctx context.Context, year, category string) (string, error) {
	var text string
	if err := c.doJSON(ctx, http.MethodGet, "/prizes/motivation/"+prizePath(year, category), nil, &text); err != nil {
		return "", err
	}
	return text, nil
}

func (c *HTTPClient) Laureates(ctx context.Context, year, category string) ([]model.Laureate, error) {
	var laureates []model.Laureate
	if err := c.doJSON(ctx, http.MethodGet, "/laureates/"+prizePath(year, category), nil, &laureates); err != nil {
		return nil, err
	}
	return laureates, nil
}

func (c *HTTPClient) SearchLaureate(ctx context.Context, firstname, surname string) ([]*model.Prize, error) {
	q := url.Values{}
	q.Set("firstname", firstname)
	q.Set("surname", surname)
	return c.prizes(ctx, "/laureates/search?"+q.Encode())
}

// --- Mutations ---

func (c *HTTPClient) CreatePrize(ctx context.Context, prize *model.Prize) (*model.Prize, error) {
	var created model.Prize
	if err := c.doJSON(ctx, http.MethodPost, "/prizes", prize, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) UpdatePrize(ctx context.Context, year, category string, update *model.PrizeUpdate) (*model.Prize, error) {
	var updated model.Prize
	if err := c.doJSON(ctx, http.MethodPut, "/prizes/"+prizePath(year, category), update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *HTTPClient) DeletePrize(ctx context.Context, year, category string) error {
	return c.doJSON(ctx, http.MethodDelete, "/prizes/"+prizePath(year, category), nil, nil)
}

// --- Journal ---

func (c *HTTPClient) GetEvents(ctx context.Context, year, category string) ([]*model.Event, error) {
	var evts []*model.Event
	if err := c.doJSON(ctx, http.MethodGet, "/events/"+prizePath(year, category), nil, &evts); err != nil {
		return nil, err
	}
	return evts, nil
}

// --- internal helpers ---

func (c *HTTPClient) prizes(ctx context.Context, path string) ([]*model.Prize, error) {
	var prizes []*model.Prize
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &prizes); err != nil {
		return nil, err
	}
	return prizes, nil
}

func prizePath(year, category string) string {
	return url.PathEscape(year) + "/" + url.PathEscape(category)
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content: success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
