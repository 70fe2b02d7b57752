package traces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"eudrgate/internal/domain"
)

// HTTPClient talks JSON to a registry adapter. It is stateless per call;
// callers own retry policy (Lookup is safe to retry, Submit is not).
type HTTPClient struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
}

// HTTPClientConfig carries the transport knobs the registry adapter needs.
type HTTPClientConfig struct {
	BaseURL     string
	BearerToken string
	Timeout     time.Duration
}

// NewHTTPClient builds a registry client against the given base URL.
func NewHTTPClient(cfg HTTPClientConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("registry base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL:     cfg.BaseURL,
		bearerToken: cfg.BearerToken,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// Lookup resolves a statement by its business key. Protocol-level problems
// come back as the Fault variant; only transport failures surface as errors.
func (c *HTTPClient) Lookup(ctx context.Context, key domain.StatementKey) (LookupResult, error) {
	endpoint := fmt.Sprintf("%s/dds/%s/%s",
		c.baseURL, url.PathEscape(key.ReferenceNumber), url.PathEscape(key.VerificationNumber))
	statusCode, body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return LookupResult{}, err
	}
	return mapLookupResponse(statusCode, body), nil
}

// Submit creates the consolidated trader statement. The caller must treat a
// returned error as "remote state unknown" and must not retry automatically.
func (c *HTTPClient) Submit(ctx context.Context, sub TraderSubmission) (SubmissionReceipt, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return SubmissionReceipt{}, fmt.Errorf("encode submission: %w", err)
	}
	statusCode, body, err := c.do(ctx, http.MethodPost, c.baseURL+"/dds/submit", payload)
	if err != nil {
		return SubmissionReceipt{}, err
	}
	return mapSubmitResponse(statusCode, body)
}

// FetchByIdentifier retrieves the possibly-issued business numbers for a
// statement the registry already identified.
func (c *HTTPClient) FetchByIdentifier(ctx context.Context, remoteIdentifier string) (RetrievalResult, error) {
	endpoint := c.baseURL + "/dds/identifier/" + url.PathEscape(remoteIdentifier)
	statusCode, body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return RetrievalResult{}, err
	}
	return mapRetrievalResponse(statusCode, body)
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("registry call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("read registry response: %w", err)
	}
	return resp.StatusCode, body, nil
}
