// Package portal sends normalized import batches to the school portal's
// bulk-create endpoints.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/tahfidz-import/internal/core"
	"github.com/JonMunkholm/tahfidz-import/internal/logging"
)

// maxErrorBody caps how much of a failure response is read.
const maxErrorBody = 1 << 20

// DefaultTimeout bounds a bulk-create request when Options.Timeout is zero.
const DefaultTimeout = 2 * time.Minute

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Paths overrides the bulk-create path per import kind key.
	Paths map[string]string
	// HTTPClient replaces the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client implements core.Submitter over HTTP.
type Client struct {
	baseURL    string
	token      string
	paths      map[string]string
	httpClient *http.Client
}

var _ core.Submitter = (*Client)(nil)

// New creates a portal client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	paths := make(map[string]string, len(opts.Paths))
	for k, v := range opts.Paths {
		if v != "" {
			paths[k] = v
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		paths:      paths,
		httpClient: httpClient,
	}
}

// Endpoint returns the bulk-create URL for kind.
func (c *Client) Endpoint(kind core.ImportKind) string {
	path := kind.Path
	if override, ok := c.paths[kind.Key]; ok {
		path = override
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

type statsPayload struct {
	Success   int `json:"success"`
	Failed    int `json:"failed"`
	Duplicate int `json:"duplicate"`
	Total     int `json:"total"`
}

type responsePayload struct {
	Message        string         `json:"message"`
	Stats          statsPayload   `json:"stats"`
	Errors         []string       `json:"errors"`
	SuccessDetails []string       `json:"successDetails"`
	NewAccounts    []core.Account `json:"newAccounts"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// SubmitImport posts the batch in a single request and converts the
// portal's summary into a core.ImportResult.
func (c *Client) SubmitImport(ctx context.Context, kind core.ImportKind, batch core.Batch) (*core.ImportResult, error) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	endpoint := c.Endpoint(kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, core.NewRequestError(0, "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.authorize(ctx, req)

	logger := logging.FromContext(ctx)
	logger.Debug("posting import batch", "endpoint", endpoint, "rows", len(batch.Data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.NewRequestError(0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp)
	}

	var body responsePayload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, core.NewRequestError(resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}

	result := &core.ImportResult{
		SuccessCount:   body.Stats.Success,
		FailedCount:    body.Stats.Failed,
		DuplicateCount: body.Stats.Duplicate,
		Total:          body.Stats.Total,
		Message:        body.Message,
		Errors:         body.Errors,
		SuccessDetails: body.SuccessDetails,
		NewAccounts:    body.NewAccounts,
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	if result.NewAccounts == nil {
		result.NewAccounts = []core.Account{}
	}
	if result.Total == 0 {
		result.Total = len(batch.Data)
	}
	return result, nil
}

// authorize prefers the operator's forwarded credentials and falls back to
// the configured service token.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	creds, _ := core.GetCredentialsFromContext(ctx)
	if creds.Cookie != "" {
		req.Header.Set("Cookie", creds.Cookie)
	}
	switch {
	case creds.Authorization != "":
		req.Header.Set("Authorization", creds.Authorization)
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func errorFromResponse(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return core.NewRequestError(resp.StatusCode, "", err)
	}

	var payload errorPayload
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return core.NewRequestError(resp.StatusCode, payload.Error, nil)
	}
	return core.NewRequestError(resp.StatusCode, "", nil)
}
