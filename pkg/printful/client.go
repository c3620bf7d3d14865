package printful

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/orgshop-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
	"github.com/angelmondragon/orgshop-backend/pkg/logger"
)

const defaultBaseURL = "https://api.printful.com"

var errAPIKeyRequired = errors.New("printful api key is required")

// Client exposes the Printful order primitives with centralized auth,
// logging, and error mapping.
type Client struct {
	httpClient *http.Client
	apiKey     string
	storeID    string
	baseURL    string
	logger     *logger.Logger
}

// Option mutates the client during construction. Used by tests to point at
// a local server.
type Option func(*Client)

// WithBaseURL overrides the Printful API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient initializes the Printful wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.PrintfulConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		storeID:    strings.TrimSpace(cfg.StoreID),
		baseURL:    defaultBaseURL,
		logger:     logg,
	}
	for _, opt := range opts {
		opt(c)
	}

	if logg != nil {
		logg.Info(ctx, "printful client initialized")
	}
	return c, nil
}

// CreateOrder submits a fulfillment order.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "printful client not initialized")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "printful order requires at least one item")
	}

	var result Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode printful request")
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build printful request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.storeID != "" {
		req.Header.Set("X-PF-Store-Id", c.storeID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call printful")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read printful response")
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode printful response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := envelope.errorMessage()
		if msg == "" {
			msg = fmt.Sprintf("printful returned status %d", resp.StatusCode)
		}
		return pkgerrors.New(pkgerrors.CodeDependency, msg).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode printful result")
		}
	}
	return nil
}

// responseEnvelope is Printful's {code, result, error} wrapper.
type responseEnvelope struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
}

func (r responseEnvelope) errorMessage() string {
	if r.Error != nil && r.Error.Message != "" {
		return r.Error.Message
	}
	// some endpoints put a plain string into result on failure
	var msg string
	if len(r.Result) > 0 && json.Unmarshal(r.Result, &msg) == nil {
		return msg
	}
	return ""
}
