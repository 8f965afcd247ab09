package courier

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

	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

const (
	quotationsPath              = "v2/quotations"
	responseBodyReadLimit int64 = 1024
)

var (
	errAPIKeyRequired  = errors.New("instant courier api key is required")
	errBaseURLRequired = errors.New("instant courier base url is required")
)

// Client requests same-city instant delivery quotations (motorbike couriers).
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a quotation client against baseURL.
func NewClient(apiKey, baseURL string, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return nil, errBaseURLRequired
	}
	client := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    base,
		apiKey:     key,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// QuoteRequest describes a single pickup/drop-off pair.
type QuoteRequest struct {
	Origin      Point   `json:"origin"`
	Destination Point   `json:"destination"`
	WeightKg    float64 `json:"weight_kg"`
	ItemValue   int64   `json:"item_value"`
}

// Quote is one instant service offer.
type Quote struct {
	Provider     string  `json:"provider"`
	ServiceCode  string  `json:"service_code"`
	ServiceName  string  `json:"service_name"`
	Price        float64 `json:"price"`
	ETAMinutes   int     `json:"eta_minutes"`
	CODAvailable bool    `json:"cod_available"`
}

// Quote returns the instant services able to take the delivery right now.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) ([]Quote, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "instant courier client not configured")
	}
	if req.WeightKg <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal quotation request")
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), quotationsPath)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build quotation request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute quotation request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "quotation request failed")
	}

	var apiResp struct {
		Quotes []Quote `json:"quotes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode quotation response")
	}
	return apiResp.Quotes, nil
}
