package biteship

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
	defaultBaseURL              = "https://api.biteship.com/v1"
	ratesPath                   = "rates/couriers"
	responseBodyReadLimit int64 = 1024
)

var errAPIKeyRequired = errors.New("biteship api key is required")

// Client queries the Biteship courier rate comparison API.
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

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the rates client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	client := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     key,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// RatesRequest is the body of POST /rates/couriers.
type RatesRequest struct {
	OriginPostalCode      string  `json:"origin_postal_code,omitempty"`
	DestinationPostalCode string  `json:"destination_postal_code,omitempty"`
	OriginLatitude        float64 `json:"origin_latitude,omitempty"`
	OriginLongitude       float64 `json:"origin_longitude,omitempty"`
	DestinationLatitude   float64 `json:"destination_latitude,omitempty"`
	DestinationLongitude  float64 `json:"destination_longitude,omitempty"`
	Couriers              string  `json:"couriers"`
	Items                 []Item  `json:"items"`
}

// Item weight is in grams, value in rupiah.
type Item struct {
	Name     string `json:"name"`
	Value    int64  `json:"value"`
	Weight   int64  `json:"weight"`
	Quantity int    `json:"quantity"`
}

// Rate is one courier service quote.
type Rate struct {
	CourierName        string  `json:"courier_name"`
	CourierCode        string  `json:"courier_code"`
	CourierServiceName string  `json:"courier_service_name"`
	CourierServiceCode string  `json:"courier_service_code"`
	Description        string  `json:"description"`
	Duration           string  `json:"duration"`
	ServiceType        string  `json:"service_type"`
	Price              float64 `json:"price"`
	AvailableForCOD    bool    `json:"available_for_cash_on_delivery"`
}

// Rates returns every courier service that can carry the shipment.
func (c *Client) Rates(ctx context.Context, req RatesRequest) ([]Rate, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "biteship client not configured")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rates request requires items")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal rates request")
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), ratesPath)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build rates request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute rates request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "rates request failed")
	}

	var apiResp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Pricing []Rate `json:"pricing"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode rates response")
	}
	if !apiResp.Success {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rates request unsuccessful: "+apiResp.Error)
	}
	return apiResp.Pricing, nil
}
