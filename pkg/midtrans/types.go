package midtrans

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SnapRequest is the body of POST /snap/v1/transactions.
type SnapRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	ItemDetails        []ItemDetail       `json:"item_details"`
	CustomerDetails    CustomerDetails    `json:"customer_details"`
	EnabledPayments    []string           `json:"enabled_payments,omitempty"`
	Callbacks          *Callbacks         `json:"callbacks,omitempty"`
}

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type ItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// CustomerDetails carries the buyer. ShippingAddress is a pointer so it disappears from
// the payload entirely when unknown.
type CustomerDetails struct {
	FirstName       string   `json:"first_name,omitempty"`
	LastName        string   `json:"last_name,omitempty"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	ShippingAddress *Address `json:"shipping_address,omitempty"`
}

type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

type Callbacks struct {
	Finish string `json:"finish,omitempty"`
}

// SnapResponse is the token plus hosted payment page URL.
type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Notification is the HTTP notification Midtrans posts when a transaction changes state.
type Notification struct {
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	TransactionTime   string `json:"transaction_time"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	SettlementTime    string `json:"settlement_time"`
}

// APIError is a non-2xx answer from Snap. Messages are the gateway's own error strings.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("midtrans: status %d", e.StatusCode)
	}
	return fmt.Sprintf("midtrans: status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// Message is the gateway's explanation suitable for showing to a buyer.
func (e *APIError) Message() string {
	if len(e.Messages) == 0 {
		return "payment gateway rejected the request"
	}
	return strings.Join(e.Messages, "; ")
}

func newAPIError(status int, body []byte) *APIError {
	var parsed struct {
		ErrorMessages []string `json:"error_messages"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.ErrorMessages) > 0 {
		return &APIError{StatusCode: status, Messages: parsed.ErrorMessages}
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		return &APIError{StatusCode: status, Messages: []string{trimmed}}
	}
	return &APIError{StatusCode: status}
}
