package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/internal/delivery"
	"github.com/angelmondragon/storefront-checkout/internal/payment"
	"github.com/angelmondragon/storefront-checkout/internal/paymentmethods"
	"github.com/angelmondragon/storefront-checkout/internal/voucher"
	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

// Status is the coarse lifecycle of a checkout session.
type Status string

const (
	StatusOpen            Status = "open"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusCompleted       Status = "completed"
)

// WarningAction tells the client what the primary button of the warning dialog does.
type WarningAction string

const (
	WarningActionNone           WarningAction = ""
	WarningActionRetryPayment   WarningAction = "retry_payment"
	WarningActionChooseDelivery WarningAction = "choose_delivery"
)

// Warning is the blocking dialog shown to the buyer.
type Warning struct {
	Open      bool          `json:"open"`
	Title     string        `json:"title,omitempty"`
	Message   string        `json:"message,omitempty"`
	Retryable bool          `json:"retryable"`
	Action    WarningAction `json:"action,omitempty"`
}

// Address is the shipping destination snapshot taken when the buyer picks a saved address.
type Address struct {
	ID            uuid.UUID      `json:"id"`
	Label         string         `json:"label"`
	RecipientName string         `json:"recipient_name"`
	Phone         string         `json:"phone"`
	Line1         string         `json:"line1"`
	Line2         *string        `json:"line2,omitempty"`
	City          string         `json:"city"`
	Province      string         `json:"province"`
	PostalCode    string         `json:"postal_code"`
	Country       string         `json:"country"`
	Location      types.GeoPoint `json:"location"`
}

// AddressFromModel snapshots a saved address.
func AddressFromModel(m models.UserAddress) Address {
	return Address{
		ID:            m.ID,
		Label:         m.Label,
		RecipientName: m.RecipientName,
		Phone:         m.Phone,
		Line1:         m.Line1,
		Line2:         m.Line2,
		City:          m.City,
		Province:      m.Province,
		PostalCode:    m.PostalCode,
		Country:       m.Country,
		Location:      types.GeoPoint{Lat: m.Lat, Lng: m.Lng},
	}
}

// State is everything the checkout screen holds. Transitions are value methods that
// return the next state and never perform I/O.
type State struct {
	ID                 string                 `json:"id"`
	UserID             uuid.UUID              `json:"user_id"`
	Status             Status                 `json:"status"`
	Items              []Item                 `json:"items"`
	Subtotal           decimal.Decimal        `json:"subtotal"`
	Address            *Address               `json:"address,omitempty"`
	DeliveryGeneration uint64                 `json:"delivery_generation"`
	DeliveryLoading    bool                   `json:"delivery_loading"`
	Delivery           *delivery.Result       `json:"delivery,omitempty"`
	SelectedDelivery   *delivery.Option       `json:"selected_delivery,omitempty"`
	Voucher            *voucher.Result        `json:"voucher,omitempty"`
	PaymentMethod      *paymentmethods.Method `json:"payment_method,omitempty"`
	Warning            Warning                `json:"warning"`
	PaymentPending     bool                   `json:"payment_pending"`
	Transaction        *payment.Transaction   `json:"transaction,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// Totals is the price breakdown shown next to the pay button.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	DeliveryPrice decimal.Decimal `json:"delivery_price"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Cashback      decimal.Decimal `json:"cashback"`
}

// NewState opens a session over the given items.
func NewState(id string, userID uuid.UUID, items []Item, now time.Time) State {
	return State{
		ID:        id,
		UserID:    userID,
		Status:    StatusOpen,
		Items:     items,
		Subtotal:  Subtotal(items),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Totals computes grand total = subtotal − discount + delivery price. The discount never
// exceeds the subtotal, so the grand total never drops below the delivery price.
func (s State) Totals() Totals {
	discount := decimal.Zero
	if s.Voucher != nil && s.Voucher.Applicable {
		discount = decimal.Min(s.Voucher.Discount, s.Subtotal)
		if discount.IsNegative() {
			discount = decimal.Zero
		}
	}
	deliveryPrice := decimal.Zero
	if s.SelectedDelivery != nil && s.SelectedDelivery.Price.IsPositive() {
		deliveryPrice = s.SelectedDelivery.Price
	}
	grand := s.Subtotal.Sub(discount).Add(deliveryPrice)

	cashback := decimal.Zero
	if s.PaymentMethod != nil && s.PaymentMethod.CashbackPercent != nil {
		cashback = grand.Mul(*s.PaymentMethod.CashbackPercent).Div(decimal.NewFromInt(100)).Floor()
	}

	return Totals{
		Subtotal:      s.Subtotal,
		Discount:      discount,
		DeliveryPrice: deliveryPrice,
		GrandTotal:    grand,
		Cashback:      cashback,
	}
}

// SelectAddress starts a new delivery lookup generation. Options from earlier
// generations are discarded when they arrive.
func (s State) SelectAddress(addr Address) State {
	s.Address = &addr
	s.DeliveryGeneration++
	s.DeliveryLoading = true
	s.Delivery = nil
	return s
}

// ReceiveDeliveryOptions applies the lookup result for generation gen. A stale generation
// leaves the state untouched and reports false.
func (s State) ReceiveDeliveryOptions(gen uint64, result delivery.Result) (State, bool) {
	if gen != s.DeliveryGeneration {
		return s, false
	}
	s.Delivery = &result
	s.DeliveryLoading = false

	if s.SelectedDelivery != nil {
		if fresh, ok := result.Find(s.SelectedDelivery.ID); ok {
			s.SelectedDelivery = &fresh
		} else {
			s.SelectedDelivery = nil
		}
	}
	if s.codSelected() && (s.SelectedDelivery == nil || !s.SelectedDelivery.IsCOD) {
		s.PaymentMethod = nil
	}
	return s, true
}

// ApplyVoucher keeps an applicable voucher. An inapplicable one opens a warning and the
// previous voucher, if any, stays in place.
func (s State) ApplyVoucher(result voucher.Result) State {
	if !result.Applicable {
		s.Warning = Warning{
			Open:    true,
			Title:   "Voucher cannot be used",
			Message: result.Message(),
		}
		return s
	}
	s.Voucher = &result
	return s
}

func (s State) RemoveVoucher() State {
	s.Voucher = nil
	return s
}

// SelectDelivery picks one of the currently offered options.
func (s State) SelectDelivery(optionID string) (State, error) {
	if s.Delivery == nil || s.DeliveryLoading {
		return s, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery options are not available yet")
	}
	option, ok := s.Delivery.Find(optionID)
	if !ok {
		return s, pkgerrors.New(pkgerrors.CodeNotFound, "delivery option not offered")
	}
	s.SelectedDelivery = &option
	if s.codSelected() && !option.IsCOD {
		s.PaymentMethod = nil
		s.Warning = Warning{
			Open:    true,
			Title:   "Cash on delivery unavailable",
			Message: "The selected delivery does not support cash on delivery. Please choose another payment method.",
		}
	}
	return s, nil
}

// SelectPaymentMethod sets the payment channel. Cash on delivery requires a COD-eligible
// delivery option.
func (s State) SelectPaymentMethod(method paymentmethods.Method) State {
	if method.Category == enums.PaymentCategoryCOD && (s.SelectedDelivery == nil || !s.SelectedDelivery.IsCOD) {
		s.Warning = Warning{
			Open:    true,
			Title:   "Cash on delivery unavailable",
			Message: "Choose a delivery option that supports cash on delivery first.",
			Action:  WarningActionChooseDelivery,
		}
		return s
	}
	s.PaymentMethod = &method
	return s
}

// BeginPayment checks that the session is complete and marks a payment as in flight.
// A session already holding an open gateway transaction cannot start another one until
// the gateway reports it failed or expired.
func (s State) BeginPayment() (State, error) {
	if s.PaymentPending {
		return s, pkgerrors.New(pkgerrors.CodeStateConflict, "payment already in progress")
	}
	if s.Status == StatusAwaitingPayment && s.Transaction != nil {
		return s, pkgerrors.New(pkgerrors.CodeStateConflict, "payment already started for this session").WithDetails(map[string]string{
			"order_id": s.Transaction.OrderID,
		})
	}
	details := map[string]string{}
	if s.Address == nil {
		details["address"] = "is required"
	}
	if s.DeliveryLoading {
		details["delivery"] = "options are still loading"
	} else if s.SelectedDelivery == nil {
		details["delivery"] = "is required"
	}
	if s.PaymentMethod == nil {
		details["payment_method"] = "is required"
	}
	if len(details) > 0 {
		return s, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	s.PaymentPending = true
	s.Warning = Warning{}
	return s, nil
}

// PaymentSucceeded records the opened transaction. The session stays open for the
// gateway's final confirmation.
func (s State) PaymentSucceeded(tx payment.Transaction) State {
	s.PaymentPending = false
	s.Transaction = &tx
	s.Status = StatusAwaitingPayment
	return s
}

// PaymentFailed clears the pending flag and offers a retry.
func (s State) PaymentFailed(message string) State {
	s.PaymentPending = false
	if message == "" {
		message = "We could not start the payment. Please try again."
	}
	s.Warning = Warning{
		Open:      true,
		Title:     "Payment failed",
		Message:   message,
		Retryable: true,
		Action:    WarningActionRetryPayment,
	}
	return s
}

// PaymentSettled applies the gateway's final status for orderID. Notifications for
// other orders are ignored.
func (s State) PaymentSettled(orderID string, status enums.TransactionStatus) State {
	if s.Transaction == nil || s.Transaction.OrderID != orderID {
		return s
	}
	switch status {
	case enums.TransactionStatusPaid:
		s.Status = StatusCompleted
		s.Warning = Warning{}
	case enums.TransactionStatusFailed, enums.TransactionStatusExpired:
		s.Status = StatusOpen
		s.Transaction = nil
		s = s.PaymentFailed("The payment was not completed. Please try again.")
	}
	return s
}

func (s State) DismissWarning() State {
	s.Warning = Warning{}
	return s
}

func (s State) codSelected() bool {
	return s.PaymentMethod != nil && s.PaymentMethod.Category == enums.PaymentCategoryCOD
}
