package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/internal/delivery"
	"github.com/angelmondragon/storefront-checkout/internal/payment"
	"github.com/angelmondragon/storefront-checkout/internal/paymentmethods"
	"github.com/angelmondragon/storefront-checkout/internal/voucher"
	"github.com/angelmondragon/storefront-checkout/internal/weight"
	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/types"
)

type addressLookup interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*models.UserAddress, error)
}

type deliveryQuoter interface {
	Options(ctx context.Context, req delivery.Request) delivery.Result
}

type voucherApplier interface {
	Apply(ctx context.Context, code string, subtotal decimal.Decimal) (voucher.Result, error)
}

type paymentMethodLookup interface {
	Get(ctx context.Context, code string) (*models.PaymentMethod, error)
}

type transactionCreator interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, sessionID string, input payment.TransactionInput) (*payment.Transaction, error)
	RecordCashOnDelivery(ctx context.Context, userID uuid.UUID, sessionID string, input payment.TransactionInput) (*payment.Transaction, error)
}

// StartInput opens a session.
type StartInput struct {
	Items []Item
}

// PayInput carries buyer identity that is not part of the session.
type PayInput struct {
	Email    string
	FullName string
}

// QuoteInput prices delivery for a cart without opening a session.
type QuoteInput struct {
	Items               []Item
	Destination         types.GeoPoint
	DestinationPostCode string
}

// View is a session plus its computed totals.
type View struct {
	State
	Totals Totals `json:"totals"`
}

// Service drives checkout sessions. Every method loads the session, applies a pure
// transition and stores the result.
type Service interface {
	Start(ctx context.Context, userID uuid.UUID, input StartInput) (*View, error)
	Get(ctx context.Context, userID uuid.UUID, sessionID string) (*View, error)
	SelectAddress(ctx context.Context, userID uuid.UUID, sessionID string, addressID uuid.UUID) (*View, error)
	ApplyVoucher(ctx context.Context, userID uuid.UUID, sessionID, code string) (*View, error)
	RemoveVoucher(ctx context.Context, userID uuid.UUID, sessionID string) (*View, error)
	SelectDelivery(ctx context.Context, userID uuid.UUID, sessionID, optionID string) (*View, error)
	SelectPaymentMethod(ctx context.Context, userID uuid.UUID, sessionID, code string) (*View, error)
	Pay(ctx context.Context, userID uuid.UUID, sessionID string, input PayInput) (*View, error)
	DismissWarning(ctx context.Context, userID uuid.UUID, sessionID string) (*View, error)
	ApplyPaymentStatus(ctx context.Context, sessionID, orderID string, status enums.TransactionStatus) error
	Quote(ctx context.Context, input QuoteInput) (delivery.Result, error)
}

// ServiceParams groups the checkout dependencies.
type ServiceParams struct {
	Store            SessionStore
	Addresses        addressLookup
	Delivery         deliveryQuoter
	Vouchers         voucherApplier
	PaymentMethods   paymentMethodLookup
	Payments         transactionCreator
	Origin           types.GeoPoint
	OriginPostalCode string
	FinishURL        string
	Logger           *logger.Logger
	Now              func() time.Time
}

type service struct {
	store        SessionStore
	addresses    addressLookup
	delivery     deliveryQuoter
	vouchers     voucherApplier
	methods      paymentMethodLookup
	payments     transactionCreator
	origin       types.GeoPoint
	originPostal string
	finishURL    string
	logg         *logger.Logger
	now          func() time.Time
}

// NewService validates and wires the checkout service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Store == nil:
		return nil, fmt.Errorf("session store required")
	case params.Addresses == nil:
		return nil, fmt.Errorf("address lookup required")
	case params.Delivery == nil:
		return nil, fmt.Errorf("delivery quoter required")
	case params.Vouchers == nil:
		return nil, fmt.Errorf("voucher service required")
	case params.PaymentMethods == nil:
		return nil, fmt.Errorf("payment method lookup required")
	case params.Payments == nil:
		return nil, fmt.Errorf("payment service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:        params.Store,
		addresses:    params.Addresses,
		delivery:     params.Delivery,
		vouchers:     params.Vouchers,
		methods:      params.PaymentMethods,
		payments:     params.Payments,
		origin:       params.Origin,
		originPostal: params.OriginPostalCode,
		finishURL:    params.FinishURL,
		logg:         params.Logger,
		now:          now,
	}, nil
}

func (s *service) Start(ctx context.Context, userID uuid.UUID, input StartInput) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	state := NewState(uuid.NewString(), userID, input.Items, s.now().UTC())
	if err := s.store.Create(ctx, state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithSessionID(ctx, state.ID), "checkout.session.started")
	}
	return viewOf(state), nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, sessionID string) (*View, error) {
	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, storeError(err)
	}
	if state.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	return viewOf(state), nil
}

// SelectAddress stores the address, then quotes delivery for it. The quote is applied
// only if no newer address was selected while it was in flight.
func (s *service) SelectAddress(ctx context.Context, userID uuid.UUID, sessionID string, addressID uuid.UUID) (*View, error) {
	addr, err := s.addresses.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	snapshot := AddressFromModel(*addr)

	selected, err := s.update(ctx, userID, sessionID, func(st State) (State, error) {
		return st.SelectAddress(snapshot), nil
	})
	if err != nil {
		return nil, err
	}
	gen := selected.DeliveryGeneration

	result := s.delivery.Options(ctx, s.deliveryRequest(selected))

	applied := true
	final, err := s.update(ctx, userID, sessionID, func(st State) (State, error) {
		next, ok := st.ReceiveDeliveryOptions(gen, result)
		applied = ok
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	if !applied && s.logg != nil {
		s.logg.Debug(s.logg.WithSessionID(ctx, sessionID), "checkout.delivery.stale_result_discarded")
	}
	return viewOf(final), nil
}

func (s *service) deliveryRequest(st State) delivery.Request {
	from, fromPostal := origin(st.Items, s.origin, s.originPostal)
	req := delivery.Request{
		Origin:           from,
		OriginPostalCode: fromPostal,
		WeightKg:         weight.TotalWeightKg(weightItems(st.Items)),
		ItemValue:        st.Subtotal,
	}
	if st.Address != nil {
		req.Destination = st.Address.Location
		req.DestinationPostalCode = st.Address.PostalCode
	}
	return req
}

// Quote runs the same aggregation SelectAddress uses, for carts that have no session yet.
func (s *service) Quote(ctx context.Context, input QuoteInput) (delivery.Result, error) {
	if err := validateItems(input.Items); err != nil {
		return delivery.Result{}, err
	}
	if input.Destination.IsZero() {
		return delivery.Result{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
			"destination": "is required",
		})
	}
	st := State{
		Items:    input.Items,
		Subtotal: Subtotal(input.Items),
		Address: &Address{
			Location:   input.Destination,
			PostalCode: strings.TrimSpace(input.DestinationPostCode),
		},
	}
	return s.delivery.Options(ctx, s.deliveryRequest(st)), nil
}

func (s *service) ApplyVoucher(ctx context.Context, userID uuid.UUID, sessionID, code string) (*View, error) {
	current, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	result, err := s.vouchers.Apply(ctx, code, current.Subtotal)
	if err != nil {
		return nil, err
	}
	state, err := s.update(ctx, userID, sessionID, func(st State) (State, error) {
		return st.ApplyVoucher(result), nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(state), nil
}

func (s *service) RemoveVoucher(ctx context.Context, userID uuid.UUID, sessionID string) (*View, error) {
	state, err := s.update(ctx, userID, sessionID, func(st State) (State, error) {
		return st.RemoveVoucher(), nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(state), nil
}

func (s *service) SelectDelivery(ctx context.Context, userID uuid.UUID, sessionID, optionID string) (*View, error) {
	if strings.TrimSpace(optionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery option id is required")
	}
	state, err := s.update(ctx, userID, sessionID, func(st State) (State, error) {
		return st.SelectDelivery(optionID)
	})
	if err != nil {
		return nil, err
	}
	return viewOf(state), nil
}

func (s *service) SelectPaymentMethod(ctx context.Context, userID uuid.UUID, sessionID, code string) (*View, error) {
	method, err := s.methods.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	view := paymentmethods.ToMethod(*method)
	state, err := s.update(ctx, userID, sessionID, func(st State) (State, error) {
		return st.SelectPaymentMethod(view), nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(state), nil
}

// Pay opens the gateway transaction for the session's current selections. A failure is
// stored as a retryable warning and also returned to the caller.
func (s *service) Pay(ctx context.Context, userID uuid.UUID, sessionID string, input PayInput) (*View, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
			"email": "is required",
		})
	}

	began, err := s.update(ctx, userID, sessionID, func(st State) (State, error) {
		return st.BeginPayment()
	})
	if err != nil {
		return nil, err
	}

	if began.Voucher != nil {
		recheck, err := s.vouchers.Apply(ctx, began.Voucher.Code, began.Subtotal)
		if err != nil {
			return nil, s.failPayment(ctx, userID, sessionID, err)
		}
		if !recheck.Applicable {
			if _, err := s.update(ctx, userID, sessionID, func(st State) (State, error) {
				st = st.RemoveVoucher()
				st.PaymentPending = false
				st.Warning = Warning{Open: true, Title: "Voucher cannot be used", Message: recheck.Message()}
				return st, nil
			}); err != nil && s.logg != nil {
				s.logg.Error(ctx, "checkout.voucher.warning_store_failed", err)
			}
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, recheck.Message())
		}
	}

	orderID := s.newOrderID()
	txInput := s.transactionInput(began, orderID, input)
	if s.logg != nil {
		ctx = s.logg.WithOrderID(s.logg.WithSessionID(ctx, sessionID), orderID)
	}

	var tx *payment.Transaction
	if began.PaymentMethod.Category == enums.PaymentCategoryCOD {
		tx, err = s.payments.RecordCashOnDelivery(ctx, userID, sessionID, txInput)
	} else {
		tx, err = s.payments.CreateTransaction(ctx, userID, sessionID, txInput)
	}
	if err != nil {
		return nil, s.failPayment(ctx, userID, sessionID, err)
	}

	state, err := s.update(ctx, userID, sessionID, func(st State) (State, error) {
		return st.PaymentSucceeded(*tx), nil
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(ctx, "checkout.payment.started")
	}
	return viewOf(state), nil
}

func (s *service) failPayment(ctx context.Context, userID uuid.UUID, sessionID string, cause error) error {
	message := ""
	if typed := pkgerrors.As(cause); typed != nil && typed.Code() == pkgerrors.CodeGateway {
		message = typed.Message()
	}
	if _, err := s.update(ctx, userID, sessionID, func(st State) (State, error) {
		return st.PaymentFailed(message), nil
	}); err != nil && s.logg != nil {
		s.logg.Error(ctx, "checkout.payment.warning_store_failed", err)
	}
	if s.logg != nil {
		s.logg.Warn(ctx, "checkout.payment.failed")
	}
	return cause
}

// transactionInput lists items, shipping and discount as gateway lines. The gross amount
// is the sum of the rounded lines so the gateway's own check always passes.
func (s *service) transactionInput(st State, orderID string, input PayInput) payment.TransactionInput {
	lines := make([]payment.LineItem, 0, len(st.Items)+2)
	for _, item := range st.Items {
		lines = append(lines, payment.LineItem{
			ID:       item.ProductID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	totals := st.Totals()
	if st.SelectedDelivery != nil {
		lines = append(lines, payment.LineItem{
			ID:       "shipping",
			Name:     strings.TrimSpace("Shipping " + st.SelectedDelivery.Provider + " " + st.SelectedDelivery.Service),
			Price:    totals.DeliveryPrice,
			Quantity: 1,
		})
	}
	if totals.Discount.IsPositive() && st.Voucher != nil {
		lines = append(lines, payment.LineItem{
			ID:       "voucher-" + st.Voucher.Code,
			Name:     "Voucher " + st.Voucher.Code,
			Price:    totals.Discount.Neg(),
			Quantity: 1,
		})
	}

	gross := decimal.Zero
	for _, line := range lines {
		gross = gross.Add(line.Price.Round(0).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	fullName := strings.TrimSpace(input.FullName)
	customer := payment.Customer{Email: input.Email}
	var shipping *payment.ShippingAddress
	if st.Address != nil {
		if fullName == "" {
			fullName = st.Address.RecipientName
		}
		customer.Phone = st.Address.Phone
		line := st.Address.Line1
		if st.Address.Line2 != nil {
			line += ", " + *st.Address.Line2
		}
		shipping = &payment.ShippingAddress{
			RecipientName: st.Address.RecipientName,
			Phone:         st.Address.Phone,
			Line:          line,
			City:          st.Address.City,
			PostalCode:    st.Address.PostalCode,
			CountryCode:   st.Address.Country,
		}
	}
	customer.FirstName, customer.LastName = payment.SplitName(fullName)

	var enabled []string
	if st.PaymentMethod != nil {
		enabled = paymentmethods.ToSnapEnabledPayments(*st.PaymentMethod)
	}

	return payment.TransactionInput{
		OrderID:         orderID,
		GrossAmount:     gross,
		Items:           lines,
		Customer:        customer,
		ShippingAddress: shipping,
		EnabledPayments: enabled,
		FinishURL:       s.finishURL,
	}
}

func (s *service) DismissWarning(ctx context.Context, userID uuid.UUID, sessionID string) (*View, error) {
	state, err := s.update(ctx, userID, sessionID, func(st State) (State, error) {
		return st.DismissWarning(), nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(state), nil
}

// ApplyPaymentStatus forwards a gateway notification to the session that opened the
// transaction. Expired sessions are ignored.
func (s *service) ApplyPaymentStatus(ctx context.Context, sessionID, orderID string, status enums.TransactionStatus) error {
	_, err := s.store.Update(ctx, sessionID, func(st State) (State, error) {
		next := st.PaymentSettled(orderID, status)
		next.UpdatedAt = s.now().UTC()
		return next, nil
	})
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update checkout session")
	}
	return nil
}

// update runs fn against the caller's own open session.
func (s *service) update(ctx context.Context, userID uuid.UUID, sessionID string, fn Mutator) (State, error) {
	state, err := s.store.Update(ctx, sessionID, func(st State) (State, error) {
		if st.UserID != userID {
			return st, errSessionOwner
		}
		if st.Status == StatusCompleted {
			return st, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout session already completed")
		}
		next, err := fn(st)
		if err != nil {
			return st, err
		}
		next.UpdatedAt = s.now().UTC()
		return next, nil
	})
	if err != nil {
		return State{}, storeError(err)
	}
	return state, nil
}

var errSessionOwner = errors.New("checkout session owned by another user")

func storeError(err error) error {
	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, errSessionOwner) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout session store")
}

func (s *service) newOrderID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return "SF-" + s.now().UTC().Format("20060102") + "-" + suffix
}

func viewOf(state State) *View {
	return &View{State: state, Totals: state.Totals()}
}
