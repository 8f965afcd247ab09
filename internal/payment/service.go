package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/metrics"
	"github.com/angelmondragon/storefront-checkout/pkg/midtrans"
)

const (
	gatewayMetricName = "midtrans_snap"
	codPaymentType    = "cod"
)

// Gateway opens hosted-payment transactions.
type Gateway interface {
	CreateTransaction(ctx context.Context, req midtrans.SnapRequest) (*midtrans.SnapResponse, error)
}

// Transaction is what the storefront needs to open the hosted payment page.
type Transaction struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	GrossAmount int64  `json:"gross_amount"`
}

// Service creates gateway transactions and applies gateway notifications.
type Service interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, sessionID string, input TransactionInput) (*Transaction, error)
	RecordCashOnDelivery(ctx context.Context, userID uuid.UUID, sessionID string, input TransactionInput) (*Transaction, error)
	HandleNotification(ctx context.Context, n midtrans.Notification) (*models.PaymentTransaction, error)
}

// ServiceParams groups the payment service dependencies.
type ServiceParams struct {
	Gateway   Gateway
	Repo      Repository
	ServerKey string
	Logger    *logger.Logger
	Metrics   *metrics.ProviderMetrics
	Now       func() time.Time
}

type service struct {
	gateway   Gateway
	repo      Repository
	serverKey string
	logg      *logger.Logger
	metrics   *metrics.ProviderMetrics
	now       func() time.Time
}

// NewService constructs the payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if strings.TrimSpace(params.ServerKey) == "" {
		return nil, fmt.Errorf("gateway server key required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		gateway:   params.Gateway,
		repo:      params.Repo,
		serverKey: params.ServerKey,
		logg:      params.Logger,
		metrics:   params.Metrics,
		now:       now,
	}, nil
}

// CreateTransaction records the order as pending and then issues exactly one gateway
// call, so every transaction the gateway knows about has a local record for its
// notifications. A duplicate order id is CodeConflict and never reaches the gateway.
// Gateway rejections come back as CodeGateway carrying the gateway's own message.
func (s *service) CreateTransaction(ctx context.Context, userID uuid.UUID, sessionID string, input TransactionInput) (*Transaction, error) {
	req, err := BuildTransaction(input)
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, req.TransactionDetails.OrderID)
	}

	record := pendingRecord(userID, sessionID, req)
	if err := s.repo.Create(ctx, record); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment transaction")
	}

	started := time.Now()
	resp, err := s.gateway.CreateTransaction(ctx, req)
	s.metrics.ObserveDuration(gatewayMetricName, time.Since(started))
	if err != nil {
		s.metrics.IncFailure(gatewayMetricName, "error")
		record.Status = enums.TransactionStatusFailed
		if saveErr := s.repo.Save(ctx, record); saveErr != nil && s.logg != nil {
			s.logg.Error(ctx, "payment.transaction.mark_failed", saveErr)
		}
		return nil, gatewayError(err)
	}
	s.metrics.IncSuccess(gatewayMetricName)

	record.SnapToken = resp.Token
	record.RedirectURL = resp.RedirectURL
	if err := s.repo.Save(ctx, record); err != nil && s.logg != nil {
		// the pending row already exists, so notifications still resolve the order
		s.logg.Error(ctx, "payment.transaction.token_persist_failed", err)
	}

	if s.logg != nil {
		s.logg.Info(ctx, "payment.transaction.created")
	}

	return &Transaction{
		OrderID:     req.TransactionDetails.OrderID,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		GrossAmount: req.TransactionDetails.GrossAmount,
	}, nil
}

func pendingRecord(userID uuid.UUID, sessionID string, req midtrans.SnapRequest) *models.PaymentTransaction {
	record := &models.PaymentTransaction{
		OrderID:     req.TransactionDetails.OrderID,
		UserID:      userID,
		GrossAmount: req.TransactionDetails.GrossAmount,
		Status:      enums.TransactionStatusPending,
	}
	if sessionID != "" {
		record.SessionID = &sessionID
	}
	return record
}

// RecordCashOnDelivery stores a pending cash-on-delivery order. No gateway call is made
// and the returned transaction has no token.
func (s *service) RecordCashOnDelivery(ctx context.Context, userID uuid.UUID, sessionID string, input TransactionInput) (*Transaction, error) {
	req, err := BuildTransaction(input)
	if err != nil {
		return nil, err
	}

	paymentType := codPaymentType
	record := pendingRecord(userID, sessionID, req)
	record.PaymentType = &paymentType
	if err := s.repo.Create(ctx, record); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record cash on delivery order")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, record.OrderID), "payment.cod.recorded")
	}

	return &Transaction{
		OrderID:     record.OrderID,
		GrossAmount: record.GrossAmount,
	}, nil
}

func gatewayError(err error) error {
	var apiErr *midtrans.APIError
	if errors.As(err, &apiErr) {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, apiErr.Message()).WithDetails(map[string]any{
			"gateway_status": apiErr.StatusCode,
			"messages":       apiErr.Messages,
		})
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unavailable")
}

// HandleNotification verifies and applies a gateway status notification. Replays and
// notifications arriving after a terminal status leave the record untouched.
func (s *service) HandleNotification(ctx context.Context, n midtrans.Notification) (*models.PaymentTransaction, error) {
	if strings.TrimSpace(n.OrderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_id is required")
	}
	if !midtrans.VerifySignature(n, s.serverKey) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid notification signature")
	}

	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, n.OrderID)
	}

	record, err := s.repo.FindByOrderID(ctx, n.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment transaction")
	}
	if record == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment transaction not found")
	}

	next, known := StatusFromNotification(n)
	if !known || record.Status.IsTerminal() || record.Status == next {
		if s.logg != nil {
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{
				"transaction_status": n.TransactionStatus,
				"current_status":     record.Status.String(),
			}), "payment.notification.ignored")
		}
		return record, nil
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode notification")
	}
	record.Status = next
	record.RawNotification = raw
	if n.PaymentType != "" {
		pt := n.PaymentType
		record.PaymentType = &pt
	}
	if next == enums.TransactionStatusPaid {
		paidAt := s.now().UTC()
		record.PaidAt = &paidAt
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment transaction")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "status", next.String()), "payment.notification.applied")
	}
	return record, nil
}

// StatusFromNotification maps the gateway transaction_status/fraud_status pair to a local
// status. The second result is false for statuses this service does not track.
func StatusFromNotification(n midtrans.Notification) (enums.TransactionStatus, bool) {
	switch strings.ToLower(n.TransactionStatus) {
	case "capture":
		switch strings.ToLower(n.FraudStatus) {
		case "", "accept":
			return enums.TransactionStatusPaid, true
		case "challenge":
			return enums.TransactionStatusPending, true
		default:
			return enums.TransactionStatusFailed, true
		}
	case "settlement":
		return enums.TransactionStatusPaid, true
	case "pending":
		return enums.TransactionStatusPending, true
	case "deny", "cancel", "failure":
		return enums.TransactionStatusFailed, true
	case "expire":
		return enums.TransactionStatusExpired, true
	default:
		return "", false
	}
}
