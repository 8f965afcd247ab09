package midtranswebhook

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
	"github.com/angelmondragon/storefront-checkout/pkg/logger"
	"github.com/angelmondragon/storefront-checkout/pkg/midtrans"
)

type notificationHandler interface {
	HandleNotification(ctx context.Context, n midtrans.Notification) (*models.PaymentTransaction, error)
}

type sessionUpdater interface {
	ApplyPaymentStatus(ctx context.Context, sessionID, orderID string, status enums.TransactionStatus) error
}

type deliveryGuard interface {
	CheckAndMark(ctx context.Context, deliveryID string) (bool, error)
	Release(ctx context.Context, deliveryID string) error
}

type ServiceParams struct {
	Payments notificationHandler
	Sessions sessionUpdater
	Guard    deliveryGuard
	Logger   *logger.Logger
}

// Service applies Midtrans HTTP notifications to the payment record and the checkout
// session that opened the transaction.
type Service struct {
	payments notificationHandler
	sessions sessionUpdater
	guard    deliveryGuard
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment service required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service required")
	}
	return &Service{
		payments: params.Payments,
		sessions: params.Sessions,
		guard:    params.Guard,
		logg:     params.Logger,
	}, nil
}

// HandleNotification is safe to call repeatedly with the same payload.
func (s *Service) HandleNotification(ctx context.Context, n midtrans.Notification) error {
	deliveryID := DeliveryID(n)
	if s.guard != nil && deliveryID != "" {
		seen, err := s.guard.CheckAndMark(ctx, deliveryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check notification idempotency")
		}
		if seen {
			if s.logg != nil {
				s.logg.Info(s.logg.WithOrderID(ctx, n.OrderID), "midtrans.notification.duplicate")
			}
			return nil
		}
	}

	if err := s.apply(ctx, n); err != nil {
		if s.guard != nil && deliveryID != "" {
			if releaseErr := s.guard.Release(ctx, deliveryID); releaseErr != nil && s.logg != nil {
				s.logg.Error(ctx, "midtrans.notification.release_failed", releaseErr)
			}
		}
		return err
	}
	return nil
}

func (s *Service) apply(ctx context.Context, n midtrans.Notification) error {
	record, err := s.payments.HandleNotification(ctx, n)
	if err != nil {
		return err
	}
	if record == nil || record.SessionID == nil || *record.SessionID == "" {
		return nil
	}
	if err := s.sessions.ApplyPaymentStatus(ctx, *record.SessionID, record.OrderID, record.Status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update checkout session")
	}
	return nil
}

// DeliveryID identifies one gateway delivery. Midtrans signs order, status code and
// amount, so the signature distinguishes status changes for the same order.
func DeliveryID(n midtrans.Notification) string {
	orderID := strings.TrimSpace(n.OrderID)
	if orderID == "" {
		return ""
	}
	return strings.Join([]string{
		orderID,
		strings.ToLower(n.TransactionStatus),
		strings.ToLower(n.FraudStatus),
		n.SignatureKey,
	}, ":")
}
