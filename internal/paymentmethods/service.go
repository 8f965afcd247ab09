package paymentmethods

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

// Method is the client-facing view of a payment channel.
type Method struct {
	Code            string                `json:"code"`
	Name            string                `json:"name"`
	Category        enums.PaymentCategory `json:"category"`
	CashbackPercent *decimal.Decimal      `json:"cashback_percent,omitempty"`
}

// Group is one category section of the payment picker.
type Group struct {
	Category enums.PaymentCategory `json:"category"`
	Methods  []Method              `json:"methods"`
}

// Service exposes the payment method catalog.
type Service interface {
	ListGrouped(ctx context.Context) ([]Group, error)
	Get(ctx context.Context, code string) (*models.PaymentMethod, error)
}

type service struct {
	repo Repository
}

// NewService constructs the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment method repository required")
	}
	return &service{repo: repo}, nil
}

// ListGrouped returns enabled methods grouped by category in display order. Empty
// categories are left out.
func (s *service) ListGrouped(ctx context.Context) ([]Group, error) {
	methods, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment methods")
	}

	byCategory := make(map[enums.PaymentCategory][]Method)
	for _, m := range methods {
		byCategory[m.Category] = append(byCategory[m.Category], ToMethod(m))
	}

	groups := make([]Group, 0, len(byCategory))
	for _, category := range enums.PaymentCategoryOrder {
		if list := byCategory[category]; len(list) > 0 {
			groups = append(groups, Group{Category: category, Methods: list})
		}
	}
	return groups, nil
}

// Get returns an enabled method or a not-found error.
func (s *service) Get(ctx context.Context, code string) (*models.PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method code is required")
	}
	method, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
	}
	if method == nil || !method.Enabled {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
	}
	return method, nil
}

// ToMethod converts the model to its API view.
func ToMethod(m models.PaymentMethod) Method {
	out := Method{Code: m.Code, Name: m.Name, Category: m.Category}
	if m.CashbackPercent.Valid {
		pct := m.CashbackPercent.Decimal
		out.CashbackPercent = &pct
	}
	return out
}
