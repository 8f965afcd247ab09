package paymentmethods

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

type stubRepo struct {
	methods []models.PaymentMethod
	err     error
}

func (s *stubRepo) ListEnabled(ctx context.Context) ([]models.PaymentMethod, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.PaymentMethod
	for _, m := range s.methods {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubRepo) FindByCode(ctx context.Context, code string) (*models.PaymentMethod, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, m := range s.methods {
		if m.Code == code {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) Seed(ctx context.Context, methods []models.PaymentMethod) error {
	s.methods = append(s.methods, methods...)
	return nil
}

func TestListGroupedFollowsCategoryOrder(t *testing.T) {
	repo := &stubRepo{methods: []models.PaymentMethod{
		{Code: "cod", Name: "Cash on Delivery", Category: enums.PaymentCategoryCOD, Enabled: true},
		{Code: "bca_va", Name: "BCA Virtual Account", Category: enums.PaymentCategoryVirtualAccount, Enabled: true},
		{Code: "gopay", Name: "GoPay", Category: enums.PaymentCategoryEWallet, Enabled: true},
		{Code: "shopeepay", Name: "ShopeePay", Category: enums.PaymentCategoryEWallet, Enabled: true},
		{Code: "alfamart", Name: "Alfamart", Category: enums.PaymentCategoryConvenienceStore, Enabled: false},
	}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	groups, err := svc.ListGrouped(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, enums.PaymentCategoryEWallet, groups[0].Category)
	assert.Equal(t, enums.PaymentCategoryVirtualAccount, groups[1].Category)
	assert.Equal(t, enums.PaymentCategoryCOD, groups[2].Category)
	require.Len(t, groups[0].Methods, 2)
	assert.Equal(t, "gopay", groups[0].Methods[0].Code)
}

func TestGetNormalizesAndRejectsDisabled(t *testing.T) {
	repo := &stubRepo{methods: DefaultCatalog()}
	repo.methods[0].Enabled = false
	svc, err := NewService(repo)
	require.NoError(t, err)

	method, err := svc.Get(context.Background(), " BCA_VA ")
	require.NoError(t, err)
	assert.Equal(t, "bca_va", method.Code)

	_, err = svc.Get(context.Background(), repo.methods[0].Code)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Get(context.Background(), "  ")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestListGroupedWrapsRepoFailure(t *testing.T) {
	svc, err := NewService(&stubRepo{err: errors.New("db down")})
	require.NoError(t, err)

	_, err = svc.ListGrouped(context.Background())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestToSnapEnabledPayments(t *testing.T) {
	assert.Equal(t, []string{"gopay"}, ToSnapEnabledPayments(Method{Code: "gopay", Category: enums.PaymentCategoryEWallet}))
	assert.Nil(t, ToSnapEnabledPayments(Method{Code: "cod", Category: enums.PaymentCategoryCOD}))

	var bca models.PaymentMethod
	for _, m := range DefaultCatalog() {
		if m.Code == "bca_va" {
			bca = m
		}
	}
	assert.Equal(t, []string{"bca_va"}, ToSnapEnabledPayments(ToMethod(bca)))
}

func TestToMethodExposesCashback(t *testing.T) {
	var gopay models.PaymentMethod
	for _, m := range DefaultCatalog() {
		if m.Code == "gopay" {
			gopay = m
		}
	}
	view := ToMethod(gopay)
	require.NotNil(t, view.CashbackPercent)
	assert.Equal(t, "2", view.CashbackPercent.String())
}
