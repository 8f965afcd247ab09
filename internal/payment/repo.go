package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-checkout/pkg/db"
	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

// Repository persists the local view of gateway transactions.
type Repository interface {
	Create(ctx context.Context, tx *models.PaymentTransaction) error
	FindByOrderID(ctx context.Context, orderID string) (*models.PaymentTransaction, error)
	Save(ctx context.Context, tx *models.PaymentTransaction) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create returns a CodeConflict error when the order id is already recorded.
func (r *repository) Create(ctx context.Context, tx *models.PaymentTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Create(tx).Error
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payment transaction already exists for order")
	}
	return err
}

// FindByOrderID returns nil when no transaction exists for the order.
func (r *repository) FindByOrderID(ctx context.Context, orderID string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *repository) Save(ctx context.Context, tx *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}
