package paymentmethods

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
)

// Repository reads the payment method catalog.
type Repository interface {
	ListEnabled(ctx context.Context) ([]models.PaymentMethod, error)
	FindByCode(ctx context.Context, code string) (*models.PaymentMethod, error)
	Seed(ctx context.Context, methods []models.PaymentMethod) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListEnabled(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("sort_order ASC").
		Order("code ASC").
		Find(&methods).Error
	return methods, err
}

// FindByCode returns nil when the code is unknown.
func (r *repository) FindByCode(ctx context.Context, code string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&method).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// Seed inserts methods that do not exist yet and leaves existing rows alone.
func (r *repository) Seed(ctx context.Context, methods []models.PaymentMethod) error {
	if len(methods) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&methods).Error
}
