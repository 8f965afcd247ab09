package voucher

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
)

// Repository reads vouchers.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*models.Voucher, error)
	Create(ctx context.Context, v *models.Voucher) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the voucher repository to a gorm handle.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindByCode matches case-insensitively and returns nil when nothing matches.
func (r *repository) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var v models.Voucher
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) Create(ctx context.Context, v *models.Voucher) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.Code = strings.ToUpper(strings.TrimSpace(v.Code))
	return r.db.WithContext(ctx).Create(v).Error
}
