package address

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
)

// Repository persists user addresses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error)
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.UserAddress, error)
	FindPrimary(ctx context.Context, userID uuid.UUID) (*models.UserAddress, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, addr *models.UserAddress) error
	ClearPrimary(ctx context.Context, userID uuid.UUID) error
	MarkPrimary(ctx context.Context, userID, id uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	OldestByUser(ctx context.Context, userID uuid.UUID) (*models.UserAddress, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an address repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ListByUser returns the primary address first, then the rest oldest first.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	var rows []models.UserAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary DESC").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.UserAddress, error) {
	var row models.UserAddress
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindPrimary(ctx context.Context, userID uuid.UUID) (*models.UserAddress, error) {
	var row models.UserAddress
	err := r.db.WithContext(ctx).Where("user_id = ? AND is_primary = ?", userID, true).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserAddress{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *repository) Create(ctx context.Context, addr *models.UserAddress) error {
	if addr.ID == uuid.Nil {
		addr.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(addr).Error
}

func (r *repository) ClearPrimary(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.UserAddress{}).
		Where("user_id = ? AND is_primary = ?", userID, true).
		Update("is_primary", false).Error
}

func (r *repository) MarkPrimary(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&models.UserAddress{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_primary", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.UserAddress{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) OldestByUser(ctx context.Context, userID uuid.UUID) (*models.UserAddress, error) {
	var row models.UserAddress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
