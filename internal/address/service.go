package address

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput is a new saved address. The first address a user saves becomes primary
// regardless of MakePrimary.
type CreateInput struct {
	Label         string
	RecipientName string
	Phone         string
	Line1         string
	Line2         *string
	City          string
	Province      string
	PostalCode    string
	Country       string
	Lat           float64
	Lng           float64
	MakePrimary   bool
}

// Service manages a user's address book.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.UserAddress, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.UserAddress, error)
	SetPrimary(ctx context.Context, userID, id uuid.UUID) (*models.UserAddress, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires the address book service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*models.UserAddress, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	row, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return row, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.UserAddress, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	country := strings.ToUpper(strings.TrimSpace(input.Country))
	if country == "" {
		country = "ID"
	}
	row := &models.UserAddress{
		UserID:        userID,
		Label:         strings.TrimSpace(input.Label),
		RecipientName: strings.TrimSpace(input.RecipientName),
		Phone:         strings.TrimSpace(input.Phone),
		Line1:         strings.TrimSpace(input.Line1),
		Line2:         trimmedOrNil(input.Line2),
		City:          strings.TrimSpace(input.City),
		Province:      strings.TrimSpace(input.Province),
		PostalCode:    strings.TrimSpace(input.PostalCode),
		Country:       country,
		Lat:           input.Lat,
		Lng:           input.Lng,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.CountByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count addresses")
		}
		row.IsPrimary = count == 0 || input.MakePrimary
		if row.IsPrimary && count > 0 {
			if err := repo.ClearPrimary(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear primary address")
			}
		}
		if err := repo.Create(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// SetPrimary moves the primary flag to id. The previous primary is cleared in the same transaction.
func (s *service) SetPrimary(ctx context.Context, userID, id uuid.UUID) (*models.UserAddress, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var updated *models.UserAddress
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, userID, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
		if row == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		if row.IsPrimary {
			updated = row
			return nil
		}
		if err := repo.ClearPrimary(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear primary address")
		}
		if err := repo.MarkPrimary(ctx, userID, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark primary address")
		}
		row.IsPrimary = true
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an address. Deleting the primary promotes the oldest remaining address.
func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, userID, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
		if row == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		if err := repo.Delete(ctx, userID, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
		}
		if !row.IsPrimary {
			return nil
		}

		next, err := repo.OldestByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load remaining address")
		}
		if next == nil {
			return nil
		}
		if err := repo.MarkPrimary(ctx, userID, next.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote address")
		}
		return nil
	})
}

func validateCreate(input CreateInput) error {
	details := map[string]string{}
	required := map[string]string{
		"label":          input.Label,
		"recipient_name": input.RecipientName,
		"phone":          input.Phone,
		"line1":          input.Line1,
		"city":           input.City,
		"province":       input.Province,
		"postal_code":    input.PostalCode,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			details[field] = "is required"
		}
	}
	if input.Lat < -90 || input.Lat > 90 {
		details["lat"] = "must be between -90 and 90"
	}
	if input.Lng < -180 || input.Lng > 180 {
		details["lng"] = "must be between -180 and 180"
	}
	if input.Lat == 0 && input.Lng == 0 {
		details["location"] = "is required"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
