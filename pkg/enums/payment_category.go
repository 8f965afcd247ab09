package enums

import "fmt"

// PaymentCategory groups payment channels on the checkout screen.
type PaymentCategory string

const (
	PaymentCategoryEWallet          PaymentCategory = "e_wallet"
	PaymentCategoryVirtualAccount   PaymentCategory = "virtual_account"
	PaymentCategoryCard             PaymentCategory = "card"
	PaymentCategoryConvenienceStore PaymentCategory = "convenience_store"
	PaymentCategoryCOD              PaymentCategory = "cod"
)

// PaymentCategoryOrder is the display order used when grouping payment methods.
var PaymentCategoryOrder = []PaymentCategory{
	PaymentCategoryEWallet,
	PaymentCategoryVirtualAccount,
	PaymentCategoryCard,
	PaymentCategoryConvenienceStore,
	PaymentCategoryCOD,
}

// String implements fmt.Stringer.
func (p PaymentCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentCategory.
func (p PaymentCategory) IsValid() bool {
	for _, candidate := range PaymentCategoryOrder {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentCategory converts raw input into a PaymentCategory.
func ParsePaymentCategory(value string) (PaymentCategory, error) {
	for _, candidate := range PaymentCategoryOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment category %q", value)
}
