package paymentmethods

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/db/models"
	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

// DefaultCatalog mirrors the rows seeded by the payment_methods migration. SQLite dev
// databases are seeded from it at startup.
func DefaultCatalog() []models.PaymentMethod {
	gopayCashback := decimal.NewNullDecimal(decimal.NewFromInt(2))
	return []models.PaymentMethod{
		{Code: "gopay", Name: "GoPay", Category: enums.PaymentCategoryEWallet, CashbackPercent: gopayCashback, Enabled: true, SortOrder: 10},
		{Code: "shopeepay", Name: "ShopeePay", Category: enums.PaymentCategoryEWallet, Enabled: true, SortOrder: 20},
		{Code: "other_qris", Name: "QRIS", Category: enums.PaymentCategoryEWallet, Enabled: true, SortOrder: 30},
		{Code: "bca_va", Name: "BCA Virtual Account", Category: enums.PaymentCategoryVirtualAccount, Enabled: true, SortOrder: 10},
		{Code: "bni_va", Name: "BNI Virtual Account", Category: enums.PaymentCategoryVirtualAccount, Enabled: true, SortOrder: 20},
		{Code: "bri_va", Name: "BRI Virtual Account", Category: enums.PaymentCategoryVirtualAccount, Enabled: true, SortOrder: 30},
		{Code: "permata_va", Name: "Permata Virtual Account", Category: enums.PaymentCategoryVirtualAccount, Enabled: true, SortOrder: 40},
		{Code: "credit_card", Name: "Credit / Debit Card", Category: enums.PaymentCategoryCard, Enabled: true, SortOrder: 10},
		{Code: "indomaret", Name: "Indomaret", Category: enums.PaymentCategoryConvenienceStore, Enabled: true, SortOrder: 10},
		{Code: "alfamart", Name: "Alfamart", Category: enums.PaymentCategoryConvenienceStore, Enabled: true, SortOrder: 20},
		{Code: "cod", Name: "Cash on Delivery", Category: enums.PaymentCategoryCOD, Enabled: true, SortOrder: 10},
	}
}

// ToSnapEnabledPayments restricts the hosted page to the chosen channel. Catalog codes
// are Snap channel codes. COD never goes through the gateway and yields nil.
func ToSnapEnabledPayments(method Method) []string {
	if method.Category == enums.PaymentCategoryCOD {
		return nil
	}
	return []string{method.Code}
}
