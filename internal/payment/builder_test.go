package payment

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

func validInput() TransactionInput {
	return TransactionInput{
		OrderID:     "SF-20260310-0001",
		GrossAmount: decimal.RequireFromString("185000.50"),
		Items: []LineItem{
			{ID: "prod-1", Name: "Kemeja Batik Lengan Panjang Motif Parang Rusak Edisi Terbatas Premium", Price: decimal.RequireFromString("150000.50"), Quantity: 1},
			{ID: "shipping", Name: "Shipping - JNE REG", Price: decimal.RequireFromString("18000.49"), Quantity: 1},
			{ID: "discount", Name: "Voucher HEMAT", Price: decimal.RequireFromString("-2500.5"), Quantity: 1},
		},
		Customer: Customer{FirstName: "Sari", Email: "sari@example.com"},
	}
}

func TestBuildTransactionRoundsAndTruncates(t *testing.T) {
	t.Parallel()

	req, err := BuildTransaction(validInput())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if req.TransactionDetails.GrossAmount != 185001 {
		t.Fatalf("gross should round half away from zero, got %d", req.TransactionDetails.GrossAmount)
	}
	wantPrices := []int64{150001, 18000, -2501}
	for i, item := range req.ItemDetails {
		if item.Price != wantPrices[i] {
			t.Errorf("item %d: expected price %d got %d", i, wantPrices[i], item.Price)
		}
		if n := utf8.RuneCountInString(item.Name); n > MaxItemNameLength {
			t.Errorf("item %d: name has %d chars", i, n)
		}
	}
	if !strings.HasPrefix(req.ItemDetails[0].Name, "Kemeja Batik") {
		t.Fatalf("truncation should keep the prefix, got %q", req.ItemDetails[0].Name)
	}
}

func TestBuildTransactionTruncatesMultibyteNames(t *testing.T) {
	t.Parallel()

	in := validInput()
	in.Items = []LineItem{{ID: "p", Name: strings.Repeat("é", 80), Price: decimal.NewFromInt(1000), Quantity: 2}}
	req, err := BuildTransaction(in)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	name := req.ItemDetails[0].Name
	if !utf8.ValidString(name) || utf8.RuneCountInString(name) != MaxItemNameLength {
		t.Fatalf("unexpected truncated name %q", name)
	}
}

func TestBuildTransactionOmitsMissingShippingAddress(t *testing.T) {
	t.Parallel()

	req, err := BuildTransaction(validInput())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "shipping_address") {
		t.Fatalf("shipping_address must be absent, payload %s", raw)
	}

	in := validInput()
	in.ShippingAddress = &ShippingAddress{RecipientName: "Sari Dewi Lestari", Line: "Jl. Kebon Sirih 12", City: "Jakarta Pusat", PostalCode: "10340"}
	req, err = BuildTransaction(in)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	addr := req.CustomerDetails.ShippingAddress
	if addr == nil || addr.FirstName != "Sari" || addr.LastName != "Dewi Lestari" || addr.CountryCode != "IDN" {
		t.Fatalf("unexpected shipping address %+v", addr)
	}
}

func TestBuildTransactionValidation(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*TransactionInput){
		"order_id":       func(in *TransactionInput) { in.OrderID = " " },
		"gross_amount":   func(in *TransactionInput) { in.GrossAmount = decimal.Zero },
		"items":          func(in *TransactionInput) { in.Items = nil },
		"customer.email": func(in *TransactionInput) { in.Customer.Email = "" },
	}

	for field, mutate := range cases {
		in := validInput()
		mutate(&in)
		_, err := BuildTransaction(in)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", field, err)
		}
		details, _ := typed.Details().(map[string]string)
		if _, ok := details[field]; !ok {
			t.Fatalf("%s: missing detail, got %v", field, details)
		}
	}
}
