package weight

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-checkout/pkg/enums"
)

func TestEstimateWeightKgPriceTiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		price int64
		want  float64
	}{
		{0, 0.8},
		{100_000, 0.8},
		{100_001, 1.6},
		{300_000, 1.6},
		{450_000, 2.8},
		{600_000, 2.8},
		{600_001, 4.5},
		{5_000_000, 4.5},
	}
	for _, tc := range cases {
		got := EstimateWeightKg(Item{UnitPrice: decimal.NewFromInt(tc.price), Quantity: 1})
		if got != tc.want {
			t.Errorf("price %d: expected %v got %v", tc.price, tc.want, got)
		}
	}
}

func TestEstimateWeightKgPrefersExplicitWeight(t *testing.T) {
	t.Parallel()

	explicit := 0.25
	item := Item{UnitPrice: decimal.NewFromInt(900_000), Quantity: 1, WeightKg: &explicit}
	if got := EstimateWeightKg(item); got != 0.25 {
		t.Fatalf("expected explicit weight, got %v", got)
	}

	zero := 0.0
	item.WeightKg = &zero
	if got := EstimateWeightKg(item); got != 4.5 {
		t.Fatalf("non-positive weight should fall back to heuristic, got %v", got)
	}
}

func TestGetWeightCategoryIsMonotonic(t *testing.T) {
	t.Parallel()

	rank := map[enums.WeightCategory]int{
		enums.WeightCategoryLight:  0,
		enums.WeightCategoryMedium: 1,
		enums.WeightCategoryHeavy:  2,
	}

	prev := -1
	for kg := 0.05; kg <= 12; kg += 0.05 {
		cat := GetWeightCategory(kg)
		if rank[cat] < prev {
			t.Fatalf("category decreased at %.2f kg", kg)
		}
		prev = rank[cat]
	}

	boundaries := map[float64]enums.WeightCategory{
		1.5:  enums.WeightCategoryLight,
		1.51: enums.WeightCategoryMedium,
		4.0:  enums.WeightCategoryMedium,
		4.01: enums.WeightCategoryHeavy,
	}
	for kg, want := range boundaries {
		if got := GetWeightCategory(kg); got != want {
			t.Errorf("%.2f kg: expected %s got %s", kg, want, got)
		}
	}
}

func TestFormatWeightLabel(t *testing.T) {
	t.Parallel()

	if got := FormatWeightLabel(1.6, false); got != "1.6 kg • Medium" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := FormatWeightLabel(0.8, true); got != "0.8 kg" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := FormatWeightLabel(9, false); got != "9.0 kg • Heavy" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestTotalWeightKg(t *testing.T) {
	t.Parallel()

	explicit := 0.3
	items := []Item{
		{UnitPrice: decimal.NewFromInt(50_000), Quantity: 2},
		{UnitPrice: decimal.NewFromInt(250_000), Quantity: 1},
		{UnitPrice: decimal.NewFromInt(2_000_000), Quantity: 3, WeightKg: &explicit},
	}
	got := TotalWeightKg(items)
	want := 0.8*2 + 1.6 + 0.3*3
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected %v got %v", want, got)
	}
	if TotalWeightKg(nil) != 0 {
		t.Fatalf("empty cart should weigh nothing")
	}
}
