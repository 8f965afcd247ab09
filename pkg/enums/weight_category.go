package enums

// WeightCategory buckets a shipment by weight for courier pricing.
type WeightCategory string

const (
	WeightCategoryLight  WeightCategory = "light"
	WeightCategoryMedium WeightCategory = "medium"
	WeightCategoryHeavy  WeightCategory = "heavy"
)

// String implements fmt.Stringer.
func (w WeightCategory) String() string {
	return string(w)
}

// Label returns the display label used on checkout screens.
func (w WeightCategory) Label() string {
	switch w {
	case WeightCategoryLight:
		return "Light"
	case WeightCategoryMedium:
		return "Medium"
	case WeightCategoryHeavy:
		return "Heavy"
	default:
		return ""
	}
}
