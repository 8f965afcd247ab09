package enums

import "fmt"

// DeliveryType classifies a fulfillment choice by speed.
type DeliveryType string

const (
	DeliveryTypeInstant DeliveryType = "instant"
	DeliveryTypeSameDay DeliveryType = "same_day"
	DeliveryTypeRegular DeliveryType = "regular"
)

var validDeliveryTypes = []DeliveryType{
	DeliveryTypeInstant,
	DeliveryTypeSameDay,
	DeliveryTypeRegular,
}

// String implements fmt.Stringer.
func (d DeliveryType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryType.
func (d DeliveryType) IsValid() bool {
	for _, candidate := range validDeliveryTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// Rank orders delivery types from fastest to slowest.
func (d DeliveryType) Rank() int {
	for i, candidate := range validDeliveryTypes {
		if candidate == d {
			return i
		}
	}
	return len(validDeliveryTypes)
}

// ParseDeliveryType converts raw input into a DeliveryType.
func ParseDeliveryType(value string) (DeliveryType, error) {
	for _, candidate := range validDeliveryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery type %q", value)
}
