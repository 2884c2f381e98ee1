package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderValueRange prices delivery for orders whose value falls in the range
type OrderValueRange struct {
	MinOrderValue  float64 `json:"minOrderValue" bson:"minOrderValue"`
	MaxOrderValue  float64 `json:"maxOrderValue" bson:"maxOrderValue"`
	DeliveryCharge float64 `json:"deliveryCharge" bson:"deliveryCharge"`
}

// PackageSettings is a delivery pricing configuration
type PackageSettings struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	DeliveryTime       float64            `json:"deliveryTime" bson:"deliveryTime"`
	DeliveryRadius     float64            `json:"deliveryRadius" bson:"deliveryRadius"`
	FreeDeliveryRadius float64            `json:"freeDeliveryRadius" bson:"freeDeliveryRadius"`
	OrderValueRanges   []OrderValueRange  `json:"orderValueRanges" bson:"orderValueRanges"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// OrderValueRangeInput is a range as submitted by a client. Pointers
// distinguish an omitted value from zero.
type OrderValueRangeInput struct {
	MinOrderValue  *float64 `json:"minOrderValue" validate:"required,gte=0"`
	MaxOrderValue  *float64 `json:"maxOrderValue" validate:"required,gte=0"`
	DeliveryCharge *float64 `json:"deliveryCharge" validate:"required,gte=0"`
}

// PackageSettingsInput is the body of a create request
type PackageSettingsInput struct {
	DeliveryTime       *float64               `json:"deliveryTime" validate:"required,gte=0"`
	DeliveryRadius     *float64               `json:"deliveryRadius" validate:"required,gte=0"`
	FreeDeliveryRadius *float64               `json:"freeDeliveryRadius" validate:"required,gte=0"`
	OrderValueRanges   []OrderValueRangeInput `json:"orderValueRanges" validate:"dive"`
}

// PackageSettingsPatch is the body of an update request. Only the fields
// present in the body are written.
type PackageSettingsPatch struct {
	DeliveryTime       *float64               `json:"deliveryTime" validate:"omitempty,gte=0"`
	DeliveryRadius     *float64               `json:"deliveryRadius" validate:"omitempty,gte=0"`
	FreeDeliveryRadius *float64               `json:"freeDeliveryRadius" validate:"omitempty,gte=0"`
	OrderValueRanges   []OrderValueRangeInput `json:"orderValueRanges" validate:"omitempty,dive"`
}

// IsEmpty reports whether the patch changes nothing
func (patch PackageSettingsPatch) IsEmpty() bool {
	return patch.DeliveryTime == nil && patch.DeliveryRadius == nil &&
		patch.FreeDeliveryRadius == nil && patch.OrderValueRanges == nil
}

// ToRanges converts validated range input
func ToRanges(in []OrderValueRangeInput) []OrderValueRange {
	out := make([]OrderValueRange, 0, len(in))
	for _, r := range in {
		out = append(out, OrderValueRange{
			MinOrderValue:  deref(r.MinOrderValue),
			MaxOrderValue:  deref(r.MaxOrderValue),
			DeliveryCharge: deref(r.DeliveryCharge),
		})
	}
	return out
}

// ToPackageSettings converts a validated create request
func (in PackageSettingsInput) ToPackageSettings() PackageSettings {
	return PackageSettings{
		DeliveryTime:       deref(in.DeliveryTime),
		DeliveryRadius:     deref(in.DeliveryRadius),
		FreeDeliveryRadius: deref(in.FreeDeliveryRadius),
		OrderValueRanges:   ToRanges(in.OrderValueRanges),
	}
}

// Apply writes the fields present in the patch onto p
func (patch PackageSettingsPatch) Apply(p *PackageSettings) {
	if patch.DeliveryTime != nil {
		p.DeliveryTime = *patch.DeliveryTime
	}
	if patch.DeliveryRadius != nil {
		p.DeliveryRadius = *patch.DeliveryRadius
	}
	if patch.FreeDeliveryRadius != nil {
		p.FreeDeliveryRadius = *patch.FreeDeliveryRadius
	}
	if patch.OrderValueRanges != nil {
		p.OrderValueRanges = ToRanges(patch.OrderValueRanges)
	}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
