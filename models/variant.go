package models

import (
	"github.com/shopspring/decimal"
)

// Variant is a sellable SKU belonging to one parent product. The set of
// attribute values assigned to it (via VariantAttributeAssignment) describes
// which point of the product's option matrix it occupies.
type Variant struct {
	ID          uint                         `gorm:"primaryKey"`
	ProductID   uint                         `gorm:"not null;index"`
	SKU         string                       `gorm:"uniqueIndex;not null"`
	Price       decimal.Decimal              `gorm:"type:decimal(10,2);not null"`
	Stock       int                          `gorm:"not null;default:0"`
	Active      bool                         `gorm:"not null;default:true"`
	Assignments []VariantAttributeAssignment `gorm:"foreignKey:VariantID"`
}

func (v *Variant) TableName() string {
	return "variants"
}

// VariantAttributeAssignment is the join row tying one attribute value to
// one variant. A variant is expected to carry exactly one value per
// attribute its product uses; existing data violating that is tolerated by
// the engine and reported by the audit (see variants.Audit).
type VariantAttributeAssignment struct {
	ID               uint           `gorm:"primaryKey"`
	VariantID        uint           `gorm:"not null;uniqueIndex:idx_variant_value"`
	AttributeValueID uint           `gorm:"not null;uniqueIndex:idx_variant_value"`
	AttributeValue   AttributeValue `gorm:"foreignKey:AttributeValueID"`
}

func (a *VariantAttributeAssignment) TableName() string {
	return "variant_attribute_assignments"
}
