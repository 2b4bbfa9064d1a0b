package models

// Attribute is a named axis of variation, e.g. "Size" or "Color".
// Attributes and their values are maintained by configuration screens and
// are read-only for the variant engine.
type Attribute struct {
	ID     uint             `gorm:"primaryKey"`
	Code   string           `gorm:"uniqueIndex;not null"`
	Name   string           `gorm:"not null"`
	Values []AttributeValue `gorm:"foreignKey:AttributeID"`
}

func (a *Attribute) TableName() string {
	return "attributes"
}

// AttributeValue is one allowed value of an attribute, e.g. Size="M".
// No two values of the same attribute share the same Value string.
type AttributeValue struct {
	ID          uint      `gorm:"primaryKey"`
	AttributeID uint      `gorm:"not null;uniqueIndex:idx_attribute_value"`
	Value       string    `gorm:"not null;uniqueIndex:idx_attribute_value"`
	Attribute   Attribute `gorm:"foreignKey:AttributeID"`
}

func (v *AttributeValue) TableName() string {
	return "attribute_values"
}
