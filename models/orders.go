package models

import (
	"github.com/shopspring/decimal"
)

// Order is a back-office order being assembled by an operator. Lines are
// added one at a time through the variant picker.
type Order struct {
	ID           uint        `gorm:"primaryKey"`
	Number       string      `gorm:"uniqueIndex;not null"`
	CustomerName string      `gorm:"not null"`
	Status       string      `gorm:"not null;default:'draft'"`
	Lines        []OrderLine `gorm:"foreignKey:OrderID"`
}

func (o *Order) TableName() string {
	return "orders"
}

// OrderLine records one resolved variant and the unit price it was added at.
type OrderLine struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"not null;index"`
	VariantID uint            `gorm:"not null"`
	Variant   Variant         `gorm:"foreignKey:VariantID"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (l *OrderLine) TableName() string {
	return "order_lines"
}
