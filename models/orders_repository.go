package models

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrdersRepository struct {
	db *gorm.DB
}

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

// ErrInsufficientStock is returned when a line would oversell a variant.
var ErrInsufficientStock = errors.New("insufficient stock")

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		db: db,
	}
}

func (r *OrdersRepository) CreateOrder(customerName string) (*Order, error) {
	order := Order{
		Number:       uuid.NewString(),
		CustomerName: customerName,
		Status:       "draft",
	}
	if err := r.db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrdersRepository) GetByNumber(number string) (*Order, error) {
	var order Order
	if err := r.db.
		Preload("Lines.Variant").
		Where("number = ?", number).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// AddLine appends a line and decrements the variant's stock in the same
// transaction. The conditional stock update keeps two concurrent operators
// from overselling the last unit.
func (r *OrdersRepository) AddLine(orderID, variantID uint, quantity int, unitPrice decimal.Decimal) (*OrderLine, error) {
	line := OrderLine{
		OrderID:   orderID,
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Variant{}).
			Where("id = ? AND stock >= ?", variantID, quantity).
			Update("stock", gorm.Expr("stock - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		return tx.Create(&line).Error
	})
	if err != nil {
		return nil, err
	}

	return &line, nil
}
