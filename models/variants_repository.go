package models

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VariantsRepository struct {
	db *gorm.DB
}

// ErrVariantNotFound is returned when a variant is not found.
var ErrVariantNotFound = errors.New("variant not found")

func NewVariantsRepository(db *gorm.DB) *VariantsRepository {
	return &VariantsRepository{
		db: db,
	}
}

// VariantDraft is a reviewed matrix candidate ready to be persisted: the
// operator has confirmed SKU, price and stock, and ValueIDs carries one
// attribute value per axis of the matrix.
type VariantDraft struct {
	SKU      string
	Price    decimal.Decimal
	Stock    int
	ValueIDs []uint
}

// GetProductVariantSet returns the product's variants together with all of
// their assignment rows, the point-in-time snapshot the engine indexes.
func (r *VariantsRepository) GetProductVariantSet(productID uint) ([]Variant, []VariantAttributeAssignment, error) {
	var variants []Variant
	if err := r.db.
		Where("product_id = ?", productID).
		Order("id").
		Find(&variants).Error; err != nil {
		return nil, nil, err
	}

	if len(variants) == 0 {
		return variants, nil, nil
	}

	variantIDs := make([]uint, len(variants))
	for i, v := range variants {
		variantIDs[i] = v.ID
	}

	var assignments []VariantAttributeAssignment
	if err := r.db.
		Where("variant_id IN ?", variantIDs).
		Order("id").
		Find(&assignments).Error; err != nil {
		return nil, nil, err
	}

	return variants, assignments, nil
}

// CreateVariants persists the drafts in one transaction: one variant row plus
// its assignment rows per draft. Any failure rolls the whole batch back so a
// partially-assigned variant is never observable.
func (r *VariantsRepository) CreateVariants(productID uint, drafts []VariantDraft) ([]Variant, error) {
	created := make([]Variant, 0, len(drafts))

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, d := range drafts {
			variant := Variant{
				ProductID: productID,
				SKU:       d.SKU,
				Price:     d.Price,
				Stock:     d.Stock,
				Active:    true,
			}
			if err := tx.Create(&variant).Error; err != nil {
				return err
			}
			for _, valueID := range d.ValueIDs {
				assignment := VariantAttributeAssignment{
					VariantID:        variant.ID,
					AttributeValueID: valueID,
				}
				if err := tx.Create(&assignment).Error; err != nil {
					return err
				}
			}
			created = append(created, variant)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *VariantsRepository) GetByID(id uint) (*Variant, error) {
	var variant Variant
	if err := r.db.
		Preload("Assignments.AttributeValue").
		First(&variant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	return &variant, nil
}
