package models

import (
	"gorm.io/gorm"
)

type AttributesRepository struct {
	db *gorm.DB
}

func NewAttributesRepository(db *gorm.DB) *AttributesRepository {
	return &AttributesRepository{
		db: db,
	}
}

// GetAllAttributes returns every attribute with its allowed values, in a
// stable order so option screens render deterministically.
func (r *AttributesRepository) GetAllAttributes() ([]Attribute, error) {
	var attributes []Attribute
	if err := r.db.
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("attribute_values.id")
		}).
		Order("code").
		Find(&attributes).Error; err != nil {
		return nil, err
	}
	return attributes, nil
}

// GetValuesByIDs loads the attribute values for the given ids. Unknown ids
// are simply absent from the result; callers decide whether that is an error.
func (r *AttributesRepository) GetValuesByIDs(ids []uint) ([]AttributeValue, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var values []AttributeValue
	if err := r.db.Where("id IN ?", ids).Order("id").Find(&values).Error; err != nil {
		return nil, err
	}
	return values, nil
}
