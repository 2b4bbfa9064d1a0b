package variants

import (
	"github.com/shopspring/decimal"

	"github.com/velamoda/backoffice/models"
)

// Shared catalog fixture: Size{S,M,L}, Color{Red,Blue}, Material{Cotton}.
const (
	attrSize     uint = 1
	attrColor    uint = 2
	attrMaterial uint = 3

	valS uint = 10
	valM uint = 11
	valL uint = 12

	valRed  uint = 20
	valBlue uint = 21

	valCotton uint = 30
)

var testValues = []models.AttributeValue{
	{ID: valS, AttributeID: attrSize, Value: "S"},
	{ID: valM, AttributeID: attrSize, Value: "M"},
	{ID: valL, AttributeID: attrSize, Value: "L"},
	{ID: valRed, AttributeID: attrColor, Value: "Red"},
	{ID: valBlue, AttributeID: attrColor, Value: "Blue"},
	{ID: valCotton, AttributeID: attrMaterial, Value: "Cotton"},
}

func valueByID(id uint) models.AttributeValue {
	for _, v := range testValues {
		if v.ID == id {
			return v
		}
	}
	return models.AttributeValue{ID: id}
}

func valuesByID(ids ...uint) []models.AttributeValue {
	values := make([]models.AttributeValue, len(ids))
	for i, id := range ids {
		values[i] = valueByID(id)
	}
	return values
}

func newTestVariant(id uint, sku string, stock int, active bool) models.Variant {
	return models.Variant{
		ID:        id,
		ProductID: 1,
		SKU:       sku,
		Price:     decimal.NewFromFloat(19.99),
		Stock:     stock,
		Active:    active,
	}
}

// newAssignments builds one assignment row per value id for the variant.
func newAssignments(variantID uint, valueIDs ...uint) []models.VariantAttributeAssignment {
	rows := make([]models.VariantAttributeAssignment, len(valueIDs))
	for i, valueID := range valueIDs {
		rows[i] = models.VariantAttributeAssignment{
			VariantID:        variantID,
			AttributeValueID: valueID,
		}
	}
	return rows
}

func idSet(ids ...uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
