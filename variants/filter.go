package variants

import (
	"github.com/velamoda/backoffice/models"
)

// AvailableValues computes which values of attributeID are still reachable
// given the other attributes already fixed in the selection. A variant from
// the pool survives when its assignment set contains every fixed value of
// every other attribute; the surviving variants' values of attributeID form
// the result.
//
// The attribute's own entry in fixedSelection is ignored, so the operator can
// always see all of an attribute's reachable values and change their mind
// about the current pick.
//
// The pool carries the caller's policy: order entry passes only active,
// in-stock variants, while the add-variants wizard passes everything. An
// empty result means "no options" and is not an error.
func AvailableValues(attributeID uint, fixedSelection map[uint]uint, pool []models.Variant, ix *Index) map[uint]struct{} {
	available := make(map[uint]struct{})

	for _, v := range pool {
		set := ix.ValueSet(v.ID)
		if set == nil {
			continue
		}

		survives := true
		for attrID, valueID := range fixedSelection {
			if attrID == attributeID {
				continue
			}
			if _, ok := set[valueID]; !ok {
				survives = false
				break
			}
		}
		if !survives {
			continue
		}

		for valueID := range set {
			if attrID, ok := ix.AttributeOfValue(valueID); ok && attrID == attributeID {
				available[valueID] = struct{}{}
			}
		}
	}

	return available
}
