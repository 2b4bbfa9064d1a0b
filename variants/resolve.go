package variants

import (
	"github.com/velamoda/backoffice/models"
)

// Resolve maps a complete selection to the unique variant whose assignment
// set equals the selected values exactly. It returns nil unless the
// selection's attribute set equals requiredAttributes: an incomplete or
// over-specified selection never resolves, even if it would narrow the pool
// to one variant. The UI only offers "add to order" once every axis is
// explicit.
//
// The second return reports ambiguity: true when more than one variant in the
// pool matched, which means the stored data contains duplicate combinations.
// The first match in pool order is still returned so order entry keeps
// working; the caller should log the condition and flag the product for
// review rather than fail.
func Resolve(selection map[uint]uint, requiredAttributes map[uint]struct{}, pool []models.Variant, ix *Index) (*models.Variant, bool) {
	if len(selection) != len(requiredAttributes) {
		return nil, false
	}
	for attrID := range selection {
		if _, ok := requiredAttributes[attrID]; !ok {
			return nil, false
		}
	}

	want := make(map[uint]struct{}, len(selection))
	for _, valueID := range selection {
		want[valueID] = struct{}{}
	}

	var found *models.Variant
	ambiguous := false

	for i := range pool {
		set := ix.ValueSet(pool[i].ID)
		if len(set) != len(want) {
			continue
		}
		match := true
		for id := range want {
			if _, ok := set[id]; !ok {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		if found != nil {
			ambiguous = true
			break
		}
		found = &pool[i]
	}

	return found, ambiguous
}
