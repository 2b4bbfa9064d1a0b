package variants

import (
	"sort"
)

// MalformedVariant reports a variant whose assignments violate the
// one-value-per-attribute expectation: an attribute of the product with no
// value on this variant, or an attribute with two or more values.
type MalformedVariant struct {
	VariantID              uint
	MissingAttributeIDs    []uint
	DuplicatedAttributeIDs []uint
}

// Audit checks every indexed variant against the product's attribute axes.
// The store never rejected malformed rows, and the engine's set-equality
// rules stay correct in their presence, so this is advisory: the result is
// meant for a data-integrity report, not for blocking any flow.
//
// Output is sorted by variant id, with attribute ids ascending, so reports
// are stable.
func Audit(ix *Index, productAttributeIDs []uint) []MalformedVariant {
	var report []MalformedVariant

	for variantID, set := range ix.valueSets {
		counts := make(map[uint]int, len(productAttributeIDs))
		for valueID := range set {
			counts[ix.attributeOf[valueID]]++
		}

		var missing, duplicated []uint
		for _, attrID := range productAttributeIDs {
			switch {
			case counts[attrID] == 0:
				missing = append(missing, attrID)
			case counts[attrID] > 1:
				duplicated = append(duplicated, attrID)
			}
		}
		// Values of attributes outside the product's axes also count as
		// duplication of nothing expected; report any doubled attribute.
		for attrID, n := range counts {
			if n > 1 && !containsUint(productAttributeIDs, attrID) {
				duplicated = append(duplicated, attrID)
			}
		}

		if len(missing) == 0 && len(duplicated) == 0 {
			continue
		}

		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		sort.Slice(duplicated, func(i, j int) bool { return duplicated[i] < duplicated[j] })
		report = append(report, MalformedVariant{
			VariantID:              variantID,
			MissingAttributeIDs:    missing,
			DuplicatedAttributeIDs: duplicated,
		})
	}

	sort.Slice(report, func(i, j int) bool { return report[i].VariantID < report[j].VariantID })
	return report
}

func containsUint(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
