package variants

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/velamoda/backoffice/models"
)

// ErrNoAttributes is returned by Generate when the selection is empty. A
// zero-axis matrix would degenerate to a single attribute-less variant, which
// is never what the operator meant.
var ErrNoAttributes = errors.New("no attributes selected")

// EmptySelectionError reports an attribute that was toggled into the matrix
// with zero chosen values. The caller must block generation and prompt the
// operator to either pick values or drop the attribute.
type EmptySelectionError struct {
	AttributeID uint
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("attribute %d has no selected values", e.AttributeID)
}

// ValueSelection is one axis of the matrix: an attribute and the values the
// operator picked for it. Generate visits a slice of these in order, so the
// caller's pick order is the enumeration order by construction.
type ValueSelection struct {
	AttributeID uint
	Values      []models.AttributeValue
}

// Candidate is one point of the Cartesian product: a prospective variant that
// exists only in memory until the operator confirms price and stock and
// commits it. AttributeValues holds one value per selected attribute, in
// selection order.
type Candidate struct {
	AttributeValues []models.AttributeValue
	SKU             string
	Price           decimal.Decimal
	Stock           int
}

// valueIDSet returns the candidate's attribute-value ids as a set.
func (c *Candidate) valueIDSet() map[uint]struct{} {
	set := make(map[uint]struct{}, len(c.AttributeValues))
	for _, v := range c.AttributeValues {
		set[v.ID] = struct{}{}
	}
	return set
}

// ValueIDs returns the candidate's attribute-value ids in selection order.
func (c *Candidate) ValueIDs() []uint {
	ids := make([]uint, len(c.AttributeValues))
	for i, v := range c.AttributeValues {
		ids[i] = v.ID
	}
	return ids
}

// Generate enumerates the full Cartesian product of the selected values, one
// candidate per combination. Enumeration is deterministic: attributes in
// slice order, values in the order given per attribute, so SKU suffixes and
// candidate ordering are reproducible across calls.
//
// SKUs are "{skuPrefix}-V{N}" with N counting up from startIndex across the
// whole run, zero-padded to the width of the final index. Every candidate
// starts at basePrice and zero stock; both are operator-editable placeholders.
func Generate(selection []ValueSelection, skuPrefix string, startIndex int, basePrice decimal.Decimal) ([]Candidate, error) {
	if len(selection) == 0 {
		return nil, ErrNoAttributes
	}

	total := 1
	for _, sel := range selection {
		if len(sel.Values) == 0 {
			return nil, &EmptySelectionError{AttributeID: sel.AttributeID}
		}
		total *= len(sel.Values)
	}

	width := len(strconv.Itoa(startIndex + total - 1))

	candidates := make([]Candidate, 0, total)

	// Odometer over the value indices of each axis: the last axis spins
	// fastest, matching a nested-loop cross join.
	cursor := make([]int, len(selection))
	for n := 0; n < total; n++ {
		values := make([]models.AttributeValue, len(selection))
		for axis, sel := range selection {
			values[axis] = sel.Values[cursor[axis]]
		}

		candidates = append(candidates, Candidate{
			AttributeValues: values,
			SKU:             fmt.Sprintf("%s-V%0*d", skuPrefix, width, startIndex+n),
			Price:           basePrice,
			Stock:           0,
		})

		for axis := len(cursor) - 1; axis >= 0; axis-- {
			cursor[axis]++
			if cursor[axis] < len(selection[axis].Values) {
				break
			}
			cursor[axis] = 0
		}
	}

	return candidates, nil
}
