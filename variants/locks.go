package variants

// Locks lists the attributes and values already in use by a product's
// existing variants. The add-variants wizard must keep these selected: an
// attribute that existing variants are described by cannot be dropped from
// the matrix, and a value carried by an existing variant cannot be deselected
// without orphaning it.
type Locks struct {
	AttributeIDs      map[uint]struct{}
	ValuesByAttribute map[uint]map[uint]struct{}
}

// LockedSelections derives the locked constraint sets from the index. It is
// a pure function of the indexed assignments; the selection UI consumes it as
// input data instead of threading "must stay checked" state through handlers.
func LockedSelections(ix *Index) Locks {
	locks := Locks{
		AttributeIDs:      make(map[uint]struct{}),
		ValuesByAttribute: make(map[uint]map[uint]struct{}),
	}

	for _, set := range ix.valueSets {
		for valueID := range set {
			attrID := ix.attributeOf[valueID]
			locks.AttributeIDs[attrID] = struct{}{}

			values, ok := locks.ValuesByAttribute[attrID]
			if !ok {
				values = make(map[uint]struct{})
				locks.ValuesByAttribute[attrID] = values
			}
			values[valueID] = struct{}{}
		}
	}

	return locks
}
