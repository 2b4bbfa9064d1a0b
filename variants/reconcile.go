package variants

// Reconcile drops every candidate whose attribute-value set exactly equals
// some existing variant's set, preserving candidate order. Exact means equal
// cardinality and full containment: a variant carrying the candidate's values
// plus an extra attribute is not a duplicate, and neither is one carrying
// only a subset. Getting either half of that check wrong silently corrupts
// the catalog, so both are asserted by tests.
//
// An empty result is a valid outcome meaning "every combination already
// exists"; callers surface that to the operator instead of reporting a
// successful creation of nothing.
func Reconcile(candidates []Candidate, ix *Index) []Candidate {
	kept := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		if !isDuplicate(&c, ix) {
			kept = append(kept, c)
		}
	}

	return kept
}

func isDuplicate(c *Candidate, ix *Index) bool {
	want := c.valueIDSet()

	for _, existing := range ix.valueSets {
		if len(existing) != len(want) {
			continue
		}
		match := true
		for id := range want {
			if _, ok := existing[id]; !ok {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}

	return false
}
