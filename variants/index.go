// Package variants implements the product-variant matrix engine: indexing a
// product's existing variants by their attribute values, generating the
// Cartesian product of selected option values, reconciling generated
// combinations against existing variants, cascading option filtering, and
// resolving a complete selection to a single variant.
//
// Everything in this package is a pure, deterministic computation over
// in-memory inputs. It performs no I/O, keeps no global state, and never
// mutates its arguments, so repeated calls with identical inputs produce
// identical results.
package variants

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/velamoda/backoffice/models"
)

// ErrStaleIndex is returned by CheckFresh when the product's variant set has
// changed since the index the candidates were generated against.
var ErrStaleIndex = errors.New("variant set changed since combinations were generated")

// Index holds lookup structures over one product's variants and their
// attribute-value assignments. Build it from a point-in-time snapshot of the
// product's rows; it does not observe later changes.
type Index struct {
	valueSets     map[uint]map[uint]struct{} // variant id -> set of attribute value ids
	valueVariants map[uint]map[uint]struct{} // attribute value id -> set of variant ids
	attributeOf   map[uint]uint              // attribute value id -> attribute id
}

// BuildIndex indexes the given variants by their assignments. Assignment rows
// pointing at a variant or attribute value absent from the inputs are
// silently skipped; the external store offers no referential integrity and a
// dangling row must not take the admin screens down.
func BuildIndex(variants []models.Variant, values []models.AttributeValue, assignments []models.VariantAttributeAssignment) *Index {
	ix := &Index{
		valueSets:     make(map[uint]map[uint]struct{}, len(variants)),
		valueVariants: make(map[uint]map[uint]struct{}, len(values)),
		attributeOf:   make(map[uint]uint, len(values)),
	}

	for _, v := range variants {
		ix.valueSets[v.ID] = make(map[uint]struct{})
	}
	for _, val := range values {
		ix.attributeOf[val.ID] = val.AttributeID
	}

	for _, a := range assignments {
		set, ok := ix.valueSets[a.VariantID]
		if !ok {
			continue
		}
		if _, ok := ix.attributeOf[a.AttributeValueID]; !ok {
			continue
		}
		set[a.AttributeValueID] = struct{}{}

		byValue, ok := ix.valueVariants[a.AttributeValueID]
		if !ok {
			byValue = make(map[uint]struct{})
			ix.valueVariants[a.AttributeValueID] = byValue
		}
		byValue[a.VariantID] = struct{}{}
	}

	return ix
}

// ValueSet returns the attribute-value ids assigned to the variant. The
// returned map is the index's own; callers must not mutate it.
func (ix *Index) ValueSet(variantID uint) map[uint]struct{} {
	return ix.valueSets[variantID]
}

// VariantsWithValue returns the variants carrying the given attribute value.
func (ix *Index) VariantsWithValue(valueID uint) map[uint]struct{} {
	return ix.valueVariants[valueID]
}

// AttributeOfValue reports which attribute the value belongs to.
func (ix *Index) AttributeOfValue(valueID uint) (uint, bool) {
	attrID, ok := ix.attributeOf[valueID]
	return attrID, ok
}

// AttributeIDs returns the set of attributes that appear in any indexed
// assignment, i.e. the axes the product's existing variants are described by.
func (ix *Index) AttributeIDs() map[uint]struct{} {
	attrs := make(map[uint]struct{})
	for _, set := range ix.valueSets {
		for valueID := range set {
			attrs[ix.attributeOf[valueID]] = struct{}{}
		}
	}
	return attrs
}

// Fingerprint digests the set of existing attribute-value combinations,
// independent of variant ids and of map iteration order. Equal combination
// sets produce equal fingerprints, so it serves as the staleness token
// between a matrix preview and its commit.
func (ix *Index) Fingerprint() string {
	combos := make([]string, 0, len(ix.valueSets))
	for _, set := range ix.valueSets {
		ids := make([]uint, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatUint(uint64(id), 10)
		}
		combos = append(combos, strings.Join(parts, ","))
	}
	sort.Strings(combos)

	sum := sha256.Sum256([]byte(strings.Join(combos, ";")))
	return hex.EncodeToString(sum[:])
}

// CheckFresh compares the fingerprint taken when combinations were generated
// against a freshly built index. It returns ErrStaleIndex on mismatch;
// committing against a stale snapshot can create duplicate variants.
func CheckFresh(expected string, current *Index) error {
	if current.Fingerprint() != expected {
		return ErrStaleIndex
	}
	return nil
}
