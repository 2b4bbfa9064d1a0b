// Package matrix exposes the variant matrix engine over HTTP: previewing the
// Cartesian product of selected option values, committing reviewed
// candidates, cascading option filtering, full-selection resolution, locked
// constraint sets for the add-variants wizard, and the data-integrity audit.
package matrix

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/velamoda/backoffice/app/api"
	"github.com/velamoda/backoffice/models"
	"github.com/velamoda/backoffice/variants"
)

type ProductProvider interface {
	GetByCode(code string) (*models.Product, error)
}

type VariantStore interface {
	GetProductVariantSet(productID uint) ([]models.Variant, []models.VariantAttributeAssignment, error)
	CreateVariants(productID uint, drafts []models.VariantDraft) ([]models.Variant, error)
}

type ValueProvider interface {
	GetValuesByIDs(ids []uint) ([]models.AttributeValue, error)
}

type MatrixHandler struct {
	products ProductProvider
	store    VariantStore
	values   ValueProvider
	validate *validator.Validate
}

func NewMatrixHandler(products ProductProvider, store VariantStore, values ValueProvider) *MatrixHandler {
	return &MatrixHandler{
		products: products,
		store:    store,
		values:   values,
		validate: validator.New(),
	}
}

type SelectionInput struct {
	AttributeID uint   `json:"attribute_id" validate:"required"`
	ValueIDs    []uint `json:"value_ids"`
}

type GenerateRequest struct {
	SKUPrefix  string           `json:"sku_prefix" validate:"required"`
	StartIndex int              `json:"start_index" validate:"min=0"`
	BasePrice  string           `json:"base_price" validate:"required"`
	Selections []SelectionInput `json:"selections" validate:"required,min=1,dive"`
}

type CandidateValue struct {
	AttributeID uint   `json:"attribute_id"`
	ValueID     uint   `json:"value_id"`
	Value       string `json:"value"`
}

type CandidateResponse struct {
	SKU    string           `json:"sku"`
	Price  float64          `json:"price"`
	Stock  int              `json:"stock"`
	Values []CandidateValue `json:"values"`
}

type GenerateResponse struct {
	Fingerprint       string              `json:"fingerprint"`
	Candidates        []CandidateResponse `json:"candidates"`
	DuplicatesDropped int                 `json:"duplicates_dropped"`
	NoNewCombinations bool                `json:"no_new_combinations"`
	Message           string              `json:"message,omitempty"`
}

// HandleGenerate previews the matrix: it enumerates the Cartesian product of
// the selected values and reconciles it against the product's existing
// variants. Nothing is persisted; the fingerprint in the response must be
// echoed back on commit.
func (h *MatrixHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	basePrice, err := decimal.NewFromString(req.BasePrice)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid base_price")
		return
	}
	startIndex := req.StartIndex
	if startIndex == 0 {
		startIndex = 1
	}

	existing, assignments, err := h.store.GetProductVariantSet(product.ID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("load variant set failed")
		api.WriteError(w, http.StatusInternalServerError, "failed to load variants")
		return
	}

	valueByID, ok := h.loadValues(w, r, req.selectedValueIDs(), assignments)
	if !ok {
		return
	}

	selection := make([]variants.ValueSelection, len(req.Selections))
	for i, sel := range req.Selections {
		values := make([]models.AttributeValue, 0, len(sel.ValueIDs))
		for _, id := range sel.ValueIDs {
			value, found := valueByID[id]
			if !found {
				api.WriteError(w, http.StatusBadRequest, "unknown attribute value "+strconv.FormatUint(uint64(id), 10))
				return
			}
			if value.AttributeID != sel.AttributeID {
				api.WriteError(w, http.StatusBadRequest, "value "+strconv.FormatUint(uint64(id), 10)+" does not belong to attribute "+strconv.FormatUint(uint64(sel.AttributeID), 10))
				return
			}
			values = append(values, value)
		}
		selection[i] = variants.ValueSelection{AttributeID: sel.AttributeID, Values: values}
	}

	candidates, err := variants.Generate(selection, req.SKUPrefix, startIndex, basePrice)
	if err != nil {
		var emptyErr *variants.EmptySelectionError
		if errors.As(err, &emptyErr) {
			api.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":        "attribute has no selected values",
				"attribute_id": emptyErr.AttributeID,
			})
			return
		}
		api.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ix := variants.BuildIndex(existing, mapValues(valueByID), assignments)
	kept := variants.Reconcile(candidates, ix)

	resp := GenerateResponse{
		Fingerprint:       ix.Fingerprint(),
		Candidates:        toCandidateResponses(kept),
		DuplicatesDropped: len(candidates) - len(kept),
	}
	if len(kept) == 0 {
		resp.NoNewCombinations = true
		resp.Message = "all generated combinations already exist; nothing to create"
		log.Ctx(r.Context()).Info().
			Str("product", product.Code).
			Int("generated", len(candidates)).
			Msg("matrix preview produced no new combinations")
	}

	api.WriteJSON(w, http.StatusOK, resp)
}

type CommitVariant struct {
	SKU      string `json:"sku" validate:"required"`
	Price    string `json:"price" validate:"required"`
	Stock    int    `json:"stock" validate:"min=0"`
	ValueIDs []uint `json:"value_ids" validate:"required,min=1"`
}

type CommitRequest struct {
	Fingerprint string          `json:"fingerprint" validate:"required"`
	Variants    []CommitVariant `json:"variants" validate:"required,min=1,dive"`
}

// HandleCommit persists reviewed candidates. The variant set is re-fetched
// and its fingerprint compared against the preview's: a concurrent operator
// creating variants in between makes the commit fail with 409 instead of
// silently duplicating combinations.
func (h *MatrixHandler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, assignments, err := h.store.GetProductVariantSet(product.ID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("load variant set failed")
		api.WriteError(w, http.StatusInternalServerError, "failed to load variants")
		return
	}

	var requested []uint
	for _, v := range req.Variants {
		requested = append(requested, v.ValueIDs...)
	}
	valueByID, ok := h.loadValues(w, r, requested, assignments)
	if !ok {
		return
	}

	ix := variants.BuildIndex(existing, mapValues(valueByID), assignments)
	if err := variants.CheckFresh(req.Fingerprint, ix); err != nil {
		api.WriteError(w, http.StatusConflict, "variants changed since the combinations were generated; regenerate and retry")
		return
	}

	candidates := make([]variants.Candidate, len(req.Variants))
	drafts := make([]models.VariantDraft, len(req.Variants))
	for i, v := range req.Variants {
		price, err := decimal.NewFromString(v.Price)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid price for "+v.SKU)
			return
		}
		values := make([]models.AttributeValue, 0, len(v.ValueIDs))
		for _, id := range v.ValueIDs {
			value, found := valueByID[id]
			if !found {
				api.WriteError(w, http.StatusBadRequest, "unknown attribute value "+strconv.FormatUint(uint64(id), 10))
				return
			}
			values = append(values, value)
		}
		candidates[i] = variants.Candidate{AttributeValues: values, SKU: v.SKU, Price: price, Stock: v.Stock}
		drafts[i] = models.VariantDraft{SKU: v.SKU, Price: price, Stock: v.Stock, ValueIDs: v.ValueIDs}
	}

	// The fingerprint matched, so duplicates here mean the payload's value
	// sets were edited after preview.
	if kept := variants.Reconcile(candidates, ix); len(kept) != len(candidates) {
		api.WriteError(w, http.StatusConflict, "request contains combinations that already exist")
		return
	}

	created, err := h.store.CreateVariants(product.ID, drafts)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("product", product.Code).Msg("create variants failed")
		api.WriteError(w, http.StatusInternalServerError, "failed to create variants")
		return
	}

	type createdVariant struct {
		ID  uint   `json:"id"`
		SKU string `json:"sku"`
	}
	out := make([]createdVariant, len(created))
	for i, v := range created {
		out[i] = createdVariant{ID: v.ID, SKU: v.SKU}
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"created": out})
}

// HandleOptions drives the cascading option buttons: which values of one
// attribute remain reachable given the values already fixed for the others.
// in_stock=true applies the order-entry pool policy (active, stock > 0).
func (h *MatrixHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	attributeID, err := parseUintParam(r.URL.Query().Get("attribute"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "missing or invalid attribute parameter")
		return
	}

	fixed, err := parseSelection(r.URL.Query().Get("selected"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pool, ix, ok := h.loadPool(w, r, product, r.URL.Query().Get("in_stock") == "true")
	if !ok {
		return
	}

	available := variants.AvailableValues(attributeID, fixed, pool, ix)

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"attribute_id":        attributeID,
		"available_value_ids": sortedIDs(available),
	})
}

type ResolveResponse struct {
	Variant   ResolvedVariant `json:"variant"`
	Ambiguous bool            `json:"ambiguous"`
}

type ResolvedVariant struct {
	ID     uint    `json:"id"`
	SKU    string  `json:"sku"`
	Price  float64 `json:"price"`
	Stock  int     `json:"stock"`
	Active bool    `json:"active"`
}

// HandleResolve maps a complete selection to the one concrete variant, the
// gate for enabling "add to order". The selection must cover exactly the
// attributes the product's variants are described by.
func (h *MatrixHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	selection, err := parseSelection(r.URL.Query().Get("selected"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pool, ix, ok := h.loadPool(w, r, product, r.URL.Query().Get("in_stock") == "true")
	if !ok {
		return
	}

	required := ix.AttributeIDs()
	if !sameKeySet(selection, required) {
		api.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "selection must cover exactly the product's attributes",
			"reason": "incomplete_selection",
		})
		return
	}

	variant, ambiguous := variants.Resolve(selection, required, pool, ix)
	if variant == nil {
		api.WriteJSON(w, http.StatusNotFound, map[string]any{
			"error":  "no variant matches the selection",
			"reason": "no_match",
		})
		return
	}
	if ambiguous {
		// Data-integrity problem upstream: two variants share one
		// combination. Keep serving the first match, flag the product.
		log.Ctx(r.Context()).Warn().
			Str("product", product.Code).
			Str("sku", variant.SKU).
			Msg("ambiguous variant match, product needs review")
	}

	price := variant.Price
	if price.IsZero() {
		price = product.Price
	}

	api.WriteJSON(w, http.StatusOK, ResolveResponse{
		Variant: ResolvedVariant{
			ID:     variant.ID,
			SKU:    variant.SKU,
			Price:  price.InexactFloat64(),
			Stock:  variant.Stock,
			Active: variant.Active,
		},
		Ambiguous: ambiguous,
	})
}

// HandleLocks returns the attributes and values the add-variants wizard must
// keep selected because existing variants already use them.
func (h *MatrixHandler) HandleLocks(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	_, ix, ok := h.loadPool(w, r, product, false)
	if !ok {
		return
	}

	locks := variants.LockedSelections(ix)
	valuesByAttribute := make(map[uint][]uint, len(locks.ValuesByAttribute))
	for attrID, values := range locks.ValuesByAttribute {
		valuesByAttribute[attrID] = sortedIDs(values)
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"attribute_ids":       sortedIDs(locks.AttributeIDs),
		"values_by_attribute": valuesByAttribute,
	})
}

// HandleAudit reports variants violating the one-value-per-attribute
// expectation. Advisory: dirty data never blocks the selling flows.
func (h *MatrixHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	_, ix, ok := h.loadPool(w, r, product, false)
	if !ok {
		return
	}

	report := variants.Audit(ix, sortedIDs(ix.AttributeIDs()))

	type entry struct {
		VariantID  uint   `json:"variant_id"`
		Missing    []uint `json:"missing_attribute_ids,omitempty"`
		Duplicated []uint `json:"duplicated_attribute_ids,omitempty"`
	}
	out := make([]entry, len(report))
	for i, m := range report {
		out[i] = entry{VariantID: m.VariantID, Missing: m.MissingAttributeIDs, Duplicated: m.DuplicatedAttributeIDs}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"malformed_variants": out})
}

// --- helpers ---

func (h *MatrixHandler) loadProduct(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	code := chi.URLParam(r, "code")
	product, err := h.products.GetByCode(code)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			api.WriteError(w, http.StatusNotFound, "Product not found")
		} else {
			log.Ctx(r.Context()).Error().Err(err).Str("code", code).Msg("load product failed")
			api.WriteError(w, http.StatusInternalServerError, "failed to load product")
		}
		return nil, false
	}
	return product, true
}

// loadValues fetches the attribute-value rows referenced either by the
// request or by the product's existing assignments, keyed by id.
func (h *MatrixHandler) loadValues(w http.ResponseWriter, r *http.Request, requested []uint, assignments []models.VariantAttributeAssignment) (map[uint]models.AttributeValue, bool) {
	seen := make(map[uint]struct{}, len(requested)+len(assignments))
	ids := make([]uint, 0, len(requested)+len(assignments))
	for _, id := range requested {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, a := range assignments {
		if _, dup := seen[a.AttributeValueID]; !dup {
			seen[a.AttributeValueID] = struct{}{}
			ids = append(ids, a.AttributeValueID)
		}
	}

	values, err := h.values.GetValuesByIDs(ids)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("load attribute values failed")
		api.WriteError(w, http.StatusInternalServerError, "failed to load attribute values")
		return nil, false
	}

	byID := make(map[uint]models.AttributeValue, len(values))
	for _, v := range values {
		byID[v.ID] = v
	}
	return byID, true
}

// loadPool fetches the variant snapshot, builds the index and applies the
// in-stock pool policy when asked.
func (h *MatrixHandler) loadPool(w http.ResponseWriter, r *http.Request, product *models.Product, inStockOnly bool) ([]models.Variant, *variants.Index, bool) {
	existing, assignments, err := h.store.GetProductVariantSet(product.ID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("load variant set failed")
		api.WriteError(w, http.StatusInternalServerError, "failed to load variants")
		return nil, nil, false
	}

	valueByID, ok := h.loadValues(w, r, nil, assignments)
	if !ok {
		return nil, nil, false
	}
	ix := variants.BuildIndex(existing, mapValues(valueByID), assignments)

	pool := existing
	if inStockOnly {
		pool = make([]models.Variant, 0, len(existing))
		for _, v := range existing {
			if v.Active && v.Stock > 0 {
				pool = append(pool, v)
			}
		}
	}
	return pool, ix, true
}

func (r *GenerateRequest) selectedValueIDs() []uint {
	var ids []uint
	for _, sel := range r.Selections {
		ids = append(ids, sel.ValueIDs...)
	}
	return ids
}

func toCandidateResponses(candidates []variants.Candidate) []CandidateResponse {
	out := make([]CandidateResponse, len(candidates))
	for i, c := range candidates {
		values := make([]CandidateValue, len(c.AttributeValues))
		for j, v := range c.AttributeValues {
			values[j] = CandidateValue{AttributeID: v.AttributeID, ValueID: v.ID, Value: v.Value}
		}
		out[i] = CandidateResponse{
			SKU:    c.SKU,
			Price:  c.Price.InexactFloat64(),
			Stock:  c.Stock,
			Values: values,
		}
	}
	return out
}

func mapValues(byID map[uint]models.AttributeValue) []models.AttributeValue {
	values := make([]models.AttributeValue, 0, len(byID))
	for _, v := range byID {
		values = append(values, v)
	}
	return values
}

// parseSelection parses "attrID:valueID,attrID:valueID" pairs. A duplicate
// attribute id is rejected; the UI can only fix one value per attribute.
func parseSelection(raw string) (map[uint]uint, error) {
	selection := make(map[uint]uint)
	if raw == "" {
		return selection, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New("selected must be attrID:valueID pairs")
		}
		attrID, err := parseUintParam(parts[0])
		if err != nil {
			return nil, errors.New("invalid attribute id in selected")
		}
		valueID, err := parseUintParam(parts[1])
		if err != nil {
			return nil, errors.New("invalid value id in selected")
		}
		if _, dup := selection[attrID]; dup {
			return nil, errors.New("attribute fixed twice in selected")
		}
		selection[attrID] = valueID
	}
	return selection, nil
}

func parseUintParam(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func sortedIDs(set map[uint]struct{}) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sameKeySet(selection map[uint]uint, required map[uint]struct{}) bool {
	if len(selection) != len(required) {
		return false
	}
	for attrID := range selection {
		if _, ok := required[attrID]; !ok {
			return false
		}
	}
	return true
}
