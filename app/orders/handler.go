// Package orders implements back-office order entry. A line is added by
// resolving a complete attribute selection to one concrete variant through
// the matrix engine, the same picker flow the storefront admin uses.
package orders

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/velamoda/backoffice/app/api"
	"github.com/velamoda/backoffice/models"
	"github.com/velamoda/backoffice/variants"
)

type OrderStore interface {
	CreateOrder(customerName string) (*models.Order, error)
	GetByNumber(number string) (*models.Order, error)
	AddLine(orderID, variantID uint, quantity int, unitPrice decimal.Decimal) (*models.OrderLine, error)
}

type ProductProvider interface {
	GetByCode(code string) (*models.Product, error)
}

type VariantSetProvider interface {
	GetProductVariantSet(productID uint) ([]models.Variant, []models.VariantAttributeAssignment, error)
}

type ValueProvider interface {
	GetValuesByIDs(ids []uint) ([]models.AttributeValue, error)
}

type OrdersHandler struct {
	orders   OrderStore
	products ProductProvider
	store    VariantSetProvider
	values   ValueProvider
	validate *validator.Validate
}

func NewOrdersHandler(orders OrderStore, products ProductProvider, store VariantSetProvider, values ValueProvider) *OrdersHandler {
	return &OrdersHandler{
		orders:   orders,
		products: products,
		store:    store,
		values:   values,
		validate: validator.New(),
	}
}

func (h *OrdersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CustomerName string `json:"customer_name" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Missing customer_name")
		return
	}

	order, err := h.orders.CreateOrder(input.CustomerName)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("create order failed")
		api.WriteError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]string{
		"number": order.Number,
		"status": order.Status,
	})
}

type LineResponse struct {
	OrderNumber string  `json:"order_number"`
	VariantID   uint    `json:"variant_id"`
	SKU         string  `json:"sku"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Ambiguous   bool    `json:"ambiguous,omitempty"`
}

type SelectedValue struct {
	AttributeID uint `json:"attribute_id" validate:"required"`
	ValueID     uint `json:"value_id" validate:"required"`
}

type AddLineRequest struct {
	ProductCode string          `json:"product_code" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	Selection   []SelectedValue `json:"selection" validate:"required,min=1,dive"`
}

// HandleAddLine resolves the operator's selection to a variant and appends it
// to the order. Only active, in-stock variants are candidates; the stock
// decrement is conditional so the last unit cannot be sold twice.
func (h *OrdersHandler) HandleAddLine(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	order, err := h.orders.GetByNumber(number)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			api.WriteError(w, http.StatusNotFound, "Order not found")
		} else {
			log.Ctx(r.Context()).Error().Err(err).Msg("load order failed")
			api.WriteError(w, http.StatusInternalServerError, "failed to load order")
		}
		return
	}

	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	selection := make(map[uint]uint, len(req.Selection))
	for _, s := range req.Selection {
		if _, dup := selection[s.AttributeID]; dup {
			api.WriteError(w, http.StatusBadRequest, "attribute selected twice")
			return
		}
		selection[s.AttributeID] = s.ValueID
	}

	product, err := h.products.GetByCode(req.ProductCode)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			api.WriteError(w, http.StatusNotFound, "Product not found")
		} else {
			log.Ctx(r.Context()).Error().Err(err).Msg("load product failed")
			api.WriteError(w, http.StatusInternalServerError, "failed to load product")
		}
		return
	}

	existing, assignments, err := h.store.GetProductVariantSet(product.ID)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("load variant set failed")
		api.WriteError(w, http.StatusInternalServerError, "failed to load variants")
		return
	}

	valueIDs := make([]uint, 0, len(assignments))
	seen := make(map[uint]struct{}, len(assignments))
	for _, a := range assignments {
		if _, dup := seen[a.AttributeValueID]; !dup {
			seen[a.AttributeValueID] = struct{}{}
			valueIDs = append(valueIDs, a.AttributeValueID)
		}
	}
	values, err := h.values.GetValuesByIDs(valueIDs)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("load attribute values failed")
		api.WriteError(w, http.StatusInternalServerError, "failed to load attribute values")
		return
	}

	ix := variants.BuildIndex(existing, values, assignments)

	// Order entry only sells what is active and on the shelf.
	pool := make([]models.Variant, 0, len(existing))
	for _, v := range existing {
		if v.Active && v.Stock > 0 {
			pool = append(pool, v)
		}
	}

	required := ix.AttributeIDs()
	variant, ambiguous := variants.Resolve(selection, required, pool, ix)
	if variant == nil {
		if len(selection) != len(required) {
			api.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error":  "selection must cover exactly the product's attributes",
				"reason": "incomplete_selection",
			})
			return
		}
		api.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error":  "no sellable variant matches the selection",
			"reason": "no_match",
		})
		return
	}
	if ambiguous {
		log.Ctx(r.Context()).Warn().
			Str("product", product.Code).
			Str("sku", variant.SKU).
			Msg("ambiguous variant match, product needs review")
	}

	unitPrice := variant.Price
	if unitPrice.IsZero() {
		unitPrice = product.Price
	}

	line, err := h.orders.AddLine(order.ID, variant.ID, req.Quantity, unitPrice)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientStock) {
			api.WriteError(w, http.StatusConflict, "insufficient stock")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("add order line failed")
		api.WriteError(w, http.StatusInternalServerError, "failed to add line")
		return
	}

	api.WriteJSON(w, http.StatusCreated, LineResponse{
		OrderNumber: order.Number,
		VariantID:   variant.ID,
		SKU:         variant.SKU,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice.InexactFloat64(),
		Ambiguous:   ambiguous,
	})
}

func (h *OrdersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	order, err := h.orders.GetByNumber(number)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			api.WriteError(w, http.StatusNotFound, "Order not found")
		} else {
			log.Ctx(r.Context()).Error().Err(err).Msg("load order failed")
			api.WriteError(w, http.StatusInternalServerError, "failed to load order")
		}
		return
	}

	type lineOut struct {
		SKU       string  `json:"sku"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unit_price"`
	}
	lines := make([]lineOut, len(order.Lines))
	for i, l := range order.Lines {
		lines[i] = lineOut{
			SKU:       l.Variant.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.InexactFloat64(),
		}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"number":        order.Number,
		"customer_name": order.CustomerName,
		"status":        order.Status,
		"lines":         lines,
	})
}
