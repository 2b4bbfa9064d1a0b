package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/velamoda/backoffice/app/api"
	"github.com/velamoda/backoffice/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Category struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Product struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Active   bool     `json:"active"`
	Category Category `json:"category"`
}

type VariantValue struct {
	AttributeID uint   `json:"attribute_id"`
	Attribute   string `json:"attribute"`
	ValueID     uint   `json:"value_id"`
	Value       string `json:"value"`
}

type Variant struct {
	ID     uint           `json:"id"`
	SKU    string         `json:"sku"`
	Price  float64        `json:"price"`
	Stock  int            `json:"stock"`
	Active bool           `json:"active"`
	Values []VariantValue `json:"values"`
}

type ProductProvider interface {
	GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetByCode(code string) (*models.Product, error)
}

type CatalogHandler struct {
	repo ProductProvider
}

func NewCatalogHandler(r ProductProvider) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// Parse pagination query params
	offset := 0
	limit := 10

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	// Parse filters
	categoryCode := r.URL.Query().Get("category")

	var priceFilter *float64
	if priceStr := r.URL.Query().Get("price_lt"); priceStr != "" {
		if val, err := strconv.ParseFloat(priceStr, 64); err == nil {
			priceFilter = &val
		}
	}

	filters := models.ProductFilters{
		CategoryCode:  categoryCode,
		PriceLessThan: priceFilter,
		ActiveOnly:    r.URL.Query().Get("active") == "true",
	}

	res, total, err := h.repo.GetFilteredProducts(offset, limit, filters)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = Product{
			Code:   p.Code,
			Name:   p.Name,
			Price:  p.Price.InexactFloat64(),
			Active: p.Active,
			Category: Category{
				Code: p.Category.Code,
				Name: p.Category.Name,
			},
		}
	}

	api.WriteJSON(w, http.StatusOK, Response{
		Total:    int(total),
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	product, err := h.repo.GetByCode(code)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			api.WriteError(w, http.StatusNotFound, "Product not found")
		} else {
			api.WriteError(w, http.StatusInternalServerError, "Failed to retrieve product")
		}
		return
	}

	// Map response
	variants := make([]Variant, len(product.Variants))
	for i, v := range product.Variants {
		price := v.Price
		if price.IsZero() {
			price = product.Price
		}

		values := make([]VariantValue, len(v.Assignments))
		for j, a := range v.Assignments {
			values[j] = VariantValue{
				AttributeID: a.AttributeValue.AttributeID,
				Attribute:   a.AttributeValue.Attribute.Name,
				ValueID:     a.AttributeValueID,
				Value:       a.AttributeValue.Value,
			}
		}

		variants[i] = Variant{
			ID:     v.ID,
			SKU:    v.SKU,
			Price:  price.InexactFloat64(),
			Stock:  v.Stock,
			Active: v.Active,
			Values: values,
		}
	}

	response := struct {
		Code     string    `json:"code"`
		Name     string    `json:"name"`
		Price    float64   `json:"price"`
		Active   bool      `json:"active"`
		Category Category  `json:"category"`
		Variants []Variant `json:"variants"`
	}{
		Code:   product.Code,
		Name:   product.Name,
		Price:  product.Price.InexactFloat64(),
		Active: product.Active,
		Category: Category{
			Code: product.Category.Code,
			Name: product.Category.Name,
		},
		Variants: variants,
	}

	api.WriteJSON(w, http.StatusOK, response)
}
