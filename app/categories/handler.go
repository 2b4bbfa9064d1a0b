package categories

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/velamoda/backoffice/app/api"
	"github.com/velamoda/backoffice/models"
)

type CategoryResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type CategoryProvider interface {
	GetAllCategories() ([]models.Category, error)
	CreateCategory(category *models.Category) error
}

type CategoryHandler struct {
	repo     CategoryProvider
	validate *validator.Validate
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{
		repo:     r,
		validate: validator.New(),
	}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories()
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("list categories failed")
		api.WriteError(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = CategoryResponse{
			Code: c.Code,
			Name: c.Name,
		}
	}

	api.WriteJSON(w, http.StatusOK, response)
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Code string `json:"code" validate:"required"`
		Name string `json:"name" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.validate.Struct(input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Missing code or name")
		return
	}

	category := &models.Category{
		Code: input.Code,
		Name: input.Name,
	}

	if err := h.repo.CreateCategory(category); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("code", input.Code).Msg("create category failed")
		api.WriteError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Category created successfully",
	})
}
