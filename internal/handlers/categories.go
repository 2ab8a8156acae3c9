package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-labs/bookstore-api/internal/models"
)

// CategoryServiceInterface defines the interface for category business logic
type CategoryServiceInterface interface {
	List(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, id int64, category *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	service CategoryServiceInterface
}

func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

type categoryJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

func toCategoryJSON(category *models.Category) categoryJSON {
	return categoryJSON{ID: category.ID, Name: category.Name, SortOrder: category.SortOrder}
}

// CategoryRequest represents the request body for creating or updating a category
type CategoryRequest struct {
	Name      string `json:"name" validate:"required,min=1"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

// List handles GET /api/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Failed to list categories.")
		return
	}

	data := make([]categoryJSON, 0, len(categories))
	for _, category := range categories {
		data = append(data, toCategoryJSON(category))
	}

	writeMessageWithData(w, http.StatusOK, "OK", data)
}

// Create handles POST /api/categories (admin)
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), &models.Category{Name: req.Name, SortOrder: req.SortOrder})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			writeMessage(w, http.StatusBadRequest, "Category name is required.")
		case errors.Is(err, models.ErrConflict):
			writeMessage(w, http.StatusConflict, "A category with this name already exists.")
		default:
			writeMessage(w, http.StatusInternalServerError, "Failed to create category.")
		}
		return
	}

	writeMessageWithData(w, http.StatusCreated, "Category created.", toCategoryJSON(created))
}

// Update handles PUT /api/categories/{id} (admin)
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid category ID.")
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), id, &models.Category{Name: req.Name, SortOrder: req.SortOrder})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "Category not found.")
		case errors.Is(err, models.ErrConflict):
			writeMessage(w, http.StatusConflict, "A category with this name already exists.")
		case errors.Is(err, models.ErrBadRequest):
			writeMessage(w, http.StatusBadRequest, "Category name is required.")
		default:
			writeMessage(w, http.StatusInternalServerError, "Failed to update category.")
		}
		return
	}

	writeMessageWithData(w, http.StatusOK, "Category updated.", toCategoryJSON(updated))
}

// Delete handles DELETE /api/categories/{id} (admin)
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid category ID.")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "Category not found.")
		case errors.Is(err, models.ErrConflict):
			writeMessage(w, http.StatusConflict, "Category still has books and cannot be deleted.")
		default:
			writeMessage(w, http.StatusInternalServerError, "Failed to delete category.")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Category deleted.")
}
