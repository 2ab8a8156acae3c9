package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-labs/bookstore-api/internal/auth"
	"github.com/inkwell-labs/bookstore-api/internal/models"
)

// CommentServiceInterface defines the interface for review business logic
type CommentServiceInterface interface {
	ListByBook(ctx context.Context, bookID int64) ([]*models.Comment, error)
	Create(ctx context.Context, accountID, bookID int64, rating int, content *string) (*models.Comment, error)
	Update(ctx context.Context, accountID, commentID int64, rating int, content *string) (*models.Comment, error)
	Delete(ctx context.Context, account *models.Account, commentID int64) error
}

// CommentHandler handles review HTTP requests
type CommentHandler struct {
	service  CommentServiceInterface
	accounts auth.AccountFetcher
}

func NewCommentHandler(service CommentServiceInterface, accounts auth.AccountFetcher) *CommentHandler {
	return &CommentHandler{service: service, accounts: accounts}
}

type commentJSON struct {
	ID          int64   `json:"id"`
	Rating      int     `json:"rating"`
	Content     *string `json:"content"`
	AccountID   int64   `json:"account_id"`
	BookID      int64   `json:"book_id"`
	CommentDate string  `json:"comment_date"`
}

func toCommentJSON(comment *models.Comment) commentJSON {
	return commentJSON{
		ID:          comment.ID,
		Rating:      comment.Rating,
		Content:     comment.Content,
		AccountID:   comment.AccountID,
		BookID:      comment.BookID,
		CommentDate: comment.CommentDate.Format(time.RFC3339),
	}
}

// CommentRequest represents the request body for creating or updating a review
type CommentRequest struct {
	Rating  int     `json:"rating" validate:"required,gte=1,lte=5"`
	Content *string `json:"content"`
}

// ListByBook handles GET /api/books/{id}/comments
func (h *CommentHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid book ID.")
		return
	}

	comments, err := h.service.ListByBook(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Book not found.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to list comments.")
		return
	}

	data := make([]commentJSON, 0, len(comments))
	for _, comment := range comments {
		data = append(data, toCommentJSON(comment))
	}

	writeMessageWithData(w, http.StatusOK, "OK", data)
}

// Create handles POST /api/books/{id}/comments (authenticated)
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAccountFromContext(r)
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	bookID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid book ID.")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), claims.AccountID, bookID, req.Rating, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "Book not found.")
		case errors.Is(err, models.ErrConflict):
			writeMessage(w, http.StatusConflict, "You have already reviewed this book.")
		case errors.Is(err, models.ErrBadRequest):
			writeMessage(w, http.StatusBadRequest, "Rating must be between 1 and 5.")
		default:
			writeMessage(w, http.StatusInternalServerError, "Failed to create comment.")
		}
		return
	}

	writeMessageWithData(w, http.StatusCreated, "Comment created.", toCommentJSON(created))
}

// Update handles PUT /api/comments/{id} (authenticated, owner only)
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAccountFromContext(r)
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	commentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid comment ID.")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), claims.AccountID, commentID, req.Rating, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "Comment not found.")
		case errors.Is(err, models.ErrForbidden):
			writeMessage(w, http.StatusForbidden, "You can only edit your own comments.")
		case errors.Is(err, models.ErrBadRequest):
			writeMessage(w, http.StatusBadRequest, "Rating must be between 1 and 5.")
		default:
			writeMessage(w, http.StatusInternalServerError, "Failed to update comment.")
		}
		return
	}

	writeMessageWithData(w, http.StatusOK, "Comment updated.", toCommentJSON(updated))
}

// Delete handles DELETE /api/comments/{id} (authenticated, owner or admin)
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAccountFromContext(r)
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	commentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid comment ID.")
		return
	}

	account, err := h.accounts.GetByID(r.Context(), claims.AccountID)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Authentication required.")
		return
	}

	if err := h.service.Delete(r.Context(), account, commentID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "Comment not found.")
		case errors.Is(err, models.ErrForbidden):
			writeMessage(w, http.StatusForbidden, "You can only delete your own comments.")
		default:
			writeMessage(w, http.StatusInternalServerError, "Failed to delete comment.")
		}
		return
	}

	writeMessage(w, http.StatusOK, "Comment deleted.")
}
