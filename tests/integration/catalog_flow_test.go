package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookPayload struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	AuthorName       string  `json:"authorName"`
	UnitPrice        float64 `json:"unitPrice"`
	TotalRatingValue int     `json:"totalRatingValue"`
	TotalRatingCount int     `json:"totalRatingCount"`
}

type bookListPayload struct {
	Data       []bookPayload `json:"data"`
	Pagination *struct {
		TotalPages  int  `json:"totalPages"`
		TotalItems  int  `json:"totalItems"`
		CurrentPage int  `json:"currentPage"`
		Limit       int  `json:"limit"`
		HasNext     bool `json:"hasNext"`
		HasPrevious bool `json:"hasPrevious"`
	} `json:"pagination"`
	Status int    `json:"status"`
	Error  string `json:"error"`
}

type bookEnvelope struct {
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Data    bookPayload `json:"data"`
}

type categoryPayload struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type categoryListEnvelope struct {
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Data    []categoryPayload `json:"data"`
}

type commentPayload struct {
	ID        int64   `json:"id"`
	Rating    int     `json:"rating"`
	Content   *string `json:"content"`
	AccountID int64   `json:"account_id"`
	BookID    int64   `json:"book_id"`
}

type commentEnvelope struct {
	Message string         `json:"message"`
	Status  int            `json:"status"`
	Data    commentPayload `json:"data"`
}

type commentListEnvelope struct {
	Message string           `json:"message"`
	Status  int              `json:"status"`
	Data    []commentPayload `json:"data"`
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestCategoryLifecycle(t *testing.T) {
	server := freshServer(t)
	ctx := context.Background()

	adminEmail, adminPassword := TestAccountCredentials("cat-admin")
	admin, err := testDB.CreateTestAccount(ctx, adminEmail, adminPassword, true)
	require.NoError(t, err)
	adminToken, err := server.AccessTokenFor(admin)
	require.NoError(t, err)

	readerEmail, readerPassword := TestAccountCredentials("cat-reader")
	reader, err := testDB.CreateTestAccount(ctx, readerEmail, readerPassword, false)
	require.NoError(t, err)
	readerToken, err := server.AccessTokenFor(reader)
	require.NoError(t, err)

	// Regular accounts cannot manage categories.
	resp, err := server.DoJSON(http.MethodPost, "/api/categories/", map[string]string{"name": "Fiction"},
		bearer(readerToken), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var created apiEnvelope
	resp, err = server.DoJSON(http.MethodPost, "/api/categories/", map[string]string{"name": "Fiction"},
		bearer(adminToken), &created)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = server.DoJSON(http.MethodPost, "/api/categories/", map[string]string{"name": "Science"},
		bearer(adminToken), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Duplicate names are rejected.
	var dup apiEnvelope
	resp, err = server.DoJSON(http.MethodPost, "/api/categories/", map[string]string{"name": "Fiction"},
		bearer(adminToken), &dup)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "A category with this name already exists.", dup.Message)

	// Sort order is assigned in creation order and the list is public.
	var list categoryListEnvelope
	resp, err = server.DoJSON(http.MethodGet, "/api/categories/", nil, nil, &list)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "Fiction", list.Data[0].Name)
	assert.Equal(t, 10, list.Data[0].SortOrder)
	assert.Equal(t, "Science", list.Data[1].Name)
	assert.Equal(t, 20, list.Data[1].SortOrder)

	// A category that still holds books cannot be removed.
	_, err = testDB.CreateTestBook(ctx, "Dune", "Frank Herbert", list.Data[0].ID)
	require.NoError(t, err)

	var blocked apiEnvelope
	resp, err = server.DoJSON(http.MethodDelete, fmt.Sprintf("/api/categories/%d", list.Data[0].ID), nil,
		bearer(adminToken), &blocked)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Category still has books and cannot be deleted.", blocked.Message)

	resp, err = server.DoJSON(http.MethodDelete, fmt.Sprintf("/api/categories/%d", list.Data[1].ID), nil,
		bearer(adminToken), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBookListPaginationAndFilters(t *testing.T) {
	server := freshServer(t)
	ctx := context.Background()

	fiction, err := testDB.CreateTestCategory(ctx, "Fiction")
	require.NoError(t, err)
	science, err := testDB.CreateTestCategory(ctx, "Science")
	require.NoError(t, err)

	for i := 1; i <= 15; i++ {
		_, err := testDB.CreateTestBook(ctx, fmt.Sprintf("Fiction Volume %02d", i), "Ann Author", fiction.ID)
		require.NoError(t, err)
	}
	for i := 1; i <= 10; i++ {
		_, err := testDB.CreateTestBook(ctx, fmt.Sprintf("Science Volume %02d", i), "Bob Writer", science.ID)
		require.NoError(t, err)
	}

	var page bookListPayload
	resp, err := server.DoJSON(http.MethodGet, "/api/books/?page=1&limit=10", nil, nil, &page)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, page.Pagination)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, 25, page.Pagination.TotalItems)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.True(t, page.Pagination.HasNext)
	assert.False(t, page.Pagination.HasPrevious)

	// A page past the end clamps to the last page instead of erroring.
	resp, err = server.DoJSON(http.MethodGet, "/api/books/?page=99&limit=10", nil, nil, &page)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, page.Pagination.CurrentPage)
	assert.Len(t, page.Data, 5)
	assert.False(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrevious)

	// Category filter is case-insensitive.
	resp, err = server.DoJSON(http.MethodGet, "/api/books/?category=fiction&limit=100", nil, nil, &page)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 15, page.Pagination.TotalItems)
	assert.Len(t, page.Data, 15)

	// Search matches title and author.
	resp, err = server.DoJSON(http.MethodGet, "/api/books/?search=bob+writer&limit=100", nil, nil, &page)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, page.Pagination.TotalItems)

	resp, err = server.DoJSON(http.MethodGet, "/api/books/?search=Volume+03", nil, nil, &page)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, page.Pagination.TotalItems)

	// Non-numeric pagination parameters are a client error.
	resp, err = server.DoJSON(http.MethodGet, "/api/books/?limit=abc", nil, nil, &page)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid page or limit parameter", page.Error)
	assert.Nil(t, page.Pagination)
	assert.Empty(t, page.Data)
}

func TestBookAdminCRUD(t *testing.T) {
	server := freshServer(t)
	ctx := context.Background()

	category, err := testDB.CreateTestCategory(ctx, "History")
	require.NoError(t, err)

	adminEmail, adminPassword := TestAccountCredentials("book-admin")
	admin, err := testDB.CreateTestAccount(ctx, adminEmail, adminPassword, true)
	require.NoError(t, err)
	adminToken, err := server.AccessTokenFor(admin)
	require.NoError(t, err)

	readerEmail, readerPassword := TestAccountCredentials("book-reader")
	reader, err := testDB.CreateTestAccount(ctx, readerEmail, readerPassword, false)
	require.NoError(t, err)
	readerToken, err := server.AccessTokenFor(reader)
	require.NoError(t, err)

	body := map[string]interface{}{
		"title":       "SPQR",
		"author_name": "Mary Beard",
		"unit_price":  24.50,
		"category_id": category.ID,
	}

	resp, err := server.DoJSON(http.MethodPost, "/api/books/", body, bearer(readerToken), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var created bookEnvelope
	resp, err = server.DoJSON(http.MethodPost, "/api/books/", body, bearer(adminToken), &created)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "SPQR", created.Data.Title)
	require.NotZero(t, created.Data.ID)

	// Unknown category is rejected up front.
	badBody := map[string]interface{}{
		"title":       "Orphan",
		"author_name": "Nobody",
		"unit_price":  1.0,
		"category_id": 99999,
	}
	var badResp apiEnvelope
	resp, err = server.DoJSON(http.MethodPost, "/api/books/", badBody, bearer(adminToken), &badResp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid book data or unknown category.", badResp.Message)

	body["unit_price"] = 19.99
	var updated bookEnvelope
	resp, err = server.DoJSON(http.MethodPut, fmt.Sprintf("/api/books/%d", created.Data.ID), body,
		bearer(adminToken), &updated)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 19.99, updated.Data.UnitPrice, 0.001)

	var fetched bookEnvelope
	resp, err = server.DoJSON(http.MethodGet, fmt.Sprintf("/api/books/%d", created.Data.ID), nil, nil, &fetched)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mary Beard", fetched.Data.AuthorName)

	resp, err = server.DoJSON(http.MethodDelete, fmt.Sprintf("/api/books/%d", created.Data.ID), nil,
		bearer(adminToken), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var missing apiEnvelope
	resp, err = server.DoJSON(http.MethodGet, fmt.Sprintf("/api/books/%d", created.Data.ID), nil, nil, &missing)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Book not found.", missing.Message)
}

func TestCommentLifecycleAndRatingAggregation(t *testing.T) {
	server := freshServer(t)
	ctx := context.Background()

	category, err := testDB.CreateTestCategory(ctx, "Fantasy")
	require.NoError(t, err)
	book, err := testDB.CreateTestBook(ctx, "The Hobbit", "J.R.R. Tolkien", category.ID)
	require.NoError(t, err)

	firstEmail, firstPassword := TestAccountCredentials("reviewer-one")
	first, err := testDB.CreateTestAccount(ctx, firstEmail, firstPassword, false)
	require.NoError(t, err)
	firstToken, err := server.AccessTokenFor(first)
	require.NoError(t, err)

	secondEmail, secondPassword := TestAccountCredentials("reviewer-two")
	second, err := testDB.CreateTestAccount(ctx, secondEmail, secondPassword, false)
	require.NoError(t, err)
	secondToken, err := server.AccessTokenFor(second)
	require.NoError(t, err)

	adminEmail, adminPassword := TestAccountCredentials("review-admin")
	admin, err := testDB.CreateTestAccount(ctx, adminEmail, adminPassword, true)
	require.NoError(t, err)
	adminToken, err := server.AccessTokenFor(admin)
	require.NoError(t, err)

	commentsURL := fmt.Sprintf("/api/books/%d/comments", book.ID)
	bookURL := fmt.Sprintf("/api/books/%d", book.ID)

	bookTotals := func() (int, int) {
		var envelope bookEnvelope
		resp, err := server.DoJSON(http.MethodGet, bookURL, nil, nil, &envelope)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return envelope.Data.TotalRatingValue, envelope.Data.TotalRatingCount
	}

	// Anonymous reviews are rejected.
	resp, err := server.DoJSON(http.MethodPost, commentsURL, map[string]interface{}{"rating": 4}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	content := "Loved it"
	var firstComment commentEnvelope
	resp, err = server.DoJSON(http.MethodPost, commentsURL,
		map[string]interface{}{"rating": 4, "content": content}, bearer(firstToken), &firstComment)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 4, firstComment.Data.Rating)
	assert.Equal(t, first.ID, firstComment.Data.AccountID)

	value, count := bookTotals()
	assert.Equal(t, 4, value)
	assert.Equal(t, 1, count)

	var secondComment commentEnvelope
	resp, err = server.DoJSON(http.MethodPost, commentsURL,
		map[string]interface{}{"rating": 2}, bearer(secondToken), &secondComment)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	value, count = bookTotals()
	assert.Equal(t, 6, value)
	assert.Equal(t, 2, count)

	// One review per account per book.
	var dup apiEnvelope
	resp, err = server.DoJSON(http.MethodPost, commentsURL,
		map[string]interface{}{"rating": 5}, bearer(firstToken), &dup)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "You have already reviewed this book.", dup.Message)

	var list commentListEnvelope
	resp, err = server.DoJSON(http.MethodGet, commentsURL, nil, nil, &list)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list.Data, 2)

	// Editing recomputes the aggregate.
	var edited commentEnvelope
	resp, err = server.DoJSON(http.MethodPut, fmt.Sprintf("/api/comments/%d", firstComment.Data.ID),
		map[string]interface{}{"rating": 5}, bearer(firstToken), &edited)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, edited.Data.Rating)

	value, count = bookTotals()
	assert.Equal(t, 7, value)
	assert.Equal(t, 2, count)

	// Only the owner can edit.
	var forbidden apiEnvelope
	resp, err = server.DoJSON(http.MethodPut, fmt.Sprintf("/api/comments/%d", firstComment.Data.ID),
		map[string]interface{}{"rating": 1}, bearer(secondToken), &forbidden)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "You can only edit your own comments.", forbidden.Message)

	// Only the owner or an admin can delete.
	resp, err = server.DoJSON(http.MethodDelete, fmt.Sprintf("/api/comments/%d", secondComment.Data.ID),
		nil, bearer(firstToken), &forbidden)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = server.DoJSON(http.MethodDelete, fmt.Sprintf("/api/comments/%d", secondComment.Data.ID),
		nil, bearer(adminToken), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	value, count = bookTotals()
	assert.Equal(t, 5, value)
	assert.Equal(t, 1, count)
}
