package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookwyrms/hoard/internal/catalog"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (occupying ISBN, book count, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "validation"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondDomainError maps the catalog's typed errors onto HTTP statuses:
// validation and empty-query are 400, not-found 404, conflicts 409, and
// checkout-state violations also 409. Anything else is a 500.
func respondDomainError(c *gin.Context, err error, context string) {
	var (
		notFound *catalog.NotFoundError
		conflict *catalog.ConflictError
	)
	switch {
	case catalog.IsValidation(err), errors.Is(err, catalog.ErrEmptyQuery):
		respondBadRequest(c, err.Error())
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.As(err, &conflict):
		details := gin.H{}
		if conflict.OccupiedBy != "" {
			details["occupied_by"] = conflict.OccupiedBy
		}
		if conflict.BookCount > 0 {
			details["book_count"] = conflict.BookCount
		}
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "conflict", Details: details})
	case catalog.IsStateError(err):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "state"})
	case errors.Is(err, catalog.ErrNoHomeLocation):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "no_home_location"})
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}
