package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/stockroom/internal/core/domain"
)

// Error codes carried in the "code" field of every error body.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeNotFound             = "RESOURCE_NOT_FOUND"
	CodeOutOfStock           = "OUT_OF_STOCK"
	CodeQuantityLimit        = "QUANTITY_LIMIT_EXCEEDED"
	CodeInternal             = "INTERNAL_ERROR"
)

const invalidJSONMessage = "Invalid JSON format or missing Content-Type: application/json"

var (
	invalidArgumentMessage = fmt.Sprintf("Quantity must be an integer between 0 and %d and name must be 1 to %d characters",
		domain.MaxQuantity, domain.MaxNameLength)
	quantityLimitMessage = fmt.Sprintf("Quantity cannot exceed %d", domain.MaxQuantity)
)

type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	return e.Message
}

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func validationError(message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: CodeValidation, Message: message}
}

func unsupportedMediaType() *apiError {
	return &apiError{Status: http.StatusUnsupportedMediaType, Code: CodeUnsupportedMediaType, Message: invalidJSONMessage}
}

// mapError translates a store error into the HTTP error taxonomy.
func mapError(err error) *apiError {
	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, domain.ErrInvalidArgument):
		return validationError(invalidArgumentMessage)
	case errors.Is(err, domain.ErrAlreadyExists):
		return &apiError{Status: http.StatusBadRequest, Code: CodeAlreadyExists, Message: "Item already exists"}
	case errors.Is(err, domain.ErrNotFound):
		return &apiError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "Item not found"}
	case errors.Is(err, domain.ErrOutOfStock):
		return &apiError{Status: http.StatusBadRequest, Code: CodeOutOfStock, Message: "Item is out of stock"}
	case errors.Is(err, domain.ErrQuantityLimit):
		return &apiError{Status: http.StatusBadRequest, Code: CodeQuantityLimit, Message: quantityLimitMessage}
	default:
		return &apiError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "Internal server error"}
	}
}

func writeError(c *gin.Context, err *apiError) {
	c.AbortWithStatusJSON(err.Status, ErrorResponse{Error: err.Message, Code: err.Code})
}
