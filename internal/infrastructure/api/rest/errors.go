package rest

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/sheetfill/engine/pkg/models"
)

type APIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(code, message string, httpStatus int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func NewAPIErrorWithDetails(code, message string, httpStatus int, details map[string]interface{}) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		Details:    details,
		HTTPStatus: httpStatus,
	}
}

var (
	ErrBadRequest       = NewAPIError("BAD_REQUEST", "Invalid request", http.StatusBadRequest)
	ErrUnauthorized     = NewAPIError("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrForbidden        = NewAPIError("FORBIDDEN", "Access denied", http.StatusForbidden)
	ErrNotFound         = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrConflict         = NewAPIError("CONFLICT", "Resource conflict", http.StatusConflict)
	ErrValidationFailed = NewAPIError("VALIDATION_FAILED", "Validation failed", http.StatusBadRequest)
	ErrInternalServer   = NewAPIError("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrTooManyRequests  = NewAPIError("RATE_LIMIT_EXCEEDED", "Too many requests", http.StatusTooManyRequests)
	ErrInvalidJSON      = NewAPIError("INVALID_JSON", "Invalid JSON in request body", http.StatusBadRequest)
	ErrMissingParameter = NewAPIError("MISSING_PARAMETER", "Required parameter is missing", http.StatusBadRequest)
	ErrInvalidParameter = NewAPIError("INVALID_PARAMETER", "Invalid parameter value", http.StatusBadRequest)
)

// TranslateError maps a domain/application error to the REST envelope,
// falling back to a generic 500 for anything it doesn't recognize.
func TranslateError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, models.ErrSheetNotFound):
		return NewAPIError("SHEET_NOT_FOUND", "Sheet not found", http.StatusNotFound)
	case errors.Is(err, models.ErrColumnNotFound):
		return NewAPIError("COLUMN_NOT_FOUND", "Column not found", http.StatusNotFound)
	case errors.Is(err, models.ErrCellNotFound):
		return NewAPIError("CELL_NOT_FOUND", "Cell not found", http.StatusNotFound)
	case errors.Is(err, models.ErrEventNotFound):
		return NewAPIError("EVENT_NOT_FOUND", "Event not found", http.StatusNotFound)

	case errors.Is(err, models.ErrInvalidColumnPositions):
		return NewAPIError("INVALID_COLUMN_POSITIONS", err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrSeedColumnHasOperator):
		return NewAPIError("SEED_COLUMN_HAS_OPERATOR", err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrEventNotPending):
		return NewAPIError("EVENT_NOT_PENDING", err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrEventNotProcessing):
		return NewAPIError("EVENT_NOT_PROCESSING", err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrOperatorNotFound):
		return NewAPIError("OPERATOR_NOT_FOUND", err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrInvalidConfig):
		return NewAPIError("INVALID_CONFIG", err.Error(), http.StatusBadRequest)

	case errors.Is(err, sql.ErrNoRows):
		return NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "no rows") || strings.Contains(errMsg, "not found") {
		return NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return NewAPIErrorWithDetails(
			"VALIDATION_ERROR",
			validationErr.Message,
			http.StatusBadRequest,
			map[string]interface{}{"field": validationErr.Field},
		)
	}

	var validationErrs models.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		details := make(map[string]interface{})
		for _, ve := range validationErrs {
			details[ve.Field] = ve.Message
		}
		return NewAPIErrorWithDetails("VALIDATION_FAILED", validationErrs[0].Message, http.StatusBadRequest, details)
	}

	return NewAPIError("INTERNAL_ERROR", "An unexpected error occurred", http.StatusInternalServerError)
}
