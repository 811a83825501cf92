// Package dto contains the JSON shapes exchanged with storefront clients.
// Every field name is camelCase.
package dto

// Error codes that are not tied to a domain error.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// PaginateResponse is one page of a catalog listing.
type PaginateResponse[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// NewPage builds a page and works out whether rows remain after it.
//
// Parameters:
//   - items: the rows of this page
//   - total: rows matching the filter across all pages
//   - limit: page size that was applied
//   - offset: index of the first row of this page
//
// Returns:
//   - PaginateResponse[T]: the page
func NewPage[T any](items []T, total int64, limit, offset int) PaginateResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PaginateResponse[T]{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(items)) < total,
	}
}

// APIResponse is the envelope around every HTTP response body.
type APIResponse[T any] struct {
	Success bool          `json:"success"`
	Data    T             `json:"data,omitempty"`
	Error   *APIError     `json:"error,omitempty"`
	Meta    *ResponseMeta `json:"meta,omitempty"`
}

// APIError describes why a request was rejected. Code is stable
// (CAPACITY_EXCEEDED, NO_CART_SELECTED, ...) and safe to branch on.
type APIError struct {
	Code             string            `json:"code"`
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors,omitempty"`
}

// ValidationError points at one rejected field of a vegetable form.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`

	// Value echoes the rejected input, e.g. an unsupported weight token.
	Value any `json:"value,omitempty"`
}

// ResponseMeta ties a response to its request log lines.
type ResponseMeta struct {
	RequestID string `json:"requestId,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// NewSuccessResponse wraps data in a success envelope.
//
// Parameters:
//   - data: the response payload
//
// Returns:
//   - APIResponse[T]: the envelope
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse wraps an error code and message.
//
// Parameters:
//   - code: stable error code
//   - message: human readable explanation
//
// Returns:
//   - APIResponse[T]: the error envelope
func NewErrorResponse[T any](code, message string) APIResponse[T] {
	return APIResponse[T]{
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}
}

// NewValidationErrorResponse reports every rejected field at once.
func NewValidationErrorResponse[T any](fields []ValidationError) APIResponse[T] {
	resp := NewErrorResponse[T](CodeValidation, "Request validation failed")
	resp.Error.ValidationErrors = fields
	return resp
}

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status  string                       `json:"status"`
	Version string                       `json:"version"`
	Uptime  string                       `json:"uptime"`
	Checks  map[string]HealthCheckResult `json:"checks"`
}

// HealthCheckResult reports one dependency, currently only the catalog database.
type HealthCheckResult struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
}
