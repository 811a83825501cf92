// Package handler implements the HTTP endpoints of the storefront API.
// Every JSON response uses the dto.APIResponse envelope.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/hapkiduki/apnacart/internal/application/cart"
	"github.com/hapkiduki/apnacart/internal/application/catalog"
	"github.com/hapkiduki/apnacart/internal/application/dto"
	"github.com/hapkiduki/apnacart/internal/application/order"
	"github.com/hapkiduki/apnacart/internal/application/port"
	"github.com/hapkiduki/apnacart/internal/domain/entity"
	"github.com/hapkiduki/apnacart/internal/domain/repository"
	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
	"github.com/hapkiduki/apnacart/internal/infrastructure/imagestore"
	"github.com/hapkiduki/apnacart/internal/infrastructure/seed"
	"github.com/hapkiduki/apnacart/internal/infrastructure/session"
	"github.com/hapkiduki/apnacart/internal/interfaces/http/middleware"
)

// Request errors raised by the handlers themselves.
var (
	ErrInvalidBody = errors.New("invalid request body")
	ErrInvalidID   = errors.New("invalid id")
)

// apiError describes how an error is reported to clients.
type apiError struct {
	status  int
	code    string
	message string
}

// errorTable is checked in order; the first match wins.
var errorTable = []struct {
	target error
	apiError
}{
	{repository.ErrVegetableNotFound, apiError{http.StatusNotFound, "VEGETABLE_NOT_FOUND", "Vegetable not found"}},
	{repository.ErrCartNotFound, apiError{http.StatusNotFound, "CART_NOT_FOUND", "Cart not found or expired"}},
	{repository.ErrDuplicateVegetable, apiError{http.StatusConflict, "DUPLICATE_VEGETABLE", "A vegetable with this name already exists"}},
	{entity.ErrNoCartSelected, apiError{http.StatusConflict, "NO_CART_SELECTED", "Please select a cart size first"}},
	{entity.ErrCapacityExceeded, apiError{http.StatusUnprocessableEntity, "CAPACITY_EXCEEDED", "Adding this item would exceed the cart weight limit"}},
	{entity.ErrItemNotInCart, apiError{http.StatusNotFound, "ITEM_NOT_IN_CART", "Item is not in the cart"}},
	{entity.ErrInvalidCartSize, apiError{http.StatusBadRequest, "INVALID_CART_SIZE", "Cart size must be small or family"}},
	{entity.ErrInvalidWeight, apiError{http.StatusBadRequest, "INVALID_WEIGHT", "Weight must be positive"}},
	{valueobject.ErrInvalidWeightToken, apiError{http.StatusBadRequest, "INVALID_WEIGHT", "Weight must look like 250g or 1kg"}},
	{valueobject.ErrInvalidWeightValue, apiError{http.StatusBadRequest, "INVALID_WEIGHT", "Weight must look like 250g, 1kg or 0.5"}},
	{order.ErrEmptyCart, apiError{http.StatusUnprocessableEntity, "EMPTY_CART", "Cart is empty"}},
	{cart.ErrCartNotFull, apiError{http.StatusUnprocessableEntity, "CART_NOT_FULL", "Fill the cart to its weight limit before ordering"}},
	{session.ErrTooManySessions, apiError{http.StatusServiceUnavailable, "TOO_MANY_CARTS", "Too many active carts, please try again later"}},
	{seed.ErrEmptyCatalog, apiError{http.StatusUnprocessableEntity, "EMPTY_CATALOG", "Seed catalog has no vegetables"}},
	{imagestore.ErrImageNotFound, apiError{http.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found"}},
	{imagestore.ErrInvalidImageName, apiError{http.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found"}},
	{ErrInvalidBody, apiError{http.StatusBadRequest, "INVALID_REQUEST", "Request body is not valid JSON"}},
	{ErrInvalidID, apiError{http.StatusBadRequest, "INVALID_ID", "Identifier must be a positive integer"}},
	{context.DeadlineExceeded, apiError{http.StatusGatewayTimeout, "TIMEOUT", "Request timed out"}},
}

var errInternal = apiError{http.StatusInternalServerError, dto.CodeInternal, "An unexpected error occurred"}

func classify(err error) apiError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apiError{http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Request body is too large"}
	}
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			return e.apiError
		}
	}
	return errInternal
}

func meta(r *http.Request) *dto.ResponseMeta {
	return &dto.ResponseMeta{
		RequestID: middleware.GetRequestID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// respond writes data in a success envelope.
func respond[T any](w http.ResponseWriter, r *http.Request, status int, data T) {
	resp := dto.NewSuccessResponse(data)
	resp.Meta = meta(r)
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// respondError maps err to a status and error code. Unknown errors are
// logged and reported as 500 without their message.
func respondError(w http.ResponseWriter, r *http.Request, log port.Logger, err error) {
	var verr *catalog.ValidationError
	if errors.As(err, &verr) {
		resp := dto.NewValidationErrorResponse[any](verr.Fields)
		resp.Meta = meta(r)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp)
		return
	}

	apiErr := classify(err)
	reqLog := log.WithContext(r.Context())
	if apiErr.status >= http.StatusInternalServerError {
		reqLog.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		reqLog.Debug("request rejected", "path", r.URL.Path, "code", apiErr.code, "error", err)
	}

	resp := dto.NewErrorResponse[any](apiErr.code, apiErr.message)
	resp.Meta = meta(r)
	render.Status(r, apiErr.status)
	render.JSON(w, r, resp)
}

// decode reads a JSON body into v.
func decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return ErrInvalidBody
	}
	return nil
}

// intParam reads a positive integer route parameter.
func intParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// intQuery reads an optional integer query parameter.
func intQuery(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}
