package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hapkiduki/apnacart/internal/application/cart"
	"github.com/hapkiduki/apnacart/internal/application/dto"
	"github.com/hapkiduki/apnacart/internal/application/port"
	"github.com/hapkiduki/apnacart/internal/interfaces/http/middleware"
)

// CartHandler serves the cart session endpoints.
type CartHandler struct {
	carts *cart.Service
	log   port.Logger
}

// NewCartHandler creates a CartHandler.
func NewCartHandler(svc *cart.Service, log port.Logger) *CartHandler {
	return &CartHandler{carts: svc, log: log}
}

// Routes mounts the cart endpoints.
func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/cart-sizes", h.Plans)

	r.Route("/carts", func(r chi.Router) {
		r.Post("/", h.Create)

		r.Route("/{cartID}", func(r chi.Router) {
			r.Use(middleware.CartContext)

			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Put("/size", h.SelectSize)
			r.Get("/capacity", h.CheckCapacity)
			r.Post("/checkout", h.Checkout)

			r.Post("/items", h.AddItem)
			r.Delete("/items", h.Clear)
			r.Patch("/items/{vegetableID}", h.UpdateQuantity)
			r.Delete("/items/{vegetableID}", h.RemoveItem)
		})
	})
}

// Plans handles GET /api/cart-sizes.
func (h *CartHandler) Plans(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, h.carts.Plans())
}

// Create handles POST /api/carts.
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	resp, err := h.carts.Create(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.Header().Set("Location", "/api/carts/"+resp.ID)
	respond(w, r, http.StatusCreated, resp)
}

// Get handles GET /api/carts/{cartID}.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r)(h.carts.Get(r.Context(), chi.URLParam(r, "cartID")))
}

// Delete handles DELETE /api/carts/{cartID}.
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Delete(r.Context(), chi.URLParam(r, "cartID")); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectSize handles PUT /api/carts/{cartID}/size.
func (h *CartHandler) SelectSize(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectSizeRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.reply(w, r)(h.carts.SelectSize(r.Context(), chi.URLParam(r, "cartID"), req.Size))
}

// AddItem handles POST /api/carts/{cartID}/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddItemRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if req.VegetableID <= 0 {
		respondError(w, r, h.log, ErrInvalidID)
		return
	}
	h.reply(w, r)(h.carts.AddItem(r.Context(), chi.URLParam(r, "cartID"), req.VegetableID))
}

// UpdateQuantity handles PATCH /api/carts/{cartID}/items/{vegetableID}.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	vegetableID, err := intParam(r, "vegetableID")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	var req dto.UpdateQuantityRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.reply(w, r)(h.carts.UpdateQuantity(r.Context(), chi.URLParam(r, "cartID"), vegetableID, req.Quantity))
}

// RemoveItem handles DELETE /api/carts/{cartID}/items/{vegetableID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	vegetableID, err := intParam(r, "vegetableID")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	h.reply(w, r)(h.carts.RemoveItem(r.Context(), chi.URLParam(r, "cartID"), vegetableID))
}

// Clear handles DELETE /api/carts/{cartID}/items.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r)(h.carts.Clear(r.Context(), chi.URLParam(r, "cartID")))
}

// CheckCapacity handles GET /api/carts/{cartID}/capacity?weight=.
func (h *CartHandler) CheckCapacity(w http.ResponseWriter, r *http.Request) {
	resp, err := h.carts.CheckCapacity(r.Context(), chi.URLParam(r, "cartID"), r.URL.Query().Get("weight"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, r, http.StatusOK, resp)
}

// Checkout handles POST /api/carts/{cartID}/checkout.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	resp, err := h.carts.Checkout(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, r, http.StatusOK, resp)
}

// reply writes a cart view or the error that prevented it.
func (h *CartHandler) reply(w http.ResponseWriter, r *http.Request) func(dto.CartResponse, error) {
	return func(resp dto.CartResponse, err error) {
		if err != nil {
			respondError(w, r, h.log, err)
			return
		}
		respond(w, r, http.StatusOK, resp)
	}
}
