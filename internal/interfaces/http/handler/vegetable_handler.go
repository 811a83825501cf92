package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hapkiduki/apnacart/internal/application/catalog"
	"github.com/hapkiduki/apnacart/internal/application/dto"
	"github.com/hapkiduki/apnacart/internal/application/port"
	"github.com/hapkiduki/apnacart/internal/domain/entity"
)

// SeedSource returns the vegetables used to reseed the catalog.
type SeedSource func() ([]*entity.Vegetable, error)

// VegetableHandler serves the catalog admin endpoints.
type VegetableHandler struct {
	catalog *catalog.Service
	seed    SeedSource
	log     port.Logger
}

// NewVegetableHandler creates a VegetableHandler.
func NewVegetableHandler(svc *catalog.Service, seed SeedSource, log port.Logger) *VegetableHandler {
	return &VegetableHandler{catalog: svc, seed: seed, log: log}
}

// Routes mounts the vegetable endpoints.
func (h *VegetableHandler) Routes(r chi.Router) {
	r.Route("/vegetables", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	r.Get("/setup-database", h.Status)
	r.Post("/setup-database", h.Setup)
}

// List handles GET /api/vegetables?search=&weight=&limit=&offset=.
func (h *VegetableHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := h.catalog.List(r.Context(), dto.ListVegetablesQuery{
		Search: query.Get("search"),
		Weight: query.Get("weight"),
		Limit:  intQuery(r, "limit"),
		Offset: intQuery(r, "offset"),
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, r, http.StatusOK, page)
}

// Get handles GET /api/vegetables/{id}.
func (h *VegetableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	vegetable, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, r, http.StatusOK, dto.NewVegetableResponse(vegetable))
}

// Create handles POST /api/vegetables.
func (h *VegetableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateVegetableRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	vegetable, err := h.catalog.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, r, http.StatusCreated, dto.NewVegetableResponse(vegetable))
}

// Update handles PUT /api/vegetables/{id}.
func (h *VegetableHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	var req dto.UpdateVegetableRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	vegetable, err := h.catalog.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, r, http.StatusOK, dto.NewVegetableResponse(vegetable))
}

// Delete handles DELETE /api/vegetables/{id}.
func (h *VegetableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, r, http.StatusOK, map[string]string{"message": "Vegetable deleted successfully"})
}

// Status handles GET /api/setup-database.
func (h *VegetableHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.catalog.Status(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, r, http.StatusOK, status)
}

// Setup handles POST /api/setup-database. It replaces the whole catalog
// with the seed vegetables.
func (h *VegetableHandler) Setup(w http.ResponseWriter, r *http.Request) {
	vegetables, err := h.seed()
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	status, err := h.catalog.Reseed(r.Context(), vegetables)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respond(w, r, http.StatusOK, status)
}
