package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hapkiduki/apnacart/internal/application/port"
	"github.com/hapkiduki/apnacart/internal/infrastructure/imagestore"
)

const imageCacheControl = "public, max-age=86400"

// ImageHandler serves catalog images and their resized variants.
type ImageHandler struct {
	store *imagestore.Store
	log   port.Logger
}

// NewImageHandler creates an ImageHandler.
func NewImageHandler(store *imagestore.Store, log port.Logger) *ImageHandler {
	return &ImageHandler{store: store, log: log}
}

// Routes mounts the image endpoint.
func (h *ImageHandler) Routes(r chi.Router) {
	r.Get("/images/{file}", h.Serve)
}

// Serve handles GET /images/{file}?size=thumb|medium.
// Formats the resizer cannot decode are served as stored.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	size := imagestore.ParseSize(r.URL.Query().Get("size"))

	if size != imagestore.SizeOriginal {
		data, err := h.store.Variant(file, size)
		switch {
		case err == nil:
			w.Header().Set("Content-Type", "image/jpeg")
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.Header().Set("Cache-Control", imageCacheControl)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
			return
		case errors.Is(err, imagestore.ErrUnsupportedImage):
			h.log.WithContext(r.Context()).Debug("serving original image", "file", file, "reason", err)
		default:
			respondError(w, r, h.log, err)
			return
		}
	}

	path, err := h.store.Path(file)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	w.Header().Set("Cache-Control", imageCacheControl)
	http.ServeFile(w, r, path)
}
