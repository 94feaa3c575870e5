package site

import (
	"bytes"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/y0ug/defacemon/internal/fetcher"
)

// Handler serves the public page the detector watches: the rendered home
// template at "/" and the asset tree under the static prefix.
type Handler struct {
	renderer  *fetcher.Renderer
	staticDir string
	logger    *logrus.Logger
}

// NewHandler initializes a new site Handler.
func NewHandler(renderer *fetcher.Renderer, staticDir string, logger *logrus.Logger) *Handler {
	return &Handler{renderer: renderer, staticDir: staticDir, logger: logger}
}

// Home renders the home template.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.renderer.Execute(&buf, fetcher.HomeTemplate, r.URL.Path); err != nil {
		h.logger.WithError(err).Error("Failed to render home page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// Static serves files from the static directory. The caller strips the URL prefix.
func (h *Handler) Static() http.Handler {
	return http.FileServer(http.Dir(h.staticDir))
}
