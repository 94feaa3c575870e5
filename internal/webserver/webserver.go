package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/y0ug/defacemon/internal/database"
	"github.com/y0ug/defacemon/internal/database/models"
	"github.com/y0ug/defacemon/internal/defacement"
	"github.com/y0ug/defacemon/internal/site"
)

const (
	defaultTargetURL = "http://localhost:9000"
	noBaselineMsg    = "No baseline found. Create a baseline first."
)

// WebServer holds the data needed for handling HTTP requests.
type WebServer struct {
	Service *defacement.Service
	Site    *site.Handler
	config  *WebserverConfig
	Logger  *logrus.Logger
}

// targetRequest is the body accepted by the create and check endpoints.
type targetRequest struct {
	URL string `json:"url"`
}

// NewWebServer initializes a new WebServer.
func NewWebServer(service *defacement.Service, siteHandler *site.Handler, config *WebserverConfig, logger *logrus.Logger) *WebServer {
	return &WebServer{
		Service: service,
		Site:    siteHandler,
		config:  config,
		Logger:  logger,
	}
}

// Handler returns the router wrapped in the CORS, security and rate-limit layers.
func (ws *WebServer) Handler() http.Handler {
	router := ws.InitRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   ws.config.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		Debug:            false,
	}

	var handler http.Handler = router
	if ws.config.RateLimitEnabled {
		handler = newClientLimiter(ws.config.RateLimitTimes, ws.config.RateLimitWindow, ws.config.TrustedProxies).Middleware(handler)
	}
	handler = cors.New(corsOptions).Handler(handler)
	handler = securityHeaders(handler)
	return requestLogger(ws.Logger)(handler)
}

// StartWebServer starts the HTTP server.
func StartWebServer(ctx context.Context, ws *WebServer) (*http.Server, error) {
	server := &http.Server{
		Addr:              ws.config.ListenTo,
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		ws.Logger.Infof("Server starting on %s", ws.config.ListenTo)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.Logger.Errorf("ListenAndServe(): %v", err)
		}
	}()

	return server, nil
}

// InitRouter initializes the HTTP routes.
func (ws *WebServer) InitRouter() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/defacement").Subrouter()

	api.HandleFunc("/baseline/create", ws.handleCreateBaseline).Methods(http.MethodPost)
	api.HandleFunc("/baseline/status", ws.handleBaselineStatus).Methods(http.MethodGet)
	api.HandleFunc("/baseline/reset", ws.handleResetBaseline).Methods(http.MethodDelete)
	api.HandleFunc("/check", ws.handleCheck).Methods(http.MethodPost)
	api.HandleFunc("/report", ws.handleReport).Methods(http.MethodGet)

	r.HandleFunc("/health", ws.handleHealth).Methods(http.MethodGet)

	if ws.Site != nil {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", ws.Site.Static()))
		r.HandleFunc("/", ws.Site.Home).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, "Not Found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})
	return r
}

// defaultURL is the page checked when a request names no target.
func (ws *WebServer) defaultURL() string {
	if ws.Service.DefaultURL != "" {
		return ws.Service.DefaultURL
	}
	return defaultTargetURL
}

// decodeTarget reads the optional {url} body, falling back to def.
func decodeTarget(r *http.Request, def string) (string, error) {
	req := targetRequest{}
	if r.Body != nil {
		defer r.Body.Close()
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
	}
	if req.URL == "" {
		req.URL = def
	}
	return req.URL, nil
}

// handleCreateBaseline handles POST /api/defacement/baseline/create.
func (ws *WebServer) handleCreateBaseline(w http.ResponseWriter, r *http.Request) {
	url, err := decodeTarget(r, ws.defaultURL())
	if err != nil {
		ws.Logger.Errorf("Invalid JSON payload: %v", err)
		writeErrorResponse(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	baseline, err := ws.Service.Baselines.Create(r.Context(), url)
	if err != nil {
		ws.Logger.WithError(err).WithField("url", url).Error("Failed to create baseline")
		writeErrorResponse(w, "Failed to create baseline: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, models.BaselineCreateResponse{
		Success:  true,
		Message:  "Baseline created successfully",
		Baseline: baseline.Summary(),
	})
}

// handleBaselineStatus handles GET /api/defacement/baseline/status.
func (ws *WebServer) handleBaselineStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := models.BaselineStatusResponse{}

	exists, err := ws.Service.Baselines.Exists(ctx)
	if err != nil {
		ws.Logger.WithError(err).Error("Failed to check baseline existence")
		writeErrorResponse(w, "Failed to read baseline", http.StatusInternalServerError)
		return
	}
	if exists {
		baseline, err := ws.Service.Baselines.Load(ctx)
		switch {
		case err == nil:
			summary := baseline.Summary()
			resp.Exists = true
			resp.Baseline = &summary
		case errors.Is(err, database.ErrBaselineNotFound):
			// Deleted between the two calls.
		default:
			ws.Logger.WithError(err).Error("Failed to load baseline")
			writeErrorResponse(w, "Failed to load baseline: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// handleCheck handles POST /api/defacement/check.
func (ws *WebServer) handleCheck(w http.ResponseWriter, r *http.Request) {
	url, err := decodeTarget(r, ws.defaultURL())
	if err != nil {
		ws.Logger.Errorf("Invalid JSON payload: %v", err)
		writeErrorResponse(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	ws.runCheck(w, r, url)
}

// handleReport handles GET /api/defacement/report against the default target.
func (ws *WebServer) handleReport(w http.ResponseWriter, r *http.Request) {
	ws.runCheck(w, r, ws.defaultURL())
}

func (ws *WebServer) runCheck(w http.ResponseWriter, r *http.Request, url string) {
	report, err := ws.Service.Check(r.Context(), url)
	if err != nil {
		if errors.Is(err, database.ErrBaselineNotFound) {
			writeErrorResponse(w, noBaselineMsg, http.StatusNotFound)
			return
		}
		ws.Logger.WithError(err).Error("Failed to load baseline for check")
		writeErrorResponse(w, "Failed to load baseline: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, report)
}

// handleResetBaseline handles DELETE /api/defacement/baseline/reset.
func (ws *WebServer) handleResetBaseline(w http.ResponseWriter, r *http.Request) {
	deleted, err := ws.Service.Baselines.Delete(r.Context())
	if err != nil {
		ws.Logger.WithError(err).Error("Failed to delete baseline")
		writeErrorResponse(w, "Failed to delete baseline", http.StatusInternalServerError)
		return
	}
	if !deleted {
		writeJSONResponse(w, http.StatusOK, models.ResetResponse{Success: false, Message: "No baseline to delete"})
		return
	}
	writeJSONResponse(w, http.StatusOK, models.ResetResponse{Success: true, Message: "Baseline deleted successfully"})
}

// handleHealth handles GET /health.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   ws.config.Version,
	})
}
