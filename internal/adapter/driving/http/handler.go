package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/logingate/internal/application"
	"github.com/ericfisherdev/logingate/internal/domain/model"
	"github.com/ericfisherdev/logingate/internal/domain/port/driven"
)

// bearerPrefix introduces the extension's secret token in the Authorization
// header. The public add-on id is never accepted as a credential.
const bearerPrefix = "Bearer "

// maxBodyBytes bounds request bodies; a login record is a few hundred bytes.
const maxBodyBytes = 64 << 10

// Handler is the HTTP driving adapter that serves the logins API.
type Handler struct {
	store    driven.LoginStore
	registry driven.ExtensionRegistry
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(store driven.LoginStore, registry driven.ExtensionRegistry, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/logins/search", h.Search)
	mux.HandleFunc("POST /api/v1/logins", h.Store)
	mux.HandleFunc("POST /api/v1/logins/remove", h.Remove)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Search returns the logins visible to the calling extension that match the
// query in the request body. An empty body is the empty query.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	api, ok := h.apiFor(w, r)
	if !ok {
		return
	}

	var q model.Query
	if !decodeBody(w, r, &q) {
		return
	}

	records, err := api.Search(r.Context(), q)
	if err != nil {
		h.writeRejection(w, err)
		return
	}

	resp := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toRecordResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Store adds the login record in the request body.
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	api, ok := h.apiFor(w, r)
	if !ok {
		return
	}

	var req StoreRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := api.Store(r.Context(), req.toRecord()); err != nil {
		h.writeRejection(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove deletes the visible logins matching the query in the request body.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	api, ok := h.apiFor(w, r)
	if !ok {
		return
	}

	var q model.Query
	if !decodeBody(w, r, &q) {
		return
	}

	if err := api.Remove(r.Context(), q); err != nil {
		h.writeRejection(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// apiFor authenticates the calling extension by its bearer token and returns
// an API scoped to it.
func (h *Handler) apiFor(w http.ResponseWriter, r *http.Request) (*application.LoginAPI, bool) {
	token, ok := bearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer realm="logingate"`)
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return nil, false
	}

	caller, err := h.registry.Authenticate(r.Context(), token)
	if errors.Is(err, driven.ErrUnknownExtension) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="logingate", error="invalid_token"`)
		writeError(w, http.StatusUnauthorized, err.Error())
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to authenticate extension", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}

	setRequestExtension(r.Context(), caller.ExtensionID)
	return application.NewLoginAPI(h.store, caller, h.logger), true
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// writeRejection reports an API rejection. Every kind uses the same body;
// only the status code differs.
func (h *Handler) writeRejection(w http.ResponseWriter, err error) {
	var rej *application.Rejection
	if !errors.As(err, &rej) {
		h.logger.Error("unexpected logins API error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch {
	case rej.Kind == application.KindValidation:
		status = http.StatusBadRequest
	case rej.Kind == application.KindPermission:
		status = http.StatusForbidden
	case errors.Is(rej, driven.ErrLoginAlreadyExists):
		status = http.StatusConflict
	case errors.Is(rej, driven.ErrLoginNotFound):
		status = http.StatusConflict
	case isValidityError(rej):
		status = http.StatusUnprocessableEntity
	}
	writeError(w, status, rej.Message)
}

func isValidityError(err error) bool {
	return errors.Is(err, model.ErrEmptyHostname) ||
		errors.Is(err, model.ErrEmptyPassword) ||
		errors.Is(err, model.ErrRealmAndFormURL) ||
		errors.Is(err, model.ErrNoRealmOrFormURL)
}

// decodeBody decodes a JSON request body into v. An empty body leaves v at
// its zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
