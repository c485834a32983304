// Package rest exposes the dataset over plain HTTP CRUD routes. Reads go
// straight to the store; every write goes through the integrity engine so
// REST and GraphQL share one set of referential rules.
package rest

import (
	"io"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/usergraph/errors"
	"github.com/c360/usergraph/integrity"
	"github.com/c360/usergraph/store"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

// Router is the subset of mux behavior the handlers need. Both
// *http.ServeMux and the GraphQL server satisfy it.
type Router interface {
	Handle(pattern string, handler http.Handler)
}

// Handler carries the shared dependencies of all REST routes.
type Handler struct {
	db     *store.DB
	engine *integrity.Engine
	logger *slog.Logger
}

// NewHandler creates the REST handler set.
func NewHandler(db *store.DB, engine *integrity.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		db:     db,
		engine: engine,
		logger: logger.With("component", "rest"),
	}
}

// Register mounts every route on the router. Patterns use method matching,
// so a wrong method falls through to the mux's 405 handling.
func (h *Handler) Register(r Router) {
	r.Handle("GET /users", http.HandlerFunc(h.listUsers))
	r.Handle("POST /users", http.HandlerFunc(h.createUser))
	r.Handle("GET /users/{id}", http.HandlerFunc(h.getUser))
	r.Handle("PATCH /users/{id}", http.HandlerFunc(h.patchUser))
	r.Handle("DELETE /users/{id}", http.HandlerFunc(h.deleteUser))
	r.Handle("POST /users/{id}/subscribeTo", http.HandlerFunc(h.subscribeTo))
	r.Handle("POST /users/{id}/unsubscribeFrom", http.HandlerFunc(h.unsubscribeFrom))

	r.Handle("GET /profiles", http.HandlerFunc(h.listProfiles))
	r.Handle("POST /profiles", http.HandlerFunc(h.createProfile))
	r.Handle("GET /profiles/{id}", http.HandlerFunc(h.getProfile))
	r.Handle("PATCH /profiles/{id}", http.HandlerFunc(h.patchProfile))
	r.Handle("DELETE /profiles/{id}", http.HandlerFunc(h.deleteProfile))

	r.Handle("GET /posts", http.HandlerFunc(h.listPosts))
	r.Handle("POST /posts", http.HandlerFunc(h.createPost))
	r.Handle("GET /posts/{id}", http.HandlerFunc(h.getPost))
	r.Handle("PATCH /posts/{id}", http.HandlerFunc(h.patchPost))
	r.Handle("DELETE /posts/{id}", http.HandlerFunc(h.deletePost))

	r.Handle("GET /member-types", http.HandlerFunc(h.listMemberTypes))
	r.Handle("GET /member-types/{id}", http.HandlerFunc(h.getMemberType))
	r.Handle("PATCH /member-types/{id}", http.HandlerFunc(h.patchMemberType))
}

// decodeBody reads the request body, validates it against the route's
// schema, and unmarshals it into dst. On failure it writes the 400 response
// itself and reports false.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "request body unreadable")
		return false
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, errors.ErrInvalidBody.Error())
		return false
	}
	if !result.Valid() {
		h.writeErrorMessage(w, http.StatusBadRequest, result.Errors()[0].String())
		return false
	}

	if err := jsonCodec.Unmarshal(body, dst); err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, errors.ErrInvalidBody.Error())
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsonCodec.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps an engine or store failure onto an HTTP status taken
// from the error's classification.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.Classify(err) {
	case errors.ErrorValidation:
		status = http.StatusBadRequest
	case errors.ErrorNotFound:
		status = http.StatusNotFound
	}
	h.writeErrorMessage(w, status, err.Error())
}

func (h *Handler) writeErrorMessage(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]any{
		"statusCode": status,
		"error":      http.StatusText(status),
		"message":    message,
	})
}

// notFound writes the standard 404 envelope for an unresolved path id.
func (h *Handler) notFound(w http.ResponseWriter, err error) {
	h.writeErrorMessage(w, http.StatusNotFound, err.Error())
}
