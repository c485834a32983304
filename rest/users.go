package rest

import (
	"net/http"

	"github.com/c360/usergraph/entity"
	"github.com/c360/usergraph/errors"
	"github.com/c360/usergraph/integrity"
	"github.com/c360/usergraph/store"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.Users.FindMany(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, found, err := h.db.Users.FindOne(r.Context(), store.Eq("id", r.PathValue("id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !found {
		h.notFound(w, errors.ErrUserNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var input integrity.CreateUserInput
	if !h.decodeBody(w, r, schemas.createUser, &input) {
		return
	}

	user, err := h.engine.CreateUser(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) patchUser(w http.ResponseWriter, r *http.Request) {
	var patch entity.UserPatch
	if !h.decodeBody(w, r, schemas.patchUser, &patch) {
		return
	}

	user, err := h.engine.UpdateUser(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.engine.DeleteUser(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// subscribeBody names the acting user; the path id names the target.
type subscribeBody struct {
	UserID string `json:"userId"`
}

func (h *Handler) subscribeTo(w http.ResponseWriter, r *http.Request) {
	var body subscribeBody
	if !h.decodeBody(w, r, schemas.subscribe, &body) {
		return
	}

	user, err := h.engine.Subscribe(r.Context(), body.UserID, r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

func (h *Handler) unsubscribeFrom(w http.ResponseWriter, r *http.Request) {
	var body subscribeBody
	if !h.decodeBody(w, r, schemas.subscribe, &body) {
		return
	}

	user, err := h.engine.Unsubscribe(r.Context(), body.UserID, r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}
