package rest

import (
	"net/http"

	"github.com/c360/usergraph/entity"
	"github.com/c360/usergraph/errors"
	"github.com/c360/usergraph/integrity"
	"github.com/c360/usergraph/store"
)

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.db.Profiles.FindMany(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profiles)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, found, err := h.db.Profiles.FindOne(r.Context(), store.Eq("id", r.PathValue("id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !found {
		h.notFound(w, errors.ErrProfileNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) createProfile(w http.ResponseWriter, r *http.Request) {
	var input integrity.CreateProfileInput
	if !h.decodeBody(w, r, schemas.createProfile, &input) {
		return
	}

	profile, err := h.engine.CreateProfile(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, profile)
}

func (h *Handler) patchProfile(w http.ResponseWriter, r *http.Request) {
	var patch entity.ProfilePatch
	if !h.decodeBody(w, r, schemas.patchProfile, &patch) {
		return
	}

	profile, err := h.engine.UpdateProfile(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.engine.DeleteProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}
