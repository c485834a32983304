package rest

import (
	"net/http"

	"github.com/c360/usergraph/entity"
	"github.com/c360/usergraph/errors"
	"github.com/c360/usergraph/store"
)

// Member types are seeded at startup and have no create or delete routes;
// only their tariff fields can change.

func (h *Handler) listMemberTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.db.MemberTypes.FindMany(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, types)
}

func (h *Handler) getMemberType(w http.ResponseWriter, r *http.Request) {
	mt, found, err := h.db.MemberTypes.FindOne(r.Context(), store.Eq("id", r.PathValue("id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !found {
		h.notFound(w, errors.ErrMemberTypeNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, mt)
}

func (h *Handler) patchMemberType(w http.ResponseWriter, r *http.Request) {
	var patch entity.MemberTypePatch
	if !h.decodeBody(w, r, schemas.patchMemberType, &patch) {
		return
	}

	mt, err := h.engine.UpdateMemberType(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mt)
}
