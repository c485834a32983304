package rest

import (
	"net/http"

	"github.com/c360/usergraph/entity"
	"github.com/c360/usergraph/errors"
	"github.com/c360/usergraph/integrity"
	"github.com/c360/usergraph/store"
)

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.db.Posts.FindMany(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	post, found, err := h.db.Posts.FindOne(r.Context(), store.Eq("id", r.PathValue("id")))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !found {
		h.notFound(w, errors.ErrPostNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var input integrity.CreatePostInput
	if !h.decodeBody(w, r, schemas.createPost, &input) {
		return
	}

	post, err := h.engine.CreatePost(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) patchPost(w http.ResponseWriter, r *http.Request) {
	var patch entity.PostPatch
	if !h.decodeBody(w, r, schemas.patchPost, &patch) {
		return
	}

	post, err := h.engine.UpdatePost(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.engine.DeletePost(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}
