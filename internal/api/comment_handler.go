package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/api/shared"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/service/permission"
	"github.com/taskflow/taskflow-api/internal/store"
)

// CommentHandler handles operations on individual comments. Creation
// and listing live on the task handler, under the task's route.
type CommentHandler struct {
	commentStore store.CommentStore
	permissions  *permission.Engine
	validator    *validator.Validate
}

// NewCommentHandler creates a new CommentHandler with the given
// dependencies.
func NewCommentHandler(
	commentStore store.CommentStore,
	permissions *permission.Engine,
) *CommentHandler {
	return &CommentHandler{
		commentStore: commentStore,
		permissions:  permissions,
		validator:    validator.New(),
	}
}

// Get handles GET /api/comments/{id}.
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	comment, ok := h.loadComment(w, r)
	if !ok {
		return
	}

	if err := h.permissions.CanAccessComment(user, comment, permission.ActionGet); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCommentResponse(comment))
}

// Update handles PUT /api/comments/{id}. Only the author may edit their
// comment; the admin role does not extend to edits.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, permission.ActionUpdate)
}

// Patch handles PATCH /api/comments/{id}. Text is the only mutable
// field, so a partial update carries the same body as a full one; the
// distinction matters only to the permission check.
func (h *CommentHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, permission.ActionPatch)
}

func (h *CommentHandler) edit(w http.ResponseWriter, r *http.Request, action permission.Action) {
	user := middleware.GetUser(r)

	comment, ok := h.loadComment(w, r)
	if !ok {
		return
	}

	if err := h.permissions.CanAccessComment(user, comment, action); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req CommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	comment.Text = req.Text
	comment.UpdatedAt = time.Now().UTC()

	if err := h.commentStore.Update(r.Context(), comment); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCommentResponse(comment))
}

// Delete handles DELETE /api/comments/{id}. Authors may delete their
// own comments; admins may delete anyone's.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	comment, ok := h.loadComment(w, r)
	if !ok {
		return
	}

	if err := h.permissions.CanAccessComment(user, comment, permission.ActionDelete); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.commentStore.Delete(r.Context(), comment.ID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: "Comment deleted"})
}

// loadComment resolves the {id} path parameter to a comment, writing
// the error response itself when it cannot.
func (h *CommentHandler) loadComment(w http.ResponseWriter, r *http.Request) (*domain.Comment, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid comment ID")
		return nil, false
	}

	comment, err := h.commentStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return nil, false
	}
	return comment, true
}
