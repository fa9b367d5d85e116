package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/handlers/render"
	"github.com/okarpov/blogapi/internal/handlers/userctx"
	"github.com/okarpov/blogapi/internal/logger"
)

type toggleService interface {
	// Flip the association for the user, reporting whether it was added
	Toggle(ctx context.Context, articleID uuid.UUID, userEmail string) (bool, error)
	Status(ctx context.Context, articleID uuid.UUID, userEmail string) (bool, int64, error)
	Count(ctx context.Context, articleID uuid.UUID) (int64, error)
}

// ToggleHandler serves both likes and bookmarks; the two differ only in
// the backing service and the response field names
type ToggleHandler struct {
	toggleService toggleService
	logger        logger.Logger

	activeField string // "liked" or "bookmarked"
	countField  string // "likeCount" or "bookmarkCount"
}

func NewLike(toggle toggleService, l logger.Logger) *ToggleHandler {
	return &ToggleHandler{
		toggleService: toggle,
		logger:        l,
		activeField:   "liked",
		countField:    "likeCount",
	}
}

func NewBookmark(toggle toggleService, l logger.Logger) *ToggleHandler {
	return &ToggleHandler{
		toggleService: toggle,
		logger:        l,
		activeField:   "bookmarked",
		countField:    "bookmarkCount",
	}
}

// add flips the association on. A pair that already exists reports
// wasAdded=false but still succeeds.
func (h *ToggleHandler) add(w http.ResponseWriter, r *http.Request) {
	h.flip(w, r, true)
}

// remove flips the association off, idempotent the same way
func (h *ToggleHandler) remove(w http.ResponseWriter, r *http.Request) {
	h.flip(w, r, false)
}

func (h *ToggleHandler) flip(w http.ResponseWriter, r *http.Request, wantActive bool) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	articleID, err := pathID(r, "id")
	if err != nil {
		render.ServiceError(w, "Article not found", http.StatusNotFound)
		return
	}

	added, err := h.toggleService.Toggle(r.Context(), articleID, user.Email)
	if err != nil {
		h.renderToggleError(w, err)
		return
	}

	count, err := h.toggleService.Count(r.Context(), articleID)
	if err != nil {
		h.renderToggleError(w, err)
		return
	}

	res := map[string]any{
		h.activeField: wantActive,
		h.countField:  count,
	}
	if wantActive {
		res["wasAdded"] = added
	} else {
		res["wasRemoved"] = !added
	}

	render.JSON(w, res)
}

func (h *ToggleHandler) status(w http.ResponseWriter, r *http.Request) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	articleID, err := pathID(r, "id")
	if err != nil {
		render.ServiceError(w, "Article not found", http.StatusNotFound)
		return
	}

	active, count, err := h.toggleService.Status(r.Context(), articleID, user.Email)
	if err != nil {
		h.renderToggleError(w, err)
		return
	}

	render.JSON(w, map[string]any{
		h.activeField: active,
		h.countField:  count,
	})
}

func (h *ToggleHandler) renderToggleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrArticleNotFound):
		render.ServiceError(w, "Article not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrUserNotFound):
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
	default:
		h.logger.Error("toggle failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
