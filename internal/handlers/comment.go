package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/handlers/render"
	"github.com/okarpov/blogapi/internal/handlers/userctx"
	"github.com/okarpov/blogapi/internal/logger"
	"github.com/okarpov/blogapi/internal/models"
)

type commentService interface {
	Create(ctx context.Context, author models.User, articleID uuid.UUID, content string) (models.Comment, error)
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]models.Comment, error)
	Update(ctx context.Context, actor models.User, articleID uuid.UUID, commentID uuid.UUID, content string) (models.Comment, error)
	Delete(ctx context.Context, actor models.User, articleID uuid.UUID, commentID uuid.UUID) error
}

type CommentHandler struct {
	commentService commentService
	logger         logger.Logger
}

type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	ArticleID uuid.UUID `json:"articleId"`
	AuthorID  uuid.UUID `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func commentResponse(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		ArticleID: c.ArticleID,
		AuthorID:  c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewComment(comment commentService, l logger.Logger) *CommentHandler {
	return &CommentHandler{commentService: comment, logger: l}
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

func (h *CommentHandler) list(w http.ResponseWriter, r *http.Request) {
	articleID, err := pathID(r, "id")
	if err != nil {
		render.ServiceError(w, "Article not found", http.StatusNotFound)
		return
	}

	comments, err := h.commentService.ListByArticle(r.Context(), articleID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrArticleNotFound):
			render.ServiceError(w, "Article not found", http.StatusNotFound)
		default:
			h.logger.Error("list comments failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	res := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		res = append(res, commentResponse(c))
	}
	render.JSON(w, res)
}

func (h *CommentHandler) create(w http.ResponseWriter, r *http.Request) {
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

	data, err := render.BindAndValidate[CommentRequest](w, r)
	if err != nil {
		return
	}

	comment, err := h.commentService.Create(r.Context(), user, articleID, data.Content)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrArticleNotFound):
			render.ServiceError(w, "Article not found", http.StatusNotFound)
		default:
			h.logger.Error("create comment failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, commentResponse(comment), http.StatusCreated)
}

func (h *CommentHandler) update(w http.ResponseWriter, r *http.Request) {
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
	commentID, err := pathID(r, "commentID")
	if err != nil {
		render.ServiceError(w, "Comment not found", http.StatusNotFound)
		return
	}

	data, err := render.BindAndValidate[CommentRequest](w, r)
	if err != nil {
		return
	}

	comment, err := h.commentService.Update(r.Context(), user, articleID, commentID, data.Content)
	if err != nil {
		h.renderCommentError(w, err, "update comment failed")
		return
	}

	render.JSON(w, commentResponse(comment))
}

func (h *CommentHandler) delete(w http.ResponseWriter, r *http.Request) {
	type DeleteSuccessResponse struct {
		Message string `json:"message"`
	}

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
	commentID, err := pathID(r, "commentID")
	if err != nil {
		render.ServiceError(w, "Comment not found", http.StatusNotFound)
		return
	}

	err = h.commentService.Delete(r.Context(), user, articleID, commentID)
	if err != nil {
		h.renderCommentError(w, err, "delete comment failed")
		return
	}

	render.JSON(w, DeleteSuccessResponse{Message: "Comment deleted successfully"})
}

func (h *CommentHandler) renderCommentError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, apperrors.ErrCommentNotFound):
		render.ServiceError(w, "Comment not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrArticleNotFound):
		render.ServiceError(w, "Article not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrCommentAccessDenied):
		render.ServiceError(w, "Not the comment author", http.StatusForbidden)
	default:
		h.logger.Error(logMsg, "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
