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

type articleService interface {
	Create(ctx context.Context, author models.User, title string, content string) (models.Article, error)
	Get(ctx context.Context, articleID uuid.UUID) (models.Article, error)
	List(ctx context.Context) ([]models.Article, error)
	Update(ctx context.Context, actor models.User, articleID uuid.UUID, title string, content string) (models.Article, error)
	Delete(ctx context.Context, actor models.User, articleID uuid.UUID) error
}

type ArticleHandler struct {
	articleService articleService
	logger         logger.Logger
}

type ArticleResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	LikeCount int64     `json:"likeCount"`
	AuthorID  uuid.UUID `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func articleResponse(a models.Article) ArticleResponse {
	return ArticleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		LikeCount: a.LikeCount,
		AuthorID:  a.UserID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func NewArticle(article articleService, l logger.Logger) *ArticleHandler {
	return &ArticleHandler{articleService: article, logger: l}
}

func (h *ArticleHandler) list(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleService.List(r.Context())
	if err != nil {
		h.logger.Error("list articles failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	res := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		res = append(res, articleResponse(a))
	}
	render.JSON(w, res)
}

func (h *ArticleHandler) get(w http.ResponseWriter, r *http.Request) {
	articleID, err := pathID(r, "id")
	if err != nil {
		render.ServiceError(w, "Article not found", http.StatusNotFound)
		return
	}

	article, err := h.articleService.Get(r.Context(), articleID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrArticleNotFound):
			render.ServiceError(w, "Article not found", http.StatusNotFound)
		default:
			h.logger.Error("get article failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, articleResponse(article))
}

func (h *ArticleHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreateArticleRequest struct {
		Title   string `json:"title" validate:"required,min=1,max=200"`
		Content string `json:"content" validate:"required"`
	}

	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[CreateArticleRequest](w, r)
	if err != nil {
		return
	}

	article, err := h.articleService.Create(r.Context(), user, data.Title, data.Content)
	if err != nil {
		h.logger.Error("create article failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSONWithStatus(w, articleResponse(article), http.StatusCreated)
}

func (h *ArticleHandler) update(w http.ResponseWriter, r *http.Request) {
	type UpdateArticleRequest struct {
		Title   string `json:"title" validate:"required,min=1,max=200"`
		Content string `json:"content" validate:"required"`
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

	data, err := render.BindAndValidate[UpdateArticleRequest](w, r)
	if err != nil {
		return
	}

	article, err := h.articleService.Update(r.Context(), user, articleID, data.Title, data.Content)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrArticleNotFound):
			render.ServiceError(w, "Article not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrArticleAccessDenied):
			render.ServiceError(w, "Not the article author", http.StatusForbidden)
		default:
			h.logger.Error("update article failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, articleResponse(article))
}

func (h *ArticleHandler) delete(w http.ResponseWriter, r *http.Request) {
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

	err = h.articleService.Delete(r.Context(), user, articleID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrArticleNotFound):
			render.ServiceError(w, "Article not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrArticleAccessDenied):
			render.ServiceError(w, "Not the article author", http.StatusForbidden)
		default:
			h.logger.Error("delete article failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, DeleteSuccessResponse{Message: "Article deleted successfully"})
}

// pathID parses a uuid path segment registered with the given name
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}
