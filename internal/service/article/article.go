package article

import (
	"context"

	"github.com/google/uuid"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/models"
	"github.com/okarpov/blogapi/internal/repository"
)

type ArticleService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *ArticleService {
	return &ArticleService{storage: storage}
}

func (s *ArticleService) Create(ctx context.Context, author models.User, title string, content string) (models.Article, error) {
	return s.storage.Article().CreateArticle(ctx, author.ID, title, content)
}

func (s *ArticleService) Get(ctx context.Context, articleID uuid.UUID) (models.Article, error) {
	return s.storage.Article().GetArticle(ctx, articleID)
}

func (s *ArticleService) List(ctx context.Context) ([]models.Article, error) {
	return s.storage.Article().ListArticles(ctx)
}

// Update the article. Only the author may change it
func (s *ArticleService) Update(ctx context.Context, actor models.User, articleID uuid.UUID, title string, content string) (models.Article, error) {
	article, err := s.storage.Article().GetArticle(ctx, articleID)
	if err != nil {
		return models.Article{}, err
	}
	if article.UserID != actor.ID {
		return models.Article{}, apperrors.ErrArticleAccessDenied
	}

	return s.storage.Article().UpdateArticle(ctx, articleID, title, content)
}

// Delete the article with everything that hangs off it. The fan-out to
// comments, likes and bookmarks is explicit: the schema carries no
// cascading deletes.
func (s *ArticleService) Delete(ctx context.Context, actor models.User, articleID uuid.UUID) error {
	article, err := s.storage.Article().GetArticle(ctx, articleID)
	if err != nil {
		return err
	}
	if article.UserID != actor.ID {
		return apperrors.ErrArticleAccessDenied
	}

	return s.storage.InTx(ctx, func(tx repository.Storage) error {
		return DeleteArticleTree(ctx, tx, articleID)
	})
}

// DeleteArticleTree removes the article's likes, bookmarks and comments,
// then the article itself. Must run inside a transaction; account
// withdrawal reuses it for every owned article.
func DeleteArticleTree(ctx context.Context, tx repository.Storage, articleID uuid.UUID) error {
	if err := tx.Like().DeleteByArticle(ctx, articleID); err != nil {
		return err
	}
	if err := tx.Bookmark().DeleteByArticle(ctx, articleID); err != nil {
		return err
	}
	if err := tx.Comment().DeleteCommentsByArticle(ctx, articleID); err != nil {
		return err
	}

	return tx.Article().DeleteArticle(ctx, articleID)
}
