package comment

import (
	"context"

	"github.com/google/uuid"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/models"
	"github.com/okarpov/blogapi/internal/repository"
)

type CommentService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *CommentService {
	return &CommentService{storage: storage}
}

func (s *CommentService) Create(ctx context.Context, author models.User, articleID uuid.UUID, content string) (models.Comment, error) {
	// The article must exist, comments never dangle
	if _, err := s.storage.Article().GetArticle(ctx, articleID); err != nil {
		return models.Comment{}, err
	}

	return s.storage.Comment().CreateComment(ctx, articleID, author.ID, content)
}

func (s *CommentService) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]models.Comment, error) {
	if _, err := s.storage.Article().GetArticle(ctx, articleID); err != nil {
		return nil, err
	}

	return s.storage.Comment().ListCommentsByArticle(ctx, articleID)
}

// Update the comment. Only the author may change it
func (s *CommentService) Update(ctx context.Context, actor models.User, articleID uuid.UUID, commentID uuid.UUID, content string) (models.Comment, error) {
	comment, err := s.get(ctx, articleID, commentID)
	if err != nil {
		return models.Comment{}, err
	}
	if comment.UserID != actor.ID {
		return models.Comment{}, apperrors.ErrCommentAccessDenied
	}

	return s.storage.Comment().UpdateComment(ctx, commentID, content)
}

// Delete the comment. Only the author may remove it
func (s *CommentService) Delete(ctx context.Context, actor models.User, articleID uuid.UUID, commentID uuid.UUID) error {
	comment, err := s.get(ctx, articleID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actor.ID {
		return apperrors.ErrCommentAccessDenied
	}

	return s.storage.Comment().DeleteComment(ctx, commentID)
}

// get resolves the comment and checks it belongs to the article from the
// request path
func (s *CommentService) get(ctx context.Context, articleID uuid.UUID, commentID uuid.UUID) (models.Comment, error) {
	comment, err := s.storage.Comment().GetComment(ctx, commentID)
	if err != nil {
		return models.Comment{}, err
	}
	if comment.ArticleID != articleID {
		return models.Comment{}, apperrors.ErrCommentNotFound
	}

	return comment, nil
}
