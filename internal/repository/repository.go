package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/okarpov/blogapi/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, email string, nickname string, hashedPassword string) (models.User, error)

	// Get user by its id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Delete the user record only. Owned content must be removed first,
	// the service layer fans the deletion out explicitly.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// Article repository interface
type ArticleRepo interface {
	CreateArticle(ctx context.Context, userID uuid.UUID, title string, content string) (models.Article, error)

	// If article not found must return apperrors.ErrArticleNotFound
	GetArticle(ctx context.Context, articleID uuid.UUID) (models.Article, error)
	ListArticles(ctx context.Context) ([]models.Article, error)
	ListArticlesByUser(ctx context.Context, userID uuid.UUID) ([]models.Article, error)

	UpdateArticle(ctx context.Context, articleID uuid.UUID, title string, content string) (models.Article, error)
	DeleteArticle(ctx context.Context, articleID uuid.UUID) error

	// Adjust the denormalized likes counter. Decrement never drives the
	// counter below zero, it is a no-op at zero.
	IncrementLikeCount(ctx context.Context, articleID uuid.UUID) error
	DecrementLikeCount(ctx context.Context, articleID uuid.UUID) error
}

// Comment repository interface
type CommentRepo interface {
	CreateComment(ctx context.Context, articleID uuid.UUID, userID uuid.UUID, content string) (models.Comment, error)

	// If comment not found must return apperrors.ErrCommentNotFound
	GetComment(ctx context.Context, commentID uuid.UUID) (models.Comment, error)
	ListCommentsByArticle(ctx context.Context, articleID uuid.UUID) ([]models.Comment, error)

	UpdateComment(ctx context.Context, commentID uuid.UUID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, commentID uuid.UUID) error

	DeleteCommentsByArticle(ctx context.Context, articleID uuid.UUID) error
	DeleteCommentsByUser(ctx context.Context, userID uuid.UUID) error
}

// Association repository: one row per (user, article) pair with a unique
// constraint. Backs both likes and bookmarks.
type AssociationRepo interface {
	// Add association row
	// Must return apperrors.ErrAssociationExists when the pair exists already
	Add(ctx context.Context, userID uuid.UUID, articleID uuid.UUID) (models.Association, error)

	// Remove association row. Reports whether a row was actually deleted
	Remove(ctx context.Context, userID uuid.UUID, articleID uuid.UUID) (bool, error)

	Exists(ctx context.Context, userID uuid.UUID, articleID uuid.UUID) (bool, error)
	CountByArticle(ctx context.Context, articleID uuid.UUID) (int64, error)

	DeleteByArticle(ctx context.Context, articleID uuid.UUID) error

	// Delete all associations of the user, returning the ids of the
	// affected articles so callers can fix up denormalized counters
	DeleteByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Storage aggregates all repositories over one database handle
type Storage interface {
	User() UserRepo
	Article() ArticleRepo
	Comment() CommentRepo
	Like() AssociationRepo
	Bookmark() AssociationRepo

	// Run fn within a database transaction. The storage passed to fn is
	// bound to that transaction; returning an error rolls it back.
	InTx(ctx context.Context, fn func(s Storage) error) error
}
