package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/models"
)

type ArticleRepo struct {
	DB DBTX
}

const createArticle = `-- name: CreateArticle
INSERT INTO articles (id, created_at, updated_at, title, content, like_count, user_id)
VALUES ($1, $2, $2, $3, $4, 0, $5)
RETURNING id, created_at, updated_at, title, content, like_count, user_id
`

func (r *ArticleRepo) CreateArticle(ctx context.Context, userID uuid.UUID, title string, content string) (models.Article, error) {
	rows, _ := r.DB.Query(ctx, createArticle, uuid.New(), time.Now(), title, content, userID)
	article, err := pgx.CollectOneRow(rows, rowToArticle)
	if err != nil {
		return article, fmt.Errorf("db error: %w", err)
	}

	return article, nil
}

const getArticle = `-- name: GetArticle
SELECT id, created_at, updated_at, title, content, like_count, user_id FROM articles
WHERE id = $1
`

func (r *ArticleRepo) GetArticle(ctx context.Context, articleID uuid.UUID) (models.Article, error) {
	rows, _ := r.DB.Query(ctx, getArticle, articleID)
	article, err := pgx.CollectOneRow(rows, rowToArticle)

	switch {
	case err == nil:
		return article, nil
	case errors.Is(err, pgx.ErrNoRows):
		return article, apperrors.ErrArticleNotFound
	default:
		return article, fmt.Errorf("db error: %w", err)
	}
}

const listArticles = `-- name: ListArticles
SELECT id, created_at, updated_at, title, content, like_count, user_id FROM articles
ORDER BY created_at DESC
`

func (r *ArticleRepo) ListArticles(ctx context.Context) ([]models.Article, error) {
	rows, _ := r.DB.Query(ctx, listArticles)
	articles, err := pgx.CollectRows(rows, rowToArticle)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return articles, nil
}

const listArticlesByUser = `-- name: ListArticlesByUser
SELECT id, created_at, updated_at, title, content, like_count, user_id FROM articles
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *ArticleRepo) ListArticlesByUser(ctx context.Context, userID uuid.UUID) ([]models.Article, error) {
	rows, _ := r.DB.Query(ctx, listArticlesByUser, userID)
	articles, err := pgx.CollectRows(rows, rowToArticle)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return articles, nil
}

const updateArticle = `-- name: UpdateArticle
UPDATE articles
SET title = $2, content = $3, updated_at = $4
WHERE id = $1
RETURNING id, created_at, updated_at, title, content, like_count, user_id
`

func (r *ArticleRepo) UpdateArticle(ctx context.Context, articleID uuid.UUID, title string, content string) (models.Article, error) {
	rows, _ := r.DB.Query(ctx, updateArticle, articleID, title, content, time.Now())
	article, err := pgx.CollectOneRow(rows, rowToArticle)

	switch {
	case err == nil:
		return article, nil
	case errors.Is(err, pgx.ErrNoRows):
		return article, apperrors.ErrArticleNotFound
	default:
		return article, fmt.Errorf("db error: %w", err)
	}
}

const deleteArticle = `-- name: DeleteArticle
DELETE FROM articles
WHERE id = $1
`

func (r *ArticleRepo) DeleteArticle(ctx context.Context, articleID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteArticle, articleID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrArticleNotFound
	}

	return nil
}

const incrementLikeCount = `-- name: IncrementLikeCount
UPDATE articles
SET like_count = like_count + 1
WHERE id = $1
`

func (r *ArticleRepo) IncrementLikeCount(ctx context.Context, articleID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, incrementLikeCount, articleID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrArticleNotFound
	}

	return nil
}

// Decrement is guarded: at zero it matches no row and is a no-op, which
// keeps the counter from ever going negative.
const decrementLikeCount = `-- name: DecrementLikeCount
UPDATE articles
SET like_count = like_count - 1
WHERE id = $1 AND like_count > 0
`

func (r *ArticleRepo) DecrementLikeCount(ctx context.Context, articleID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, decrementLikeCount, articleID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func rowToArticle(row pgx.CollectableRow) (models.Article, error) {
	var a models.Article
	err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Title, &a.Content, &a.LikeCount, &a.UserID)
	return a, err
}
