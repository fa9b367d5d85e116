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

type CommentRepo struct {
	DB DBTX
}

const createComment = `-- name: CreateComment
INSERT INTO comments (id, created_at, updated_at, content, article_id, user_id)
VALUES ($1, $2, $2, $3, $4, $5)
RETURNING id, created_at, updated_at, content, article_id, user_id
`

func (r *CommentRepo) CreateComment(ctx context.Context, articleID uuid.UUID, userID uuid.UUID, content string) (models.Comment, error) {
	rows, _ := r.DB.Query(ctx, createComment, uuid.New(), time.Now(), content, articleID, userID)
	comment, err := pgx.CollectOneRow(rows, rowToComment)
	if err != nil {
		return comment, fmt.Errorf("db error: %w", err)
	}

	return comment, nil
}

const getComment = `-- name: GetComment
SELECT id, created_at, updated_at, content, article_id, user_id FROM comments
WHERE id = $1
`

func (r *CommentRepo) GetComment(ctx context.Context, commentID uuid.UUID) (models.Comment, error) {
	rows, _ := r.DB.Query(ctx, getComment, commentID)
	comment, err := pgx.CollectOneRow(rows, rowToComment)

	switch {
	case err == nil:
		return comment, nil
	case errors.Is(err, pgx.ErrNoRows):
		return comment, apperrors.ErrCommentNotFound
	default:
		return comment, fmt.Errorf("db error: %w", err)
	}
}

const listCommentsByArticle = `-- name: ListCommentsByArticle
SELECT id, created_at, updated_at, content, article_id, user_id FROM comments
WHERE article_id = $1
ORDER BY created_at
`

func (r *CommentRepo) ListCommentsByArticle(ctx context.Context, articleID uuid.UUID) ([]models.Comment, error) {
	rows, _ := r.DB.Query(ctx, listCommentsByArticle, articleID)
	comments, err := pgx.CollectRows(rows, rowToComment)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return comments, nil
}

const updateComment = `-- name: UpdateComment
UPDATE comments
SET content = $2, updated_at = $3
WHERE id = $1
RETURNING id, created_at, updated_at, content, article_id, user_id
`

func (r *CommentRepo) UpdateComment(ctx context.Context, commentID uuid.UUID, content string) (models.Comment, error) {
	rows, _ := r.DB.Query(ctx, updateComment, commentID, content, time.Now())
	comment, err := pgx.CollectOneRow(rows, rowToComment)

	switch {
	case err == nil:
		return comment, nil
	case errors.Is(err, pgx.ErrNoRows):
		return comment, apperrors.ErrCommentNotFound
	default:
		return comment, fmt.Errorf("db error: %w", err)
	}
}

const deleteComment = `-- name: DeleteComment
DELETE FROM comments
WHERE id = $1
`

func (r *CommentRepo) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteComment, commentID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommentNotFound
	}

	return nil
}

const deleteCommentsByArticle = `-- name: DeleteCommentsByArticle
DELETE FROM comments
WHERE article_id = $1
`

func (r *CommentRepo) DeleteCommentsByArticle(ctx context.Context, articleID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, deleteCommentsByArticle, articleID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

const deleteCommentsByUser = `-- name: DeleteCommentsByUser
DELETE FROM comments
WHERE user_id = $1
`

func (r *CommentRepo) DeleteCommentsByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, deleteCommentsByUser, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func rowToComment(row pgx.CollectableRow) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Content, &c.ArticleID, &c.UserID)
	return c, err
}
