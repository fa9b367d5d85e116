package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/models"
)

// AssociationRepo serves both likes and bookmarks: the tables have the
// same shape and the same (user_id, article_id) unique constraint, only
// the table name differs. The table name comes from Storage, never from
// user input.
type AssociationRepo struct {
	DB    DBTX
	table string
}

func (r *AssociationRepo) Add(ctx context.Context, userID uuid.UUID, articleID uuid.UUID) (models.Association, error) {
	query := fmt.Sprintf(`
	INSERT INTO %s (id, user_id, article_id)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, user_id, article_id
	`, r.table)

	rows, _ := r.DB.Query(ctx, query, uuid.New(), userID, articleID)
	assoc, err := pgx.CollectOneRow(rows, rowToAssociation)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return assoc, apperrors.ErrAssociationExists
		}

		return assoc, fmt.Errorf("db error: %w", err)
	}

	return assoc, nil
}

func (r *AssociationRepo) Remove(ctx context.Context, userID uuid.UUID, articleID uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`
	DELETE FROM %s
	WHERE user_id = $1 AND article_id = $2
	`, r.table)

	tag, err := r.DB.Exec(ctx, query, userID, articleID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *AssociationRepo) Exists(ctx context.Context, userID uuid.UUID, articleID uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`
	SELECT EXISTS (SELECT 1 FROM %s WHERE user_id = $1 AND article_id = $2)
	`, r.table)

	rows, _ := r.DB.Query(ctx, query, userID, articleID)
	exists, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *AssociationRepo) CountByArticle(ctx context.Context, articleID uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`
	SELECT count(*) FROM %s WHERE article_id = $1
	`, r.table)

	rows, _ := r.DB.Query(ctx, query, articleID)
	count, err := pgx.CollectOneRow(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

func (r *AssociationRepo) DeleteByArticle(ctx context.Context, articleID uuid.UUID) error {
	query := fmt.Sprintf(`
	DELETE FROM %s WHERE article_id = $1
	`, r.table)

	_, err := r.DB.Exec(ctx, query, articleID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *AssociationRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := fmt.Sprintf(`
	DELETE FROM %s WHERE user_id = $1
	RETURNING article_id
	`, r.table)

	rows, _ := r.DB.Query(ctx, query, userID)
	articleIDs, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return articleIDs, nil
}

func rowToAssociation(row pgx.CollectableRow) (models.Association, error) {
	var a models.Association
	err := row.Scan(&a.ID, &a.CreatedAt, &a.UserID, &a.ArticleID)
	return a, err
}
