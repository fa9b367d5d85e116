package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Content   string
	ArticleID uuid.UUID
	UserID    uuid.UUID
}

// Association is a like or a bookmark: one row per (user, article) pair,
// enforced unique by the storage.
type Association struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UserID    uuid.UUID
	ArticleID uuid.UUID
}
