package models

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Title     string
	Content   string

	// Denormalized likes counter. Kept in sync with the article_likes
	// rows by the toggle service; never negative.
	LikeCount int64

	UserID uuid.UUID
}
