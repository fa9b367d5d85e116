// Package toggle flips a per (user, article) association on and off:
// likes and bookmarks. The flip is idempotent under races: the advisory
// presence check only picks a direction, the table's unique constraint
// is the authority, and losing a race to a concurrent caller counts as
// success because the requested end state holds either way.
package toggle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/logger"
	"github.com/okarpov/blogapi/internal/models"
	"github.com/okarpov/blogapi/internal/repository"
)

const (
	maxAttempts = 3

	// Backoff grows linearly: 10ms, 20ms, 30ms
	backoffBase = 10 * time.Millisecond
)

type Service struct {
	storage repository.Storage
	logger  logger.Logger

	// Selects the association repo (likes or bookmarks) from a storage,
	// so retries inside a transaction use the transaction-bound repo
	assoc func(s repository.Storage) repository.AssociationRepo

	// Likes maintain the denormalized counter on the article row
	counted bool
}

// NewLikeService toggles likes and keeps articles.like_count in sync
func NewLikeService(storage repository.Storage, l logger.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  l,
		assoc:   func(s repository.Storage) repository.AssociationRepo { return s.Like() },
		counted: true,
	}
}

// NewBookmarkService toggles bookmarks, counted by rows
func NewBookmarkService(storage repository.Storage, l logger.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  l,
		assoc:   func(s repository.Storage) repository.AssociationRepo { return s.Bookmark() },
		counted: false,
	}
}

// Toggle flips the association for the user on the article. The returned
// bool reports the direction actually taken: true for added, false for
// removed.
func (s *Service) Toggle(ctx context.Context, articleID uuid.UUID, userEmail string) (bool, error) {
	user, article, err := s.resolve(ctx, articleID, userEmail)
	if err != nil {
		return false, err
	}

	present, err := s.assoc(s.storage).Exists(ctx, user.ID, article.ID)
	if err != nil {
		return false, err
	}

	if present {
		return false, s.removeWithRetry(ctx, user, article)
	}
	return true, s.addWithRetry(ctx, user, article)
}

// Status reports whether the association is present for the user and the
// current count for the article
func (s *Service) Status(ctx context.Context, articleID uuid.UUID, userEmail string) (bool, int64, error) {
	user, article, err := s.resolve(ctx, articleID, userEmail)
	if err != nil {
		return false, 0, err
	}

	present, err := s.assoc(s.storage).Exists(ctx, user.ID, article.ID)
	if err != nil {
		return false, 0, err
	}

	count, err := s.countFor(ctx, article)
	if err != nil {
		return false, 0, err
	}

	return present, count, nil
}

// Count for the article
func (s *Service) Count(ctx context.Context, articleID uuid.UUID) (int64, error) {
	article, err := s.storage.Article().GetArticle(ctx, articleID)
	if err != nil {
		return 0, err
	}

	return s.countFor(ctx, article)
}

// addWithRetry inserts the association row. A unique violation means a
// concurrent add won the race; it is retried a few times and exhaustion
// degrades to success, the row exists either way.
func (s *Service) addWithRetry(ctx context.Context, user models.User, article models.Article) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.add(ctx, user, article)

		switch {
		case err == nil:
			return nil
		case errors.Is(err, apperrors.ErrAssociationExists):
			s.logger.Debug("association exists, retrying",
				"user", user.Email, "article", article.ID, "attempt", attempt)

			if attempt == maxAttempts {
				s.logger.Info("association added concurrently, reporting success",
					"user", user.Email, "article", article.ID)
				return nil
			}

			if err := sleep(ctx, backoffBase*time.Duration(attempt)); err != nil {
				return err
			}
		default:
			return err
		}
	}

	return nil
}

// removeWithRetry deletes the association row. Zero rows deleted means a
// concurrent remove won, which is the requested end state anyway. Store
// errors are retried and exhaustion degrades to success as well.
func (s *Service) removeWithRetry(ctx context.Context, user models.User, article models.Article) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.remove(ctx, user, article)
		if err == nil {
			return nil
		}

		s.logger.Debug("error removing association, retrying",
			"user", user.Email, "article", article.ID, "attempt", attempt, "error", err.Error())

		if attempt == maxAttempts {
			s.logger.Info("removing association failed, reporting success",
				"user", user.Email, "article", article.ID)
			return nil
		}

		if err := sleep(ctx, backoffBase*time.Duration(attempt)); err != nil {
			return err
		}
	}

	return nil
}

// add inserts the row and bumps the like counter in one transaction, so
// a constraint violation rolls the counter bump back with the insert
func (s *Service) add(ctx context.Context, user models.User, article models.Article) error {
	return s.storage.InTx(ctx, func(tx repository.Storage) error {
		if _, err := s.assoc(tx).Add(ctx, user.ID, article.ID); err != nil {
			return err
		}

		if s.counted {
			return tx.Article().IncrementLikeCount(ctx, article.ID)
		}
		return nil
	})
}

func (s *Service) remove(ctx context.Context, user models.User, article models.Article) error {
	return s.storage.InTx(ctx, func(tx repository.Storage) error {
		deleted, err := s.assoc(tx).Remove(ctx, user.ID, article.ID)
		if err != nil {
			return err
		}

		if deleted && s.counted {
			return tx.Article().DecrementLikeCount(ctx, article.ID)
		}
		return nil
	})
}

func (s *Service) resolve(ctx context.Context, articleID uuid.UUID, userEmail string) (models.User, models.Article, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, userEmail)
	if err != nil {
		return models.User{}, models.Article{}, err
	}

	article, err := s.storage.Article().GetArticle(ctx, articleID)
	if err != nil {
		return models.User{}, models.Article{}, err
	}

	return user, article, nil
}

func (s *Service) countFor(ctx context.Context, article models.Article) (int64, error) {
	if !s.counted {
		return s.assoc(s.storage).CountByArticle(ctx, article.ID)
	}

	// The denormalized counter may be stale on the article loaded before
	// the toggle, read it fresh
	fresh, err := s.storage.Article().GetArticle(ctx, article.ID)
	if err != nil {
		return 0, err
	}
	return fresh.LikeCount, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
