package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/models"
	"github.com/okarpov/blogapi/internal/repository"
	"github.com/okarpov/blogapi/internal/service/article"
	"github.com/okarpov/blogapi/internal/service/auth"
)

type UserService struct {
	storage repository.Storage
	hasher  auth.PasswordHasher
}

func NewService(storage repository.Storage, hasher auth.PasswordHasher) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}
	return &UserService{storage: storage, hasher: hasher}
}

func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.storage.User().GetUserByEmail(ctx, email)
}

// Withdraw deletes the account and everything it owns. The password is
// re-checked even though the caller is already authenticated.
//
// The fan-out runs in one transaction: owned articles with their comments,
// likes and bookmarks go first, then the user's own likes (fixing up the
// counters of other users' articles), bookmarks and comments, and the user
// record last.
func (s *UserService) Withdraw(ctx context.Context, actor models.User, password string) error {
	if err := s.hasher.Compare(actor.HashedPassword, password); err != nil {
		return apperrors.ErrInvalidPassword
	}

	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		owned, err := tx.Article().ListArticlesByUser(ctx, actor.ID)
		if err != nil {
			return err
		}
		for _, a := range owned {
			if err := article.DeleteArticleTree(ctx, tx, a.ID); err != nil {
				return err
			}
		}

		liked, err := tx.Like().DeleteByUser(ctx, actor.ID)
		if err != nil {
			return err
		}
		for _, articleID := range liked {
			// No-op for articles removed in the owned-articles pass
			if err := tx.Article().DecrementLikeCount(ctx, articleID); err != nil {
				return err
			}
		}

		if _, err := tx.Bookmark().DeleteByUser(ctx, actor.ID); err != nil {
			return err
		}
		if err := tx.Comment().DeleteCommentsByUser(ctx, actor.ID); err != nil {
			return err
		}

		return tx.User().DeleteUser(ctx, actor.ID)
	})
	if err != nil {
		return fmt.Errorf("error while withdrawing user. Err: %w", err)
	}

	return nil
}
