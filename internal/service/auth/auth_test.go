package auth

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okarpov/blogapi/internal/apperrors"
	"github.com/okarpov/blogapi/internal/blacklist"
	"github.com/okarpov/blogapi/internal/repository/postgres"
	"github.com/okarpov/blogapi/internal/testutil"
	"github.com/okarpov/blogapi/internal/tokenstore"
)

func Test_AuthService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newService := func(t *testing.T, tx pgx.Tx) *AuthService {
		t.Helper()
		s, err := NewService(
			Config{SecretKey: "test-secret-key"},
			&postgres.UserRepo{DB: tx},
			tokenstore.NewMemoryStore(),
			blacklist.NewMemoryBlacklist(),
		)
		require.NoError(t, err)
		return s
	}

	signup := func(t *testing.T, s *AuthService, email string) {
		t.Helper()
		_, err := s.Signup(t.Context(), email, "password123", "nick")
		require.NoError(t, err)
	}

	t.Run("signup ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, tx)

			user, err := s.Signup(t.Context(), "new@example.com", "password123", "newbie")

			require.NoError(t, err)
			assert.Equal(t, "new@example.com", user.Email)
			assert.Equal(t, "newbie", user.Nickname)
			assert.NotEqual(t, "password123", user.HashedPassword, "password must be stored hashed")
		})
	})

	t.Run("signup duplicate email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, tx)
			signup(t, s, "dup@example.com")

			_, err := s.Signup(t.Context(), "dup@example.com", "otherpassword", "other")

			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("login issues pair", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, tx)
			signup(t, s, "login@example.com")

			pair, err := s.Login(t.Context(), "login@example.com", "password123")

			require.NoError(t, err)
			assert.NotEmpty(t, pair.Access.Value)
			assert.NotEmpty(t, pair.Refresh.Value)
			assert.InDelta(t, 3600, pair.ExpiresIn(), 2, "default access TTL is one hour")
		})
	})

	t.Run("login wrong password", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, tx)
			signup(t, s, "wrongpass@example.com")

			_, err := s.Login(t.Context(), "wrongpass@example.com", "not-the-password")

			assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
		})
	})

	t.Run("login unknown email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, tx)

			_, err := s.Login(t.Context(), "nobody@example.com", "password123")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("refresh rotates the token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, tx)
			signup(t, s, "rotate@example.com")

			pair, err := s.Login(t.Context(), "rotate@example.com", "password123")
			require.NoError(t, err)

			fresh, err := s.Refresh(t.Context(), pair.Refresh.Value)
			require.NoError(t, err)
			assert.NotEqual(t, pair.Refresh.Value, fresh.Refresh.Value)

			// The consumed token must not refresh a second time
			_, err = s.Refresh(t.Context(), pair.Refresh.Value)
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)

			// The replacement still works
			_, err = s.Refresh(t.Context(), fresh.Refresh.Value)
			assert.NoError(t, err)
		})
	})

	t.Run("refresh rejects non token input", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, tx)

			_, err := s.Refresh(t.Context(), "not-a-jwt")

			assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
		})
	})

	t.Run("logout blacklists the access token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, tx)
			signup(t, s, "logout@example.com")

			pair, err := s.Login(t.Context(), "logout@example.com", "password123")
			require.NoError(t, err)
			header := "Bearer " + pair.Access.Value

			// Valid before logout
			user, err := s.Authenticate(t.Context(), header)
			require.NoError(t, err)
			assert.Equal(t, "logout@example.com", user.Email)

			require.NoError(t, s.Logout(t.Context(), header))

			_, err = s.Authenticate(t.Context(), header)
			assert.ErrorIs(t, err, apperrors.ErrTokenInvalid, "revoked token must not authenticate")
		})
	})

	t.Run("logout without token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, tx)

			err := s.Logout(t.Context(), "")

			assert.ErrorIs(t, err, apperrors.ErrTokenMissing)
		})
	})

	t.Run("logout leaves the refresh token alive", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, tx)
			signup(t, s, "gap@example.com")

			pair, err := s.Login(t.Context(), "gap@example.com", "password123")
			require.NoError(t, err)

			require.NoError(t, s.Logout(t.Context(), "Bearer "+pair.Access.Value))

			// Known tradeoff: only the access token is revoked
			_, err = s.Refresh(t.Context(), pair.Refresh.Value)
			assert.NoError(t, err)
		})
	})

	t.Run("authenticate expired token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s, err := NewService(
				Config{SecretKey: "test-secret-key", AccessTokenTTL: -time.Minute},
				&postgres.UserRepo{DB: tx},
				tokenstore.NewMemoryStore(),
				blacklist.NewMemoryBlacklist(),
			)
			require.NoError(t, err)
			signup(t, s, "expired@example.com")

			pair, err := s.Login(t.Context(), "expired@example.com", "password123")
			require.NoError(t, err)

			_, err = s.Authenticate(t.Context(), "Bearer "+pair.Access.Value)

			assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
		})
	})
}
