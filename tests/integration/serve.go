package integration

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/okarpov/blogapi/internal/blacklist"
	"github.com/okarpov/blogapi/internal/handlers"
	"github.com/okarpov/blogapi/internal/logger"
	"github.com/okarpov/blogapi/internal/ratelimit"
	"github.com/okarpov/blogapi/internal/repository/postgres"
	"github.com/okarpov/blogapi/internal/service/article"
	"github.com/okarpov/blogapi/internal/service/auth"
	"github.com/okarpov/blogapi/internal/service/comment"
	"github.com/okarpov/blogapi/internal/service/toggle"
	"github.com/okarpov/blogapi/internal/service/user"
	"github.com/okarpov/blogapi/internal/testutil"
	"github.com/okarpov/blogapi/internal/tokenstore"
)

type Services struct {
	AuthService    *auth.AuthService
	ArticleService *article.ArticleService
}

// Create db transaction and run the full router over it with in-memory
// token stores and a fresh rate limiter per call. The transaction rolls
// back when fn returns, so the database stays clean between tests.
func RunTx(dbpool *pgxpool.Pool, t *testing.T, fn func(srvURL string, s Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)
		noop := logger.NewNoOpLogger()

		authService, err := auth.NewService(
			auth.Config{SecretKey: "test-secret"},
			storage.User(),
			tokenstore.NewMemoryStore(),
			blacklist.NewMemoryBlacklist(),
		)
		require.NoError(t, err, "auth service starting error")

		articleService := article.NewService(storage)
		commentService := comment.NewService(storage)
		likeService := toggle.NewLikeService(storage, noop)
		bookmarkService := toggle.NewBookmarkService(storage, noop)
		userService := user.NewService(storage, nil)

		router := handlers.NewRouter(
			authService,
			articleService,
			commentService,
			likeService,
			bookmarkService,
			userService,
			ratelimit.NewMemoryLimiter(),
			noop,
		)

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(srv.URL, Services{
			AuthService:    authService,
			ArticleService: articleService,
		})
	})
}
