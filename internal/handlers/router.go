package handlers

import (
	"context"
	"net/http"

	"github.com/okarpov/blogapi/internal/handlers/middleware"
	"github.com/okarpov/blogapi/internal/logger"
	"github.com/okarpov/blogapi/internal/models"
	"github.com/okarpov/blogapi/internal/ratelimit"
)

// AuthService as the router needs it: the handler operations plus
// Authenticate for the auth middleware
type AuthService interface {
	authService
	Authenticate(ctx context.Context, authHeader string) (models.User, error)
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	auth AuthService,
	articles articleService,
	comments commentService,
	likes toggleService,
	bookmarks toggleService,
	users userService,
	limiter ratelimit.Limiter,
	l logger.Logger,
) http.Handler {
	authHandler := NewAuth(auth, l)
	articleHandler := NewArticle(articles, l)
	commentHandler := NewComment(comments, l)
	likeHandler := NewLike(likes, l)
	bookmarkHandler := NewBookmark(bookmarks, l)
	userHandler := NewUser(users, l)

	authMiddleware := middleware.AuthMiddleware(auth)
	withAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	root := http.NewServeMux()
	root.Handle("/auth/", http.StripPrefix("/auth", authHandler.Handler()))

	// Reading articles and comments is public, everything else wants a user
	root.HandleFunc("GET /articles", articleHandler.list)
	root.HandleFunc("GET /articles/{id}", articleHandler.get)
	root.Handle("POST /articles", withAuth(articleHandler.create))
	root.Handle("PUT /articles/{id}", withAuth(articleHandler.update))
	root.Handle("DELETE /articles/{id}", withAuth(articleHandler.delete))

	root.HandleFunc("GET /articles/{id}/comments", commentHandler.list)
	root.Handle("POST /articles/{id}/comments", withAuth(commentHandler.create))
	root.Handle("PUT /articles/{id}/comments/{commentID}", withAuth(commentHandler.update))
	root.Handle("DELETE /articles/{id}/comments/{commentID}", withAuth(commentHandler.delete))

	root.Handle("POST /articles/{id}/like", withAuth(likeHandler.add))
	root.Handle("DELETE /articles/{id}/like", withAuth(likeHandler.remove))
	root.Handle("GET /articles/{id}/like/status", withAuth(likeHandler.status))

	root.Handle("POST /articles/{id}/bookmark", withAuth(bookmarkHandler.add))
	root.Handle("DELETE /articles/{id}/bookmark", withAuth(bookmarkHandler.remove))
	root.Handle("GET /articles/{id}/bookmark/status", withAuth(bookmarkHandler.status))

	root.Handle("GET /users/me", withAuth(userHandler.me))
	root.Handle("DELETE /users/me", withAuth(userHandler.withdraw))

	return chain(root,
		middleware.LoggerMiddleware(l),
		middleware.RateLimitMiddleware(limiter, l),
	)
}
