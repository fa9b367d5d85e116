package middleware

import (
	"context"
	"net/http"

	"github.com/okarpov/blogapi/internal/handlers/render"
	"github.com/okarpov/blogapi/internal/handlers/userctx"
	"github.com/okarpov/blogapi/internal/models"
)

type authService interface {
	// Resolve the user behind the Authorization header value
	Authenticate(ctx context.Context, authHeader string) (models.User, error)
}

func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
