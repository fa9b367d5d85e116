package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/okarpov/blogapi/internal/ratelimit"
)

type limiterFunc func(ctx context.Context, id string, max int, window time.Duration) (bool, error)

func (f limiterFunc) Allow(ctx context.Context, id string, max int, window time.Duration) (bool, error) {
	return f(ctx, id, max, window)
}

func TestRateLimitMiddleware(t *testing.T) {
	noopLog := loggerFunc(func(string, ...any) {})

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("6th request in window is denied", func(t *testing.T) {
		middleware := RateLimitMiddleware(ratelimit.NewMemoryLimiter(), noopLog)
		srv := httptest.NewServer(middleware(okHandler))
		defer srv.Close()

		for i := 0; i < 5; i++ {
			resp, err := http.Post(srv.URL+"/auth/login", "application/json", nil)
			require.NoError(t, err)
			resp.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusOK, resp.StatusCode, "request %d should pass", i+1)
		}

		resp, err := http.Post(srv.URL+"/auth/login", "application/json", nil)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Too many requests. Please try again later."
			}`,
			string(body),
		)
	})

	t.Run("only auth endpoints limited", func(t *testing.T) {
		middleware := RateLimitMiddleware(ratelimit.NewMemoryLimiter(), noopLog)
		srv := httptest.NewServer(middleware(okHandler))
		defer srv.Close()

		for i := 0; i < 10; i++ {
			resp, err := http.Get(srv.URL + "/articles")
			require.NoError(t, err)
			resp.Body.Close() // nolint:errcheck
			require.Equal(t, http.StatusOK, resp.StatusCode, "non-auth request %d should never be limited", i+1)
		}
	})

	t.Run("client ip from forwarded headers", func(t *testing.T) {
		var gotID string
		limiter := limiterFunc(func(ctx context.Context, id string, max int, window time.Duration) (bool, error) {
			gotID = id
			return true, nil
		})

		middleware := RateLimitMiddleware(limiter, noopLog)
		srv := httptest.NewServer(middleware(okHandler))
		defer srv.Close()

		get := func(t *testing.T, headers map[string]string) {
			t.Helper()
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/login", nil)
			require.NoError(t, err)
			for k, v := range headers {
				req.Header.Set(k, v)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close() // nolint:errcheck
		}

		// First X-Forwarded-For entry wins
		get(t, map[string]string{
			"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
			"X-Real-IP":       "198.51.100.9",
		})
		require.Equal(t, "203.0.113.7", gotID)

		// X-Real-IP next
		get(t, map[string]string{"X-Real-IP": "198.51.100.9"})
		require.Equal(t, "198.51.100.9", gotID)

		// Falls back to the connection address (host without port)
		get(t, nil)
		require.Equal(t, "127.0.0.1", gotID)
	})

	t.Run("limiter failure lets requests through", func(t *testing.T) {
		limiter := limiterFunc(func(ctx context.Context, id string, max int, window time.Duration) (bool, error) {
			return false, errors.New("redis down")
		})

		middleware := RateLimitMiddleware(limiter, noopLog)
		srv := httptest.NewServer(middleware(okHandler))
		defer srv.Close()

		resp, err := http.Post(srv.URL+"/auth/login", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusOK, resp.StatusCode, "a broken limiter must not block logins")
	})
}
