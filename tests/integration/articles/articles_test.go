package articles

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okarpov/blogapi/internal/testutil"
	"github.com/okarpov/blogapi/tests/integration"
)

type client struct {
	t      *testing.T
	srvURL string
	token  string
}

// do sends a request with the client's bearer token and returns decoded body
func (c *client) do(method string, path string, reqBody string) (int, map[string]any) {
	c.t.Helper()

	var reader io.Reader
	if reqBody != "" {
		reader = strings.NewReader(reqBody)
	}
	req, err := http.NewRequest(method, c.srvURL+path, reader)
	require.NoError(c.t, err)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()

	var decoded map[string]any
	if len(body) > 0 {
		require.NoErrorf(c.t, json.Unmarshal(body, &decoded), "body: %s", string(body))
	}
	return resp.StatusCode, decoded
}

func newClient(t *testing.T, srvURL string, email string) *client {
	t.Helper()
	c := &client{t: t, srvURL: srvURL}

	code, _ := c.do(http.MethodPost, "/auth/signup",
		`{"email": "`+email+`", "password": "StrongEnoughPassword", "nickname": "nk"}`)
	require.Equal(t, http.StatusCreated, code)

	code, body := c.do(http.MethodPost, "/auth/login",
		`{"email": "`+email+`", "password": "StrongEnoughPassword"}`)
	require.Equal(t, http.StatusOK, code)
	c.token = body["accessToken"].(string)
	return c
}

func Test_Articles(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create read update delete", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			author := newClient(t, srvURL, "author@example.com")

			code, created := author.do(http.MethodPost, "/articles", `{"title": "Hello", "content": "World"}`)
			require.Equal(t, http.StatusCreated, code)
			articleID := created["id"].(string)
			require.EqualValues(t, 0, created["likeCount"])

			// Readable without a token
			anon := &client{t: t, srvURL: srvURL}
			code, got := anon.do(http.MethodGet, "/articles/"+articleID, "")
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, "Hello", got["title"])

			code, updated := author.do(http.MethodPut, "/articles/"+articleID, `{"title": "Renamed", "content": "World"}`)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, "Renamed", updated["title"])

			code, _ = author.do(http.MethodDelete, "/articles/"+articleID, "")
			require.Equal(t, http.StatusOK, code)

			code, _ = anon.do(http.MethodGet, "/articles/"+articleID, "")
			require.Equal(t, http.StatusNotFound, code)
		})
	})

	t.Run("mutations need a token", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			anon := &client{t: t, srvURL: srvURL}

			code, _ := anon.do(http.MethodPost, "/articles", `{"title": "Nope", "content": "Nope"}`)
			require.Equal(t, http.StatusUnauthorized, code)
		})
	})

	t.Run("stranger cannot edit", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			author := newClient(t, srvURL, "owner@example.com")
			stranger := newClient(t, srvURL, "stranger@example.com")

			code, created := author.do(http.MethodPost, "/articles", `{"title": "Mine", "content": "Content"}`)
			require.Equal(t, http.StatusCreated, code)
			articleID := created["id"].(string)

			code, _ = stranger.do(http.MethodPut, "/articles/"+articleID, `{"title": "Stolen", "content": "Content"}`)
			require.Equal(t, http.StatusForbidden, code)

			code, _ = stranger.do(http.MethodDelete, "/articles/"+articleID, "")
			require.Equal(t, http.StatusForbidden, code)
		})
	})

	t.Run("comments", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			author := newClient(t, srvURL, "blogger@example.com")
			reader := newClient(t, srvURL, "reader@example.com")

			code, created := author.do(http.MethodPost, "/articles", `{"title": "Post", "content": "Content"}`)
			require.Equal(t, http.StatusCreated, code)
			articleID := created["id"].(string)

			code, comment := reader.do(http.MethodPost, "/articles/"+articleID+"/comments", `{"content": "Nice"}`)
			require.Equal(t, http.StatusCreated, code)
			commentID := comment["id"].(string)

			// The article author does not own the comment
			code, _ = author.do(http.MethodPut, "/articles/"+articleID+"/comments/"+commentID, `{"content": "Edited"}`)
			require.Equal(t, http.StatusForbidden, code)

			code, updated := reader.do(http.MethodPut, "/articles/"+articleID+"/comments/"+commentID, `{"content": "Edited"}`)
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, "Edited", updated["content"])
		})
	})

	t.Run("like and bookmark toggles", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			author := newClient(t, srvURL, "liked@example.com")
			fan := newClient(t, srvURL, "fan@example.com")

			code, created := author.do(http.MethodPost, "/articles", `{"title": "Likeable", "content": "Content"}`)
			require.Equal(t, http.StatusCreated, code)
			articleID := created["id"].(string)

			code, res := fan.do(http.MethodPost, "/articles/"+articleID+"/like", "")
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, true, res["liked"])
			require.Equal(t, true, res["wasAdded"])
			require.EqualValues(t, 1, res["likeCount"])

			// The pair exists now, so the next request flips it off
			code, res = fan.do(http.MethodPost, "/articles/"+articleID+"/like", "")
			require.Equal(t, http.StatusOK, code)
			require.EqualValues(t, 0, res["likeCount"], "second POST toggles the like off")

			code, res = fan.do(http.MethodGet, "/articles/"+articleID+"/like/status", "")
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, false, res["liked"])

			code, res = fan.do(http.MethodPost, "/articles/"+articleID+"/bookmark", "")
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, true, res["bookmarked"])
			require.EqualValues(t, 1, res["bookmarkCount"])

			code, res = fan.do(http.MethodDelete, "/articles/"+articleID+"/bookmark", "")
			require.Equal(t, http.StatusOK, code)
			require.Equal(t, false, res["bookmarked"])
			require.Equal(t, true, res["wasRemoved"])
			require.EqualValues(t, 0, res["bookmarkCount"])
		})
	})

	t.Run("account withdrawal", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			leaver := newClient(t, srvURL, "leaver@example.com")

			code, created := leaver.do(http.MethodPost, "/articles", `{"title": "Gone soon", "content": "Content"}`)
			require.Equal(t, http.StatusCreated, code)
			articleID := created["id"].(string)

			// Wrong password keeps everything
			code, _ = leaver.do(http.MethodDelete, "/users/me", `{"password": "WrongPassword"}`)
			require.Equal(t, http.StatusUnauthorized, code)

			code, _ = leaver.do(http.MethodDelete, "/users/me", `{"password": "StrongEnoughPassword"}`)
			require.Equal(t, http.StatusOK, code)

			anon := &client{t: t, srvURL: srvURL}
			code, _ = anon.do(http.MethodGet, "/articles/"+articleID, "")
			require.Equal(t, http.StatusNotFound, code, "owned articles go with the account")
		})
	})
}
