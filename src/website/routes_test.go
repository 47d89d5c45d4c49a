package website

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"git.agora.community/agora/agora/src/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	router := &Router{}
	routes := RouteBuilder{Router: router}

	routes.GET(regexp.MustCompile(`^/boards/(?P<slug>[^/]+)$`), func(c *RequestContext) ResponseData {
		var res ResponseData
		res.Write([]byte("board:" + c.PathParams["slug"]))
		return res
	})
	routes.POST(regexp.MustCompile(`^/posts/(?P<id>\d+)/comments$`), func(c *RequestContext) ResponseData {
		var res ResponseData
		res.Write([]byte("comment on post " + c.PathParams["id"]))
		return res
	})
	routes.AnyMethod(regexp.MustCompile("^"), FourOhFour)

	srv := httptest.NewServer(router)
	defer srv.Close()

	t.Run("path params", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/boards/general")
		require.NoError(t, err)
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "board:general", string(body))
	})

	t.Run("trailing slashes do not matter", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/boards/general/")
		require.NoError(t, err)
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Equal(t, "board:general", string(body))
	})

	t.Run("HEAD routes like GET but sends no body", func(t *testing.T) {
		res, err := http.Head(srv.URL + "/boards/general")
		require.NoError(t, err)
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Empty(t, body)
	})

	t.Run("wrong method falls through to the catch-all", func(t *testing.T) {
		res, err := http.Post(srv.URL+"/boards/general", "text/plain", nil)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("digit-only patterns reject non-digits", func(t *testing.T) {
		res, err := http.Post(srv.URL+"/posts/nope/comments", "text/plain", nil)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

func TestCSRFMiddleware(t *testing.T) {
	sessions := auth.NewMemorySessionStore()
	session, err := sessions.GetOrCreate(context.Background(), auth.NewSessionID())
	require.NoError(t, err)

	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			currentUserMiddleware,
			csrfMiddleware(sessions),
		},
	}
	routes.POST(regexp.MustCompile("^/mutate$"), func(c *RequestContext) ResponseData {
		var res ResponseData
		res.Write([]byte("ok"))
		return res
	})
	routes.AnyMethod(regexp.MustCompile("^"), FourOhFour)

	srv := httptest.NewServer(router)
	defer srv.Close()

	post := func(t *testing.T, prepare func(req *http.Request)) *http.Response {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/mutate", nil)
		require.NoError(t, err)
		prepare(req)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { res.Body.Close() })
		return res
	}
	withSession := func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: session.ID})
	}

	t.Run("no session cookie", func(t *testing.T) {
		res := post(t, func(req *http.Request) {})
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("session but no token", func(t *testing.T) {
		res := post(t, withSession)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("wrong token", func(t *testing.T) {
		res := post(t, func(req *http.Request) {
			withSession(req)
			req.Header.Set(auth.CSRFHeaderName, "attacker-guess")
		})
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("unknown session", func(t *testing.T) {
		res := post(t, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: auth.NewSessionID()})
			req.Header.Set(auth.CSRFHeaderName, session.CSRFToken)
		})
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("token in header", func(t *testing.T) {
		res := post(t, func(req *http.Request) {
			withSession(req)
			req.Header.Set(auth.CSRFHeaderName, session.CSRFToken)
		})
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("token in form field", func(t *testing.T) {
		form := url.Values{}
		form.Set(auth.CSRFFieldName, session.CSRFToken)

		req, err := http.NewRequest(http.MethodPost, srv.URL+"/mutate", strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		withSession(req)

		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})
}

func TestLogContextErrors(t *testing.T) {
	err1 := errors.New("test error 1")
	err2 := errors.New("test error 2")

	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Print("sanity check")

	assert.Contains(t, buf.String(), "sanity check")

	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			func(h Handler) Handler {
				return func(c *RequestContext) ResponseData {
					c.Logger = &logger
					return h(c)
				}
			},
			logContextErrorsMiddleware,
		},
	}

	routes.GET(regexp.MustCompile("^/test$"), func(c *RequestContext) ResponseData {
		return c.ErrorResponse(http.StatusInternalServerError, err1, err2)
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/test")
	if assert.Nil(t, err) {
		defer res.Body.Close()

		t.Logf("Log contents: %s", buf.String())

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

		assert.Contains(t, buf.String(), err1.Error())
		assert.Contains(t, buf.String(), err2.Error())
	}
}
