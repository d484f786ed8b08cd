package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/scrollfeed/pkg/config"
	"github.com/umputun/scrollfeed/pkg/domain"
	"github.com/umputun/scrollfeed/pkg/feed"
	"github.com/umputun/scrollfeed/pkg/session"
	"github.com/umputun/scrollfeed/pkg/source"
	"github.com/umputun/scrollfeed/server/mocks"
)

// pageSource serves generated pages, failing pages listed in fail and returning nothing after last
type pageSource struct {
	gen  *source.Generator
	fail map[int]bool
	last int
}

func (s *pageSource) FetchPage(_ context.Context, page int) ([]domain.Post, error) {
	if s.fail[page] {
		return nil, errors.New("page unavailable")
	}
	if s.last >= 0 && page > s.last {
		return nil, nil
	}
	return s.gen.Page(page), nil
}

func testConfig(listen string) *mocks.ConfigProviderMock {
	cfg := config.Default()
	cfg.Server.Listen = listen
	return &mocks.ConfigProviderMock{
		GetServerConfigFunc: func() (string, time.Duration) {
			return listen, 10 * time.Second
		},
		GetFullConfigFunc: func() *config.Config {
			return cfg
		},
	}
}

// testStore makes a session store serving pageSource feeds limited to maxPages
func testStore(src *pageSource, maxPages int) *session.Store {
	if src.gen == nil {
		src.gen = source.NewGenerator(10, 1)
	}
	return session.NewStore(context.Background(), session.Config{
		NewFeed: func() *feed.Controller {
			return feed.NewController(feed.Config{Source: src, PageSize: 10, MaxPages: maxPages})
		},
		TTL: time.Minute,
	})
}

// testServer creates a server instance using the actual New function
func testServer(t *testing.T, sessions SessionStore) *Server {
	t.Helper()
	return New(testConfig(":8080"), sessions, nil, "test", false)
}

// request sends a request through the server router with the session cookie, if any
func request(t *testing.T, srv *Server, method, target, sessionID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

// sessionID returns the session cookie set by the response
func sessionID(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c.Value
		}
	}
	t.Fatal("no session cookie in response")
	return ""
}

func TestServer_New(t *testing.T) {
	srv := New(testConfig(":8080"), &mocks.SessionStoreMock{}, nil, "1.0.0", false)
	assert.NotNil(t, srv)
	assert.Equal(t, "1.0.0", srv.version)
	assert.False(t, srv.debug)
	assert.NotNil(t, srv.templates.Lookup(templateIndex))
	assert.NotNil(t, srv.templates.Lookup(templateFeedList))
}

func TestServer_Run(t *testing.T) {
	// find free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	srv := New(testConfig(fmt.Sprintf("127.0.0.1:%d", port)), &mocks.SessionStoreMock{}, nil, "1.0.0", true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/ping", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test request
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "pong"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRenderJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderJSON(rec, nil, http.StatusCreated, map[string]string{"key": "value"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"key":"value"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RenderError(rec, nil, errors.New("boom"), http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RenderError(rec, nil, nil, http.StatusInternalServerError)
	assert.JSONEq(t, `{"error":"unknown error"}`, rec.Body.String())
}
