package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Totarae/shortr/internal/handlers"
	"github.com/Totarae/shortr/internal/middleware"
	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/router"
	"github.com/Totarae/shortr/internal/service"
	"github.com/Totarae/shortr/internal/storage/memory"
)

func newServer(t *testing.T, bodyLimit int64) *httptest.Server {
	t.Helper()
	svc := service.NewAliasService(memory.New(4), zap.NewNop())
	r := router.NewRouter(handlers.NewHandler(svc, zap.NewNop()), zap.NewNop(), bodyLimit)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_Lifecycle(t *testing.T) {
	srv := newServer(t, 1<<16)

	resp := do(t, srv, http.MethodPost, "/api/links", `{"alias":"gh","url":"github.com"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp = do(t, srv, http.MethodGet, "/gh", "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "http://github.com", resp.Header.Get("Location"))

	resp = do(t, srv, http.MethodGet, "/api/links/gh", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var link model.ShortLink
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&link))
	assert.EqualValues(t, 1, link.Count)

	resp = do(t, srv, http.MethodPut, "/api/links/gh", `{"url":"https://gitlab.com"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/gh", "")
	assert.Equal(t, "https://gitlab.com", resp.Header.Get("Location"))

	resp = do(t, srv, http.MethodDelete, "/api/links/gh", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/gh", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_LegacyRoutes(t *testing.T) {
	srv := newServer(t, 1<<16)

	resp := do(t, srv, http.MethodPost, "/", `{"alias":"old","url":"old.example"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, srv, http.MethodPut, "/", `{"alias":"old","url":"new.example"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var links []model.ShortLink
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&links))
	require.Len(t, links, 1)
	assert.Equal(t, "new.example", links[0].URL)

	resp = do(t, srv, http.MethodDelete, "/old", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Bulk(t *testing.T) {
	srv := newServer(t, 1<<16)

	resp := do(t, srv, http.MethodPost, "/api/links/bulk", `{"links":[{"alias":"a","url":"a.com"},{"alias":"a","url":"b.com"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result model.BulkResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, model.BulkSummary{Total: 2, Created: 1, Failed: 1}, result.Summary)
}

func TestRouter_BodyLimit(t *testing.T) {
	srv := newServer(t, 64)

	body := `{"alias":"big","url":"` + strings.Repeat("x", 200) + `"}`
	resp := do(t, srv, http.MethodPost, "/api/links", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestRouter_Preflight(t *testing.T) {
	srv := newServer(t, 1<<16)

	resp := do(t, srv, http.MethodOptions, "/api/links", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_Ping(t *testing.T) {
	srv := newServer(t, 1<<16)

	resp := do(t, srv, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
