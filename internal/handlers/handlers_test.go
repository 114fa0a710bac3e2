package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/Totarae/shortr/internal/handlers"
	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/service"
	"github.com/Totarae/shortr/internal/storage/memory"
	"github.com/Totarae/shortr/internal/storage/mocks"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupHandler(t testing.TB) (*handlers.Handler, *service.AliasService) {
	t.Helper()
	svc := service.NewAliasService(memory.New(memory.DefaultShards), zap.NewNop())
	svc.Clock = service.FixedClock(fixedNow)
	return handlers.NewHandler(svc, zap.NewNop()), svc
}

// withAlias добавляет chi-параметр alias вручную
func withAlias(req *http.Request, alias string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("alias", alias)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestCreateLink(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(`{"alias":"gh","url":"github.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.CreateLink(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	link := decodeBody[model.ShortLink](t, rec)
	assert.Equal(t, "gh", link.Alias)
	assert.Equal(t, "github.com", link.URL)
	assert.Zero(t, link.Count)
	assert.True(t, fixedNow.Equal(link.CreatedAt))
}

func TestCreateLink_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{name: "missing alias", body: `{"url":"a.com"}`, status: http.StatusBadRequest, msg: "Alias and url required"},
		{name: "missing url", body: `{"alias":"a"}`, status: http.StatusBadRequest, msg: "Alias and url required"},
		{name: "blank", body: `{"alias":"  ","url":"a.com"}`, status: http.StatusBadRequest, msg: "Alias and url required"},
		{name: "malformed", body: `{"alias":`, status: http.StatusBadRequest, msg: "Invalid JSON"},
		{name: "duplicate", body: `{"alias":"taken","url":"b.com"}`, status: http.StatusConflict, msg: "Alias already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := setupHandler(t)
			_, err := svc.Create(context.Background(), "taken", "a.com")
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			h.CreateLink(rec, httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, decodeBody[model.ErrorResponse](t, rec).Error)
		})
	}
}

func TestCreateLink_DuplicateKeepsOriginal(t *testing.T) {
	h, svc := setupHandler(t)
	_, err := svc.Create(context.Background(), "x", "a.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.CreateLink(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"alias":"x","url":"b.com"}`)))
	require.Equal(t, http.StatusConflict, rec.Code)

	link, err := svc.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "a.com", link.URL)
}

func TestListLinks(t *testing.T) {
	h, svc := setupHandler(t)

	rec := httptest.NewRecorder()
	h.ListLinks(rec, httptest.NewRequest(http.MethodGet, "/api/links", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, a := range []string{"b", "a"} {
		_, err := svc.Create(context.Background(), a, a+".com")
		require.NoError(t, err)
	}

	rec = httptest.NewRecorder()
	h.ListLinks(rec, httptest.NewRequest(http.MethodGet, "/api/links", nil))
	links := decodeBody[[]model.ShortLink](t, rec)
	require.Len(t, links, 2)
	assert.Equal(t, "a", links[0].Alias)
	assert.Equal(t, "b", links[1].Alias)
}

func TestGetLink(t *testing.T) {
	h, svc := setupHandler(t)
	_, err := svc.Create(context.Background(), "gh", "github.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.GetLink(rec, withAlias(httptest.NewRequest(http.MethodGet, "/api/links/gh", nil), "gh"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "github.com", decodeBody[model.ShortLink](t, rec).URL)

	rec = httptest.NewRecorder()
	h.GetLink(rec, withAlias(httptest.NewRequest(http.MethodGet, "/api/links/none", nil), "none"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedirect(t *testing.T) {
	h, svc := setupHandler(t)
	_, err := svc.Create(context.Background(), "gh", "github.com")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.Redirect(rec, withAlias(httptest.NewRequest(http.MethodGet, "/gh", nil), "gh"))

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "http://github.com", rec.Header().Get("Location"))
	}

	link, err := svc.Get(context.Background(), "gh")
	require.NoError(t, err)
	assert.EqualValues(t, 3, link.Count)
}

func TestRedirect_KeepsScheme(t *testing.T) {
	h, svc := setupHandler(t)
	_, err := svc.Create(context.Background(), "s", "https://secure.example/path")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.Redirect(rec, withAlias(httptest.NewRequest(http.MethodGet, "/s", nil), "s"))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://secure.example/path", rec.Header().Get("Location"))
}

func TestRedirect_NotFound(t *testing.T) {
	h, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	h.Redirect(rec, withAlias(httptest.NewRequest(http.MethodGet, "/missing", nil), "missing"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Alias not found", strings.TrimSpace(rec.Body.String()))
}

func TestUpdateLink(t *testing.T) {
	h, svc := setupHandler(t)
	_, err := svc.Create(context.Background(), "gh", "github.com")
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), "gh")
	require.NoError(t, err)

	req := withAlias(httptest.NewRequest(http.MethodPut, "/api/links/gh", strings.NewReader(`{"url":"gitlab.com"}`)), "gh")
	rec := httptest.NewRecorder()
	h.UpdateLink(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	link := decodeBody[model.ShortLink](t, rec)
	assert.Equal(t, "gh", link.Alias)
	assert.Equal(t, "gitlab.com", link.URL)
	assert.Zero(t, link.Count)
	assert.True(t, fixedNow.Equal(link.CreatedAt))
}

func TestUpdateLink_Missing(t *testing.T) {
	h, svc := setupHandler(t)

	req := withAlias(httptest.NewRequest(http.MethodPut, "/api/links/none", strings.NewReader(`{"url":"a.com"}`)), "none")
	rec := httptest.NewRecorder()
	h.UpdateLink(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	_, err := svc.Get(context.Background(), "none")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateLinkLegacy(t *testing.T) {
	h, svc := setupHandler(t)
	_, err := svc.Create(context.Background(), "gh", "github.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.UpdateLinkLegacy(rec, httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"alias":"gh","url":"gitlab.com"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdateLinkLegacy(rec, httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"url":"gitlab.com"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteLink(t *testing.T) {
	h, svc := setupHandler(t)
	_, err := svc.Create(context.Background(), "gh", "github.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.DeleteLink(rec, withAlias(httptest.NewRequest(http.MethodDelete, "/api/links/gh", nil), "gh"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alias deleted", decodeBody[model.MessageResponse](t, rec).Message)

	rec = httptest.NewRecorder()
	h.DeleteLink(rec, withAlias(httptest.NewRequest(http.MethodDelete, "/api/links/gh", nil), "gh"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkCreate(t *testing.T) {
	h, svc := setupHandler(t)
	_, err := svc.Create(context.Background(), "dup", "old.com")
	require.NoError(t, err)

	body := `{"links":[{"alias":"a","url":"a.com"},{"alias":"dup","url":"new.com"},{"alias":"","url":"c.com"},{"alias":"b","url":"b.com"}]}`
	rec := httptest.NewRecorder()
	h.BulkCreate(rec, httptest.NewRequest(http.MethodPost, "/api/links/bulk", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[model.BulkResult](t, rec)
	assert.Equal(t, model.BulkSummary{Total: 4, Created: 2, Failed: 2}, result.Summary)
	require.Len(t, result.Created, 2)
	assert.Equal(t, "a", result.Created[0].Alias)
	assert.Equal(t, "b", result.Created[1].Alias)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "dup", result.Errors[0].Alias)
	assert.Equal(t, "alias already exists", result.Errors[0].Error)
	assert.Equal(t, "alias and url required", result.Errors[1].Error)
}

func TestBulkCreate_BadBody(t *testing.T) {
	h, _ := setupHandler(t)

	for _, body := range []string{`{"links":`, `{}`, `{"links":null}`} {
		rec := httptest.NewRecorder()
		h.BulkCreate(rec, httptest.NewRequest(http.MethodPost, "/api/links/bulk", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestBulkCreate_Empty(t *testing.T) {
	h, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	h.BulkCreate(rec, httptest.NewRequest(http.MethodPost, "/api/links/bulk", strings.NewReader(`{"links":[]}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[model.BulkResult](t, rec)
	assert.Equal(t, model.BulkSummary{}, result.Summary)
	assert.Empty(t, result.Created)
	assert.Empty(t, result.Errors)
}

func TestStorageUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	table := mocks.NewMockTable(ctrl)
	boom := errors.New("connection refused")
	table.EXPECT().FindAll(gomock.Any()).Return(nil, boom)
	table.EXPECT().UpdateByKey(gomock.Any(), "gh", gomock.Any()).Return(nil, boom)
	table.EXPECT().Ping(gomock.Any()).Return(boom)

	h := handlers.NewHandler(service.NewAliasService(table, zap.NewNop()), zap.NewNop())

	rec := httptest.NewRecorder()
	h.ListLinks(rec, httptest.NewRequest(http.MethodGet, "/api/links", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Storage unavailable", decodeBody[model.ErrorResponse](t, rec).Error)

	rec = httptest.NewRecorder()
	h.Redirect(rec, withAlias(httptest.NewRequest(http.MethodGet, "/gh", nil), "gh"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.PingHandler(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPingHandler(t *testing.T) {
	h, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	h.PingHandler(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, handlers.StatusFor(service.ErrInvalidInput))
	assert.Equal(t, http.StatusConflict, handlers.StatusFor(service.ErrDuplicateAlias))
	assert.Equal(t, http.StatusNotFound, handlers.StatusFor(service.ErrNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, handlers.StatusFor(service.ErrStorageUnavailable))
	assert.Equal(t, http.StatusInternalServerError, handlers.StatusFor(errors.New("other")))
}
