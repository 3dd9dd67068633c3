package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopcart-service/internal/model"
	"shopcart-service/pkg/config"
	"shopcart-service/pkg/database"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gucciItem   = `{"sku":"ID111","name":"test_item","brand_name":"gucci","price":2.00,"count":3,"is_available":true,"link":"test.com"}`
	nikeItem    = `{"sku":"ID222","name":"some_item","brand_name":"nike","price":10.00,"count":5,"is_available":false,"link":"link.com"}`
	chanelItem  = `{"sku":"ID333","name":"test_item","brand_name":"chanel","price":20.50,"count":1,"is_available":true,"link":"chanel.com"}`
	updatedItem = `{"sku":"ID222","name":"renamed_item","brand_name":"nike","price":12.00,"count":7,"is_available":true,"link":"link.com"}`
)

type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		ServiceName: "shopcart-service",
		Server:      config.ServerConfig{Port: "8080", Env: "test", BodyLimit: "1M"},
		Metrics:     config.MetricsConfig{Prefix: "shopcart"},
	}
	db := database.NewTestDB(t, &model.Item{})

	return &testServer{t: t, e: New(cfg, db, prometheus.NewRegistry())}
}

func (s *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) postJSON(target, body string) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, target, body, echo.HeaderContentType, echo.MIMEApplicationJSON)
}

func (s *testServer) putJSON(target, body string) *httptest.ResponseRecorder {
	return s.do(http.MethodPut, target, body, echo.HeaderContentType, echo.MIMEApplicationJSON)
}

func (s *testServer) create(body string) model.ItemResponse {
	s.t.Helper()

	rec := s.postJSON("/shopcarts/items", body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeItem(s.t, rec)
}

func (s *testServer) list(query string) []model.ItemResponse {
	s.t.Helper()

	rec := s.do(http.MethodGet, "/shopcarts/items"+query, "")
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var items []model.ItemResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &items))
	return items
}

func decodeItem(t *testing.T, rec *httptest.ResponseRecorder) model.ItemResponse {
	t.Helper()
	var item model.ItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	return item
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func brands(items []model.ItemResponse) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.BrandName)
	}
	return out
}

func TestIndex(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/shopcarts"} {
		rec := s.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Shopcarts REST API Service")
	}
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/static/js/rest_api.js", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/shopcarts")
}

func TestAPISpec(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/v1/spec", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "2.0", body["swagger"])
	assert.Equal(t, "/shopcarts", body["basePath"])
	assert.Contains(t, body["paths"], "/items/{id}")
}

func TestCreateItem(t *testing.T) {
	s := newTestServer(t)

	rec := s.postJSON("/shopcarts/items", gucciItem)

	require.Equal(t, http.StatusCreated, rec.Code)
	item := decodeItem(t, rec)
	require.NotNil(t, item.ID)
	assert.Positive(t, *item.ID)
	assert.Equal(t, "ID111", item.SKU)
	assert.Equal(t, 2.0, item.Price)
	assert.Equal(t, fmt.Sprintf("http://example.com/shopcarts/items/%d", *item.ID), rec.Header().Get(echo.HeaderLocation))

	location := s.do(http.MethodGet, strings.TrimPrefix(rec.Header().Get(echo.HeaderLocation), "http://example.com"), "")
	require.Equal(t, http.StatusOK, location.Code)
	assert.Equal(t, item, decodeItem(t, location))
}

func TestCreateItemMissingFields(t *testing.T) {
	s := newTestServer(t)

	rec := s.postJSON("/shopcarts/items", `{"sku": "ID555"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, http.StatusBadRequest, body["status"])
	assert.Equal(t, "Bad Request", body["error"])
	assert.Contains(t, body["message"], "name is missing")
	assert.Empty(t, s.list(""))
}

func TestCreateItemBadBody(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{"", "null", "[1,2]", "{not json"} {
		rec := s.postJSON("/shopcarts/items", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestCreateItemMediaType(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/shopcarts/items", gucciItem)
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "Unsupported media type", decodeBody(t, rec)["error"])

	rec = s.do(http.MethodPost, "/shopcarts/items", gucciItem, echo.HeaderContentType, echo.MIMETextPlain)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = s.do(http.MethodPost, "/shopcarts/items", gucciItem, echo.HeaderContentType, "application/json; charset=utf-8")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateItemBodyTooLarge(t *testing.T) {
	s := newTestServer(t)

	big := `{"sku":"` + strings.Repeat("x", 2<<20) + `"}`
	rec := s.postJSON("/shopcarts/items", big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGetItemNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/shopcarts/items/0", "/shopcarts/items/42", "/shopcarts/items/abc"} {
		rec := s.do(http.MethodGet, path, "")
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Not Found", decodeBody(t, rec)["error"])
	}
}

func TestListItemsEmpty(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/shopcarts/items", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListItemsFilters(t *testing.T) {
	s := newTestServer(t)
	s.create(gucciItem)
	s.create(nikeItem)
	s.create(chanelItem)

	assert.Len(t, s.list(""), 3)
	assert.Equal(t, []string{"gucci"}, brands(s.list("?brand_name=gucci")))
	assert.Equal(t, []string{"nike"}, brands(s.list("?sku=ID222")))
	assert.Equal(t, []string{"gucci", "chanel"}, brands(s.list("?name=test_item")))
	assert.Equal(t, []string{"gucci", "nike"}, brands(s.list("?price=10")))
	assert.Equal(t, []string{"gucci", "chanel"}, brands(s.list("?is_available=true")))
	assert.Equal(t, []string{"nike"}, brands(s.list("?is_available=false")))
	assert.Empty(t, s.list("?sku=NOPE"))

	// sku outranks every other filter
	assert.Equal(t, []string{"gucci"}, brands(s.list("?sku=ID111&brand_name=nike&price=0")))
	// price outranks is_available and brand_name
	assert.Equal(t, []string{"gucci"}, brands(s.list("?brand_name=chanel&is_available=true&price=5")))
}

func TestListItemsInvalidFilter(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/shopcarts/items?price=cheap", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/shopcarts/items?is_available=perhaps", "").Code)
}

func TestUpdateItem(t *testing.T) {
	s := newTestServer(t)
	created := s.create(nikeItem)
	path := fmt.Sprintf("/shopcarts/items/%d", *created.ID)

	rec := s.putJSON(path, updatedItem)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeItem(t, rec)
	assert.Equal(t, *created.ID, *updated.ID)
	assert.Equal(t, "renamed_item", updated.Name)
	assert.Equal(t, 7, updated.Count)

	fetched := decodeItem(t, s.do(http.MethodGet, path, ""))
	assert.Equal(t, updated, fetched)
	assert.Len(t, s.list(""), 1)
}

func TestUpdateItemIgnoresBodyID(t *testing.T) {
	s := newTestServer(t)
	created := s.create(nikeItem)
	path := fmt.Sprintf("/shopcarts/items/%d", *created.ID)

	body := strings.Replace(updatedItem, "{", `{"id": 999,`, 1)
	rec := s.putJSON(path, body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, *created.ID, *decodeItem(t, rec).ID)
}

func TestUpdateItemNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.putJSON("/shopcarts/items/0", `{"name": "jbkjb", "sku": "ID999"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateItemPartialBody(t *testing.T) {
	s := newTestServer(t)
	created := s.create(nikeItem)
	path := fmt.Sprintf("/shopcarts/items/%d", *created.ID)

	rec := s.putJSON(path, `{"name": "jbkjb", "sku": "ID999"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, created, decodeItem(t, s.do(http.MethodGet, path, "")))
}

func TestUpdateItemMediaType(t *testing.T) {
	s := newTestServer(t)
	created := s.create(nikeItem)

	rec := s.do(http.MethodPut, fmt.Sprintf("/shopcarts/items/%d", *created.ID), updatedItem)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestDeleteItem(t *testing.T) {
	s := newTestServer(t)
	created := s.create(gucciItem)
	path := fmt.Sprintf("/shopcarts/items/%d", *created.ID)

	rec := s.do(http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path, "").Code)
}

func TestDeleteMissingItem(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodDelete, "/shopcarts/items/12345", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClearItems(t *testing.T) {
	s := newTestServer(t)
	s.create(gucciItem)
	s.create(nikeItem)

	rec := s.do(http.MethodDelete, "/shopcarts/clear", "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.list(""))
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/shopcarts/clear", "").Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := s.postJSON("/shopcarts/items/1", gucciItem)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, http.StatusMethodNotAllowed, body["status"])
	assert.Equal(t, "Method not Allowed", body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/nowhere", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeBody(t, rec)["error"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = s.do(http.MethodGet, "/health?check=db", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["db_status"])
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/shopcarts/items", "", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/shopcarts/items", "")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.create(gucciItem)
	s.list("?brand_name=gucci")

	rec := s.do(http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `shopcart_item_operations_total{operation="create"} 1`)
	assert.Contains(t, body, "shopcart_db_operation_duration_seconds")
}

func TestNewHidesStartupBanner(t *testing.T) {
	s := newTestServer(t)

	assert.True(t, s.e.HideBanner)
	assert.True(t, s.e.HidePort)
}
