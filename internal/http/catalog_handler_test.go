package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fjod/go_cart/cartsync/internal/domain"
	"github.com/fjod/go_cart/cartsync/internal/inventory"
	"github.com/fjod/go_cart/cartsync/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *inventory.MemoryStore, *prometheus.Registry) {
	inv := inventory.NewMemoryStore()
	inv.SetProduct(domain.Product{ID: 1, Title: "Shoe", Price: 100, ImageURL: "shoe.jpg"})
	inv.SetProduct(domain.Product{ID: 2, Title: "Sock", Price: 10})
	require.NoError(t, inv.SetStock(1, 3))

	reg := prometheus.NewRegistry()
	srv := httptest.NewServer(NewRouter(RouterConfig{
		Inventory: inv,
		Log:       logger.Discard(),
		Registry:  reg,
	}))
	t.Cleanup(srv.Close)
	return srv, inv, reg
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGetProduct_Success(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/products/1")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	product := decode[domain.Product](t, resp)
	assert.Equal(t, domain.Product{ID: 1, Title: "Shoe", Price: 100, ImageURL: "shoe.jpg"}, product)
}

func TestGetProduct_Errors(t *testing.T) {
	srv, _, _ := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{name: "unknown product", path: "/products/99", wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "non numeric id", path: "/products/abc", wantStatus: http.StatusBadRequest, wantCode: "invalid_product_id"},
		{name: "negative id", path: "/products/-1", wantStatus: http.StatusBadRequest, wantCode: "invalid_product_id"},
		{name: "unknown stock", path: "/stock/99", wantStatus: http.StatusNotFound, wantCode: "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode[ErrorResponse](t, resp)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestListProducts(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/products")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	products := decode[[]domain.Product](t, resp)
	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int64(2), products[1].ID)
}

func TestGetStock(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/stock/1")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.Stock{ProductID: 1, Amount: 3}, decode[domain.Stock](t, resp))
}

func TestSetStock(t *testing.T) {
	srv, inv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/stock/2", strings.NewReader(`{"amount": 7}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.Stock{ProductID: 2, Amount: 7}, decode[domain.Stock](t, resp))

	stock, err := inv.GetStock(2)
	require.NoError(t, err)
	assert.Equal(t, 7, stock.Amount)
}

func TestSetStock_InvalidBody(t *testing.T) {
	srv, _, _ := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode string
	}{
		{name: "not json", path: "/stock/1", body: `amount=3`, wantCode: "invalid_request"},
		{name: "missing amount", path: "/stock/1", body: `{}`, wantCode: "invalid_request"},
		{name: "negative amount", path: "/stock/1", body: `{"amount": -2}`, wantCode: "invalid_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPut, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, resp).Code)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _, reg := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))

	resp, err = http.Get(srv.URL + "/products/99")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 1.0, requestCount(t, reg, "/products/{id}", "404"))
}

func requestCount(t *testing.T, reg *prometheus.Registry, route, status string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "cartsync_catalog_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["handler"] == route && labels["status"] == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestCatalogHandler_Direct(t *testing.T) {
	handler := NewCatalogHandler(inventory.NewSeededStore(), logger.Discard())
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/products", nil)

	handler.ListProducts(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	var products []domain.Product
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&products))
	assert.NotEmpty(t, products)
}
