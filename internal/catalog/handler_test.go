package catalog

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLinker struct{}

func (stubLinker) ProductLink(p Product, size string) string {
	return "https://wa.me/1?text=" + p.Name + "-" + size
}

type stubExporter struct {
	rows int
}

func (e *stubExporter) Products(w io.Writer, products []Product) error {
	e.rows = len(products)
	_, err := w.Write([]byte("xlsx"))
	return err
}

func newTestRouter(t *testing.T) (http.Handler, *stubExporter) {
	t.Helper()
	svc, _ := newTestService(t)
	exporter := &stubExporter{}
	h := NewHandler(nil, svc, stubLinker{}, exporter)
	r := chi.NewRouter()
	r.Route("/api/catalog", h.MountRoutes)
	r.Route("/admin/products", h.MountAdminRoutes)
	return r, exporter
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerListFiltersAndPaginates(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/catalog/products?brand=Nike&per_page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []struct {
			ID         int64 `json:"id"`
			TotalStock int   `json:"totalStock"`
		} `json:"products"`
		HasFilters bool `json:"hasFilters"`
		Pagination struct {
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.HasFilters)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	require.Len(t, resp.Products, 2)
	assert.Equal(t, int64(1), resp.Products[0].ID)
	assert.Equal(t, 22, resp.Products[0].TotalStock)
}

func TestHandlerShowNotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/catalog/products/404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/catalog/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerOrderLink(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/catalog/products/1/order-link?size=42", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nike Air Max 270-42")

	rec = doRequest(t, router, http.MethodGet, "/api/catalog/products/1/order-link?size=47", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/catalog/products/1/order-link", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCreateWithCustomBrand(t *testing.T) {
	router, _ := newTestRouter(t)
	body := `{"name":"Survêtement","price":27000,"images":{"main":"/img/s.png"},"category":"vêtements","customBrand":"Kappa","sizes":[{"size":"M","stock":3}]}`

	rec := doRequest(t, router, http.MethodPost, "/admin/products/", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID    int64 `json:"id"`
		Brand struct {
			Name   string `json:"name"`
			Custom bool   `json:"custom"`
		} `json:"brand"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Kappa", created.Brand.Name)
	assert.True(t, created.Brand.Custom)
	assert.Equal(t, "Actif", created.Status)
}

func TestHandlerCreateValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/admin/products/", `{"name":"","price":0,"sizes":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation Failed")

	rec = doRequest(t, router, http.MethodPost, "/admin/products/", `{"name":"X","price":10,"images":{"main":"m"},"category":"chaussures","brand":"Kappa","sizes":[{"size":"40","stock":1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown brand must be sent as customBrand")
}

func TestHandlerQuickStock(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/admin/products/8/stock", `{"input":"Taille 4*6, oops"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp quickStockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []SizeStock{{"Taille 4", 6}}, resp.Applied)
	assert.Equal(t, []string{"oops"}, resp.Rejected)
	assert.Equal(t, 26, resp.Product.TotalStock)
}

func TestHandlerSetSizeStock(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/admin/products/7/sizes/XXL", `{"stock":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"size":"XXL"`)
}

func TestHandlerDeleteAndExport(t *testing.T) {
	router, exporter := newTestRouter(t)

	rec := doRequest(t, router, http.MethodDelete, "/admin/products/2", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/admin/products/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, exporter.rows)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "produits.xlsx")
}

func TestHandlerMeta(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/catalog/meta?category=ballons", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp metaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, Brands, resp.Brands)
	assert.Equal(t, []string{"Taille 3", "Taille 4", "Taille 5"}, resp.Sizes)
	assert.Len(t, resp.Categories, 4)
}
