package catalog

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
	"github.com/sneakerstore/sneakerstore/internal/shared"
)

// OrderLinker builds the single product "order now" deep link.
type OrderLinker interface {
	ProductLink(p Product, size string) string
}

// Exporter writes a product spreadsheet.
type Exporter interface {
	Products(w io.Writer, products []Product) error
}

// Handler exposes catalog endpoints for the storefront and the back-office.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	linker    OrderLinker
	exporter  Exporter
	validator *validator.Validate
}

// NewHandler constructs a Handler. linker and exporter may be nil, which
// disables the matching endpoints.
func NewHandler(logger *slog.Logger, service *Service, linker OrderLinker, exporter Exporter) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		linker:    linker,
		exporter:  exporter,
		validator: validator.New(),
	}
}

// MountRoutes registers the public storefront routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/meta", h.meta)
	r.Get("/products", h.listVisible)
	r.Get("/products/{id}", h.show)
	r.Get("/products/{id}/order-link", h.orderLink)
}

// MountAdminRoutes registers product management routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/export", h.export)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/stock", h.quickStock)
	r.Put("/{id}/sizes/{size}", h.setSizeStock)
}

type categoryMeta struct {
	Value Category `json:"value"`
	Sizes []string `json:"sizes"`
}

type metaResponse struct {
	Categories []categoryMeta `json:"categories"`
	Brands     []string       `json:"brands"`
	Statuses   []Status       `json:"statuses"`
	Sizes      []string       `json:"sizes"`
	UniqueSize string         `json:"uniqueSize"`
}

func (h *Handler) meta(w http.ResponseWriter, r *http.Request) {
	resp := metaResponse{
		Brands:     Brands,
		Statuses:   Statuses,
		Sizes:      AvailableSizes(r.URL.Query().Get("category")),
		UniqueSize: UniqueSize,
	}
	for _, c := range Categories {
		resp.Categories = append(resp.Categories, categoryMeta{Value: c, Sizes: SizesFor(c)})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type productView struct {
	Product
	TotalStock int `json:"totalStock"`
}

func viewOf(p Product) productView {
	return productView{Product: p, TotalStock: p.TotalStock()}
}

func viewsOf(products []Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, viewOf(p))
	}
	return out
}

type listResponse struct {
	Products   []productView     `json:"products"`
	Filters    SearchFilters     `json:"filters"`
	HasFilters bool              `json:"hasFilters"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) listVisible(w http.ResponseWriter, r *http.Request) {
	filters := FiltersFromQuery(r.URL.Query())
	products, err := h.service.ListVisible(r.Context(), filters)
	if err != nil {
		h.logger.Error("list storefront products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.respondList(w, r, filters, products)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := FiltersFromQuery(r.URL.Query())
	products, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.respondList(w, r, filters, products)
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, filters SearchFilters, products []Product) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := shared.NewPagination(page, perPage, len(products))
	start, end := pagination.Bounds()
	httpx.JSON(w, http.StatusOK, listResponse{
		Products:   viewsOf(products[start:end]),
		Filters:    filters,
		HasFilters: filters.HasActive(),
		Pagination: pagination,
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(product))
}

func (h *Handler) orderLink(w http.ResponseWriter, r *http.Request) {
	if h.linker == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "ordering disabled")
		return
	}
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	size := r.URL.Query().Get("size")
	if size == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "size is required")
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !product.HasSize(size) {
		httpx.RespondError(w, fmt.Errorf("%w: size %s not offered", httpx.ErrValidation, size))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": h.linker.ProductLink(product, size)})
}

type imagesRequest struct {
	Main      string   `json:"main" validate:"required"`
	Secondary []string `json:"secondary" validate:"max=2"`
}

type sizeRequest struct {
	Size  string `json:"size" validate:"required"`
	Stock int    `json:"stock" validate:"gte=0"`
}

type productRequest struct {
	Name        string        `json:"name" validate:"required,max=200"`
	Price       int64         `json:"price" validate:"gt=0"`
	Images      imagesRequest `json:"images"`
	Category    string        `json:"category" validate:"required"`
	Brand       string        `json:"brand" validate:"required_without=CustomBrand"`
	CustomBrand string        `json:"customBrand"`
	Description string        `json:"description"`
	Sizes       []sizeRequest `json:"sizes" validate:"required,min=1,dive"`
	Status      string        `json:"status"`
}

func (req productRequest) input() (ProductInput, error) {
	var (
		brand Brand
		err   error
	)
	if req.CustomBrand != "" {
		brand, err = CustomBrand(req.CustomBrand)
	} else {
		brand, err = KnownBrand(req.Brand)
	}
	if err != nil {
		return ProductInput{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	sizes := make([]SizeStock, 0, len(req.Sizes))
	for _, s := range req.Sizes {
		sizes = append(sizes, SizeStock{Size: s.Size, Stock: s.Stock})
	}
	return ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Images:      Images{Main: req.Images.Main, Secondary: req.Images.Secondary},
		Category:    Category(req.Category),
		Brand:       brand,
		Description: req.Description,
		Sizes:       sizes,
		Status:      Status(req.Status),
	}, nil
}

func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request) (ProductInput, bool) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return ProductInput{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return ProductInput{}, false
	}
	input, err := req.input()
	if err != nil {
		httpx.RespondError(w, err)
		return ProductInput{}, false
	}
	return input, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Warn("create product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, viewOf(product))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.logger.Warn("update product", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(product))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type quickStockRequest struct {
	Input string `json:"input" validate:"required"`
}

type quickStockResponse struct {
	Product  productView `json:"product"`
	Applied  []SizeStock `json:"applied"`
	Rejected []string    `json:"rejected"`
}

func (h *Handler) quickStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var req quickStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	product, result, err := h.service.ApplyQuickStock(r.Context(), id, req.Input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quickStockResponse{Product: viewOf(product), Applied: result.Entries, Rejected: result.Rejected})
}

type sizeStockRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

func (h *Handler) setSizeStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var req sizeStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	product, err := h.service.SetSizeStock(r.Context(), id, chi.URLParam(r, "size"), req.Stock)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(product))
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "export disabled")
		return
	}
	products, err := h.service.List(r.Context(), FiltersFromQuery(r.URL.Query()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="produits.xlsx"`)
	if err := h.exporter.Products(w, products); err != nil {
		h.logger.Error("export products", slog.Any("error", err))
	}
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, fmt.Errorf("%w: invalid product id", httpx.ErrValidation))
		return 0, false
	}
	return id, true
}
