package orders

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
	"github.com/sneakerstore/sneakerstore/internal/shared"
)

// Exporter writes an order spreadsheet.
type Exporter interface {
	Orders(w io.Writer, orders []Order) error
}

// Handler exposes order administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	exporter  Exporter
	validator *validator.Validate
}

// NewHandler constructs a Handler. A nil exporter disables the export route.
func NewHandler(logger *slog.Logger, service *Service, exporter Exporter) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, exporter: exporter, validator: validator.New()}
}

// MountRoutes registers admin order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/export", h.export)
	r.Get("/{id}", h.show)
	r.Patch("/{id}/status", h.updateStatus)
}

type listResponse struct {
	Orders     []Order           `json:"orders"`
	Filter     ListFilter        `json:"filter"`
	Statuses   []Status          `json:"statuses"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := FilterFromQuery(r.URL.Query())
	orders, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := shared.NewPagination(page, perPage, len(orders))
	start, end := pagination.Bounds()
	httpx.JSON(w, http.StatusOK, listResponse{
		Orders:     orders[start:end],
		Filter:     filter,
		Statuses:   Statuses,
		Pagination: pagination,
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	order, err := h.service.UpdateStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		h.logger.Warn("update order status", slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "export disabled")
		return
	}
	orders, err := h.service.List(r.Context(), FilterFromQuery(r.URL.Query()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="commandes.xlsx"`)
	if err := h.exporter.Orders(w, orders); err != nil {
		h.logger.Error("export orders", slog.Any("error", err))
	}
}
