package settings

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
)

// Handler exposes settings administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Put("/", h.save)
	r.Get("/goals/{year}", h.goals)
	r.Put("/goals/{year}", h.saveGoals)
}

type settingsRequest struct {
	StoreName          string `json:"storeName" validate:"required,max=120"`
	StoreDescription   string `json:"storeDescription" validate:"max=500"`
	StoreEmail         string `json:"storeEmail" validate:"omitempty,email"`
	StorePhone         string `json:"storePhone" validate:"max=32"`
	StoreAddress       string `json:"storeAddress" validate:"max=300"`
	Currency           string `json:"currency" validate:"required"`
	Language           string `json:"language" validate:"required"`
	EmailNotifications bool   `json:"emailNotifications"`
	SMSNotifications   bool   `json:"smsNotifications"`
	OrderNotifications bool   `json:"orderNotifications"`
	LowStockAlerts     bool   `json:"lowStockAlerts"`
	MaintenanceMode    bool   `json:"maintenanceMode"`
	AllowRegistration  bool   `json:"allowRegistration"`
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Settings(r.Context())
	if err != nil {
		h.logger.Error("load settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	record, err := h.service.SaveSettings(r.Context(), StoreSettings(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

type goalsRequest struct {
	Targets map[string]int64 `json:"targets" validate:"required"`
}

func (h *Handler) goals(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	goals, err := h.service.Goals(r.Context(), year)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, goals)
}

func (h *Handler) saveGoals(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req goalsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondValidation(w, err)
		return
	}
	goals, err := h.service.SaveGoals(r.Context(), year, req.Targets)
	if err != nil {
		h.logger.Warn("save goals", slog.Int("year", year), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, goals)
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid year", httpx.ErrValidation))
		return 0, false
	}
	return year, true
}
