package cart

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
	"github.com/sneakerstore/sneakerstore/internal/shared"
)

// IdempotencyHeader carries the client checkout key.
const IdempotencyHeader = "Idempotency-Key"

// Handler exposes the visitor cart over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers cart routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Delete("/", h.clear)
	r.Post("/items", h.add)
	r.Patch("/items", h.update)
	r.Delete("/items", h.remove)
	r.Get("/summary", h.summary)
	r.Post("/checkout", h.checkout)
}

type addRequest struct {
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	Size      string `json:"size" validate:"required"`
}

type updateRequest struct {
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"lte=999"`
}

type removeRequest struct {
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	Size      string `json:"size" validate:"required"`
}

type checkoutRequest struct {
	Name          string `json:"name" validate:"required,max=120"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"required,max=32"`
	Address       string `json:"address" validate:"required,max=300"`
	PaymentMethod string `json:"paymentMethod" validate:"omitempty,max=60"`
	Notes         string `json:"notes" validate:"max=1000"`
}

type cartResponse struct {
	Items     []Line `json:"items"`
	Total     int64  `json:"total"`
	ItemCount int    `json:"itemCount"`
}

func respondCart(w http.ResponseWriter, c *Cart) {
	httpx.JSON(w, http.StatusOK, cartResponse{Items: c.Items, Total: c.Total, ItemCount: c.ItemCount()})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	c, err := h.service.Get(r.Context(), sessionID)
	if err != nil {
		h.fail(w, "load cart", err)
		return
	}
	respondCart(w, c)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req addRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.service.Add(r.Context(), sessionID, req.ProductID, req.Size)
	if err != nil {
		h.fail(w, "add to cart", err)
		return
	}
	respondCart(w, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.service.UpdateQuantity(r.Context(), sessionID, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		h.fail(w, "update cart", err)
		return
	}
	respondCart(w, c)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req removeRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.service.Remove(r.Context(), sessionID, req.ProductID, req.Size)
	if err != nil {
		h.fail(w, "remove from cart", err)
		return
	}
	respondCart(w, c)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.service.Clear(r.Context(), sessionID); err != nil {
		h.fail(w, "clear cart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), sessionID)
	if err != nil {
		h.fail(w, "cart summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req checkoutRequest
	if !h.decode(w, r, &req) {
		return
	}
	customer := Customer{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}
	receipt, err := h.service.Checkout(r.Context(), sessionID, r.Header.Get(IdempotencyHeader), customer, req.PaymentMethod, req.Notes)
	if err != nil {
		h.fail(w, "checkout", err)
		return
	}
	status := http.StatusCreated
	if receipt.Replayed {
		status = http.StatusOK
	}
	httpx.JSON(w, status, receipt)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		httpx.RespondValidation(w, err)
		return false
	}
	return true
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess, err := shared.RequireSession(r.Context())
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "session required")
		return "", false
	}
	return sess.ID, true
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	h.logger.Warn(action, slog.Any("error", err))
	httpx.RespondError(w, err)
}
