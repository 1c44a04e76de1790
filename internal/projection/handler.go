package projection

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockbook-io/stockbook/internal/platform/httpx"
	"github.com/stockbook-io/stockbook/internal/shared"
)

// Handler exposes per-product stock projections.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers projection routes; mounted alongside the catalog
// routes under /products.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}/stock", h.stock)
}

func (h *Handler) stock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.Validationf("invalid product id"))
		return
	}
	snap, err := h.service.Snapshot(r.Context(), id)
	if err != nil {
		h.logger.Error("stock snapshot", slog.Any("error", err), slog.Int64("product_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}
