package reporting

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/stockbook-io/stockbook/internal/platform/httpx"
	"github.com/stockbook-io/stockbook/internal/projection"
)

// Handler wires HTTP endpoints for reports.
type Handler struct {
	logger  *slog.Logger
	service *Service
	group   singleflight.Group
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventory", h.fullReport)
	r.Get("/inventory.csv", h.fullReportCSV)
	r.Get("/low-stock", h.lowStock)
	r.Get("/summary", h.summary)
}

func (h *Handler) fullReport(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.buildFull(r.Context())
	if err != nil {
		h.logger.Error("full report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snaps)
}

func (h *Handler) fullReportCSV(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.buildFull(r.Context())
	if err != nil {
		h.logger.Error("full report csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	if err := WriteInventoryCSV(w, snaps); err != nil {
		h.logger.Error("write csv", slog.Any("error", err))
	}
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.LowStockReport(r.Context())
	if err != nil {
		h.logger.Error("low stock report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.SummaryReport(r.Context())
	if err != nil {
		h.logger.Error("summary report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// buildFull collapses concurrent identical report builds into one
// computation.
func (h *Handler) buildFull(ctx context.Context) ([]projection.Snapshot, error) {
	resultChan := h.group.DoChan("report:full", func() (any, error) {
		return h.service.FullReport(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]projection.Snapshot), nil
	}
}
