package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockbook-io/stockbook/internal/platform/httpx"
	"github.com/stockbook-io/stockbook/internal/shared"
)

// Handler wires HTTP endpoints for the ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers ledger routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.post)
	r.Get("/{id}", h.show)
}

type lineForm struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int64   `json:"quantity" validate:"required,gte=1"`
	UnitCost  float64 `json:"unit_cost" validate:"required,gt=0"`
}

type postForm struct {
	OccurredAt time.Time  `json:"occurred_at"`
	Type       string     `json:"type" validate:"required"`
	Reference  string     `json:"reference"`
	Remarks    string     `json:"remarks"`
	CreatedBy  string     `json:"created_by"`
	Lines      []lineForm `json:"lines" validate:"required,dive"`
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	var form postForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, shared.Validationf("invalid request body"))
		return
	}
	if err := h.validate.Struct(form); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			httpx.RespondError(w, shared.Validationf("invalid field %s", fieldErrs[0].Field()))
			return
		}
		httpx.RespondError(w, shared.Validationf("invalid request"))
		return
	}

	input := PostInput{
		OccurredAt:     form.OccurredAt,
		Type:           Type(form.Type),
		Reference:      form.Reference,
		Remarks:        form.Remarks,
		CreatedBy:      form.CreatedBy,
		IdempotencyKey: r.Header.Get("X-Idempotency-Key"),
	}
	for _, line := range form.Lines {
		input.Lines = append(input.Lines, LineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
		})
	}

	tx, err := h.service.Post(r.Context(), input)
	if err != nil {
		h.logger.Warn("post transaction rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		Type:    Type(r.URL.Query().Get("type")),
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 50),
	}
	txs, pagination, err := h.service.List(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       txs,
		"pagination": pagination,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.Validationf("invalid transaction id"))
		return
	}
	tx, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tx)
}
