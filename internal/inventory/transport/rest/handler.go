// Package rest provides HTTP handlers for inventory operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/abgdnv/stockroom/internal/inventory"
	"github.com/abgdnv/stockroom/internal/inventory/service"
	"github.com/abgdnv/stockroom/internal/platform/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.InventoryService
	validate *validator.Validate
	logger   *slog.Logger
}

// ItemDto is the response shape of one stored item.
type ItemDto struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	Price    PriceJSON `json:"price"`
}

// PriceJSON encodes finite prices as JSON numbers and NaN or infinities as the strings "NaN", "+Inf" and "-Inf".
type PriceJSON float64

func (p PriceJSON) MarshalJSON() ([]byte, error) {
	f := float64(p)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.AppendQuote(nil, strconv.FormatFloat(f, 'g', -1, 64)), nil
	}
	return json.Marshal(f)
}

func toItemDto(item inventory.Item) ItemDto {
	return ItemDto{
		ID:       item.ID,
		Name:     item.Name,
		Quantity: item.Quantity,
		Price:    PriceJSON(item.Price),
	}
}

func toItemDtos(items []inventory.Item) []ItemDto {
	dtos := make([]ItemDto, len(items))
	for i, item := range items {
		dtos[i] = toItemDto(item)
	}
	return dtos
}

// ItemCreateDto is the request body for adding an item.
// Quantity and price are pointers so a missing number fails validation instead of becoming zero.
type ItemCreateDto struct {
	ID       string   `json:"id"       validate:"max=255"`
	Name     string   `json:"name"     validate:"max=255"`
	Quantity *int     `json:"quantity" validate:"required"`
	Price    *float64 `json:"price"    validate:"required"`
}

// ItemUpdateDto is the request body for changing quantity and price.
type ItemUpdateDto struct {
	Quantity *int     `json:"quantity" validate:"required"`
	Price    *float64 `json:"price"    validate:"required"`
}

// ItemUpdatedDto echoes the values written by an update.
type ItemUpdatedDto struct {
	ID       string  `json:"id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// RemovedDto reports how many items a delete removed.
type RemovedDto struct {
	Removed int `json:"removed"`
}

// NewHandler creates a new instance of Handler with the provided service.
func NewHandler(service service.InventoryService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the inventory.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/items", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Post("/", h.AddItem)
		r.Get("/search", h.FindItem)

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", h.UpdateItem)
			r.Delete("/", h.RemoveItem)
		})
	})
	r.Get("/api/v1/reports/low-stock", h.LowStockReport)

	r.Get("/healthz", h.HealthCheck)
}

// ListItems returns all items in insertion order.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list := h.service.ListItems(r.Context())
	mLogger.DebugContext(r.Context(), "Successfully retrieved item list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, toItemDtos(list))
}

// AddItem appends a new item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto ItemCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	item, err := h.service.AddItem(r.Context(), dto.ID, dto.Name, *dto.Quantity, *dto.Price)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Item added but not saved", "ID", item.ID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Item %s added but not saved: %v", item.ID, err))
		return
	}
	mLogger.InfoContext(r.Context(), "Item added successfully", "ID", item.ID, "Name", item.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, toItemDto(item))
}

// UpdateItem changes quantity and price of the first item with the path ID.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")
	var dto ItemUpdateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	found, err := h.service.UpdateItem(r.Context(), id, *dto.Quantity, *dto.Price)
	if !found {
		mLogger.WarnContext(r.Context(), "Item not found for update", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Item with ID %s not found", id))
		return
	}
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Item updated but not saved", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Item %s updated but not saved: %v", id, err))
		return
	}
	mLogger.InfoContext(r.Context(), "Item updated successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, ItemUpdatedDto{ID: id, Quantity: *dto.Quantity, Price: *dto.Price})
}

// RemoveItem removes every item with the path ID.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id := chi.URLParam(r, "id")

	removed, err := h.service.RemoveItem(r.Context(), id)
	if removed == 0 {
		mLogger.WarnContext(r.Context(), "Item not found for removal", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Item with ID %s not found", id))
		return
	}
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Items removed but not saved", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Item %s removed but not saved: %v", id, err))
		return
	}
	mLogger.InfoContext(r.Context(), "Items removed successfully", "ID", id, "count", removed)
	web.RespondJSON(w, mLogger, http.StatusOK, RemovedDto{Removed: removed})
}

// FindItem returns the first item matching the q parameter by ID or name.
func (h *Handler) FindItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	query, ok := web.RequireQuery(w, r, mLogger, "q")
	if !ok {
		return
	}
	item, found := h.service.FindItem(r.Context(), query)
	if !found {
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Item %s not found", query))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toItemDto(item))
}

// LowStockReport returns the items below the threshold parameter or the configured default.
func (h *Handler) LowStockReport(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	threshold, ok := web.ParseOptionalInt(w, r, mLogger, "threshold", h.service.DefaultThreshold())
	if !ok {
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toItemDtos(h.service.LowStockReport(r.Context(), threshold)))
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate reads the JSON body into dst and runs the validator on it.
// It writes the 400 response itself and returns false on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return h.logger.With("request_id", reqID)
}
