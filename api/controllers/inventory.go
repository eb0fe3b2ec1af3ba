package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/api/responses"
	"github.com/tillpoint/tillpoint-backend/api/validators"
	inventorysvc "github.com/tillpoint/tillpoint-backend/internal/inventory"
	"github.com/tillpoint/tillpoint-backend/internal/ledger"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/pagination"
)

// AdjustStock applies a manual stock correction and writes its ledger entry.
func AdjustStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actorID, err := actingUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Adjust(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"product": result.Product,
			"entry":   result.Entry,
		})
	}
}

// InventoryHistory lists stock ledger entries, newest first.
func InventoryHistory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseQueryUUID(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := ledger.ListFilter{
			ProductID: productID,
			Reference: strings.TrimSpace(r.URL.Query().Get("reference")),
			Page: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			eventType, parseErr := enums.ParseStockEventType(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid event type"))
				return
			}
			filter.Type = &eventType
		}

		entries, nextCursor, err := svc.History(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"entries":     entries,
			"next_cursor": nextCursor,
		})
	}
}

// LowStock lists active products at or below their reorder threshold.
func LowStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		products, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}

type adjustStockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Direction string    `json:"direction" validate:"required,oneof=add remove"`
	Qty       int       `json:"qty" validate:"required,min=1"`
	EventType string    `json:"event_type" validate:"omitempty"`
	Notes     string    `json:"notes"`
}

func (r adjustStockRequest) toInput(actorID uuid.UUID) (inventorysvc.AdjustStockInput, error) {
	input := inventorysvc.AdjustStockInput{
		ProductID:   r.ProductID,
		Direction:   inventorysvc.Direction(strings.TrimSpace(r.Direction)),
		Qty:         r.Qty,
		Notes:       strings.TrimSpace(r.Notes),
		ActorUserID: actorID,
	}

	if raw := strings.TrimSpace(r.EventType); raw != "" {
		eventType, err := enums.ParseStockEventType(raw)
		if err != nil {
			return inventorysvc.AdjustStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event type")
		}
		input.EventType = eventType
	}

	return input, nil
}
