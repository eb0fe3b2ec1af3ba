package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tillpoint/tillpoint-backend/api/middleware"
	"github.com/tillpoint/tillpoint-backend/api/responses"
	"github.com/tillpoint/tillpoint-backend/api/validators"
	salesvc "github.com/tillpoint/tillpoint-backend/internal/sales"
	"github.com/tillpoint/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
	"github.com/tillpoint/tillpoint-backend/pkg/pagination"
)

// CreateSale records a completed or held sale for the authenticated cashier.
func CreateSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		cashierID, err := actingUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(cashierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// ListSales returns a cursor page of sales, newest first.
func ListSales(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cashierID, err := validators.ParseQueryUUID(r, "cashier_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := salesvc.ListSalesInput{
			CashierID: cashierID,
			Page: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseSaleStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			input.Status = &status
		}

		input.From, err = parseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.To, err = parseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, nextCursor, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"sales":       records,
			"next_cursor": nextCursor,
		})
	}
}

// SaleDetail returns one sale with its line items and payments.
func SaleDetail(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		saleID, err := saleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Get(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

// RefundSale reverses a completed sale and restores its stock.
func RefundSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		actorID, err := actingUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saleID, err := saleIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload refundSaleRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		sale, err := svc.Refund(r.Context(), salesvc.RefundSaleInput{
			SaleID:      saleID,
			ActorUserID: actorID,
			Reason:      strings.TrimSpace(payload.Reason),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"message": "sale refunded",
			"sale":    sale,
		})
	}
}

type createSaleRequest struct {
	Items         []saleItemPayload    `json:"items" validate:"required,min=1,dive"`
	CustomerID    *uuid.UUID           `json:"customer_id,omitempty"`
	DiscountCents int                  `json:"discount_cents" validate:"omitempty,min=0"`
	TaxCents      int                  `json:"tax_cents" validate:"omitempty,min=0"`
	Payments      []salePaymentPayload `json:"payments" validate:"omitempty,dive"`
	Notes         string               `json:"notes"`
	IsHold        bool                 `json:"is_hold"`
}

type saleItemPayload struct {
	ProductID     uuid.UUID `json:"product_id" validate:"required"`
	Qty           int       `json:"qty" validate:"required,min=1"`
	DiscountCents int       `json:"discount_cents" validate:"omitempty,min=0"`
}

type salePaymentPayload struct {
	Method      string `json:"method" validate:"required"`
	AmountCents int    `json:"amount_cents" validate:"required,min=1"`
	Details     string `json:"details"`
}

type refundSaleRequest struct {
	Reason string `json:"reason"`
}

func (r createSaleRequest) toInput(cashierID uuid.UUID) (salesvc.CreateSaleInput, error) {
	items := make([]salesvc.LineItemInput, len(r.Items))
	for i, payload := range r.Items {
		items[i] = salesvc.LineItemInput{
			ProductID:     payload.ProductID,
			Qty:           payload.Qty,
			DiscountCents: payload.DiscountCents,
		}
	}

	payments := make([]salesvc.PaymentInput, 0, len(r.Payments))
	for _, payload := range r.Payments {
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.Method))
		if err != nil {
			return salesvc.CreateSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		payments = append(payments, salesvc.PaymentInput{
			Method:      method,
			AmountCents: payload.AmountCents,
			Details:     strings.TrimSpace(payload.Details),
		})
	}

	return salesvc.CreateSaleInput{
		Items:         items,
		CustomerID:    r.CustomerID,
		DiscountCents: r.DiscountCents,
		TaxCents:      r.TaxCents,
		Payments:      payments,
		Notes:         strings.TrimSpace(r.Notes),
		IsHold:        r.IsHold,
		CashierID:     cashierID,
	}, nil
}

func actingUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return userID, nil
}

func parseQueryTime(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s timestamp", key))
	}
	return &parsed, nil
}

func saleIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "saleID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "sale id required")
	}
	saleID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale id")
	}
	return saleID, nil
}
