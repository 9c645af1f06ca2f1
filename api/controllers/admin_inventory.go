package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nakawin/casino-backend/api/responses"
	"github.com/nakawin/casino-backend/api/validators"
	inventorysvc "github.com/nakawin/casino-backend/internal/inventory"
	pkgerrors "github.com/nakawin/casino-backend/pkg/errors"
	"github.com/nakawin/casino-backend/pkg/logger"
)

type grantItemRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Name   string    `json:"name" validate:"required"`
	Image  string    `json:"image,omitempty"`
	Value  int64     `json:"value" validate:"required,min=1"`
}

// AdminPendingWithdrawals lists items awaiting fulfilment, oldest first.
func AdminPendingWithdrawals(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.PendingWithdrawals(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]inventoryItemDTO, 0, len(items))
		for i := range items {
			dtos = append(dtos, *inventoryItemFromModel(&items[i]))
		}
		responses.WriteSuccess(w, dtos)
	}
}

// AdminCompleteWithdrawal marks a requested withdrawal as delivered.
func AdminCompleteWithdrawal(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		adminID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		item, err := svc.CompleteWithdrawal(r.Context(), adminID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inventoryItemFromModel(item))
	}
}

// AdminGrantItem hands a player an item outside the draw flow.
func AdminGrantItem(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		adminID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body grantItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Grant(r.Context(), inventorysvc.GrantInput{
			UserID:  body.UserID,
			Name:    validators.SanitizeString(body.Name, 128),
			Image:   validators.SanitizeString(body.Image, 512),
			Value:   body.Value,
			AdminID: adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, inventoryItemFromModel(item))
	}
}
