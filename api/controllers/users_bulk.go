package controllers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/shieldscan/shield-backend/api/responses"
	"github.com/shieldscan/shield-backend/api/validators"
	"github.com/shieldscan/shield-backend/internal/users"
	pkgerrors "github.com/shieldscan/shield-backend/pkg/errors"
	"github.com/shieldscan/shield-backend/pkg/logger"
)

type bulkUpdateRequest struct {
	UserIDs []string          `json:"userIds" validate:"required,min=1,dive,uuid"`
	Updates updateUserRequest `json:"updates"`
}

type bulkDeleteRequest struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,dive,uuid"`
}

// UsersBulkUpdate applies one partial update to a batch of accounts.
func UsersBulkUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var payload bulkUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ids, err := parseUserIDs(payload.UserIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.Updates.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkUpdate(r.Context(), ids, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMessage(w, result, fmt.Sprintf("Bulk update completed: %d users updated", result.Updated))
	}
}

// UsersBulkDelete removes a batch of accounts, refusing batches that would
// leave the system without an active SysAdmin.
func UsersBulkDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var payload bulkDeleteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ids, err := parseUserIDs(payload.UserIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkDelete(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMessage(w, result, fmt.Sprintf("Bulk delete completed: %d users deleted", result.Deleted))
	}
}

func parseUserIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id").WithDetails(map[string]any{"userId": value})
		}
		ids = append(ids, id)
	}
	return ids, nil
}
