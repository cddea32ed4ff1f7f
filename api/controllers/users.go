package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shieldscan/shield-backend/api/responses"
	"github.com/shieldscan/shield-backend/api/validators"
	"github.com/shieldscan/shield-backend/internal/users"
	"github.com/shieldscan/shield-backend/pkg/enums"
	pkgerrors "github.com/shieldscan/shield-backend/pkg/errors"
	"github.com/shieldscan/shield-backend/pkg/logger"
	"github.com/shieldscan/shield-backend/pkg/pagination"
)

const maxSearchLen = 200

// UsersList returns a filtered, paginated user listing.
func UsersList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		filter := users.ListFilter{
			Role:      strings.TrimSpace(query.Get("role")),
			Namespace: strings.TrimSpace(query.Get("namespace")),
			Status:    strings.TrimSpace(query.Get("status")),
			Search:    validators.SanitizeString(query.Get("search"), maxSearchLen),
			Page:      pagination.Params{Page: page, Limit: limit},
		}

		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// UsersGet returns a single user by ID.
func UsersGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		id, err := userIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

type createUserRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	FullName   string   `json:"fullname" validate:"required,min=2,max=100"`
	Role       string   `json:"role" validate:"required"`
	Namespaces []string `json:"namespaces" validate:"required,min=1"`
}

func (req createUserRequest) toInput() (users.CreateUserDTO, error) {
	role, err := enums.ParseUserRole(req.Role)
	if err != nil {
		return users.CreateUserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	return users.CreateUserDTO{
		Email:      req.Email,
		FullName:   req.FullName,
		Role:       role,
		Namespaces: req.Namespaces,
	}, nil
}

// UsersCreate provisions a new account.
func UsersCreate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var payload createUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user, "User created successfully")
	}
}

type updateUserRequest struct {
	Email           *string   `json:"email,omitempty" validate:"omitempty,email"`
	FullName        *string   `json:"fullname,omitempty" validate:"omitempty,min=2,max=100"`
	Role            *string   `json:"role,omitempty"`
	Namespaces      *[]string `json:"namespaces,omitempty" validate:"omitempty,min=1"`
	Status          *string   `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	MFAEnabled      *bool     `json:"mfaEnabled,omitempty"`
	OktaIntegration *bool     `json:"oktaIntegration,omitempty"`
}

func (req updateUserRequest) toInput() (users.UpdateUserDTO, error) {
	input := users.UpdateUserDTO{
		Email:           req.Email,
		FullName:        req.FullName,
		Namespaces:      req.Namespaces,
		MFAEnabled:      req.MFAEnabled,
		OktaIntegration: req.OktaIntegration,
	}
	if req.Role != nil {
		role, err := enums.ParseUserRole(*req.Role)
		if err != nil {
			return users.UpdateUserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		input.Role = &role
	}
	if req.Status != nil {
		status, err := enums.ParseUserStatus(*req.Status)
		if err != nil {
			return users.UpdateUserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		input.Status = &status
	}
	return input, nil
}

// UsersUpdate applies a partial update to an account.
func UsersUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		id, err := userIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMessage(w, user, "User updated successfully")
	}
}

// UsersDelete removes an account, refusing to drop the last active SysAdmin.
func UsersDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		id, err := userIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessMessage(w, result, "User deleted successfully")
	}
}

// UsersStats returns aggregate account counts.
func UsersStats(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

// UsersRoles returns the role catalog with permission grants.
func UsersRoles(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		roles, err := svc.Roles(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, roles)
	}
}

func userIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "userId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}
