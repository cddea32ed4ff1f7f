package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/shieldscan/shield-backend/pkg/db/models"
	"github.com/shieldscan/shield-backend/pkg/enums"
	"github.com/shieldscan/shield-backend/pkg/pagination"
)

// UserDTO is the transport shape of an account.
type UserDTO struct {
	ID              uuid.UUID        `json:"id"`
	Email           string           `json:"email"`
	FullName        string           `json:"fullname"`
	Role            enums.UserRole   `json:"role"`
	Namespaces      []string         `json:"namespaces"`
	CreatedAt       time.Time        `json:"createdAt"`
	LastLogin       *time.Time       `json:"lastLogin"`
	Status          enums.UserStatus `json:"status"`
	MFAEnabled      bool             `json:"mfaEnabled"`
	OktaIntegration bool             `json:"oktaIntegration"`
}

// CreateUserDTO holds the data required to persist a new user.
type CreateUserDTO struct {
	Email      string
	FullName   string
	Role       enums.UserRole
	Namespaces []string
}

// UpdateUserDTO carries a partial update. Nil fields are left untouched.
type UpdateUserDTO struct {
	Email           *string
	FullName        *string
	Role            *enums.UserRole
	Namespaces      *[]string
	Status          *enums.UserStatus
	MFAEnabled      *bool
	OktaIntegration *bool
}

// IsEmpty reports whether the update carries no fields at all.
func (u UpdateUserDTO) IsEmpty() bool {
	return u.Email == nil && u.FullName == nil && u.Role == nil &&
		u.Namespaces == nil && u.Status == nil && u.MFAEnabled == nil &&
		u.OktaIntegration == nil
}

// ListFilter narrows the user listing. The literal "all" disables a filter,
// same as leaving it empty.
type ListFilter struct {
	Role      string
	Namespace string
	Status    string
	Search    string
	Page      pagination.Params
}

// UserListDTO is the paginated listing payload.
type UserListDTO struct {
	Users      []UserDTO       `json:"users"`
	Pagination pagination.Page `json:"pagination"`
}

// StatsDTO aggregates account counts.
type StatsDTO struct {
	Total    int64            `json:"total"`
	Active   int64            `json:"active"`
	Inactive int64            `json:"inactive"`
	ByRole   map[string]int64 `json:"byRole"`
}

// RoleDTO describes a role and its permission grants.
type RoleDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// ActivityEntryDTO is a single audit trail record.
type ActivityEntryDTO struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// DeleteResultDTO acknowledges a single-user deletion.
type DeleteResultDTO struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

// BulkUpdateResultDTO reports how many users a bulk update touched.
type BulkUpdateResultDTO struct {
	Updated   int64 `json:"updated"`
	Requested int   `json:"requested"`
}

// BulkDeleteResultDTO reports how many users a bulk delete removed.
type BulkDeleteResultDTO struct {
	Deleted   int64 `json:"deleted"`
	Requested int   `json:"requested"`
}

// PasswordResetResultDTO is returned for every reset request, whether or not
// the address belongs to a known account.
type PasswordResetResultDTO struct {
	Status string `json:"status"`
	Email  string `json:"email"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		Role:            u.Role,
		Namespaces:      append([]string(nil), []string(u.Namespaces)...),
		CreatedAt:       u.CreatedAt,
		LastLogin:       u.LastLoginAt,
		Status:          u.Status,
		MFAEnabled:      u.MFAEnabled,
		OktaIntegration: u.OktaIntegration,
	}
}

func FromModels(rows []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
