package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shieldscan/shield-backend/pkg/access"
	"github.com/shieldscan/shield-backend/pkg/db"
	"github.com/shieldscan/shield-backend/pkg/db/models"
	"github.com/shieldscan/shield-backend/pkg/enums"
	pkgerrors "github.com/shieldscan/shield-backend/pkg/errors"
	"github.com/shieldscan/shield-backend/pkg/pagination"
)

const (
	fullNameMinLen = 2
	fullNameMaxLen = 100

	emailUniqueIndex = "idx_users_email"
)

type userRepository interface {
	List(ctx context.Context, filter ListFilter) ([]models.User, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, dto UpdateUserDTO) (*models.User, error)
	DeleteWithAdminGuard(ctx context.Context, id uuid.UUID) (bool, error)
	DeactivateWithAdminGuard(ctx context.Context, id uuid.UUID) (bool, error)
	BulkUpdate(ctx context.Context, ids []uuid.UUID, dto UpdateUserDTO) (int64, error)
	BulkDeleteWithAdminGuard(ctx context.Context, ids []uuid.UUID) (int64, error)
	CountActiveSysAdminsExcluding(ctx context.Context, ids []uuid.UUID) (int64, error)
	EmailExists(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	Stats(ctx context.Context) (*StatsDTO, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

// Service exposes user management operations.
type Service interface {
	List(ctx context.Context, filter ListFilter) (*UserListDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Create(ctx context.Context, input CreateUserDTO) (*UserDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateUserDTO) (*UserDTO, error)
	Delete(ctx context.Context, id uuid.UUID) (*DeleteResultDTO, error)
	Activate(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpdateNamespaces(ctx context.Context, id uuid.UUID, namespaces []string) (*UserDTO, error)
	BulkUpdate(ctx context.Context, ids []uuid.UUID, input UpdateUserDTO) (*BulkUpdateResultDTO, error)
	BulkDelete(ctx context.Context, ids []uuid.UUID) (*BulkDeleteResultDTO, error)
	Stats(ctx context.Context) (*StatsDTO, error)
	Roles(ctx context.Context) ([]RoleDTO, error)
	Activity(ctx context.Context, id uuid.UUID, limit int) ([]ActivityEntryDTO, error)
	RequestPasswordReset(ctx context.Context, email string) (*PasswordResetResultDTO, error)
	RecordLogin(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo userRepository
}

// NewService builds a users service with the provided repository.
func NewService(repo userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*UserListDTO, error) {
	filter.Page = pagination.Normalize(filter.Page)

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	return &UserListDTO{
		Users:      FromModels(rows),
		Pagination: pagination.NewPage(filter.Page, total),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Create(ctx context.Context, input CreateUserDTO) (*UserDTO, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)

	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := validateFullName(input.FullName); err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be one of: SysAdmin, ClusterAdmin, Developer")
	}
	if err := access.Validate(input.Namespaces); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, input.Email, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Email address already in use")
	}

	user, err := s.repo.Create(ctx, input)
	if err != nil {
		if db.IsUniqueViolation(err, emailUniqueIndex) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Email address already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateUserDTO) (*UserDTO, error) {
	existing, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateUpdate(&input); err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != existing.Email {
		exists, err := s.repo.EmailExists(ctx, *input.Email, &id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
		if exists {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Email address already in use")
		}
	}

	user, err := s.repo.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		if db.IsUniqueViolation(err, emailUniqueIndex) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Email address already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (*DeleteResultDTO, error) {
	user, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteWithAdminGuard(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if !deleted {
		if user.Role == enums.UserRoleSysAdmin && user.Status == enums.UserStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete the last active system administrator")
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}

	return &DeleteResultDTO{ID: id, Status: "deleted"}, nil
}

func (s *service) Activate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	status := enums.UserStatusActive
	user, err := s.repo.Update(ctx, id, UpdateUserDTO{Status: &status})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate user")
	}
	return FromModel(user), nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.DeactivateWithAdminGuard(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate user")
	}
	if !ok {
		if user.Role == enums.UserRoleSysAdmin && user.Status == enums.UserStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Cannot deactivate the last active system administrator")
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}

	return s.Get(ctx, id)
}

func (s *service) UpdateNamespaces(ctx context.Context, id uuid.UUID, namespaces []string) (*UserDTO, error) {
	if err := access.Validate(namespaces); err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, id, UpdateUserDTO{Namespaces: &namespaces})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update namespaces")
	}
	return FromModel(user), nil
}

func (s *service) BulkUpdate(ctx context.Context, ids []uuid.UUID, input UpdateUserDTO) (*BulkUpdateResultDTO, error) {
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userIds must not be empty")
	}
	if input.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No update data provided")
	}
	if err := validateUpdate(&input); err != nil {
		return nil, err
	}

	updated, err := s.repo.BulkUpdate(ctx, ids, input)
	if err != nil {
		if db.IsUniqueViolation(err, emailUniqueIndex) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Email address already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk update users")
	}

	return &BulkUpdateResultDTO{Updated: updated, Requested: len(ids)}, nil
}

func (s *service) BulkDelete(ctx context.Context, ids []uuid.UUID) (*BulkDeleteResultDTO, error) {
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userIds must not be empty")
	}

	survivors, err := s.repo.CountActiveSysAdminsExcluding(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count surviving sysadmins")
	}
	if survivors < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Cannot delete all system administrators. At least one must remain active.")
	}

	deleted, err := s.repo.BulkDeleteWithAdminGuard(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk delete users")
	}

	return &BulkDeleteResultDTO{Deleted: deleted, Requested: len(ids)}, nil
}

func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user stats")
	}
	return stats, nil
}

func (s *service) Roles(ctx context.Context) ([]RoleDTO, error) {
	return Roles(), nil
}

func (s *service) Activity(ctx context.Context, id uuid.UUID, limit int) ([]ActivityEntryDTO, error) {
	user, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	// Dedicated audit log storage is not online yet. Surface account creation
	// as the only activity entry so the endpoint shape is stable.
	entries := []ActivityEntryDTO{
		{
			Timestamp: user.CreatedAt,
			Action:    "user_created",
			Details:   fmt.Sprintf("User %s was created", user.FullName),
		},
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// RequestPasswordReset always reports success so callers cannot probe which
// addresses have accounts.
func (s *service) RequestPasswordReset(ctx context.Context, email string) (*PasswordResetResultDTO, error) {
	email = strings.TrimSpace(email)

	// Lookup outcome is intentionally discarded. Delivery would be triggered
	// here for known accounts once a mail provider is wired up.
	_, _ = s.repo.FindByEmail(ctx, email)

	return &PasswordResetResultDTO{Status: "sent", Email: email}, nil
}

func (s *service) RecordLogin(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.UpdateLastLogin(ctx, id, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	return nil
}

func (s *service) fetch(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func validateUpdate(input *UpdateUserDTO) error {
	if input.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := validateEmail(normalized); err != nil {
			return err
		}
		input.Email = &normalized
	}
	if input.FullName != nil {
		trimmed := strings.TrimSpace(*input.FullName)
		if err := validateFullName(trimmed); err != nil {
			return err
		}
		input.FullName = &trimmed
	}
	if input.Role != nil && !input.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "role must be one of: SysAdmin, ClusterAdmin, Developer")
	}
	if input.Namespaces != nil {
		if err := access.Validate(*input.Namespaces); err != nil {
			return err
		}
	}
	if input.Status != nil && !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "status must be active or inactive")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" || !strings.Contains(email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	return nil
}

func validateFullName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < fullNameMinLen || length > fullNameMaxLen {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("fullname must be between %d and %d characters", fullNameMinLen, fullNameMaxLen))
	}
	return nil
}
