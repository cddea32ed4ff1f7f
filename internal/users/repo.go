package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/shieldscan/shield-backend/pkg/db/models"
	"github.com/shieldscan/shield-backend/pkg/enums"
)

// FilterAll disables a listing filter when passed as its value.
const FilterAll = "all"

// Repository exposes user persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns one page of users matching the filter plus the unpaged total.
// Results are ordered newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != "" && filter.Role != FilterAll {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Status != "" && filter.Status != FilterAll {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Namespace != "" && filter.Namespace != FilterAll {
		q = q.Where("? = ANY(namespaces)", filter.Namespace)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		q = q.Where("email ILIKE ? OR fullname ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.User
	err := q.Order("created_at DESC").
		Offset(filter.Page.Offset()).
		Limit(filter.Page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email. Lookup is
// case-insensitive because stored emails are always lower-cased.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := &models.User{
		ID:         uuid.New(),
		Email:      strings.ToLower(dto.Email),
		FullName:   dto.FullName,
		Role:       dto.Role,
		Namespaces: pq.StringArray(append([]string(nil), dto.Namespaces...)),
		Status:     enums.UserStatusActive,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies the non-nil fields and returns the fresh row. An update that
// carries no fields degrades to a plain fetch.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, dto UpdateUserDTO) (*models.User, error) {
	fields := updateFields(dto)
	if len(fields) == 0 {
		return r.FindByID(ctx, id)
	}

	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// DeleteWithAdminGuard removes a user unless that would leave the system
// without an active SysAdmin. The survivor check runs inside the DELETE
// statement itself so concurrent deletions cannot race past it.
func (r *Repository) DeleteWithAdminGuard(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM users
		WHERE id = ?
		  AND (role <> 'SysAdmin' OR status <> 'active'
		       OR EXISTS (
		           SELECT 1 FROM users u2
		           WHERE u2.role = 'SysAdmin' AND u2.status = 'active' AND u2.id <> users.id
		       ))`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeactivateWithAdminGuard flips a user to inactive unless they are the last
// active SysAdmin. Deactivating an already inactive user is a no-op that
// still reports success.
func (r *Repository) DeactivateWithAdminGuard(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE users
		SET status = 'inactive'
		WHERE id = ?
		  AND (role <> 'SysAdmin' OR status <> 'active'
		       OR EXISTS (
		           SELECT 1 FROM users u2
		           WHERE u2.role = 'SysAdmin' AND u2.status = 'active' AND u2.id <> users.id
		       ))`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// BulkUpdate applies the non-nil fields to every listed user and returns the
// number of rows touched. An empty field set touches nothing.
func (r *Repository) BulkUpdate(ctx context.Context, ids []uuid.UUID, dto UpdateUserDTO) (int64, error) {
	fields := updateFields(dto)
	if len(fields) == 0 || len(ids) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ?", ids).
		Updates(fields)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// BulkDeleteWithAdminGuard removes the listed users, refusing the whole batch
// when no active SysAdmin outside the batch would survive. The guard is part
// of the DELETE statement, so the batch either passes or removes nothing.
func (r *Repository) BulkDeleteWithAdminGuard(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	idStrs := uuidStrings(ids)
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM users
		WHERE id = ANY(?::uuid[])
		  AND (SELECT count(*) FROM users u2
		       WHERE u2.role = 'SysAdmin' AND u2.status = 'active'
		         AND u2.id <> ALL(?::uuid[])) >= 1`,
		pq.Array(idStrs), pq.Array(idStrs))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// CountActiveSysAdminsExcluding counts the active system administrators that
// would survive if the listed users were removed.
func (r *Repository) CountActiveSysAdminsExcluding(ctx context.Context, ids []uuid.UUID) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND status = ?", enums.UserRoleSysAdmin, enums.UserStatusActive)
	if len(ids) > 0 {
		q = q.Where("id NOT IN ?", ids)
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}

// EmailExists reports whether another user already holds the email.
func (r *Repository) EmailExists(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", strings.ToLower(email))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Stats aggregates totals plus a per-role breakdown in two queries.
func (r *Repository) Stats(ctx context.Context) (*StatsDTO, error) {
	var totals struct {
		Total    int64
		Active   int64
		Inactive int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'inactive') AS inactive`).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var roleRows []struct {
		Role  string
		Count int64
	}
	err = r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&roleRows).Error
	if err != nil {
		return nil, err
	}

	byRole := make(map[string]int64, len(roleRows))
	for _, row := range roleRows {
		byRole[row.Role] = row.Count
	}

	return &StatsDTO{
		Total:    totals.Total,
		Active:   totals.Active,
		Inactive: totals.Inactive,
		ByRole:   byRole,
	}, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func updateFields(dto UpdateUserDTO) map[string]any {
	fields := map[string]any{}
	if dto.Email != nil {
		fields["email"] = strings.ToLower(*dto.Email)
	}
	if dto.FullName != nil {
		fields["fullname"] = *dto.FullName
	}
	if dto.Role != nil {
		fields["role"] = *dto.Role
	}
	if dto.Namespaces != nil {
		fields["namespaces"] = pq.StringArray(append([]string(nil), (*dto.Namespaces)...))
	}
	if dto.Status != nil {
		fields["status"] = *dto.Status
	}
	if dto.MFAEnabled != nil {
		fields["mfa_enabled"] = *dto.MFAEnabled
	}
	if dto.OktaIntegration != nil {
		fields["okta_integration"] = *dto.OktaIntegration
	}
	return fields
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
