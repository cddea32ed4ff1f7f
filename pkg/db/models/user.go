package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shieldscan/shield-backend/pkg/enums"
)

// User is the persisted account entity. Email is always stored lower-cased;
// the repository normalizes every write and lookup path.
type User struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Email           string           `gorm:"type:text;not null;uniqueIndex"`
	FullName        string           `gorm:"column:fullname;not null"`
	Role            enums.UserRole   `gorm:"type:text;not null"`
	Namespaces      pq.StringArray   `gorm:"type:text[];not null"`
	Status          enums.UserStatus `gorm:"type:text;not null;default:'active'"`
	MFAEnabled      bool             `gorm:"column:mfa_enabled;not null;default:false"`
	OktaIntegration bool             `gorm:"column:okta_integration;not null;default:false"`
	LastLoginAt     *time.Time       `gorm:"column:last_login_at"`
	CreatedAt       time.Time        `gorm:"column:created_at;not null"`
}
