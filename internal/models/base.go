package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	DeletedAt time.Time `gorm:"index;default:NULL" json:"-" validate:"omitempty"`
	IsDeleted bool      `json:"isDeleted" default:"false"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleAgent    UserRole = "AGENT"
	UserRoleResident UserRole = "RESIDENT"
)

// IsValidUserRole reports whether the role is one of the known roles.
func IsValidUserRole(role UserRole) bool {
	switch role {
	case UserRoleAdmin, UserRoleAgent, UserRoleResident:
		return true
	}
	return false
}

// CanManageProperties reports whether the role may create, update or delete
// property listings. Residents are read-only.
func (r UserRole) CanManageProperties() bool {
	return r == UserRoleAdmin || r == UserRoleAgent
}

type PropertyStatus string

const (
	PropertyStatusDraft    PropertyStatus = "DRAFT"
	PropertyStatusListed   PropertyStatus = "LISTED"
	PropertyStatusPending  PropertyStatus = "PENDING"
	PropertyStatusSold     PropertyStatus = "SOLD"
	PropertyStatusArchived PropertyStatus = "ARCHIVED"
)

type ArchiveStatus string

const (
	ArchiveStatusQueued    ArchiveStatus = "QUEUED"
	ArchiveStatusCompleted ArchiveStatus = "COMPLETED"
	ArchiveStatusFailed    ArchiveStatus = "FAILED"
)
