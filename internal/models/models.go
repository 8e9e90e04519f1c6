package models

import (
	"time"
)

// User mirrors a Firebase account. Credentials live in Firebase; the local
// row carries the role and profile used for authorization decisions.
type User struct {
	Base
	FirebaseUID string     `gorm:"uniqueIndex;not null" json:"firebaseUid"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        UserRole   `gorm:"not null;default:'RESIDENT'" json:"role"`
	Properties  []Property `gorm:"foreignKey:AgentID" json:"properties,omitempty"`
	SignIns     []SignIn   `gorm:"foreignKey:UserID" json:"-"`
}

// SignIn is an audit record written on every successful login.
type SignIn struct {
	Base
	UserID    string    `gorm:"type:uuid;not null;index" json:"userId"`
	User      *User     `json:"user,omitempty"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Browser   string    `json:"browser"`
	Platform  string    `json:"platform"`
	Mobile    bool      `json:"mobile"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Property struct {
	Base
	Title       string         `gorm:"not null" json:"title" validate:"required"`
	Description string         `json:"description"`
	Address     string         `gorm:"not null" json:"address" validate:"required"`
	City        string         `json:"city"`
	PostalCode  string         `json:"postalCode"`
	Price       int64          `json:"price" validate:"gte=0"`
	Bedrooms    int            `json:"bedrooms"`
	Bathrooms   int            `json:"bathrooms"`
	AreaSqm     float64        `json:"areaSqm"`
	Status      PropertyStatus `gorm:"not null;default:'DRAFT'" json:"status"`
	AgentID     string         `gorm:"type:uuid;index" json:"agentId"`
	Agent       *User          `json:"agent,omitempty"`
	Photos      []PropertyPhoto `gorm:"foreignKey:PropertyID" json:"photos,omitempty"`
}

type PropertyPhoto struct {
	Base
	PropertyID string `gorm:"type:uuid;not null;index" json:"propertyId"`
	URL        string `gorm:"not null" json:"url"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Type       string `json:"type"`
	UploadedBy string `gorm:"type:uuid" json:"uploadedBy"`
}

// FormTemplate is a local cache of GoFormz templates, refreshed by the
// periodic sync task so listings do not hit the GoFormz API on every request.
type FormTemplate struct {
	Base
	GoFormzID string    `gorm:"uniqueIndex;not null" json:"goformzId"`
	Name      string    `gorm:"not null" json:"name"`
	SyncedAt  time.Time `json:"syncedAt"`
}

// FormArchive tracks the async archival of a completed GoFormz submission
// PDF into S3.
type FormArchive struct {
	Base
	FormID      string        `gorm:"not null;index" json:"formId"`
	RequestedBy string        `gorm:"type:uuid;not null" json:"requestedBy"`
	Status      ArchiveStatus `gorm:"not null;default:'QUEUED'" json:"status"`
	ObjectURL   string        `json:"objectUrl"`
	Error       string        `json:"-"`
	AttemptNum  int           `json:"attemptNum"`
	ArchivedAt  time.Time     `json:"archivedAt"`
}
