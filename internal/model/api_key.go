package model

import "time"

// APIKeyStatus represents API key status
type APIKeyStatus string

const (
	APIKeyStatusActive  APIKeyStatus = "active"
	APIKeyStatusRevoked APIKeyStatus = "revoked"
)

// APIKey represents a token issued to automation clients (CI pipelines, bots).
// The full token is returned once at creation; only its hash is stored.
type APIKey struct {
	BaseModel
	Name       string       `gorm:"type:varchar(128);not null" json:"name"`
	TeamID     int          `gorm:"not null;index" json:"team_id"`
	Prefix     string       `gorm:"type:varchar(16);uniqueIndex;not null" json:"prefix"`
	TokenHash  string       `gorm:"type:varchar(255);not null" json:"-"`
	Status     APIKeyStatus `gorm:"type:varchar(16);default:'active'" json:"status"`
	LastUsedAt *time.Time   `json:"last_used_at"`
}

// TableName specifies the table name for APIKey model
func (APIKey) TableName() string {
	return "api_keys"
}
