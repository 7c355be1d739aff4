package model

import "time"

// Sprint represents a planning iteration releases can be attached to
type Sprint struct {
	BaseModel
	Name     string     `gorm:"type:varchar(128);not null" json:"name"`
	TeamID   int        `gorm:"not null;index" json:"team_id"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	IsActive bool       `gorm:"not null;default:false" json:"is_active"`

	// Relations
	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}

// TableName specifies the table name for Sprint model
func (Sprint) TableName() string {
	return "sprints"
}
