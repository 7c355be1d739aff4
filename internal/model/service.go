package model

// Service represents a deployable service in the team's catalog
type Service struct {
	BaseModel
	Name        string `gorm:"type:varchar(128);not null;uniqueIndex:uk_team_service" json:"name"`
	TeamID      int    `gorm:"not null;index;uniqueIndex:uk_team_service" json:"team_id"`
	Description string `gorm:"type:varchar(255)" json:"description"`
	RepoURL     string `gorm:"type:varchar(255)" json:"repo_url"`

	// Relations
	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}

// TableName specifies the table name for Service model
func (Service) TableName() string {
	return "services"
}
