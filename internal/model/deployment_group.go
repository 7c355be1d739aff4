package model

import "time"

// DeploymentGroupStatus represents the derived lifecycle state of a group
type DeploymentGroupStatus string

const (
	DeploymentGroupStatusPending   DeploymentGroupStatus = "pending"
	DeploymentGroupStatusReady     DeploymentGroupStatus = "ready"
	DeploymentGroupStatusDeploying DeploymentGroupStatus = "deploying"
	DeploymentGroupStatusDeployed  DeploymentGroupStatus = "deployed"
	DeploymentGroupStatusCancelled DeploymentGroupStatus = "cancelled"
)

// DeploymentGroup is a named batch of releases intended to ship together.
// Status is entirely derived from the member releases' statuses.
type DeploymentGroup struct {
	BaseModel
	Name       string                `gorm:"type:varchar(128);not null;uniqueIndex:uk_team_group" json:"name"`
	TeamID     int                   `gorm:"not null;index;uniqueIndex:uk_team_group" json:"team_id"`
	Status     DeploymentGroupStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	DeployedAt *time.Time            `json:"deployed_at"`

	// Relations
	Team     *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Releases []Release `gorm:"foreignKey:DeploymentGroupID" json:"releases,omitempty"`
}

// TableName specifies the table name for DeploymentGroup model
func (DeploymentGroup) TableName() string {
	return "deployment_groups"
}
