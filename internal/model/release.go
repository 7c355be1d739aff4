package model

import "time"

// ReleaseStatus represents a release's position in the delivery pipeline
type ReleaseStatus string

const (
	ReleaseStatusPlanning        ReleaseStatus = "planning"
	ReleaseStatusInDevelopment   ReleaseStatus = "in_development"
	ReleaseStatusInReview        ReleaseStatus = "in_review"
	ReleaseStatusReadyStaging    ReleaseStatus = "ready_staging"
	ReleaseStatusInStaging       ReleaseStatus = "in_staging"
	ReleaseStatusStagingVerified ReleaseStatus = "staging_verified"
	ReleaseStatusReadyProduction ReleaseStatus = "ready_production"
	ReleaseStatusDeployed        ReleaseStatus = "deployed"
	ReleaseStatusRolledBack      ReleaseStatus = "rolled_back"
	ReleaseStatusCancelled       ReleaseStatus = "cancelled"
)

// releaseStatuses is the full set of valid status values
var releaseStatuses = map[ReleaseStatus]bool{
	ReleaseStatusPlanning:        true,
	ReleaseStatusInDevelopment:   true,
	ReleaseStatusInReview:        true,
	ReleaseStatusReadyStaging:    true,
	ReleaseStatusInStaging:       true,
	ReleaseStatusStagingVerified: true,
	ReleaseStatusReadyProduction: true,
	ReleaseStatusDeployed:        true,
	ReleaseStatusRolledBack:      true,
	ReleaseStatusCancelled:       true,
}

// Valid reports whether s is a known release status
func (s ReleaseStatus) Valid() bool {
	return releaseStatuses[s]
}

// Terminal reports whether s is a status after which a blocks edge on this
// release can no longer hold its dependents blocked. rolled_back is
// deliberately not terminal: a rolled-back dependency has not shipped.
func (s ReleaseStatus) Terminal() bool {
	return s == ReleaseStatusDeployed || s == ReleaseStatusCancelled
}

// Release represents a trackable unit of deployable work.
// IsBlocked and BlockedReason are derived fields owned by the dependency
// graph resolver; they are never written from request input.
type Release struct {
	BaseModel
	Title             string        `gorm:"type:varchar(255);not null" json:"title"`
	TeamID            int           `gorm:"not null;index" json:"team_id"`
	ServiceID         int           `gorm:"not null;index" json:"service_id"`
	SprintID          *int          `gorm:"index" json:"sprint_id"`
	DeploymentGroupID *int          `gorm:"index" json:"deployment_group_id"`
	OwnerID           *int          `json:"owner_id"`
	Status            ReleaseStatus `gorm:"type:varchar(32);not null;default:'planning';index" json:"status"`
	IsBlocked         bool          `gorm:"not null;default:false" json:"is_blocked"`
	BlockedReason     *string       `gorm:"type:varchar(512)" json:"blocked_reason"`
	StatusChangedAt   *time.Time    `json:"status_changed_at"`
	StagingDeployedAt *time.Time    `json:"staging_deployed_at"`
	ProdDeployedAt    *time.Time    `json:"prod_deployed_at"`

	// Relations
	Team            *Team            `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Service         *Service         `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Sprint          *Sprint          `gorm:"foreignKey:SprintID" json:"sprint,omitempty"`
	DeploymentGroup *DeploymentGroup `gorm:"foreignKey:DeploymentGroupID" json:"deployment_group,omitempty"`
	Owner           *User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// TableName specifies the table name for Release model
func (Release) TableName() string {
	return "releases"
}
