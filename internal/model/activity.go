package model

import "gorm.io/datatypes"

// Activity types recorded by the core flows
const (
	ActivityReleaseCreated     = "release_created"
	ActivityReleaseUpdated     = "release_updated"
	ActivityReleaseDeleted     = "release_deleted"
	ActivityStatusChanged      = "status_changed"
	ActivityDependencyAdded    = "dependency_added"
	ActivityDependencyRemoved  = "dependency_removed"
	ActivityDependencyResolved = "dependency_resolved"
	ActivityGroupStatusChanged = "group_status_changed"
)

// Activity is an append-only audit record of what changed and by whom
type Activity struct {
	BaseModel
	Type      string         `gorm:"type:varchar(64);not null;index" json:"type"`
	Message   string         `gorm:"type:varchar(512);not null" json:"message"`
	Metadata  datatypes.JSON `gorm:"type:json" json:"metadata"`
	TeamID    int            `gorm:"not null;index" json:"team_id"`
	ReleaseID *int           `gorm:"index" json:"release_id"`
	ActorID   *int           `json:"actor_id"`
}

// TableName specifies the table name for Activity model
func (Activity) TableName() string {
	return "activities"
}
