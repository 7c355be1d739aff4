package model

// TeamSettings holds per-team notification configuration
type TeamSettings struct {
	BaseModel
	TeamID              int    `gorm:"not null;uniqueIndex" json:"team_id"`
	SlackWebhookURL     string `gorm:"type:varchar(512)" json:"-"`
	SlackChannel        string `gorm:"type:varchar(128)" json:"slack_channel"`
	NotifyStatusChanges bool   `gorm:"not null;default:true" json:"notify_status_changes"`
	NotifyBlockedChange bool   `gorm:"not null;default:true" json:"notify_blocked_change"`
	NotifyReadyToDeploy bool   `gorm:"not null;default:true" json:"notify_ready_to_deploy"`
}

// TableName specifies the table name for TeamSettings model
func (TeamSettings) TableName() string {
	return "team_settings"
}
