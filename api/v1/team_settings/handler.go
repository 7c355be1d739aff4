package team_settings

import (
	"errors"

	"shipboard/api/v1/middleware"
	"shipboard/internal/httpx"
	"shipboard/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpdateRequest represents update team settings request
type UpdateRequest struct {
	SlackWebhookURL     *string `json:"slackWebhookUrl"`
	SlackChannel        *string `json:"slackChannel"`
	NotifyStatusChanges *bool   `json:"notifyStatusChanges"`
	NotifyBlockedChange *bool   `json:"notifyBlockedChange"`
	NotifyReadyToDeploy *bool   `json:"notifyReadyToDeploy"`
}

// settingsDTO mirrors TeamSettings but only reveals whether a webhook is
// configured, never the URL itself.
type settingsDTO struct {
	TeamID              int    `json:"team_id"`
	SlackWebhookSet     bool   `json:"slack_webhook_set"`
	SlackChannel        string `json:"slack_channel"`
	NotifyStatusChanges bool   `json:"notify_status_changes"`
	NotifyBlockedChange bool   `json:"notify_blocked_change"`
	NotifyReadyToDeploy bool   `json:"notify_ready_to_deploy"`
}

// Handler handles team settings API
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new team settings handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func toDTO(s *model.TeamSettings) settingsDTO {
	return settingsDTO{
		TeamID:              s.TeamID,
		SlackWebhookSet:     s.SlackWebhookURL != "",
		SlackChannel:        s.SlackChannel,
		NotifyStatusChanges: s.NotifyStatusChanges,
		NotifyBlockedChange: s.NotifyBlockedChange,
		NotifyReadyToDeploy: s.NotifyReadyToDeploy,
	}
}

// load fetches the team's settings row, creating the default row on first
// access so Get and Update always have something to work with.
func (h *Handler) load(teamID int) (*model.TeamSettings, error) {
	var settings model.TeamSettings
	err := h.db.Where("team_id = ?", teamID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = model.TeamSettings{
			TeamID:              teamID,
			NotifyStatusChanges: true,
			NotifyBlockedChange: true,
			NotifyReadyToDeploy: true,
		}
		if err := h.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Get handles GET /api/v1/team-settings
func (h *Handler) Get(c *gin.Context) {
	settings, err := h.load(middleware.TeamID(c))
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch team settings", err))
		return
	}
	httpx.OK(c, toDTO(settings))
}

// Update handles POST /api/v1/team-settings/update
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	settings, err := h.load(middleware.TeamID(c))
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch team settings", err))
		return
	}

	updates := map[string]interface{}{}
	if req.SlackWebhookURL != nil {
		updates["slack_webhook_url"] = *req.SlackWebhookURL
	}
	if req.SlackChannel != nil {
		updates["slack_channel"] = *req.SlackChannel
	}
	if req.NotifyStatusChanges != nil {
		updates["notify_status_changes"] = *req.NotifyStatusChanges
	}
	if req.NotifyBlockedChange != nil {
		updates["notify_blocked_change"] = *req.NotifyBlockedChange
	}
	if req.NotifyReadyToDeploy != nil {
		updates["notify_ready_to_deploy"] = *req.NotifyReadyToDeploy
	}

	if len(updates) > 0 {
		if err := h.db.Model(settings).Updates(updates).Error; err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to update team settings", err))
			return
		}
	}

	httpx.OK(c, toDTO(settings))
}
