package deployment_groups

import (
	"errors"
	"time"

	"shipboard/api/v1/middleware"
	"shipboard/internal/deploygroup"
	"shipboard/internal/httpx"
	"shipboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListRequest represents list deployment groups request
type ListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Name     string `form:"name"`
	Status   string `form:"status"`
}

// CreateRequest represents create deployment group request
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateRequest represents rename deployment group request
type UpdateRequest struct {
	ID   int    `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// DeleteRequest represents delete deployment group request
type DeleteRequest struct {
	ID int `json:"id" binding:"required"`
}

// MemberRequest represents add/remove member request
type MemberRequest struct {
	GroupID   int `json:"groupId"`
	ReleaseID int `json:"releaseId" binding:"required"`
}

// GroupDTO represents a deployment group in API responses
type GroupDTO struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	DeployedAt   *string `json:"deployedAt"`
	ReleaseCount int     `json:"releaseCount"`
	CreatedAt    string  `json:"createdAt"`
}

// Handler handles deployment groups API
type Handler struct {
	db     *gorm.DB
	groups *deploygroup.Service
}

// NewHandler creates a new deployment groups handler
func NewHandler(db *gorm.DB, groups *deploygroup.Service) *Handler {
	return &Handler{db: db, groups: groups}
}

// List handles GET /api/v1/deployment-groups
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	query := h.db.Model(&model.DeploymentGroup{}).Where("team_id = ?", middleware.TeamID(c))
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to count deployment groups", err))
		return
	}

	var groups []model.DeploymentGroup
	offset := (req.Page - 1) * req.PageSize
	if err := query.
		Preload("Releases").
		Offset(offset).
		Limit(req.PageSize).
		Order("id DESC").
		Find(&groups).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch deployment groups", err))
		return
	}

	items := make([]GroupDTO, len(groups))
	for i := range groups {
		items[i] = toGroupDTO(&groups[i])
	}

	httpx.OKItems(c, items, total, req.Page, req.PageSize)
}

// Get handles GET /api/v1/deployment-groups/:id
func (h *Handler) Get(c *gin.Context) {
	var uri struct {
		ID int `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid group id"))
		return
	}

	group, err := h.groups.Get(middleware.TeamID(c), uri.ID)
	if err != nil {
		if errors.Is(err, deploygroup.ErrGroupNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("deployment group not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch deployment group", err))
		return
	}

	httpx.OK(c, gin.H{
		"group":    toGroupDTO(group),
		"releases": group.Releases,
	})
}

// Create handles POST /api/v1/deployment-groups/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	teamID := middleware.TeamID(c)

	var count int64
	if err := h.db.Model(&model.DeploymentGroup{}).
		Where("team_id = ? AND name = ?", teamID, req.Name).
		Count(&count).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to check name uniqueness", err))
		return
	}
	if count > 0 {
		httpx.FailErr(c, httpx.ErrAlreadyExists("deployment group name already exists"))
		return
	}

	group := model.DeploymentGroup{
		Name:   req.Name,
		TeamID: teamID,
		Status: model.DeploymentGroupStatusPending,
	}
	if err := h.db.Create(&group).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to create deployment group", err))
		return
	}

	httpx.OK(c, toGroupDTO(&group))
}

// Update handles POST /api/v1/deployment-groups/update
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	teamID := middleware.TeamID(c)

	var group model.DeploymentGroup
	if err := h.db.Where("team_id = ?", teamID).First(&group, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("deployment group not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch deployment group", err))
		return
	}

	if err := h.db.Model(&group).Update("name", req.Name).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to update deployment group", err))
		return
	}
	group.Name = req.Name

	httpx.OK(c, toGroupDTO(&group))
}

// Delete handles POST /api/v1/deployment-groups/delete. Member releases are
// detached, not deleted.
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	teamID := middleware.TeamID(c)

	var group model.DeploymentGroup
	if err := h.db.Where("team_id = ?", teamID).First(&group, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("deployment group not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch deployment group", err))
		return
	}

	if err := h.db.Model(&model.Release{}).
		Where("deployment_group_id = ?", group.ID).
		Update("deployment_group_id", nil).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to detach releases", err))
		return
	}

	if err := h.db.Delete(&model.DeploymentGroup{}, group.ID).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to delete deployment group", err))
		return
	}

	httpx.OK(c, gin.H{"deleted": true})
}

// AddRelease handles POST /api/v1/deployment-groups/releases/add. A release
// belongs to at most one group: adding moves it, and both the former and the
// new group are recomputed.
func (h *Handler) AddRelease(c *gin.Context) {
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}
	if req.GroupID == 0 {
		httpx.FailErr(c, httpx.ErrParamMissing("groupId is required"))
		return
	}

	teamID := middleware.TeamID(c)

	var group model.DeploymentGroup
	if err := h.db.Where("team_id = ?", teamID).First(&group, req.GroupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("deployment group not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch deployment group", err))
		return
	}

	release, ok := h.findRelease(c, teamID, req.ReleaseID)
	if !ok {
		return
	}

	formerGroupID := release.DeploymentGroupID
	if formerGroupID != nil && *formerGroupID == group.ID {
		httpx.OK(c, gin.H{"moved": false})
		return
	}

	if err := h.db.Model(release).Update("deployment_group_id", group.ID).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to add release to group", err))
		return
	}

	h.recompute(group.ID)
	if formerGroupID != nil {
		h.recompute(*formerGroupID)
	}

	httpx.OK(c, gin.H{"moved": true})
}

// RemoveRelease handles POST /api/v1/deployment-groups/releases/remove
func (h *Handler) RemoveRelease(c *gin.Context) {
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	teamID := middleware.TeamID(c)

	release, ok := h.findRelease(c, teamID, req.ReleaseID)
	if !ok {
		return
	}

	if release.DeploymentGroupID == nil {
		httpx.OK(c, gin.H{"removed": false})
		return
	}

	formerGroupID := *release.DeploymentGroupID
	if err := h.db.Model(release).Update("deployment_group_id", nil).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to remove release from group", err))
		return
	}

	h.recompute(formerGroupID)

	httpx.OK(c, gin.H{"removed": true})
}

func (h *Handler) findRelease(c *gin.Context, teamID, releaseID int) (*model.Release, bool) {
	var release model.Release
	if err := h.db.Where("team_id = ?", teamID).First(&release, releaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("release not found"))
			return nil, false
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch release", err))
		return nil, false
	}
	return &release, true
}

func (h *Handler) recompute(groupID int) {
	if err := h.groups.UpdateStatus(groupID); err != nil && !errors.Is(err, deploygroup.ErrGroupNotFound) {
		logrus.Warnf("Group %d aggregation failed: %v", groupID, err)
	}
}

func toGroupDTO(g *model.DeploymentGroup) GroupDTO {
	dto := GroupDTO{
		ID:           g.ID,
		Name:         g.Name,
		Status:       string(g.Status),
		ReleaseCount: len(g.Releases),
		CreatedAt:    g.CreatedAt.Format(time.RFC3339),
	}
	if g.DeployedAt != nil {
		s := g.DeployedAt.Format(time.RFC3339)
		dto.DeployedAt = &s
	}
	return dto
}
