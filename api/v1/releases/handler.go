package releases

import (
	"errors"
	"fmt"
	"time"

	"shipboard/api/v1/middleware"
	"shipboard/internal/activity"
	"shipboard/internal/depgraph"
	"shipboard/internal/deploygroup"
	"shipboard/internal/httpx"
	"shipboard/internal/model"
	"shipboard/internal/notify"
	"shipboard/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handler handles releases API
type Handler struct {
	db       *gorm.DB
	deps     *depgraph.Service
	groups   *deploygroup.Service
	trigger  *notify.Trigger
	recorder *activity.Recorder
}

// NewHandler creates a new releases handler
func NewHandler(db *gorm.DB, deps *depgraph.Service, groups *deploygroup.Service, trigger *notify.Trigger, recorder *activity.Recorder) *Handler {
	return &Handler{
		db:       db,
		deps:     deps,
		groups:   groups,
		trigger:  trigger,
		recorder: recorder,
	}
}

// List handles GET /api/v1/releases
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
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := h.db.Model(&model.Release{}).Where("team_id = ?", middleware.TeamID(c))

	if req.Title != "" {
		query = query.Where("title LIKE ?", "%"+req.Title+"%")
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.ServiceID != nil {
		query = query.Where("service_id = ?", *req.ServiceID)
	}
	if req.SprintID != nil {
		query = query.Where("sprint_id = ?", *req.SprintID)
	}
	if req.GroupID != nil {
		query = query.Where("deployment_group_id = ?", *req.GroupID)
	}
	if req.Blocked != nil {
		query = query.Where("is_blocked = ?", *req.Blocked)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to count releases", err))
		return
	}

	var releases []model.Release
	offset := (req.Page - 1) * req.PageSize
	if err := query.
		Preload("Service").
		Offset(offset).
		Limit(req.PageSize).
		Order("id DESC").
		Find(&releases).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch releases", err))
		return
	}

	items := make([]ReleaseItemDTO, len(releases))
	for i := range releases {
		items[i] = toDTO(&releases[i])
	}

	httpx.OKItems(c, items, total, req.Page, req.PageSize)
}

// Get handles GET /api/v1/releases/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var release model.Release
	if err := h.db.Where("team_id = ?", middleware.TeamID(c)).
		Preload("Service").
		First(&release, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("release not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch release", err))
		return
	}

	httpx.OK(c, toDTO(&release))
}

// Create handles POST /api/v1/releases/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	teamID := middleware.TeamID(c)

	var service model.Service
	if err := h.db.Where("team_id = ?", teamID).First(&service, req.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("service not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to find service", err))
		return
	}

	if req.SprintID != nil {
		var sprint model.Sprint
		if err := h.db.Where("team_id = ?", teamID).First(&sprint, *req.SprintID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				httpx.FailErr(c, httpx.ErrNotFound("sprint not found"))
				return
			}
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to find sprint", err))
			return
		}
	}

	status := model.ReleaseStatusPlanning
	if req.Status != "" {
		status = model.ReleaseStatus(req.Status)
		if !status.Valid() {
			httpx.FailErr(c, httpx.ErrParamIllegal(fmt.Sprintf("unknown status %q", req.Status)))
			return
		}
	}

	release := model.Release{
		Title:     req.Title,
		TeamID:    teamID,
		ServiceID: req.ServiceID,
		SprintID:  req.SprintID,
		OwnerID:   req.OwnerID,
		Status:    status,
	}

	if err := h.db.Create(&release).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to create release", err))
		return
	}

	release.Service = &service
	h.recorder.Record(teamID, &release.ID, model.ActivityReleaseCreated,
		fmt.Sprintf("Release %q created", release.Title),
		map[string]interface{}{"status": string(release.Status)})
	_ = ws.PublishReleaseEvent("add", toDTO(&release))

	httpx.OK(c, toDTO(&release))
}

// Update handles POST /api/v1/releases/update. A status change runs the
// full recomputation sequence: timestamps, propagation to dependents when
// the new status is terminal, group aggregation, then notifications from
// the net diff. Secondary effect failures never fail the mutation.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	teamID := middleware.TeamID(c)

	var release model.Release
	if err := h.db.Where("team_id = ?", teamID).First(&release, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("release not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch release", err))
		return
	}

	oldStatus := release.Status
	updates := map[string]interface{}{}

	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.SprintID != nil {
		updates["sprint_id"] = *req.SprintID
	}
	if req.OwnerID != nil {
		updates["owner_id"] = *req.OwnerID
	}

	statusChanged := false
	var newStatus model.ReleaseStatus
	if req.Status != nil {
		newStatus = model.ReleaseStatus(*req.Status)
		if !newStatus.Valid() {
			httpx.FailErr(c, httpx.ErrParamIllegal(fmt.Sprintf("unknown status %q", *req.Status)))
			return
		}
		if newStatus != oldStatus {
			statusChanged = true
			now := time.Now()
			updates["status"] = newStatus
			updates["status_changed_at"] = &now
			// Deployment timestamps are stamped on the first transition only
			if newStatus == model.ReleaseStatusInStaging && release.StagingDeployedAt == nil {
				updates["staging_deployed_at"] = &now
			}
			if newStatus == model.ReleaseStatusDeployed && release.ProdDeployedAt == nil {
				updates["prod_deployed_at"] = &now
			}
		}
	}

	if len(updates) > 0 {
		if err := h.db.Model(&release).Updates(updates).Error; err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to update release", err))
			return
		}
	}

	if statusChanged {
		// Only a transition into a terminal status can newly unblock a
		// dependent; recomputation is safe to skip otherwise
		if newStatus.Terminal() {
			h.deps.RecalculateDependentBlockedStatus(release.ID)
		}

		// Secondary recomputation failures must not roll back the committed
		// status change
		if release.DeploymentGroupID != nil {
			if err := h.groups.UpdateStatus(*release.DeploymentGroupID); err != nil {
				logrus.Warnf("Group aggregation for release %d failed: %v", release.ID, err)
			}
		}

		h.trigger.HandleStatusChange(&release, oldStatus, newStatus)
		h.recorder.Record(teamID, &release.ID, model.ActivityStatusChanged,
			fmt.Sprintf("Release %q moved from %s to %s", release.Title, oldStatus, newStatus),
			map[string]interface{}{
				"old_status": string(oldStatus),
				"new_status": string(newStatus),
			})
	} else if len(updates) > 0 {
		h.recorder.Record(teamID, &release.ID, model.ActivityReleaseUpdated,
			fmt.Sprintf("Release %q updated", release.Title), nil)
	}

	// Reload so the response carries the current derived fields
	var updated model.Release
	if err := h.db.Preload("Service").First(&updated, release.ID).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to reload release", err))
		return
	}

	_ = ws.PublishReleaseEvent("update", toDTO(&updated))

	httpx.OK(c, toDTO(&updated))
}

// Delete handles POST /api/v1/releases/delete. Edges touching the release
// are dropped first and former dependents recomputed afterwards.
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	teamID := middleware.TeamID(c)

	var release model.Release
	if err := h.db.Where("team_id = ?", teamID).First(&release, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("release not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch release", err))
		return
	}

	dependents, err := h.deps.RemoveEdgesForRelease(release.ID)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to remove dependencies", err))
		return
	}

	groupID := release.DeploymentGroupID

	if err := h.db.Delete(&model.Release{}, release.ID).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to delete release", err))
		return
	}

	for _, id := range dependents {
		if err := h.deps.RecalculateBlockedStatus(id); err != nil && !errors.Is(err, depgraph.ErrReleaseNotFound) {
			logrus.Warnf("Recalculate of former dependent %d failed: %v", id, err)
		}
	}

	if groupID != nil {
		if err := h.groups.UpdateStatus(*groupID); err != nil && !errors.Is(err, deploygroup.ErrGroupNotFound) {
			logrus.Warnf("Group aggregation after delete failed: %v", err)
		}
	}

	h.recorder.Record(teamID, nil, model.ActivityReleaseDeleted,
		fmt.Sprintf("Release %q deleted", release.Title),
		map[string]interface{}{"release_id": release.ID})
	_ = ws.PublishReleaseEvent("delete", map[string]interface{}{"id": release.ID})

	httpx.OK(c, gin.H{"deleted": true})
}

// paramID parses the :id path parameter
func paramID(c *gin.Context) (int, bool) {
	var uri struct {
		ID int `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid release id"))
		return 0, false
	}
	return uri.ID, true
}
