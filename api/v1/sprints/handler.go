package sprints

import (
	"errors"
	"time"

	"shipboard/api/v1/middleware"
	"shipboard/internal/httpx"
	"shipboard/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListRequest represents list sprints request
type ListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Name     string `form:"name"`
	Active   *bool  `form:"active"`
}

// CreateRequest represents create sprint request
type CreateRequest struct {
	Name     string     `json:"name" binding:"required"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
	IsActive bool       `json:"isActive"`
}

// UpdateRequest represents update sprint request
type UpdateRequest struct {
	ID       int        `json:"id" binding:"required"`
	Name     *string    `json:"name"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
	IsActive *bool      `json:"isActive"`
}

// DeleteRequest represents delete sprint request
type DeleteRequest struct {
	ID int `json:"id" binding:"required"`
}

// Handler handles sprints API
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new sprints handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// List handles GET /api/v1/sprints
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

	query := h.db.Model(&model.Sprint{}).Where("team_id = ?", middleware.TeamID(c))
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}
	if req.Active != nil {
		query = query.Where("is_active = ?", *req.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to count sprints", err))
		return
	}

	var sprints []model.Sprint
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("id DESC").Find(&sprints).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch sprints", err))
		return
	}

	httpx.OKItems(c, sprints, total, req.Page, req.PageSize)
}

// Create handles POST /api/v1/sprints/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	sprint := model.Sprint{
		Name:     req.Name,
		TeamID:   middleware.TeamID(c),
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		IsActive: req.IsActive,
	}
	if err := h.db.Create(&sprint).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to create sprint", err))
		return
	}

	httpx.OK(c, sprint)
}

// Update handles POST /api/v1/sprints/update
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	var sprint model.Sprint
	if err := h.db.Where("team_id = ?", middleware.TeamID(c)).First(&sprint, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("sprint not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch sprint", err))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.StartsAt != nil {
		updates["starts_at"] = *req.StartsAt
	}
	if req.EndsAt != nil {
		updates["ends_at"] = *req.EndsAt
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.Model(&sprint).Updates(updates).Error; err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to update sprint", err))
			return
		}
	}

	httpx.OK(c, sprint)
}

// Delete handles POST /api/v1/sprints/delete. Releases attached to the
// sprint are detached, not deleted.
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	var sprint model.Sprint
	if err := h.db.Where("team_id = ?", middleware.TeamID(c)).First(&sprint, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("sprint not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch sprint", err))
		return
	}

	if err := h.db.Model(&model.Release{}).
		Where("sprint_id = ?", sprint.ID).
		Update("sprint_id", nil).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to detach releases", err))
		return
	}

	if err := h.db.Delete(&model.Sprint{}, sprint.ID).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to delete sprint", err))
		return
	}

	httpx.OK(c, gin.H{"deleted": true})
}
