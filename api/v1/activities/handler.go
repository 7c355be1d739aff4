package activities

import (
	"shipboard/api/v1/middleware"
	"shipboard/internal/httpx"
	"shipboard/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListRequest represents list activities request
type ListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	ReleaseID int    `form:"releaseId"`
	Type      string `form:"type"`
}

// Handler handles the activity feed API
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new activities handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// List handles GET /api/v1/activities. Newest first.
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 200 {
		req.PageSize = 50
	}

	query := h.db.Model(&model.Activity{}).Where("team_id = ?", middleware.TeamID(c))
	if req.ReleaseID > 0 {
		query = query.Where("release_id = ?", req.ReleaseID)
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to count activities", err))
		return
	}

	var items []model.Activity
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("id DESC").Find(&items).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch activities", err))
		return
	}

	httpx.OKItems(c, items, total, req.Page, req.PageSize)
}
