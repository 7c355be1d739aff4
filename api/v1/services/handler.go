package services

import (
	"errors"

	"shipboard/api/v1/middleware"
	"shipboard/internal/httpx"
	"shipboard/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListRequest represents list services request
type ListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Name     string `form:"name"`
}

// CreateRequest represents create service request
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	RepoURL     string `json:"repoUrl"`
	Description string `json:"description"`
}

// UpdateRequest represents update service request
type UpdateRequest struct {
	ID          int     `json:"id" binding:"required"`
	Name        *string `json:"name"`
	RepoURL     *string `json:"repoUrl"`
	Description *string `json:"description"`
}

// DeleteRequest represents delete service request
type DeleteRequest struct {
	ID int `json:"id" binding:"required"`
}

// Handler handles services API
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new services handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// List handles GET /api/v1/services
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

	query := h.db.Model(&model.Service{}).Where("team_id = ?", middleware.TeamID(c))
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to count services", err))
		return
	}

	var svcs []model.Service
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("name ASC").Find(&svcs).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch services", err))
		return
	}

	httpx.OKItems(c, svcs, total, req.Page, req.PageSize)
}

// Create handles POST /api/v1/services/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	teamID := middleware.TeamID(c)

	var count int64
	if err := h.db.Model(&model.Service{}).
		Where("team_id = ? AND name = ?", teamID, req.Name).
		Count(&count).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to check service name", err))
		return
	}
	if count > 0 {
		httpx.FailErr(c, httpx.ErrAlreadyExists("service name already exists"))
		return
	}

	svc := model.Service{
		Name:        req.Name,
		TeamID:      teamID,
		RepoURL:     req.RepoURL,
		Description: req.Description,
	}
	if err := h.db.Create(&svc).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to create service", err))
		return
	}

	httpx.OK(c, svc)
}

// Update handles POST /api/v1/services/update
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	var svc model.Service
	if err := h.db.Where("team_id = ?", middleware.TeamID(c)).First(&svc, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("service not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch service", err))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.RepoURL != nil {
		updates["repo_url"] = *req.RepoURL
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) > 0 {
		if err := h.db.Model(&svc).Updates(updates).Error; err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("failed to update service", err))
			return
		}
	}

	httpx.OK(c, svc)
}

// Delete handles POST /api/v1/services/delete. Refuses when releases
// still reference the service.
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	var svc model.Service
	if err := h.db.Where("team_id = ?", middleware.TeamID(c)).First(&svc, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("service not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to fetch service", err))
		return
	}

	var inUse int64
	if err := h.db.Model(&model.Release{}).
		Where("service_id = ?", svc.ID).
		Count(&inUse).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to check service usage", err))
		return
	}
	if inUse > 0 {
		httpx.FailErr(c, httpx.ErrStateConflict("service still referenced by releases"))
		return
	}

	if err := h.db.Delete(&model.Service{}, svc.ID).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to delete service", err))
		return
	}

	httpx.OK(c, gin.H{"deleted": true})
}
