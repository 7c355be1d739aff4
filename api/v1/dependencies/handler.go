package dependencies

import (
	"errors"
	"time"

	"shipboard/api/v1/middleware"
	"shipboard/internal/depgraph"
	"shipboard/internal/httpx"
	"shipboard/internal/model"

	"github.com/gin-gonic/gin"
)

// CreateRequest represents add dependency request
type CreateRequest struct {
	DependentReleaseID int    `json:"dependentReleaseId" binding:"required"`
	BlockingReleaseID  int    `json:"blockingReleaseId" binding:"required"`
	Type               string `json:"type"`
	Description        string `json:"description"`
}

// DeleteRequest represents remove dependency request
type DeleteRequest struct {
	ID int `json:"id" binding:"required"`
}

// ResolveRequest represents resolve/unresolve dependency request
type ResolveRequest struct {
	ID         int   `json:"id" binding:"required"`
	IsResolved *bool `json:"isResolved" binding:"required"`
}

// ListRequest represents list dependencies request
type ListRequest struct {
	ReleaseID int `form:"releaseId" binding:"required"`
}

// EdgeDTO represents a dependency edge in API responses
type EdgeDTO struct {
	ID                 int     `json:"id"`
	DependentReleaseID int     `json:"dependentReleaseId"`
	BlockingReleaseID  int     `json:"blockingReleaseId"`
	Type               string  `json:"type"`
	Description        string  `json:"description"`
	IsResolved         bool    `json:"isResolved"`
	ResolvedAt         *string `json:"resolvedAt"`
	OtherReleaseTitle  string  `json:"otherReleaseTitle"`
	OtherReleaseStatus string  `json:"otherReleaseStatus"`
	CreatedAt          string  `json:"createdAt"`
}

// ListResponse represents list dependencies response
type ListResponse struct {
	DependsOn    []EdgeDTO `json:"dependsOn"`
	DependedOnBy []EdgeDTO `json:"dependedOnBy"`
}

// Handler handles release dependencies API
type Handler struct {
	deps *depgraph.Service
}

// NewHandler creates a new dependencies handler
func NewHandler(deps *depgraph.Service) *Handler {
	return &Handler{deps: deps}
}

// List handles GET /api/v1/dependencies
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("releaseId is required"))
		return
	}

	dependsOn, dependedOnBy, err := h.deps.ListForRelease(middleware.TeamID(c), req.ReleaseID)
	if err != nil {
		failDep(c, err)
		return
	}

	resp := ListResponse{
		DependsOn:    make([]EdgeDTO, len(dependsOn)),
		DependedOnBy: make([]EdgeDTO, len(dependedOnBy)),
	}
	for i := range dependsOn {
		resp.DependsOn[i] = toEdgeDTO(&dependsOn[i], dependsOn[i].BlockingRelease)
	}
	for i := range dependedOnBy {
		resp.DependedOnBy[i] = toEdgeDTO(&dependedOnBy[i], dependedOnBy[i].DependentRelease)
	}

	httpx.OK(c, resp)
}

// Create handles POST /api/v1/dependencies/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	depType := model.DependencyTypeBlocks
	if req.Type != "" {
		depType = model.DependencyType(req.Type)
		if !depType.Valid() {
			httpx.FailErr(c, httpx.ErrParamIllegal("unknown dependency type"))
			return
		}
	}

	edge, err := h.deps.AddDependency(middleware.TeamID(c), req.DependentReleaseID, req.BlockingReleaseID, depType, req.Description)
	if err != nil {
		failDep(c, err)
		return
	}

	httpx.OK(c, toEdgeDTO(edge, nil))
}

// Delete handles POST /api/v1/dependencies/delete
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	if err := h.deps.RemoveDependency(middleware.TeamID(c), req.ID); err != nil {
		failDep(c, err)
		return
	}

	httpx.OK(c, gin.H{"deleted": true})
}

// Resolve handles POST /api/v1/dependencies/resolve
func (h *Handler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing(err.Error()))
		return
	}

	edge, err := h.deps.SetResolved(middleware.TeamID(c), req.ID, *req.IsResolved)
	if err != nil {
		failDep(c, err)
		return
	}

	httpx.OK(c, toEdgeDTO(edge, nil))
}

// failDep maps depgraph sentinel errors onto the response taxonomy
func failDep(c *gin.Context, err error) {
	switch {
	case errors.Is(err, depgraph.ErrInvalidDependency):
		httpx.FailErr(c, httpx.ErrInvalidDependency(err.Error()))
	case errors.Is(err, depgraph.ErrDuplicateDependency):
		httpx.FailErr(c, httpx.ErrDuplicateDependency(err.Error()))
	case errors.Is(err, depgraph.ErrCyclicDependency):
		httpx.FailErr(c, httpx.ErrCyclicDependency(err.Error()))
	case errors.Is(err, depgraph.ErrReleaseNotFound), errors.Is(err, depgraph.ErrDependencyNotFound):
		httpx.FailErr(c, httpx.ErrNotFound(err.Error()))
	default:
		httpx.FailErr(c, httpx.ErrDatabaseError("dependency operation failed", err))
	}
}

func toEdgeDTO(e *model.ReleaseDependency, other *model.Release) EdgeDTO {
	dto := EdgeDTO{
		ID:                 e.ID,
		DependentReleaseID: e.DependentReleaseID,
		BlockingReleaseID:  e.BlockingReleaseID,
		Type:               string(e.Type),
		Description:        e.Description,
		IsResolved:         e.IsResolved,
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
	}
	if e.ResolvedAt != nil {
		s := e.ResolvedAt.Format(time.RFC3339)
		dto.ResolvedAt = &s
	}
	if other != nil {
		dto.OtherReleaseTitle = other.Title
		dto.OtherReleaseStatus = string(other.Status)
	}
	return dto
}
