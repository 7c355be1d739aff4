package releases

import (
	"time"

	"shipboard/internal/model"
)

// ListRequest represents list releases request
type ListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	Title     string `form:"title"`
	Status    string `form:"status"`
	ServiceID *int   `form:"serviceId"`
	SprintID  *int   `form:"sprintId"`
	GroupID   *int   `form:"groupId"`
	Blocked   *bool  `form:"blocked"`
}

// CreateRequest represents create release request
type CreateRequest struct {
	Title     string `json:"title" binding:"required"`
	ServiceID int    `json:"serviceId" binding:"required"`
	SprintID  *int   `json:"sprintId"`
	OwnerID   *int   `json:"ownerId"`
	Status    string `json:"status"`
}

// UpdateRequest represents update release request. Status transitions are
// free-form within the enumerated value set; is_blocked/blocked_reason are
// derived and deliberately absent here.
type UpdateRequest struct {
	ID       int     `json:"id" binding:"required"`
	Title    *string `json:"title"`
	SprintID *int    `json:"sprintId"`
	OwnerID  *int    `json:"ownerId"`
	Status   *string `json:"status"`
}

// DeleteRequest represents delete release request
type DeleteRequest struct {
	ID int `json:"id" binding:"required"`
}

// ReleaseItemDTO represents a release in API responses
type ReleaseItemDTO struct {
	ID                int     `json:"id"`
	Title             string  `json:"title"`
	ServiceID         int     `json:"serviceId"`
	ServiceName       string  `json:"serviceName"`
	SprintID          *int    `json:"sprintId"`
	DeploymentGroupID *int    `json:"deploymentGroupId"`
	OwnerID           *int    `json:"ownerId"`
	Status            string  `json:"status"`
	IsBlocked         bool    `json:"isBlocked"`
	BlockedReason     *string `json:"blockedReason"`
	StatusChangedAt   *string `json:"statusChangedAt"`
	StagingDeployedAt *string `json:"stagingDeployedAt"`
	ProdDeployedAt    *string `json:"prodDeployedAt"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toDTO(r *model.Release) ReleaseItemDTO {
	serviceName := ""
	if r.Service != nil {
		serviceName = r.Service.Name
	}

	return ReleaseItemDTO{
		ID:                r.ID,
		Title:             r.Title,
		ServiceID:         r.ServiceID,
		ServiceName:       serviceName,
		SprintID:          r.SprintID,
		DeploymentGroupID: r.DeploymentGroupID,
		OwnerID:           r.OwnerID,
		Status:            string(r.Status),
		IsBlocked:         r.IsBlocked,
		BlockedReason:     r.BlockedReason,
		StatusChangedAt:   formatTime(r.StatusChangedAt),
		StagingDeployedAt: formatTime(r.StagingDeployedAt),
		ProdDeployedAt:    formatTime(r.ProdDeployedAt),
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         r.UpdatedAt.Format(time.RFC3339),
	}
}
