package deploygroup

import (
	"errors"
	"fmt"
	"time"

	"shipboard/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrGroupNotFound is returned when the deployment group does not exist or
// belongs to another team.
var ErrGroupNotFound = errors.New("deployment group not found")

// Recorder appends audit records. Implementations must not fail the caller.
type Recorder interface {
	Record(teamID int, releaseID *int, activityType, message string, metadata map[string]interface{})
}

// Service derives deployment group status from member release statuses
type Service struct {
	db       *gorm.DB
	logger   *logrus.Entry
	recorder Recorder
}

// NewService creates a deployment group service. recorder may be nil.
func NewService(db *gorm.DB, logger *logrus.Entry, recorder Recorder) *Service {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		db:       db,
		logger:   logger.WithField("component", "deploygroup"),
		recorder: recorder,
	}
}

// UpdateStatus recomputes a group's status from its members. No write is
// issued when the derived status matches the stored one. deployed_at is
// stamped on the first transition into deployed and never overwritten.
// A group with no members is left untouched.
func (s *Service) UpdateStatus(groupID int) error {
	var group model.DeploymentGroup
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	var statuses []model.ReleaseStatus
	if err := s.db.Model(&model.Release{}).
		Where("deployment_group_id = ?", groupID).
		Pluck("status", &statuses).Error; err != nil {
		return err
	}
	if len(statuses) == 0 {
		return nil
	}

	computed := ComputeStatus(statuses)
	if computed == group.Status {
		return nil
	}

	updates := map[string]interface{}{"status": computed}
	if computed == model.DeploymentGroupStatusDeployed && group.DeployedAt == nil {
		now := time.Now()
		updates["deployed_at"] = &now
	}

	if err := s.db.Model(&group).Updates(updates).Error; err != nil {
		return err
	}

	if s.recorder != nil {
		s.recorder.Record(group.TeamID, nil, model.ActivityGroupStatusChanged,
			fmt.Sprintf("Deployment group %q is now %s", group.Name, computed),
			map[string]interface{}{
				"group_id":   group.ID,
				"old_status": string(group.Status),
				"new_status": string(computed),
			})
	}

	return nil
}

// Get loads a team's group together with its member releases
func (s *Service) Get(teamID, groupID int) (*model.DeploymentGroup, error) {
	var group model.DeploymentGroup
	if err := s.db.Where("team_id = ?", teamID).
		Preload("Releases").
		First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}
