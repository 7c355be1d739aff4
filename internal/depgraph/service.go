package depgraph

import (
	"errors"
	"fmt"
	"time"

	"shipboard/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier receives blocked-state transitions for outbound messaging.
// Implementations must be fire-and-forget: failures never reach the caller.
type Notifier interface {
	HandleBlockedChange(release *model.Release, wasBlocked, isBlocked bool, reason string)
}

// Recorder appends audit records. Implementations must not fail the caller.
type Recorder interface {
	Record(teamID int, releaseID *int, activityType, message string, metadata map[string]interface{})
}

// Service owns the release dependency graph: edge CRUD, cycle prevention,
// blocked-status resolution and propagation to dependents.
type Service struct {
	db       *gorm.DB
	logger   *logrus.Entry
	notifier Notifier
	recorder Recorder
}

// NewService creates a dependency graph service. notifier and recorder may
// be nil; the corresponding side effects are then skipped.
func NewService(db *gorm.DB, logger *logrus.Entry, notifier Notifier, recorder Recorder) *Service {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		db:       db,
		logger:   logger.WithField("component", "depgraph"),
		notifier: notifier,
		recorder: recorder,
	}
}

// AddDependency inserts a directed edge meaning dependentID cannot proceed
// until blockingID satisfies it. Fails with ErrInvalidDependency on a
// self-edge, ErrDuplicateDependency if the ordered pair already has an edge,
// and ErrCyclicDependency if the edge would close a cycle. The store is left
// untouched on any failure.
func (s *Service) AddDependency(teamID, dependentID, blockingID int, depType model.DependencyType, description string) (*model.ReleaseDependency, error) {
	if dependentID == blockingID {
		return nil, ErrInvalidDependency
	}

	var dependent, blocking model.Release
	if err := s.db.Where("team_id = ?", teamID).First(&dependent, dependentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReleaseNotFound
		}
		return nil, err
	}
	if err := s.db.Where("team_id = ?", teamID).First(&blocking, blockingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReleaseNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&model.ReleaseDependency{}).
		Where("dependent_release_id = ? AND blocking_release_id = ?", dependentID, blockingID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateDependency
	}

	var edges []model.ReleaseDependency
	if err := s.db.Find(&edges).Error; err != nil {
		return nil, err
	}
	if WouldCreateCycle(BuildAdjacency(edges), dependentID, blockingID) {
		return nil, ErrCyclicDependency
	}

	edge := model.ReleaseDependency{
		DependentReleaseID: dependentID,
		BlockingReleaseID:  blockingID,
		Type:               depType,
		Description:        description,
		IsResolved:         false,
	}
	if err := s.db.Create(&edge).Error; err != nil {
		return nil, err
	}

	if err := s.RecalculateBlockedStatus(dependentID); err != nil {
		s.logger.Warnf("recalculate after add dependency %d failed: %v", edge.ID, err)
	}

	s.record(teamID, dependentID, model.ActivityDependencyAdded,
		fmt.Sprintf("%q now depends on %q", dependent.Title, blocking.Title),
		map[string]interface{}{
			"dependency_id":       edge.ID,
			"blocking_release_id": blockingID,
			"type":                string(depType),
		})

	return &edge, nil
}

// RemoveDependency deletes an edge and recomputes the former dependent's
// blocked state.
func (s *Service) RemoveDependency(teamID, edgeID int) error {
	edge, err := s.findEdge(teamID, edgeID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&model.ReleaseDependency{}, edge.ID).Error; err != nil {
		return err
	}

	if err := s.RecalculateBlockedStatus(edge.DependentReleaseID); err != nil {
		s.logger.Warnf("recalculate after remove dependency %d failed: %v", edge.ID, err)
	}

	s.record(teamID, edge.DependentReleaseID, model.ActivityDependencyRemoved,
		"Dependency removed",
		map[string]interface{}{
			"dependency_id":       edge.ID,
			"blocking_release_id": edge.BlockingReleaseID,
		})

	return nil
}

// SetResolved marks an edge resolved or unresolved and recomputes the
// dependent's blocked state. An activity record is emitted only when the
// value actually changed.
func (s *Service) SetResolved(teamID, edgeID int, isResolved bool) (*model.ReleaseDependency, error) {
	edge, err := s.findEdge(teamID, edgeID)
	if err != nil {
		return nil, err
	}

	changed := edge.IsResolved != isResolved
	if changed {
		var resolvedAt *time.Time
		if isResolved {
			now := time.Now()
			resolvedAt = &now
		}
		if err := s.db.Model(edge).Updates(map[string]interface{}{
			"is_resolved": isResolved,
			"resolved_at": resolvedAt,
		}).Error; err != nil {
			return nil, err
		}
		edge.IsResolved = isResolved
		edge.ResolvedAt = resolvedAt
	}

	if err := s.RecalculateBlockedStatus(edge.DependentReleaseID); err != nil {
		s.logger.Warnf("recalculate after resolve dependency %d failed: %v", edge.ID, err)
	}

	if changed {
		message := "Dependency marked resolved"
		if !isResolved {
			message = "Dependency marked unresolved"
		}
		s.record(teamID, edge.DependentReleaseID, model.ActivityDependencyResolved,
			message,
			map[string]interface{}{
				"dependency_id": edge.ID,
				"is_resolved":   isResolved,
			})
	}

	return edge, nil
}

// ListForRelease returns the release's edges in both directions
func (s *Service) ListForRelease(teamID, releaseID int) (dependsOn, dependedOnBy []model.ReleaseDependency, err error) {
	var release model.Release
	if err = s.db.Where("team_id = ?", teamID).First(&release, releaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrReleaseNotFound
		}
		return nil, nil, err
	}

	if err = s.db.Where("dependent_release_id = ?", releaseID).
		Order("id ASC").Preload("BlockingRelease").
		Find(&dependsOn).Error; err != nil {
		return nil, nil, err
	}
	if err = s.db.Where("blocking_release_id = ?", releaseID).
		Order("id ASC").Preload("DependentRelease").
		Find(&dependedOnBy).Error; err != nil {
		return nil, nil, err
	}
	return dependsOn, dependedOnBy, nil
}

// RemoveEdgesForRelease drops every edge touching the release and returns
// the former dependents so callers can recompute them after deletion.
func (s *Service) RemoveEdgesForRelease(releaseID int) ([]int, error) {
	var edges []model.ReleaseDependency
	if err := s.db.
		Where("dependent_release_id = ? OR blocking_release_id = ?", releaseID, releaseID).
		Find(&edges).Error; err != nil {
		return nil, err
	}

	dependents := make([]int, 0, len(edges))
	seen := make(map[int]bool)
	for _, e := range edges {
		if e.BlockingReleaseID == releaseID && !seen[e.DependentReleaseID] {
			seen[e.DependentReleaseID] = true
			dependents = append(dependents, e.DependentReleaseID)
		}
	}

	if len(edges) > 0 {
		if err := s.db.
			Where("dependent_release_id = ? OR blocking_release_id = ?", releaseID, releaseID).
			Delete(&model.ReleaseDependency{}).Error; err != nil {
			return nil, err
		}
	}

	return dependents, nil
}

// findEdge loads an edge and checks that its dependent release belongs to
// the caller's team.
func (s *Service) findEdge(teamID, edgeID int) (*model.ReleaseDependency, error) {
	var edge model.ReleaseDependency
	if err := s.db.Preload("DependentRelease").First(&edge, edgeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDependencyNotFound
		}
		return nil, err
	}
	if edge.DependentRelease == nil || edge.DependentRelease.TeamID != teamID {
		return nil, ErrDependencyNotFound
	}
	return &edge, nil
}

func (s *Service) record(teamID, releaseID int, activityType, message string, metadata map[string]interface{}) {
	if s.recorder == nil {
		return
	}
	id := releaseID
	s.recorder.Record(teamID, &id, activityType, message, metadata)
}
