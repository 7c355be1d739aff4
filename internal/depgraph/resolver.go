package depgraph

import (
	"errors"
	"fmt"

	"shipboard/internal/model"

	"gorm.io/gorm"
)

// Evaluate computes the blocked state for a release from its incoming edges.
// Edges must be preloaded with BlockingRelease and ordered by id ascending:
// when several unresolved blockers qualify, the first one in that order
// supplies the reason string, so the stored reason is stable across reruns.
//
// A release is blocked iff at least one blocks-type edge is unresolved and
// its blocking release has not reached a terminal status. rolled_back keeps
// the dependent blocked.
func Evaluate(edges []model.ReleaseDependency) (bool, *string) {
	for _, e := range edges {
		if e.Type != model.DependencyTypeBlocks || e.IsResolved {
			continue
		}
		blocker := e.BlockingRelease
		if blocker == nil {
			continue
		}
		if blocker.Status.Terminal() {
			continue
		}
		reason := fmt.Sprintf("Blocked by: %s (%s)", blocker.Title, blocker.Status)
		return true, &reason
	}
	return false, nil
}

// RecalculateBlockedStatus recomputes and stores is_blocked/blocked_reason
// for a single release. The write is idempotent: unchanged inputs produce
// an identical stored state and no notification. It does not recurse.
func (s *Service) RecalculateBlockedStatus(releaseID int) error {
	var release model.Release
	if err := s.db.First(&release, releaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReleaseNotFound
		}
		return err
	}

	var edges []model.ReleaseDependency
	if err := s.db.
		Where("dependent_release_id = ?", releaseID).
		Order("id ASC").
		Preload("BlockingRelease").
		Find(&edges).Error; err != nil {
		return err
	}

	isBlocked, reason := Evaluate(edges)

	wasBlocked := release.IsBlocked
	sameReason := (reason == nil && release.BlockedReason == nil) ||
		(reason != nil && release.BlockedReason != nil && *reason == *release.BlockedReason)
	if wasBlocked == isBlocked && sameReason {
		return nil
	}

	if err := s.db.Model(&release).Updates(map[string]interface{}{
		"is_blocked":     isBlocked,
		"blocked_reason": reason,
	}).Error; err != nil {
		return err
	}

	release.IsBlocked = isBlocked
	release.BlockedReason = reason

	if s.notifier != nil && wasBlocked != isBlocked {
		reasonText := ""
		if reason != nil {
			reasonText = *reason
		}
		s.notifier.HandleBlockedChange(&release, wasBlocked, isBlocked, reasonText)
	}

	return nil
}
