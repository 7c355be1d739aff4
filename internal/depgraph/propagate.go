package depgraph

import (
	"errors"

	"shipboard/internal/model"
)

// RecalculateDependentBlockedStatus re-resolves the blocked state of every
// release that transitively depends on blockingReleaseID. The walk follows
// the dependent side of the graph breadth-first with a visited set, so it
// terminates on any graph and settles multi-hop chains within one call.
// A failing recomputation is logged and does not stop the rest of the
// fan-out.
func (s *Service) RecalculateDependentBlockedStatus(blockingReleaseID int) {
	visited := map[int]bool{blockingReleaseID: true}
	queue := []int{blockingReleaseID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var edges []model.ReleaseDependency
		if err := s.db.
			Where("blocking_release_id = ?", current).
			Order("id ASC").
			Find(&edges).Error; err != nil {
			s.logger.Errorf("list dependents of release %d failed: %v", current, err)
			continue
		}

		for _, e := range edges {
			dependentID := e.DependentReleaseID
			if visited[dependentID] {
				continue
			}
			visited[dependentID] = true

			if err := s.RecalculateBlockedStatus(dependentID); err != nil {
				if errors.Is(err, ErrReleaseNotFound) {
					s.logger.Warnf("dependent release %d vanished during propagation", dependentID)
				} else {
					s.logger.Errorf("recalculate release %d failed: %v", dependentID, err)
				}
			}

			queue = append(queue, dependentID)
		}
	}
}
