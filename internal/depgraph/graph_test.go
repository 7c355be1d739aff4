package depgraph

import (
	"testing"

	"shipboard/internal/model"
)

func edge(dependent, blocking int, depType model.DependencyType) model.ReleaseDependency {
	return model.ReleaseDependency{
		DependentReleaseID: dependent,
		BlockingReleaseID:  blocking,
		Type:               depType,
	}
}

func TestWouldCreateCycle(t *testing.T) {
	tests := []struct {
		name      string
		edges     []model.ReleaseDependency
		dependent int
		blocking  int
		want      bool
	}{
		{
			name:      "self edge",
			edges:     nil,
			dependent: 1,
			blocking:  1,
			want:      true,
		},
		{
			name:      "empty graph",
			edges:     nil,
			dependent: 1,
			blocking:  2,
			want:      false,
		},
		{
			name: "direct back edge",
			edges: []model.ReleaseDependency{
				edge(1, 2, model.DependencyTypeBlocks),
			},
			dependent: 2,
			blocking:  1,
			want:      true,
		},
		{
			name: "chain closes cycle",
			// A -> B -> C; adding C -> A closes the loop
			edges: []model.ReleaseDependency{
				edge(1, 2, model.DependencyTypeBlocks),
				edge(2, 3, model.DependencyTypeBlocks),
			},
			dependent: 3,
			blocking:  1,
			want:      true,
		},
		{
			name: "chain same direction is fine",
			edges: []model.ReleaseDependency{
				edge(1, 2, model.DependencyTypeBlocks),
				edge(2, 3, model.DependencyTypeBlocks),
			},
			dependent: 1,
			blocking:  3,
			want:      false,
		},
		{
			name: "cycle through informational edges still rejected",
			edges: []model.ReleaseDependency{
				edge(1, 2, model.DependencyTypeSoftDependency),
				edge(2, 3, model.DependencyTypeRequiresSync),
			},
			dependent: 3,
			blocking:  1,
			want:      true,
		},
		{
			name: "diamond without cycle",
			edges: []model.ReleaseDependency{
				edge(1, 2, model.DependencyTypeBlocks),
				edge(1, 3, model.DependencyTypeBlocks),
				edge(2, 4, model.DependencyTypeBlocks),
				edge(3, 4, model.DependencyTypeBlocks),
			},
			dependent: 5,
			blocking:  4,
			want:      false,
		},
		{
			name: "disconnected component",
			edges: []model.ReleaseDependency{
				edge(10, 11, model.DependencyTypeBlocks),
			},
			dependent: 1,
			blocking:  2,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := BuildAdjacency(tt.edges)
			got := WouldCreateCycle(adj, tt.dependent, tt.blocking)
			if got != tt.want {
				t.Errorf("WouldCreateCycle(%d -> %d) = %v, want %v",
					tt.dependent, tt.blocking, got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	release := func(title string, status model.ReleaseStatus) *model.Release {
		return &model.Release{Title: title, Status: status}
	}

	tests := []struct {
		name       string
		edges      []model.ReleaseDependency
		wantBlock  bool
		wantReason string
	}{
		{
			name:      "no edges",
			edges:     nil,
			wantBlock: false,
		},
		{
			name: "unresolved blocks edge on active blocker",
			edges: []model.ReleaseDependency{
				{Type: model.DependencyTypeBlocks, BlockingRelease: release("Auth service v2", model.ReleaseStatusInDevelopment)},
			},
			wantBlock:  true,
			wantReason: "Blocked by: Auth service v2 (in_development)",
		},
		{
			name: "deployed blocker releases the dependent",
			edges: []model.ReleaseDependency{
				{Type: model.DependencyTypeBlocks, BlockingRelease: release("Auth service v2", model.ReleaseStatusDeployed)},
			},
			wantBlock: false,
		},
		{
			name: "cancelled blocker releases the dependent",
			edges: []model.ReleaseDependency{
				{Type: model.DependencyTypeBlocks, BlockingRelease: release("Auth service v2", model.ReleaseStatusCancelled)},
			},
			wantBlock: false,
		},
		{
			name: "rolled back blocker still blocks",
			edges: []model.ReleaseDependency{
				{Type: model.DependencyTypeBlocks, BlockingRelease: release("Auth service v2", model.ReleaseStatusRolledBack)},
			},
			wantBlock:  true,
			wantReason: "Blocked by: Auth service v2 (rolled_back)",
		},
		{
			name: "resolved edge does not block",
			edges: []model.ReleaseDependency{
				{Type: model.DependencyTypeBlocks, IsResolved: true, BlockingRelease: release("Auth service v2", model.ReleaseStatusPlanning)},
			},
			wantBlock: false,
		},
		{
			name: "informational edges never block",
			edges: []model.ReleaseDependency{
				{Type: model.DependencyTypeSoftDependency, BlockingRelease: release("A", model.ReleaseStatusPlanning)},
				{Type: model.DependencyTypeRequiresSync, BlockingRelease: release("B", model.ReleaseStatusPlanning)},
			},
			wantBlock: false,
		},
		{
			name: "first qualifying edge supplies the reason",
			edges: []model.ReleaseDependency{
				{Type: model.DependencyTypeBlocks, IsResolved: true, BlockingRelease: release("Resolved one", model.ReleaseStatusPlanning)},
				{Type: model.DependencyTypeBlocks, BlockingRelease: release("First active", model.ReleaseStatusInReview)},
				{Type: model.DependencyTypeBlocks, BlockingRelease: release("Second active", model.ReleaseStatusPlanning)},
			},
			wantBlock:  true,
			wantReason: "Blocked by: First active (in_review)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, reason := Evaluate(tt.edges)
			if blocked != tt.wantBlock {
				t.Fatalf("Evaluate() blocked = %v, want %v", blocked, tt.wantBlock)
			}
			if tt.wantBlock {
				if reason == nil {
					t.Fatal("Evaluate() reason = nil, want non-nil")
				}
				if *reason != tt.wantReason {
					t.Errorf("Evaluate() reason = %q, want %q", *reason, tt.wantReason)
				}
			} else if reason != nil {
				t.Errorf("Evaluate() reason = %q, want nil", *reason)
			}
		})
	}
}
