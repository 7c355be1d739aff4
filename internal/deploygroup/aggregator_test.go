package deploygroup

import (
	"testing"

	"shipboard/internal/model"
)

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []model.ReleaseStatus
		want     model.DeploymentGroupStatus
	}{
		{
			name:     "all cancelled",
			statuses: []model.ReleaseStatus{model.ReleaseStatusCancelled, model.ReleaseStatusCancelled},
			want:     model.DeploymentGroupStatusCancelled,
		},
		{
			name: "cancelled members ignored for deployed",
			statuses: []model.ReleaseStatus{
				model.ReleaseStatusDeployed,
				model.ReleaseStatusDeployed,
				model.ReleaseStatusCancelled,
			},
			want: model.DeploymentGroupStatusDeployed,
		},
		{
			name:     "all deployed",
			statuses: []model.ReleaseStatus{model.ReleaseStatusDeployed},
			want:     model.DeploymentGroupStatusDeployed,
		},
		{
			name: "all ready for staging",
			statuses: []model.ReleaseStatus{
				model.ReleaseStatusReadyStaging,
				model.ReleaseStatusReadyStaging,
			},
			want: model.DeploymentGroupStatusReady,
		},
		{
			name: "one member mid-deploy",
			statuses: []model.ReleaseStatus{
				model.ReleaseStatusPlanning,
				model.ReleaseStatusInStaging,
			},
			want: model.DeploymentGroupStatusDeploying,
		},
		{
			name: "staging verified counts as deploying",
			statuses: []model.ReleaseStatus{
				model.ReleaseStatusStagingVerified,
				model.ReleaseStatusInDevelopment,
			},
			want: model.DeploymentGroupStatusDeploying,
		},
		{
			name: "ready for production counts as deploying",
			statuses: []model.ReleaseStatus{
				model.ReleaseStatusReadyProduction,
			},
			want: model.DeploymentGroupStatusDeploying,
		},
		{
			name: "mixed early statuses",
			statuses: []model.ReleaseStatus{
				model.ReleaseStatusPlanning,
				model.ReleaseStatusInDevelopment,
				model.ReleaseStatusInReview,
			},
			want: model.DeploymentGroupStatusPending,
		},
		{
			name: "partially deployed is pending",
			statuses: []model.ReleaseStatus{
				model.ReleaseStatusDeployed,
				model.ReleaseStatusPlanning,
			},
			want: model.DeploymentGroupStatusPending,
		},
		{
			name: "rolled back is pending",
			statuses: []model.ReleaseStatus{
				model.ReleaseStatusDeployed,
				model.ReleaseStatusRolledBack,
			},
			want: model.DeploymentGroupStatusPending,
		},
		{
			name: "partially ready is pending",
			statuses: []model.ReleaseStatus{
				model.ReleaseStatusReadyStaging,
				model.ReleaseStatusInReview,
			},
			want: model.DeploymentGroupStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStatus(tt.statuses)
			if got != tt.want {
				t.Errorf("ComputeStatus(%v) = %s, want %s", tt.statuses, got, tt.want)
			}
		})
	}
}
