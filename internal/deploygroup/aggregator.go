package deploygroup

import "shipboard/internal/model"

// ComputeStatus rolls up member release statuses into one group status.
// Rules apply in order, first match wins:
//  1. every member cancelled -> cancelled
//  2. every non-cancelled member deployed -> deployed
//  3. every non-cancelled member ready_staging -> ready
//  4. any non-cancelled member in staging or ready for production -> deploying
//  5. otherwise -> pending
func ComputeStatus(statuses []model.ReleaseStatus) model.DeploymentGroupStatus {
	nonCancelled := make([]model.ReleaseStatus, 0, len(statuses))
	for _, s := range statuses {
		if s != model.ReleaseStatusCancelled {
			nonCancelled = append(nonCancelled, s)
		}
	}

	if len(nonCancelled) == 0 {
		return model.DeploymentGroupStatusCancelled
	}

	if all(nonCancelled, model.ReleaseStatusDeployed) {
		return model.DeploymentGroupStatusDeployed
	}

	if all(nonCancelled, model.ReleaseStatusReadyStaging) {
		return model.DeploymentGroupStatusReady
	}

	for _, s := range nonCancelled {
		switch s {
		case model.ReleaseStatusInStaging, model.ReleaseStatusStagingVerified, model.ReleaseStatusReadyProduction:
			return model.DeploymentGroupStatusDeploying
		}
	}

	return model.DeploymentGroupStatusPending
}

func all(statuses []model.ReleaseStatus, want model.ReleaseStatus) bool {
	for _, s := range statuses {
		if s != want {
			return false
		}
	}
	return true
}
