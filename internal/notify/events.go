package notify

import (
	"fmt"

	"shipboard/internal/model"
)

// EventKind classifies outbound notification events
type EventKind string

const (
	EventStatusChanged EventKind = "status_changed"
	EventReadyToDeploy EventKind = "ready_to_deploy"
	EventBlocked       EventKind = "blocked"
	EventUnblocked     EventKind = "unblocked"
)

// defaultBlockedReason is used when a blocked transition carries no reason
const defaultBlockedReason = "This release is blocked by a dependency"

// Event is a fully-composed notification ready for delivery
type Event struct {
	Kind        EventKind
	Text        string
	Environment string
}

// StatusChangeEvents composes the events for a status transition: always a
// generic status-changed event, plus a ready-to-deploy event when the new
// status means a deploy can start (ready_staging for staging,
// staging_verified/ready_production for production).
func StatusChangeEvents(title string, oldStatus, newStatus model.ReleaseStatus) []Event {
	events := []Event{{
		Kind: EventStatusChanged,
		Text: fmt.Sprintf("%s moved from %s to %s", title, oldStatus, newStatus),
	}}

	switch newStatus {
	case model.ReleaseStatusReadyStaging:
		events = append(events, Event{
			Kind:        EventReadyToDeploy,
			Text:        fmt.Sprintf("%s is ready to deploy to staging", title),
			Environment: "staging",
		})
	case model.ReleaseStatusStagingVerified, model.ReleaseStatusReadyProduction:
		events = append(events, Event{
			Kind:        EventReadyToDeploy,
			Text:        fmt.Sprintf("%s is ready to deploy to production", title),
			Environment: "production",
		})
	}

	return events
}

// BlockedChangeEvents composes the events for a blocked-state transition.
// Only the boolean edge matters: false->true fires blocked (with the reason,
// defaulted when empty), true->false fires unblocked, anything else fires
// nothing even if the reason text changed.
func BlockedChangeEvents(title string, wasBlocked, isBlocked bool, reason string) []Event {
	switch {
	case !wasBlocked && isBlocked:
		if reason == "" {
			reason = defaultBlockedReason
		}
		return []Event{{
			Kind: EventBlocked,
			Text: fmt.Sprintf("%s is blocked. %s", title, reason),
		}}
	case wasBlocked && !isBlocked:
		return []Event{{
			Kind: EventUnblocked,
			Text: fmt.Sprintf("%s is no longer blocked", title),
		}}
	}
	return nil
}
