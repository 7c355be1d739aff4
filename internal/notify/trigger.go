package notify

import (
	"errors"

	"shipboard/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Sender delivers a composed message to the team's channel. channel may be
// empty, in which case the destination default applies.
type Sender interface {
	Send(webhookURL, channel, text string) error
}

// Trigger decides from before/after state whether an outbound message is
// warranted and dispatches it without the caller awaiting delivery. Any
// failure is logged and swallowed: the triggering mutation's outcome never
// depends on notification delivery.
type Trigger struct {
	db     *gorm.DB
	logger *logrus.Entry
	sender Sender
}

// NewTrigger creates a notification trigger
func NewTrigger(db *gorm.DB, logger *logrus.Entry, sender Sender) *Trigger {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Trigger{
		db:     db,
		logger: logger.WithField("component", "notify"),
		sender: sender,
	}
}

// HandleStatusChange fires the events for a release status transition,
// honoring the team's opt-outs
func (t *Trigger) HandleStatusChange(release *model.Release, oldStatus, newStatus model.ReleaseStatus) {
	settings := t.settings(release.TeamID)
	for _, ev := range StatusChangeEvents(release.Title, oldStatus, newStatus) {
		switch ev.Kind {
		case EventStatusChanged:
			if !settings.NotifyStatusChanges {
				continue
			}
		case EventReadyToDeploy:
			if !settings.NotifyReadyToDeploy {
				continue
			}
		}
		t.dispatch(settings, ev)
	}
}

// HandleBlockedChange fires the events for a blocked-state transition
func (t *Trigger) HandleBlockedChange(release *model.Release, wasBlocked, isBlocked bool, reason string) {
	settings := t.settings(release.TeamID)
	if !settings.NotifyBlockedChange {
		return
	}
	for _, ev := range BlockedChangeEvents(release.Title, wasBlocked, isBlocked, reason) {
		t.dispatch(settings, ev)
	}
}

// dispatch sends the event in the background; delivery failures are logged
// and never reach the caller
func (t *Trigger) dispatch(settings *model.TeamSettings, ev Event) {
	if t.sender == nil || settings.SlackWebhookURL == "" {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.logger.Errorf("Notification dispatch panicked: %v", r)
			}
		}()
		if err := t.sender.Send(settings.SlackWebhookURL, settings.SlackChannel, ev.Text); err != nil {
			t.logger.WithField("kind", string(ev.Kind)).Warnf("Notification delivery failed: %v", err)
		}
	}()
}

// settings loads the team's notification settings, falling back to defaults
// (all notifications on, no webhook) when none are stored
func (t *Trigger) settings(teamID int) *model.TeamSettings {
	var settings model.TeamSettings
	if err := t.db.Where("team_id = ?", teamID).First(&settings).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.logger.Warnf("Failed to load settings for team %d: %v", teamID, err)
		}
		return &model.TeamSettings{
			TeamID:              teamID,
			NotifyStatusChanges: true,
			NotifyBlockedChange: true,
			NotifyReadyToDeploy: true,
		}
	}
	return &settings
}
