package activity

import (
	"encoding/json"

	"shipboard/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder appends structured audit records. Writes are fire-and-forget
// from the caller's perspective: a failed insert is logged and swallowed so
// it can never fail the triggering mutation.
type Recorder struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewRecorder creates an activity recorder
func NewRecorder(db *gorm.DB, logger *logrus.Entry) *Recorder {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Recorder{
		db:     db,
		logger: logger.WithField("component", "activity"),
	}
}

// Record appends one activity row. metadata may be nil.
func (r *Recorder) Record(teamID int, releaseID *int, activityType, message string, metadata map[string]interface{}) {
	var meta datatypes.JSON
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			r.logger.Warnf("Failed to marshal activity metadata: %v", err)
		} else {
			meta = datatypes.JSON(raw)
		}
	}

	record := model.Activity{
		Type:      activityType,
		Message:   message,
		Metadata:  meta,
		TeamID:    teamID,
		ReleaseID: releaseID,
	}

	if err := r.db.Create(&record).Error; err != nil {
		r.logger.Errorf("Failed to record activity %q: %v", activityType, err)
	}
}
