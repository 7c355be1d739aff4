package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"shipboard/internal/db"
	"shipboard/internal/model"

	"gorm.io/gorm"
)

const releasesTopic = "releases"

// PublishReleaseEvent journals a release event and broadcasts it to all
// connected clients. eventType is one of "add", "update", "delete".
func PublishReleaseEvent(eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WebSocket] Failed to marshal payload: %v", err)
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := model.WSEvent{
		Topic:     releasesTopic,
		EventType: eventType,
		Payload:   string(payloadJSON),
	}

	if err := db.GetDB().Create(&event).Error; err != nil {
		log.Printf("[WebSocket] Failed to write event to database: %v", err)
		return fmt.Errorf("failed to write event to database: %w", err)
	}

	// Broadcast failure cannot affect the main flow
	BroadcastToAll("releases:update", map[string]interface{}{
		"eventId": event.ID,
		"type":    eventType,
		"data":    payload,
	})

	return nil
}

// GetIncrementalEvents retrieves events with id > lastEventID, limited to maxCount
func GetIncrementalEvents(lastEventID int64, maxCount int) ([]model.WSEvent, error) {
	var events []model.WSEvent

	err := db.GetDB().
		Where("topic = ? AND id > ?", releasesTopic, lastEventID).
		Order("id ASC").
		Limit(maxCount).
		Find(&events).Error

	if err != nil {
		return nil, fmt.Errorf("failed to query incremental events: %w", err)
	}

	return events, nil
}

// GetLatestEventID retrieves the newest journaled event id, 0 when empty
func GetLatestEventID() (int64, error) {
	var event model.WSEvent

	err := db.GetDB().
		Where("topic = ?", releasesTopic).
		Order("id DESC").
		Limit(1).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query latest event: %w", err)
	}

	return event.ID, nil
}
