package ws

import (
	"encoding/json"
	"log"

	socketio "github.com/googollee/go-socket.io"

	"shipboard/internal/db"
	"shipboard/internal/model"
)

// handleRequestReleases handles the request:releases event: incremental
// catch-up when the client supplies a lastEventId, full list otherwise
func handleRequestReleases(s socketio.Conn, data interface{}) {
	var lastEventID int64
	if dataMap, ok := data.(map[string]interface{}); ok {
		if v, ok := dataMap["lastEventId"].(float64); ok {
			lastEventID = int64(v)
		}
	}

	if lastEventID > 0 {
		if sendIncrementalUpdates(s, lastEventID) {
			return
		}
		log.Printf("[WebSocket] Incremental updates failed, falling back to full list")
	}

	sendFullReleasesList(s)
}

// sendIncrementalUpdates replays journaled events after lastEventID.
// Returns false when the client should receive the full list instead.
func sendIncrementalUpdates(s socketio.Conn, lastEventID int64) bool {
	maxCount := 500
	events, err := GetIncrementalEvents(lastEventID, maxCount)
	if err != nil {
		log.Printf("[WebSocket] Failed to query incremental events: %v", err)
		return false
	}

	// Too many missed events, a full list is cheaper
	if len(events) >= maxCount {
		return false
	}

	if len(events) == 0 {
		latestEventID, _ := GetLatestEventID()
		s.Emit("releases:initial", map[string]interface{}{
			"items":       []interface{}{},
			"total":       0,
			"lastEventId": latestEventID,
		})
		return true
	}

	for _, event := range events {
		var payload interface{}
		if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
			log.Printf("[WebSocket] Failed to unmarshal event payload: %v", err)
			continue
		}

		s.Emit("releases:update", map[string]interface{}{
			"eventId": event.ID,
			"type":    event.EventType,
			"data":    payload,
		})
	}

	return true
}

// sendFullReleasesList sends the current releases to the client
func sendFullReleasesList(s socketio.Conn) {
	query := db.GetDB().Model(&model.Release{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("[WebSocket] Failed to count releases: %v", err)
		s.Emit("error", map[string]interface{}{
			"message": "Failed to query releases",
		})
		return
	}

	var releases []model.Release
	if err := query.Limit(10000).Order("id DESC").Find(&releases).Error; err != nil {
		log.Printf("[WebSocket] Failed to query releases: %v", err)
		s.Emit("error", map[string]interface{}{
			"message": "Failed to query releases",
		})
		return
	}

	latestEventID, _ := GetLatestEventID()

	s.Emit("releases:initial", map[string]interface{}{
		"items":       releases,
		"total":       total,
		"lastEventId": latestEventID,
	})
}
