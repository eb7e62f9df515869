package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScheduleUpdatedEvent struct {
	Type      string    `json:"type"`
	VenueID   uuid.UUID `json:"venue_id"`
	Month     string    `json:"month"`
	Timestamp string    `json:"timestamp"`
}

// ScheduleUpdated tells everyone watching the venue that a month of its
// calendar changed and should be refetched.
func (h *Hub) ScheduleUpdated(venueID uuid.UUID, month string) {
	if h == nil {
		return
	}
	evt := ScheduleUpdatedEvent{
		Type:      "schedule_updated",
		VenueID:   venueID,
		Month:     month,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("encode schedule event", zap.Error(err))
		return
	}
	h.Broadcast(venueID, b)
}
