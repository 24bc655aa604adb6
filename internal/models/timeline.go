package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType is the closed set of timeline transitions a vehicle can record.
type EventType string

const (
	EventQualityEntry           EventType = "quality_entry"
	EventControlStart           EventType = "control_start"
	EventControlEnd             EventType = "control_end"
	EventReworkStart            EventType = "rework_start"
	EventReworkEnd              EventType = "rework_end"
	EventWaitingForShippingInfo EventType = "waiting_for_shipping_info"
	EventReadyToShip            EventType = "ready_to_ship"
	EventShipped                EventType = "shipped"
	EventArgeSent               EventType = "arge_sent"
	EventArgeReturned           EventType = "arge_returned"
)

// EventTypes lists every valid event type in line order.
var EventTypes = []EventType{
	EventQualityEntry,
	EventControlStart,
	EventControlEnd,
	EventReworkStart,
	EventReworkEnd,
	EventArgeSent,
	EventArgeReturned,
	EventWaitingForShippingInfo,
	EventReadyToShip,
	EventShipped,
}

// IsValidEventType checks if an event type belongs to the closed set.
func IsValidEventType(t EventType) bool {
	for _, et := range EventTypes {
		if et == t {
			return true
		}
	}
	return false
}

// TimelineEvent is one timestamped state transition of a vehicle.
type TimelineEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID string             `bson:"vehicle_id" json:"vehicle_id"`
	EventType EventType          `bson:"event_type" json:"event_type"`
	Timestamp string             `bson:"timestamp" json:"timestamp"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// EventInput is the payload used to record a new timeline event.
type EventInput struct {
	EventType EventType `json:"event_type"`
	Timestamp string    `json:"timestamp,omitempty"`
	Notes     string    `json:"notes,omitempty"`
}

// TimestampLayout is the fixed-width UTC layout used for stored timestamps so
// that lexical order in the database matches chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
