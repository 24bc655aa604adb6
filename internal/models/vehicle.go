package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents a produced vehicle moving through the quality line.
//
// Timestamps are kept as the raw strings the backend stores so that a
// malformed value can be reported instead of failing the whole record.
type Vehicle struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChassisNumber   string             `bson:"chassis_number" json:"chassis_number"`
	Model           string             `bson:"model" json:"model"`
	Customer        string             `bson:"customer" json:"customer"`
	Status          string             `bson:"status" json:"status"`
	StatusEnteredAt string             `bson:"status_entered_at,omitempty" json:"status_entered_at,omitempty"`
	ReworkCycles    []ReworkCycle      `bson:"rework_cycles,omitempty" json:"rework_cycles,omitempty"`
	CreatedAt       string             `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// ReworkCycle is a fault/rework sub-record attached to a vehicle. An empty
// EndedAt means the cycle is still open.
type ReworkCycle struct {
	StartedAt string `bson:"started_at" json:"started_at"`
	EndedAt   string `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
	Reason    string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// IDHex returns the hex form of the vehicle ID, or "" when unset.
func (v *Vehicle) IDHex() string {
	if v.ID.IsZero() {
		return ""
	}
	return v.ID.Hex()
}

// OpenReworkCycle returns the index of the most recently appended open cycle, or -1.
func (v *Vehicle) OpenReworkCycle() int {
	for i := len(v.ReworkCycles) - 1; i >= 0; i-- {
		if v.ReworkCycles[i].EndedAt == "" {
			return i
		}
	}
	return -1
}
