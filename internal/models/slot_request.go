package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SlotRequestStatus enumerates processing states of a client slot request.
type SlotRequestStatus string

const (
	SlotRequestStatusNew       SlotRequestStatus = "NEW"
	SlotRequestStatusProcessed SlotRequestStatus = "PROCESSED"
)

// ProposedSlot is one client-proposed lesson window inside a slot request.
type ProposedSlot struct {
	Start       time.Time `json:"start"`
	DurationMin int       `json:"duration_min"`
}

// SlotRequest bundles the time windows a client asked for. proposed_slots is
// a JSONB column.
type SlotRequest struct {
	ID            string            `db:"id" json:"id"`
	TeacherID     string            `db:"teacher_id" json:"teacher_id"`
	ClientID      string            `db:"client_id" json:"client_id"`
	ClientName    string            `db:"client_name" json:"client_name,omitempty"`
	ProposedSlots types.JSONText    `db:"proposed_slots" json:"proposed_slots"`
	Status        SlotRequestStatus `db:"status" json:"status"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// DecodeProposedSlots unpacks the proposed_slots JSON array.
func (r *SlotRequest) DecodeProposedSlots() []ProposedSlot {
	var slots []ProposedSlot
	if len(r.ProposedSlots) > 0 {
		_ = json.Unmarshal(r.ProposedSlots, &slots)
	}
	return slots
}

// SetProposedSlots encodes the slot list into the JSON column.
func (r *SlotRequest) SetProposedSlots(slots []ProposedSlot) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	r.ProposedSlots = types.JSONText(raw)
	return nil
}
