package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus is the attendance state of a registration.
// The only legal transition is registered -> attended; it is irreversible.
type AttendanceStatus string

const (
	StatusRegistered AttendanceStatus = "registered"
	StatusAttended   AttendanceStatus = "attended"
)

// Registration is one subject's claim to attend one event.
//
// TicketHash holds the SHA-256 hex of the currently valid ticket secret;
// it is nil until a ticket is issued and overwritten on each re-issuance,
// which invalidates every previously issued secret. The raw secret is
// never persisted.
type Registration struct {
	ID              uuid.UUID        `json:"id"`
	EventID         uuid.UUID        `json:"event_id"`
	UserID          uuid.UUID        `json:"user_id"`
	TicketHash      *string          `json:"-"`
	Status          AttendanceStatus `json:"status"`
	CheckInAt       *time.Time       `json:"check_in_at,omitempty"`
	CheckedInBy     *uuid.UUID       `json:"checked_in_by,omitempty"`
	AttendanceNotes *string          `json:"attendance_notes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
