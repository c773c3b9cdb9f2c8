package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is an appointment lifecycle state. The only legal edges are
// PENDING→CONFIRMED, PENDING→CANCELLED, CONFIRMED→COMPLETED and
// CONFIRMED→CANCELLED; COMPLETED and CANCELLED are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions exist from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the edge s→next exists in the state
// machine. Everything not listed is rejected, including self-edges.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	case StatusCompleted, StatusCancelled:
		return false
	}
	return false
}

// Appointment maps to the appointment table. Rows are never deleted;
// cancellation is a terminal status with bookkeeping fields.
type Appointment struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID           uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	ScheduledTime      time.Time  `db:"scheduled_time" json:"scheduled_time"`
	Status             Status     `db:"status" json:"status"`
	Reason             string     `db:"reason" json:"reason"`
	CancelledBy        *uuid.UUID `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Slot is the conflict-detection key: one doctor, one instant.
type Slot struct {
	DoctorID uuid.UUID
	At       time.Time
}

func (a *Appointment) Slot() Slot {
	return Slot{DoctorID: a.DoctorID, At: a.ScheduledTime}
}
