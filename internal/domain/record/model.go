package record

import (
	"time"

	"github.com/google/uuid"
)

// Record is the immutable clinical outcome of one completed appointment.
// Patient and doctor ids are denormalized from the appointment at creation
// time so the record stays self-contained even if the appointment row is
// ever archived. There is no UpdatedAt: rows are written once.
type Record struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Diagnosis     string    `db:"diagnosis" json:"diagnosis"`
	Prescription  string    `db:"prescription" json:"prescription,omitempty"`
	Notes         string    `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
