package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the record store. The interface has no update or delete:
// immutability is structural, not a runtime check that could be bypassed.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	GetByAppointment(ctx context.Context, apptID uuid.UUID) (*Record, error)
	// ExistsForAppointment reports whether a record was already written for
	// the appointment.
	ExistsForAppointment(ctx context.Context, apptID uuid.UUID) (bool, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error)
}

// TxRunner executes a closure inside a single store transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
