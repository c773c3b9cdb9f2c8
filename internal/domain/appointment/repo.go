package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SortOrder controls scheduled_time ordering on list queries: ascending
// for upcoming views, descending for history.
type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

// Filter narrows list queries by status and time range.
type Filter struct {
	Status *Status
	From   *time.Time
	To     *time.Time
	Order  SortOrder
	Limit  int
	Offset int
}

// Repository is the appointment store. Mutating methods participate in the
// transaction carried by the context, so a service composes lock + check +
// write into one atomic unit.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// GetForUpdate locks the row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// LockSlot serializes concurrent writers on one slot for the rest of
	// the transaction, closing the check-then-insert race.
	LockSlot(ctx context.Context, s Slot) error
	// SlotBusy reports a PENDING or CONFIRMED appointment on the slot.
	SlotBusy(ctx context.Context, s Slot) (bool, error)
	// ConfirmedAtSlot reports a CONFIRMED appointment on the slot other
	// than excludeID.
	ConfirmedAtSlot(ctx context.Context, s Slot, excludeID uuid.UUID) (bool, error)
	// UpdateStatus writes the status and cancellation bookkeeping fields.
	// No other column is touched once an appointment exists.
	UpdateStatus(ctx context.Context, a *Appointment) error
	ListForPatient(ctx context.Context, patientID uuid.UUID, f Filter) ([]*Appointment, int, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, f Filter) ([]*Appointment, int, error)
}

// TxRunner executes a closure inside a single store transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
