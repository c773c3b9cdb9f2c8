package appointment

import "errors"

// Validation outcomes returned by the booking validator and the state
// machine. All are recoverable by the caller; a rejected operation leaves
// the store untouched. Infrastructure failures (store unreachable) are
// returned as ordinary wrapped errors and never masked by these.
var (
	// ErrNotFound reports that no appointment exists for the given id.
	ErrNotFound = errors.New("appointment not found")

	// ErrRoleViolation reports that the requester is not a patient or the
	// target doctor id does not resolve to a doctor.
	ErrRoleViolation = errors.New("role violation")

	// ErrPastTime reports a scheduled time that is not strictly in the future.
	ErrPastTime = errors.New("scheduled time is in the past")

	// ErrHorizonExceeded reports a scheduled time beyond the booking horizon.
	ErrHorizonExceeded = errors.New("scheduled time exceeds booking horizon")

	// ErrSlotTaken reports a pending or confirmed appointment already holding
	// the slot at booking time.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrDoubleBooked reports a confirm that would create a second CONFIRMED
	// appointment on the same slot.
	ErrDoubleBooked = errors.New("doctor already confirmed for this slot")

	// ErrInvalidTransition reports a state-machine edge that does not exist.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotOwner reports an actor who is not authorized for the appointment.
	ErrNotOwner = errors.New("not the appointment owner")
)
