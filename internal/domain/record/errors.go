package record

import "errors"

var (
	// ErrNotFound reports that no record exists for the given id.
	ErrNotFound = errors.New("record not found")

	// ErrAppointmentNotCompleted reports a creation attempt against an
	// appointment that has not reached COMPLETED.
	ErrAppointmentNotCompleted = errors.New("appointment is not completed")

	// ErrAlreadyExists reports a second record for the same appointment.
	ErrAlreadyExists = errors.New("record already exists for this appointment")

	// ErrImmutable reports an update or delete attempt. Records are
	// write-once; no operation modifies them after creation.
	ErrImmutable = errors.New("clinical records are immutable")

	// ErrPermissionDenied reports an actor without the right to perform the
	// operation at all, independent of ownership.
	ErrPermissionDenied = errors.New("permission denied")
)
