package appointment

import (
	"time"

	"github.com/red095/clinic-management/internal/domain/access"
	"github.com/red095/clinic-management/internal/domain/identity"
	"github.com/red095/clinic-management/internal/platform/clock"
)

// BookingHorizon is how far ahead an appointment may be scheduled. The
// upper bound is inclusive: exactly now+horizon is accepted.
const BookingHorizon = 90 * 24 * time.Hour

// Validator decides whether a proposed booking may be created. It is pure
// over its inputs and the injected clock; the slot-occupancy fact is
// supplied by the caller, which queries it inside the same transaction as
// the subsequent insert.
type Validator struct {
	clock clock.Clock
}

func NewValidator(c clock.Clock) *Validator {
	return &Validator{clock: c}
}

// CheckRoles verifies the requester is a patient and the target a doctor.
func (v *Validator) CheckRoles(requester, doctor *identity.User) error {
	if requester == nil || doctor == nil {
		return ErrRoleViolation
	}
	if !access.CanPatientBook(requester) {
		return ErrRoleViolation
	}
	if !doctor.IsDoctor() {
		return ErrRoleViolation
	}
	return nil
}

// CheckWindow verifies the scheduled time against the clock read now:
// strictly in the future and at most BookingHorizon ahead (inclusive).
func (v *Validator) CheckWindow(at time.Time) error {
	now := v.clock.Now()
	if !at.After(now) {
		return ErrPastTime
	}
	if at.After(now.Add(BookingHorizon)) {
		return ErrHorizonExceeded
	}
	return nil
}

// CheckSlot verifies the slot is free of PENDING and CONFIRMED
// appointments. This pre-creation check is stricter than the
// confirmed-slot uniqueness invariant on purpose: it also blocks a second
// PENDING request for the same slot.
func (v *Validator) CheckSlot(slotBusy bool) error {
	if slotBusy {
		return ErrSlotTaken
	}
	return nil
}

// Validate runs all checks in order; the first failure wins.
func (v *Validator) Validate(requester, doctor *identity.User, at time.Time, slotBusy bool) error {
	if err := v.CheckRoles(requester, doctor); err != nil {
		return err
	}
	if err := v.CheckWindow(at); err != nil {
		return err
	}
	return v.CheckSlot(slotBusy)
}
