package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/red095/clinic-management/internal/domain/access"
	"github.com/red095/clinic-management/internal/domain/identity"
)

// Default cancellation reasons recorded when the caller supplies none.
const (
	DefaultDoctorCancelReason  = "Cancelled by doctor"
	DefaultPatientCancelReason = "Cancelled by patient"
)

// Service implements the appointment lifecycle. Every mutating operation
// runs inside a single store transaction: identity resolution, validation,
// slot locking and the write commit or roll back together.
type Service struct {
	repo      Repository
	users     identity.Directory
	tx        TxRunner
	validator *Validator
	log       zerolog.Logger
}

func NewService(repo Repository, users identity.Directory, tx TxRunner, v *Validator, log zerolog.Logger) *Service {
	return &Service{repo: repo, users: users, tx: tx, validator: v, log: log}
}

// BookRequest carries a patient's booking intent. RequesterID comes from
// the authenticated principal, never from the request body.
type BookRequest struct {
	RequesterID   uuid.UUID
	DoctorID      uuid.UUID
	ScheduledTime time.Time
	Reason        string
}

// Book validates and creates a PENDING appointment. The slot check and the
// insert share one transaction serialized per slot, so two concurrent
// requests for the same slot cannot both pass the check.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	var appt *Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		requester, err := s.users.Resolve(ctx, req.RequesterID)
		if err != nil {
			return err
		}
		doctor, err := s.users.Resolve(ctx, req.DoctorID)
		if err != nil {
			// A doctor id that resolves to nothing is indistinguishable
			// from a non-doctor target for the caller.
			if errors.Is(err, identity.ErrNotFound) {
				return ErrRoleViolation
			}
			return err
		}

		slot := Slot{DoctorID: doctor.ID, At: req.ScheduledTime}
		if err := s.repo.LockSlot(ctx, slot); err != nil {
			return err
		}
		busy, err := s.repo.SlotBusy(ctx, slot)
		if err != nil {
			return err
		}
		if err := s.validator.Validate(requester, doctor, req.ScheduledTime, busy); err != nil {
			return err
		}

		appt = &Appointment{
			PatientID:     requester.ID,
			DoctorID:      doctor.ID,
			ScheduledTime: req.ScheduledTime,
			Status:        StatusPending,
			Reason:        req.Reason,
		}
		return s.repo.Create(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("doctor_id", appt.DoctorID.String()).
		Time("scheduled_time", appt.ScheduledTime).
		Msg("appointment booked")
	return appt, nil
}

// Confirm moves a PENDING appointment to CONFIRMED. Only the assigned
// doctor may confirm, and at most one CONFIRMED appointment may exist per
// slot; the scheduling window is not re-checked here.
func (s *Service) Confirm(ctx context.Context, actorID, apptID uuid.UUID) (*Appointment, error) {
	var appt *Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetForUpdate(ctx, apptID)
		if err != nil {
			return err
		}
		actor, err := s.users.Resolve(ctx, actorID)
		if err != nil {
			return err
		}
		if !access.CanDoctorActOn(actor, a.DoctorID) {
			return ErrNotOwner
		}
		if !a.Status.CanTransitionTo(StatusConfirmed) {
			return ErrInvalidTransition
		}
		if err := s.repo.LockSlot(ctx, a.Slot()); err != nil {
			return err
		}
		taken, err := s.repo.ConfirmedAtSlot(ctx, a.Slot(), a.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDoubleBooked
		}
		a.Status = StatusConfirmed
		if err := s.repo.UpdateStatus(ctx, a); err != nil {
			return err
		}
		appt = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("appointment_id", appt.ID.String()).Msg("appointment confirmed")
	return appt, nil
}

// Cancel moves a PENDING or CONFIRMED appointment to CANCELLED. The
// assigned doctor or the booking patient may cancel; the actor and reason
// are recorded on the row.
func (s *Service) Cancel(ctx context.Context, actorID, apptID uuid.UUID, reason string) (*Appointment, error) {
	var appt *Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetForUpdate(ctx, apptID)
		if err != nil {
			return err
		}
		actor, err := s.users.Resolve(ctx, actorID)
		if err != nil {
			return err
		}
		if !access.CanCancel(actor, a.PatientID, a.DoctorID) {
			return ErrNotOwner
		}
		if !a.Status.CanTransitionTo(StatusCancelled) {
			return ErrInvalidTransition
		}
		if reason == "" {
			if actor.IsDoctor() {
				reason = DefaultDoctorCancelReason
			} else {
				reason = DefaultPatientCancelReason
			}
		}
		a.Status = StatusCancelled
		a.CancelledBy = &actor.ID
		a.CancellationReason = &reason
		if err := s.repo.UpdateStatus(ctx, a); err != nil {
			return err
		}
		appt = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("cancelled_by", actorID.String()).
		Msg("appointment cancelled")
	return appt, nil
}

// Complete moves a CONFIRMED appointment to COMPLETED. Only the assigned
// doctor may complete; completion is what unlocks clinical record creation.
func (s *Service) Complete(ctx context.Context, actorID, apptID uuid.UUID) (*Appointment, error) {
	var appt *Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetForUpdate(ctx, apptID)
		if err != nil {
			return err
		}
		actor, err := s.users.Resolve(ctx, actorID)
		if err != nil {
			return err
		}
		if !access.CanDoctorActOn(actor, a.DoctorID) {
			return ErrNotOwner
		}
		if !a.Status.CanTransitionTo(StatusCompleted) {
			return ErrInvalidTransition
		}
		a.Status = StatusCompleted
		if err := s.repo.UpdateStatus(ctx, a); err != nil {
			return err
		}
		appt = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("appointment_id", appt.ID.String()).Msg("appointment completed")
	return appt, nil
}

// Get returns one appointment, visible to its participants and admins.
func (s *Service) Get(ctx context.Context, actorID, apptID uuid.UUID) (*Appointment, error) {
	a, err := s.repo.Get(ctx, apptID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewAppointment(actor, a.PatientID, a.DoctorID) {
		return nil, ErrNotOwner
	}
	return a, nil
}

// ListForPatient returns the patient's own appointments. Admins may list
// any patient's appointments.
func (s *Service) ListForPatient(ctx context.Context, actorID, patientID uuid.UUID, f Filter) ([]*Appointment, int, error) {
	actor, err := s.users.Resolve(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.IsAdmin() && actor.ID != patientID {
		return nil, 0, ErrNotOwner
	}
	return s.repo.ListForPatient(ctx, patientID, f)
}

// ListForDoctor returns the doctor's schedule. Admins may list any
// doctor's schedule.
func (s *Service) ListForDoctor(ctx context.Context, actorID, doctorID uuid.UUID, f Filter) ([]*Appointment, int, error) {
	actor, err := s.users.Resolve(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.IsAdmin() && actor.ID != doctorID {
		return nil, 0, ErrNotOwner
	}
	return s.repo.ListForDoctor(ctx, doctorID, f)
}
