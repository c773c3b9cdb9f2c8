package record

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/red095/clinic-management/internal/domain/access"
	"github.com/red095/clinic-management/internal/domain/appointment"
	"github.com/red095/clinic-management/internal/domain/identity"
)

// AppointmentReader is the slice of the appointment store the record
// engine needs: reading an appointment, optionally locked for the rest of
// the transaction.
type AppointmentReader interface {
	Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
}

// Service implements the clinical record engine. Creation is exactly-once
// per completed appointment; everything after creation is read-only.
type Service struct {
	repo  Repository
	appts AppointmentReader
	users identity.Directory
	tx    TxRunner
	log   zerolog.Logger
}

func NewService(repo Repository, appts AppointmentReader, users identity.Directory, tx TxRunner, log zerolog.Logger) *Service {
	return &Service{repo: repo, appts: appts, users: users, tx: tx, log: log}
}

// CreateRequest carries a doctor's record submission. ActorID comes from
// the authenticated principal.
type CreateRequest struct {
	ActorID       uuid.UUID
	AppointmentID uuid.UUID
	Diagnosis     string
	Prescription  string
	Notes         string
}

// Create writes the record for a completed appointment. The appointment
// row is locked for the duration so the completed-status and exactly-once
// checks and the insert commit atomically; the unique constraint on
// appointment_id backstops any writer that slips past.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Record, error) {
	var rec *Record
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		actor, err := s.users.Resolve(ctx, req.ActorID)
		if err != nil {
			return err
		}
		if !actor.IsDoctor() {
			return ErrPermissionDenied
		}
		appt, err := s.appts.GetForUpdate(ctx, req.AppointmentID)
		if err != nil {
			return err
		}
		if actor.ID != appt.DoctorID {
			return appointment.ErrNotOwner
		}
		if appt.Status != appointment.StatusCompleted {
			return ErrAppointmentNotCompleted
		}
		exists, err := s.repo.ExistsForAppointment(ctx, appt.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyExists
		}

		rec = &Record{
			AppointmentID: appt.ID,
			PatientID:     appt.PatientID,
			DoctorID:      appt.DoctorID,
			Diagnosis:     req.Diagnosis,
			Prescription:  req.Prescription,
			Notes:         req.Notes,
		}
		return s.repo.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("record_id", rec.ID.String()).
		Str("appointment_id", rec.AppointmentID.String()).
		Msg("clinical record created")
	return rec, nil
}

// Get returns one record, visible to its participants and admins.
func (s *Service) Get(ctx context.Context, actorID, recordID uuid.UUID) (*Record, error) {
	rec, err := s.repo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return s.authorizeView(ctx, actorID, rec)
}

// GetByAppointment returns the record written for an appointment.
func (s *Service) GetByAppointment(ctx context.Context, actorID, apptID uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByAppointment(ctx, apptID)
	if err != nil {
		return nil, err
	}
	return s.authorizeView(ctx, actorID, rec)
}

func (s *Service) authorizeView(ctx context.Context, actorID uuid.UUID, rec *Record) (*Record, error) {
	actor, err := s.users.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !access.CanViewRecord(actor, rec.PatientID, rec.DoctorID) {
		return nil, ErrPermissionDenied
	}
	return rec, nil
}

// ListForPatient returns a patient's record history, visible to the
// patient and admins.
func (s *Service) ListForPatient(ctx context.Context, actorID, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	actor, err := s.users.Resolve(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.IsAdmin() && actor.ID != patientID {
		return nil, 0, ErrPermissionDenied
	}
	return s.repo.ListForPatient(ctx, patientID, limit, offset)
}
