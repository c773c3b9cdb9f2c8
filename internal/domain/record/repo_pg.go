package record

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/red095/clinic-management/internal/platform/db"
)

// appointmentKey is the unique constraint on appointment_id; a 23505 on it
// means a concurrent creation for the same appointment committed first.
const appointmentKey = "medical_record_appointment_id_key"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `id, appointment_id, patient_id, doctor_id, diagnosis, prescription, notes, created_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.AppointmentID, &rec.PatientID, &rec.DoctorID,
		&rec.Diagnosis, &rec.Prescription, &rec.Notes, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &rec, err
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_record (id, appointment_id, patient_id, doctor_id, diagnosis, prescription, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		rec.ID, rec.AppointmentID, rec.PatientID, rec.DoctorID, rec.Diagnosis, rec.Prescription, rec.Notes)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == appointmentKey {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_record WHERE id = $1`, id))
}

func (r *repoPG) GetByAppointment(ctx context.Context, apptID uuid.UUID) (*Record, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_record WHERE appointment_id = $1`, apptID))
}

func (r *repoPG) ExistsForAppointment(ctx context.Context, apptID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM medical_record WHERE appointment_id = $1)`, apptID).Scan(&exists)
	return exists, err
}

func (r *repoPG) ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_record WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recordCols+` FROM medical_record
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}
