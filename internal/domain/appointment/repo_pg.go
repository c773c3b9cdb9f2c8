package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/red095/clinic-management/internal/platform/db"
)

// confirmedSlotIndex backs the confirmed-slot uniqueness invariant in the
// schema; a 23505 on it means a concurrent confirm won the slot.
const confirmedSlotIndex = "appointment_confirmed_slot_idx"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, patient_id, doctor_id, scheduled_time, status, reason,
	cancelled_by, cancellation_reason, created_at, updated_at`

func scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ScheduledTime, &a.Status, &a.Reason,
		&a.CancelledBy, &a.CancellationReason, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, scheduled_time, status, reason)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		a.ID, a.PatientID, a.DoctorID, a.ScheduledTime, a.Status, a.Reason)
	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err, confirmedSlotIndex) {
			return ErrDoubleBooked
		}
		return err
	}
	return nil
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) LockSlot(ctx context.Context, s Slot) error {
	key := fmt.Sprintf("appointment-slot:%s:%d", s.DoctorID, s.At.UTC().UnixNano())
	_, err := r.conn(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	return err
}

func (r *repoPG) SlotBusy(ctx context.Context, s Slot) (bool, error) {
	var busy bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE doctor_id = $1 AND scheduled_time = $2 AND status IN ('PENDING', 'CONFIRMED')
		)`, s.DoctorID, s.At).Scan(&busy)
	return busy, err
}

func (r *repoPG) ConfirmedAtSlot(ctx context.Context, s Slot, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE doctor_id = $1 AND scheduled_time = $2 AND status = 'CONFIRMED' AND id <> $3
		)`, s.DoctorID, s.At, excludeID).Scan(&exists)
	return exists, err
}

func (r *repoPG) UpdateStatus(ctx context.Context, a *Appointment) error {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE appointment
		SET status = $2, cancelled_by = $3, cancellation_reason = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Status, a.CancelledBy, a.CancellationReason)
	if err := row.Scan(&a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if isUniqueViolation(err, confirmedSlotIndex) {
			return ErrDoubleBooked
		}
		return err
	}
	return nil
}

func (r *repoPG) ListForPatient(ctx context.Context, patientID uuid.UUID, f Filter) ([]*Appointment, int, error) {
	return r.list(ctx, `patient_id`, patientID, f)
}

func (r *repoPG) ListForDoctor(ctx context.Context, doctorID uuid.UUID, f Filter) ([]*Appointment, int, error) {
	return r.list(ctx, `doctor_id`, doctorID, f)
}

func (r *repoPG) list(ctx context.Context, ownerCol string, ownerID uuid.UUID, f Filter) ([]*Appointment, int, error) {
	query := `SELECT ` + apptCols + ` FROM appointment WHERE ` + ownerCol + ` = $1`
	countQuery := `SELECT COUNT(*) FROM appointment WHERE ` + ownerCol + ` = $1`
	args := []interface{}{ownerID}
	idx := 2

	if f.Status != nil {
		cond := fmt.Sprintf(` AND status = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, *f.Status)
		idx++
	}
	if f.From != nil {
		cond := fmt.Sprintf(` AND scheduled_time >= $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, *f.From)
		idx++
	}
	if f.To != nil {
		cond := fmt.Sprintf(` AND scheduled_time <= $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, *f.To)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := f.Order
	if order != OrderAsc && order != OrderDesc {
		order = OrderDesc
	}
	query += fmt.Sprintf(` ORDER BY scheduled_time %s LIMIT $%d OFFSET $%d`, order, idx, idx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
