package record

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/red095/clinic-management/internal/domain/appointment"
	"github.com/red095/clinic-management/internal/domain/identity"
)

type memRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[uuid.UUID]*Record)}
}

func (r *memRepo) Create(ctx context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.AppointmentID == rec.AppointmentID {
			return ErrAlreadyExists
		}
	}
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *memRepo) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memRepo) GetByAppointment(ctx context.Context, apptID uuid.UUID) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.AppointmentID == apptID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) ExistsForAppointment(ctx context.Context, apptID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.AppointmentID == apptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Record
	for _, rec := range r.records {
		if rec.PatientID == patientID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

type memAppts struct {
	mu    sync.Mutex
	appts map[uuid.UUID]*appointment.Appointment
}

func (m *memAppts) Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, appointment.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAppts) GetForUpdate(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return m.Get(ctx, id)
}

type memDirectory struct {
	users map[uuid.UUID]*identity.User
}

func (d *memDirectory) Resolve(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return u, nil
}

func (d *memDirectory) ListDoctors(ctx context.Context, limit, offset int) ([]*identity.User, int, error) {
	return nil, 0, nil
}

type serialTx struct{ mu sync.Mutex }

func (t *serialTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

type fixture struct {
	svc      *Service
	repo     *memRepo
	appts    *memAppts
	patient  *identity.User
	patient2 *identity.User
	doctor   *identity.User
	doctor2  *identity.User
	admin    *identity.User
}

func user(role identity.Role) *identity.User {
	return &identity.User{ID: uuid.New(), Role: role}
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newMemRepo(),
		appts:    &memAppts{appts: make(map[uuid.UUID]*appointment.Appointment)},
		patient:  user(identity.RolePatient),
		patient2: user(identity.RolePatient),
		doctor:   user(identity.RoleDoctor),
		doctor2:  user(identity.RoleDoctor),
		admin:    user(identity.RoleAdmin),
	}
	dir := &memDirectory{users: map[uuid.UUID]*identity.User{
		f.patient.ID:  f.patient,
		f.patient2.ID: f.patient2,
		f.doctor.ID:   f.doctor,
		f.doctor2.ID:  f.doctor2,
		f.admin.ID:    f.admin,
	}}
	f.svc = NewService(f.repo, f.appts, dir, &serialTx{}, zerolog.Nop())
	return f
}

func (f *fixture) addAppointment(status appointment.Status) *appointment.Appointment {
	a := &appointment.Appointment{
		ID:            uuid.New(),
		PatientID:     f.patient.ID,
		DoctorID:      f.doctor.ID,
		ScheduledTime: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		Status:        status,
	}
	f.appts.mu.Lock()
	f.appts.appts[a.ID] = a
	f.appts.mu.Unlock()
	return a
}

func TestCreate(t *testing.T) {
	f := newFixture()
	appt := f.addAppointment(appointment.StatusCompleted)

	rec, err := f.svc.Create(context.Background(), CreateRequest{
		ActorID:       f.doctor.ID,
		AppointmentID: appt.ID,
		Diagnosis:     "seasonal allergies",
		Prescription:  "antihistamine",
		Notes:         "follow up in two weeks",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.AppointmentID != appt.ID {
		t.Error("appointment id not recorded")
	}
	if rec.PatientID != f.patient.ID || rec.DoctorID != f.doctor.ID {
		t.Error("participant ids not snapshotted from the appointment")
	}
	if rec.Diagnosis != "seasonal allergies" || rec.Prescription != "antihistamine" {
		t.Errorf("content not stored: %+v", rec)
	}
	if rec.ID == uuid.Nil || rec.CreatedAt.IsZero() {
		t.Error("id or created_at not assigned")
	}
}

func TestCreateRejections(t *testing.T) {
	f := newFixture()
	completed := f.addAppointment(appointment.StatusCompleted)

	tests := []struct {
		name    string
		actor   uuid.UUID
		appt    uuid.UUID
		wantErr error
	}{
		{"patient cannot create", f.patient.ID, completed.ID, ErrPermissionDenied},
		{"admin cannot create", f.admin.ID, completed.ID, ErrPermissionDenied},
		{"other doctor", f.doctor2.ID, completed.ID, appointment.ErrNotOwner},
		{"unknown actor", uuid.New(), completed.ID, identity.ErrNotFound},
		{"unknown appointment", f.doctor.ID, uuid.New(), appointment.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), CreateRequest{
				ActorID:       tt.actor,
				AppointmentID: tt.appt,
				Diagnosis:     "x",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	for _, status := range []appointment.Status{
		appointment.StatusPending,
		appointment.StatusConfirmed,
		appointment.StatusCancelled,
	} {
		t.Run("status "+string(status), func(t *testing.T) {
			appt := f.addAppointment(status)
			_, err := f.svc.Create(context.Background(), CreateRequest{
				ActorID:       f.doctor.ID,
				AppointmentID: appt.ID,
				Diagnosis:     "x",
			})
			if !errors.Is(err, ErrAppointmentNotCompleted) {
				t.Errorf("got %v, want ErrAppointmentNotCompleted", err)
			}
		})
	}
}

func TestCreateExactlyOnce(t *testing.T) {
	f := newFixture()
	appt := f.addAppointment(appointment.StatusCompleted)

	req := CreateRequest{ActorID: f.doctor.ID, AppointmentID: appt.ID, Diagnosis: "first"}
	if _, err := f.svc.Create(context.Background(), req); err != nil {
		t.Fatalf("create: %v", err)
	}
	req.Diagnosis = "second"
	if _, err := f.svc.Create(context.Background(), req); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("got %v, want ErrAlreadyExists", err)
	}

	// The stored record keeps its original content.
	rec, err := f.svc.GetByAppointment(context.Background(), f.doctor.ID, appt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Diagnosis != "first" {
		t.Errorf("diagnosis = %q, want the first write", rec.Diagnosis)
	}
}

func TestCreateConcurrent(t *testing.T) {
	f := newFixture()
	appt := f.addAppointment(appointment.StatusCompleted)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), CreateRequest{
				ActorID:       f.doctor.ID,
				AppointmentID: appt.ID,
				Diagnosis:     "x",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyExists):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != 1 {
		t.Errorf("got %d successes and %d ErrAlreadyExists, want exactly one of each", ok, dup)
	}
}

func TestGetVisibility(t *testing.T) {
	f := newFixture()
	appt := f.addAppointment(appointment.StatusCompleted)
	rec, err := f.svc.Create(context.Background(), CreateRequest{
		ActorID:       f.doctor.ID,
		AppointmentID: appt.ID,
		Diagnosis:     "x",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for name, actor := range map[string]uuid.UUID{
		"patient": f.patient.ID,
		"doctor":  f.doctor.ID,
		"admin":   f.admin.ID,
	} {
		if _, err := f.svc.Get(context.Background(), actor, rec.ID); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	for name, actor := range map[string]uuid.UUID{
		"other patient": f.patient2.ID,
		"other doctor":  f.doctor2.ID,
	} {
		if _, err := f.svc.Get(context.Background(), actor, rec.ID); !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("%s: got %v, want ErrPermissionDenied", name, err)
		}
	}

	if _, err := f.svc.Get(context.Background(), f.patient.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing record: got %v, want ErrNotFound", err)
	}
}

func TestListForPatient(t *testing.T) {
	f := newFixture()
	appt := f.addAppointment(appointment.StatusCompleted)
	if _, err := f.svc.Create(context.Background(), CreateRequest{
		ActorID:       f.doctor.ID,
		AppointmentID: appt.ID,
		Diagnosis:     "x",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, total, err := f.svc.ListForPatient(context.Background(), f.patient.ID, f.patient.ID, 20, 0)
	if err != nil {
		t.Fatalf("own list: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("total = %d, len = %d, want 1 and 1", total, len(items))
	}
	if _, _, err := f.svc.ListForPatient(context.Background(), f.admin.ID, f.patient.ID, 20, 0); err != nil {
		t.Errorf("admin list: %v", err)
	}
	if _, _, err := f.svc.ListForPatient(context.Background(), f.patient2.ID, f.patient.ID, 20, 0); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("foreign list: got %v, want ErrPermissionDenied", err)
	}
	if _, _, err := f.svc.ListForPatient(context.Background(), f.doctor.ID, f.patient.ID, 20, 0); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("doctor list: got %v, want ErrPermissionDenied", err)
	}
}
