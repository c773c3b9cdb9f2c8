package access

import (
	"testing"

	"github.com/google/uuid"

	"github.com/red095/clinic-management/internal/domain/identity"
)

func user(role identity.Role) *identity.User {
	return &identity.User{ID: uuid.New(), Role: role}
}

func TestCanPatientBook(t *testing.T) {
	if !CanPatientBook(user(identity.RolePatient)) {
		t.Error("patient should be able to book")
	}
	if CanPatientBook(user(identity.RoleDoctor)) || CanPatientBook(user(identity.RoleAdmin)) {
		t.Error("only patients may book")
	}
	if CanPatientBook(&identity.User{ID: uuid.New(), Role: "nurse"}) {
		t.Error("unknown roles must be denied")
	}
}

func TestCanDoctorActOn(t *testing.T) {
	d := user(identity.RoleDoctor)
	if !CanDoctorActOn(d, d.ID) {
		t.Error("assigned doctor should act")
	}
	if CanDoctorActOn(d, uuid.New()) {
		t.Error("unassigned doctor must be denied")
	}
	if CanDoctorActOn(user(identity.RoleAdmin), d.ID) {
		t.Error("admin must not transition appointments")
	}
	if CanDoctorActOn(user(identity.RolePatient), d.ID) {
		t.Error("patient must not transition appointments")
	}
}

func TestCanCancel(t *testing.T) {
	p := user(identity.RolePatient)
	d := user(identity.RoleDoctor)

	if !CanCancel(p, p.ID, d.ID) {
		t.Error("booking patient should cancel")
	}
	if !CanCancel(d, p.ID, d.ID) {
		t.Error("assigned doctor should cancel")
	}
	if CanCancel(user(identity.RolePatient), p.ID, d.ID) {
		t.Error("other patient must be denied")
	}
	if CanCancel(user(identity.RoleAdmin), p.ID, d.ID) {
		t.Error("admin must not cancel through the core")
	}
}

func TestCanViewRecord(t *testing.T) {
	p := user(identity.RolePatient)
	d := user(identity.RoleDoctor)

	if !CanViewRecord(p, p.ID, d.ID) {
		t.Error("record patient should view")
	}
	if !CanViewRecord(d, p.ID, d.ID) {
		t.Error("record doctor should view")
	}
	if !CanViewRecord(user(identity.RoleAdmin), p.ID, d.ID) {
		t.Error("admin should view")
	}
	if CanViewRecord(user(identity.RolePatient), p.ID, d.ID) {
		t.Error("unrelated patient must be denied")
	}
	if CanViewRecord(user(identity.RoleDoctor), p.ID, d.ID) {
		t.Error("unrelated doctor must be denied")
	}
}

func TestCanViewAppointment(t *testing.T) {
	p := user(identity.RolePatient)
	d := user(identity.RoleDoctor)
	if !CanViewAppointment(p, p.ID, d.ID) || !CanViewAppointment(d, p.ID, d.ID) {
		t.Error("participants should view their appointment")
	}
	if !CanViewAppointment(user(identity.RoleAdmin), p.ID, d.ID) {
		t.Error("admin should view")
	}
	if CanViewAppointment(user(identity.RoleDoctor), p.ID, d.ID) {
		t.Error("unrelated doctor must be denied")
	}
}
