// Package access holds the stateless authorization predicates consumed by
// the appointment and record services. Predicates are recomputed per call
// from the current role and ownership fields; nothing is cached. Every role
// switch is exhaustive with an explicit deny default.
package access

import (
	"github.com/google/uuid"

	"github.com/red095/clinic-management/internal/domain/identity"
)

// CanPatientBook reports whether u may request a new appointment.
func CanPatientBook(u *identity.User) bool {
	switch u.Role {
	case identity.RolePatient:
		return true
	case identity.RoleDoctor, identity.RoleAdmin:
		return false
	}
	return false
}

// CanDoctorActOn reports whether u may confirm, cancel or complete an
// appointment assigned to apptDoctorID.
func CanDoctorActOn(u *identity.User, apptDoctorID uuid.UUID) bool {
	switch u.Role {
	case identity.RoleDoctor:
		return u.ID == apptDoctorID
	case identity.RolePatient, identity.RoleAdmin:
		return false
	}
	return false
}

// CanCancel reports whether u may cancel an appointment between
// apptPatientID and apptDoctorID: the assigned doctor or the booking
// patient, nobody else.
func CanCancel(u *identity.User, apptPatientID, apptDoctorID uuid.UUID) bool {
	switch u.Role {
	case identity.RoleDoctor:
		return u.ID == apptDoctorID
	case identity.RolePatient:
		return u.ID == apptPatientID
	case identity.RoleAdmin:
		return false
	}
	return false
}

// CanViewAppointment reports whether u may read an appointment: either
// participant, or an admin.
func CanViewAppointment(u *identity.User, apptPatientID, apptDoctorID uuid.UUID) bool {
	switch u.Role {
	case identity.RolePatient:
		return u.ID == apptPatientID
	case identity.RoleDoctor:
		return u.ID == apptDoctorID
	case identity.RoleAdmin:
		return true
	}
	return false
}

// CanViewRecord reports whether u may read a clinical record snapshotting
// recPatientID and recDoctorID: either participant, or an admin.
func CanViewRecord(u *identity.User, recPatientID, recDoctorID uuid.UUID) bool {
	switch u.Role {
	case identity.RolePatient:
		return u.ID == recPatientID
	case identity.RoleDoctor:
		return u.ID == recDoctorID
	case identity.RoleAdmin:
		return true
	}
	return false
}
