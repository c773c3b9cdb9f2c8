package identity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of principal roles. Anything outside the set is
// rejected at parse time so authorization checks never fall through on an
// unrecognized role string.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a raw role string onto the closed Role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient:
		return RolePatient, nil
	case RoleDoctor:
		return RoleDoctor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// User maps to the users table, owned by the identity directory and
// read-only here. Doctors carry a license number and patients a contact
// phone; both are enforced upstream at user creation.
type User struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	FullName      string    `db:"full_name" json:"full_name"`
	Role          Role      `db:"role" json:"role"`
	Speciality    *string   `db:"speciality" json:"speciality,omitempty"`
	LicenseNumber *string   `db:"license_number" json:"license_number,omitempty"`
	Phone         *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

func (u *User) IsDoctor() bool  { return u.Role == RoleDoctor }
func (u *User) IsPatient() bool { return u.Role == RolePatient }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
