package identity

import "testing"

func TestParseRole(t *testing.T) {
	for _, s := range []string{"patient", "doctor", "admin"} {
		r, err := ParseRole(s)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", s, err)
		}
		if string(r) != s {
			t.Errorf("expected %q, got %q", s, r)
		}
	}
}

func TestParseRole_FailsClosed(t *testing.T) {
	for _, s := range []string{"", "nurse", "Doctor", "ADMIN", "superuser"} {
		if _, err := ParseRole(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleDoctor.Valid() || !RolePatient.Valid() || !RoleAdmin.Valid() {
		t.Error("expected known roles to be valid")
	}
	if Role("nurse").Valid() {
		t.Error("expected unknown role to be invalid")
	}
}

func TestUserRoleHelpers(t *testing.T) {
	u := &User{Role: RoleDoctor}
	if !u.IsDoctor() || u.IsPatient() || u.IsAdmin() {
		t.Error("unexpected role predicate result for doctor")
	}
}
