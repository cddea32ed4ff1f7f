package enums

import "testing"

func TestParseUserRole(t *testing.T) {
	for _, role := range []string{"SysAdmin", "ClusterAdmin", "Developer"} {
		parsed, err := ParseUserRole(role)
		if err != nil {
			t.Fatalf("parse %s: %v", role, err)
		}
		if !parsed.IsValid() {
			t.Fatalf("expected %s to be valid", role)
		}
	}
}

func TestParseUserRoleRejectsUnknown(t *testing.T) {
	for _, role := range []string{"sysadmin", "Admin", "", "root"} {
		if _, err := ParseUserRole(role); err == nil {
			t.Fatalf("expected %q to be rejected", role)
		}
	}
}

func TestParseUserStatus(t *testing.T) {
	if _, err := ParseUserStatus("active"); err != nil {
		t.Fatalf("active: %v", err)
	}
	if _, err := ParseUserStatus("inactive"); err != nil {
		t.Fatalf("inactive: %v", err)
	}
	if _, err := ParseUserStatus("disabled"); err == nil {
		t.Fatal("expected disabled to be rejected")
	}
}
