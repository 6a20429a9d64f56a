package model

import "testing"

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleResponsable, true},
		{RoleResponsable, RoleAdmin, false},
		{RoleResponsable, RoleResponsable, true},
		// Unknown roles fail-closed.
		{"unknown", RoleResponsable, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RoleResponsable, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestCanAccessBranch(t *testing.T) {
	tests := []struct {
		role, home, branch string
		expected           bool
	}{
		{RoleAdmin, "", "Casablanca", true},
		{RoleResponsable, "Casablanca", "Casablanca", true},
		{RoleResponsable, "Casablanca", "Rabat", false},
		{RoleResponsable, "", "", false},
		{"unknown", "Rabat", "Rabat", false},
	}

	for _, tt := range tests {
		got := CanAccessBranch(tt.role, tt.home, tt.branch)
		if got != tt.expected {
			t.Errorf("CanAccessBranch(%q, %q, %q) = %v, want %v", tt.role, tt.home, tt.branch, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}
