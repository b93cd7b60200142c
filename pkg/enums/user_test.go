package enums

import "testing"

func TestParseUserRole(t *testing.T) {
	tests := []struct {
		in      string
		want    UserRole
		wantErr bool
	}{
		{in: "user", want: UserRoleUser},
		{in: "Admin", want: UserRoleAdmin},
		{in: " ADMIN ", want: UserRoleAdmin},
		{in: "owner", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseUserRole(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseUserRole(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseUserRole(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseUserRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseUserStatus(t *testing.T) {
	if got, err := ParseUserStatus("Suspended"); err != nil || got != UserStatusSuspended {
		t.Fatalf("expected suspended, got %q err=%v", got, err)
	}
	if _, err := ParseUserStatus("deleted"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if !UserStatusInactive.IsValid() {
		t.Fatal("inactive should be valid")
	}
	if UserStatus("frozen").IsValid() {
		t.Fatal("frozen should not be valid")
	}
}
