package users

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBirthDateAcceptsDateAndTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{raw: `"2001-09-11"`, want: time.Date(2001, time.September, 11, 0, 0, 0, 0, time.UTC)},
		{raw: `"2001-09-11T23:30:00-02:00"`, want: time.Date(2001, time.September, 12, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		var d BirthDate
		if err := json.Unmarshal([]byte(tt.raw), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if !d.Time.Equal(tt.want) {
			t.Fatalf("unmarshal %s = %v, want %v", tt.raw, d.Time, tt.want)
		}
	}

	var bad BirthDate
	if err := json.Unmarshal([]byte(`"11/09/2001"`), &bad); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestRegistrationRequestDecodesNullBirthDate(t *testing.T) {
	var req RegistrationRequest
	if err := json.Unmarshal([]byte(`{"firstName":"Jane","dateOfBirth":null}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.DateOfBirth.timePtr() != nil {
		t.Fatal("expected nil birth date")
	}
}

func TestUserDTOJSONShape(t *testing.T) {
	m := member("u1")
	raw, err := json.Marshal(FromModel(&m))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "fullName", "displayName", "email", "phoneNumber", "role", "status", "createdAt"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing %q in %s", key, raw)
		}
	}
	for _, key := range []string{"passwordHash", "isDeleted", "PasswordHash"} {
		if _, ok := fields[key]; ok {
			t.Fatalf("unexpected %q in %s", key, raw)
		}
	}
}
