package users

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/accounts-backend/pkg/db/models"
	"github.com/angelmondragon/accounts-backend/pkg/enums"
)

// RegistrationRequest is the inbound payload for creating an account.
type RegistrationRequest struct {
	FirstName   string     `json:"firstName" validate:"required,min=2,max=50,personname"`
	LastName    string     `json:"lastName" validate:"required,min=2,max=50,personname"`
	DisplayName string     `json:"displayName,omitempty" validate:"max=100"`
	Email       string     `json:"email" validate:"required,emailaddr,max=254"`
	PhoneNumber *string    `json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
	Password    string     `json:"password" validate:"required"`
	DateOfBirth *BirthDate `json:"dateOfBirth,omitempty"`
}

// UpdateRequest is the inbound payload for a profile update. Email is not
// updatable.
type UpdateRequest struct {
	FirstName   string     `json:"firstName" validate:"required,min=2,max=50,personname"`
	LastName    string     `json:"lastName" validate:"required,min=2,max=50,personname"`
	DisplayName string     `json:"displayName,omitempty" validate:"max=100"`
	PhoneNumber *string    `json:"phoneNumber,omitempty" validate:"omitempty,max=32"`
	DateOfBirth *BirthDate `json:"dateOfBirth,omitempty"`
}

// RoleStatusUpdateRequest carries the optional administrative changes.
// Values are parsed case-insensitively.
type RoleStatusUpdateRequest struct {
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// UserDTO is the outward projection of a record. The password hash and the
// soft-delete flag never leave the service.
type UserDTO struct {
	ID          string           `json:"id"`
	FullName    string           `json:"fullName"`
	DisplayName string           `json:"displayName"`
	Email       string           `json:"email"`
	PhoneNumber *string          `json:"phoneNumber"`
	Role        enums.UserRole   `json:"role"`
	Status      enums.UserStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// FromModel maps the persisted record into its response shape.
func FromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{
		ID:          m.ID,
		FullName:    m.FirstName + " " + m.LastName,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		Role:        m.Role,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
	}
}

// BirthDate accepts either a calendar date (2006-01-02) or an RFC 3339
// timestamp and keeps only the UTC date.
type BirthDate struct {
	time.Time
}

func NewBirthDate(year int, month time.Month, day int) *BirthDate {
	return &BirthDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *BirthDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("dateOfBirth must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("dateOfBirth must be YYYY-MM-DD or RFC 3339")
	}
	u := t.UTC()
	d.Time = time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

func (d BirthDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *BirthDate) timePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
