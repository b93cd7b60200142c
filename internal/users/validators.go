package users

import (
	"context"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/angelmondragon/accounts-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/accounts-backend/pkg/errors"
	"github.com/angelmondragon/accounts-backend/pkg/security"
)

const (
	MinimumAge = 13

	nameMinLength = 2
	nameMaxLength = 50
)

const (
	MsgEmailRequired  = "email is required"
	MsgEmailInUse     = "Email is already in use."
	MsgPhoneInUse     = "Phone number is already in use by another account."
	MsgAccountDeleted = "This account was previously deleted. Please contact an admin for restoration."
	MsgUnderage       = "Users must be at least 13 years old."
)

var personNameRe = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)

// Profile is the capability shared by the normalized registration and
// update contexts, so generic validators can serve both chains.
type Profile interface {
	ProfileFirstName() string
	ProfileLastName() string
	ProfilePhone() *string
	ProfileDateOfBirth() *time.Time
	// SubjectID is the id of the record being changed, "" on registration.
	SubjectID() string
}

// RegistrationContext is a registration request after normalization.
type RegistrationContext struct {
	FirstName   string
	LastName    string
	DisplayName string
	Email       string
	PhoneNumber *string
	Password    string
	DateOfBirth *time.Time
}

func (c RegistrationContext) ProfileFirstName() string       { return c.FirstName }
func (c RegistrationContext) ProfileLastName() string        { return c.LastName }
func (c RegistrationContext) ProfilePhone() *string          { return c.PhoneNumber }
func (c RegistrationContext) ProfileDateOfBirth() *time.Time { return c.DateOfBirth }
func (c RegistrationContext) SubjectID() string              { return "" }

// UpdateContext is an update request after normalization, bound to the
// record being updated.
type UpdateContext struct {
	ID          string
	FirstName   string
	LastName    string
	DisplayName string
	PhoneNumber *string
	DateOfBirth *time.Time
}

func (c UpdateContext) ProfileFirstName() string       { return c.FirstName }
func (c UpdateContext) ProfileLastName() string        { return c.LastName }
func (c UpdateContext) ProfilePhone() *string          { return c.PhoneNumber }
func (c UpdateContext) ProfileDateOfBirth() *time.Time { return c.DateOfBirth }
func (c UpdateContext) SubjectID() string              { return c.ID }

// Validator checks one business rule. It returns a CodeValidation error for a
// rule violation and a CodeDependency error when the repository fails.
type Validator[T Profile] interface {
	Validate(ctx context.Context, req T) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc[T Profile] func(ctx context.Context, req T) error

func (f ValidatorFunc[T]) Validate(ctx context.Context, req T) error {
	return f(ctx, req)
}

// Chain runs its members in order and stops at the first failure.
type Chain[T Profile] []Validator[T]

func (c Chain[T]) Run(ctx context.Context, req T) error {
	for _, v := range c {
		if err := v.Validate(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistrationChain composes the registration rules in their fixed order.
func NewRegistrationChain(repo Repository, policy config.PasswordPolicyConfig, now func() time.Time) Chain[RegistrationContext] {
	return Chain[RegistrationContext]{
		ValidatorFunc[RegistrationContext](validateRegistrationShape),
		EmailUniqueness{repo: repo},
		PhoneUniqueness[RegistrationContext]{repo: repo},
		SoftDeleteGuard{repo: repo},
		PasswordPolicy{policy: policy},
		AgePolicy[RegistrationContext]{now: now},
	}
}

// NewUpdateChain composes the profile update rules. Email is immutable and
// not revalidated.
func NewUpdateChain(repo Repository, now func() time.Time) Chain[UpdateContext] {
	return Chain[UpdateContext]{
		NameShape[UpdateContext]{},
		PhoneUniqueness[UpdateContext]{repo: repo},
		AgePolicy[UpdateContext]{now: now},
	}
}

func validateRegistrationShape(ctx context.Context, req RegistrationContext) error {
	if req.Email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgEmailRequired)
	}
	return NameShape[RegistrationContext]{}.Validate(ctx, req)
}

// NameShape checks first and last name length and character set.
type NameShape[T Profile] struct{}

func (NameShape[T]) Validate(_ context.Context, req T) error {
	if err := checkName("First name", req.ProfileFirstName()); err != nil {
		return err
	}
	return checkName("Last name", req.ProfileLastName())
}

func checkName(label, value string) error {
	n := utf8.RuneCountInString(value)
	if n < nameMinLength || n > nameMaxLength {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be between %d and %d characters.", label, nameMinLength, nameMaxLength)
	}
	if !personNameRe.MatchString(value) {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "%s can only contain letters, spaces, hyphens, and apostrophes.", label)
	}
	return nil
}

// EmailUniqueness fails when a non-deleted record already holds the email.
type EmailUniqueness struct {
	repo Repository
}

func (v EmailUniqueness) Validate(ctx context.Context, req RegistrationContext) error {
	existing, err := v.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email uniqueness")
	}
	if existing != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgEmailInUse)
	}
	return nil
}

// PhoneUniqueness fails when any record other than the subject holds the
// phone number. An absent phone passes.
type PhoneUniqueness[T Profile] struct {
	repo Repository
}

func (v PhoneUniqueness[T]) Validate(ctx context.Context, req T) error {
	phone := req.ProfilePhone()
	if phone == nil || *phone == "" {
		return nil
	}
	existing, err := v.repo.GetByPhone(ctx, *phone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check phone uniqueness")
	}
	if existing == nil {
		return nil
	}
	if id := req.SubjectID(); id != "" && existing.ID == id {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, MsgPhoneInUse)
}

// SoftDeleteGuard blocks re-registration with the contact details of a
// soft-deleted account.
type SoftDeleteGuard struct {
	repo Repository
}

func (v SoftDeleteGuard) Validate(ctx context.Context, req RegistrationContext) error {
	deleted, err := v.repo.GetDeletedByEmailOrPhone(ctx, req.Email, req.PhoneNumber)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check deleted accounts")
	}
	if deleted != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgAccountDeleted)
	}
	return nil
}

// PasswordPolicy enforces the configured strength rules.
type PasswordPolicy struct {
	policy config.PasswordPolicyConfig
}

func (v PasswordPolicy) Validate(_ context.Context, req RegistrationContext) error {
	if msg := security.CheckPolicy(req.Password, v.policy); msg != "" {
		return pkgerrors.New(pkgerrors.CodeValidation, msg)
	}
	return nil
}

// AgePolicy fails when a supplied birth date makes the user younger than
// MinimumAge on the clock's current UTC date.
type AgePolicy[T Profile] struct {
	now func() time.Time
}

func (v AgePolicy[T]) Validate(_ context.Context, req T) error {
	dob := req.ProfileDateOfBirth()
	if dob == nil {
		return nil
	}
	now := time.Now
	if v.now != nil {
		now = v.now
	}
	if AgeOn(*dob, now()) < MinimumAge {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgUnderage)
	}
	return nil
}

// AgeOn returns the number of whole years between dob and today, comparing
// UTC calendar dates.
func AgeOn(dob, today time.Time) int {
	dob, today = dob.UTC(), today.UTC()
	years := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		years--
	}
	return years
}
