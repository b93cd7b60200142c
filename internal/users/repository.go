package users

import (
	"context"
	"errors"

	"github.com/angelmondragon/accounts-backend/pkg/db/models"
)

// ErrDuplicate reports a unique index violation on email or phone.
type ErrDuplicate struct {
	Field string
}

func (e *ErrDuplicate) Error() string {
	return "duplicate " + e.Field
}

const (
	duplicateFieldEmail = "email"
	duplicateFieldPhone = "phoneNumber"
)

func asDuplicate(err error) (*ErrDuplicate, bool) {
	var dup *ErrDuplicate
	if errors.As(err, &dup) {
		return dup, true
	}
	return nil, false
}

// Repository is the persistence contract of the user service. Lookups return
// (nil, nil) when nothing matches.
type Repository interface {
	// GetByID includes soft-deleted records.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail matches non-deleted records only.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByPhone matches any record, deleted or not.
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	// GetDeletedByEmailOrPhone matches soft-deleted records holding either value.
	GetDeletedByEmailOrPhone(ctx context.Context, email string, phone *string) (*models.User, error)
	Add(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, user *models.User) error
	// GetAll returns non-deleted records.
	GetAll(ctx context.Context) ([]models.User, error)
}
