package users

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/accounts-backend/pkg/db"
	"github.com/angelmondragon/accounts-backend/pkg/db/models"
	"gorm.io/gorm"
)

// GormRepository persists users in Postgres or SQLite.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository constructs a users repo bound to the provided GORM DB.
func NewGormRepository(conn *gorm.DB) *GormRepository {
	return &GormRepository{db: conn}
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ? AND is_deleted = ?", email, false)
}

func (r *GormRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.first(ctx, "phone_number = ?", phone)
}

func (r *GormRepository) GetDeletedByEmailOrPhone(ctx context.Context, email string, phone *string) (*models.User, error) {
	q := r.db.WithContext(ctx).Where("is_deleted = ?", true)
	if phone != nil && *phone != "" {
		q = q.Where(r.db.Where("email = ?", email).Or("phone_number = ?", *phone))
	} else {
		q = q.Where("email = ?", email)
	}

	var user models.User
	if err := q.Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepository) Add(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return gormDuplicate(err)
	}
	return nil
}

// Update replaces every mutable column of the record with id.
func (r *GormRepository) Update(ctx context.Context, id string, user *models.User) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"display_name":  user.DisplayName,
			"phone_number":  user.PhoneNumber,
			"date_of_birth": user.DateOfBirth,
			"role":          user.Role,
			"status":        user.Status,
			"is_deleted":    user.IsDeleted,
			"updated_at":    user.UpdatedAt,
		})
	if res.Error != nil {
		return gormDuplicate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepository) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// gormDuplicate converts unique index failures from either dialect into
// ErrDuplicate. SQLite names the column, Postgres the index.
func gormDuplicate(err error) error {
	if !db.IsUniqueViolation(err, "") {
		return err
	}
	switch {
	case db.IsUniqueViolation(err, "ux_users_phone_number"), strings.Contains(err.Error(), "users.phone_number"):
		return &ErrDuplicate{Field: duplicateFieldPhone}
	default:
		return &ErrDuplicate{Field: duplicateFieldEmail}
	}
}
