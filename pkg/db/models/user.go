package models

import (
	"time"

	"github.com/angelmondragon/accounts-backend/pkg/enums"
)

// User is the account record shared by the relational and document stores.
type User struct {
	ID           string           `gorm:"column:id;type:varchar(36);primaryKey" bson:"_id"`
	FirstName    string           `gorm:"column:first_name;size:50;not null" bson:"firstName"`
	LastName     string           `gorm:"column:last_name;size:50;not null" bson:"lastName"`
	DisplayName  string           `gorm:"column:display_name;not null" bson:"displayName"`
	Email        string           `gorm:"column:email;not null;uniqueIndex:ux_users_email" bson:"email"`
	PhoneNumber  *string          `gorm:"column:phone_number;uniqueIndex:ux_users_phone_number" bson:"phoneNumber,omitempty"`
	PasswordHash string           `gorm:"column:password_hash;not null" bson:"passwordHash"`
	DateOfBirth  *time.Time       `gorm:"column:date_of_birth" bson:"dateOfBirth,omitempty"`
	Role         enums.UserRole   `gorm:"column:role;type:varchar(16);not null;default:user" bson:"role"`
	Status       enums.UserStatus `gorm:"column:status;type:varchar(16);not null;default:active" bson:"status"`
	IsDeleted    bool             `gorm:"column:is_deleted;not null;default:false" bson:"isDeleted"`
	CreatedAt    time.Time        `gorm:"column:created_at;not null;autoCreateTime:false" bson:"createdAt"`
	UpdatedAt    *time.Time       `gorm:"column:updated_at;autoUpdateTime:false" bson:"updatedAt,omitempty"`
}

func (User) TableName() string { return "users" }
