package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UserTypeAccountManager = "account_manager"
	UserTypeApprover       = "approver"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	UserType  string    `gorm:"index;default:account_manager" json:"user_type"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

func (u *User) IsAccountManager() bool {
	return u.UserType == UserTypeAccountManager
}

func (u *User) IsApprover() bool {
	return u.UserType == UserTypeApprover
}

func (u *User) CanApproveBills() bool {
	return u.IsApprover() && u.IsActive
}

func (u *User) CanManageBills() bool {
	return (u.IsAccountManager() || u.IsApprover()) && u.IsActive
}
