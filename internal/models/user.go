// internal/models/user.go
package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email           string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name            string     `json:"name" gorm:"size:255"`
	PasswordHash    *string    `json:"-" gorm:"size:255"`
	Role            UserRole   `json:"role" gorm:"type:varchar(20);not null"`
	IsActive        bool       `json:"is_active" gorm:"default:true"`
	InviteTokenHash string     `json:"-" gorm:"size:64;index"`
	InviteExpiresAt *time.Time `json:"-"`
	ResetTokenHash  string     `json:"-" gorm:"size:64;index"`
	ResetExpiresAt  *time.Time `json:"-"`
	LastLoginAt     *time.Time `json:"last_login_at"`
}

// InvitePending reports whether the user has not set a password yet.
func (u *User) InvitePending() bool {
	return u.PasswordHash == nil
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hash := string(hashedPassword)
	u.PasswordHash = &hash
	return nil
}

func (u *User) CheckPassword(password string) error {
	if u.PasswordHash == nil {
		return errors.New("password not set")
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password))
}
