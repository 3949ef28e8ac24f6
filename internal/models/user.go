package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole controls access to admin endpoints.
type UserRole string

const (
	RolePlayer    UserRole = "player"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

// User represents a registered player.
type User struct {
	gorm.Model
	Email                string     `json:"email" gorm:"uniqueIndex;not null"`
	Username             string     `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash         string     `json:"-" gorm:"not null"`
	Role                 UserRole   `json:"role" gorm:"default:'player'"`
	XP                   int        `json:"xp" gorm:"default:0"`
	Level                int        `json:"level" gorm:"default:1"`
	FavoriteGame         string     `json:"favorite_game"`
	NotificationsEnabled bool       `json:"notifications_enabled" gorm:"default:true"`
	IsActive             bool       `json:"is_active" gorm:"default:true"`
	IsVerified           bool       `json:"is_verified" gorm:"default:false"`
	LastLogin            *time.Time `json:"last_login"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may access admin endpoints.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
