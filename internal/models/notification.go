package models

import (
	"gorm.io/gorm"
)

// NotificationType classifies in-app notifications
type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifyWarning NotificationType = "warning"
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
)

// Notification is a persisted in-app message for one user.
type Notification struct {
	gorm.Model
	UserID  uint             `json:"user_id" gorm:"index"`
	Title   string           `json:"title" gorm:"not null"`
	Message string           `json:"message" gorm:"not null"`
	Type    NotificationType `json:"type" gorm:"default:'info'"`
	Read    bool             `json:"read" gorm:"default:false"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
