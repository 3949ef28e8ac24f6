package models

import (
	"gorm.io/gorm"
)

// PaymentStatus tracks the entry-fee state of a registration
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Registration links a user to a tournament they signed up for.
type Registration struct {
	gorm.Model
	UserID        uint          `json:"user_id" gorm:"index;uniqueIndex:idx_user_tournament"`
	TournamentID  uint          `json:"tournament_id" gorm:"index;uniqueIndex:idx_user_tournament"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"default:'pending'"`
}

// TableName specifies the table name for the Registration model
func (Registration) TableName() string {
	return "registrations"
}
