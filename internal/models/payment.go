package models

import (
	"gorm.io/gorm"
)

// PaymentType distinguishes money in from money out
type PaymentType string

const (
	PaymentEntryFee    PaymentType = "entry_fee"
	PaymentPrizePayout PaymentType = "prize_payout"
)

// Payment records a money movement tied to a tournament.
type Payment struct {
	gorm.Model
	UserID        uint        `json:"user_id" gorm:"index"`
	TournamentID  uint        `json:"tournament_id" gorm:"index"`
	Amount        float64     `json:"amount" gorm:"not null"`
	Type          PaymentType `json:"type" gorm:"not null"`
	Status        string      `json:"status" gorm:"default:'pending'"` // pending, completed, failed, refunded
	PaymentMethod string      `json:"payment_method,omitempty"`
	TransactionID string      `json:"transaction_id,omitempty"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
