package models

import (
	"time"

	"gorm.io/gorm"
)

// MatchResult is a player's reported outcome for one tournament.
// Results are unverified until an admin confirms them; XP is only applied
// to the user at verification time.
type MatchResult struct {
	gorm.Model
	UserID        uint       `json:"user_id" gorm:"index"`
	TournamentID  uint       `json:"tournament_id" gorm:"index"`
	Rank          int        `json:"rank" gorm:"not null"`
	Kills         int        `json:"kills" gorm:"default:0"`
	Score         int        `json:"score" gorm:"default:0"`
	ScreenshotURL string     `json:"screenshot_url,omitempty"`
	Verified      bool       `json:"verified" gorm:"default:false"`
	XPGained      int        `json:"xp_gained" gorm:"default:0"`
	PrizeAmount   float64    `json:"prize_amount" gorm:"default:0"`
	VerifiedAt    *time.Time `json:"verified_at"`
}

// TableName specifies the table name for the MatchResult model
func (MatchResult) TableName() string {
	return "match_results"
}
