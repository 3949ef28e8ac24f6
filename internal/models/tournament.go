package models

import (
	"time"

	"gorm.io/gorm"
)

// TournamentStatus represents the lifecycle state of a tournament
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
	StatusCancelled TournamentStatus = "cancelled"
)

// TournamentType determines scoring multipliers and bracket shape
type TournamentType string

const (
	TypeBattleRoyale TournamentType = "battle_royale"
	TypeElimination  TournamentType = "elimination"
	TypeTeamVsTeam   TournamentType = "team_vs_team"
)

// Tournament represents a scheduled competition.
type Tournament struct {
	gorm.Model
	Name            string           `json:"name" gorm:"not null"`
	Description     string           `json:"description"`
	Game            string           `json:"game" gorm:"not null;index"`
	Date            time.Time        `json:"date" gorm:"not null"`
	RegistrationEnd time.Time        `json:"registration_end" gorm:"not null"`
	MaxParticipants int              `json:"max_participants" gorm:"default:100"`
	EntryFee        float64          `json:"entry_fee" gorm:"default:0"`
	PrizePool       float64          `json:"prize_pool" gorm:"default:0"`
	RoomID          string           `json:"room_id,omitempty"`
	RoomPassword    string           `json:"-"`
	Status          TournamentStatus `json:"status" gorm:"default:'upcoming';index"`
	TournamentType  TournamentType   `json:"tournament_type" gorm:"column:tournament_type;default:'battle_royale'"`
	CreatedBy       uint             `json:"created_by" gorm:"index"`
}

// TableName specifies the table name for the Tournament model
func (Tournament) TableName() string {
	return "tournaments"
}

// RegistrationOpen reports whether new registrations are still accepted.
func (t *Tournament) RegistrationOpen(now time.Time) bool {
	return t.Status == StatusUpcoming && now.Before(t.RegistrationEnd)
}
