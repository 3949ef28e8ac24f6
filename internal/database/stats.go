package database

import (
	"clutchzone-api/internal/models"
)

// TournamentStats exposes the read-only tournament queries the realtime
// layer needs. It satisfies realtime.TournamentReader.
type TournamentStats struct{}

// ActiveTournamentCount returns how many tournaments are currently running.
func (TournamentStats) ActiveTournamentCount() (int64, error) {
	var count int64
	err := GetDB().Model(&models.Tournament{}).
		Where("status = ?", models.StatusActive).
		Count(&count).Error
	return count, err
}

// TournamentExists reports whether a tournament with the given id exists.
func (TournamentStats) TournamentExists(id uint) (bool, error) {
	var count int64
	err := GetDB().Model(&models.Tournament{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
