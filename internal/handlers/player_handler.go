package handlers

import (
	"net/http"
	"strconv"
	"time"

	"clutchzone-api/internal/cache"
	"clutchzone-api/internal/database"
	"clutchzone-api/internal/middleware"
	"clutchzone-api/internal/models"

	"github.com/gin-gonic/gin"
)

// PlayerStats aggregates a player's verified match history.
type PlayerStats struct {
	TotalTournaments int64   `json:"total_tournaments"`
	Wins             int64   `json:"wins"`
	TotalKills       int     `json:"total_kills"`
	BestRank         int     `json:"best_rank"`
	WinRate          float64 `json:"win_rate"`
}

// PlayerProfile is the public view of a player.
type PlayerProfile struct {
	ID           uint        `json:"id"`
	Username     string      `json:"username"`
	XP           int         `json:"xp"`
	Level        int         `json:"level"`
	FavoriteGame string      `json:"favorite_game,omitempty"`
	IsVerified   bool        `json:"is_verified"`
	CreatedAt    time.Time   `json:"created_at"`
	Stats        PlayerStats `json:"stats"`
}

// LeaderboardEntry is one row of the XP leaderboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	XP       int    `json:"xp"`
	Level    int    `json:"level"`
}

// leaderboardTTL bounds how stale the cached leaderboard can get.
const leaderboardTTL = 30 * time.Second

var leaderboardCache = cache.New[int, []LeaderboardEntry]()

func playerStats(userID uint) PlayerStats {
	db := database.GetDB()
	stats := PlayerStats{}

	db.Model(&models.Registration{}).Where("user_id = ?", userID).Count(&stats.TotalTournaments)

	db.Model(&models.MatchResult{}).
		Where("user_id = ? AND verified = ? AND rank = 1", userID, true).
		Count(&stats.Wins)

	var agg struct {
		TotalKills int
		BestRank   int
	}
	db.Model(&models.MatchResult{}).
		Select("COALESCE(SUM(kills), 0) AS total_kills, COALESCE(MIN(rank), 0) AS best_rank").
		Where("user_id = ? AND verified = ?", userID, true).
		Scan(&agg)
	stats.TotalKills = agg.TotalKills
	stats.BestRank = agg.BestRank

	var played int64
	db.Model(&models.MatchResult{}).
		Where("user_id = ? AND verified = ?", userID, true).Count(&played)
	if played > 0 {
		stats.WinRate = float64(stats.Wins) / float64(played)
	}
	return stats
}

func profileOf(u *models.User) PlayerProfile {
	return PlayerProfile{
		ID:           u.ID,
		Username:     u.Username,
		XP:           u.XP,
		Level:        u.Level,
		FavoriteGame: u.FavoriteGame,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
		Stats:        playerStats(u.ID),
	}
}

// GetMyProfile returns the caller's profile with aggregate stats.
// GET /api/players/me
func GetMyProfile(c *gin.Context) {
	var user models.User
	if err := database.GetDB().First(&user, middleware.UserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, profileOf(&user))
}

// GetPlayerProfile returns any player's public profile.
// GET /api/players/:id
func GetPlayerProfile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
		return
	}
	var user models.User
	if err := database.GetDB().First(&user, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		return
	}
	c.JSON(http.StatusOK, profileOf(&user))
}

// ListPlayers searches players by username prefix.
// GET /api/players
func ListPlayers(c *gin.Context) {
	db := database.GetDB()
	query := db.Model(&models.User{}).Where("is_active = ?", true)
	if search := c.Query("search"); search != "" {
		query = query.Where("username LIKE ?", search+"%")
	}

	var users []models.User
	if err := query.Order("xp desc").Limit(50).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch players"})
		return
	}

	players := make([]gin.H, 0, len(users))
	for _, u := range users {
		players = append(players, gin.H{
			"id":       u.ID,
			"username": u.Username,
			"xp":       u.XP,
			"level":    u.Level,
		})
	}
	c.JSON(http.StatusOK, gin.H{"players": players, "count": len(players)})
}

func topPlayers(limit int) ([]LeaderboardEntry, error) {
	if entries, ok := leaderboardCache.Get(limit); ok {
		return entries, nil
	}

	var users []models.User
	err := database.GetDB().
		Where("is_active = ?", true).
		Order("xp desc").Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:     i + 1,
			UserID:   u.ID,
			Username: u.Username,
			XP:       u.XP,
			Level:    u.Level,
		})
	}
	leaderboardCache.Set(limit, entries, leaderboardTTL)
	return entries, nil
}

// GetLeaderboard returns the top players by XP, plus the caller's own rank
// when authenticated. Results are cached briefly; the board does not need
// to be real-time.
// GET /api/players/leaderboard
func GetLeaderboard(c *gin.Context) {
	limit := 10
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	entries, err := topPlayers(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}

	resp := gin.H{"leaderboard": entries, "count": len(entries)}
	if userID := middleware.UserID(c); userID != 0 {
		var user models.User
		if err := database.GetDB().First(&user, userID).Error; err == nil {
			var ahead int64
			database.GetDB().Model(&models.User{}).
				Where("is_active = ? AND xp > ?", true, user.XP).Count(&ahead)
			resp["my_rank"] = ahead + 1
			resp["my_xp"] = user.XP
		}
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitMatchResultRequest is a player's self-reported outcome
type SubmitMatchResultRequest struct {
	Rank          int    `json:"rank" binding:"required,min=1"`
	Kills         int    `json:"kills" binding:"min=0"`
	Score         int    `json:"score"`
	ScreenshotURL string `json:"screenshot_url"`
}

// SubmitMatchResult records an unverified match result for a tournament the
// caller is registered in. XP is computed now but only credited once an
// admin verifies the result.
// POST /api/tournaments/:id/results
func SubmitMatchResult(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	var req SubmitMatchResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rank is required"})
		return
	}

	db := database.GetDB()
	var tour models.Tournament
	if err := db.First(&tour, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tournament not found"})
		return
	}
	if tour.Status != models.StatusActive && tour.Status != models.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tournament has not started"})
		return
	}

	var registered int64
	db.Model(&models.Registration{}).
		Where("tournament_id = ? AND user_id = ?", tour.ID, userID).Count(&registered)
	if registered == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are not registered for this tournament"})
		return
	}

	var existing int64
	db.Model(&models.MatchResult{}).
		Where("tournament_id = ? AND user_id = ?", tour.ID, userID).Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Result already submitted for this tournament"})
		return
	}

	result := models.MatchResult{
		UserID:        userID,
		TournamentID:  tour.ID,
		Rank:          req.Rank,
		Kills:         req.Kills,
		Score:         req.Score,
		ScreenshotURL: req.ScreenshotURL,
		XPGained:      models.XPGain(req.Rank, req.Kills, tour.TournamentType),
	}
	if err := db.Create(&result).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit result"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Result submitted, pending verification",
		"result":  result,
	})
}
