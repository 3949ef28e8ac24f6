package handlers

import (
	"net/http"
	"strconv"
	"time"

	"clutchzone-api/internal/database"
	"clutchzone-api/internal/models"
	"clutchzone-api/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetAdminStats returns platform-wide totals for the admin dashboard.
// GET /api/admin/stats
func GetAdminStats(c *gin.Context) {
	db := database.GetDB()

	var totalUsers, totalTournaments, activeTournaments, totalRegistrations int64
	db.Model(&models.User{}).Count(&totalUsers)
	db.Model(&models.Tournament{}).Count(&totalTournaments)
	db.Model(&models.Tournament{}).Where("status = ?", models.StatusActive).Count(&activeTournaments)
	db.Model(&models.Registration{}).Count(&totalRegistrations)

	var revenue struct {
		Total float64
	}
	db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("type = ? AND status = ?", models.PaymentEntryFee, "completed").
		Scan(&revenue)

	var pendingResults int64
	db.Model(&models.MatchResult{}).Where("verified = ?", false).Count(&pendingResults)

	stats := gin.H{
		"total_users":         totalUsers,
		"total_tournaments":   totalTournaments,
		"active_tournaments":  activeTournaments,
		"total_registrations": totalRegistrations,
		"total_revenue":       revenue.Total,
		"pending_results":     pendingResults,
	}
	if liveHub != nil {
		stats["online_users"] = liveHub.OnlineUserCount()
	}
	c.JSON(http.StatusOK, stats)
}

// StartTournament moves an upcoming tournament to active.
// POST /api/admin/tournaments/:id/start
func StartTournament(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	db := database.GetDB()
	var t models.Tournament
	if err := db.First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tournament not found"})
		return
	}
	if t.Status != models.StatusUpcoming {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only upcoming tournaments can be started"})
		return
	}

	if err := db.Model(&t).Update("status", models.StatusActive).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start tournament"})
		return
	}
	t.Status = models.StatusActive

	// Email participants who opted in. Off the request path; failures are
	// logged by the sink.
	var participants []models.User
	db.Model(&models.User{}).
		Joins("JOIN registrations ON registrations.user_id = users.id").
		Where("registrations.tournament_id = ? AND users.notifications_enabled = ?", t.ID, true).
		Find(&participants)
	go func(users []models.User, name string, startsAt time.Time) {
		for _, u := range users {
			notify.RemindTournament(u.Email, u.Username, name, startsAt.Format(time.RFC1123))
		}
	}(participants, t.Name, t.Date)

	if liveHub != nil {
		liveHub.SendTournamentUpdate(t.ID, gin.H{
			"event":         "tournament_started",
			"tournament_id": t.ID,
			"room_id":       t.RoomID,
		})
	}
	c.JSON(http.StatusOK, t)
}

// CompleteTournament moves an active tournament to completed.
// POST /api/admin/tournaments/:id/complete
func CompleteTournament(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	db := database.GetDB()
	var t models.Tournament
	if err := db.First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tournament not found"})
		return
	}
	if t.Status != models.StatusActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only active tournaments can be completed"})
		return
	}

	if err := db.Model(&t).Update("status", models.StatusCompleted).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete tournament"})
		return
	}
	t.Status = models.StatusCompleted

	if liveHub != nil {
		liveHub.SendTournamentUpdate(t.ID, gin.H{
			"event":         "tournament_completed",
			"tournament_id": t.ID,
		})
	}
	c.JSON(http.StatusOK, t)
}

// VerifyMatchResult confirms a player-reported result and credits the XP it
// earned. Verification is the only path that changes a user's XP from match
// play.
// POST /api/admin/results/:id/verify
func VerifyMatchResult(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid result ID"})
		return
	}

	db := database.GetDB()
	var result models.MatchResult
	if err := db.First(&result, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Result not found"})
		return
	}
	if result.Verified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Result is already verified"})
		return
	}

	var user models.User
	if err := db.First(&user, result.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		return
	}

	now := time.Now()
	newXP := user.XP + result.XPGained
	newLevel := models.LevelFromXP(newXP)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&result).Updates(map[string]any{
			"verified":    true,
			"verified_at": now,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&user).Updates(map[string]any{
			"xp":    newXP,
			"level": newLevel,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify result"})
		return
	}

	notification := models.Notification{
		UserID:  user.ID,
		Title:   "Match result verified",
		Message: "Your match result was verified. XP awarded: " + strconv.Itoa(result.XPGained),
		Type:    models.NotifySuccess,
	}
	db.Create(&notification)

	if liveHub != nil {
		liveHub.SendUserNotification(user.ID, gin.H{
			"event":     "result_verified",
			"result_id": result.ID,
			"xp_gained": result.XPGained,
			"new_xp":    newXP,
			"new_level": newLevel,
			"level_up":  newLevel > user.Level,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Result verified",
		"xp_gained": result.XPGained,
		"new_xp":    newXP,
		"new_level": newLevel,
	})
}

// ListPendingResults returns unverified match results for review.
// GET /api/admin/results/pending
func ListPendingResults(c *gin.Context) {
	var results []models.MatchResult
	err := database.GetDB().
		Where("verified = ?", false).
		Order("created_at asc").
		Find(&results).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch results"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// ListUsers returns all accounts for the admin user table.
// GET /api/admin/users
func ListUsers(c *gin.Context) {
	db := database.GetDB()
	query := db.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at desc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// SetUserActive activates or deactivates an account.
// PUT /api/admin/users/:id/active
func SetUserActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := db.Model(&user).Update("is_active", *req.IsActive).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated", "is_active": *req.IsActive})
}
