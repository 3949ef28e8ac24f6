package handlers

import (
	"net/http"
	"strconv"
	"time"

	"clutchzone-api/internal/database"
	"clutchzone-api/internal/middleware"
	"clutchzone-api/internal/models"
	"clutchzone-api/internal/notify"

	"github.com/gin-gonic/gin"
)

// TournamentResponse decorates a tournament with registration info for the
// requesting user.
type TournamentResponse struct {
	models.Tournament
	ParticipantCount int64 `json:"participant_count"`
	IsRegistered     bool  `json:"is_registered"`
}

// CreateTournamentRequest represents the tournament creation payload
type CreateTournamentRequest struct {
	Name            string    `json:"name" binding:"required"`
	Description     string    `json:"description"`
	Game            string    `json:"game" binding:"required"`
	Date            time.Time `json:"date" binding:"required"`
	RegistrationEnd time.Time `json:"registration_end" binding:"required"`
	MaxParticipants int       `json:"max_participants"`
	EntryFee        float64   `json:"entry_fee"`
	PrizePool       float64   `json:"prize_pool"`
	TournamentType  string    `json:"tournament_type"`
}

// UpdateTournamentRequest represents the tournament update payload. All
// fields are optional; only provided ones are applied.
type UpdateTournamentRequest struct {
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	Game            *string    `json:"game"`
	Date            *time.Time `json:"date"`
	RegistrationEnd *time.Time `json:"registration_end"`
	MaxParticipants *int       `json:"max_participants"`
	EntryFee        *float64   `json:"entry_fee"`
	PrizePool       *float64   `json:"prize_pool"`
	RoomID          *string    `json:"room_id"`
	RoomPassword    *string    `json:"room_password"`
}

func tournamentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tournament ID"})
		return 0, false
	}
	return uint(id), true
}

func decorate(c *gin.Context, t models.Tournament) TournamentResponse {
	db := database.GetDB()
	resp := TournamentResponse{Tournament: t}
	db.Model(&models.Registration{}).Where("tournament_id = ?", t.ID).Count(&resp.ParticipantCount)
	if userID := middleware.UserID(c); userID != 0 {
		var n int64
		db.Model(&models.Registration{}).
			Where("tournament_id = ? AND user_id = ?", t.ID, userID).Count(&n)
		resp.IsRegistered = n > 0
	}
	return resp
}

// ListTournaments returns tournaments, optionally filtered by status and game.
// GET /api/tournaments
func ListTournaments(c *gin.Context) {
	db := database.GetDB()
	query := db.Model(&models.Tournament{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if game := c.Query("game"); game != "" {
		query = query.Where("game = ?", game)
	}

	var tournaments []models.Tournament
	if err := query.Order("date asc").Find(&tournaments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tournaments"})
		return
	}

	out := make([]TournamentResponse, 0, len(tournaments))
	for _, t := range tournaments {
		out = append(out, decorate(c, t))
	}
	c.JSON(http.StatusOK, gin.H{"tournaments": out, "count": len(out)})
}

// GetTournament returns one tournament by id.
// GET /api/tournaments/:id
func GetTournament(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	var t models.Tournament
	if err := database.GetDB().First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tournament not found"})
		return
	}
	c.JSON(http.StatusOK, decorate(c, t))
}

// CreateTournament creates a tournament (admin only) and announces it.
// POST /api/admin/tournaments
func CreateTournament(c *gin.Context) {
	var req CreateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, game, date and registration_end are required"})
		return
	}
	if !req.RegistrationEnd.Before(req.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Registration must close before the tournament starts"})
		return
	}

	t := models.Tournament{
		Name:            req.Name,
		Description:     req.Description,
		Game:            req.Game,
		Date:            req.Date,
		RegistrationEnd: req.RegistrationEnd,
		MaxParticipants: req.MaxParticipants,
		EntryFee:        req.EntryFee,
		PrizePool:       req.PrizePool,
		Status:          models.StatusUpcoming,
		TournamentType:  models.TypeBattleRoyale,
		CreatedBy:       middleware.UserID(c),
	}
	if t.MaxParticipants <= 0 {
		t.MaxParticipants = 100
	}
	switch models.TournamentType(req.TournamentType) {
	case models.TypeElimination:
		t.TournamentType = models.TypeElimination
	case models.TypeTeamVsTeam:
		t.TournamentType = models.TypeTeamVsTeam
	}

	if err := database.GetDB().Create(&t).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create tournament"})
		return
	}

	go notify.AnnounceTournament(t.Name, t.Game, t.EntryFee, t.PrizePool, t.MaxParticipants)
	if liveHub != nil {
		liveHub.SendGlobalAnnouncement(gin.H{
			"event":      "tournament_created",
			"tournament": t,
		})
	}

	c.JSON(http.StatusCreated, t)
}

// UpdateTournament applies a partial update (admin only).
// PUT /api/admin/tournaments/:id
func UpdateTournament(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	var req UpdateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	db := database.GetDB()
	var t models.Tournament
	if err := db.First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tournament not found"})
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Game != nil {
		updates["game"] = *req.Game
	}
	if req.Date != nil {
		updates["date"] = *req.Date
	}
	if req.RegistrationEnd != nil {
		updates["registration_end"] = *req.RegistrationEnd
	}
	if req.MaxParticipants != nil {
		updates["max_participants"] = *req.MaxParticipants
	}
	if req.EntryFee != nil {
		updates["entry_fee"] = *req.EntryFee
	}
	if req.PrizePool != nil {
		updates["prize_pool"] = *req.PrizePool
	}
	if req.RoomID != nil {
		updates["room_id"] = *req.RoomID
	}
	if req.RoomPassword != nil {
		updates["room_password"] = *req.RoomPassword
	}
	if len(updates) > 0 {
		if err := db.Model(&t).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tournament"})
			return
		}
	}

	if liveHub != nil {
		liveHub.SendTournamentUpdate(t.ID, gin.H{
			"event":      "tournament_updated",
			"tournament": t,
		})
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTournament cancels and soft-deletes a tournament (admin only).
// DELETE /api/admin/tournaments/:id
func DeleteTournament(c *gin.Context) {
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

	db.Model(&t).Update("status", models.StatusCancelled)
	if err := db.Delete(&t).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete tournament"})
		return
	}

	if liveHub != nil {
		liveHub.SendTournamentUpdate(t.ID, gin.H{
			"event":         "tournament_cancelled",
			"tournament_id": t.ID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tournament deleted"})
}

// RegisterForTournament signs the user up for a tournament.
// POST /api/tournaments/:id/register
func RegisterForTournament(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	db := database.GetDB()
	var t models.Tournament
	if err := db.First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tournament not found"})
		return
	}
	if !t.RegistrationOpen(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Registration is closed for this tournament"})
		return
	}

	var count int64
	db.Model(&models.Registration{}).
		Where("tournament_id = ? AND user_id = ?", t.ID, userID).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are already registered for this tournament"})
		return
	}

	db.Model(&models.Registration{}).Where("tournament_id = ?", t.ID).Count(&count)
	if count >= int64(t.MaxParticipants) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tournament is full"})
		return
	}

	reg := models.Registration{
		UserID:        userID,
		TournamentID:  t.ID,
		PaymentStatus: models.PaymentPaid,
	}
	if t.EntryFee > 0 {
		reg.PaymentStatus = models.PaymentPending
	}
	if err := db.Create(&reg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}
	if t.EntryFee > 0 {
		db.Create(&models.Payment{
			UserID:       userID,
			TournamentID: t.ID,
			Amount:       t.EntryFee,
			Type:         models.PaymentEntryFee,
		})
	}

	if liveHub != nil {
		liveHub.SendTournamentUpdate(t.ID, gin.H{
			"event":             "player_registered",
			"tournament_id":     t.ID,
			"participant_count": count + 1,
		})
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":        "Registered successfully",
		"registration":   reg,
		"payment_status": reg.PaymentStatus,
	})
}

// UnregisterFromTournament withdraws the user before registration closes.
// DELETE /api/tournaments/:id/register
func UnregisterFromTournament(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	db := database.GetDB()
	var t models.Tournament
	if err := db.First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tournament not found"})
		return
	}
	if t.Status != models.StatusUpcoming {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot withdraw after the tournament has started"})
		return
	}

	res := db.Where("tournament_id = ? AND user_id = ?", t.ID, userID).
		Delete(&models.Registration{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "You are not registered for this tournament"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Withdrawn from tournament"})
}

// ListParticipants returns the players registered for a tournament.
// GET /api/tournaments/:id/participants
func ListParticipants(c *gin.Context) {
	id, ok := tournamentID(c)
	if !ok {
		return
	}
	db := database.GetDB()

	var count int64
	db.Model(&models.Tournament{}).Where("id = ?", id).Count(&count)
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tournament not found"})
		return
	}

	type participant struct {
		UserID   uint   `json:"user_id"`
		Username string `json:"username"`
		Level    int    `json:"level"`
		XP       int    `json:"xp"`
	}
	var participants []participant
	err := db.Model(&models.Registration{}).
		Select("registrations.user_id, users.username, users.level, users.xp").
		Joins("JOIN users ON users.id = registrations.user_id").
		Where("registrations.tournament_id = ?", id).
		Order("users.xp desc").
		Scan(&participants).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch participants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants, "count": len(participants)})
}
