package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"clutchzone-api/internal/auth"
	"clutchzone-api/internal/database"
	"clutchzone-api/internal/middleware"
	"clutchzone-api/internal/models"
	"clutchzone-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupTournamentRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	r := gin.New()
	r.GET("/api/tournaments", ListTournaments)
	r.GET("/api/tournaments/:id", GetTournament)

	protected := r.Group("/api", middleware.JWTAuthMiddleware())
	protected.POST("/tournaments/:id/register", RegisterForTournament)
	protected.DELETE("/tournaments/:id/register", UnregisterFromTournament)
	protected.GET("/tournaments/:id/participants", ListParticipants)

	admin := r.Group("/api/admin", middleware.JWTAuthMiddleware(), middleware.AdminRequired())
	admin.POST("/tournaments", CreateTournament)
	admin.PUT("/tournaments/:id", UpdateTournament)
	admin.DELETE("/tournaments/:id", DeleteTournament)
	return r
}

func seedTournament(t *testing.T, status models.TournamentStatus, maxPlayers int) *models.Tournament {
	t.Helper()
	tour := &models.Tournament{
		Name:            "Friday Cup",
		Game:            "Valorant",
		Date:            time.Now().Add(48 * time.Hour),
		RegistrationEnd: time.Now().Add(24 * time.Hour),
		MaxParticipants: maxPlayers,
		Status:          status,
		TournamentType:  models.TypeBattleRoyale,
	}
	require.NoError(t, database.GetDB().Create(tour).Error)
	return tour
}

func tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(u.ID, u.Username, string(u.Role))
	require.NoError(t, err)
	return token
}

func TestListTournaments_FiltersAndCounts(t *testing.T) {
	r := setupTournamentRouter(t)
	db := database.GetDB()

	active := seedTournament(t, models.StatusActive, 100)
	seedTournament(t, models.StatusUpcoming, 100)

	user, err := testutil.SeedUser(db, "eve", "eve@example.com", models.RolePlayer)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Registration{UserID: user.ID, TournamentID: active.ID}).Error)

	w := doJSON(t, r, http.MethodGet, "/api/tournaments?status=active", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tournaments []TournamentResponse `json:"tournaments"`
		Count       int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	require.Equal(t, active.ID, resp.Tournaments[0].ID)
	require.Equal(t, int64(1), resp.Tournaments[0].ParticipantCount)
	// Anonymous callers never see is_registered set.
	require.False(t, resp.Tournaments[0].IsRegistered)
}

func TestGetTournament_ShowsRegistrationForCaller(t *testing.T) {
	r := setupTournamentRouter(t)
	db := database.GetDB()

	tour := seedTournament(t, models.StatusUpcoming, 100)
	user, err := testutil.SeedUser(db, "frank", "frank@example.com", models.RolePlayer)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/tournaments/%d/register", tour.ID), nil,
		map[string]string{"Authorization": "Bearer " + tokenFor(t, user)})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/tournaments/%d", tour.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp TournamentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.ParticipantCount)
}

func TestRegisterForTournament_Guards(t *testing.T) {
	r := setupTournamentRouter(t)
	db := database.GetDB()

	tour := seedTournament(t, models.StatusUpcoming, 1)
	u1, err := testutil.SeedUser(db, "gina", "gina@example.com", models.RolePlayer)
	require.NoError(t, err)
	u2, err := testutil.SeedUser(db, "hank", "hank@example.com", models.RolePlayer)
	require.NoError(t, err)

	path := fmt.Sprintf("/api/tournaments/%d/register", tour.ID)

	w := doJSON(t, r, http.MethodPost, path, nil,
		map[string]string{"Authorization": "Bearer " + tokenFor(t, u1)})
	require.Equal(t, http.StatusCreated, w.Code)

	// Duplicate registration.
	w = doJSON(t, r, http.MethodPost, path, nil,
		map[string]string{"Authorization": "Bearer " + tokenFor(t, u1)})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "already registered")

	// Tournament full.
	w = doJSON(t, r, http.MethodPost, path, nil,
		map[string]string{"Authorization": "Bearer " + tokenFor(t, u2)})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "full")

	// Registration closed.
	closed := seedTournament(t, models.StatusActive, 100)
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/tournaments/%d/register", closed.ID), nil,
		map[string]string{"Authorization": "Bearer " + tokenFor(t, u2)})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "closed")
}

func TestRegisterForTournament_EntryFeeCreatesPendingPayment(t *testing.T) {
	r := setupTournamentRouter(t)
	db := database.GetDB()

	tour := seedTournament(t, models.StatusUpcoming, 100)
	require.NoError(t, db.Model(tour).Update("entry_fee", 10.0).Error)
	user, err := testutil.SeedUser(db, "ivy", "ivy@example.com", models.RolePlayer)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/tournaments/%d/register", tour.ID), nil,
		map[string]string{"Authorization": "Bearer " + tokenFor(t, user)})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), string(models.PaymentPending))

	var payment models.Payment
	require.NoError(t, db.Where("user_id = ? AND tournament_id = ?", user.ID, tour.ID).First(&payment).Error)
	require.Equal(t, 10.0, payment.Amount)
	require.Equal(t, models.PaymentEntryFee, payment.Type)
}

func TestUnregisterFromTournament(t *testing.T) {
	r := setupTournamentRouter(t)
	db := database.GetDB()

	tour := seedTournament(t, models.StatusUpcoming, 100)
	user, err := testutil.SeedUser(db, "jack", "jack@example.com", models.RolePlayer)
	require.NoError(t, err)
	headers := map[string]string{"Authorization": "Bearer " + tokenFor(t, user)}
	path := fmt.Sprintf("/api/tournaments/%d/register", tour.ID)

	// Not registered yet.
	w := doJSON(t, r, http.MethodDelete, path, nil, headers)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, path, nil, headers)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodDelete, path, nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Registration{}).
		Where("user_id = ? AND tournament_id = ?", user.ID, tour.ID).Count(&count)
	require.Zero(t, count)
}

func TestCreateTournament_AdminOnly(t *testing.T) {
	r := setupTournamentRouter(t)
	db := database.GetDB()

	player, err := testutil.SeedUser(db, "kate", "kate@example.com", models.RolePlayer)
	require.NoError(t, err)
	admin, err := testutil.SeedUser(db, "root", "root@example.com", models.RoleAdmin)
	require.NoError(t, err)

	body := gin.H{
		"name":             "Winter Championship",
		"game":             "CS2",
		"date":             time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"registration_end": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"tournament_type":  "team_vs_team",
		"prize_pool":       500.0,
	}

	w := doJSON(t, r, http.MethodPost, "/api/admin/tournaments", body,
		map[string]string{"Authorization": "Bearer " + tokenFor(t, player)})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/admin/tournaments", body,
		map[string]string{"Authorization": "Bearer " + tokenFor(t, admin)})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Tournament
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, models.TypeTeamVsTeam, created.TournamentType)
	require.Equal(t, models.StatusUpcoming, created.Status)
	require.Equal(t, 100, created.MaxParticipants)
	require.Equal(t, admin.ID, created.CreatedBy)
}

func TestCreateTournament_RejectsBadWindow(t *testing.T) {
	r := setupTournamentRouter(t)
	admin, err := testutil.SeedUser(database.GetDB(), "root", "root@example.com", models.RoleAdmin)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/admin/tournaments", gin.H{
		"name":             "Backwards Cup",
		"game":             "CS2",
		"date":             time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"registration_end": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}, map[string]string{"Authorization": "Bearer " + tokenFor(t, admin)})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDeleteTournament(t *testing.T) {
	r := setupTournamentRouter(t)
	db := database.GetDB()

	tour := seedTournament(t, models.StatusUpcoming, 100)
	admin, err := testutil.SeedUser(db, "root", "root@example.com", models.RoleAdmin)
	require.NoError(t, err)
	headers := map[string]string{"Authorization": "Bearer " + tokenFor(t, admin)}

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/admin/tournaments/%d", tour.ID),
		gin.H{"prize_pool": 1000.0, "room_id": "ROOM-42"}, headers)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Tournament
	require.NoError(t, db.First(&updated, tour.ID).Error)
	require.Equal(t, 1000.0, updated.PrizePool)
	require.Equal(t, "ROOM-42", updated.RoomID)
	require.Equal(t, "Friday Cup", updated.Name) // untouched fields survive

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/admin/tournaments/%d", tour.ID), nil, headers)
	require.Equal(t, http.StatusOK, w.Code)

	require.Error(t, db.First(&models.Tournament{}, tour.ID).Error)
}

func TestListParticipants_SortedByXP(t *testing.T) {
	r := setupTournamentRouter(t)
	db := database.GetDB()

	tour := seedTournament(t, models.StatusUpcoming, 100)
	low, err := testutil.SeedUser(db, "low", "low@example.com", models.RolePlayer)
	require.NoError(t, err)
	high, err := testutil.SeedUser(db, "high", "high@example.com", models.RolePlayer)
	require.NoError(t, err)
	require.NoError(t, db.Model(high).Update("xp", 5000).Error)

	for _, u := range []*models.User{low, high} {
		require.NoError(t, db.Create(&models.Registration{UserID: u.ID, TournamentID: tour.ID}).Error)
	}

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/tournaments/%d/participants", tour.ID), nil,
		map[string]string{"Authorization": "Bearer " + tokenFor(t, low)})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Participants []struct {
			UserID   uint   `json:"user_id"`
			Username string `json:"username"`
		} `json:"participants"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Equal(t, "high", resp.Participants[0].Username)
}
