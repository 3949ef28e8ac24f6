package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clutchzone-api/internal/auth"
	"clutchzone-api/internal/database"
	"clutchzone-api/internal/middleware"
	"clutchzone-api/internal/models"
	"clutchzone-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	r := gin.New()
	r.POST("/api/auth/register", Register)
	r.POST("/api/auth/login", Login)
	r.POST("/api/auth/check-username", CheckUsername)
	r.GET("/api/auth/me", middleware.JWTAuthMiddleware(), Me)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_CreatesUserWithWelcomeXP(t *testing.T) {
	r := setupAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "bearer", resp.TokenType)
	require.Greater(t, resp.ExpiresIn, 0)
	require.Equal(t, "alice", resp.User.Username)
	require.Equal(t, welcomeXP, resp.User.XP)
	require.Equal(t, models.LevelFromXP(welcomeXP), resp.User.Level)
	require.Equal(t, models.RolePlayer, resp.User.Role)

	var stored models.User
	require.NoError(t, database.GetDB().First(&stored, resp.User.ID).Error)
	require.NotEqual(t, "supersecret", stored.PasswordHash)
	require.True(t, auth.CheckPassword(stored.PasswordHash, "supersecret"))
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	r := setupAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice", "email": "other@example.com", "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "already taken")

	w = doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice2", "email": "alice@example.com", "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "already registered")
}

func TestRegister_RejectsBadUsername(t *testing.T) {
	r := setupAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username": "bad name!", "email": "bad@example.com", "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "letters, numbers, and underscores")
}

func TestLogin_GrantsDailyBonus(t *testing.T) {
	r := setupAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username": "bob", "email": "bob@example.com", "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "bob", "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, welcomeXP+dailyBonusXP, resp.User.XP)
	require.Equal(t, dailyBonusXP, resp.XPBonus)
	require.False(t, resp.LevelUp) // 100 XP is already level 2; 150 stays there
	require.NotNil(t, resp.User.LastLogin)

	// Login also works with the email address.
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "bob@example.com", "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_RejectsBadCredentialsAndInactive(t *testing.T) {
	r := setupAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username": "carol", "email": "carol@example.com", "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "carol", "password": "wrongpass",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	require.NoError(t, database.GetDB().Model(&models.User{}).
		Where("username = ?", "carol").Update("is_active", false).Error)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "carol", "password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "deactivated")
}

func TestMe_ReturnsAuthenticatedUser(t *testing.T) {
	r := setupAuthRouter(t)

	user, err := testutil.SeedUser(database.GetDB(), "dave", "dave@example.com", models.RolePlayer)
	require.NoError(t, err)
	token, err := auth.GenerateToken(user.ID, user.Username, string(user.Role))
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, "dave", got.Username)
}

func TestCheckUsername(t *testing.T) {
	r := setupAuthRouter(t)

	_, err := testutil.SeedUser(database.GetDB(), "taken", "taken@example.com", models.RolePlayer)
	require.NoError(t, err)

	cases := []struct {
		username  string
		available bool
	}{
		{"taken", false},
		{"ab", false},
		{"has space", false},
		{"fresh_name", true},
	}
	for _, tc := range cases {
		w := doJSON(t, r, http.MethodPost, "/api/auth/check-username", gin.H{"username": tc.username}, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Available bool `json:"available"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, tc.available, resp.Available, "username %q", tc.username)
	}
}
