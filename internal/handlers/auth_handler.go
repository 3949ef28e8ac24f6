package handlers

import (
	"net/http"
	"regexp"
	"time"

	"clutchzone-api/internal/analytics"
	"clutchzone-api/internal/auth"
	"clutchzone-api/internal/database"
	"clutchzone-api/internal/middleware"
	"clutchzone-api/internal/models"
	"clutchzone-api/internal/notify"

	"github.com/gin-gonic/gin"
)

// welcomeXP is granted on registration; dailyBonusXP on each login.
const (
	welcomeXP    = 100
	dailyBonusXP = 50
)

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Username             string `json:"username" binding:"required,min=3,max=32"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8"`
	FavoriteGame         string `json:"favorite_game"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by register and login
type TokenResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int          `json:"expires_in"`
	User      *models.User `json:"user"`
	XPBonus   int          `json:"xp_bonus,omitempty"`
	LevelUp   bool         `json:"level_up,omitempty"`
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Register creates a new account and fires the welcome notifications.
// POST /api/auth/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Username, email and password are required."})
		return
	}
	if !usernamePattern.MatchString(req.Username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username can only contain letters, numbers, and underscores"})
		return
	}

	db := database.GetDB()
	var count int64
	db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is already taken"})
		return
	}
	db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is already registered"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user := models.User{
		Username:             req.Username,
		Email:                req.Email,
		PasswordHash:         hash,
		Role:                 models.RolePlayer,
		XP:                   welcomeXP,
		Level:                models.LevelFromXP(welcomeXP),
		FavoriteGame:         req.FavoriteGame,
		NotificationsEnabled: req.NotificationsEnabled,
		IsActive:             true,
	}
	if err := db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	analytics.UserRegistrations.Inc()
	// Notifications must not delay or fail registration.
	go notify.WelcomeUser(user.Username, user.Email, user.XP)

	token, err := auth.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, TokenResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int(auth.TTL().Seconds()),
		User:      &user,
	})
}

// Login authenticates by username or email and applies the daily XP bonus.
// POST /api/auth/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. Username and password are required."})
		return
	}

	db := database.GetDB()
	var user models.User
	err := db.Where("username = ? OR email = ?", req.Username, req.Username).First(&user).Error
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username/email or password"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		return
	}

	newXP := user.XP + dailyBonusXP
	newLevel := models.LevelFromXP(newXP)
	levelUp := newLevel > user.Level
	now := time.Now()

	db.Model(&user).Updates(map[string]any{
		"xp":         newXP,
		"level":      newLevel,
		"last_login": now,
	})
	user.XP = newXP
	user.Level = newLevel
	user.LastLogin = &now

	token, err := auth.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int(auth.TTL().Seconds()),
		User:      &user,
		XPBonus:   dailyBonusXP,
		LevelUp:   levelUp,
	})
}

// Me returns the authenticated user.
// GET /api/auth/me
func Me(c *gin.Context) {
	var user models.User
	if err := database.GetDB().First(&user, middleware.UserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// CheckUsernameRequest is the availability-check payload
type CheckUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// CheckUsername reports whether a username can still be claimed.
// POST /api/auth/check-username
func CheckUsername(c *gin.Context) {
	var req CheckUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}
	if len(req.Username) < 3 {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": "Username must be at least 3 characters long"})
		return
	}
	if !usernamePattern.MatchString(req.Username) {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": "Username can only contain letters, numbers, and underscores"})
		return
	}

	var count int64
	database.GetDB().Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": "Username is already taken"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "message": "Username is available"})
}
