// Package notify wraps the outbound notification sinks (Discord webhook,
// SMTP email). Sink failures are logged and never propagated: a failed
// notification must not fail the request that triggered it.
package notify

import (
	"clutchzone-api/internal/config"
	"clutchzone-api/internal/logger"

	"go.uber.org/zap"
)

var (
	discord = NewDiscordClient("")
	mailer  = NewMailer("", 0, "", "", "")
)

// Setup configures the package-level sinks from config. Called once from
// main; before that, all sinks are disabled.
func Setup(cfg *config.Config) {
	discord = NewDiscordClient(cfg.Discord.WebhookURL)
	mailer = NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
}

// WelcomeUser fires the registration notifications. Intended to be called in
// a goroutine off the request path.
func WelcomeUser(username, email string, xp int) {
	if err := mailer.Welcome(email, username, xp); err != nil {
		logger.Error("welcome email failed", zap.String("username", username), zap.Error(err))
	}
	if err := discord.PlayerJoined(username, email, xp); err != nil {
		logger.Error("discord welcome failed", zap.String("username", username), zap.Error(err))
	}
}

// RemindTournament emails one participant that their tournament is starting.
func RemindTournament(email, username, tournamentName, startsAt string) {
	if err := mailer.TournamentReminder(email, username, tournamentName, startsAt); err != nil {
		logger.Error("tournament reminder failed", zap.String("email", email), zap.Error(err))
	}
}

// ReportSupportTicket fires the support-ticket Discord notification.
func ReportSupportTicket(username, subject, message string) {
	if err := discord.SupportTicket(username, subject, message); err != nil {
		logger.Error("discord support ticket failed", zap.String("username", username), zap.Error(err))
	}
}

// AnnounceTournament fires the new-tournament Discord notification.
func AnnounceTournament(name, game string, entryFee, prizePool float64, maxPlayers int) {
	if err := discord.TournamentAnnounced(name, game, entryFee, prizePool, maxPlayers); err != nil {
		logger.Error("discord tournament announcement failed", zap.String("tournament", name), zap.Error(err))
	}
}
