package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DiscordClient posts event notifications to a Discord webhook. A client
// with an empty URL is disabled: every send is a silent no-op.
type DiscordClient struct {
	WebhookURL string
	HTTPClient *http.Client
}

// NewDiscordClient creates a webhook client. url may be empty.
func NewDiscordClient(url string) *DiscordClient {
	return &DiscordClient{
		WebhookURL: url,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      *discordFooter `json:"footer,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

func (d *DiscordClient) post(payload discordPayload) error {
	if d.WebhookURL == "" {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := d.HTTPClient.Post(d.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// PlayerJoined announces a new registration to the community channel.
func (d *DiscordClient) PlayerJoined(username, email string, xp int) error {
	return d.post(discordPayload{
		Content: fmt.Sprintf("**%s** just joined the battle!", username),
		Embeds: []discordEmbed{{
			Title:       "New Player Joined ClutchZone!",
			Description: fmt.Sprintf("Welcome **%s** to the arena!", username),
			Color:       0x00ff00,
			Fields: []discordField{
				{Name: "Username", Value: username, Inline: true},
				{Name: "Email", Value: email, Inline: true},
				{Name: "Starting XP", Value: fmt.Sprintf("%d", xp), Inline: true},
			},
			Footer: &discordFooter{Text: "ClutchZone Elite Gaming Platform"},
		}},
	})
}

// TournamentAnnounced advertises a newly created tournament.
func (d *DiscordClient) TournamentAnnounced(name, game string, entryFee, prizePool float64, maxPlayers int) error {
	return d.post(discordPayload{
		Content: "New tournament is live! Don't miss out!",
		Embeds: []discordEmbed{{
			Title:       "New Tournament Alert!",
			Description: fmt.Sprintf("**%s** is now open for registration!", name),
			Color:       0xffd700,
			Fields: []discordField{
				{Name: "Game", Value: game, Inline: true},
				{Name: "Entry Fee", Value: fmt.Sprintf("$%.2f", entryFee), Inline: true},
				{Name: "Prize Pool", Value: fmt.Sprintf("$%.2f", prizePool), Inline: true},
				{Name: "Max Players", Value: fmt.Sprintf("%d", maxPlayers), Inline: true},
			},
			Footer: &discordFooter{Text: "Register now at ClutchZone!"},
		}},
	})
}

// SupportTicket forwards a support request to the staff channel.
func (d *DiscordClient) SupportTicket(username, subject, message string) error {
	return d.post(discordPayload{
		Embeds: []discordEmbed{{
			Title:       "New Support Ticket",
			Description: message,
			Color:       0xff4444,
			Fields: []discordField{
				{Name: "From", Value: username, Inline: true},
				{Name: "Subject", Value: subject, Inline: true},
			},
		}},
	})
}
