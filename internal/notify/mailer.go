package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// Mailer delivers transactional email over SMTP. A mailer with an empty
// host is disabled: every send is a silent no-op.
type Mailer struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	// sendMail is swapped out in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer creates an SMTP mailer. host may be empty.
func NewMailer(host string, port int, user, password, from string) *Mailer {
	return &Mailer{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		sendMail: smtp.SendMail,
	}
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<html>
<body>
<h1>Welcome to ClutchZone, {{.Username}}!</h1>
<p>Your account is ready. You start with <b>{{.XP}} XP</b> — jump into a
tournament and start climbing the leaderboard.</p>
</body>
</html>`))

var reminderTemplate = template.Must(template.New("reminder").Parse(`<html>
<body>
<h1>Heads up, {{.Username}}!</h1>
<p><b>{{.TournamentName}}</b> starts at {{.StartsAt}}. Good luck!</p>
</body>
</html>`))

func (m *Mailer) send(to, subject string, body []byte) error {
	if m.Host == "" {
		return nil
	}
	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.Write(body)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.User, m.Password, m.Host)
	return m.sendMail(addr, auth, m.From, []string{to}, msg.Bytes())
}

// Welcome sends the account-created email.
func (m *Mailer) Welcome(to, username string, xp int) error {
	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, map[string]any{
		"Username": username,
		"XP":       xp,
	}); err != nil {
		return err
	}
	return m.send(to, "Welcome to ClutchZone!", body.Bytes())
}

// TournamentReminder sends a start-time reminder.
func (m *Mailer) TournamentReminder(to, username, tournamentName, startsAt string) error {
	var body bytes.Buffer
	if err := reminderTemplate.Execute(&body, map[string]any{
		"Username":       username,
		"TournamentName": tournamentName,
		"StartsAt":       startsAt,
	}); err != nil {
		return err
	}
	return m.send(to, fmt.Sprintf("%s is starting soon", tournamentName), body.Bytes())
}
