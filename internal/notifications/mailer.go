package notifications

import (
	"fmt"
	"net/smtp"
	"strings"

	"puntovuela/internal/config"
	"puntovuela/internal/models"
)

// Mailer sends transactional and broadcast email. A Mailer with an empty host
// is a no-op, mirroring how the Redis notifier degrades without a client.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	baseURL  string

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer creates a Mailer from SMTP configuration.
func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		baseURL:  cfg.AppBaseURL,
		send:     smtp.SendMail,
	}
}

// Enabled reports whether the mailer has an SMTP host configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.host != ""
}

func (m *Mailer) auth() smtp.Auth {
	if m.username == "" {
		return nil
	}
	return smtp.PlainAuth("", m.username, m.password, m.host)
}

// deliver builds an RFC 5322 message and hands it to the SMTP client. The
// envelope recipients are passed separately so Bcc recipients never appear in
// headers.
func (m *Mailer) deliver(to string, bcc []string, subject, body string) error {
	if !m.Enabled() {
		return nil
	}

	recipients := append([]string{}, bcc...)
	headers := []string{
		"From: " + m.from,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"Subject: " + subject,
	}
	if to != "" {
		recipients = append(recipients, to)
		headers = append(headers, "To: "+to)
	}
	if len(recipients) == 0 {
		return nil
	}

	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body + "\r\n"
	addr := m.host + ":" + m.port
	return m.send(addr, m.auth(), envelopeFrom(m.from), recipients, []byte(msg))
}

// SendVerificationEmail mails the account activation link to a new user.
func (m *Mailer) SendVerificationEmail(user *models.User, token string) error {
	link := fmt.Sprintf("%s/verify?token=%s", strings.TrimRight(m.baseURL, "/"), token)
	body := fmt.Sprintf(
		"Hola %s,\n\n"+
			"Gracias por registrarte en Voluntarios Digitales Punto Vuela.\n"+
			"Confirma tu correo con este enlace:\n\n%s\n\n"+
			"Si no creaste esta cuenta, ignora este mensaje.\n",
		user.FullName, link,
	)
	return m.deliver(user.Email, nil, "Confirma tu cuenta", body)
}

// SendNewRequestBroadcast announces a new help request to every verified user
// except the requester. Recipients go on the Bcc envelope only.
func (m *Mailer) SendNewRequestBroadcast(request *models.HelpRequest, recipients []string) error {
	if len(recipients) == 0 {
		return nil
	}
	body := fmt.Sprintf(
		"Hay una nueva solicitud de ayuda en Punto Vuela.\n\n"+
			"Categoría: %s\n"+
			"Descripción: %s\n\n"+
			"Entra en %s para aceptarla.\n",
		request.Category, request.Description, m.baseURL,
	)
	return m.deliver("", recipients, "Nueva solicitud de ayuda", body)
}

// envelopeFrom extracts the bare address from a "Name <addr>" From header.
func envelopeFrom(from string) string {
	if start := strings.LastIndex(from, "<"); start != -1 {
		if end := strings.LastIndex(from, ">"); end > start {
			return from[start+1 : end]
		}
	}
	return from
}
