package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"valgop/internal/config"
	"valgop/internal/models"
)

// EmailSender delivers plain-text notices over SMTP.
type EmailSender struct {
	cfg      *config.Config
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailSender(cfg *config.Config) *EmailSender {
	return &EmailSender{cfg: cfg, sendMail: smtp.SendMail}
}

func (e *EmailSender) SendConfirmation(ctx context.Context, rec models.ClientRecord) error {
	subject := fmt.Sprintf("Cita confirmada — código %s", rec.Code)
	body := fmt.Sprintf(
		"Hola %s,\n\nTu cita ha sido confirmada.\n\nCódigo de reserva: %s\nEspecialista: %s\nServicio: %s\nFecha: %s\nHora: %s\n\nGuarda este código para cancelar o consultar tu cita.\n\n%s",
		rec.ClientName, rec.Code, rec.ResourceLabel, rec.ServiceLabel, rec.Date, rec.Time,
		e.cfg.Business.Name,
	)
	return e.send(rec.Email, subject, body)
}

func (e *EmailSender) SendCancellation(ctx context.Context, rec models.ClientRecord) error {
	subject := fmt.Sprintf("Cita cancelada — código %s", rec.Code)
	body := fmt.Sprintf(
		"Hola %s,\n\nTu cita del %s a las %s ha sido cancelada.\n\n%s",
		rec.ClientName, rec.Date, rec.Time, e.cfg.Business.Name,
	)
	return e.send(rec.Email, subject, body)
}

func (e *EmailSender) send(to, subject, body string) error {
	if to == "" {
		return nil
	}
	s := e.cfg.SMTP
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.User)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	auth := smtp.PlainAuth("", s.User, s.Pass, s.Host)
	if err := e.sendMail(addr, auth, s.User, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
