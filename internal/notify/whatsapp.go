package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"valgop/internal/config"
	"valgop/internal/models"
)

// WhatsAppSender pushes a text message through the configured gateway.
type WhatsAppSender struct {
	cfg    *config.Config
	client *http.Client
}

func NewWhatsAppSender(cfg *config.Config) *WhatsAppSender {
	return &WhatsAppSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type whatsAppMessage struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

func (w *WhatsAppSender) SendConfirmation(ctx context.Context, rec models.ClientRecord) error {
	text := fmt.Sprintf(
		"✅ Cita confirmada\n\nCódigo: %s\nEspecialista: %s\nServicio: %s\nFecha: %s\nHora: %s",
		rec.Code, rec.ResourceLabel, rec.ServiceLabel, rec.Date, rec.Time,
	)
	return w.push(ctx, rec.Phone, text)
}

func (w *WhatsAppSender) SendCancellation(ctx context.Context, rec models.ClientRecord) error {
	text := fmt.Sprintf("❌ Cita cancelada\n\nCódigo: %s\nFecha: %s\nHora: %s",
		rec.Code, rec.Date, rec.Time)
	return w.push(ctx, rec.Phone, text)
}

func (w *WhatsAppSender) push(ctx context.Context, phone, text string) error {
	if phone == "" || w.cfg.WhatsApp.APIURL == "" {
		return nil
	}
	payload, err := json.Marshal(whatsAppMessage{Number: phone, Message: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WhatsApp.APIURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if key := w.cfg.WhatsApp.APIKey; key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
