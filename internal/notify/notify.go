// Package notify delivers booking confirmations and cancellation notices
// to clients over email and WhatsApp. Senders are best-effort: failures
// are reported to the caller, who logs and moves on.
package notify

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"valgop/internal/models"
)

// Sender is one delivery channel.
type Sender interface {
	SendConfirmation(ctx context.Context, rec models.ClientRecord) error
	SendCancellation(ctx context.Context, rec models.ClientRecord) error
}

// Multi fans a notification out to every configured channel, rate-limited
// so a burst of bookings cannot trip provider quotas. The first channel
// error is returned after all channels have been attempted.
type Multi struct {
	senders []Sender
	limiter *rate.Limiter
	logger  zerolog.Logger
}

func NewMulti(logger zerolog.Logger, senders ...Sender) *Multi {
	return &Multi{
		senders: senders,
		limiter: rate.NewLimiter(rate.Limit(1), 5),
		logger:  logger.With().Str("component", "notify").Logger(),
	}
}

func (m *Multi) send(ctx context.Context, rec models.ClientRecord, each func(Sender) error) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	var first error
	for _, s := range m.senders {
		if err := each(s); err != nil {
			m.logger.Warn().Err(err).Str("code", rec.Code).Msg("channel delivery failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (m *Multi) SendConfirmation(ctx context.Context, rec models.ClientRecord) error {
	return m.send(ctx, rec, func(s Sender) error { return s.SendConfirmation(ctx, rec) })
}

func (m *Multi) SendCancellation(ctx context.Context, rec models.ClientRecord) error {
	return m.send(ctx, rec, func(s Sender) error { return s.SendCancellation(ctx, rec) })
}
