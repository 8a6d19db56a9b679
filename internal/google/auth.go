package google

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"valgop/internal/config"
)

var scopes = []string{
	sheets.SpreadsheetsScope,
	calendar.CalendarScope,
}

// TokenSource builds a service-account token source from the configured
// credentials. Private keys arriving through env vars carry literal \n
// sequences, so they are unescaped before use.
func TokenSource(ctx context.Context, cfg config.GoogleConfig) (oauth2.TokenSource, error) {
	if cfg.ClientEmail == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("google credentials are not configured")
	}
	conf := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n")),
		TokenURL:   "https://oauth2.googleapis.com/token",
		Scopes:     scopes,
	}
	return conf.TokenSource(ctx), nil
}

// NewSheets creates a Sheets API client bound to the token source.
func NewSheets(ctx context.Context, ts oauth2.TokenSource) (*sheets.Service, error) {
	svc, err := sheets.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return svc, nil
}

// NewCalendar creates a Calendar API client bound to the token source.
func NewCalendar(ctx context.Context, ts oauth2.TokenSource) (*calendar.Service, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create calendar client: %w", err)
	}
	return svc, nil
}
