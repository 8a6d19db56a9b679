package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"valgop/internal/models"
)

// recoveryInterval bounds how often a downed primary is probed again.
const recoveryInterval = time.Minute

// RecordStore is the client-log contract shared by the spreadsheet and
// SQLite implementations.
type RecordStore interface {
	Append(ctx context.Context, rec models.ClientRecord) error
	UpdateStatus(ctx context.Context, code, status string) error
	FindByCode(ctx context.Context, code string) (*models.ClientRecord, error)
}

// FailoverRecordStore writes to the primary store and falls back to the
// local one when the primary is down, retrying the primary at most once
// per recoveryInterval.
type FailoverRecordStore struct {
	primary  RecordStore
	fallback RecordStore
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverRecordStore(primary, fallback RecordStore, logger *zerolog.Logger) *FailoverRecordStore {
	return &FailoverRecordStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// shouldTryPrimary reports whether the primary should be attempted now,
// flipping the down flag once the recovery window has elapsed.
func (f *FailoverRecordStore) shouldTryPrimary() bool {
	if !f.isDown.Load() {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastCheck) < recoveryInterval {
		return false
	}
	f.lastCheck = time.Now()
	return true
}

func (f *FailoverRecordStore) markDown(op string, err error) {
	if f.isDown.CompareAndSwap(false, true) {
		f.logger.Warn().Err(err).Str("op", op).Msg("primary record store down, using fallback")
	}
	f.mu.Lock()
	f.lastCheck = time.Now()
	f.mu.Unlock()
}

func (f *FailoverRecordStore) markUp() {
	if f.isDown.CompareAndSwap(true, false) {
		f.logger.Info().Msg("primary record store recovered")
	}
}

func (f *FailoverRecordStore) Append(ctx context.Context, rec models.ClientRecord) error {
	if f.shouldTryPrimary() {
		if err := f.primary.Append(ctx, rec); err == nil {
			f.markUp()
			// Mirror into the fallback so exports stay complete even
			// when the primary never fails.
			if ferr := f.fallback.Append(ctx, rec); ferr != nil {
				f.logger.Warn().Err(ferr).Str("code", rec.Code).Msg("fallback mirror write failed")
			}
			return nil
		} else {
			f.markDown("append", err)
		}
	}
	return f.fallback.Append(ctx, rec)
}

func (f *FailoverRecordStore) UpdateStatus(ctx context.Context, code, status string) error {
	if f.shouldTryPrimary() {
		err := f.primary.UpdateStatus(ctx, code, status)
		switch {
		case err == nil:
			f.markUp()
			if ferr := f.fallback.UpdateStatus(ctx, code, status); ferr != nil && !errors.Is(ferr, models.ErrNotFound) {
				f.logger.Debug().Err(ferr).Str("code", code).Msg("fallback status update failed")
			}
			return nil
		case errors.Is(err, models.ErrNotFound):
			f.markUp()
			return err
		default:
			f.markDown("update_status", err)
		}
	}
	return f.fallback.UpdateStatus(ctx, code, status)
}

func (f *FailoverRecordStore) FindByCode(ctx context.Context, code string) (*models.ClientRecord, error) {
	if f.shouldTryPrimary() {
		if rec, err := f.primary.FindByCode(ctx, code); err == nil {
			f.markUp()
			return rec, nil
		} else if errors.Is(err, models.ErrNotFound) {
			f.markUp()
			return nil, err
		} else {
			f.markDown("find_by_code", err)
		}
	}
	return f.fallback.FindByCode(ctx, code)
}
