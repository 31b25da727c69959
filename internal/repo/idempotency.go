// Package repo – idempotency records.
//
// Repository helpers for the Idempotency model used to implement safe-retry
// semantics for the status-mutating POST endpoints. Records are keyed by
// (user_id, tab, key) so the same front-desk operator retrying the same
// action replays the stored outcome instead of mutating the sheet twice.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/whitesmile/frontdesk-backend/internal/domain"
)

// ErrNotFound mirrors gorm's record-not-found for callers that do not want
// to import gorm.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that an idempotency record already exists for the
// given (user_id, tab, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, userID, tab, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(tab) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("user_id = ? AND tab = ? AND key = ? AND expires_at > ?", userID, tab, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, err
}

// CreateIdempotency inserts a record and returns ErrDuplicate on unique violation.
func CreateIdempotency(ctx context.Context, db *gorm.DB, userID, tab, key, rowID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		UserID:    userID,
		Tab:       tab,
		Key:       key,
		RowID:     rowID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredIdempotency deletes expired records. Run periodically; the
// table otherwise grows without bound.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

// PurgeLoop runs PurgeExpiredIdempotency on every tick until ctx is
// cancelled. Meant to be started once as a goroutine from main; every <= 0
// selects an hourly cadence.
func PurgeLoop(ctx context.Context, db *gorm.DB, every time.Duration, log zerolog.Logger) {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := PurgeExpiredIdempotency(ctx, db, time.Now().UTC())
			switch {
			case err != nil:
				log.Warn().Err(err).Msg("idempotency purge failed")
			case n > 0:
				log.Debug().Int64("purged", n).Msg("idempotency purge")
			}
		}
	}
}
