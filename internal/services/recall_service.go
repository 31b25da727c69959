// Package services – RecallService
//
// Moves recall rows through their lifecycle. Any of the closed statuses
// removes the row from the recall queue on the next snapshot; setting it
// back to ready reopens it.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/whitesmile/frontdesk-backend/internal/domain"
	"github.com/whitesmile/frontdesk-backend/internal/feeds"
	"github.com/whitesmile/frontdesk-backend/internal/poller"
)

// RecallService mutates recall rows.
type RecallService struct {
	State   *poller.Poller
	Updater feeds.Updater
	Log     zerolog.Logger
}

func validRecallStatus(s domain.RecallStatus) bool {
	switch s {
	case domain.RecallReady, domain.RecallDone, domain.RecallNotNeeded, domain.RecallRecalled:
		return true
	}
	return false
}

func recallKey(r domain.RecallRow) (map[string]any, error) {
	switch {
	case r.IdempotencyKey != "":
		return map[string]any{"idempotency_key": r.IdempotencyKey}, nil
	case r.ID != "":
		return map[string]any{"id": r.ID}, nil
	}
	return nil, ErrMissingAppointmentID
}

// SetStatus updates one recall's lifecycle status.
func (s *RecallService) SetStatus(ctx context.Context, id string, status domain.RecallStatus) (domain.RecallRow, error) {
	tr := otel.Tracer("services/RecallService")
	_, span := tr.Start(ctx, "SetStatus",
		trace.WithAttributes(
			attribute.String("row.id", id),
			attribute.String("recall.status", string(status)),
		))
	defer span.End()

	if !validRecallStatus(status) {
		return domain.RecallRow{}, ErrInvalidStatus
	}
	r, ok := s.State.Recall(id)
	if !ok {
		return domain.RecallRow{}, ErrRowNotFound
	}
	key, err := recallKey(r)
	if err != nil {
		return domain.RecallRow{}, err
	}

	updatedAt := time.Now().UTC()
	s.State.ApplyRecallPatch(id, func(r *domain.RecallRow) {
		r.Status = status
		r.UpdatedAt = updatedAt
	})

	go func() {
		wctx, cancel := context.WithTimeout(context.Background(), writebackTimeout)
		defer cancel()
		err := s.Updater.UpdateRow(wctx, feeds.TabRecall, key, map[string]any{
			"status":     string(status),
			"updated_at": updatedAt.Format(time.RFC3339),
		})
		if err != nil {
			s.Log.Error().Err(err).Str("row_id", id).Msg("recall status write-back failed")
		}
	}()

	r, _ = s.State.Recall(id)
	return r, nil
}
