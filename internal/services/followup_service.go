// Package services – FollowupService
//
// Closes cancellation and reschedule follow-ups once the front desk has
// called the patient. The close is optimistic: the row leaves the queue
// immediately and the sheet write happens in the background.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/whitesmile/frontdesk-backend/internal/domain"
	"github.com/whitesmile/frontdesk-backend/internal/feeds"
	"github.com/whitesmile/frontdesk-backend/internal/poller"
)

// FollowupService mutates follow-up rows.
type FollowupService struct {
	State   *poller.Poller
	Updater feeds.Updater
	Log     zerolog.Logger
}

func followupTab(kind domain.FollowupKind) string {
	if kind == domain.FollowupReschedule {
		return feeds.TabReschedule
	}
	return feeds.TabCancelled
}

func followupKey(r domain.FollowupRow) (map[string]any, error) {
	switch {
	case r.AppointmentID != "":
		return map[string]any{"appointment_id": r.AppointmentID}, nil
	case r.ID != "":
		return map[string]any{"id": r.ID}, nil
	}
	return nil, ErrMissingAppointmentID
}

// Close marks a follow-up handled. handledBy and note are optional audit
// fields written through to the sheet.
func (s *FollowupService) Close(ctx context.Context, kind domain.FollowupKind, id, handledBy, note string) (domain.FollowupRow, error) {
	tr := otel.Tracer("services/FollowupService")
	_, span := tr.Start(ctx, "Close",
		trace.WithAttributes(
			attribute.String("row.id", id),
			attribute.String("followup.kind", string(kind)),
		))
	defer span.End()

	r, ok := s.State.Followup(kind, id)
	if !ok {
		return domain.FollowupRow{}, ErrRowNotFound
	}
	if r.Status == domain.FollowupClosed {
		return domain.FollowupRow{}, ErrInvalidTransition
	}
	key, err := followupKey(r)
	if err != nil {
		return domain.FollowupRow{}, err
	}

	handledBy = strings.TrimSpace(handledBy)
	note = strings.TrimSpace(note)
	closedAt := time.Now().UTC()

	s.State.ApplyFollowupPatch(kind, id, func(r *domain.FollowupRow) {
		r.Status = domain.FollowupClosed
		r.HandledBy = handledBy
		r.HandledNote = note
		r.UpdatedAt = closedAt
	})

	tab := followupTab(kind)
	updates := map[string]any{
		"status":     string(domain.FollowupClosed),
		"updated_at": closedAt.Format(time.RFC3339),
	}
	if handledBy != "" {
		updates["handled_by"] = handledBy
	}
	if note != "" {
		updates["handled_note"] = note
	}
	go func() {
		wctx, cancel := context.WithTimeout(context.Background(), writebackTimeout)
		defer cancel()
		if err := s.Updater.UpdateRow(wctx, tab, key, updates); err != nil {
			s.Log.Error().Err(err).Str("tab", tab).Str("row_id", id).Msg("followup close write-back failed")
		}
	}()

	r, _ = s.State.Followup(kind, id)
	return r, nil
}
