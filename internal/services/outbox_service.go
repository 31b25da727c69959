// Package services – OutboxService
//
// This file implements the OutboxService, which applies front-desk actions
// to outbox rows: opening a WhatsApp conversation, confirming a send,
// undoing an accidental open, and editing the details of a row stuck in
// review. Status actions patch the in-memory state immediately and push the
// sheet write in the background; a detail edit is the one blocking write,
// because the front desk must know whether the correction stuck before the
// row can leave the review queue.
//
// Observability: all public methods are OpenTelemetry-instrumented.
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
	"github.com/whitesmile/frontdesk-backend/internal/textparse"
	"github.com/whitesmile/frontdesk-backend/internal/wa"
)

// writebackTimeout bounds a background sheet write.
const writebackTimeout = 15 * time.Second

// OutboxService mutates outbox rows.
type OutboxService struct {
	State   *poller.Poller
	Updater feeds.Updater
	Log     zerolog.Logger
}

// lookupKey addresses the row in the sheet. Appointment id wins; the
// idempotency key and generic id are fallbacks for hand-entered rows.
func lookupKey(m domain.OutboxMessage) (map[string]any, error) {
	switch {
	case m.AppointmentID != "":
		return map[string]any{"appointment_id": m.AppointmentID}, nil
	case m.IdempotencyKey != "":
		return map[string]any{"idempotency_key": m.IdempotencyKey}, nil
	case m.ID != "":
		return map[string]any{"id": m.ID}, nil
	}
	return nil, ErrMissingAppointmentID
}

// writeback pushes a sheet update in the background. Failures are logged;
// the next poll reconciles whatever the sheet actually holds.
func (s *OutboxService) writeback(tab string, key map[string]any, updates map[string]any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writebackTimeout)
		defer cancel()
		if err := s.Updater.UpdateRow(ctx, tab, key, updates); err != nil {
			s.Log.Error().Err(err).Str("tab", tab).Interface("key", key).Msg("outbox write-back failed")
		}
	}()
}

// MarkOpened records that the front desk opened the WhatsApp conversation
// for this row. Legal from ready or needs_review.
func (s *OutboxService) MarkOpened(ctx context.Context, id string) (domain.OutboxMessage, error) {
	tr := otel.Tracer("services/OutboxService")
	_, span := tr.Start(ctx, "MarkOpened",
		trace.WithAttributes(attribute.String("row.id", id)))
	defer span.End()

	m, ok := s.State.Outbox(id)
	if !ok {
		return domain.OutboxMessage{}, ErrRowNotFound
	}
	if m.SendStatus != domain.SendStatusReady && m.SendStatus != domain.SendStatusNeedsReview {
		return domain.OutboxMessage{}, ErrInvalidTransition
	}
	key, err := lookupKey(m)
	if err != nil {
		return domain.OutboxMessage{}, err
	}

	openedAt := time.Now().UTC()
	s.State.ApplyOutboxPatch(id, func(m *domain.OutboxMessage) {
		m.SendStatus = domain.SendStatusOpened
		m.OpenedAt = openedAt
	})
	s.writeback(feeds.TabOutbox, key, map[string]any{
		"send_status": string(domain.SendStatusOpened),
		"opened_at":   openedAt.Format(time.RFC3339),
	})

	m, _ = s.State.Outbox(id)
	return m, nil
}

// MarkSent records that the message went out. Legal from opened or ready.
func (s *OutboxService) MarkSent(ctx context.Context, id string) (domain.OutboxMessage, error) {
	tr := otel.Tracer("services/OutboxService")
	_, span := tr.Start(ctx, "MarkSent",
		trace.WithAttributes(attribute.String("row.id", id)))
	defer span.End()

	m, ok := s.State.Outbox(id)
	if !ok {
		return domain.OutboxMessage{}, ErrRowNotFound
	}
	if m.SendStatus != domain.SendStatusOpened && m.SendStatus != domain.SendStatusReady {
		return domain.OutboxMessage{}, ErrInvalidTransition
	}
	key, err := lookupKey(m)
	if err != nil {
		return domain.OutboxMessage{}, err
	}

	sentAt := time.Now().UTC()
	s.State.ApplyOutboxPatch(id, func(m *domain.OutboxMessage) {
		m.SendStatus = domain.SendStatusSent
		m.SentAt = sentAt
	})
	s.writeback(feeds.TabOutbox, key, map[string]any{
		"send_status": string(domain.SendStatusSent),
		"sent_at":     sentAt.Format(time.RFC3339),
	})

	m, _ = s.State.Outbox(id)
	return m, nil
}

// MarkNotSent undoes an accidental open, returning the row to the send
// queue. Legal only from opened.
func (s *OutboxService) MarkNotSent(ctx context.Context, id string) (domain.OutboxMessage, error) {
	tr := otel.Tracer("services/OutboxService")
	_, span := tr.Start(ctx, "MarkNotSent",
		trace.WithAttributes(attribute.String("row.id", id)))
	defer span.End()

	m, ok := s.State.Outbox(id)
	if !ok {
		return domain.OutboxMessage{}, ErrRowNotFound
	}
	if m.SendStatus != domain.SendStatusOpened {
		return domain.OutboxMessage{}, ErrInvalidTransition
	}
	key, err := lookupKey(m)
	if err != nil {
		return domain.OutboxMessage{}, err
	}

	s.State.ApplyOutboxPatch(id, func(m *domain.OutboxMessage) {
		m.SendStatus = domain.SendStatusReady
		m.OpenedAt = time.Time{}
	})
	s.writeback(feeds.TabOutbox, key, map[string]any{
		"send_status": string(domain.SendStatusReady),
		"opened_at":   "",
	})

	m, _ = s.State.Outbox(id)
	return m, nil
}

// DetailsUpdate carries the editable fields of a review-queue row. Nil
// fields are left untouched.
type DetailsUpdate struct {
	PatientName *string `json:"patient_name"`
	PhoneE164   *string `json:"phone_e164"`
	Dentist     *string `json:"dentist"`
	Service     *string `json:"service"`
	StartISO    *string `json:"start_iso"`
}

// UpdateDetails corrects the data defects of a row. Unlike the status
// actions this write is synchronous: the caller only sees success after the
// sheet accepted the correction. On success the row's status is reset to
// ready and its WhatsApp link rebuilt, so the next classification can move
// it out of the review queue.
func (s *OutboxService) UpdateDetails(ctx context.Context, id string, upd DetailsUpdate) (domain.OutboxMessage, error) {
	tr := otel.Tracer("services/OutboxService")
	ctx, span := tr.Start(ctx, "UpdateDetails",
		trace.WithAttributes(attribute.String("row.id", id)))
	defer span.End()

	m, ok := s.State.Outbox(id)
	if !ok {
		return domain.OutboxMessage{}, ErrRowNotFound
	}
	if m.SendStatus == domain.SendStatusSent {
		return domain.OutboxMessage{}, ErrInvalidTransition
	}
	key, err := lookupKey(m)
	if err != nil {
		return domain.OutboxMessage{}, err
	}

	updates := map[string]any{}
	if upd.PatientName != nil {
		updates["patient_name"] = strings.TrimSpace(*upd.PatientName)
	}
	if upd.Dentist != nil {
		updates["dentist"] = strings.TrimSpace(*upd.Dentist)
	}
	if upd.Service != nil {
		updates["service"] = strings.TrimSpace(*upd.Service)
	}
	if upd.StartISO != nil {
		iso := strings.TrimSpace(*upd.StartISO)
		if iso != "" {
			if _, perr := time.Parse(time.RFC3339, iso); perr != nil {
				return domain.OutboxMessage{}, ErrInvalidStatus
			}
		}
		updates["start_iso"] = iso
	}
	var phone string
	if upd.PhoneE164 != nil {
		phone = wa.SanitizePhone(*upd.PhoneE164)
		if !wa.IsValidPhone(phone) {
			return domain.OutboxMessage{}, ErrInvalidPhone
		}
		updates["phone_e164"] = phone
	}
	if len(updates) == 0 {
		return m, nil
	}
	updates["send_status"] = string(domain.SendStatusReady)
	updates["potential_duplicate"] = false

	if err := s.Updater.UpdateRow(ctx, feeds.TabOutbox, key, updates); err != nil {
		s.Log.Error().Err(err).Str("row_id", id).Msg("detail edit write failed")
		return domain.OutboxMessage{}, err
	}

	s.State.ApplyOutboxPatch(id, func(m *domain.OutboxMessage) {
		if upd.PatientName != nil {
			m.PatientName = strings.TrimSpace(*upd.PatientName)
		}
		if upd.Dentist != nil {
			m.Dentist = strings.TrimSpace(*upd.Dentist)
		}
		if upd.Service != nil {
			m.Service = strings.TrimSpace(*upd.Service)
		}
		if upd.StartISO != nil {
			m.StartISO = strings.TrimSpace(*upd.StartISO)
		}
		if upd.PhoneE164 != nil {
			m.PhoneE164 = phone
		}
		m.SendStatus = domain.SendStatusReady
		m.Duplicate = false
		if m.StartISO == "" {
			if iso, ok := textparse.ExtractStartISO(m.MessageText, m.CreatedAt); ok {
				m.StartISO = iso
			}
		}
		if wa.IsValidPhone(m.PhoneE164) && m.MessageText != "" {
			m.WALink = wa.BuildLink(m.PhoneE164, m.MessageText)
		}
	})

	m, _ = s.State.Outbox(id)
	return m, nil
}
