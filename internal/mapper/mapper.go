// Package mapper normalizes loosely-typed feed records into domain rows.
// Every field resolves through a fixed fallback chain: the camelCase key,
// the snake_case key, a value derived from the message text, and finally a
// literal default. A record missing every identity field still gets a usable
// ID so the dashboard never renders a keyless row.
package mapper

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/whitesmile/frontdesk-backend/internal/domain"
	"github.com/whitesmile/frontdesk-backend/internal/feeds"
	"github.com/whitesmile/frontdesk-backend/internal/sysutil"
	"github.com/whitesmile/frontdesk-backend/internal/textparse"
	"github.com/whitesmile/frontdesk-backend/internal/wa"
)

// timeLayouts are tried in order when parsing timestamp fields. Sheet cells
// are hand-edited often enough that a strict RFC3339 parse alone loses rows.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// str returns the first non-empty string value among the given keys.
func str(rec feeds.Record, keys ...string) string {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			if s, ok := v.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

// boolish interprets sheet truthiness: real booleans plus the string forms
// sysutil.IsTruthy accepts ("true", "1", "yes", "y", "on").
func boolish(rec feeds.Record, keys ...string) bool {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t
		case string:
			if sysutil.IsTruthy(t) {
				return true
			}
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "false", "0", "no", "":
				return false
			}
		}
	}
	return false
}

// timeAt parses the first present timestamp among keys, zero when none
// parse.
func timeAt(rec feeds.Record, keys ...string) time.Time {
	raw := str(rec, keys...)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// identity resolves a row ID through the ordered candidates, generating a
// fresh identifier only when every candidate is empty.
func identity(candidates ...string) string {
	if v := sysutil.FirstNonEmpty(candidates...); v != "" {
		return v
	}
	return uuid.NewString()
}

// MapOutbox maps one Outbox or Confirmed record. now supplies the creation
// fallback for records without a timestamp.
func MapOutbox(rec feeds.Record, now time.Time) domain.OutboxMessage {
	msg := str(rec, "messageText", "message_text", "message")
	idem := str(rec, "idempotencyKey", "idempotency_key")
	natural := str(rec, "naturalKey", "natural_key")
	apptID := str(rec, "appointmentId", "appointment_id")

	name := str(rec, "patientName", "patient_name")
	if name == "" {
		name = textparse.ExtractPatientName(msg)
	}
	if name == "" {
		name = "Unknown"
	}

	dentist := str(rec, "dentist", "dentist_name")
	if dentist == "" {
		dentist = textparse.ExtractDentist(msg)
	}
	if dentist == "" {
		dentist = "Unknown"
	}

	service := str(rec, "service", "service_name")
	if service == "" {
		if s, ok := textparse.ExtractService(msg); ok {
			service = s
		}
	}
	if service == "" {
		service = "Unknown"
	}

	createdAt := timeAt(rec, "createdAt", "created_at")
	if createdAt.IsZero() {
		createdAt = now
	}

	startISO := str(rec, "startIso", "start_iso", "startISO")
	if startISO == "" {
		if s, ok := textparse.ExtractStartISO(msg, createdAt); ok {
			startISO = s
		}
	}

	phone := wa.SanitizePhone(str(rec, "phoneE164", "phone_e164", "phone"))

	link := str(rec, "waLink", "wa_link")
	if link == "" && wa.IsValidPhone(phone) && msg != "" {
		link = wa.BuildLink(phone, msg)
	}

	status := domain.SendStatus(str(rec, "sendStatus", "send_status"))
	if status == "" {
		status = domain.SendStatusNeedsReview
	}

	msgType := domain.MessageType(str(rec, "messageType", "message_type", "type"))
	if msgType == "" {
		msgType = domain.TypeConfirm
	}

	return domain.OutboxMessage{
		ID:             identity(idem, natural, str(rec, "id"), apptID),
		AppointmentID:  apptID,
		IdempotencyKey: idem,
		PatientName:    name,
		PhoneE164:      phone,
		Dentist:        dentist,
		Service:        service,
		StartISO:       startISO,
		MessageText:    msg,
		WALink:         link,
		MessageType:    msgType,
		SendStatus:     status,
		Duplicate:      boolish(rec, "potentialDuplicate", "potential_duplicate", "duplicate"),
		CreatedAt:      createdAt,
		OpenedAt:       timeAt(rec, "openedAt", "opened_at"),
		SentAt:         timeAt(rec, "sentAt", "sent_at"),
	}
}

// MapFollowup maps one CancelledFollowUp or RescheduleFollowUp record. The
// cancelled feed keeps its note under status-adjacent reason keys; the
// reschedule feed uses a plain note column. Both collapse onto Reason.
func MapFollowup(rec feeds.Record, kind domain.FollowupKind, now time.Time) domain.FollowupRow {
	var status, reason string
	switch kind {
	case domain.FollowupCancelled:
		status = str(rec, "status", "followupStatus", "followup_status")
		reason = str(rec, "cancelReason", "cancel_reason", "reason")
	default:
		status = str(rec, "followupStatus", "followup_status", "status")
		reason = str(rec, "note", "reason", "reschedule_note")
	}
	if status == "" {
		status = string(domain.FollowupOpen)
	}

	name := str(rec, "patientName", "patient_name")
	if name == "" {
		name = "Unknown"
	}
	dentist := str(rec, "dentist", "dentist_name")
	if dentist == "" {
		dentist = "Unknown"
	}

	createdAt := timeAt(rec, "createdAt", "created_at")
	if createdAt.IsZero() {
		createdAt = now
	}

	sendReady := true
	if s := str(rec, "sendStatus", "send_status"); s != "" && s != "ready" {
		sendReady = false
	}

	return domain.FollowupRow{
		ID:            identity(str(rec, "id"), str(rec, "appointmentId", "appointment_id")),
		Kind:          kind,
		AppointmentID: str(rec, "appointmentId", "appointment_id"),
		PatientName:   name,
		PhoneE164:     wa.SanitizePhone(str(rec, "phoneE164", "phone_e164", "phone")),
		Dentist:       dentist,
		StartISO:      str(rec, "start", "startIso", "start_iso"),
		Reason:        reason,
		AISummary:     str(rec, "aiSummary", "ai_summary"),
		Status:        domain.FollowupStatus(status),
		SendReady:     sendReady,
		HandledBy:     str(rec, "handledBy", "handled_by"),
		HandledNote:   str(rec, "handledNote", "handled_note"),
		CreatedAt:     createdAt,
		UpdatedAt:     timeAt(rec, "updatedAt", "updated_at"),
	}
}

// MapRecall maps one NoNextAppointment record.
func MapRecall(rec feeds.Record, now time.Time) domain.RecallRow {
	name := str(rec, "patientName", "patient_name")
	if name == "" {
		name = "Unknown"
	}
	dentist := str(rec, "dentist", "dentist_name")
	if dentist == "" {
		dentist = "Unknown"
	}

	status := str(rec, "status", "recallStatus", "recall_status")
	if status == "" {
		status = string(domain.RecallReady)
	}

	createdAt := timeAt(rec, "createdAt", "created_at")
	if createdAt.IsZero() {
		createdAt = now
	}

	idem := str(rec, "idempotencyKey", "idempotency_key")
	return domain.RecallRow{
		ID:             identity(str(rec, "id"), idem),
		IdempotencyKey: idem,
		PatientName:    name,
		PhoneE164:      wa.SanitizePhone(str(rec, "phoneE164", "phone_e164", "phone")),
		Dentist:        dentist,
		LastVisitISO:   str(rec, "lastVisitIso", "last_visit_iso", "lastVisit", "last_visit"),
		MessageBlock:   str(rec, "messageBlock", "message_block", "messageText", "message_text"),
		Status:         domain.RecallStatus(status),
		CreatedAt:      createdAt,
		UpdatedAt:      timeAt(rec, "updatedAt", "updated_at"),
	}
}
