// Package domain defines the typed row shapes the dashboard pipeline works
// on. All rows originate in the spreadsheet-backed feeds and arrive loosely
// typed; the mapper package normalizes them into these structs. Only the
// status-like fields are ever written back; everything else is replaced
// wholesale on each poll cycle.
package domain

import "time"

// SendStatus is the outbox message lifecycle stored in the sheet. It moves
// forward only (ready → opened → sent), except that an explicit "not sent"
// correction returns an opened row to ready.
type SendStatus string

const (
	SendStatusReady       SendStatus = "ready"
	SendStatusOpened      SendStatus = "opened"
	SendStatusSent        SendStatus = "sent"
	SendStatusNeedsReview SendStatus = "needs_review"
)

// FollowupStatus tracks reception follow-up progress on cancelled and
// reschedule rows. Only "open" rows surface in the work queue.
type FollowupStatus string

const (
	FollowupOpen      FollowupStatus = "open"
	FollowupContacted FollowupStatus = "contacted"
	FollowupBooked    FollowupStatus = "booked"
	FollowupClosed    FollowupStatus = "closed"
)

// RecallStatus is the lifecycle of a recall (patient overdue for a return
// visit). A recall stays in the open queue unless it is done, not needed,
// or already recalled.
type RecallStatus string

const (
	RecallReady     RecallStatus = "ready"
	RecallDone      RecallStatus = "done"
	RecallNotNeeded RecallStatus = "not_needed"
	RecallRecalled  RecallStatus = "recalled"
)

// Open reports whether the recall still needs front-desk action.
func (s RecallStatus) Open() bool {
	switch s {
	case RecallDone, RecallNotNeeded, RecallRecalled:
		return false
	}
	return true
}

// MessageType tags why an outbox message exists.
type MessageType string

const (
	TypeConfirm           MessageType = "confirm"
	TypeReminder48hr      MessageType = "reminder_48hr"
	TypeReminderTomorrow  MessageType = "reminder_tomorrow"
	TypeReminder2h        MessageType = "reminder_2h"
	TypeRecallNudge1      MessageType = "recall_nudge1"
	TypeRecallNudge2      MessageType = "recall_nudge2"
	TypeRecallNudgeManual MessageType = "recall_nudge_manual"
)

// Label returns the human-readable description shown on dashboard cards.
func (t MessageType) Label() string {
	switch t {
	case TypeConfirm:
		return "Confirm booking details"
	case TypeReminder48hr:
		return "Reminder: 2 days away"
	case TypeReminderTomorrow:
		return "Reminder: tomorrow"
	case TypeReminder2h:
		return "Reminder: in 2 hours"
	case TypeRecallNudge1, TypeRecallNudge2, TypeRecallNudgeManual:
		return "Recall nudge"
	}
	return string(t)
}

// OutboxMessage is one outbound patient message. ID is never empty: the
// mapper falls back through idempotency key, natural key, generic id,
// appointment id and finally a generated identifier.
type OutboxMessage struct {
	ID             string      `json:"id"`
	AppointmentID  string      `json:"appointment_id"`
	IdempotencyKey string      `json:"idempotency_key,omitempty"`
	PatientName    string      `json:"patient_name"`
	PhoneE164      string      `json:"phone_e164"`
	Dentist        string      `json:"dentist"`
	Service        string      `json:"service"`
	StartISO       string      `json:"start_iso,omitempty"`
	MessageText    string      `json:"message_text"`
	WALink         string      `json:"wa_link"`
	MessageType    MessageType `json:"message_type"`
	SendStatus     SendStatus  `json:"send_status"`
	Duplicate      bool        `json:"potential_duplicate"`
	CreatedAt      time.Time   `json:"created_at"`
	OpenedAt       time.Time   `json:"opened_at"`
	SentAt         time.Time   `json:"sent_at"`
}

// StartTime parses StartISO, returning the zero time when absent or
// malformed.
func (m OutboxMessage) StartTime() time.Time {
	if m.StartISO == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, m.StartISO)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FollowupKind distinguishes the two follow-up feeds.
type FollowupKind string

const (
	FollowupCancelled  FollowupKind = "cancelled"
	FollowupReschedule FollowupKind = "reschedule"
)

// FollowupRow is a flagged appointment needing a reception call after a
// cancellation or reschedule request. Visible in the open queue only when
// Status == open and the gating SendReady flag is still set.
type FollowupRow struct {
	ID            string         `json:"id"`
	Kind          FollowupKind   `json:"kind"`
	AppointmentID string         `json:"appointment_id"`
	PatientName   string         `json:"patient_name"`
	PhoneE164     string         `json:"phone_e164,omitempty"`
	Dentist       string         `json:"dentist"`
	StartISO      string         `json:"start_iso,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	AISummary     string         `json:"ai_summary,omitempty"`
	Status        FollowupStatus `json:"followup_status"`
	SendReady     bool           `json:"send_ready"`
	HandledBy     string         `json:"handled_by,omitempty"`
	HandledNote   string         `json:"handled_note,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// InOpenQueue reports whether the row belongs in the open follow-up bucket.
func (r FollowupRow) InOpenQueue() bool {
	return r.Status == FollowupOpen && r.SendReady
}

// ActivityTime is the row's most recent activity instant, preferring the
// update timestamp over creation.
func (r FollowupRow) ActivityTime() time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

// RecallRow is a patient overdue for a return visit, carrying a copy-ready
// message block for the front desk.
type RecallRow struct {
	ID             string       `json:"id"`
	IdempotencyKey string       `json:"idempotency_key,omitempty"`
	PatientName    string       `json:"patient_name"`
	PhoneE164      string       `json:"phone_e164,omitempty"`
	Dentist        string       `json:"dentist"`
	LastVisitISO   string       `json:"last_visit_iso,omitempty"`
	MessageBlock   string       `json:"message_block,omitempty"`
	Status         RecallStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// LastVisit parses LastVisitISO, zero when absent or malformed.
func (r RecallRow) LastVisit() time.Time {
	if r.LastVisitISO == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, r.LastVisitISO)
	if err != nil {
		return time.Time{}
	}
	return t
}

// WeeklyEventSource names which feed produced a weekly event.
type WeeklyEventSource string

const (
	WeeklySourceOutbox   WeeklyEventSource = "outbox"
	WeeklySourceFollowup WeeklyEventSource = "followup"
	WeeklySourceRecall   WeeklyEventSource = "recall"
)

// WeeklyEvent is a derived record for the weekly summary. It is synthesized
// from the other feeds every cycle and never persisted.
type WeeklyEvent struct {
	ID          string            `json:"id"`
	PatientName string            `json:"patient_name"`
	Dentist     string            `json:"dentist"`
	Detail      string            `json:"detail"`
	Closed      bool              `json:"closed"`
	Date        time.Time         `json:"date"`
	Source      WeeklyEventSource `json:"source"`
}
