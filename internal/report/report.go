// Package report derives the dashboard's aggregate numbers from a cycle's
// classified rows: completion percentages, the weekly activity window, and
// the deduplicated all-patients roll-up.
package report

import (
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/whitesmile/frontdesk-backend/internal/classify"
	"github.com/whitesmile/frontdesk-backend/internal/clinictime"
	"github.com/whitesmile/frontdesk-backend/internal/domain"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// SendCompletionPercent is today's completed sends over all rows still
// actionable today, rounded to the nearest integer. Rows sent on earlier
// days are excluded on both sides, so a quiet morning reads 0, not 100.
func SendCompletionPercent(b classify.Buckets) int {
	done := len(b.CompletedToday)
	total := len(b.SendNow) + len(b.Opened) + done
	if total == 0 {
		return 0
	}
	return int(float64(done)/float64(total)*100 + 0.5)
}

// DeriveWeeklyEvents synthesizes the weekly summary from all feeds, keeping
// only events whose date falls on one of the trailing seven clinic dates.
// Events are never persisted; the list is rebuilt every cycle.
func DeriveWeeklyEvents(msgs []domain.OutboxMessage, followups []domain.FollowupRow, recs []domain.RecallRow, now time.Time) []domain.WeeklyEvent {
	window := make(map[string]struct{}, 7)
	for _, k := range clinictime.DateKeys(7, now) {
		window[k] = struct{}{}
	}
	inWindow := func(t time.Time) bool {
		if t.IsZero() {
			return false
		}
		_, ok := window[clinictime.DateKey(t)]
		return ok
	}

	var events []domain.WeeklyEvent
	for _, m := range msgs {
		at := m.SentAt
		closed := m.SendStatus == domain.SendStatusSent
		if at.IsZero() {
			at = m.CreatedAt
		}
		if !inWindow(at) {
			continue
		}
		events = append(events, domain.WeeklyEvent{
			ID:          "outbox-" + m.ID,
			PatientName: m.PatientName,
			Dentist:     m.Dentist,
			Detail:      m.MessageType.Label(),
			Closed:      closed,
			Date:        at,
			Source:      domain.WeeklySourceOutbox,
		})
	}
	for _, f := range followups {
		at := f.ActivityTime()
		if !inWindow(at) {
			continue
		}
		detail := "Cancellation follow-up"
		if f.Kind == domain.FollowupReschedule {
			detail = "Reschedule follow-up"
		}
		events = append(events, domain.WeeklyEvent{
			ID:          "followup-" + f.ID,
			PatientName: f.PatientName,
			Dentist:     f.Dentist,
			Detail:      detail,
			Closed:      !f.InOpenQueue(),
			Date:        at,
			Source:      domain.WeeklySourceFollowup,
		})
	}
	for _, r := range recs {
		at := r.UpdatedAt
		if at.IsZero() {
			at = r.CreatedAt
		}
		if !inWindow(at) {
			continue
		}
		events = append(events, domain.WeeklyEvent{
			ID:          "recall-" + r.ID,
			PatientName: r.PatientName,
			Dentist:     r.Dentist,
			Detail:      "Recall due",
			Closed:      !r.Status.Open(),
			Date:        at,
			Source:      domain.WeeklySourceRecall,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})
	return events
}

// WeeklyClosurePercent is closed events over all weekly events, rounded.
func WeeklyClosurePercent(events []domain.WeeklyEvent) int {
	if len(events) == 0 {
		return 0
	}
	closed := 0
	for _, e := range events {
		if e.Closed {
			closed++
		}
	}
	return int(float64(closed)/float64(len(events))*100 + 0.5)
}

// Patient status priority for the all-patients roll-up. Lower wins when the
// same patient appears in several feeds.
const (
	statusFollowupOpen = 1
	statusRecallDue    = 2
	statusNeedsReview  = 3
	statusOutboxOpen   = 4
	statusCompleted    = 5
)

var statusLabels = map[int]string{
	statusFollowupOpen: "Follow-up open",
	statusRecallDue:    "Recall due",
	statusNeedsReview:  "Needs review",
	statusOutboxOpen:   "Outbox open",
	statusCompleted:    "Completed",
}

// PatientSummary is one deduplicated patient across every feed.
type PatientSummary struct {
	Name         string    `json:"name"`
	PhoneE164    string    `json:"phone_e164,omitempty"`
	Dentist      string    `json:"dentist,omitempty"`
	Status       string    `json:"status"`
	LastActivity time.Time `json:"last_activity"`
}

type patientAcc struct {
	PatientSummary
	priority int
}

// AllPatients merges every feed into one patient-per-name list. For a
// patient seen more than once the most recent activity wins, and the
// highest-priority (lowest-numbered) status wins independently of which row
// carried the activity. Sorted most recent activity first.
func AllPatients(b classify.Buckets, followups []domain.FollowupRow, recs []domain.RecallRow) []PatientSummary {
	byName := map[string]*patientAcc{}

	merge := func(name, phone, dentist string, prio int, at time.Time) {
		if name == "" {
			name = "Unknown"
		}
		display := titleCaser.String(name)
		acc, ok := byName[display]
		if !ok {
			acc = &patientAcc{priority: prio}
			acc.Name = display
			acc.PhoneE164 = phone
			acc.Dentist = dentist
			acc.LastActivity = at
			byName[display] = acc
		} else {
			if at.After(acc.LastActivity) {
				acc.LastActivity = at
			}
			if prio < acc.priority {
				acc.priority = prio
			}
			if acc.PhoneE164 == "" {
				acc.PhoneE164 = phone
			}
			if acc.Dentist == "" || acc.Dentist == "Unknown" {
				if dentist != "" {
					acc.Dentist = dentist
				}
			}
		}
		acc.Status = statusLabels[acc.priority]
	}

	outboxAt := func(m domain.OutboxMessage) time.Time {
		switch {
		case !m.SentAt.IsZero():
			return m.SentAt
		case !m.OpenedAt.IsZero():
			return m.OpenedAt
		default:
			return m.CreatedAt
		}
	}

	for _, m := range b.SendNow {
		merge(m.PatientName, m.PhoneE164, m.Dentist, statusOutboxOpen, outboxAt(m))
	}
	for _, m := range b.Opened {
		merge(m.PatientName, m.PhoneE164, m.Dentist, statusOutboxOpen, outboxAt(m))
	}
	for _, m := range b.NeedsReview {
		merge(m.PatientName, m.PhoneE164, m.Dentist, statusNeedsReview, outboxAt(m.OutboxMessage))
	}
	for _, m := range b.CompletedToday {
		merge(m.PatientName, m.PhoneE164, m.Dentist, statusCompleted, outboxAt(m))
	}
	for _, f := range followups {
		prio := statusCompleted
		if f.InOpenQueue() {
			prio = statusFollowupOpen
		}
		merge(f.PatientName, f.PhoneE164, f.Dentist, prio, f.ActivityTime())
	}
	for _, r := range recs {
		prio := statusCompleted
		if r.Status.Open() {
			prio = statusRecallDue
		}
		at := r.UpdatedAt
		if at.IsZero() {
			at = r.CreatedAt
		}
		merge(r.PatientName, r.PhoneE164, r.Dentist, prio, at)
	}

	out := make([]PatientSummary, 0, len(byName))
	for _, acc := range byName {
		out = append(out, acc.PatientSummary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LastActivity.Equal(out[j].LastActivity) {
			return out[i].LastActivity.After(out[j].LastActivity)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
