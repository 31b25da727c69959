// Package classify assigns every outbox row exactly one class per poll
// cycle and assembles the dashboard buckets from the classes. A row is never
// in two buckets at once: concrete data defects win over the stored status,
// and the review reason reported is always the highest-priority defect.
package classify

import (
	"sort"
	"time"

	"github.com/whitesmile/frontdesk-backend/internal/clinictime"
	"github.com/whitesmile/frontdesk-backend/internal/domain"
	"github.com/whitesmile/frontdesk-backend/internal/wa"
)

// Kind is the bucket a row lands in.
type Kind int

const (
	KindHidden Kind = iota
	KindSendNow
	KindNeedsReview
	KindOpened
	KindCompleted
)

// Reason explains why a row needs review. Ordered by priority: when a row
// has several defects the lowest-numbered reason is reported.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMissingName
	ReasonMissingDentist
	ReasonMissingService
	ReasonMissingPhone
	ReasonDuplicate
	ReasonMissingDetails
	ReasonFlagged
)

// String returns the front-desk label for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonMissingName:
		return "Missing name"
	case ReasonMissingDentist:
		return "Missing dentist"
	case ReasonMissingService:
		return "Missing service"
	case ReasonMissingPhone:
		return "Missing phone"
	case ReasonDuplicate:
		return "Possible duplicate"
	case ReasonMissingDetails:
		return "Missing details"
	case ReasonFlagged:
		return "Needs review"
	}
	return ""
}

// Class is the single classification of one outbox row. Reason is set only
// when Kind is KindNeedsReview.
type Class struct {
	Kind   Kind
	Reason Reason
}

// unknown reports whether a mapped field fell through to its literal
// default.
func unknown(s string) bool {
	return s == "" || s == "Unknown"
}

// defect returns the highest-priority concrete data defect of a row, or
// ReasonNone when the row is clean.
func defect(m domain.OutboxMessage) Reason {
	switch {
	case unknown(m.PatientName):
		return ReasonMissingName
	case unknown(m.Dentist):
		return ReasonMissingDentist
	case unknown(m.Service):
		return ReasonMissingService
	case !wa.IsValidPhone(m.PhoneE164):
		return ReasonMissingPhone
	case m.Duplicate:
		return ReasonDuplicate
	case m.MessageText == "" || m.WALink == "":
		return ReasonMissingDetails
	}
	return ReasonNone
}

// ClassifyOutbox computes the row's class. Terminal statuses (sent, opened)
// win over defects: a message already sent stays completed even with bad
// data. For anything still pending, a defect forces review regardless of
// the stored status, and a stored needs_review flag without a concrete
// defect still keeps the row out of the send queue.
func ClassifyOutbox(m domain.OutboxMessage) Class {
	switch m.SendStatus {
	case domain.SendStatusSent:
		return Class{Kind: KindCompleted}
	case domain.SendStatusOpened:
		return Class{Kind: KindOpened}
	}
	if r := defect(m); r != ReasonNone {
		return Class{Kind: KindNeedsReview, Reason: r}
	}
	switch m.SendStatus {
	case domain.SendStatusReady:
		return Class{Kind: KindSendNow}
	case domain.SendStatusNeedsReview:
		return Class{Kind: KindNeedsReview, Reason: ReasonFlagged}
	}
	return Class{Kind: KindHidden}
}

// ReviewItem pairs a needs-review row with its reported reason.
type ReviewItem struct {
	domain.OutboxMessage
	Reason string `json:"review_reason"`
}

// Buckets is the per-cycle partition of the outbox feed.
type Buckets struct {
	SendNow        []domain.OutboxMessage
	NeedsReview    []ReviewItem
	Opened         []domain.OutboxMessage
	CompletedToday []domain.OutboxMessage
	CompletedTotal int
}

// activityInstant orders the send queue: appointment start when known,
// otherwise creation time.
func activityInstant(m domain.OutboxMessage) time.Time {
	if t := m.StartTime(); !t.IsZero() {
		return t
	}
	return m.CreatedAt
}

// Partition classifies every row once and assembles the buckets. Completed
// rows only surface in the today bucket when sent on the current clinic
// date; the total counter keeps all of them for the completion percentage.
func Partition(msgs []domain.OutboxMessage, now time.Time) Buckets {
	var b Buckets
	reasons := make(map[string]Reason, len(msgs))
	for _, m := range msgs {
		c := ClassifyOutbox(m)
		switch c.Kind {
		case KindSendNow:
			b.SendNow = append(b.SendNow, m)
		case KindNeedsReview:
			reasons[m.ID] = c.Reason
			b.NeedsReview = append(b.NeedsReview, ReviewItem{OutboxMessage: m, Reason: c.Reason.String()})
		case KindOpened:
			b.Opened = append(b.Opened, m)
		case KindCompleted:
			b.CompletedTotal++
			if !m.SentAt.IsZero() && clinictime.SameLocalDay(m.SentAt, now) {
				b.CompletedToday = append(b.CompletedToday, m)
			}
		}
	}

	sort.SliceStable(b.SendNow, func(i, j int) bool {
		return activityInstant(b.SendNow[i]).Before(activityInstant(b.SendNow[j]))
	})
	sort.SliceStable(b.NeedsReview, func(i, j int) bool {
		ri, rj := reasons[b.NeedsReview[i].ID], reasons[b.NeedsReview[j].ID]
		if ri != rj {
			return ri < rj
		}
		return b.NeedsReview[i].CreatedAt.Before(b.NeedsReview[j].CreatedAt)
	})
	sort.SliceStable(b.Opened, func(i, j int) bool {
		return b.Opened[i].OpenedAt.After(b.Opened[j].OpenedAt)
	})
	sort.SliceStable(b.CompletedToday, func(i, j int) bool {
		return b.CompletedToday[i].SentAt.After(b.CompletedToday[j].SentAt)
	})
	return b
}

// Follow-up and recall rows age into an overdue state the front desk is
// nagged about.
const (
	FollowupOverdueAfter = 48 * time.Hour
	RecallOverdueAfter   = 7 * 24 * time.Hour
)

// OpenFollowups returns the open-queue rows sorted most recent activity
// first, plus the count of rows overdue for a call.
func OpenFollowups(rows []domain.FollowupRow, now time.Time) (open []domain.FollowupRow, overdue int) {
	for _, r := range rows {
		if !r.InOpenQueue() {
			continue
		}
		open = append(open, r)
		if at := r.ActivityTime(); !at.IsZero() && now.Sub(at) > FollowupOverdueAfter {
			overdue++
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].ActivityTime().After(open[j].ActivityTime())
	})
	return open, overdue
}

// OpenRecalls returns recalls still needing action, oldest first, plus the
// count whose last visit is more than a week past. Rows with no parseable
// last visit are never overdue.
func OpenRecalls(rows []domain.RecallRow, now time.Time) (open []domain.RecallRow, overdue int) {
	for _, r := range rows {
		if !r.Status.Open() {
			continue
		}
		open = append(open, r)
		if lv := r.LastVisit(); !lv.IsZero() && now.Sub(lv) > RecallOverdueAfter {
			overdue++
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})
	return open, overdue
}
