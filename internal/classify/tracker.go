package classify

import (
	"sync"
	"time"

	"github.com/whitesmile/frontdesk-backend/internal/domain"
)

// DefaultAlertTTL is how long a new-recall alert stays visible before it
// expires on its own.
const DefaultAlertTTL = 10 * time.Second

// RecallAlert announces recalls that appeared since the previous poll
// cycle.
type RecallAlert struct {
	Names     []string  `json:"names"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RecallTracker diffs the recall feed across poll cycles and raises a
// short-lived alert when new rows appear. The very first observation seeds
// the known set without alerting, so a restart never announces the whole
// backlog as new.
type RecallTracker struct {
	mu     sync.Mutex
	ttl    time.Duration
	seeded bool
	known  map[string]struct{}
	alert  *RecallAlert
}

// NewRecallTracker builds a tracker; ttl <= 0 selects DefaultAlertTTL.
func NewRecallTracker(ttl time.Duration) *RecallTracker {
	if ttl <= 0 {
		ttl = DefaultAlertTTL
	}
	return &RecallTracker{ttl: ttl, known: map[string]struct{}{}}
}

// Observe records the current recall rows. Rows whose ID was not seen in
// the previous cycle raise an alert; the known set is then replaced with
// the current one, so a row that disappears and returns alerts again.
func (t *RecallTracker) Observe(rows []domain.RecallRow, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := make(map[string]struct{}, len(rows))
	var fresh []string
	for _, r := range rows {
		current[r.ID] = struct{}{}
		if _, seen := t.known[r.ID]; !seen {
			fresh = append(fresh, r.PatientName)
		}
	}

	if t.seeded && len(fresh) > 0 {
		t.alert = &RecallAlert{
			Names:     fresh,
			Count:     len(fresh),
			CreatedAt: now,
			ExpiresAt: now.Add(t.ttl),
		}
	}
	t.known = current
	t.seeded = true
}

// Alert returns the active alert, if any. An expired alert is cleared and
// reported as absent.
func (t *RecallTracker) Alert(now time.Time) (RecallAlert, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.alert == nil {
		return RecallAlert{}, false
	}
	if now.After(t.alert.ExpiresAt) {
		t.alert = nil
		return RecallAlert{}, false
	}
	return *t.alert, true
}

// Dismiss clears the active alert early.
func (t *RecallTracker) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.alert = nil
}
