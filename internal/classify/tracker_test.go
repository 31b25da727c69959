package classify

import (
	"testing"
	"time"

	"github.com/whitesmile/frontdesk-backend/internal/domain"
)

func recalls(ids ...string) []domain.RecallRow {
	out := make([]domain.RecallRow, len(ids))
	for i, id := range ids {
		out[i] = domain.RecallRow{ID: id, PatientName: "P-" + id, Status: domain.RecallReady}
	}
	return out
}

func TestTrackerFirstObservationSeedsSilently(t *testing.T) {
	tr := NewRecallTracker(0)
	tr.Observe(recalls("a", "b"), now)
	if _, ok := tr.Alert(now); ok {
		t.Fatal("first observation must not alert")
	}
}

func TestTrackerAlertsOnNewRow(t *testing.T) {
	tr := NewRecallTracker(0)
	tr.Observe(recalls("a", "b"), now)
	tr.Observe(recalls("a", "b", "c"), now.Add(30*time.Second))

	al, ok := tr.Alert(now.Add(31 * time.Second))
	if !ok {
		t.Fatal("want alert after new row")
	}
	if al.Count != 1 || len(al.Names) != 1 || al.Names[0] != "P-c" {
		t.Errorf("alert = %+v", al)
	}

	// Same set again: no re-trigger.
	tr.Dismiss()
	tr.Observe(recalls("a", "b", "c"), now.Add(60*time.Second))
	if _, ok := tr.Alert(now.Add(61 * time.Second)); ok {
		t.Fatal("unchanged set must not re-alert")
	}
}

func TestTrackerAlertExpires(t *testing.T) {
	tr := NewRecallTracker(10 * time.Second)
	tr.Observe(recalls("a"), now)
	tr.Observe(recalls("a", "b"), now.Add(30*time.Second))

	if _, ok := tr.Alert(now.Add(35 * time.Second)); !ok {
		t.Fatal("alert should still be active inside ttl")
	}
	if _, ok := tr.Alert(now.Add(45 * time.Second)); ok {
		t.Fatal("alert should expire after ttl")
	}
}

func TestTrackerDismiss(t *testing.T) {
	tr := NewRecallTracker(0)
	tr.Observe(recalls("a"), now)
	tr.Observe(recalls("a", "b"), now.Add(30*time.Second))
	tr.Dismiss()
	if _, ok := tr.Alert(now.Add(31 * time.Second)); ok {
		t.Fatal("dismissed alert should be gone")
	}
}

func TestTrackerRowReturningAlertsAgain(t *testing.T) {
	tr := NewRecallTracker(0)
	tr.Observe(recalls("a", "b"), now)
	tr.Observe(recalls("a"), now.Add(30*time.Second))
	tr.Observe(recalls("a", "b"), now.Add(60*time.Second))
	if _, ok := tr.Alert(now.Add(61 * time.Second)); !ok {
		t.Fatal("row that left and returned should alert")
	}
}
