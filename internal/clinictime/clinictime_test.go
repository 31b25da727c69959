package clinictime

import (
	"testing"
	"time"
)

func TestDateKey_CrossesMidnightUTC(t *testing.T) {
	// 22:30 UTC is already 02:30 the next day at +04:00.
	in := time.Date(2025, 1, 10, 22, 30, 0, 0, time.UTC)
	if got := DateKey(in); got != "2025-01-11" {
		t.Fatalf("DateKey = %q; want 2025-01-11", got)
	}
}

func TestDateKey_SameDay(t *testing.T) {
	in := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if got := DateKey(in); got != "2025-06-01" {
		t.Fatalf("DateKey = %q; want 2025-06-01", got)
	}
}

func TestDateKeys_TrailingWindow(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, Zone())
	keys := DateKeys(3, now)
	want := []string{"2025-03-05", "2025-03-04", "2025-03-03"}
	if len(keys) != len(want) {
		t.Fatalf("len = %d; want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q; want %q", i, keys[i], want[i])
		}
	}
}

func TestSameLocalDay(t *testing.T) {
	a := time.Date(2025, 1, 10, 21, 0, 0, 0, time.UTC) // 01:00 on the 11th GST
	b := time.Date(2025, 1, 11, 5, 0, 0, 0, time.UTC)  // 09:00 on the 11th GST
	if !SameLocalDay(a, b) {
		t.Fatalf("expected %v and %v on same clinic day", a, b)
	}
	c := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	if SameLocalDay(a, c) {
		t.Fatalf("did not expect %v and %v on same clinic day", a, c)
	}
}
