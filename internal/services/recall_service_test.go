package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/whitesmile/frontdesk-backend/internal/domain"
	"github.com/whitesmile/frontdesk-backend/internal/feeds"
)

func recallSvc(t *testing.T, f *fakeFeed) *RecallService {
	t.Helper()
	return &RecallService{State: seededPoller(t, f), Updater: f, Log: zerolog.Nop()}
}

func TestRecallSetStatus(t *testing.T) {
	f := newFakeFeed()
	f.tabs[feeds.TabRecall] = []feeds.Record{{
		"id":              "r1",
		"idempotency_key": "rk-1",
		"patientName":     "Mariam",
		"status":          "ready",
	}}
	s := recallSvc(t, f)

	r, err := s.SetStatus(context.Background(), "r1", domain.RecallDone)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if r.Status != domain.RecallDone || r.UpdatedAt.IsZero() {
		t.Errorf("row = %+v", r)
	}

	call := f.waitUpdate(t)
	if call.tab != feeds.TabRecall {
		t.Errorf("tab = %q", call.tab)
	}
	if call.key["idempotency_key"] != "rk-1" {
		t.Errorf("key = %v, want idempotency key preferred", call.key)
	}
	if call.updates["status"] != "done" {
		t.Errorf("updates = %v", call.updates)
	}

	if snap := s.State.Snapshot(); len(snap.RecallsOpen) != 0 {
		t.Error("done recall still open")
	}
}

func TestRecallSetStatusReopen(t *testing.T) {
	f := newFakeFeed()
	f.tabs[feeds.TabRecall] = []feeds.Record{{
		"id": "r1", "patientName": "Mariam", "status": "done",
	}}
	s := recallSvc(t, f)

	r, err := s.SetStatus(context.Background(), "r1", domain.RecallReady)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if !r.Status.Open() {
		t.Error("reopened recall should be open")
	}
}

func TestRecallSetStatusInvalid(t *testing.T) {
	f := newFakeFeed()
	f.tabs[feeds.TabRecall] = []feeds.Record{{
		"id": "r1", "patientName": "Mariam", "status": "ready",
	}}
	s := recallSvc(t, f)

	if _, err := s.SetStatus(context.Background(), "r1", "archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestRecallSetStatusUnknownRow(t *testing.T) {
	f := newFakeFeed()
	s := recallSvc(t, f)
	if _, err := s.SetStatus(context.Background(), "ghost", domain.RecallDone); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("err = %v, want ErrRowNotFound", err)
	}
}
