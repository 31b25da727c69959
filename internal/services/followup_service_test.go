package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/whitesmile/frontdesk-backend/internal/domain"
	"github.com/whitesmile/frontdesk-backend/internal/feeds"
)

func TestFollowupClose(t *testing.T) {
	f := newFakeFeed()
	f.tabs[feeds.TabCancelled] = []feeds.Record{{
		"id":            "f1",
		"appointmentId": "apt-1",
		"patient_name":  "Hassan Ali",
		"status":        "open",
	}}
	s := &FollowupService{State: seededPoller(t, f), Updater: f, Log: zerolog.Nop()}

	r, err := s.Close(context.Background(), domain.FollowupCancelled, "f1", "Rana", "rebooked for Tuesday")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if r.Status != domain.FollowupClosed {
		t.Errorf("Status = %q", r.Status)
	}
	if r.HandledBy != "Rana" || r.HandledNote != "rebooked for Tuesday" {
		t.Errorf("audit fields = %q/%q", r.HandledBy, r.HandledNote)
	}

	call := f.waitUpdate(t)
	if call.tab != feeds.TabCancelled {
		t.Errorf("tab = %q", call.tab)
	}
	if call.key["appointment_id"] != "apt-1" {
		t.Errorf("key = %v", call.key)
	}
	if call.updates["status"] != "closed" || call.updates["handled_by"] != "Rana" {
		t.Errorf("updates = %v", call.updates)
	}

	// Row leaves the open queue immediately.
	if snap := s.State.Snapshot(); len(snap.CancelledOpen) != 0 {
		t.Error("closed row still in open queue")
	}
}

func TestFollowupCloseTwice(t *testing.T) {
	f := newFakeFeed()
	f.tabs[feeds.TabReschedule] = []feeds.Record{{
		"id": "f2", "patient_name": "Noora", "followupStatus": "open",
	}}
	s := &FollowupService{State: seededPoller(t, f), Updater: f, Log: zerolog.Nop()}

	if _, err := s.Close(context.Background(), domain.FollowupReschedule, "f2", "", ""); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.Close(context.Background(), domain.FollowupReschedule, "f2", "", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Close = %v, want ErrInvalidTransition", err)
	}
}

func TestFollowupCloseUnknown(t *testing.T) {
	f := newFakeFeed()
	s := &FollowupService{State: seededPoller(t, f), Updater: f, Log: zerolog.Nop()}
	if _, err := s.Close(context.Background(), domain.FollowupCancelled, "ghost", "", ""); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("err = %v, want ErrRowNotFound", err)
	}
}

func TestFollowupKindsAreSeparate(t *testing.T) {
	f := newFakeFeed()
	f.tabs[feeds.TabCancelled] = []feeds.Record{{
		"id": "f1", "patient_name": "Hassan", "status": "open",
	}}
	s := &FollowupService{State: seededPoller(t, f), Updater: f, Log: zerolog.Nop()}

	if _, err := s.Close(context.Background(), domain.FollowupReschedule, "f1", "", ""); !errors.Is(err, ErrRowNotFound) {
		t.Errorf("cancelled row visible under reschedule kind: %v", err)
	}
}
