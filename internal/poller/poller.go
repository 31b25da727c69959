// Package poller owns the dashboard state. A single Poller goroutine fetches
// all five sheet tabs on a fixed interval, maps and classifies the rows, and
// publishes an immutable snapshot the HTTP layer reads. Optimistic write-backs
// from the services layer are applied to the in-memory state immediately and
// recorded as dirty patches; a later poll whose fetch began before the patch
// re-applies the patch on top of the fetched rows, so a slow backend never
// resurrects stale values the front desk already changed.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/whitesmile/frontdesk-backend/internal/classify"
	"github.com/whitesmile/frontdesk-backend/internal/domain"
	"github.com/whitesmile/frontdesk-backend/internal/feeds"
	"github.com/whitesmile/frontdesk-backend/internal/mapper"
	"github.com/whitesmile/frontdesk-backend/internal/report"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 30 * time.Second

var (
	pollCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frontdesk_poll_cycles_total",
		Help: "Total number of completed poll cycles.",
	})
	pollErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "frontdesk_poll_errors_total",
		Help: "Total number of failed tab fetches.",
	}, []string{"tab"})
	pollDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "frontdesk_poll_duration_seconds",
		Help:    "Duration of a full poll cycle in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	feedRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "frontdesk_feed_rows",
		Help: "Rows returned by the last successful fetch, per tab.",
	}, []string{"tab"})
)

func init() {
	prometheus.MustRegister(pollCycles, pollErrors, pollDuration, feedRows)
}

// OutboxPatch mutates one outbox row in place.
type OutboxPatch func(*domain.OutboxMessage)

// FollowupPatch mutates one follow-up row in place.
type FollowupPatch func(*domain.FollowupRow)

// RecallPatch mutates one recall row in place.
type RecallPatch func(*domain.RecallRow)

type dirtyEntry[P any] struct {
	apply P
	at    time.Time
}

// state is the raw mapped feed data of the last successful cycle.
type state struct {
	outbox     []domain.OutboxMessage
	cancelled  []domain.FollowupRow
	reschedule []domain.FollowupRow
	recalls    []domain.RecallRow
	lastPoll   time.Time
	lastErr    string
	cycles     int64
}

// Snapshot is the fully derived dashboard view handed to the HTTP layer.
// Everything in it is a copy; handlers may not mutate shared state through
// it.
type Snapshot struct {
	Buckets         classify.Buckets
	CancelledOpen   []domain.FollowupRow
	RescheduleOpen  []domain.FollowupRow
	FollowupOverdue int
	RecallsOpen     []domain.RecallRow
	RecallOverdue   int
	Weekly          []domain.WeeklyEvent
	SendCompletion  int
	WeeklyClosure   int
	Patients        []report.PatientSummary
	LastPoll        time.Time
	LastError       string
	Cycles          int64
}

// Poller fetches the feeds and owns the resulting state.
type Poller struct {
	src      feeds.Source
	tracker  *classify.RecallTracker
	interval time.Duration
	log      zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	mu              sync.RWMutex
	st              state
	dirtyOutbox     map[string]dirtyEntry[OutboxPatch]
	dirtyCancelled  map[string]dirtyEntry[FollowupPatch]
	dirtyReschedule map[string]dirtyEntry[FollowupPatch]
	dirtyRecalls    map[string]dirtyEntry[RecallPatch]
}

// New constructs a Poller. interval <= 0 selects DefaultInterval.
func New(src feeds.Source, tracker *classify.RecallTracker, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if tracker == nil {
		tracker = classify.NewRecallTracker(0)
	}
	return &Poller{
		src:             src,
		tracker:         tracker,
		interval:        interval,
		log:             log,
		tracer:          otel.Tracer("internal/poller"),
		now:             time.Now,
		dirtyOutbox:     map[string]dirtyEntry[OutboxPatch]{},
		dirtyCancelled:  map[string]dirtyEntry[FollowupPatch]{},
		dirtyReschedule: map[string]dirtyEntry[FollowupPatch]{},
		dirtyRecalls:    map[string]dirtyEntry[RecallPatch]{},
	}
}

// Run polls immediately, then on every tick until ctx is cancelled. It is
// meant to be started once as a goroutine from main.
func (p *Poller) Run(ctx context.Context) {
	p.Poll(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("poller stopped")
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

type fetchResult struct {
	tab     string
	records []feeds.Record
	err     error
}

// Poll runs one full cycle: fetch all tabs in parallel, map, reconcile with
// dirty patches, and swap the state. Any fetch failure keeps the previous
// cycle's state intact; a cancelled context discards the results entirely.
func (p *Poller) Poll(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "Poller.Poll")
	defer span.End()

	fetchStart := p.now()
	tabs := []string{
		feeds.TabOutbox,
		feeds.TabConfirmed,
		feeds.TabCancelled,
		feeds.TabReschedule,
		feeds.TabRecall,
	}

	results := make(chan fetchResult, len(tabs))
	var wg sync.WaitGroup
	for _, tab := range tabs {
		wg.Add(1)
		go func(tab string) {
			defer wg.Done()
			recs, err := p.src.FetchTab(ctx, tab)
			results <- fetchResult{tab: tab, records: recs, err: err}
		}(tab)
	}
	wg.Wait()
	close(results)

	byTab := map[string][]feeds.Record{}
	var failed bool
	for r := range results {
		if r.err != nil {
			failed = true
			pollErrors.WithLabelValues(r.tab).Inc()
			p.log.Warn().Err(r.err).Str("tab", r.tab).Msg("tab fetch failed, keeping previous state")
			continue
		}
		byTab[r.tab] = r.records
	}

	if ctx.Err() != nil {
		// Shutdown raced the fetch; the results are for a cycle nobody
		// will read.
		return
	}
	if failed {
		p.mu.Lock()
		p.st.lastErr = "feed fetch failed"
		p.mu.Unlock()
		return
	}

	next := state{
		lastPoll: fetchStart,
	}
	for _, rec := range byTab[feeds.TabOutbox] {
		next.outbox = append(next.outbox, mapper.MapOutbox(rec, fetchStart))
	}
	for _, rec := range byTab[feeds.TabConfirmed] {
		next.outbox = append(next.outbox, mapper.MapOutbox(rec, fetchStart))
	}
	for _, rec := range byTab[feeds.TabCancelled] {
		next.cancelled = append(next.cancelled, mapper.MapFollowup(rec, domain.FollowupCancelled, fetchStart))
	}
	for _, rec := range byTab[feeds.TabReschedule] {
		next.reschedule = append(next.reschedule, mapper.MapFollowup(rec, domain.FollowupReschedule, fetchStart))
	}
	for _, rec := range byTab[feeds.TabRecall] {
		next.recalls = append(next.recalls, mapper.MapRecall(rec, fetchStart))
	}

	feedRows.WithLabelValues(feeds.TabOutbox).Set(float64(len(byTab[feeds.TabOutbox])))
	feedRows.WithLabelValues(feeds.TabConfirmed).Set(float64(len(byTab[feeds.TabConfirmed])))
	feedRows.WithLabelValues(feeds.TabCancelled).Set(float64(len(byTab[feeds.TabCancelled])))
	feedRows.WithLabelValues(feeds.TabReschedule).Set(float64(len(byTab[feeds.TabReschedule])))
	feedRows.WithLabelValues(feeds.TabRecall).Set(float64(len(byTab[feeds.TabRecall])))

	p.mu.Lock()
	reconcileOutbox(next.outbox, p.dirtyOutbox, fetchStart)
	reconcileFollowups(next.cancelled, p.dirtyCancelled, fetchStart)
	reconcileFollowups(next.reschedule, p.dirtyReschedule, fetchStart)
	reconcileRecalls(next.recalls, p.dirtyRecalls, fetchStart)
	next.cycles = p.st.cycles + 1
	p.st = next
	// The tracker diffs open rows only; a row arriving already handled
	// is not news for the front desk.
	var openRecalls []domain.RecallRow
	for _, r := range next.recalls {
		if r.Status.Open() {
			openRecalls = append(openRecalls, r)
		}
	}
	p.tracker.Observe(openRecalls, fetchStart)
	p.mu.Unlock()

	pollCycles.Inc()
	pollDuration.Observe(p.now().Sub(fetchStart).Seconds())
	p.log.Debug().
		Int("outbox", len(next.outbox)).
		Int("cancelled", len(next.cancelled)).
		Int("reschedule", len(next.reschedule)).
		Int("recalls", len(next.recalls)).
		Int64("cycle", next.cycles).
		Msg("poll cycle complete")
}

// reconcileOutbox re-applies patches newer than the fetch start and drops
// the rest. The backend is the source of truth for anything it had time to
// absorb before the fetch began.
func reconcileOutbox(rows []domain.OutboxMessage, dirty map[string]dirtyEntry[OutboxPatch], fetchStart time.Time) {
	for id, e := range dirty {
		if !e.at.After(fetchStart) {
			delete(dirty, id)
			continue
		}
		for i := range rows {
			if rows[i].ID == id {
				e.apply(&rows[i])
				break
			}
		}
	}
}

func reconcileFollowups(rows []domain.FollowupRow, dirty map[string]dirtyEntry[FollowupPatch], fetchStart time.Time) {
	for id, e := range dirty {
		if !e.at.After(fetchStart) {
			delete(dirty, id)
			continue
		}
		for i := range rows {
			if rows[i].ID == id {
				e.apply(&rows[i])
				break
			}
		}
	}
}

func reconcileRecalls(rows []domain.RecallRow, dirty map[string]dirtyEntry[RecallPatch], fetchStart time.Time) {
	for id, e := range dirty {
		if !e.at.After(fetchStart) {
			delete(dirty, id)
			continue
		}
		for i := range rows {
			if rows[i].ID == id {
				e.apply(&rows[i])
				break
			}
		}
	}
}

// ApplyOutboxPatch applies an optimistic patch to one outbox row and marks
// it dirty. Returns false when the row is unknown.
func (p *Poller) ApplyOutboxPatch(id string, patch OutboxPatch) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.st.outbox {
		if p.st.outbox[i].ID == id {
			patch(&p.st.outbox[i])
			p.dirtyOutbox[id] = dirtyEntry[OutboxPatch]{apply: patch, at: p.now()}
			return true
		}
	}
	return false
}

// ApplyFollowupPatch applies an optimistic patch to one follow-up row of the
// given kind. Returns false when the row is unknown.
func (p *Poller) ApplyFollowupPatch(kind domain.FollowupKind, id string, patch FollowupPatch) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	rows := p.st.cancelled
	dirty := p.dirtyCancelled
	if kind == domain.FollowupReschedule {
		rows = p.st.reschedule
		dirty = p.dirtyReschedule
	}
	for i := range rows {
		if rows[i].ID == id {
			patch(&rows[i])
			dirty[id] = dirtyEntry[FollowupPatch]{apply: patch, at: p.now()}
			return true
		}
	}
	return false
}

// ApplyRecallPatch applies an optimistic patch to one recall row. Returns
// false when the row is unknown.
func (p *Poller) ApplyRecallPatch(id string, patch RecallPatch) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.st.recalls {
		if p.st.recalls[i].ID == id {
			patch(&p.st.recalls[i])
			p.dirtyRecalls[id] = dirtyEntry[RecallPatch]{apply: patch, at: p.now()}
			return true
		}
	}
	return false
}

// Outbox returns a copy of one outbox row by ID.
func (p *Poller) Outbox(id string) (domain.OutboxMessage, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, m := range p.st.outbox {
		if m.ID == id {
			return m, true
		}
	}
	return domain.OutboxMessage{}, false
}

// Followup returns a copy of one follow-up row by kind and ID.
func (p *Poller) Followup(kind domain.FollowupKind, id string) (domain.FollowupRow, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rows := p.st.cancelled
	if kind == domain.FollowupReschedule {
		rows = p.st.reschedule
	}
	for _, r := range rows {
		if r.ID == id {
			return r, true
		}
	}
	return domain.FollowupRow{}, false
}

// Recall returns a copy of one recall row by ID.
func (p *Poller) Recall(id string) (domain.RecallRow, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, r := range p.st.recalls {
		if r.ID == id {
			return r, true
		}
	}
	return domain.RecallRow{}, false
}

// Snapshot derives the full dashboard view from the current state. All
// slices are freshly built.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	outbox := append([]domain.OutboxMessage(nil), p.st.outbox...)
	cancelled := append([]domain.FollowupRow(nil), p.st.cancelled...)
	reschedule := append([]domain.FollowupRow(nil), p.st.reschedule...)
	recalls := append([]domain.RecallRow(nil), p.st.recalls...)
	lastPoll, lastErr, cycles := p.st.lastPoll, p.st.lastErr, p.st.cycles
	p.mu.RUnlock()

	now := p.now()
	buckets := classify.Partition(outbox, now)
	cancelledOpen, overdueC := classify.OpenFollowups(cancelled, now)
	rescheduleOpen, overdueR := classify.OpenFollowups(reschedule, now)
	recallsOpen, recallOverdue := classify.OpenRecalls(recalls, now)
	allFollowups := append(append([]domain.FollowupRow(nil), cancelled...), reschedule...)
	weekly := report.DeriveWeeklyEvents(outbox, allFollowups, recalls, now)

	return Snapshot{
		Buckets:         buckets,
		CancelledOpen:   cancelledOpen,
		RescheduleOpen:  rescheduleOpen,
		FollowupOverdue: overdueC + overdueR,
		RecallsOpen:     recallsOpen,
		RecallOverdue:   recallOverdue,
		Weekly:          weekly,
		SendCompletion:  report.SendCompletionPercent(buckets),
		WeeklyClosure:   report.WeeklyClosurePercent(weekly),
		Patients:        report.AllPatients(buckets, allFollowups, recalls),
		LastPoll:        lastPoll,
		LastError:       lastErr,
		Cycles:          cycles,
	}
}

// Alert returns the active new-recall alert, if any.
func (p *Poller) Alert() (classify.RecallAlert, bool) {
	return p.tracker.Alert(p.now())
}

// DismissAlert clears the active new-recall alert.
func (p *Poller) DismissAlert() {
	p.tracker.Dismiss()
}
