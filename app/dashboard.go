// Package app provides the dashboard store: the single source of truth
// for derived analytics, plan/billing figures, and the application/key
// collections. Every consumer reads immutable snapshots published by the
// store; no view computes its own derivation.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jihun-01/scratcha-dashboard/adapters/metrics"
	"github.com/jihun-01/scratcha-dashboard/domain/application"
	"github.com/jihun-01/scratcha-dashboard/domain/billing"
	"github.com/jihun-01/scratcha-dashboard/domain/key"
	"github.com/jihun-01/scratcha-dashboard/domain/period"
	"github.com/jihun-01/scratcha-dashboard/domain/plan"
	"github.com/jihun-01/scratcha-dashboard/domain/usage"
	"github.com/jihun-01/scratcha-dashboard/ports"
)

// Activity is one entry of the recent-activity feed.
type Activity struct {
	ID    string    `json:"id"`
	Type  string    `json:"type"` // "success", "info", "warning", "error"
	Title string    `json:"title"`
	Count string    `json:"count"`
	At    time.Time `json:"at"`
}

// maxActivities bounds the recent-activity feed.
const maxActivities = 10

// Snapshot is one immutable published state of the dashboard. All slices
// are fresh copies; mutating a snapshot never reaches the store.
type Snapshot struct {
	SessionNow time.Time      `json:"session_now"`
	Scenario   usage.Scenario `json:"scenario"`

	// Chart/log filters
	Period period.Period `json:"period"`
	AppID  int64         `json:"app_id"`
	KeyID  int64         `json:"key_id"`

	// Derived analytics
	Series []usage.Point `json:"series"`
	Stats  usage.Stats   `json:"stats"`

	// Plan and billing
	Plan               plan.Plan         `json:"plan"`
	Current            billing.Usage     `json:"current"`
	LastMonth          billing.Usage     `json:"last_month"`
	Statement          billing.Statement `json:"statement"`
	LastMonthStatement billing.Statement `json:"last_month_statement"`

	// Collections
	Apps []application.Application `json:"apps"`
	Keys []key.Key                 `json:"keys"`

	// Paginated log table
	Logs       []usage.Event `json:"logs"`
	LogTotal   int           `json:"log_total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`

	Activities []Activity `json:"activities"`
}

// clone returns a copy whose slices share no backing arrays with the
// receiver. Every reader and subscriber gets its own clone, so writing
// through one snapshot never reaches another.
func (s Snapshot) clone() Snapshot {
	s.Series = append([]usage.Point(nil), s.Series...)
	s.Apps = append([]application.Application(nil), s.Apps...)
	s.Keys = append([]key.Key(nil), s.Keys...)
	s.Logs = append([]usage.Event(nil), s.Logs...)
	s.Activities = append([]Activity(nil), s.Activities...)
	return s
}

// Config wires the dashboard store.
type Config struct {
	Logger   zerolog.Logger
	Clock    ports.Clock
	IDs      ports.IDGenerator
	Events   ports.EventStore
	Datasets ports.DatasetGenerator
	Apps     ports.ApplicationAPI
	Keys     ports.KeyAPI
	Metrics  *metrics.Collector // optional

	// PlanName selects the starting tier (default "Starter").
	PlanName string
	// AvgTokensPerRequest is the fixed per-call token approximation
	// (default 20). Usage is requestCount * this value.
	AvgTokensPerRequest int
	// Scenario selects the starting dataset scenario (default mid).
	Scenario usage.Scenario
	// InitialApps/InitialKeys seed the collections before the first
	// backend refresh.
	InitialApps []application.Application
	InitialKeys []key.Key
}

// Dashboard is the store. All state behind mu; reads go through
// Snapshot() which returns the latest published copy.
type Dashboard struct {
	log      zerolog.Logger
	clock    ports.Clock
	ids      ports.IDGenerator
	datasets ports.DatasetGenerator
	appsAPI  ports.ApplicationAPI
	keysAPI  ports.KeyAPI
	metrics  *metrics.Collector

	mu sync.RWMutex

	// Session-fixed inputs. sessionNow anchors every derivation so that
	// switching periods never reshuffles the data under the charts.
	sessionNow  time.Time
	basePool    []usage.Event
	pools       map[usage.Scenario][]usage.Event
	sessionLogs []usage.Event
	mtdLogs     []usage.Event
	avgTokens   int

	// Filters
	scenario usage.Scenario
	period   period.Period
	filter   usage.Filter
	page     int

	// Plan / collections / feed
	plan       plan.Plan
	apps       []application.Application
	keys       []key.Key
	activities []Activity

	// Optimistic toggle bookkeeping: rollback applies only when no newer
	// toggle confirmed in the meantime.
	keyVersions map[int64]uint64

	loading     bool
	appsLoading bool

	snap Snapshot
	subs []chan Snapshot
}

// New creates the store, loads the session pool, and derives the first
// snapshot.
func New(ctx context.Context, cfg Config) (*Dashboard, error) {
	if cfg.AvgTokensPerRequest <= 0 {
		cfg.AvgTokensPerRequest = 20
	}
	if cfg.PlanName == "" {
		cfg.PlanName = "Starter"
	}
	if cfg.Scenario == "" {
		cfg.Scenario = usage.ScenarioMid
	}

	p, ok := plan.Find(cfg.PlanName)
	if !ok {
		return nil, fmt.Errorf("unknown plan %q", cfg.PlanName)
	}

	pool, err := cfg.Events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load event pool: %w", err)
	}

	now := cfg.Clock.Now()
	d := &Dashboard{
		log:         cfg.Logger,
		clock:       cfg.Clock,
		ids:         cfg.IDs,
		datasets:    cfg.Datasets,
		appsAPI:     cfg.Apps,
		keysAPI:     cfg.Keys,
		metrics:     cfg.Metrics,
		sessionNow:  now,
		basePool:    pool,
		pools:       make(map[usage.Scenario][]usage.Event),
		sessionLogs: pool,
		avgTokens:   cfg.AvgTokensPerRequest,
		scenario:    cfg.Scenario,
		period:      period.All,
		page:        1,
		plan:        p,
		apps:        append([]application.Application(nil), cfg.InitialApps...),
		keys:        append([]key.Key(nil), cfg.InitialKeys...),
		keyVersions: make(map[int64]uint64),
	}

	for _, sc := range usage.Scenarios {
		d.pools[sc] = cfg.Datasets.ScenarioDataset(sc, now, p.TokenLimit, d.avgTokens)
	}

	// The first month-to-date figure comes from the raw pool; scenario
	// switches replace it with synthesized logs.
	mtdStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	d.mtdLogs = usage.FilterEvents(pool, usage.Filter{}, mtdStart, now)

	if d.metrics != nil {
		d.metrics.EventPoolSize.Set(float64(len(pool)))
	}

	d.mu.Lock()
	d.recompute("init")
	d.mu.Unlock()

	d.log.Info().
		Int("pool", len(pool)).
		Str("plan", p.Name).
		Str("scenario", string(d.scenario)).
		Time("session_now", now).
		Msg("dashboard store initialized")

	return d, nil
}

// Snapshot returns the latest published snapshot.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap.clone()
}

// IsLoading reports whether a filter-triggered recompute is in flight.
func (d *Dashboard) IsLoading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

// Subscribe returns a channel that receives every published snapshot.
// The channel holds only the most recent snapshot: a slow consumer sees
// the latest state, never a backlog of stale ones.
func (d *Dashboard) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	d.mu.Lock()
	d.subs = append(d.subs, ch)
	ch <- d.snap.clone()
	d.mu.Unlock()
	return ch
}

// SetPeriod selects the chart period and resets the log page.
func (d *Dashboard) SetPeriod(p period.Period) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.period == p {
		return
	}
	d.period = p
	d.page = 1
	d.recompute("period")
}

// SetLogFilters selects the application/key filters and resets the log
// page. Zero means "all".
func (d *Dashboard) SetLogFilters(appID, keyID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.filter.AppID == appID && d.filter.KeyID == keyID {
		return
	}
	d.filter = usage.Filter{AppID: appID, KeyID: keyID}
	d.page = 1
	d.recompute("filter")
}

// SetPage selects the log table page.
func (d *Dashboard) SetPage(page int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if page < 1 {
		page = 1
	}
	d.page = page
	d.recompute("page")
}

// SetScenario switches the session dataset and synthesizes month-to-date
// logs hitting the scenario's target usage percentage, so the plan bar
// and the month card agree.
func (d *Dashboard) SetScenario(sc usage.Scenario) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pool, ok := d.pools[sc]
	if !ok {
		pool = d.sessionLogs
	}
	d.scenario = sc
	d.sessionLogs = pool
	d.page = 1

	calls := d.datasets.TargetCalls(d.plan.TokenLimit, d.datasets.ScenarioPercent(sc), d.avgTokens)
	d.mtdLogs = d.datasets.SynthesizeMonthToDate(calls, d.sessionNow)

	d.recompute("scenario")
}

// ChangePlan switches the pricing tier. Usage tokens are unchanged; the
// percentage is recomputed against the new limit.
func (d *Dashboard) ChangePlan(name string) error {
	p, ok := plan.Find(name)
	if !ok {
		return fmt.Errorf("unknown plan %q", name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.plan = p
	d.recompute("plan")

	d.log.Info().Str("plan", p.Name).Msg("plan changed")
	return nil
}

// recompute reruns the full derivation pipeline and publishes a new
// snapshot. Must be called with mu held. Deterministic given
// (pool, filters, sessionNow) - no hidden accumulation across calls.
func (d *Dashboard) recompute(trigger string) {
	started := time.Now()
	d.loading = true

	w := period.Resolve(d.period, d.sessionNow)
	filtered := usage.FilterEvents(d.sessionLogs, d.filter, w.Start, d.sessionNow)
	series := usage.BucketSeries(filtered, d.period, d.sessionNow)

	// Stat cards always come from the full session pool, not the
	// period-filtered subset. The month card is aligned with the
	// month-to-date log set driving the plan bar.
	stats := usage.ComputeStats(d.sessionLogs, d.sessionNow)
	stats.Month.Value = len(d.mtdLogs)

	current := billing.UsageFromRequests(len(d.mtdLogs), d.avgTokens, d.plan.TokenLimit)

	prevMonthCount := d.previousMonthCount()
	lastMonth := billing.UsageFromRequests(prevMonthCount, d.avgTokens, d.plan.TokenLimit)

	page := d.page
	total := usage.TotalPages(len(filtered))
	if page > total {
		page = total
	}

	d.snap = Snapshot{
		SessionNow:         d.sessionNow,
		Scenario:           d.scenario,
		Period:             d.period,
		AppID:              d.filter.AppID,
		KeyID:              d.filter.KeyID,
		Series:             series,
		Stats:              stats,
		Plan:               d.plan,
		Current:            current,
		LastMonth:          lastMonth,
		Statement:          billing.BuildStatement(d.plan, current),
		LastMonthStatement: billing.BuildStatement(d.plan, lastMonth),
		Apps:               append([]application.Application(nil), d.apps...),
		Keys:               append([]key.Key(nil), d.keys...),
		Logs:               append([]usage.Event(nil), usage.Paginate(filtered, page)...),
		LogTotal:           len(filtered),
		Page:               page,
		TotalPages:         total,
		Activities:         append([]Activity(nil), d.activities...),
	}
	d.loading = false

	d.publish()

	if d.metrics != nil {
		d.metrics.SnapshotRecomputes.WithLabelValues(trigger).Inc()
		d.metrics.RecomputeDuration.Observe(time.Since(started).Seconds())
	}

	d.log.Debug().
		Str("trigger", trigger).
		Str("period", string(d.period)).
		Int("filtered", len(filtered)).
		Int("points", len(series)).
		Msg("snapshot recomputed")
}

// previousMonthCount counts session events in the full previous calendar
// month, the basis of the last-month billing figures.
func (d *Dashboard) previousMonthCount() int {
	monthStart := time.Date(d.sessionNow.Year(), d.sessionNow.Month(), 1, 0, 0, 0, 0, d.sessionNow.Location())
	prevStart := monthStart.AddDate(0, -1, 0)
	n := 0
	for _, e := range d.sessionLogs {
		t, ok := e.Time()
		if !ok {
			continue
		}
		if !t.Before(prevStart) && t.Before(monthStart) {
			n++
		}
	}
	return n
}

// publish pushes the new snapshot to every subscriber, replacing any
// undelivered older one. Must be called with mu held.
func (d *Dashboard) publish() {
	for _, ch := range d.subs {
		select {
		case <-ch:
		default:
		}
		ch <- d.snap.clone()
	}
}
