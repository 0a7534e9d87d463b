package app_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jihun-01/scratcha-dashboard/adapters/clock"
	"github.com/jihun-01/scratcha-dashboard/adapters/datagen"
	"github.com/jihun-01/scratcha-dashboard/adapters/idgen"
	"github.com/jihun-01/scratcha-dashboard/adapters/memory"
	"github.com/jihun-01/scratcha-dashboard/app"
	"github.com/jihun-01/scratcha-dashboard/domain/application"
	"github.com/jihun-01/scratcha-dashboard/domain/key"
	"github.com/jihun-01/scratcha-dashboard/domain/period"
	"github.com/jihun-01/scratcha-dashboard/domain/usage"
)

var now = time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)

type fakeAppAPI struct {
	apps    []application.Application
	keys    []key.Key
	listErr error
}

func (f *fakeAppAPI) ListAll(ctx context.Context) ([]application.Application, []key.Key, error) {
	if f.listErr != nil {
		return nil, nil, f.listErr
	}
	return append([]application.Application(nil), f.apps...), append([]key.Key(nil), f.keys...), nil
}

func (f *fakeAppAPI) Create(ctx context.Context, name, description string) (application.Application, error) {
	a := application.Application{ID: int64(len(f.apps) + 1), Name: name, Description: description}
	f.apps = append(f.apps, a)
	return a, nil
}

func (f *fakeAppAPI) Delete(ctx context.Context, id int64) error { return nil }

type fakeKeyAPI struct {
	setActiveErr error
	calls        []string
}

func (f *fakeKeyAPI) Create(ctx context.Context, appID int64, expiresPolicy int) (key.Key, error) {
	return key.Key{ID: 99, AppID: appID, Status: key.StatusActive}, nil
}

func (f *fakeKeyAPI) Delete(ctx context.Context, id int64) error { return nil }

func (f *fakeKeyAPI) SetActive(ctx context.Context, id int64, active bool) error {
	f.calls = append(f.calls, fmt.Sprintf("%d:%v", id, active))
	return f.setActiveErr
}

// testPool builds a small deterministic pool around now.
func testPool() []usage.Event {
	var events []usage.Event
	id := int64(1)
	add := func(at time.Time, appID, keyID int64) {
		events = append(events, usage.Event{
			ID:             id,
			AppID:          appID,
			AppName:        "앱",
			KeyID:          keyID,
			APIKey:         "sk-test",
			OccurredAt:     at.Format(time.RFC3339),
			Result:         usage.ResultSuccess,
			ResponseTimeMs: 200,
		})
		id++
	}

	for i := 0; i < 12; i++ {
		add(now.Add(-time.Duration(i+1)*time.Minute), 1, 1)
	}
	add(now.AddDate(0, 0, -2), 2, 3)
	add(now.AddDate(0, -1, 0), 1, 1) // previous month
	return events
}

func newTestStore(t *testing.T, keysAPI *fakeKeyAPI, appsAPI *fakeAppAPI) *app.Dashboard {
	t.Helper()

	ctx := context.Background()
	events := memory.NewEventStore()
	if err := events.Replace(ctx, testPool()); err != nil {
		t.Fatal(err)
	}

	if keysAPI == nil {
		keysAPI = &fakeKeyAPI{}
	}
	if appsAPI == nil {
		appsAPI = &fakeAppAPI{}
	}

	d, err := app.New(ctx, app.Config{
		Logger:      zerolog.Nop(),
		Clock:       clock.NewFake(now),
		IDs:         idgen.NewSequential("act"),
		Events:      events,
		Datasets:    datagen.Suite{},
		Apps:        appsAPI,
		Keys:        keysAPI,
		InitialApps: datagen.DemoApps(),
		InitialKeys: datagen.DemoKeys(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestInitialSnapshot(t *testing.T) {
	d := newTestStore(t, nil, nil)
	s := d.Snapshot()

	if s.Period != period.All {
		t.Errorf("Period = %v, want all", s.Period)
	}
	if s.Plan.Name != "Starter" {
		t.Errorf("Plan = %s, want Starter", s.Plan.Name)
	}
	if s.Page != 1 {
		t.Errorf("Page = %d, want 1", s.Page)
	}
	if len(s.Series) != 12 {
		t.Errorf("series points = %d, want 12 monthly buckets", len(s.Series))
	}

	// 13 pool events fall inside the current month.
	if s.Stats.Month.Value != 13 {
		t.Errorf("Month.Value = %d, want 13", s.Stats.Month.Value)
	}
	if s.Current.RequestCount != 13 || s.Current.TokensUsed != 260 {
		t.Errorf("Current = %+v", s.Current)
	}
	if s.LastMonth.RequestCount != 1 {
		t.Errorf("LastMonth.RequestCount = %d, want 1", s.LastMonth.RequestCount)
	}
}

func TestRecomputeIsDeterministic(t *testing.T) {
	a := newTestStore(t, nil, nil)
	b := newTestStore(t, nil, nil)

	sa, sb := a.Snapshot(), b.Snapshot()
	if !reflect.DeepEqual(sa.Series, sb.Series) {
		t.Error("identical inputs produced different series")
	}
	if sa.Stats != sb.Stats {
		t.Errorf("stats diverged: %+v vs %+v", sa.Stats, sb.Stats)
	}
}

func TestSetPeriodResetsPage(t *testing.T) {
	d := newTestStore(t, nil, nil)

	d.SetPage(2)
	if d.Snapshot().Page != 2 {
		t.Fatalf("Page = %d, want 2", d.Snapshot().Page)
	}

	d.SetPeriod(period.Day)
	s := d.Snapshot()
	if s.Page != 1 {
		t.Errorf("page after period change = %d, want 1", s.Page)
	}
	if s.Period != period.Day {
		t.Errorf("Period = %v", s.Period)
	}
	// 15 hourly buckets for a 14:00 anchor.
	if len(s.Series) != 15 {
		t.Errorf("series points = %d, want 15", len(s.Series))
	}
}

func TestSetLogFiltersResetsPageAndFilters(t *testing.T) {
	d := newTestStore(t, nil, nil)
	d.SetPage(2)

	d.SetLogFilters(2, 0)

	s := d.Snapshot()
	if s.Page != 1 {
		t.Errorf("page after filter change = %d, want 1", s.Page)
	}
	if s.LogTotal != 1 {
		t.Errorf("LogTotal = %d, want 1 (only app 2's event)", s.LogTotal)
	}
	for _, e := range s.Logs {
		if e.AppID != 2 {
			t.Errorf("log from app %d leaked through the filter", e.AppID)
		}
	}
}

func TestSetPageClamps(t *testing.T) {
	d := newTestStore(t, nil, nil)

	d.SetPage(99)
	s := d.Snapshot()
	if s.Page != s.TotalPages {
		t.Errorf("Page = %d, want clamped to %d", s.Page, s.TotalPages)
	}
}

func TestSetScenarioAlignsMonthAndUsage(t *testing.T) {
	d := newTestStore(t, nil, nil)

	d.SetScenario(usage.ScenarioMid)

	s := d.Snapshot()
	// Starter mid scenario: 50000*45/100/20 = 1125 synthetic calls.
	if s.Stats.Month.Value != 1125 {
		t.Errorf("Month.Value = %d, want 1125", s.Stats.Month.Value)
	}
	if s.Current.UsagePercentage != 45 {
		t.Errorf("UsagePercentage = %d, want 45", s.Current.UsagePercentage)
	}
	if s.Scenario != usage.ScenarioMid {
		t.Errorf("Scenario = %v", s.Scenario)
	}
	if s.Page != 1 {
		t.Errorf("page after scenario change = %d, want 1", s.Page)
	}
}

func TestChangePlan(t *testing.T) {
	d := newTestStore(t, nil, nil)

	if err := d.ChangePlan("Pro"); err != nil {
		t.Fatal(err)
	}
	s := d.Snapshot()
	if s.Plan.Name != "Pro" || s.Current.TokensLimit != 200000 {
		t.Errorf("plan = %s limit = %d", s.Plan.Name, s.Current.TokensLimit)
	}

	if err := d.ChangePlan("Platinum"); err == nil {
		t.Error("unknown plan should error")
	}
}

func TestToggleKeyOptimisticSuccess(t *testing.T) {
	keysAPI := &fakeKeyAPI{}
	d := newTestStore(t, keysAPI, nil)

	target := d.Snapshot().Keys[0]
	if err := d.ToggleKey(context.Background(), target.ID); err != nil {
		t.Fatal(err)
	}

	s := d.Snapshot()
	for _, k := range s.Keys {
		if k.ID == target.ID && k.Status != target.Status.Toggle() {
			t.Errorf("key status = %v, want %v", k.Status, target.Status.Toggle())
		}
	}
	if len(keysAPI.calls) != 1 {
		t.Errorf("backend calls = %d, want 1", len(keysAPI.calls))
	}
}

func TestToggleKeyRollsBackOnBackendFailure(t *testing.T) {
	keysAPI := &fakeKeyAPI{setActiveErr: errors.New("backend down")}
	d := newTestStore(t, keysAPI, nil)

	target := d.Snapshot().Keys[0]
	err := d.ToggleKey(context.Background(), target.ID)
	if err == nil {
		t.Fatal("expected error from failing backend")
	}

	s := d.Snapshot()
	for _, k := range s.Keys {
		if k.ID == target.ID && k.Status != target.Status {
			t.Errorf("key status = %v, want rolled back to %v", k.Status, target.Status)
		}
	}
}

func TestToggleKeyUnknownID(t *testing.T) {
	d := newTestStore(t, nil, nil)
	if err := d.ToggleKey(context.Background(), 424242); err == nil {
		t.Error("unknown key should error")
	}
}

func TestToggleApplicationFlipsOwnedKeys(t *testing.T) {
	d := newTestStore(t, nil, nil)

	before := d.Snapshot()
	target := before.Apps[0]

	if err := d.ToggleApplication(target.ID); err != nil {
		t.Fatal(err)
	}

	s := d.Snapshot()
	var wantKeyStatus key.Status
	if target.Status == application.StatusActive {
		wantKeyStatus = key.StatusInactive
	} else {
		wantKeyStatus = key.StatusActive
	}
	for _, k := range s.Keys {
		if k.AppID == target.ID && k.Status != wantKeyStatus {
			t.Errorf("key %d status = %v, want %v", k.ID, k.Status, wantKeyStatus)
		}
	}
	if a, ok := application.Find(s.Apps, target.ID); !ok || a.Status == target.Status {
		t.Error("application status did not flip")
	}
}

func TestRefreshApplicationsKeepsStateOnFailure(t *testing.T) {
	appsAPI := &fakeAppAPI{listErr: errors.New("backend down")}
	d := newTestStore(t, nil, appsAPI)

	before := d.Snapshot()
	if err := d.RefreshApplications(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	after := d.Snapshot()
	if len(after.Apps) != len(before.Apps) || len(after.Keys) != len(before.Keys) {
		t.Error("failed refresh replaced the collections")
	}
}

func TestRefreshApplicationsDerivesStatus(t *testing.T) {
	appsAPI := &fakeAppAPI{
		apps: []application.Application{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		keys: []key.Key{
			{ID: 10, AppID: 1, Status: key.StatusActive},
			{ID: 20, AppID: 2, Status: key.StatusInactive},
		},
	}
	d := newTestStore(t, nil, appsAPI)

	if err := d.RefreshApplications(context.Background()); err != nil {
		t.Fatal(err)
	}

	s := d.Snapshot()
	if a, _ := application.Find(s.Apps, 1); a.Status != application.StatusActive {
		t.Errorf("app 1 status = %v, want active", a.Status)
	}
	if a, _ := application.Find(s.Apps, 2); a.Status != application.StatusInactive {
		t.Errorf("app 2 status = %v, want inactive", a.Status)
	}
}

func TestAddActivityBounded(t *testing.T) {
	d := newTestStore(t, nil, nil)

	for i := 0; i < 15; i++ {
		d.AddActivity("info", fmt.Sprintf("event %d", i), "")
	}

	s := d.Snapshot()
	if len(s.Activities) != 10 {
		t.Fatalf("activities = %d, want bounded at 10", len(s.Activities))
	}
	if s.Activities[0].Title != "event 14" {
		t.Errorf("newest first: got %q", s.Activities[0].Title)
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	d := newTestStore(t, nil, nil)

	s := d.Snapshot()
	if len(s.Keys) == 0 || len(s.Logs) == 0 {
		t.Fatal("expected populated snapshot")
	}
	s.Keys[0].Status = "mangled"
	s.Logs[0].AppName = "mangled"
	s.Apps[0].Name = "mangled"

	fresh := d.Snapshot()
	if fresh.Keys[0].Status == "mangled" || fresh.Logs[0].AppName == "mangled" || fresh.Apps[0].Name == "mangled" {
		t.Error("mutating a snapshot reached the store")
	}

	// Writes through one reader's snapshot must not leak into another
	// reader's copy of the same published state.
	other := d.Snapshot()
	fresh.Keys[0].Status = "mangled"
	fresh.Activities = append(fresh.Activities, app.Activity{Title: "mangled"})
	if other.Keys[0].Status == "mangled" {
		t.Error("two snapshots of the same state share key storage")
	}
	if len(other.Activities) != len(d.Snapshot().Activities) {
		t.Error("appending to a snapshot changed another reader's feed")
	}
}

func TestSubscribedSnapshotIsImmutable(t *testing.T) {
	d := newTestStore(t, nil, nil)

	ch := d.Subscribe()
	got := <-ch
	if len(got.Keys) == 0 {
		t.Fatal("expected populated snapshot")
	}
	got.Keys[0].Status = "mangled"

	d.SetPeriod(period.Day)
	next := <-ch
	if next.Keys[0].Status == "mangled" {
		t.Error("mutating a delivered snapshot reached the store")
	}
	if d.Snapshot().Keys[0].Status == "mangled" {
		t.Error("mutating a delivered snapshot reached later readers")
	}
}

func TestSubscribeDeliversLatest(t *testing.T) {
	d := newTestStore(t, nil, nil)

	ch := d.Subscribe()
	first := <-ch
	if first.Period != period.All {
		t.Errorf("initial snapshot period = %v", first.Period)
	}

	d.SetPeriod(period.Day)
	next := <-ch
	if next.Period != period.Day {
		t.Errorf("published snapshot period = %v, want day", next.Period)
	}
}
