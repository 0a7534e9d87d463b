package datagen_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/jihun-01/scratcha-dashboard/adapters/datagen"
	"github.com/jihun-01/scratcha-dashboard/domain/usage"
)

var now = time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)

func TestPoolSeedDeterminism(t *testing.T) {
	a := datagen.New(42).Pool(now, 500)
	b := datagen.New(42).Pool(now, 500)

	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different pools")
	}

	c := datagen.New(43).Pool(now, 500)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical pools")
	}
}

func TestPoolShape(t *testing.T) {
	pool := datagen.New(1).Pool(now, 1000)

	if len(pool) != 1000 {
		t.Fatalf("pool size = %d, want 1000", len(pool))
	}

	earliest := now.AddDate(0, 0, -365)
	var success int
	for _, e := range pool {
		at, ok := e.Time()
		if !ok {
			t.Fatalf("event %d has malformed timestamp %q", e.ID, e.OccurredAt)
		}
		if at.After(now) || at.Before(earliest) {
			t.Fatalf("event %d at %v outside the 365-day span", e.ID, at)
		}
		if e.Result == usage.ResultSuccess {
			success++
		}
		if e.ResponseTimeMs <= 0 {
			t.Fatalf("event %d has response time %d", e.ID, e.ResponseTimeMs)
		}
	}

	// Result weights are 4:1:1:1; with 1000 draws the success share
	// stays well inside 45..70%.
	if success < 450 || success > 700 {
		t.Errorf("success count = %d, outside expected band", success)
	}

	// Newest first.
	for i := 1; i < len(pool); i++ {
		ti, _ := pool[i-1].Time()
		tj, _ := pool[i].Time()
		if ti.Before(tj) {
			t.Fatalf("pool not sorted newest first at index %d", i)
		}
	}
}

func TestScenarioPercent(t *testing.T) {
	tests := []struct {
		sc   usage.Scenario
		want int
	}{
		{usage.ScenarioLow, 25},
		{usage.ScenarioMid, 45},
		{usage.ScenarioHigh, 75},
	}
	for _, tt := range tests {
		if got := datagen.ScenarioPercent(tt.sc); got != tt.want {
			t.Errorf("ScenarioPercent(%v) = %d, want %d", tt.sc, got, tt.want)
		}
	}
}

func TestTargetCalls(t *testing.T) {
	// Starter at 45%: 50000*45/100/20 = 1125 calls.
	if got := datagen.TargetCalls(50000, 45, 20); got != 1125 {
		t.Errorf("TargetCalls = %d, want 1125", got)
	}
	// Tiny plans floor at 50 so charts are never empty.
	if got := datagen.TargetCalls(1000, 25, 20); got != 50 {
		t.Errorf("TargetCalls floor = %d, want 50", got)
	}
}

func TestScenarioDatasetDeterministic(t *testing.T) {
	a := datagen.ScenarioDataset(usage.ScenarioMid, now, 50000, 20)
	b := datagen.ScenarioDataset(usage.ScenarioMid, now, 50000, 20)

	if !reflect.DeepEqual(a, b) {
		t.Error("scenario dataset is not deterministic")
	}
}

func TestScenarioDatasetSizeClamp(t *testing.T) {
	// Mid on Starter: 22500/20 = 1125 events.
	mid := datagen.ScenarioDataset(usage.ScenarioMid, now, 50000, 20)
	if len(mid) != 1125 {
		t.Errorf("mid size = %d, want 1125", len(mid))
	}

	// Free plan is tiny; the floor of 100 applies.
	small := datagen.ScenarioDataset(usage.ScenarioLow, now, 1000, 20)
	if len(small) != 100 {
		t.Errorf("small size = %d, want 100 (floor)", len(small))
	}

	// Enterprise would explode; the cap of 10000 applies.
	big := datagen.ScenarioDataset(usage.ScenarioHigh, now, 999999999, 20)
	if len(big) != 10000 {
		t.Errorf("big size = %d, want 10000 (cap)", len(big))
	}
}

func TestScenarioDatasetResultCycle(t *testing.T) {
	events := datagen.ScenarioDataset(usage.ScenarioMid, now, 50000, 20)

	var success, failure, timeout, authErr int
	for _, e := range events {
		switch e.Result {
		case usage.ResultSuccess:
			success++
			if e.ResponseTimeMs != 200 {
				t.Fatalf("success response time = %d, want 200", e.ResponseTimeMs)
			}
		case usage.ResultFailure:
			failure++
			if e.ResponseTimeMs != 1500 {
				t.Fatalf("failure response time = %d, want 1500", e.ResponseTimeMs)
			}
		case usage.ResultTimeout:
			timeout++
			if e.ResponseTimeMs != 6000 {
				t.Fatalf("timeout response time = %d, want 6000", e.ResponseTimeMs)
			}
		case usage.ResultAuthError:
			authErr++
			if e.ResponseTimeMs != 120 {
				t.Fatalf("auth_error response time = %d, want 120", e.ResponseTimeMs)
			}
		}
	}

	// The 6-element cycle is success x3 / failure / timeout / auth_error.
	if success < failure*2 {
		t.Errorf("success/failure = %d/%d, success should dominate 3:1", success, failure)
	}
	if failure == 0 || timeout == 0 || authErr == 0 {
		t.Errorf("missing result kinds: %d/%d/%d", failure, timeout, authErr)
	}
}

func TestSynthesizeMonthToDate(t *testing.T) {
	events := datagen.SynthesizeMonthToDate(1125, now)

	if len(events) != 1125 {
		t.Fatalf("count = %d, want 1125", len(events))
	}

	monthStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, e := range events {
		at, ok := e.Time()
		if !ok {
			t.Fatalf("malformed timestamp %q", e.OccurredAt)
		}
		if at.Before(monthStart) || at.After(now) {
			t.Fatalf("event at %v outside month-to-date", at)
		}
		if e.Result != usage.ResultSuccess {
			t.Fatalf("synthetic event result = %v, want success", e.Result)
		}
	}
}

func TestParseScenario(t *testing.T) {
	for _, ok := range []string{"low", "mid", "high"} {
		if _, err := datagen.ParseScenario(ok); err != nil {
			t.Errorf("ParseScenario(%q) error: %v", ok, err)
		}
	}
	if _, err := datagen.ParseScenario("extreme"); err == nil {
		t.Error("ParseScenario(extreme) should fail")
	}
}

func TestSuiteImplementsGenerator(t *testing.T) {
	var s datagen.Suite

	if got := s.ScenarioPercent(usage.ScenarioHigh); got != 75 {
		t.Errorf("Suite.ScenarioPercent = %d, want 75", got)
	}
	if got := s.TargetCalls(50000, 45, 20); got != 1125 {
		t.Errorf("Suite.TargetCalls = %d, want 1125", got)
	}
	if got := len(s.SynthesizeMonthToDate(50, now)); got != 50 {
		t.Errorf("Suite.SynthesizeMonthToDate len = %d, want 50", got)
	}
}
