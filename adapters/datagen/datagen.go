// Package datagen generates the demo event pools the dashboard serves.
//
// Randomness lives only here, on the pool-construction side of the
// boundary: generators emit a fixed []usage.Event and the derivation
// functions in domain/ stay pure. The scenario datasets are fully
// deterministic for a given anchor so repeated runs paginate and chart
// identically.
package datagen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jihun-01/scratcha-dashboard/domain/application"
	"github.com/jihun-01/scratcha-dashboard/domain/key"
	"github.com/jihun-01/scratcha-dashboard/domain/usage"
)

// DemoApps returns the fixed demo application catalog.
func DemoApps() []application.Application {
	return []application.Application{
		{ID: 1, Name: "My Website", Description: "메인 웹사이트 캡차 서비스", Status: application.StatusActive, Settings: application.DefaultSettings()},
		{ID: 2, Name: "Mobile App", Description: "모바일 애플리케이션 캡차", Status: application.StatusActive, Settings: application.DefaultSettings()},
		{ID: 3, Name: "Admin Panel", Description: "관리자 패널 보안 캡차", Status: application.StatusInactive, Settings: application.DefaultSettings()},
		{ID: 4, Name: "API Gateway", Description: "API 게이트웨이 캡차 서비스", Status: application.StatusActive, Settings: application.DefaultSettings()},
	}
}

// DemoKeys returns the fixed demo API key catalog.
func DemoKeys() []key.Key {
	return []key.Key{
		{ID: 1, AppID: 1, Name: "Production Key", Secret: "sk-prod-1234567890abcdef", Status: key.StatusActive, LastUsed: "2024-01-25T10:30:00Z"},
		{ID: 2, AppID: 1, Name: "Development Key", Secret: "sk-dev-abcdef1234567890", Status: key.StatusActive, LastUsed: "2024-01-25T09:15:00Z"},
		{ID: 3, AppID: 2, Name: "Mobile App Key", Secret: "sk-mobile-9876543210fedcba", Status: key.StatusActive, LastUsed: "2024-01-25T11:45:00Z"},
		{ID: 4, AppID: 3, Name: "Admin Panel Key", Secret: "sk-admin-fedcba0987654321", Status: key.StatusInactive, LastUsed: "2024-01-20T15:20:00Z"},
		{ID: 5, AppID: 4, Name: "Gateway Key", Secret: "sk-gateway-abcdef1234567890", Status: key.StatusActive, LastUsed: "2024-01-25T12:00:00Z"},
	}
}

// Generator builds event pools from an injected random source.
type Generator struct {
	rnd  *rand.Rand
	apps []application.Application
	keys []key.Key
}

// New creates a generator seeded with seed.
func New(seed int64) *Generator {
	return &Generator{
		rnd:  rand.New(rand.NewSource(seed)),
		apps: DemoApps(),
		keys: DemoKeys(),
	}
}

// Pool generates size random events spread over the 365 days before now,
// newest first. Result distribution is 4:1:1:1 success/failure/timeout/
// auth_error; response times depend on the result (success short, failure
// medium, timeout long, auth_error short).
func (g *Generator) Pool(now time.Time, size int) []usage.Event {
	results := []usage.Result{
		usage.ResultSuccess, usage.ResultSuccess, usage.ResultSuccess, usage.ResultSuccess,
		usage.ResultFailure, usage.ResultTimeout, usage.ResultAuthError,
	}

	events := make([]usage.Event, 0, size)
	for i := 0; i < size; i++ {
		app := g.apps[g.rnd.Intn(len(g.apps))]
		appKeys := key.FilterByApp(g.keys, app.ID)
		k := g.keys[0]
		if len(appKeys) > 0 {
			k = appKeys[g.rnd.Intn(len(appKeys))]
		}

		minutesAgo := g.rnd.Intn(365 * 24 * 60)
		when := now.Add(-time.Duration(minutesAgo) * time.Minute)

		result := results[g.rnd.Intn(len(results))]
		events = append(events, usage.Event{
			ID:             int64(i + 1),
			AppID:          app.ID,
			AppName:        app.Name,
			KeyID:          k.ID,
			APIKey:         k.Secret,
			OccurredAt:     when.UTC().Format(time.RFC3339),
			Result:         result,
			ResponseTimeMs: g.responseTime(result),
		})
	}

	usage.SortNewestFirst(events)
	return events
}

func (g *Generator) responseTime(r usage.Result) int {
	randIn := func(min, max int) int { return min + g.rnd.Intn(max-min+1) }
	switch r {
	case usage.ResultFailure:
		return randIn(1000, 3000)
	case usage.ResultTimeout:
		return randIn(5000, 8000)
	case usage.ResultAuthError:
		return randIn(50, 250)
	default:
		return randIn(100, 400)
	}
}

// ScenarioPercent maps a dataset scenario to its target plan-usage
// percentage.
func ScenarioPercent(sc usage.Scenario) int {
	switch sc {
	case usage.ScenarioLow:
		return 25
	case usage.ScenarioHigh:
		return 75
	default:
		return 45
	}
}

// TargetCalls converts a target usage percentage into a call count for
// the month, with a floor of 50 so charts are never empty.
func TargetCalls(limit int64, percent, avgTokens int) int {
	if avgTokens < 1 {
		avgTokens = 1
	}
	calls := int(limit) * percent / 100 / avgTokens
	if calls < 50 {
		calls = 50
	}
	return calls
}

// ScenarioDataset builds the deterministic session dataset for sc:
// enough calls over the last 365 days to land near the scenario's target
// percentage of limit, spread uniformly, results cycling through
// success x3 / failure / timeout / auth_error with fixed response times.
// No random source is involved; the same (sc, now, limit, avgTokens)
// always yields the same events.
func ScenarioDataset(sc usage.Scenario, now time.Time, limit int64, avgTokens int) []usage.Event {
	if avgTokens < 1 {
		avgTokens = 1
	}
	usedTokens := limit * int64(ScenarioPercent(sc)) / 100
	total := int(usedTokens) / avgTokens
	if total < 100 {
		total = 100
	}
	if total > 10000 {
		total = 10000
	}
	return uniformEvents(total, now, 365*24*60)
}

// SynthesizeMonthToDate builds count successful calls spread evenly from
// the first of now's month through now. Deterministic.
func SynthesizeMonthToDate(count int, now time.Time) []usage.Event {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	spanMinutes := int(now.Sub(monthStart).Minutes())
	if spanMinutes < 1 {
		spanMinutes = 1
	}

	apps := DemoApps()
	keys := DemoKeys()
	events := make([]usage.Event, 0, count)
	for i := 0; i < count; i++ {
		app := apps[i%len(apps)]
		appKeys := key.FilterByApp(keys, app.ID)
		k := keys[0]
		if len(appKeys) > 0 {
			k = appKeys[i%len(appKeys)]
		}

		minutesAgo := i * spanMinutes / maxInt(1, count)
		when := now.Add(-time.Duration(minutesAgo) * time.Minute)
		events = append(events, usage.Event{
			ID:             int64(i + 1),
			AppID:          app.ID,
			AppName:        app.Name,
			KeyID:          k.ID,
			APIKey:         k.Secret,
			OccurredAt:     when.UTC().Format(time.RFC3339),
			Result:         usage.ResultSuccess,
			ResponseTimeMs: 200,
		})
	}

	usage.SortNewestFirst(events)
	return events
}

// uniformEvents distributes total events evenly over the spanMinutes
// before now with the fixed scenario result cycle.
func uniformEvents(total int, now time.Time, spanMinutes int) []usage.Event {
	results := []usage.Result{
		usage.ResultSuccess, usage.ResultSuccess, usage.ResultSuccess,
		usage.ResultFailure, usage.ResultTimeout, usage.ResultAuthError,
	}
	fixedResponse := map[usage.Result]int{
		usage.ResultSuccess:   200,
		usage.ResultFailure:   1500,
		usage.ResultTimeout:   6000,
		usage.ResultAuthError: 120,
	}

	apps := DemoApps()
	keys := DemoKeys()
	step := spanMinutes / maxInt(1, total)

	events := make([]usage.Event, 0, total)
	for i := 0; i < total; i++ {
		app := apps[i%len(apps)]
		appKeys := key.FilterByApp(keys, app.ID)
		k := keys[0]
		if len(appKeys) > 0 {
			k = appKeys[i%len(appKeys)]
		}

		when := now.Add(-time.Duration(step*i) * time.Minute)
		result := results[i%len(results)]
		events = append(events, usage.Event{
			ID:             int64(i + 1),
			AppID:          app.ID,
			AppName:        app.Name,
			KeyID:          k.ID,
			APIKey:         k.Secret,
			OccurredAt:     when.UTC().Format(time.RFC3339),
			Result:         result,
			ResponseTimeMs: fixedResponse[result],
		})
	}

	usage.SortNewestFirst(events)
	return events
}

// ScenarioDatasets builds all three scenario datasets at once, keyed by
// scenario.
func ScenarioDatasets(now time.Time, limit int64, avgTokens int) map[usage.Scenario][]usage.Event {
	out := make(map[usage.Scenario][]usage.Event, len(usage.Scenarios))
	for _, sc := range usage.Scenarios {
		out[sc] = ScenarioDataset(sc, now, limit, avgTokens)
	}
	return out
}

// ParseScenario validates a scenario query value.
func ParseScenario(s string) (usage.Scenario, error) {
	switch usage.Scenario(s) {
	case usage.ScenarioLow, usage.ScenarioMid, usage.ScenarioHigh:
		return usage.Scenario(s), nil
	}
	return "", fmt.Errorf("unknown scenario %q", s)
}

// PickScenario selects a random scenario for a fresh session.
func (g *Generator) PickScenario() usage.Scenario {
	return usage.Scenarios[g.rnd.Intn(len(usage.Scenarios))]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Suite implements ports.DatasetGenerator over the package functions.
type Suite struct{}

// ScenarioDataset calls the package-level ScenarioDataset.
func (Suite) ScenarioDataset(sc usage.Scenario, now time.Time, limit int64, avgTokens int) []usage.Event {
	return ScenarioDataset(sc, now, limit, avgTokens)
}

// SynthesizeMonthToDate calls the package-level SynthesizeMonthToDate.
func (Suite) SynthesizeMonthToDate(count int, now time.Time) []usage.Event {
	return SynthesizeMonthToDate(count, now)
}

// ScenarioPercent calls the package-level ScenarioPercent.
func (Suite) ScenarioPercent(sc usage.Scenario) int { return ScenarioPercent(sc) }

// TargetCalls calls the package-level TargetCalls.
func (Suite) TargetCalls(limit int64, percent, avgTokens int) int {
	return TargetCalls(limit, percent, avgTokens)
}
