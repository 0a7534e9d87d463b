package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jihun-01/scratcha-dashboard/adapters/clock"
	"github.com/jihun-01/scratcha-dashboard/adapters/datagen"
	"github.com/jihun-01/scratcha-dashboard/adapters/idgen"
	"github.com/jihun-01/scratcha-dashboard/adapters/memory"
	"github.com/jihun-01/scratcha-dashboard/adapters/remote"
	"github.com/jihun-01/scratcha-dashboard/adapters/session"
	"github.com/jihun-01/scratcha-dashboard/app"
	"github.com/jihun-01/scratcha-dashboard/domain/application"
	"github.com/jihun-01/scratcha-dashboard/domain/key"
	"github.com/jihun-01/scratcha-dashboard/domain/usage"
	"github.com/jihun-01/scratcha-dashboard/ports"
	"github.com/jihun-01/scratcha-dashboard/web"
)

var now = time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)

type fakeAccount struct {
	loginErr error
	token    string
	profile  ports.Profile
}

func (f *fakeAccount) Login(ctx context.Context, email, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeAccount) Signup(ctx context.Context, email, password, userName string) error {
	return nil
}

func (f *fakeAccount) Me(ctx context.Context) (ports.Profile, error) {
	return f.profile, nil
}

func (f *fakeAccount) UpdateUserName(ctx context.Context, userName string) error { return nil }
func (f *fakeAccount) Delete(ctx context.Context) error                          { return nil }

type fakeAppAPI struct{}

func (fakeAppAPI) ListAll(ctx context.Context) ([]application.Application, []key.Key, error) {
	return datagen.DemoApps(), datagen.DemoKeys(), nil
}

func (fakeAppAPI) Create(ctx context.Context, name, description string) (application.Application, error) {
	return application.Application{ID: 5, Name: name}, nil
}

func (fakeAppAPI) Delete(ctx context.Context, id int64) error { return nil }

type fakeKeyAPI struct {
	setActiveErr error
}

func (f fakeKeyAPI) Create(ctx context.Context, appID int64, expiresPolicy int) (key.Key, error) {
	return key.Key{ID: 99, AppID: appID}, nil
}

func (f fakeKeyAPI) Delete(ctx context.Context, id int64) error { return nil }

func (f fakeKeyAPI) SetActive(ctx context.Context, id int64, active bool) error {
	return f.setActiveErr
}

func newTestServer(t *testing.T, account *fakeAccount, keyErr error) *httptest.Server {
	t.Helper()

	ctx := context.Background()
	events := memory.NewEventStore()
	pool := datagen.ScenarioDataset(usage.ScenarioMid, now, 50000, 20)
	if err := events.Replace(ctx, pool); err != nil {
		t.Fatal(err)
	}

	store, err := app.New(ctx, app.Config{
		Logger:      zerolog.Nop(),
		Clock:       clock.NewFake(now),
		IDs:         idgen.NewSequential("act"),
		Events:      events,
		Datasets:    datagen.Suite{},
		Apps:        fakeAppAPI{},
		Keys:        fakeKeyAPI{setActiveErr: keyErr},
		InitialApps: datagen.DemoApps(),
		InitialKeys: datagen.DemoKeys(),
	})
	if err != nil {
		t.Fatal(err)
	}

	sess, err := session.NewManager(ctx, memory.NewSettingsStore(), clock.NewFake(now))
	if err != nil {
		t.Fatal(err)
	}

	if account == nil {
		account = &fakeAccount{token: "tok"}
	}

	h := web.NewHandler(web.Deps{
		Store:   store,
		Account: account,
		Session: sess,
		Logger:  zerolog.Nop(),
	})
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func doReq(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	resp, _ := get(t, srv, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestOverview(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	resp, body := get(t, srv, "/api/dashboard/overview")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("no data envelope: %v", body)
	}
	for _, field := range []string{"stats", "plan", "usage", "activities"} {
		if _, ok := data[field]; !ok {
			t.Errorf("overview missing %q", field)
		}
	}
}

func TestUsagePeriods(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, body := get(t, srv, "/api/dashboard/usage?period=day")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	series, ok := data["series"].([]any)
	if !ok {
		t.Fatalf("no series: %v", data)
	}
	// 00:00 through 14:00 for a 14:00 anchor.
	if len(series) != 15 {
		t.Errorf("day series = %d points, want 15", len(series))
	}

	resp, _ = get(t, srv, "/api/dashboard/usage?period=year")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad period status = %d, want 400", resp.StatusCode)
	}
}

func TestLogsPagination(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	resp, body := get(t, srv, "/api/dashboard/logs?page=2")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	meta, ok := body["meta"].(map[string]any)
	if !ok {
		t.Fatalf("no meta: %v", body)
	}
	if meta["page"].(float64) != 2 {
		t.Errorf("page = %v, want 2", meta["page"])
	}
	if meta["per_page"].(float64) != 10 {
		t.Errorf("per_page = %v, want 10", meta["per_page"])
	}
	logs, ok := body["data"].([]any)
	if !ok || len(logs) != 10 {
		t.Errorf("logs len = %d, want full page of 10", len(logs))
	}
}

func TestScenarioEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp := post(t, srv, "/api/dashboard/scenario", `{"scenario":"high"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	resp = post(t, srv, "/api/dashboard/scenario", `{"scenario":"extreme"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad scenario status = %d, want 400", resp.StatusCode)
	}
}

func TestChangePlanEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp := post(t, srv, "/api/dashboard/plan", `{"plan":"Pro"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	resp = post(t, srv, "/api/dashboard/plan", `{"plan":"Platinum"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad plan status = %d, want 400", resp.StatusCode)
	}
}

func TestLoginStoresSession(t *testing.T) {
	srv := newTestServer(t, &fakeAccount{token: "jwt-abc"}, nil)

	resp := post(t, srv, "/api/auth/login", `{"email":"a@b.c","password":"pw"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestLoginBackendFailure(t *testing.T) {
	srv := newTestServer(t, &fakeAccount{loginErr: &remote.Error{StatusCode: 401}}, nil)

	resp := post(t, srv, "/api/auth/login", `{"email":"a@b.c","password":"bad"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	errs := body["errors"].([]any)
	detail := errs[0].(map[string]any)["detail"].(string)
	if detail != "세션이 만료되었습니다. 다시 로그인해 주세요." {
		t.Errorf("detail = %q", detail)
	}
}

func TestToggleKeyBackendFailure(t *testing.T) {
	srv := newTestServer(t, nil, &remote.Error{StatusCode: 409, Body: "conflict"})

	resp := doReq(t, srv, http.MethodPut, "/api/api-keys/1/toggle", "")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want propagated 409", resp.StatusCode)
	}

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	errs := body["errors"].([]any)
	detail := errs[0].(map[string]any)["detail"].(string)
	if detail != "이미 존재하는 항목입니다." {
		t.Errorf("detail = %q", detail)
	}
}

func TestToggleKeySuccess(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp := doReq(t, srv, http.MethodPut, "/api/api-keys/1/toggle", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	resp = doReq(t, srv, http.MethodPut, "/api/api-keys/abc/toggle", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", resp.StatusCode)
	}
}

func TestApplicationsCRUD(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, body := get(t, srv, "/api/applications")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	if _, ok := data["apps"]; !ok {
		t.Error("list missing apps")
	}

	resp = post(t, srv, "/api/applications", `{"app_name":"새 앱","description":"테스트"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("create status = %d", resp.StatusCode)
	}

	resp = post(t, srv, "/api/applications", `{"app_name":""}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty name status = %d, want 400", resp.StatusCode)
	}

	resp = doReq(t, srv, http.MethodDelete, "/api/applications/1", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
}

func TestDarkModePreference(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	resp, body := get(t, srv, "/api/preferences/dark-mode")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if on := body["data"].(map[string]any)["dark_mode"].(bool); on {
		t.Error("dark mode should default to off")
	}

	resp = doReq(t, srv, http.MethodPut, "/api/preferences/dark-mode", `{"dark_mode":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d", resp.StatusCode)
	}

	_, body = get(t, srv, "/api/preferences/dark-mode")
	if on := body["data"].(map[string]any)["dark_mode"].(bool); !on {
		t.Error("dark mode not persisted")
	}
}
