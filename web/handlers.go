package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jihun-01/scratcha-dashboard/adapters/datagen"
	"github.com/jihun-01/scratcha-dashboard/adapters/remote"
	"github.com/jihun-01/scratcha-dashboard/domain/application"
	"github.com/jihun-01/scratcha-dashboard/domain/period"
	"github.com/jihun-01/scratcha-dashboard/pkg/jsonapi"
)

// maxBodyBytes caps request bodies. The API only ever receives small
// JSON objects.
const maxBodyBytes = 1 << 20

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_request", "잘못된 요청 형식입니다."))
		return false
	}
	return true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// writeBackendError translates a backend delegation failure. Remote
// errors keep their status and get the Korean user-facing message;
// anything else is a bad gateway.
func (h *Handler) writeBackendError(w http.ResponseWriter, err error) {
	var re *remote.Error
	if errors.As(err, &re) {
		jsonapi.WriteError(w, jsonapi.NewError(re.StatusCode, "backend", remote.UserMessage(err)))
		return
	}
	h.logger.Error().Err(err).Msg("backend unreachable")
	jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadGateway, "backend_unreachable", remote.UserMessage(err)))
}

// --- auth ---

// Login exchanges credentials for a backend token and stores it in the
// local session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.account.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeBackendError(w, err)
		return
	}
	if err := h.session.Store(r.Context(), token); err != nil {
		h.logger.Error().Err(err).Msg("session store failed")
	}
	jsonapi.WriteMeta(w, http.StatusOK, jsonapi.Meta{"signed_in": true})
}

// Logout clears the local session. The backend keeps no session state.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Clear(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("session clear failed")
	}
	jsonapi.WriteMeta(w, http.StatusOK, jsonapi.Meta{"signed_in": false})
}

// Signup registers a new account with the backend.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		UserName string `json:"user_name"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.account.Signup(r.Context(), req.Email, req.Password, req.UserName); err != nil {
		h.writeBackendError(w, err)
		return
	}
	jsonapi.WriteMeta(w, http.StatusCreated, jsonapi.Meta{"signed_up": true})
}

// SessionInfo reports the current session token claims.
func (h *Handler) SessionInfo(w http.ResponseWriter, r *http.Request) {
	info, ok := h.session.Info()
	if !ok {
		jsonapi.WriteMeta(w, http.StatusOK, jsonapi.Meta{"signed_in": false})
		return
	}
	jsonapi.WriteData(w, http.StatusOK, map[string]any{
		"signed_in":  true,
		"subject":    info.Subject,
		"issued_at":  info.IssuedAt,
		"expires_at": info.ExpiresAt,
	})
}

// --- profile ---

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.account.Me(r.Context())
	if err != nil {
		h.writeBackendError(w, err)
		return
	}
	jsonapi.WriteData(w, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserName string `json:"user_name"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.UserName == "" {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_request", "이름을 입력해주세요."))
		return
	}
	if err := h.account.UpdateUserName(r.Context(), req.UserName); err != nil {
		h.writeBackendError(w, err)
		return
	}
	jsonapi.WriteMeta(w, http.StatusOK, jsonapi.Meta{"updated": true})
}

// DeleteAccount soft-deletes the account and clears the session.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.account.Delete(r.Context()); err != nil {
		h.writeBackendError(w, err)
		return
	}
	if err := h.session.Clear(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("session clear failed")
	}
	jsonapi.WriteNoContent(w)
}

// --- dashboard ---

// Overview returns the stat cards, plan, usage bar, and activity feed.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	s := h.store.Snapshot()
	jsonapi.WriteData(w, http.StatusOK, map[string]any{
		"stats":       s.Stats,
		"plan":        s.Plan,
		"usage":       s.Current,
		"scenario":    s.Scenario,
		"apps":        s.Apps,
		"activities":  s.Activities,
		"session_now": s.SessionNow,
	})
}

// Usage applies the requested period and filters, then returns the
// chart series.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	p, err := period.Parse(q.Get("period"))
	if err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_period", err.Error()))
		return
	}
	h.store.SetPeriod(p)
	h.applyLogFilters(q.Get("app_id"), q.Get("api_key_id"))

	s := h.store.Snapshot()
	jsonapi.WriteData(w, http.StatusOK, map[string]any{
		"period": s.Period,
		"series": s.Series,
		"stats":  s.Stats,
	})
}

// Billing returns the plan, current and last-month usage, and itemized
// statements.
func (h *Handler) Billing(w http.ResponseWriter, r *http.Request) {
	s := h.store.Snapshot()
	jsonapi.WriteData(w, http.StatusOK, map[string]any{
		"plan":                 s.Plan,
		"current":              s.Current,
		"last_month":           s.LastMonth,
		"statement":            s.Statement,
		"last_month_statement": s.LastMonthStatement,
	})
}

// Logs applies filters and page, then returns the current log page.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.applyLogFilters(q.Get("app_id"), q.Get("api_key_id"))
	h.store.SetPage(jsonapi.ParsePage(q))

	s := h.store.Snapshot()
	doc := jsonapi.Document{
		Data: s.Logs,
		Meta: jsonapi.NewPagination(s.LogTotal, s.Page, jsonapi.DefaultPerPage).Meta(),
	}
	w.Header().Set("Content-Type", jsonapi.ContentType)
	json.NewEncoder(w).Encode(doc)
}

// applyLogFilters parses the app/key filter parameters. Absent or
// malformed values mean "all".
func (h *Handler) applyLogFilters(appID, keyID string) {
	var app, key int64
	if appID != "" {
		app, _ = strconv.ParseInt(appID, 10, 64)
	}
	if keyID != "" {
		key, _ = strconv.ParseInt(keyID, 10, 64)
	}
	s := h.store.Snapshot()
	if s.AppID != app || s.KeyID != key {
		h.store.SetLogFilters(app, key)
	}
}

// SetScenario switches the session dataset scenario.
func (h *Handler) SetScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scenario string `json:"scenario"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	sc, err := datagen.ParseScenario(req.Scenario)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_scenario", err.Error()))
		return
	}
	h.store.SetScenario(sc)
	jsonapi.WriteMeta(w, http.StatusOK, jsonapi.Meta{"scenario": string(sc)})
}

// ChangePlan switches the pricing tier.
func (h *Handler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan string `json:"plan"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.store.ChangePlan(req.Plan); err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_plan", err.Error()))
		return
	}
	s := h.store.Snapshot()
	jsonapi.WriteData(w, http.StatusOK, map[string]any{
		"plan":    s.Plan,
		"current": s.Current,
	})
}

// --- applications ---

// ListApplications refreshes the collections from the backend and
// returns applications with derived status plus their keys.
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RefreshApplications(r.Context()); err != nil {
		h.writeBackendError(w, err)
		return
	}
	s := h.store.Snapshot()
	jsonapi.WriteData(w, http.StatusOK, map[string]any{
		"apps": s.Apps,
		"keys": s.Keys,
	})
}

func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"app_name"`
		Description string `json:"description"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_request", "애플리케이션 이름을 입력해주세요."))
		return
	}
	if err := h.store.CreateApplication(r.Context(), req.Name, req.Description); err != nil {
		h.writeBackendError(w, err)
		return
	}
	jsonapi.WriteMeta(w, http.StatusCreated, jsonapi.Meta{"created": true})
}

func (h *Handler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_id", "잘못된 애플리케이션 ID입니다."))
		return
	}
	if err := h.store.DeleteApplication(r.Context(), id); err != nil {
		h.writeBackendError(w, err)
		return
	}
	jsonapi.WriteNoContent(w)
}

// ToggleApplication flips an application and its keys locally.
func (h *Handler) ToggleApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_id", "잘못된 애플리케이션 ID입니다."))
		return
	}
	if err := h.store.ToggleApplication(id); err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusNotFound, "not_found", "애플리케이션을 찾을 수 없습니다."))
		return
	}
	jsonapi.WriteMeta(w, http.StatusOK, jsonapi.Meta{"toggled": true})
}

func (h *Handler) UpdateAppSettings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_id", "잘못된 애플리케이션 ID입니다."))
		return
	}
	var req application.Settings
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.store.UpdateAppSettings(id, req); err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusNotFound, "not_found", "애플리케이션을 찾을 수 없습니다."))
		return
	}
	jsonapi.WriteMeta(w, http.StatusOK, jsonapi.Meta{"updated": true})
}

// --- api keys ---

func (h *Handler) CreateKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AppID         int64 `json:"app_id"`
		ExpiresPolicy int   `json:"expires_policy"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.AppID == 0 {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_request", "애플리케이션을 선택해주세요."))
		return
	}
	if err := h.store.CreateKey(r.Context(), req.AppID, req.ExpiresPolicy); err != nil {
		h.writeBackendError(w, err)
		return
	}
	jsonapi.WriteMeta(w, http.StatusCreated, jsonapi.Meta{"created": true})
}

func (h *Handler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_id", "잘못된 API 키 ID입니다."))
		return
	}
	if err := h.store.DeleteKey(r.Context(), id); err != nil {
		h.writeBackendError(w, err)
		return
	}
	jsonapi.WriteNoContent(w)
}

// ToggleKey flips a key optimistically. A failed backend call rolls the
// key back and surfaces the error.
func (h *Handler) ToggleKey(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusBadRequest, "bad_id", "잘못된 API 키 ID입니다."))
		return
	}
	if err := h.store.ToggleKey(r.Context(), id); err != nil {
		h.writeBackendError(w, err)
		return
	}
	jsonapi.WriteMeta(w, http.StatusOK, jsonapi.Meta{"toggled": true})
}

// --- preferences ---

func (h *Handler) DarkMode(w http.ResponseWriter, r *http.Request) {
	on, err := h.session.DarkMode(r.Context())
	if err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusInternalServerError, "settings", "설정을 불러오지 못했습니다."))
		return
	}
	jsonapi.WriteData(w, http.StatusOK, map[string]any{"dark_mode": on})
}

func (h *Handler) SetDarkMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DarkMode bool `json:"dark_mode"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.session.SetDarkMode(r.Context(), req.DarkMode); err != nil {
		jsonapi.WriteError(w, jsonapi.NewError(http.StatusInternalServerError, "settings", "설정을 저장하지 못했습니다."))
		return
	}
	jsonapi.WriteData(w, http.StatusOK, map[string]any{"dark_mode": req.DarkMode})
}
