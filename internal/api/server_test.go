package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmiddleware "smartentrance/internal/api/middleware"
	"smartentrance/internal/apiclient"
	"smartentrance/internal/config"
	"smartentrance/internal/models"
	"smartentrance/internal/selection"
	"smartentrance/internal/session"
	"smartentrance/internal/utils"
)

const tabID = "tab-aaaaaaaa"

var blokA = models.Building{ID: 7, Name: "Blok A", Address: "Vitosha 1", Entrance: "A"}

type harness struct {
	t          *testing.T
	cfg        *config.Config
	server     *Server
	backend    *http.ServeMux
	sessions   *session.MemoryStore
	selections *flakyStorage
	guard      *selection.Guard
}

type flakyStorage struct {
	*selection.MemoryStorage
	failWrites bool
}

func (f *flakyStorage) Write(ctx context.Context, key string, data []byte) error {
	if f.failWrites {
		return errors.New("storage unavailable")
	}
	return f.MemoryStorage.Write(ctx, key, data)
}

func newHarness(t *testing.T, role models.UserRole) *harness {
	t.Helper()
	cfg := config.LoadTestConfig()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret-pass" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "backend-session", Path: "/"})
		_ = json.NewEncoder(w).Encode(models.User{ID: 1, Email: body["email"], Role: role})
	})

	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)

	client, err := apiclient.New(backend.URL+"/api", time.Second)
	require.NoError(t, err)

	h := &harness{
		t:          t,
		cfg:        cfg,
		backend:    mux,
		sessions:   session.NewMemoryStore(),
		selections: &flakyStorage{MemoryStorage: selection.NewMemoryStorage()},
		guard:      selection.NewGuard(),
	}
	h.server, err = NewServer(cfg, Options{
		Sessions:   h.sessions,
		Selections: h.selections,
		Guard:      h.guard,
		Backend:    client,
	})
	require.NoError(t, err)
	return h
}

// handle registers a backend route that requires the replayed backend cookie.
func (h *harness) handle(pattern string, fn http.HandlerFunc) {
	h.backend.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("sid")
		if !assert.NoError(h.t, err, "backend cookie replayed") || ck.Value != "backend-session" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fn(w, r)
	})
}

func (h *harness) do(method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(appmiddleware.HeaderTabID, tabID)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.server.Echo().ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(remember bool) []*http.Cookie {
	h.t.Helper()
	body := `{"email":"ivan@example.com","password":"secret-pass","rememberMe":` + map[bool]string{true: "true", false: "false"}[remember] + `}`
	rec := h.do(http.MethodPost, "/auth/login", body, nil)
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

func (h *harness) sessionID(cookies []*http.Cookie) string {
	ck := cookieNamed(cookies, appmiddleware.CookieSession)
	require.NotNil(h.t, ck)
	claims, err := utils.ParseSessionToken(h.cfg.Session.JWTSecret, ck.Value)
	require.NoError(h.t, err)
	return claims.SessionID
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLoginOpensSessionAndRemembersEmail(t *testing.T) {
	h := newHarness(t, models.UserRoleManager)

	cookies := h.login(true)

	remember := cookieNamed(cookies, appmiddleware.CookieRememberEmail)
	require.NotNil(t, remember)
	assert.Equal(t, "ivan@example.com", remember.Value)
	assert.Positive(t, remember.MaxAge)

	sess, err := h.sessions.Get(context.Background(), h.sessionID(cookies))
	require.NoError(t, err)
	assert.Equal(t, []session.Cookie{{Name: "sid", Value: "backend-session"}}, sess.BackendCookies)

	rec := h.do(http.MethodGet, "/login", "", []*http.Cookie{remember})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ivan@example.com", decode(t, rec)["email"])
}

func TestLoginWithoutRememberClearsCookie(t *testing.T) {
	h := newHarness(t, models.UserRoleResident)

	cookies := h.login(false)

	remember := cookieNamed(cookies, appmiddleware.CookieRememberEmail)
	require.NotNil(t, remember)
	assert.Negative(t, remember.MaxAge)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	h := newHarness(t, models.UserRoleResident)

	rec := h.do(http.MethodPost, "/auth/login", `{"email":"ivan@example.com","password":"nope"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "error.invalid_login", decode(t, rec)["messageKey"])
	assert.Nil(t, cookieNamed(rec.Result().Cookies(), appmiddleware.CookieSession))
}

func TestLoginValidationIsLocalized(t *testing.T) {
	h := newHarness(t, models.UserRoleResident)

	rec := h.do(http.MethodPost, "/auth/login?lang=bg", `{"email":"not-an-email","password":"x"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields, ok := decode(t, rec)["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Въведете валиден имейл адрес.", fields["email"])
}

func TestManagerDashboardWithoutScopeShowsOnlyHomes(t *testing.T) {
	h := newHarness(t, models.UserRoleManager)
	cookies := h.login(false)

	rec := h.do(http.MethodGet, "/admin/dashboard/payments", "", cookies)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page struct {
		View      string `json:"view"`
		Scope     selection.Envelope
		Menu      []struct{ View, Label string }
		Sections  []struct{ Name, State string }
		NeedsHome bool `json:"needsHome"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "payments", page.View)
	assert.True(t, page.NeedsHome)
	require.Len(t, page.Menu, 1)
	assert.Equal(t, "homes", page.Menu[0].View)
	assert.Equal(t, "My homes", page.Menu[0].Label)
	require.Len(t, page.Sections, 1)
	assert.Equal(t, "empty", page.Sections[0].State)
}

func TestUnknownViewRedirectsToOverview(t *testing.T) {
	h := newHarness(t, models.UserRoleResident)
	cookies := h.login(false)

	rec := h.do(http.MethodGet, "/dashboard/bogus", "", cookies)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard/overview", rec.Header().Get(echo.HeaderLocation))

	rec = h.do(http.MethodGet, "/dashboard/invitations", "", cookies)
	assert.Equal(t, "/dashboard/overview", rec.Header().Get(echo.HeaderLocation), "manager-only view")
}

func TestWithoutSessionPagesRedirectAndCallsGet401(t *testing.T) {
	h := newHarness(t, models.UserRoleResident)

	rec := h.do(http.MethodGet, "/dashboard/overview", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, appmiddleware.LoginPath, rec.Header().Get(echo.HeaderLocation))

	rec = h.do(http.MethodGet, "/app/selection", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, appmiddleware.LoginPath, decode(t, rec)["redirect"])
}

func TestBackend401ExpiresSession(t *testing.T) {
	h := newHarness(t, models.UserRoleManager)
	h.backend.HandleFunc("GET /api/buildings/7", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(blokA)
	})
	h.backend.HandleFunc("GET /api/buildings/7/units", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	h.backend.HandleFunc("GET /api/buildings/7/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	cookies := h.login(false)
	sid := h.sessionID(cookies)

	rec := h.do(http.MethodPost, "/app/selection/building", `{"buildingId":7}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, "/admin/dashboard/overview", "", cookies)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, appmiddleware.ExpiredLoginPath, rec.Header().Get(echo.HeaderLocation))
	flag := cookieNamed(rec.Result().Cookies(), appmiddleware.CookieSessionExpired)
	require.NotNil(t, flag)
	assert.Equal(t, "1", flag.Value)

	_, err := h.sessions.Get(context.Background(), sid)
	assert.ErrorIs(t, err, session.ErrNotFound)

	rec = h.do(http.MethodGet, "/login", "", []*http.Cookie{flag})
	state := decode(t, rec)
	assert.Equal(t, true, state["sessionExpired"])
	assert.Equal(t, "Your session has expired. Please sign in again.", state["message"])
}

func TestSelectionIsPerTab(t *testing.T) {
	h := newHarness(t, models.UserRoleManager)
	h.handle("GET /api/buildings/7", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(blokA)
	})
	cookies := h.login(false)

	rec := h.do(http.MethodPost, "/app/selection/building", `{"buildingId":7}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, "/app/selection", "", cookies)
	assert.JSONEq(t, `{"type":"building","building":{"id":7,"name":"Blok A","address":"Vitosha 1","entrance":"A"}}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/app/selection", nil)
	req.Header.Set(appmiddleware.HeaderTabID, "tab-bbbbbbbb")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	other := httptest.NewRecorder()
	h.server.Echo().ServeHTTP(other, req)
	assert.JSONEq(t, `{"type":"none"}`, other.Body.String())

	rec = h.do(http.MethodDelete, "/app/selection", "", cookies)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(http.MethodGet, "/app/selection", "", cookies)
	assert.JSONEq(t, `{"type":"none"}`, rec.Body.String())
}

func TestScopeChangeSupersedesSectionFetch(t *testing.T) {
	h := newHarness(t, models.UserRoleManager)
	h.handle("GET /api/buildings/7", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(blokA)
	})
	cookies := h.login(false)
	key := appmiddleware.SelectionKey(h.sessionID(cookies), tabID)
	h.handle("GET /api/buildings/7/polls", func(w http.ResponseWriter, r *http.Request) {
		// another request of the same tab switches scope while this one is in flight
		h.guard.Invalidate(key)
		_, _ = w.Write([]byte(`[{"id":1,"question":"Paint the stairs?"}]`))
	})

	rec := h.do(http.MethodPost, "/app/selection/building", `{"buildingId":7}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/app/sections/polls?flavor=manager", "", cookies)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "error.superseded", decode(t, rec)["messageKey"])
}

func TestMutationWithoutScopeIsRejected(t *testing.T) {
	h := newHarness(t, models.UserRoleManager)
	cookies := h.login(false)

	rec := h.do(http.MethodPost, "/app/notices", `{"title":"Water","body":"Off on Monday"}`, cookies)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error.no_scope", decode(t, rec)["messageKey"])
}

func TestInvalidPaymentMethod(t *testing.T) {
	h := newHarness(t, models.UserRoleManager)
	cookies := h.login(false)

	rec := h.do(http.MethodPost, "/app/payments", `{"unitId":3,"amount":20,"method":"crypto"}`, cookies)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "Choose cash, bank or card.", fields["method"])
}

func TestDuplicateBuildingAddress(t *testing.T) {
	h := newHarness(t, models.UserRoleManager)
	h.handle("POST /api/buildings", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Building with this address already exists"}`))
	})
	cookies := h.login(false)

	body := `{"name":"Blok A","entrance":"A","address":{"formattedAddress":"bul. Vitosha 1, Sofia",
		"components":[{"longName":"1","types":["street_number"]},{"longName":"bul. Vitosha","types":["route"]}]}}`
	rec := h.do(http.MethodPost, "/app/buildings", body, cookies)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error.duplicate_building", decode(t, rec)["messageKey"])
}

func TestBuildingAddressNeedsStreetNumber(t *testing.T) {
	h := newHarness(t, models.UserRoleManager)
	cookies := h.login(false)

	body := `{"name":"Blok A","address":{"formattedAddress":"Sofia","components":[{"longName":"Sofia","types":["locality"]}]}}`
	rec := h.do(http.MethodPost, "/app/buildings", body, cookies)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "Pick an address with a street and a number.", fields["address"])
}

func TestCardResultMessage(t *testing.T) {
	h := newHarness(t, models.UserRoleResident)
	cookies := h.login(false)

	rec := h.do(http.MethodPost, "/app/payments/card/result",
		`{"status":"failed","code":"card_declined","declineCode":"insufficient_funds"}`, cookies)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "payment.insufficient_funds", out["messageKey"])
	assert.Equal(t, "Your card has insufficient funds.", out["message"])
	assert.Equal(t, true, out["retryable"])
}

func TestLogoutEndsSession(t *testing.T) {
	h := newHarness(t, models.UserRoleResident)
	h.backend.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "", Path: "/", MaxAge: -1})
		w.WriteHeader(http.StatusNoContent)
	})
	cookies := h.login(false)
	sid := h.sessionID(cookies)

	rec := h.do(http.MethodPost, "/auth/logout", "", cookies)

	require.Equal(t, http.StatusOK, rec.Code)
	_, err := h.sessions.Get(context.Background(), sid)
	assert.ErrorIs(t, err, session.ErrNotFound)
	cleared := cookieNamed(rec.Result().Cookies(), appmiddleware.CookieSession)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
	assert.Zero(t, h.guard.Len(), "request generations of the session are dropped")
}

func TestHealth(t *testing.T) {
	h := newHarness(t, models.UserRoleResident)

	rec := h.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestLanguageCookieIsRemembered(t *testing.T) {
	h := newHarness(t, models.UserRoleResident)

	rec := h.do(http.MethodGet, "/login?"+url.Values{"lang": {"bg"}}.Encode(), "", nil)

	assert.Equal(t, "bg-BG", rec.Header().Get("Content-Language"))
	lang := cookieNamed(rec.Result().Cookies(), "se_lang")
	require.NotNil(t, lang)
	assert.Equal(t, "bg-BG", lang.Value)
}

func acceptBackend(h *harness) {
	h.handle("POST /api/invitations/accept", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Unit{UnitID: 3, UnitNumber: 101, BuildingID: 7, BuildingName: "Blok A", BuildingAddress: "Vitosha 1"})
	})
}

func TestAcceptInvitationSelectsUnit(t *testing.T) {
	h := newHarness(t, models.UserRoleResident)
	acceptBackend(h)
	cookies := h.login(false)

	rec := h.do(http.MethodPost, "/app/invitations/accept", `{"code":"WXYZ"}`, cookies)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["selected"])
	assert.Equal(t, "unit", body["scope"].(map[string]interface{})["type"])
}

func TestAcceptInvitationReportsFailedSelection(t *testing.T) {
	h := newHarness(t, models.UserRoleResident)
	acceptBackend(h)
	cookies := h.login(false)
	h.selections.failWrites = true

	rec := h.do(http.MethodPost, "/app/invitations/accept", `{"code":"WXYZ"}`, cookies)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, false, body["selected"])
	assert.Equal(t, "none", body["scope"].(map[string]interface{})["type"])
	assert.Equal(t, float64(3), body["unit"].(map[string]interface{})["unitId"])
}
