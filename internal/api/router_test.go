package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/EcoImpact/internal/db"
	"github.com/soaringjerry/EcoImpact/internal/middleware"
	"github.com/soaringjerry/EcoImpact/internal/services"
)

type testServer struct {
	handler http.Handler
	session *services.SessionService
	storage *db.MemoryStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	storage := db.NewMemoryStorage()
	inbox := services.NewInbox(20)
	session := services.NewSessionService(storage, services.NewDemoBackend(0), services.NewDemoCatalog(time.Now().UTC()),
		services.WithNotifier(inbox))
	require.NoError(t, session.Load())

	signer, err := middleware.NewSigner("test-secret", time.Hour)
	require.NoError(t, err)
	rt := NewRouter(Deps{Session: session, Signer: signer, Inbox: inbox, Logger: zerolog.Nop()})
	return &testServer{
		handler: middleware.LocaleMiddleware(rt.Handler()),
		session: session,
		storage: storage,
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	var out map[string]any
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	}
	return rr, out
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	rr, out := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "jane@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	tok, _ := out["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func notificationKeys(out map[string]any) []string {
	var keys []string
	list, _ := out["notifications"].([]any)
	for _, n := range list {
		if m, ok := n.(map[string]any); ok {
			keys = append(keys, m["key"].(string))
		}
	}
	return keys
}

func TestLoginAndSession(t *testing.T) {
	ts := newTestServer(t)

	_, out := ts.do(t, http.MethodGet, "/api/session", "", nil)
	assert.Equal(t, "anonymous", out["state"])
	assert.Nil(t, out["user"])

	tok := ts.login(t)
	_, out = ts.do(t, http.MethodGet, "/api/session", tok, nil)
	assert.Equal(t, "authenticated", out["state"])
	user, ok := out["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", user["name"])
	assert.Equal(t, 8.2, user["footprint"])
}

func TestLogin_Validation(t *testing.T) {
	ts := newTestServer(t)
	rr, out := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": " "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid", out["code"])

	rr, _ = ts.do(t, http.MethodGet, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestSignup(t *testing.T) {
	ts := newTestServer(t)
	rr, out := ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"name": "Sam", "email": "sam@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rr.Code)
	user := out["user"].(map[string]any)
	assert.Nil(t, user["footprint"])
	assert.Equal(t, float64(0), user["rank"])
	assert.True(t, strings.HasPrefix(user["id"].(string), "user"))
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	ts := newTestServer(t)
	for _, tc := range []struct {
		method, path, key string
	}{
		{http.MethodGet, "/api/dashboard", "login_required.dashboard"},
		{http.MethodGet, "/api/profile", "login_required.profile"},
		{http.MethodPost, "/api/challenges/challenge1/join", "login_required.challenges"},
		{http.MethodPost, "/api/actions", "login_required.actions"},
		{http.MethodGet, "/api/action-plan", "login_required.plan"},
		{http.MethodGet, "/api/footprint/history.csv", "login_required.dashboard"},
	} {
		t.Run(tc.path, func(t *testing.T) {
			rr, out := ts.do(t, tc.method, tc.path, "", map[string]any{"title": "x"})
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "/login", out["redirect"])
			assert.Equal(t, []string{tc.key}, notificationKeys(out))
		})
	}
}

func TestCalculator_AnonymousDoesNotSave(t *testing.T) {
	ts := newTestServer(t)
	rr, out := ts.do(t, http.MethodPost, "/api/calculator", "", map[string]any{
		"homeType": "house", "householdSize": 1, "electricityUsage": 300, "transportMode": "car",
		"milesDriven": 150, "mpg": "25", "diet": "mixed", "secondHand": "sometimes",
		"shortFlights": 1, "longFlights": 0, "offsetEmissions": "no", "lifestyle": "average",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	fp := out["footprint"].(map[string]any)
	assert.Equal(t, 7.7, fp["total"])
	assert.InDelta(t, 3.15, fp["homeEnergy"], 1e-9)
	assert.Equal(t, false, out["saved"])
	assert.Equal(t, float64(1), out["multiplier"])
	assert.NotNil(t, out["equivalencies"])
	assert.Empty(t, ts.session.History())
}

func TestCalculator_SavesForSignedInUser(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t)

	rr, out := ts.do(t, http.MethodPost, "/api/calculator", tok, map[string]any{"lifestyle": "luxury", "homeType": "house", "householdSize": "1"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, out["saved"])
	assert.Equal(t, []string{services.NotifyFootprintSaved}, notificationKeys(out))
	assert.Len(t, ts.session.History(), 2)
	assert.Equal(t, 10.1, *ts.session.User().Footprint)
}

func TestActionsFlow(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t)

	rr, out := ts.do(t, http.MethodPost, "/api/actions", tok, map[string]any{"title": "Biked to work", "impact": 0.1, "category": "transport", "icon": "bike"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	action := out["action"].(map[string]any)
	assert.Equal(t, "Biked to work", action["title"])
	assert.NotEmpty(t, action["id"])

	_, out = ts.do(t, http.MethodGet, "/api/actions", tok, nil)
	actions := out["actions"].([]any)
	require.Len(t, actions, 4)
	assert.Equal(t, "Biked to work", actions[0].(map[string]any)["title"])

	rr, _ = ts.do(t, http.MethodPost, "/api/actions", tok, map[string]any{"title": "x", "category": "space"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr, _ = ts.do(t, http.MethodPost, "/api/actions", tok, map[string]any{"title": "x", "impact": -1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = ts.do(t, http.MethodGet, "/api/actions.csv", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "id,date,title,category,impact,icon\n"))
}

func TestJoinChallenge(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t)

	rr, out := ts.do(t, http.MethodPost, "/api/challenges/challenge1/join", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, out["changed"])
	assert.Equal(t, []string{services.NotifyChallengeJoined}, notificationKeys(out))

	_, out = ts.do(t, http.MethodPost, "/api/challenges/challenge1/join", tok, nil)
	assert.Equal(t, false, out["changed"])
	assert.Len(t, ts.session.User().Challenges, 1)

	rr, _ = ts.do(t, http.MethodPost, "/api/challenges/nope/join", tok, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr, _ = ts.do(t, http.MethodPost, "/api/challenges/challenge1/leave", tok, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t)

	rr, out := ts.do(t, http.MethodPost, "/api/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/", out["redirect"])
	assert.Equal(t, []string{services.NotifyLoggedOut}, notificationKeys(out))

	_, ok, err := ts.storage.Get(services.StorageKeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = ts.storage.Get(services.StorageKeyHistory)
	require.NoError(t, err)
	assert.True(t, ok)

	rr, _ = ts.do(t, http.MethodGet, "/api/dashboard", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDashboardAndProfile(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.login(t)

	rr, out := ts.do(t, http.MethodGet, "/api/dashboard", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	d := out["dashboard"].(map[string]any)
	assert.Equal(t, float64(0), d["progress"])
	assert.Len(t, d["recentActions"], 3)
	assert.Len(t, d["recommendations"], 2)
	assert.Len(t, d["challenges"], 3)

	rr, out = ts.do(t, http.MethodGet, "/api/profile", tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	p := out["profile"].(map[string]any)
	assert.Equal(t, float64(0), p["daysSinceJoined"])
	assert.Len(t, p["achievements"], 5)
}

func TestPublicCatalogRoutes(t *testing.T) {
	ts := newTestServer(t)

	_, out := ts.do(t, http.MethodGet, "/api/community?q=chen", "", nil)
	board := out["leaderboard"].([]any)
	require.Len(t, board, 1)
	assert.Equal(t, "Michael Chen", board[0].(map[string]any)["name"])
	assert.Len(t, out["challenges"], 3)

	_, out = ts.do(t, http.MethodGet, "/api/recommendations", "", nil)
	assert.Len(t, out["recommendations"], 5)

	_, out = ts.do(t, http.MethodGet, "/api/learn?type=guide", "", nil)
	assert.Len(t, out["articles"], 2)
	assert.Len(t, out["videos"], 3)
}

func TestNotificationsLocalized(t *testing.T) {
	ts := newTestServer(t)
	ts.session.Logout()

	_, out := ts.do(t, http.MethodGet, "/api/notifications?lang=zh", "", nil)
	list := out["notifications"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "已退出登录", list[0].(map[string]any)["title"])

	_, out = ts.do(t, http.MethodGet, "/api/notifications", "", nil)
	assert.Empty(t, out["notifications"])
}

func TestTokenForOtherUserIgnored(t *testing.T) {
	ts := newTestServer(t)
	ts.login(t)
	signer, err := middleware.NewSigner("test-secret", time.Hour)
	require.NoError(t, err)
	forged, err := signer.Sign("someone-else", "x@example.com")
	require.NoError(t, err)

	rr, _ := ts.do(t, http.MethodGet, "/api/profile", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
