package api

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/soaringjerry/EcoImpact/internal/middleware"
	"github.com/soaringjerry/EcoImpact/internal/models"
	"github.com/soaringjerry/EcoImpact/internal/services"
)

// Deps collects router dependencies. Notifier receives the login-required
// notices the router raises itself; it should feed Inbox.
type Deps struct {
	Session  Session
	Signer   *middleware.Signer
	Inbox    *services.Inbox
	Notifier services.Notifier
	Logger   zerolog.Logger
}

type Router struct {
	session   Session
	signer    *middleware.Signer
	inbox     *services.Inbox
	notifier  services.Notifier
	estimator *services.Estimator
	logger    zerolog.Logger
	now       func() time.Time
}

func NewRouter(deps Deps) *Router {
	n := deps.Notifier
	if n == nil {
		if deps.Inbox != nil {
			n = deps.Inbox
		} else {
			n = services.NotifierFunc(func(services.Notification) {})
		}
	}
	return &Router{
		session:   deps.Session,
		signer:    deps.Signer,
		inbox:     deps.Inbox,
		notifier:  n,
		estimator: services.NewEstimator(),
		logger:    deps.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/login", rt.handleLogin)                 // POST
	mux.HandleFunc("/api/auth/signup", rt.handleSignup)               // POST
	mux.HandleFunc("/api/auth/logout", rt.handleLogout)               // POST
	mux.HandleFunc("/api/session", rt.handleSession)                  // GET
	mux.HandleFunc("/api/calculator", rt.handleCalculator)            // POST
	mux.HandleFunc("/api/action-plan", rt.handleActionPlan)           // GET
	mux.HandleFunc("/api/footprint/history", rt.handleHistory)        // GET
	mux.HandleFunc("/api/footprint/history.csv", rt.handleHistoryCSV) // GET
	mux.HandleFunc("/api/actions", rt.handleActions)                  // GET, POST
	mux.HandleFunc("/api/actions.csv", rt.handleActionsCSV)           // GET
	mux.HandleFunc("/api/challenges/", rt.handleChallengeScoped)      // POST /api/challenges/{id}/join
	mux.HandleFunc("/api/dashboard", rt.handleDashboard)              // GET
	mux.HandleFunc("/api/profile", rt.handleProfile)                  // GET
	mux.HandleFunc("/api/community", rt.handleCommunity)              // GET ?q=
	mux.HandleFunc("/api/recommendations", rt.handleRecommendations)  // GET
	mux.HandleFunc("/api/learn", rt.handleLearn)                      // GET ?q=&type=
	mux.HandleFunc("/api/notifications", rt.handleNotifications)      // GET
}

// Handler returns the API routes with bearer-token parsing applied.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	rt.Register(mux)
	return middleware.WithAuth(rt.signer)(mux)
}

// currentUser resolves the bearer token to the signed-in user. A token is
// only honored while its uid is the session's user.
func (rt *Router) currentUser(r *http.Request) (*models.User, bool) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return nil, false
	}
	u := rt.session.User()
	if u == nil || u.ID != uid {
		return nil, false
	}
	return u, true
}

func (rt *Router) requireUser(w http.ResponseWriter, r *http.Request, reason string) (*models.User, bool) {
	u, ok := rt.currentUser(r)
	if !ok {
		rt.notifier.Notify(services.LoginRequired(reason))
		rt.writeError(w, r, services.NewUnauthorizedError("login required"), "/login")
		return nil, false
	}
	return u, true
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err, "")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		rt.writeError(w, r, services.NewInvalidError("email and password required"), "")
		return
	}
	u, err := rt.session.Login(r.Context(), req.Email, req.Password)
	rt.finishAuth(w, r, u, err)
}

// POST /api/auth/signup
func (rt *Router) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err, "")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		rt.writeError(w, r, services.NewInvalidError("name, email and password required"), "")
		return
	}
	u, err := rt.session.Signup(r.Context(), req.Name, req.Email, req.Password)
	rt.finishAuth(w, r, u, err)
}

func (rt *Router) finishAuth(w http.ResponseWriter, r *http.Request, u *models.User, err error) {
	if err != nil {
		rt.writeError(w, r, err, "")
		return
	}
	tok, err := rt.signer.Sign(u.ID, u.Email)
	if err != nil {
		rt.writeError(w, r, fmt.Errorf("sign token: %w", err), "")
		return
	}
	rt.respond(w, r, http.StatusOK, map[string]any{"token": tok, "user": u, "redirect": "/dashboard"})
}

// POST /api/auth/logout
func (rt *Router) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	was := rt.session.Logout()
	rt.respond(w, r, http.StatusOK, map[string]any{"ok": true, "wasLoggedIn": was, "redirect": "/"})
}

// GET /api/session
func (rt *Router) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	out := map[string]any{
		"state":   rt.session.State(),
		"loading": rt.session.IsLoading(),
		"user":    nil,
	}
	if u, ok := rt.currentUser(r); ok {
		out["user"] = u
	}
	rt.respond(w, r, http.StatusOK, out)
}

// POST /api/calculator
// Body: questionnaire answers keyed by field name; numbers or strings.
func (rt *Router) handleCalculator(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var raw map[string]any
	if err := decodeJSON(r, &raw); err != nil {
		rt.writeError(w, r, err, "")
		return
	}
	form := make(map[string]string, len(raw))
	for k, v := range raw {
		switch x := v.(type) {
		case nil:
		case string:
			form[k] = x
		case float64:
			form[k] = formatNumber(x)
		default:
			form[k] = fmt.Sprint(x)
		}
	}
	answers := services.ParseAnswers(form)
	rec := rt.estimator.Estimate(answers)

	out := map[string]any{
		"answers":    answers,
		"footprint":  rec,
		"multiplier": services.LifestyleMultiplier(answers.Lifestyle),
		"breakdown":  services.Breakdown(rec),
		"saved":      false,
	}
	if eq, err := services.Equivalencies(rec.Total); err == nil {
		out["equivalencies"] = eq
	}
	if _, ok := rt.currentUser(r); ok {
		out["saved"] = rt.session.SaveFootprint(rec)
	}
	rt.respond(w, r, http.StatusOK, out)
}

// GET /api/action-plan
func (rt *Router) handleActionPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if _, ok := rt.requireUser(w, r, services.LoginForPlan); !ok {
		return
	}
	rt.respond(w, r, http.StatusOK, map[string]any{"redirect": "/dashboard"})
}

// GET /api/footprint/history
func (rt *Router) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if _, ok := rt.requireUser(w, r, services.LoginForDashboard); !ok {
		return
	}
	rt.respond(w, r, http.StatusOK, map[string]any{"history": rt.session.History()})
}

// GET /api/footprint/history.csv
func (rt *Router) handleHistoryCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if _, ok := rt.requireUser(w, r, services.LoginForDashboard); !ok {
		return
	}
	b, err := services.ExportHistoryCSV(rt.session.History())
	if err != nil {
		rt.writeError(w, r, err, "")
		return
	}
	writeCSV(w, "footprint_history.csv", b)
}

// GET, POST /api/actions
func (rt *Router) handleActions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		u, ok := rt.requireUser(w, r, services.LoginForActions)
		if !ok {
			return
		}
		rt.respond(w, r, http.StatusOK, map[string]any{"actions": u.Actions})
	case http.MethodPost:
		if _, ok := rt.requireUser(w, r, services.LoginForActions); !ok {
			return
		}
		var draft models.ActionDraft
		if err := decodeJSON(r, &draft); err != nil {
			rt.writeError(w, r, err, "")
			return
		}
		if err := validateDraft(&draft); err != nil {
			rt.writeError(w, r, err, "")
			return
		}
		a, ok := rt.session.AddAction(draft)
		if !ok {
			rt.writeError(w, r, services.NewUnauthorizedError("login required"), "/login")
			return
		}
		rt.respond(w, r, http.StatusCreated, map[string]any{"action": a})
	default:
		methodNotAllowed(w)
	}
}

func validateDraft(d *models.ActionDraft) error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return services.NewInvalidError("title required")
	}
	if math.IsNaN(d.Impact) || math.IsInf(d.Impact, 0) || d.Impact < 0 {
		return services.NewInvalidError("impact must be a non-negative number")
	}
	if d.Category == "" {
		d.Category = models.CategoryOther
	}
	if !d.Category.Valid() {
		return services.NewInvalidError("unknown category " + string(d.Category))
	}
	return nil
}

// GET /api/actions.csv
func (rt *Router) handleActionsCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	u, ok := rt.requireUser(w, r, services.LoginForActions)
	if !ok {
		return
	}
	b, err := services.ExportActionsCSV(u.Actions)
	if err != nil {
		rt.writeError(w, r, err, "")
		return
	}
	writeCSV(w, "actions.csv", b)
}

// POST /api/challenges/{id}/join
func (rt *Router) handleChallengeScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/challenges/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "join" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	id := parts[0]
	if _, ok := rt.requireUser(w, r, services.LoginForChallenges); !ok {
		return
	}
	if _, ok := rt.session.Catalog().Challenge(id); !ok {
		rt.writeError(w, r, services.NewNotFoundError("challenge not found"), "")
		return
	}
	changed := rt.session.JoinChallenge(id)
	rt.respond(w, r, http.StatusOK, map[string]any{"challengeId": id, "joined": true, "changed": changed})
}

// GET /api/dashboard
func (rt *Router) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if _, ok := rt.requireUser(w, r, services.LoginForDashboard); !ok {
		return
	}
	u, history := rt.session.Snapshot()
	if u == nil {
		rt.writeError(w, r, services.NewUnauthorizedError("login required"), "/login")
		return
	}
	rt.respond(w, r, http.StatusOK, map[string]any{
		"dashboard": services.BuildDashboard(u, history, rt.session.Catalog(), rt.now()),
	})
}

// GET /api/profile
func (rt *Router) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	u, ok := rt.requireUser(w, r, services.LoginForProfile)
	if !ok {
		return
	}
	rt.respond(w, r, http.StatusOK, map[string]any{"profile": services.BuildProfile(u, rt.now())})
}

// GET /api/community?q=
func (rt *Router) handleCommunity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	u, _ := rt.currentUser(r)
	catalog := rt.session.Catalog()
	now := rt.now()
	views := []services.ChallengeView{}
	for _, ch := range catalog.UpcomingChallenges() {
		views = append(views, services.ChallengeView{
			Challenge:      ch,
			DaysUntilStart: services.DaysUntil(ch.StartDate, now),
			Joined:         u != nil && u.HasChallenge(ch.ID),
		})
	}
	rt.respond(w, r, http.StatusOK, map[string]any{
		"leaderboard": catalog.Leaderboard(u, r.URL.Query().Get("q")),
		"challenges":  views,
	})
}

// GET /api/recommendations
func (rt *Router) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rt.respond(w, r, http.StatusOK, map[string]any{"recommendations": rt.session.Catalog().Recommendations()})
}

// GET /api/learn?q=&type=article|guide
func (rt *Router) handleLearn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query().Get("q")
	catalog := rt.session.Catalog()
	rt.respond(w, r, http.StatusOK, map[string]any{
		"articles": catalog.SearchArticles(q, r.URL.Query().Get("type")),
		"videos":   catalog.SearchVideos(q),
	})
}

// GET /api/notifications
func (rt *Router) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rt.respond(w, r, http.StatusOK, nil)
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
