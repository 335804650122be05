package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/soaringjerry/EcoImpact/internal/models"
)

// SessionState is the authentication state of the session.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
)

// Notification keys emitted by the session.
const (
	NotifyFootprintSaved  = "footprint_saved"
	NotifyActionAdded     = "action_added"
	NotifyChallengeJoined = "challenge_joined"
	NotifyLoggedOut       = "logged_out"
	NotifyLoginRequired   = "login_required"
)

// SessionService owns the current user and footprint history and mirrors
// every change to Storage. Protected commands are no-ops unless a user is
// signed in; they report that with a false result, never an error.
type SessionService struct {
	mu     sync.RWMutex
	authMu sync.Mutex

	storage  Storage
	backend  Backend
	catalog  *Catalog
	notifier Notifier
	logger   zerolog.Logger

	now         func() time.Time
	newActionID func(time.Time) string

	user           *models.User
	history        []models.FootprintRecord
	authenticating bool
	loading        bool
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

func WithNotifier(n Notifier) SessionOption {
	return func(s *SessionService) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(l zerolog.Logger) SessionOption {
	return func(s *SessionService) { s.logger = l }
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithActionIDs(gen func(time.Time) string) SessionOption {
	return func(s *SessionService) {
		if gen != nil {
			s.newActionID = gen
		}
	}
}

// NewSessionService returns a session in the loading state. Call Load
// before issuing commands.
func NewSessionService(storage Storage, backend Backend, catalog *Catalog, opts ...SessionOption) *SessionService {
	s := &SessionService{
		storage:  storage,
		backend:  backend,
		catalog:  catalog,
		notifier: NotifierFunc(func(Notification) {}),
		logger:   zerolog.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
		newActionID: func(t time.Time) string {
			return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
		},
		loading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load hydrates the session from storage. Absent keys mean first run;
// unreadable JSON is logged and treated as absent.
func (s *SessionService) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loading = false }()

	var user models.User
	found, err := s.readJSON(StorageKeyUser, &user)
	if err != nil {
		return err
	}
	if found {
		normalizeUser(&user)
		s.user = &user
	}

	var history []models.FootprintRecord
	found, err = s.readJSON(StorageKeyHistory, &history)
	if err != nil {
		return err
	}
	if found {
		s.history = history
	}
	s.logger.Debug().Bool("user", s.user != nil).Int("history", len(s.history)).Msg("session loaded")
	return nil
}

func (s *SessionService) readJSON(key string, v any) (bool, error) {
	raw, ok, err := s.storage.Get(key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("ignoring unreadable stored value")
		return false, nil
	}
	return true, nil
}

func (s *SessionService) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.authenticating:
		return StateAuthenticating
	case s.user != nil:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

// IsLoading is true until Load finishes and while an auth attempt is in flight.
func (s *SessionService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading || s.authenticating
}

// User returns a copy of the current user, or nil when signed out.
func (s *SessionService) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// History returns the footprint history, oldest first.
func (s *SessionService) History() []models.FootprintRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.FootprintRecord{}, s.history...)
}

// Snapshot returns the user and history read under one lock.
func (s *SessionService) Snapshot() (*models.User, []models.FootprintRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone(), append([]models.FootprintRecord{}, s.history...)
}

func (s *SessionService) Catalog() *Catalog { return s.catalog }

// Login signs in through the backend. Attempts are serialized. If ctx is
// cancelled before the backend answers, the previous state is kept.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.User, error) {
	return s.authenticate(ctx, "login", func(ctx context.Context) (*models.User, []models.FootprintRecord, error) {
		return s.backend.Login(ctx, email, password)
	})
}

// Signup creates a fresh account with no footprint and an empty history.
func (s *SessionService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.authenticate(ctx, "signup", func(ctx context.Context) (*models.User, []models.FootprintRecord, error) {
		return s.backend.Signup(ctx, name, email, password)
	})
}

func (s *SessionService) authenticate(
	ctx context.Context,
	op string,
	call func(context.Context) (*models.User, []models.FootprintRecord, error),
) (*models.User, error) {
	s.authMu.Lock()
	defer s.authMu.Unlock()

	s.mu.Lock()
	s.authenticating = true
	s.mu.Unlock()

	u, history, err := call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticating = false
	if err != nil {
		s.logger.Info().Err(err).Str("op", op).Msg("auth attempt aborted")
		return nil, err
	}
	if u == nil {
		return nil, NewUnavailableError(op + " returned no user")
	}
	normalizeUser(u)
	if history == nil {
		history = []models.FootprintRecord{}
	}
	s.user = u
	s.history = history
	s.persistUser()
	s.persistHistory()
	s.logger.Info().Str("op", op).Str("uid", u.ID).Msg("signed in")
	return u.Clone(), nil
}

// Logout clears the user and its stored copy. History stays in storage.
// It reports whether a user was signed in.
func (s *SessionService) Logout() bool {
	s.mu.Lock()
	was := s.user != nil
	s.user = nil
	if err := s.storage.Remove(StorageKeyUser); err != nil {
		s.logger.Error().Err(err).Str("key", StorageKeyUser).Msg("remove failed")
	}
	s.mu.Unlock()

	s.notifier.Notify(NewNotification(NotifyLoggedOut, VariantDefault))
	return was
}

// SaveFootprint appends rec to the history and makes its total the user's
// current footprint.
func (s *SessionService) SaveFootprint(rec models.FootprintRecord) bool {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return false
	}
	if rec.Date.IsZero() {
		rec.Date = s.now()
	}
	s.history = append(s.history, rec)
	total := rec.Total
	s.user.Footprint = &total
	s.persistUser()
	s.persistHistory()
	s.mu.Unlock()

	s.notifier.Notify(NewNotification(NotifyFootprintSaved, VariantDefault))
	return true
}

// AddAction records a new action at the front of the user's list.
func (s *SessionService) AddAction(draft models.ActionDraft) (*models.Action, bool) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil, false
	}
	now := s.now()
	a := models.Action{
		ID:       s.newActionID(now),
		Title:    draft.Title,
		Date:     now,
		Impact:   draft.Impact,
		Category: draft.Category,
		Icon:     draft.Icon,
	}
	s.user.Actions = append([]models.Action{a}, s.user.Actions...)
	s.persistUser()
	s.mu.Unlock()

	s.notifier.Notify(NewNotification(NotifyActionAdded, VariantDefault, a.Title))
	return &a, true
}

// JoinChallenge adds an upcoming challenge to the user. Unknown ids and
// repeat joins change nothing.
func (s *SessionService) JoinChallenge(id string) bool {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return false
	}
	ch, ok := s.catalog.Challenge(id)
	if !ok || s.user.HasChallenge(id) {
		s.mu.Unlock()
		return false
	}
	s.user.Challenges = append(s.user.Challenges, ch)
	s.persistUser()
	s.mu.Unlock()

	s.notifier.Notify(NewNotification(NotifyChallengeJoined, VariantDefault))
	return true
}

// persistUser and persistHistory run with mu held. Write errors are logged;
// in-memory state is kept.
func (s *SessionService) persistUser() {
	s.writeJSON(StorageKeyUser, s.user)
}

func (s *SessionService) persistHistory() {
	s.writeJSON(StorageKeyHistory, s.history)
}

func (s *SessionService) writeJSON(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("encode failed")
		return
	}
	if err := s.storage.Set(key, raw); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("write failed")
	}
}

func normalizeUser(u *models.User) {
	u.IsLoggedIn = true
	if u.Actions == nil {
		u.Actions = []models.Action{}
	}
	if u.Challenges == nil {
		u.Challenges = []models.Challenge{}
	}
	if u.TargetFootprint == 0 {
		u.TargetFootprint = DefaultTargetFootprint
	}
}
