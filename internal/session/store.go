package session

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"sheetqa/domain/answer"
	"sheetqa/domain/workbook"
	"sheetqa/internal/errors"
)

const (
	cookieName = "sheetqa_session"
	idKey      = "id"
)

// State is what one browser session keeps between requests. Lock it
// for the duration of a request that reads or changes it.
type State struct {
	sync.Mutex

	ID           string
	Workbook     *workbook.Workbook
	LastQuestion string
	LastResult   *answer.Result
}

// SetWorkbook replaces the workbook wholesale and clears the last answer
func (s *State) SetWorkbook(wb *workbook.Workbook) {
	s.Workbook = wb
	s.LastQuestion = ""
	s.LastResult = nil
}

// Reset drops everything the session holds
func (s *State) Reset() {
	s.SetWorkbook(nil)
}

// Store maps a signed session cookie to in-memory State. Idle sessions
// expire after the TTL; beyond maxEntries the least recently used go first.
type Store struct {
	cookies *sessions.CookieStore
	states  *expirable.LRU[string, *State]
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewStore creates a session store. An empty secret gets a random key,
// which invalidates cookies on restart.
func NewStore(secret string, ttl time.Duration, maxEntries int, logger *slog.Logger) (*Store, error) {
	logger = logger.With("component", "session_store")
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, errors.Wrap(err, "failed to generate session key")
		}
		logger.Info("SESSION_SECRET not set, using a per-process key")
	}

	cookies := sessions.NewCookieStore(key)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	onEvict := func(id string, _ *State) {
		logger.Debug("session dropped", "session", id)
	}
	return &Store{
		cookies: cookies,
		states:  expirable.NewLRU[string, *State](maxEntries, onEvict, ttl),
		logger:  logger,
	}, nil
}

// Get returns the caller's session state, starting a new session and
// setting its cookie when there is none or it has expired
func (s *Store) Get(w http.ResponseWriter, r *http.Request) (*State, error) {
	// A tampered or stale-key cookie decodes to a fresh session
	sess, _ := s.cookies.Get(r, cookieName)

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := sess.Values[idKey].(string); ok {
		if state, ok := s.states.Get(id); ok {
			// Re-adding restarts the idle timer; re-saving slides the
			// cookie's MaxAge along with it
			s.states.Add(id, state)
			if err := sess.Save(r, w); err != nil {
				return nil, errors.Wrap(err, "failed to refresh session cookie")
			}
			return state, nil
		}
	}

	state := &State{ID: uuid.NewString()}
	sess.Values[idKey] = state.ID
	if err := sess.Save(r, w); err != nil {
		return nil, errors.Wrap(err, "failed to save session cookie")
	}
	s.states.Add(state.ID, state)
	s.logger.Debug("session started", "session", state.ID)
	return state, nil
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	return s.states.Len()
}
