package sessions

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"github.com/jrsteele09/sales-dashboard/auth"
	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/internal/metrics"
	"github.com/jrsteele09/sales-dashboard/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// StorageKey is the durable slot key holding the serialised session
	StorageKey = "user"
	// LoginPath is where logout sends the client
	LoginPath = "/login"
)

// State is the session lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Listener is called after every state change. session is nil unless authenticated.
type Listener func(state State, session *Session)

// Navigator performs a full redirect that discards the client's in-memory state.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

// Manager owns the current session of one client.
type Manager struct {
	authenticator auth.Authenticator
	slot          storage.Slot
	navigator     Navigator

	mu        sync.RWMutex
	state     State
	current   *Session
	listeners map[int]Listener
	nextID    int

	restoreOnce sync.Once
	inFlight    atomic.Bool
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNavigator sets the navigator used on logout
func WithNavigator(n Navigator) ManagerOption {
	return func(m *Manager) {
		m.navigator = n
	}
}

func NewManager(authenticator auth.Authenticator, slot storage.Slot, options ...ManagerOption) (*Manager, error) {
	if authenticator == nil {
		return nil, errors.New("[sessions.NewManager] authenticator is required")
	}
	if slot == nil {
		return nil, errors.New("[sessions.NewManager] storage slot is required")
	}
	m := &Manager{
		authenticator: authenticator,
		slot:          slot,
		navigator:     NavigatorFunc(func(string) {}),
		listeners:     make(map[int]Listener),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Login verifies the credentials and installs a new session.
// Every failure, including backend errors, returns ErrInvalidCredentials and
// leaves the current session untouched. A call made while another Login is
// running returns ErrLoginInProgress.
func (m *Manager) Login(ctx context.Context, login, password string) error {
	if !m.inFlight.CompareAndSwap(false, true) {
		metrics.RecordLogin(metrics.LoginInProgress)
		return dasherrors.ErrLoginInProgress
	}
	defer m.inFlight.Store(false)
	m.RestoreSession()

	user, err := m.authenticator.Authenticate(ctx, login, password)
	if err != nil {
		if stderrors.Is(err, dasherrors.ErrInvalidCredentials) {
			log.Info().Str("login", login).Msg("Login rejected")
			metrics.RecordLogin(metrics.LoginInvalidCredentials)
		} else {
			log.Err(err).Str("login", login).Msg("Login failed against credential store")
			metrics.RecordLogin(metrics.LoginTransportError)
		}
		return dasherrors.ErrInvalidCredentials
	}

	session := FromUser(user)
	data, err := encode(session)
	if err != nil {
		log.Err(err).Str("login", login).Msg("Failed to encode session")
		metrics.RecordLogin(metrics.LoginTransportError)
		return dasherrors.ErrInvalidCredentials
	}
	if err := m.slot.Set(StorageKey, data); err != nil {
		// The session still works until the next reload
		log.Warn().Err(err).Str("login", login).Msg("Failed to persist session")
	}

	m.mu.Lock()
	m.current = &session
	m.state = StateAuthenticated
	m.mu.Unlock()

	log.Info().Str("login", login).Int("user_id", session.ID).Msg("Login succeeded")
	metrics.RecordLogin(metrics.LoginSuccess)
	m.notify()
	return nil
}

// Logout clears the session from memory and durable storage, then redirects
// to the login page. It is safe to call without a session.
func (m *Manager) Logout() {
	m.RestoreSession()

	m.mu.Lock()
	m.current = nil
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if err := m.slot.Remove(StorageKey); err != nil {
		log.Warn().Err(err).Msg("Failed to remove stored session")
	}
	metrics.RecordLogout()
	m.notify()
	m.navigator.Navigate(LoginPath)
}

// RestoreSession loads the stored session once. Later calls do nothing.
// A stored value that cannot be decoded is removed.
func (m *Manager) RestoreSession() {
	m.restoreOnce.Do(m.restore)
}

func (m *Manager) restore() {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return
	}
	m.state = StateLoading
	m.mu.Unlock()

	session, outcome := m.readStored()
	metrics.RecordRestore(outcome)

	m.mu.Lock()
	if m.state == StateLoading {
		if session != nil {
			m.current = session
			m.state = StateAuthenticated
		} else {
			m.state = StateUnauthenticated
		}
	}
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) readStored() (*Session, string) {
	data, err := m.slot.Get(StorageKey)
	if stderrors.Is(err, storage.ErrKeyNotFound) {
		return nil, metrics.RestoreEmpty
	}
	if err != nil {
		log.Err(err).Msg("Failed to read stored session")
		return nil, metrics.RestoreError
	}

	session, err := decode(data)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding stored session")
		if err := m.slot.Remove(StorageKey); err != nil {
			log.Warn().Err(err).Msg("Failed to remove corrupt session")
		}
		return nil, metrics.RestoreCorrupt
	}
	return &session, metrics.RestoreRestored
}

// Loading reports whether the stored session has not been restored yet.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateUninitialized || m.state == StateLoading
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Current returns a copy of the active session.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return m.current.clone(), true
}

// Subscribe registers l for state changes and returns a function that removes it.
func (m *Manager) Subscribe(l Listener) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify() {
	m.mu.RLock()
	state := m.state
	var session *Session
	if m.current != nil {
		cp := m.current.clone()
		session = &cp
	}
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()

	for _, l := range listeners {
		l(state, session)
	}
}
