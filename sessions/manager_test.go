package sessions_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/sales-dashboard/auth"
	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/internal/utils"
	"github.com/jrsteele09/sales-dashboard/sessions"
	"github.com/jrsteele09/sales-dashboard/storage"
	"github.com/jrsteele09/sales-dashboard/users"
	fakeuserrepo "github.com/jrsteele09/sales-dashboard/users/repofake"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testFixture struct {
	userRepo  *fakeuserrepo.FakeUserRepo
	slot      *storage.MemorySlot
	manager   *sessions.Manager
	navigated []string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		userRepo: fakeuserrepo.NewFakeUserRepo(),
		slot:     storage.NewMemorySlot(),
	}
	service, err := auth.NewService(f.userRepo, auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	f.manager = f.newManager(t, service)
	return f
}

func (f *testFixture) newManager(t *testing.T, authenticator auth.Authenticator) *sessions.Manager {
	t.Helper()

	m, err := sessions.NewManager(authenticator, f.slot, sessions.WithNavigator(sessions.NavigatorFunc(func(path string) {
		f.navigated = append(f.navigated, path)
	})))
	require.NoError(t, err)
	return m
}

func (f *testFixture) createJDoe(t *testing.T) {
	t.Helper()

	h, err := users.HashPasswordWithCost("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	_, err = f.userRepo.Insert(users.User{
		ID:         42,
		Name:       "John Doe",
		Login:      "jdoe",
		Secret:     h,
		Role:       "gerente",
		StoreID:    7,
		Permission: utils.Ptr("3"),
		Status:     utils.Ptr("inativo"),
		NationalID: utils.Ptr(""),
	})
	require.NoError(t, err)
}

// blockingAuthenticator holds Authenticate until release is closed.
type blockingAuthenticator struct {
	started chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (b *blockingAuthenticator) Authenticate(_ context.Context, login, _ string) (*users.User, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	close(b.started)
	<-b.release
	return &users.User{ID: 1, Login: login, Role: "consultora"}, nil
}

type failingSlot struct {
	storage.Slot
	getErr error
	setErr error
}

func (s *failingSlot) Get(key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.Slot.Get(key)
}

func (s *failingSlot) Set(key string, value []byte) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.Slot.Set(key, value)
}

func TestNewManager_RequiresDependencies(t *testing.T) {
	_, err := sessions.NewManager(nil, storage.NewMemorySlot())
	require.Error(t, err)

	service, err := auth.NewService(fakeuserrepo.NewFakeUserRepo())
	require.NoError(t, err)
	_, err = sessions.NewManager(service, nil)
	require.Error(t, err)
}

func TestLogin_Success(t *testing.T) {
	f := setupTestFixture(t)
	f.createJDoe(t)

	require.NoError(t, f.manager.Login(context.Background(), "jdoe", "s3cret"))

	s, ok := f.manager.Current()
	require.True(t, ok)
	require.Equal(t, 42, s.ID)
	require.Equal(t, "John Doe", s.Name)
	require.Equal(t, "gerente", s.Role)
	require.Equal(t, 7, s.StoreID)
	require.Equal(t, 3, s.Permission)
	require.Equal(t, sessions.StatusActive, s.Status)
	require.Nil(t, s.NationalID)
	require.Equal(t, sessions.StateAuthenticated, f.manager.State())

	stored, err := f.slot.Get(sessions.StorageKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":42,"nome":"John Doe","login":"jdoe","tipo":"gerente","loja_id":7,"permissao":3,"status":"ativo"}`, string(stored))
}

func TestLogin_LegacyPlaintext(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.userRepo.Insert(users.User{Login: "maria", Secret: "abc", Role: "consultora", StoreID: 3})
	require.NoError(t, err)

	require.NoError(t, f.manager.Login(context.Background(), "maria", "abc"))
	s, ok := f.manager.Current()
	require.True(t, ok)
	require.Equal(t, 0, s.Permission)

	f2 := setupTestFixture(t)
	_, err = f2.userRepo.Insert(users.User{Login: "maria", Secret: "abc"})
	require.NoError(t, err)
	require.ErrorIs(t, f2.manager.Login(context.Background(), "maria", "ABC"), dasherrors.ErrInvalidCredentials)
}

func TestLogin_FailuresLookIdentical(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		login    string
		password string
		outage   error
	}{
		{name: "unknown login", login: "ghost", password: "s3cret"},
		{name: "wrong password", login: "jdoe", password: "nope"},
		{name: "login is case sensitive", login: "JDoe", password: "s3cret"},
		{name: "store unavailable", login: "jdoe", password: "s3cret", outage: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.createJDoe(t)
			f.userRepo.Err = tt.outage

			err := f.manager.Login(ctx, tt.login, tt.password)
			require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
			require.Equal(t, "Usuário ou senha inválidos", err.Error())

			_, ok := f.manager.Current()
			require.False(t, ok)
			_, err = f.slot.Get(sessions.StorageKey)
			require.ErrorIs(t, err, storage.ErrKeyNotFound)
		})
	}
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	f := setupTestFixture(t)
	f.createJDoe(t)
	ctx := context.Background()

	require.NoError(t, f.manager.Login(ctx, "jdoe", "s3cret"))
	before, err := f.slot.Get(sessions.StorageKey)
	require.NoError(t, err)

	require.ErrorIs(t, f.manager.Login(ctx, "jdoe", "wrong"), dasherrors.ErrInvalidCredentials)

	s, ok := f.manager.Current()
	require.True(t, ok)
	require.Equal(t, "jdoe", s.Login)
	after, err := f.slot.Get(sessions.StorageKey)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestLogin_PersistFailureStillAuthenticates(t *testing.T) {
	f := setupTestFixture(t)
	f.createJDoe(t)

	service, err := auth.NewService(f.userRepo)
	require.NoError(t, err)
	m, err := sessions.NewManager(service, &failingSlot{Slot: f.slot, setErr: errors.New("disk full")})
	require.NoError(t, err)

	require.NoError(t, m.Login(context.Background(), "jdoe", "s3cret"))
	_, ok := m.Current()
	require.True(t, ok)
}

func TestLogin_ConcurrentSubmitIsRejected(t *testing.T) {
	f := setupTestFixture(t)
	blocking := &blockingAuthenticator{started: make(chan struct{}), release: make(chan struct{})}
	m := f.newManager(t, blocking)

	done := make(chan error, 1)
	go func() {
		done <- m.Login(context.Background(), "first", "x")
	}()
	<-blocking.started

	require.ErrorIs(t, m.Login(context.Background(), "second", "y"), dasherrors.ErrLoginInProgress)

	close(blocking.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("first login did not finish")
	}

	s, ok := m.Current()
	require.True(t, ok)
	require.Equal(t, "first", s.Login)
	require.Equal(t, 1, blocking.calls)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.createJDoe(t)
	require.NoError(t, f.manager.Login(context.Background(), "jdoe", "s3cret"))

	f.manager.Logout()

	_, ok := f.manager.Current()
	require.False(t, ok)
	require.Equal(t, sessions.StateUnauthenticated, f.manager.State())
	_, err := f.slot.Get(sessions.StorageKey)
	require.ErrorIs(t, err, storage.ErrKeyNotFound)
	require.Equal(t, []string{sessions.LoginPath}, f.navigated)

	t.Run("idempotent", func(t *testing.T) {
		f.manager.Logout()
		_, ok := f.manager.Current()
		require.False(t, ok)
		require.Equal(t, []string{sessions.LoginPath, sessions.LoginPath}, f.navigated)
	})
}

func TestRestoreSession(t *testing.T) {
	t.Run("round trip through storage", func(t *testing.T) {
		f := setupTestFixture(t)
		f.createJDoe(t)
		require.NoError(t, f.manager.Login(context.Background(), "jdoe", "s3cret"))
		want, _ := f.manager.Current()

		service, err := auth.NewService(f.userRepo)
		require.NoError(t, err)
		reloaded := f.newManager(t, service)
		require.True(t, reloaded.Loading())

		reloaded.RestoreSession()

		require.False(t, reloaded.Loading())
		got, ok := reloaded.Current()
		require.True(t, ok)
		require.Equal(t, want, got)
	})

	t.Run("empty storage", func(t *testing.T) {
		f := setupTestFixture(t)
		f.manager.RestoreSession()

		require.False(t, f.manager.Loading())
		require.Equal(t, sessions.StateUnauthenticated, f.manager.State())
	})

	t.Run("corrupt value is removed", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.slot.Set(sessions.StorageKey, []byte("{not json")))

		f.manager.RestoreSession()

		_, ok := f.manager.Current()
		require.False(t, ok)
		require.False(t, f.manager.Loading())
		_, err := f.slot.Get(sessions.StorageKey)
		require.ErrorIs(t, err, storage.ErrKeyNotFound)
	})

	t.Run("read error yields no session", func(t *testing.T) {
		f := setupTestFixture(t)
		service, err := auth.NewService(f.userRepo)
		require.NoError(t, err)
		m, err := sessions.NewManager(service, &failingSlot{Slot: f.slot, getErr: errors.New("io error")})
		require.NoError(t, err)

		m.RestoreSession()
		require.False(t, m.Loading())
		_, ok := m.Current()
		require.False(t, ok)
	})

	t.Run("runs once", func(t *testing.T) {
		f := setupTestFixture(t)
		f.manager.RestoreSession()

		require.NoError(t, f.slot.Set(sessions.StorageKey, []byte(`{"id":1,"login":"late"}`)))
		f.manager.RestoreSession()

		_, ok := f.manager.Current()
		require.False(t, ok)
	})
}

func TestSubscribe(t *testing.T) {
	f := setupTestFixture(t)
	f.createJDoe(t)

	var states []sessions.State
	var lastLogin string
	unsubscribe := f.manager.Subscribe(func(state sessions.State, s *sessions.Session) {
		states = append(states, state)
		if s != nil {
			lastLogin = s.Login
		}
	})

	f.manager.RestoreSession()
	require.NoError(t, f.manager.Login(context.Background(), "jdoe", "s3cret"))
	require.ErrorIs(t, f.manager.Login(context.Background(), "jdoe", "bad"), dasherrors.ErrInvalidCredentials)
	f.manager.Logout()

	require.Equal(t, []sessions.State{
		sessions.StateUnauthenticated,
		sessions.StateAuthenticated,
		sessions.StateUnauthenticated,
	}, states)
	require.Equal(t, "jdoe", lastLogin)

	unsubscribe()
	require.NoError(t, f.manager.Login(context.Background(), "jdoe", "s3cret"))
	require.Len(t, states, 3)
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.userRepo.Insert(users.User{Login: "ana", Secret: "pw", EmployeeNumber: utils.Ptr("M-1")})
	require.NoError(t, err)
	require.NoError(t, f.manager.Login(context.Background(), "ana", "pw"))

	s, _ := f.manager.Current()
	*s.EmployeeNumber = "changed"

	again, _ := f.manager.Current()
	require.Equal(t, "M-1", *again.EmployeeNumber)
}
