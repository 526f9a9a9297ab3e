package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/sales-dashboard/auth"
	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/internal/utils"
	"github.com/jrsteele09/sales-dashboard/users"
	fakeuserrepo "github.com/jrsteele09/sales-dashboard/users/repofake"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testLogin    = "jdoe"
	testPassword = "segredo123"
)

type testFixture struct {
	userRepo *fakeuserrepo.FakeUserRepo
	service  *auth.Service
}

func setupTestFixture(t *testing.T, options ...auth.ServiceOption) *testFixture {
	t.Helper()

	ur := fakeuserrepo.NewFakeUserRepo()
	service, err := auth.NewService(ur, append([]auth.ServiceOption{auth.WithBcryptCost(bcrypt.MinCost)}, options...)...)
	require.NoError(t, err)
	return &testFixture{userRepo: ur, service: service}
}

func (f *testFixture) createUser(t *testing.T, login, secret string) int {
	t.Helper()

	id, err := f.userRepo.Insert(users.User{
		Name:       "John Doe",
		Login:      login,
		Secret:     secret,
		Role:       "gerente",
		StoreID:    7,
		Permission: utils.Ptr("3"),
	})
	require.NoError(t, err)
	return id
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := users.HashPasswordWithCost(password, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewService_RequiresRepo(t *testing.T) {
	_, err := auth.NewService(nil)
	require.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("bcrypt secret, right password", func(t *testing.T) {
		f := setupTestFixture(t)
		f.createUser(t, testLogin, hash(t, testPassword))

		u, err := f.service.Authenticate(ctx, testLogin, testPassword)
		require.NoError(t, err)
		require.Equal(t, testLogin, u.Login)
	})

	t.Run("bcrypt secret, wrong password", func(t *testing.T) {
		f := setupTestFixture(t)
		f.createUser(t, testLogin, hash(t, testPassword))

		_, err := f.service.Authenticate(ctx, testLogin, "wrong")
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
	})

	t.Run("bcrypt secret is never compared as plaintext", func(t *testing.T) {
		f := setupTestFixture(t)
		stored := hash(t, testPassword)
		f.createUser(t, testLogin, stored)

		_, err := f.service.Authenticate(ctx, testLogin, stored)
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
	})

	t.Run("unknown login", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Authenticate(ctx, "ghost", testPassword)
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
	})

	t.Run("login match is case sensitive", func(t *testing.T) {
		f := setupTestFixture(t)
		f.createUser(t, testLogin, testPassword)
		_, err := f.service.Authenticate(ctx, "JDOE", testPassword)
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
	})

	t.Run("plaintext secret", func(t *testing.T) {
		f := setupTestFixture(t)
		f.createUser(t, testLogin, testPassword)

		_, err := f.service.Authenticate(ctx, testLogin, testPassword)
		require.NoError(t, err)

		_, err = f.service.Authenticate(ctx, testLogin, testPassword+" ")
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
	})

	t.Run("plaintext disabled", func(t *testing.T) {
		f := setupTestFixture(t, auth.WithLegacyPolicy(auth.LegacyPlaintextPolicy{Allow: false}))
		f.createUser(t, testLogin, testPassword)

		_, err := f.service.Authenticate(ctx, testLogin, testPassword)
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
	})

	t.Run("plaintext rehashed on login", func(t *testing.T) {
		f := setupTestFixture(t, auth.WithLegacyPolicy(auth.LegacyPlaintextPolicy{Allow: true, RehashOnLogin: true}))
		id := f.createUser(t, testLogin, testPassword)

		_, err := f.service.Authenticate(ctx, testLogin, testPassword)
		require.NoError(t, err)

		stored, err := f.userRepo.GetByID(ctx, id)
		require.NoError(t, err)
		require.True(t, auth.IsAdaptiveHash(stored.Secret))

		// next login goes through bcrypt
		_, err = f.service.Authenticate(ctx, testLogin, testPassword)
		require.NoError(t, err)
	})

	t.Run("row without a secret never authenticates", func(t *testing.T) {
		f := setupTestFixture(t)
		f.createUser(t, testLogin, "")

		_, err := f.service.Authenticate(ctx, testLogin, "")
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
		_, err = f.service.Authenticate(ctx, testLogin, " ")
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
	})

	t.Run("blank input is rejected before lookup", func(t *testing.T) {
		f := setupTestFixture(t)
		f.createUser(t, testLogin, testPassword)
		f.userRepo.Err = errors.New("must not be called")

		_, err := f.service.Authenticate(ctx, "", testPassword)
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
		_, err = f.service.Authenticate(ctx, "  ", testPassword)
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
		_, err = f.service.Authenticate(ctx, testLogin, "")
		require.ErrorIs(t, err, dasherrors.ErrInvalidCredentials)
	})

	t.Run("store failure is a transport error", func(t *testing.T) {
		f := setupTestFixture(t)
		f.userRepo.Err = errors.New("connection reset")

		_, err := f.service.Authenticate(ctx, testLogin, testPassword)
		require.ErrorIs(t, err, dasherrors.ErrTransport)
		require.NotErrorIs(t, err, dasherrors.ErrInvalidCredentials)
	})
}

func TestVerifier(t *testing.T) {
	v := auth.Verifier{Legacy: auth.DefaultLegacyPolicy}

	ok, legacy := v.Verify(hash(t, "abc"), "abc")
	require.True(t, ok)
	require.False(t, legacy)

	ok, legacy = v.Verify("abc", "abc")
	require.True(t, ok)
	require.True(t, legacy)

	ok, _ = v.Verify("abc", "abd")
	require.False(t, ok)

	ok, legacy = v.Verify("", "")
	require.False(t, ok)
	require.False(t, legacy)

	ok, _ = v.Verify("   ", "   ")
	require.False(t, ok)

	require.True(t, auth.IsAdaptiveHash("$2b$10$x"))
	require.True(t, auth.IsAdaptiveHash("$2a$"))
	require.False(t, auth.IsAdaptiveHash("2b$10"))
}
