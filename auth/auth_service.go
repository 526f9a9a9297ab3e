package auth

import (
	"context"
	"strings"

	dasherrors "github.com/jrsteele09/sales-dashboard/internal/errors"
	"github.com/jrsteele09/sales-dashboard/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator resolves a login/password pair to a credential record.
type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (*users.User, error)
}

// Service checks credentials against the credential store.
type Service struct {
	users      users.UserRepo
	verifier   Verifier
	bcryptCost int
}

var _ Authenticator = (*Service)(nil)

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithLegacyPolicy sets how non-hashed secrets are treated
func WithLegacyPolicy(policy LegacyPlaintextPolicy) ServiceOption {
	return func(s *Service) {
		s.verifier.Legacy = policy
	}
}

// WithBcryptCost sets the cost used when rehashing legacy secrets
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func NewService(userRepo users.UserRepo, options ...ServiceOption) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[auth.NewService] users repo is required")
	}
	s := &Service{
		users:      userRepo,
		verifier:   Verifier{Legacy: DefaultLegacyPolicy},
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Verifier returns the secret verifier in use, shared with password changes.
func (s *Service) Verifier() Verifier {
	return s.verifier
}

// Authenticate returns the record for login when password matches.
// Blank input, unknown logins, rows without a secret and wrong passwords all
// yield ErrInvalidCredentials; store failures are wrapped in ErrTransport.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*users.User, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return nil, dasherrors.ErrInvalidCredentials
	}
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, dasherrors.Transport(err, "lookup login")
	}
	if user == nil || !user.HasSecret() {
		return nil, dasherrors.ErrInvalidCredentials
	}

	ok, legacy := s.verifier.Verify(user.Secret, password)
	if !ok {
		return nil, dasherrors.ErrInvalidCredentials
	}

	if legacy && s.verifier.Legacy.RehashOnLogin {
		s.rehash(ctx, user, password)
	}
	return user, nil
}

// rehash replaces a plaintext secret with a bcrypt hash. Failures only log,
// the login itself already succeeded.
func (s *Service) rehash(ctx context.Context, user *users.User, password string) {
	hash, err := users.HashPasswordWithCost(password, s.bcryptCost)
	if err != nil {
		log.Err(err).Int("user_id", user.ID).Msg("Failed to hash legacy secret")
		return
	}
	if err := s.users.SetSecret(ctx, user.ID, hash); err != nil {
		log.Err(err).Int("user_id", user.ID).Msg("Failed to store rehashed secret")
		return
	}
	user.Secret = hash
	log.Info().Int("user_id", user.ID).Msg("Legacy plaintext secret rehashed")
}
