package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/civichub/society-api/internal/core/domain"
	"github.com/civichub/society-api/internal/core/ports"
	"github.com/civichub/society-api/internal/metrics"
)

const titleWelcome = "Welcome"

// AuthService implements registration and login.
type AuthService struct {
	users         ports.UserRepository
	hasher        ports.PasswordHasher
	tokens        ports.TokenIssuer
	notifications ports.NotificationService
	log           zerolog.Logger
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log}
}

// WithWelcome makes Register leave a SYSTEM notification for each new resident.
func (s *AuthService) WithWelcome(notifications ports.NotificationService) *AuthService {
	s.notifications = notifications
	return s
}

// Register creates a resident account. Admin accounts are only created by EnsureAdmin.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	user, err := s.createUser(ctx, in, domain.RoleResident)
	if err != nil {
		return nil, err
	}

	// The account exists at this point; a failed welcome must not undo it.
	if s.notifications != nil {
		message := fmt.Sprintf("Hi %s, you can now raise complaints and follow their progress here.", user.Name)
		if _, err := s.notifications.Notify(ctx, user.ID, domain.CategorySystem, titleWelcome, message); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to send welcome notification")
		}
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless a user with that
// email already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	switch {
	case err == nil:
		if existing.Role != domain.RoleAdmin {
			s.log.Warn().Str("email", existing.Email).Msg("bootstrap admin email belongs to a non-admin account")
		}
		return existing, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	user, err := s.createUser(ctx, ports.RegisterInput{Name: name, Email: email, Password: password}, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("bootstrap admin created")
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, in ports.RegisterInput, role domain.Role) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)

	switch {
	case name == "":
		return nil, domain.ValidationError("name is required")
	case email == "" || !strings.Contains(email, "@"):
		return nil, domain.ValidationError("a valid email is required")
	case in.Password == "":
		return nil, domain.ValidationError("password is required")
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		UnitNumber:   strings.TrimSpace(in.UnitNumber),
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role.String()).Msg("user registered")
	return created, nil
}

// Login verifies credentials and issues an identity token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
		}
		return nil, err
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("wrong_password").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
