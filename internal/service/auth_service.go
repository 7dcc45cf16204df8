package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/domain"
	"github.com/spec-kit/parking-service/internal/repository"
	apperrors "github.com/spec-kit/parking-service/pkg/util"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
	maxFullNameLength = 100
	maxEmailLength    = 255
	// bcrypt refuses longer input.
	maxPasswordBytes = 72
)

// AuthService coordinates registration, login and logout flows.
type AuthService struct {
	store      repository.Store
	tokenMgr   *auth.TokenManager
	revoked    auth.RevocationStore
	bcryptCost int
	admin      config.AdminConfig
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	Store       repository.Store
	Revocations auth.RevocationStore
	Logger      *zap.Logger
}

// RegisterInput is the self-service sign-up payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Address  *string
}

// Session is an issued access token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	revoked := deps.Revocations
	if revoked == nil {
		revoked = auth.NewMemoryRevocationStore()
	}
	return &AuthService{
		store:      deps.Store,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		revoked:    revoked,
		bcryptCost: cfg.Auth.BcryptCost,
		admin:      cfg.Admin,
		logger:     logger,
	}
}

// Register creates a regular user account and logs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	input, err := normalizeRegisterInput(input)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Address:      input.Address,
		Role:         domain.RoleUser,
	}
	if err := s.createUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return s.issue(user)
}

// Login authenticates by username and password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.store.Repositories().Users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, translate(err, "user", username)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(user)
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.NewUnauthorized("invalid token")
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("user logged out", zap.String("user_id", claims.Subject))
	return nil
}

// EnsureAdmin creates the configured administrator when no admin exists.
// It is a no-op when an admin is present or no password is configured.
func (s *AuthService) EnsureAdmin(ctx context.Context) (*domain.User, error) {
	count, err := s.store.Repositories().Users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, translate(err, "user", "")
	}
	if count > 0 {
		return nil, nil
	}
	if s.admin.Password == "" {
		s.logger.Warn("no administrator exists and ADMIN_PASSWORD is empty; skipping bootstrap")
		return nil, nil
	}
	if len(s.admin.Password) > maxPasswordBytes {
		return nil, apperrors.NewValidationError("ADMIN_PASSWORD must be at most 72 bytes", map[string]any{"field": "ADMIN_PASSWORD"})
	}

	hash, err := auth.HashPassword(s.admin.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	admin := &domain.User{
		Username:     strings.TrimSpace(s.admin.Username),
		Email:        strings.ToLower(strings.TrimSpace(s.admin.Email)),
		PasswordHash: hash,
		FullName:     s.admin.FullName,
		Role:         domain.RoleAdmin,
	}
	if err := s.createUser(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.Info("administrator account created", zap.String("username", admin.Username))
	return admin, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Revocations exposes the revocation store for middleware usage.
func (s *AuthService) Revocations() auth.RevocationStore {
	return s.revoked
}

// createUser inserts the account, reporting a taken username or email as
// DuplicateIdentity whether it is caught up-front or by the unique index.
func (s *AuthService) createUser(ctx context.Context, user *domain.User) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Users.GetByUsername(ctx, user.Username); err == nil {
			return apperrors.NewDuplicateIdentity("username")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if _, err := repos.Users.GetByEmail(ctx, user.Email); err == nil {
			return apperrors.NewDuplicateIdentity("email")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return repos.Users.Create(ctx, user)
	})

	var dup *repository.DuplicateError
	if errors.As(err, &dup) {
		field := "username"
		if dup.Constraint == repository.ConstraintEmail {
			field = "email"
		}
		return apperrors.NewDuplicateIdentity(field)
	}
	return translate(err, "user", "")
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

func normalizeRegisterInput(input RegisterInput) (RegisterInput, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Address != nil {
		addr := strings.TrimSpace(*input.Address)
		if addr == "" {
			input.Address = nil
		} else {
			input.Address = &addr
		}
	}

	problems := map[string]any{}
	if n := utf8.RuneCountInString(input.Username); n < minUsernameLength || n > maxUsernameLength {
		problems["username"] = "must be between 3 and 50 characters"
	}
	switch {
	case !strings.Contains(input.Email, "@"):
		problems["email"] = "must be a valid email address"
	case utf8.RuneCountInString(input.Email) > maxEmailLength:
		problems["email"] = "must be at most 255 characters"
	}
	switch {
	case len(input.Password) < minPasswordLength:
		problems["password"] = "must be at least 6 characters"
	case len(input.Password) > maxPasswordBytes:
		problems["password"] = "must be at most 72 bytes"
	}
	switch {
	case input.FullName == "":
		problems["full_name"] = "is required"
	case utf8.RuneCountInString(input.FullName) > maxFullNameLength:
		problems["full_name"] = "must be at most 100 characters"
	}
	if len(problems) > 0 {
		return input, apperrors.NewValidationError("invalid registration", problems)
	}
	return input, nil
}
