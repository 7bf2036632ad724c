package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"imagevault/internal/auth"
	apperrors "imagevault/internal/errors"
	"imagevault/internal/metrics"
	"imagevault/internal/model"
	"imagevault/internal/repository"
)

// Auth operations, used as metric labels.
const (
	opRegister = "register"
	opLogin    = "login"
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	AccessToken string
	User        *model.User
}

// AuthService handles registration, login and bearer token resolution.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	// Authenticate resolves a raw bearer token to its user. Every failure
	// reads as apperrors.ErrUnauthorized.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenTTL   time.Duration
	logger     logrus.FieldLogger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	tokenTTL time.Duration,
	logger logrus.FieldLogger,
	m *metrics.Metrics,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenTTL:   tokenTTL,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

// Register creates a new user and signs them in.
func (s *authService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	existing, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		s.metrics.AuthAttempt(opRegister, metrics.ResultError)
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if existing != nil {
		s.metrics.AuthAttempt(opRegister, metrics.ResultRejected)
		return nil, apperrors.ErrUserAlreadyExists
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		s.metrics.AuthAttempt(opRegister, metrics.ResultError)
		return nil, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			s.metrics.AuthAttempt(opRegister, metrics.ResultRejected)
			return nil, err
		}
		s.metrics.AuthAttempt(opRegister, metrics.ResultError)
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.IssueToken(user.Username, s.tokenTTL)
	if err != nil {
		s.metrics.AuthAttempt(opRegister, metrics.ResultError)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.AuthAttempt(opRegister, metrics.ResultSuccess)
	s.logger.WithField("user_id", user.ID).Info("user registered")
	return &AuthResult{AccessToken: token, User: user}, nil
}

// Login verifies credentials. Unknown usernames and wrong passwords fail
// identically.
func (s *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.metrics.AuthAttempt(opLogin, metrics.ResultError)
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || !auth.VerifyPassword(password, user.PasswordHash) {
		s.metrics.AuthAttempt(opLogin, metrics.ResultRejected)
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.IssueToken(user.Username, s.tokenTTL)
	if err != nil {
		s.metrics.AuthAttempt(opLogin, metrics.ResultError)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.AuthAttempt(opLogin, metrics.ResultSuccess)
	return &AuthResult{AccessToken: token, User: user}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	username, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.logger.WithError(err).Error("resolve token subject")
		return nil, apperrors.ErrUnauthorized
	}
	if user == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}
