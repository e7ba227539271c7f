package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/pkg/auth"
)

type RegisterCommand struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Phone       string
	DateOfBirth *time.Time
	Role        domain.Role
}

type AuthService struct {
	users      UserRepository
	jwtManager *auth.JWTManager
	log        *zap.Logger
}

func NewAuthService(users UserRepository, jwtManager *auth.JWTManager, log *zap.Logger) *AuthService {
	return &AuthService{users: users, jwtManager: jwtManager, log: log}
}

// Register creates an account. Secretaries start with no delegation; their
// doctor assignment always goes through the application or direct-assign
// flow afterwards.
func (s *AuthService) Register(ctx context.Context, cmd RegisterCommand) (*domain.User, error) {
	var missing []string
	if cmd.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if cmd.LastName == "" {
		missing = append(missing, "last_name")
	}
	if cmd.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	if !cmd.Role.IsValid() || cmd.Role == domain.RoleAdmin {
		return nil, &ValidationError{Fields: []string{"role"}}
	}
	if err := validatePasswordStrength(cmd.Password); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:            email,
		PasswordHash:     string(hash),
		FirstName:        cmd.FirstName,
		LastName:         cmd.LastName,
		Phone:            cmd.Phone,
		DateOfBirth:      cmd.DateOfBirth,
		Role:             cmd.Role,
		DelegationStatus: domain.DelegationNone,
		IsActive:         true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*domain.TokenPair, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Burn a hash on miss so response time does not reveal whether the
		// email exists.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("failed login attempt",
			zap.String("email", email),
			zap.String("ip", ip),
		)
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.jwtManager.GenerateTokenPair(&domain.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", ip),
	)
	return pair, user, nil
}

// RefreshToken issues a new token pair given a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Re-validate the account is still active.
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.jwtManager.GenerateTokenPair(&domain.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
}

// ChangePassword updates a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user.PasswordHash = string(hash)
	return s.users.Update(ctx, user)
}

func validatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
