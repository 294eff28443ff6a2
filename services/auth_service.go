package services

import (
	"context"
	"errors"

	apperrors "attire-service/common/errors"
	"attire-service/models"
	"attire-service/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var ErrWeakPassword = errors.New("new password must be at least 6 characters")

type AuthService struct {
	credentials repository.CredentialRepository
	tokens      *TokenService
	logger      *zap.Logger
}

func NewAuthService(credentials repository.CredentialRepository, tokens *TokenService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{credentials: credentials, tokens: tokens, logger: logger}
}

// EnsureCredential stores the initial login on first start. An existing
// row is left alone so a changed password survives restarts.
func (s *AuthService) EnsureCredential(ctx context.Context, username, password string) error {
	_, err := s.credentials.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrCredentialNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.logger.Info("seeding shop credential", zap.String("username", username))
	return s.credentials.Save(ctx, &models.Credential{Username: username, PasswordHash: string(hash)})
}

// Login returns a bearer token when username and password match.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	credential, err := s.credentials.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return "", apperrors.ErrInvalidCredentials
		}
		return "", apperrors.Internal("Failed to check credentials", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login rejected", zap.String("username", username))
		return "", apperrors.ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(username)
	if err != nil {
		return "", apperrors.Internal("Failed to issue token", err)
	}
	return token, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.BadRequest(ErrWeakPassword)
	}
	credential, err := s.credentials.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return apperrors.ErrInvalidCredentials
		}
		return apperrors.Internal("Failed to check credentials", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(oldPassword)); err != nil {
		return apperrors.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal("Failed to hash password", err)
	}
	credential.PasswordHash = string(hash)
	if err := s.credentials.Save(ctx, credential); err != nil {
		return apperrors.Internal("Failed to save password", err)
	}
	s.logger.Info("password changed", zap.String("username", username))
	return nil
}

// Authenticate checks a bearer token and returns its username.
func (s *AuthService) Authenticate(token string) (string, error) {
	return s.tokens.Validate(token)
}
