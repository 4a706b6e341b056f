package services

import (
	"context"
	"errors"
	"fmt"

	"blog/internal/authz"
	"blog/internal/models"
	"blog/internal/repositories"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	User  *models.User
	Token string
}

// AuthService handles registration, login and token resolution.
type AuthService struct {
	userRepo   repositories.UserRepository
	tokens     *TokenService
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, tokens *TokenService, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// RegisterUser hashes the password, defaults the role and stores a new user.
// A taken login name fails with ErrAlreadyExists and stores nothing.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	existing, err := s.userRepo.GetByUsername(ctx, user.Username)
	if err == nil && existing != nil {
		return fmt.Errorf("username '%s' %w", user.Username, models.ErrAlreadyExists)
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	if user.Role == "" {
		user.Role = models.RoleUser
	}

	hashedPassword, err := hashPassword(user.Password, s.bcryptCost)
	if err != nil {
		return err
	}
	user.Password = hashedPassword

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	log.Info().Str("user_id", user.ID).Str("role", user.Role.String()).Msg("user registered")
	return nil
}

// LoginUser checks credentials and issues a token. Unknown users and wrong
// passwords both fail with ErrInvalidCredentials.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token}, nil
}

// ResolveRequester turns a bearer token into the identity of a stored user.
// The role comes from the stored record, not the token claim.
func (s *AuthService) ResolveRequester(ctx context.Context, tokenString string) (*authz.Requester, error) {
	username, err := s.tokens.ExtractSubject(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("token subject %s no longer exists: %w", username, models.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}

	return &authz.Requester{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
