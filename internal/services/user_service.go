package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blog/internal/authz"
	"blog/internal/models"
	"blog/internal/repositories"

	"github.com/rs/zerolog/log"
)

// UserDeletePolicy says what happens to a user's posts when the user is deleted.
type UserDeletePolicy string

const (
	// CascadePosts deletes the user's posts together with the user.
	CascadePosts UserDeletePolicy = "cascade"
	// RestrictPosts refuses to delete a user who still owns posts.
	RestrictPosts UserDeletePolicy = "restrict"
)

// ParseUserDeletePolicy validates a configured policy name.
func ParseUserDeletePolicy(s string) (UserDeletePolicy, error) {
	switch p := UserDeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case CascadePosts, RestrictPosts:
		return p, nil
	}
	return "", fmt.Errorf("unknown user delete policy %q", s)
}

// UserUpdate carries the caller-supplied fields of a profile update.
type UserUpdate struct {
	Name     string
	Username string
	Photo    string
	Password string
	Role     models.Role
}

// UserService handles profile reads, updates and account deletion.
type UserService struct {
	userRepo     repositories.UserRepository
	postRepo     repositories.PostRepository
	deletePolicy UserDeletePolicy
	bcryptCost   int
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, postRepo repositories.PostRepository, deletePolicy UserDeletePolicy, bcryptCost int) *UserService {
	if deletePolicy == "" {
		deletePolicy = CascadePosts
	}
	return &UserService{
		userRepo:     userRepo,
		postRepo:     postRepo,
		deletePolicy: deletePolicy,
		bcryptCost:   bcryptCost,
	}
}

// GetUserByID retrieves a single user.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateUser applies update to the stored user id on behalf of requester.
//
// Name, login name and photo are always replaced. The role only changes when
// the stored record is already ADMIN. The password is re-hashed only when a
// non-blank one is supplied.
func (s *UserService) UpdateUser(ctx context.Context, requester *authz.Requester, id string, update UserUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, models.ErrUnauthenticated
	}
	if requester.ID != user.ID && !requester.IsAdmin() {
		return nil, fmt.Errorf("user %s may not edit user %s: %w", requester.ID, user.ID, models.ErrForbidden)
	}

	user.Name = update.Name
	user.Username = update.Username
	user.Photo = update.Photo

	if update.Role != "" && user.Role.IsAdmin() {
		user.Role = update.Role
	}

	if strings.TrimSpace(update.Password) != "" {
		hashed, err := hashPassword(update.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user, handling their posts according to the delete policy.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}

	posts, err := s.postRepo.FindByOwnerID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list posts of user %s: %w", id, err)
	}

	if len(posts) > 0 {
		if s.deletePolicy == RestrictPosts {
			return fmt.Errorf("user %s still owns %d posts: %w", id, len(posts), models.ErrConflict)
		}
		if err := s.postRepo.DeleteByOwnerID(ctx, id); err != nil {
			return err
		}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	log.Info().Str("user_id", id).Int("posts_removed", len(posts)).Msg("user deleted")
	return nil
}
