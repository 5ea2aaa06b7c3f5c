package services

import (
	"context"
	"errors"
	"strings"

	"fintrack/internal/models"
	"fintrack/internal/repositories"
)

// ProfileUpdate holds the optional changes of a user profile.
type ProfileUpdate struct {
	Username   *string
	FirstName  *string
	LastName   *string
	MiddleName *string
}

// UserService handles profile reads and updates.
type UserService struct {
	users repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// Profile returns the user with the given ID.
func (s *UserService) Profile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, readError("user", err)
	}
	return user, nil
}

// Update changes the profile of targetID. Users may only update themselves.
func (s *UserService) Update(ctx context.Context, callerID, targetID string, in ProfileUpdate) (*models.User, error) {
	if callerID != targetID {
		return nil, forbidden("you can only update your own account")
	}

	user, err := s.Profile(ctx, targetID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.MiddleName != nil {
		fields["middle_name"] = *in.MiddleName
	}
	if in.Username != nil && !strings.EqualFold(*in.Username, user.Username) {
		if _, err := s.users.GetByUsername(ctx, *in.Username); err == nil {
			return nil, conflict("username is already taken")
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, internal("failed to check availability", err)
		}
		fields["username"] = *in.Username
	}
	if len(fields) == 0 {
		return user, nil
	}

	if err := s.users.Update(ctx, targetID, fields); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict("username is already taken")
		}
		return nil, writeError("user", err)
	}
	return s.Profile(ctx, targetID)
}
