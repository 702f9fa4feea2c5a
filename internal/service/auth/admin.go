package auth

import (
	"context"

	"github.com/alemt19/ats-sub001/internal/apperr"
	"github.com/alemt19/ats-sub001/internal/domain"
)

// ErrOwnRole is returned when an admin tries to change their own role.
var ErrOwnRole = apperr.New(apperr.KindUnprocessable, "you cannot change your own role")

// ListUsers pages through accounts for the admin area.
func (s Service) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	return s.users.ListUsers(ctx, filter)
}

// UpdateRole changes another user's role.
func (s Service) UpdateRole(ctx context.Context, actorID, userID, role string) (*domain.User, error) {
	if actorID == userID {
		return nil, ErrOwnRole
	}
	user, err := s.users.UpdateUserRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user role changed", "user_id", user.ID, "role", role, "actor", actorID)
	return user, nil
}
