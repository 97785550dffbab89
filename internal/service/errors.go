package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitgroup/internal/auth"
	"github.com/mmynk/splitgroup/internal/cache"
	"github.com/mmynk/splitgroup/internal/calculator"
	"github.com/mmynk/splitgroup/internal/middleware"
	"github.com/mmynk/splitgroup/internal/models"
	"github.com/mmynk/splitgroup/internal/storage"
)

var (
	// ErrPermissionDenied marks an authenticated caller acting outside their role.
	ErrPermissionDenied = errors.New("permission denied")

	ErrNotCreator      = fmt.Errorf("%w: only the group creator can do this", ErrPermissionDenied)
	ErrNotPayer        = fmt.Errorf("%w: only the payer can do this", ErrPermissionDenied)
	ErrInactiveMember  = fmt.Errorf("%w: you are no longer an active member of this group", ErrPermissionDenied)
	ErrAlreadyMember   = errors.New("user is already an active member of the group")
	ErrGroupNotVisible = fmt.Errorf("group not found or you do not have access to it: %w", storage.ErrNotFound)
)

// invalidArgument wraps calculator.ErrInvalidInput so all input errors share one kind.
func invalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", calculator.ErrInvalidInput, msg)
}

// connectError maps domain errors to Connect codes. Errors that already carry
// a code pass through.
func connectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, calculator.ErrInvalidInput):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ErrPermissionDenied):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, ErrAlreadyMember):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		// calculator.ErrInconsistent and storage failures alike.
		return connect.NewError(connect.CodeInternal, err)
	}
}

// callerID returns the authenticated user set by the auth interceptor.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// callerMembership resolves the caller's membership in a group. Groups the
// caller never joined are reported as not found.
func callerMembership(ctx context.Context, groups storage.GroupStore, groupID string) (*models.Membership, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}

	m, err := groups.GetMembership(ctx, groupID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrGroupNotVisible)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// activeCaller is callerMembership restricted to active members, for writes.
func activeCaller(ctx context.Context, groups storage.GroupStore, groupID string) (*models.Membership, error) {
	m, err := callerMembership(ctx, groups, groupID)
	if err != nil {
		return nil, err
	}
	if !m.Active() {
		return nil, ErrInactiveMember
	}
	return m, nil
}

// requireActiveMembers checks that every user is an active member.
func requireActiveMembers(memberships []*models.Membership, userIDs ...string) error {
	active := make(map[string]bool, len(memberships))
	for _, id := range models.ActiveMemberIDs(memberships) {
		active[id] = true
	}
	for _, id := range userIDs {
		if !active[id] {
			return fmt.Errorf("%w: %s", calculator.ErrUnknownParticipant, id)
		}
	}
	return nil
}

// invalidateBalances drops the cached report of a group after a write. A
// failure only leaves the entry to expire by TTL.
func invalidateBalances(ctx context.Context, c cache.Cache, groupID string) {
	if err := c.Invalidate(ctx, groupID); err != nil {
		slog.Warn("Failed to invalidate balance cache", "group_id", groupID, "error", err)
	}
}
