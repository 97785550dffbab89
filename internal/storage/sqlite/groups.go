package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitgroup/internal/models"
)

// CreateGroup persists a new group and adds its creator as an active member.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, description, creator_id, created_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.Name, group.Description, group.CreatorID, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO group_memberships (group_id, user_id, status, joined_at) VALUES (?, ?, ?, ?)",
		group.ID, group.CreatorID, models.MembershipActive, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, creator_id, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatorID, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// ListGroupsForUser retrieves the groups the user is an active member of, oldest first.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.description, g.creator_id, g.created_at
		 FROM groups g
		 JOIN group_memberships m ON m.group_id = g.id
		 WHERE m.user_id = ? AND m.status = ?
		 ORDER BY g.created_at, g.rowid`,
		userID, models.MembershipActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatorID, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// DeleteGroup removes a group. Memberships, expenses and payments cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return checkAffected(res, "group", groupID)
}

// AddMember makes the user an active member of the group.
// An inactive membership is reactivated and keeps its original join time.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_memberships (group_id, user_id, status, joined_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (group_id, user_id) DO UPDATE SET status = excluded.status`,
		groupID, userID, models.MembershipActive, time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return s.GetMembership(ctx, groupID, userID)
}

// SetMembershipStatus updates the status of an existing membership.
func (s *SQLiteStore) SetMembershipStatus(ctx context.Context, groupID, userID string, status models.MembershipStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE group_memberships SET status = ? WHERE group_id = ? AND user_id = ?",
		status, groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	return checkAffected(res, "membership", groupID+"/"+userID)
}

// GetMembership retrieves the membership of a user in a group.
func (s *SQLiteStore) GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx,
		"SELECT group_id, user_id, status, joined_at FROM group_memberships WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&m.GroupID, &m.UserID, &m.Status, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("membership", groupID+"/"+userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// ListMemberships retrieves all memberships of a group in join order.
func (s *SQLiteStore) ListMemberships(ctx context.Context, groupID string) ([]*models.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, user_id, status, joined_at FROM group_memberships
		 WHERE group_id = ? ORDER BY joined_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Status, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}
	return memberships, nil
}
