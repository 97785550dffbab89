// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitgroup/internal/models"
)

// ErrNotFound is returned (wrapped with the missing ID) when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for splitgroup storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	PaymentStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	// CreateGroup persists the group and makes its creator an active member.
	// The group.ID and CreatedAt fields are populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns the groups the user is an active member of.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// DeleteGroup removes the group with its memberships, expenses and payments.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember creates an active membership, reactivating an inactive one.
	AddMember(ctx context.Context, groupID, userID string) (*models.Membership, error)
	SetMembershipStatus(ctx context.Context, groupID, userID string, status models.MembershipStatus) error
	GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error)

	// ListMemberships returns every membership of the group in join order.
	ListMemberships(ctx context.Context, groupID string) ([]*models.Membership, error)
}

// ExpenseStore persists expenses and their participants.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// UpdateExpense replaces the expense fields and all of its participants.
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns the group's expenses in creation order.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
}

// PaymentStore persists payments between members.
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)

	// ListPaymentsByGroup returns the group's payments in creation order.
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error)
	DeletePayment(ctx context.Context, paymentID string) error
}
