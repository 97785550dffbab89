package models

// Group is a set of users sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	Description string

	// CreatorID is the user who created the group. Only the creator may delete it.
	CreatorID string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// MembershipStatus tells whether a member still takes part in new splits.
type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

// Membership links a user to a group.
//
// Removing a member marks the membership inactive instead of deleting it, so
// the member's past expenses and payments keep counting toward balances.
type Membership struct {
	GroupID  string
	UserID   string
	Status   MembershipStatus
	JoinedAt int64
}

// Active reports whether the membership is active.
func (m Membership) Active() bool {
	return m.Status == MembershipActive
}

// ActiveMemberIDs returns the user IDs of the active memberships, in order.
func ActiveMemberIDs(memberships []*Membership) []string {
	var ids []string
	for _, m := range memberships {
		if m.Active() {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}
