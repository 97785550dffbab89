package models

import "github.com/shopspring/decimal"

// Expense is a purchase paid by one member and split among participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	GroupID string

	// PayerID is the user who paid the full amount.
	PayerID string

	Description string

	// TotalAmount equals the sum of the participants' AmountOwed.
	TotalAmount decimal.Decimal

	// Currency is an ISO code carried for display only. Amounts are never converted.
	Currency string

	// ExpenseDate is the Unix timestamp of the purchase.
	ExpenseDate int64

	// SplitMethod records how the shares were computed (e.g. "equally").
	SplitMethod string

	// Participants are the shares in the order the split produced them.
	Participants []ExpenseParticipant

	CreatedAt int64
}

// ExpenseParticipant is one user's share of an expense.
type ExpenseParticipant struct {
	UserID     string
	AmountOwed decimal.Decimal
}

// Share returns the participant's share for the given user, if any.
func (e *Expense) Share(userID string) (decimal.Decimal, bool) {
	for _, p := range e.Participants {
		if p.UserID == userID {
			return p.AmountOwed, true
		}
	}
	return decimal.Zero, false
}
