package calculator

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

// Expense is an expense with the minimal information needed for balance
// calculations. Participants' amounts sum to Total.
type Expense struct {
	PayerID      string
	Total        decimal.Decimal
	Participants []Share
}

// Payment is money handed from one member to another to settle up.
type Payment struct {
	PayerID    string // who paid (debtor settling up)
	ReceiverID string // who received
	Amount     decimal.Decimal
}

// BalanceCalculator derives balances from a group's full expense and payment
// history. It never fails: inconsistencies are corrected or left for the
// aggregator to reject.
type BalanceCalculator struct {
	members  []string
	expenses []Expense
	payments []Payment
}

// NewBalanceCalculator creates a calculator over the given active members
// (in enumeration order) and history.
func NewBalanceCalculator(members []string, expenses []Expense, payments []Payment) *BalanceCalculator {
	return &BalanceCalculator{
		members:  members,
		expenses: expenses,
		payments: payments,
	}
}

// CalculateNetBalances computes every user's net position.
//
// Algorithm:
//   - For each expense: payer += total, each participant -= amount owed
//   - For each payment: payer += amount, receiver -= amount
//   - A residual within tolerance is debited from the first active member
//
// Every active member appears in the result, zero balances included.
func (c *BalanceCalculator) CalculateNetBalances() *NetBalances {
	balances := NewNetBalances()
	for _, m := range c.members {
		balances.Add(m, decimal.Zero)
	}

	for _, e := range c.expenses {
		balances.Add(e.PayerID, e.Total)
		for _, p := range e.Participants {
			balances.Add(p.UserID, p.Amount.Neg())
		}
	}

	// A payment reduces what the payer owes.
	for _, p := range c.payments {
		balances.Add(p.PayerID, p.Amount)
		balances.Add(p.ReceiverID, p.Amount.Neg())
	}

	c.ensureZeroSum(balances)
	balances.Round()
	return balances
}

func (c *BalanceCalculator) ensureZeroSum(balances *NetBalances) {
	total := balances.Sum()
	if total.IsZero() || balances.Len() == 0 {
		return
	}
	if !Negligible(total) {
		slog.Warn("Net balances do not sum to zero",
			"sum", total.String(),
			"members", len(c.members),
			"expenses", len(c.expenses),
			"payments", len(c.payments),
		)
		return
	}

	target := balances.Users()[0]
	if len(c.members) > 0 {
		target = c.members[0]
	}
	balances.Add(target, total.Neg())
	slog.Debug("Absorbed rounding residual", "user_id", target, "residual", total.String())
}

// CalculateDetailedBalances builds the pairwise direct-debt graph: each
// non-payer participant owes the payer their share, and payments reduce
// those debts. A payment larger than the existing debt turns the excess into
// a debt from the receiver back to the payer.
func (c *BalanceCalculator) CalculateDetailedBalances() *DebtGraph {
	debts := NewDebtGraph()

	for _, e := range c.expenses {
		for _, p := range e.Participants {
			if p.UserID == e.PayerID {
				continue
			}
			debts.Add(p.UserID, e.PayerID, p.Amount)
		}
	}

	for _, p := range c.payments {
		remaining := p.Amount
		if debt, ok := debts.Get(p.PayerID, p.ReceiverID); ok && debt.IsPositive() {
			settled := decimal.Min(debt, remaining)
			debts.Set(p.PayerID, p.ReceiverID, debt.Sub(settled))
			remaining = remaining.Sub(settled)
		}
		if remaining.IsPositive() {
			debts.Add(p.ReceiverID, p.PayerID, remaining)
		}
	}

	debts.Prune(notPositive)
	return debts
}
