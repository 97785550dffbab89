package calculator

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"
)

// BalanceAggregator validates a group's net balances and turns them into a
// simplified debtor -> creditor graph.
type BalanceAggregator struct {
	net       *NetBalances
	detailed  *DebtGraph
	tolerance decimal.Decimal
}

// NewBalanceAggregator copies and rounds both inputs; the caller's values are
// never modified.
func NewBalanceAggregator(net *NetBalances, detailed *DebtGraph) *BalanceAggregator {
	n := net.Clone()
	n.Round()
	d := detailed.Clone()
	d.Round()
	return &BalanceAggregator{net: n, detailed: d, tolerance: Tolerance}
}

// Aggregate validates the zero-sum invariant, cleans the detailed balances
// and rebuilds a debt graph purely from net balances. The result has the
// same net effect as the detailed balances, not the same topology.
func (a *BalanceAggregator) Aggregate() (*DebtGraph, error) {
	if err := a.validateOverallBalance(); err != nil {
		return nil, err
	}
	a.handleRoundingDiscrepancies()
	return a.buildSimplifiedDebtGraph(), nil
}

// NetBalances returns the balances after discrepancy absorption.
func (a *BalanceAggregator) NetBalances() *NetBalances {
	return a.net.Clone()
}

// Detailed returns the detailed balances with negligible edges stripped.
func (a *BalanceAggregator) Detailed() *DebtGraph {
	return a.detailed.Clone()
}

func (a *BalanceAggregator) validateOverallBalance() error {
	total := a.net.Sum()
	if total.Abs().GreaterThan(a.tolerance) {
		slog.Error("Balance inconsistency", "sum", total.String())
		return fmt.Errorf("%w: difference %s", ErrBalanceInconsistent, total.String())
	}
	if total.IsZero() || a.net.Len() == 0 {
		return nil
	}

	user := a.net.Users()[0]
	a.net.Add(user, total.Neg())
	slog.Warn("Adjusted rounding discrepancy", "user_id", user, "discrepancy", total.String())
	return nil
}

func (a *BalanceAggregator) handleRoundingDiscrepancies() {
	a.detailed.Prune(func(amount decimal.Decimal) bool {
		return amount.Abs().LessThanOrEqual(a.tolerance)
	})
}

type party struct {
	user   string
	amount decimal.Decimal // magnitude
}

// sortedParties returns users whose balance satisfies keep, largest
// magnitude first. Ties keep insertion order.
func sortedParties(net *NetBalances, keep func(decimal.Decimal) bool) []party {
	var out []party
	for _, u := range net.Users() {
		if b := net.Get(u); keep(b) {
			out = append(out, party{user: u, amount: b.Abs()})
		}
	}
	slices.SortStableFunc(out, func(x, y party) int {
		return cmp.Compare(0, x.amount.Cmp(y.amount))
	})
	return out
}

func (a *BalanceAggregator) buildSimplifiedDebtGraph() *DebtGraph {
	graph := NewDebtGraph()

	debtors := sortedParties(a.net, decimal.Decimal.IsNegative)
	creditors := sortedParties(a.net, decimal.Decimal.IsPositive)

	for _, d := range debtors {
		debt := d.amount
		for i := range creditors {
			c := &creditors[i]
			if debt.LessThanOrEqual(a.tolerance) {
				break
			}
			if c.amount.LessThanOrEqual(a.tolerance) || c.user == d.user {
				continue
			}

			payment := decimal.Min(debt, c.amount)
			graph.Add(d.user, c.user, payment)
			debt = debt.Sub(payment)
			c.amount = c.amount.Sub(payment)
		}
	}

	graph.Prune(func(amount decimal.Decimal) bool {
		return amount.LessThanOrEqual(a.tolerance)
	})
	return graph
}
