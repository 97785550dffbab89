package calculator

import (
	"fmt"
	"log/slog"
)

// Report is everything computed for one group in one pass.
type Report struct {
	// NetBalances as computed from history, after residual absorption.
	NetBalances *NetBalances
	// DetailedBalances is the direct-debt graph with negligible edges removed.
	DetailedBalances *DebtGraph
	// SimplifiedGraph is the aggregated graph after transaction simplification.
	SimplifiedGraph *DebtGraph
	// Payments is the suggested settlement plan.
	Payments []SuggestedPayment
}

// Settle runs the whole pipeline over a consistent snapshot of a group:
// net and detailed balances, aggregation, simplification, optimization.
func Settle(members []string, expenses []Expense, payments []Payment) (*Report, error) {
	calc := NewBalanceCalculator(members, expenses, payments)
	net := calc.CalculateNetBalances()
	detailed := calc.CalculateDetailedBalances()

	agg := NewBalanceAggregator(net, detailed)
	aggregated, err := agg.Aggregate()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate balances: %w", err)
	}

	simplified := SimplifyTransactions(aggregated)
	plan := GenerateOptimizedPayments(simplified)

	slog.Debug("Settlement computed",
		"members", len(members),
		"expenses", len(expenses),
		"payments", len(payments),
		"detailed_edges", detailed.Len(),
		"simplified_edges", simplified.Len(),
		"suggested_payments", len(plan),
	)

	return &Report{
		NetBalances:      agg.NetBalances(),
		DetailedBalances: agg.Detailed(),
		SimplifiedGraph:  simplified,
		Payments:         plan,
	}, nil
}
