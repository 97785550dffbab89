package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitgroup/internal/calculator"
)

// ShareResult is one participant's share of an expense.
type ShareResult struct {
	User   string `json:"user"`
	Amount string `json:"amount"`
}

// SplitResult is the split of one ledger expense.
type SplitResult struct {
	Description string        `json:"description,omitempty"`
	Payer       string        `json:"payer"`
	Total       string        `json:"total"`
	Method      string        `json:"method"`
	Shares      []ShareResult `json:"shares"`
}

// BalanceResult is a member's net position; positive means they are owed.
type BalanceResult struct {
	User   string `json:"user"`
	Amount string `json:"amount"`
}

// DebtResult is an amount From owes To.
type DebtResult struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// BalancesResult is the output of the balances command.
type BalancesResult struct {
	Net      []BalanceResult `json:"net"`
	Detailed []DebtResult    `json:"detailed"`
}

// SimplifyResult is the output of the simplify command.
type SimplifyResult struct {
	Debts           []DebtResult `json:"debts"`
	OriginalCount   int          `json:"original_count"`
	SimplifiedCount int          `json:"simplified_count"`
}

// SettleResult is the output of the settle command.
type SettleResult struct {
	Payments []DebtResult `json:"payments"`
}

// NewSplitCommand creates the split command.
func NewSplitCommand(opts *RootOptions) *cobra.Command {
	return ledgerCommand(opts, "split",
		"Show how each expense is split",
		"Apply every expense's split rule and print the amount each participant owes.",
		runSplit)
}

// NewBalancesCommand creates the balances command.
func NewBalancesCommand(opts *RootOptions) *cobra.Command {
	return ledgerCommand(opts, "balances",
		"Show net and detailed balances",
		"Print each member's net balance and the direct debts between members.",
		runBalances)
}

// NewSimplifyCommand creates the simplify command.
func NewSimplifyCommand(opts *RootOptions) *cobra.Command {
	return ledgerCommand(opts, "simplify",
		"Cancel opposing and circular debts",
		"Simplify the direct debts by cancelling opposing pairs and cycles.",
		runSimplify)
}

// NewSettleCommand creates the settle command.
func NewSettleCommand(opts *RootOptions) *cobra.Command {
	return ledgerCommand(opts, "settle",
		"Suggest payments that settle the group",
		"Compute a short list of payments that brings every member's balance to zero.",
		runSettle)
}

func runSplit(f *OutputFormatter, l *Ledger) error {
	expenses, _, err := l.Resolve()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid ledger", err)
	}

	results := make([]SplitResult, len(expenses))
	for i, e := range expenses {
		shares := make([]ShareResult, len(e.Expense.Participants))
		for j, s := range e.Expense.Participants {
			shares[j] = ShareResult{User: s.UserID, Amount: calculator.FormatAmount(s.Amount)}
		}
		results[i] = SplitResult{
			Description: e.Description,
			Payer:       e.Expense.PayerID,
			Total:       calculator.FormatAmount(e.Expense.Total),
			Method:      string(e.Method),
			Shares:      shares,
		}
	}

	return f.Write(results, func(w io.Writer) {
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s paid %s\t(%s)\n", r.Description, r.Payer, r.Total, r.Method)
			for _, s := range r.Shares {
				fmt.Fprintf(w, "\t%s\t%s\n", s.User, s.Amount)
			}
		}
	})
}

func runBalances(f *OutputFormatter, l *Ledger) error {
	calc, err := newCalculator(l)
	if err != nil {
		return err
	}
	net := calc.CalculateNetBalances()

	result := BalancesResult{
		Net:      make([]BalanceResult, 0, net.Len()),
		Detailed: debtsOf(calc.CalculateDetailedBalances()),
	}
	for _, u := range net.Users() {
		result.Net = append(result.Net, BalanceResult{User: u, Amount: calculator.FormatAmount(net.Get(u))})
	}

	return f.Write(result, func(w io.Writer) {
		fmt.Fprintln(w, "NET BALANCES")
		for _, b := range result.Net {
			fmt.Fprintf(w, "%s\t%s\n", b.User, b.Amount)
		}
		fmt.Fprintln(w, "\nDEBTS")
		writeDebts(w, result.Detailed)
	})
}

func runSimplify(f *OutputFormatter, l *Ledger) error {
	calc, err := newCalculator(l)
	if err != nil {
		return err
	}
	detailed := calc.CalculateDetailedBalances()
	simplified := calculator.SimplifyTransactions(detailed)

	result := SimplifyResult{
		Debts:           debtsOf(simplified),
		OriginalCount:   detailed.Len(),
		SimplifiedCount: simplified.Len(),
	}
	return f.Write(result, func(w io.Writer) {
		writeDebts(w, result.Debts)
		fmt.Fprintf(w, "\n%d debts simplified to %d\n", result.OriginalCount, result.SimplifiedCount)
	})
}

func runSettle(f *OutputFormatter, l *Ledger) error {
	expenses, payments, err := l.Resolve()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid ledger", err)
	}

	report, err := calculator.Settle(l.Members, calcExpenses(expenses), payments)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to settle ledger", err)
	}

	result := SettleResult{Payments: make([]DebtResult, len(report.Payments))}
	for i, p := range report.Payments {
		result.Payments[i] = DebtResult{From: p.PayerID, To: p.ReceiverID, Amount: calculator.FormatAmount(p.Amount)}
	}
	return f.Write(result, func(w io.Writer) {
		if len(result.Payments) == 0 {
			fmt.Fprintln(w, "All settled up.")
			return
		}
		for _, p := range result.Payments {
			fmt.Fprintf(w, "%s pays %s\t%s\n", p.From, p.To, p.Amount)
		}
	})
}

func newCalculator(l *Ledger) (*calculator.BalanceCalculator, error) {
	expenses, payments, err := l.Resolve()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid ledger", err)
	}
	return calculator.NewBalanceCalculator(l.Members, calcExpenses(expenses), payments), nil
}

func calcExpenses(in []SplitExpense) []calculator.Expense {
	out := make([]calculator.Expense, len(in))
	for i, e := range in {
		out[i] = e.Expense
	}
	return out
}

func debtsOf(g *calculator.DebtGraph) []DebtResult {
	edges := g.Edges()
	out := make([]DebtResult, len(edges))
	for i, e := range edges {
		out[i] = DebtResult{From: e.From, To: e.To, Amount: calculator.FormatAmount(e.Amount)}
	}
	return out
}

func writeDebts(w io.Writer, debts []DebtResult) {
	if len(debts) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	for _, d := range debts {
		fmt.Fprintf(w, "%s owes %s\t%s\n", d.From, d.To, d.Amount)
	}
}
