package calculator

import (
	"container/heap"

	"github.com/shopspring/decimal"
)

// SuggestedPayment is one payment of a settlement plan.
type SuggestedPayment struct {
	PayerID    string
	ReceiverID string
	Amount     decimal.Decimal
}

type heapEntry struct {
	user   string
	amount decimal.Decimal // magnitude, always > tolerance
	seq    int             // first appearance in the graph, breaks ties
}

// magnitudeHeap is a max-heap on amount.
type magnitudeHeap []heapEntry

func (h magnitudeHeap) Len() int { return len(h) }

func (h magnitudeHeap) Less(i, j int) bool {
	if c := h[i].amount.Cmp(h[j].amount); c != 0 {
		return c > 0
	}
	return h[i].seq < h[j].seq
}

func (h magnitudeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *magnitudeHeap) Push(x any) { *h = append(*h, x.(heapEntry)) }

func (h *magnitudeHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// SettlementOptimizer turns a debt graph into a short list of payments that
// settles every balance in it.
type SettlementOptimizer struct {
	tolerance decimal.Decimal
}

// NewSettlementOptimizer creates an optimizer using the package Tolerance.
func NewSettlementOptimizer() *SettlementOptimizer {
	return &SettlementOptimizer{tolerance: Tolerance}
}

// GenerateOptimizedPayments is shorthand for
// NewSettlementOptimizer().Optimize(g).
func GenerateOptimizedPayments(g *DebtGraph) []SuggestedPayment {
	return NewSettlementOptimizer().Optimize(g)
}

// Optimize matches the largest debtor with the largest creditor until one
// side runs out. Every payment clears at least one party, so the plan never
// has more than debtors + creditors - 1 entries.
func (o *SettlementOptimizer) Optimize(g *DebtGraph) []SuggestedPayment {
	balances := NewNetBalances()
	for _, e := range g.Edges() {
		balances.Add(e.From, e.Amount.Neg())
		balances.Add(e.To, e.Amount)
	}

	debtors := &magnitudeHeap{}
	creditors := &magnitudeHeap{}
	for seq, u := range balances.Users() {
		b := balances.Get(u)
		switch {
		case b.GreaterThan(o.tolerance):
			*creditors = append(*creditors, heapEntry{user: u, amount: b, seq: seq})
		case b.LessThan(o.tolerance.Neg()):
			*debtors = append(*debtors, heapEntry{user: u, amount: b.Abs(), seq: seq})
		}
	}
	heap.Init(debtors)
	heap.Init(creditors)

	var payments []SuggestedPayment
	for debtors.Len() > 0 && creditors.Len() > 0 {
		debtor := heap.Pop(debtors).(heapEntry)
		creditor := heap.Pop(creditors).(heapEntry)

		amount := decimal.Min(debtor.amount, creditor.amount)
		if amount.LessThanOrEqual(o.tolerance) {
			// Unreachable while both heaps hold amounts above tolerance.
			break
		}

		payments = append(payments, SuggestedPayment{
			PayerID:    debtor.user,
			ReceiverID: creditor.user,
			Amount:     Round(amount),
		})

		if rest := debtor.amount.Sub(amount); rest.GreaterThan(o.tolerance) {
			debtor.amount = rest
			heap.Push(debtors, debtor)
		}
		if rest := creditor.amount.Sub(amount); rest.GreaterThan(o.tolerance) {
			creditor.amount = rest
			heap.Push(creditors, creditor)
		}
	}
	return payments
}

// PaymentsGraph converts a plan back into a debt graph, payer -> receiver.
func PaymentsGraph(payments []SuggestedPayment) *DebtGraph {
	g := NewDebtGraph()
	for _, p := range payments {
		g.Add(p.PayerID, p.ReceiverID, p.Amount)
	}
	return g
}
