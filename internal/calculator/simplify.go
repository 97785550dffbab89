package calculator

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionSimplifier reduces a debt graph by cancelling opposing debts and
// removing debt cycles, which represent no net transfer of money.
type TransactionSimplifier struct {
	tolerance decimal.Decimal
}

// NewTransactionSimplifier creates a simplifier using the package Tolerance.
func NewTransactionSimplifier() *TransactionSimplifier {
	return &TransactionSimplifier{tolerance: Tolerance}
}

// SimplifyTransactions is shorthand for NewTransactionSimplifier().Simplify(g).
func SimplifyTransactions(g *DebtGraph) *DebtGraph {
	return NewTransactionSimplifier().Simplify(g)
}

// Simplify returns a reduced copy of g; g itself is left untouched. The
// result contains no opposing pairs and no cycles, so simplifying it again
// returns an identical graph.
func (s *TransactionSimplifier) Simplify(g *DebtGraph) *DebtGraph {
	graph := g.Clone()
	s.removeDirectOpposingDebts(graph)
	for s.removeCycles(graph) {
	}
	s.cleanZeroDebts(graph)
	return graph
}

func (s *TransactionSimplifier) significant(graph *DebtGraph, from, to string) bool {
	amount, ok := graph.Get(from, to)
	return ok && amount.GreaterThan(s.tolerance)
}

// removeDirectOpposingDebts replaces every pair u->v, v->u with one edge in
// the direction of the larger debt.
func (s *TransactionSimplifier) removeDirectOpposingDebts(graph *DebtGraph) {
	for _, u := range graph.Debtors() {
		for _, v := range graph.Creditors(u) {
			if u == v || !s.significant(graph, u, v) || !s.significant(graph, v, u) {
				continue
			}
			uv, _ := graph.Get(u, v)
			vu, _ := graph.Get(v, u)
			if uv.GreaterThan(vu) {
				graph.Set(u, v, uv.Sub(vu))
				graph.Delete(v, u)
			} else {
				graph.Set(v, u, vu.Sub(uv))
				graph.Delete(u, v)
			}
		}
	}
}

// frame is one DFS activation: the node, a snapshot of its creditors and the
// index of the next creditor to follow.
type frame struct {
	node      string
	neighbors []string
	next      int
}

// removeCycles runs one depth-first pass over every node and reduces each
// cycle it meets by the cycle's smallest edge. It reports whether any edge
// was reduced.
func (s *TransactionSimplifier) removeCycles(graph *DebtGraph) bool {
	visited := make(map[string]bool)
	reduced := false

	for _, start := range graph.Debtors() {
		if visited[start] {
			continue
		}

		onStack := make(map[string]int) // node -> index in stack
		stack := []*frame{{node: start, neighbors: graph.Creditors(start)}}
		visited[start] = true
		onStack[start] = 0

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.next >= len(top.neighbors) {
				delete(onStack, top.node)
				stack = stack[:len(stack)-1]
				continue
			}

			v := top.neighbors[top.next]
			top.next++
			if !s.significant(graph, top.node, v) {
				continue
			}

			if pos, ok := onStack[v]; ok {
				if s.reduceCycle(graph, stack[pos:]) {
					reduced = true
				}
				continue
			}
			if visited[v] {
				continue
			}

			visited[v] = true
			onStack[v] = len(stack)
			stack = append(stack, &frame{node: v, neighbors: graph.Creditors(v)})
		}
	}
	return reduced
}

// reduceCycle subtracts the smallest edge weight from every edge of the
// cycle path[0] -> path[1] -> ... -> path[n-1] -> path[0].
func (s *TransactionSimplifier) reduceCycle(graph *DebtGraph, path []*frame) bool {
	n := len(path)
	edge := func(i int) (string, string) {
		return path[i].node, path[(i+1)%n].node
	}

	minDebt, _ := graph.Get(edge(0))
	for i := 1; i < n; i++ {
		if w, _ := graph.Get(edge(i)); w.LessThan(minDebt) {
			minDebt = w
		}
	}
	if !minDebt.IsPositive() {
		return false
	}

	for i := 0; i < n; i++ {
		from, to := edge(i)
		w, _ := graph.Get(from, to)
		graph.Set(from, to, w.Sub(minDebt))
	}

	nodes := make([]string, n+1)
	for i, f := range path {
		nodes[i] = f.node
	}
	nodes[n] = path[0].node
	slog.Debug("Removed debt cycle", "cycle", strings.Join(nodes, " -> "), "amount", minDebt.String())
	return true
}

func (s *TransactionSimplifier) cleanZeroDebts(graph *DebtGraph) {
	graph.Prune(func(amount decimal.Decimal) bool {
		return amount.LessThanOrEqual(s.tolerance)
	})
}
