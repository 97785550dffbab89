package calculator

import (
	"slices"

	"github.com/shopspring/decimal"
)

// NetBalances maps users to signed amounts. Positive means the user is owed
// money, negative means the user owes money. Iteration follows insertion
// order.
type NetBalances struct {
	users   []string
	amounts map[string]decimal.Decimal
}

// NewNetBalances creates an empty balance sheet.
func NewNetBalances() *NetBalances {
	return &NetBalances{amounts: make(map[string]decimal.Decimal)}
}

// Add adds delta to the user's balance, registering the user if needed.
func (b *NetBalances) Add(user string, delta decimal.Decimal) {
	cur, ok := b.amounts[user]
	if !ok {
		b.users = append(b.users, user)
	}
	b.amounts[user] = cur.Add(delta)
}

// Set overwrites the user's balance.
func (b *NetBalances) Set(user string, amount decimal.Decimal) {
	if _, ok := b.amounts[user]; !ok {
		b.users = append(b.users, user)
	}
	b.amounts[user] = amount
}

// Get returns the user's balance, zero for unknown users.
func (b *NetBalances) Get(user string) decimal.Decimal {
	return b.amounts[user]
}

// Has reports whether the user is present.
func (b *NetBalances) Has(user string) bool {
	_, ok := b.amounts[user]
	return ok
}

// Users returns the users in insertion order.
func (b *NetBalances) Users() []string {
	return slices.Clone(b.users)
}

// Len returns the number of users.
func (b *NetBalances) Len() int {
	return len(b.users)
}

// Sum returns the sum of all balances.
func (b *NetBalances) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, u := range b.users {
		total = total.Add(b.amounts[u])
	}
	return total
}

// Clone returns an independent copy.
func (b *NetBalances) Clone() *NetBalances {
	c := &NetBalances{
		users:   slices.Clone(b.users),
		amounts: make(map[string]decimal.Decimal, len(b.amounts)),
	}
	for k, v := range b.amounts {
		c.amounts[k] = v
	}
	return c
}

// Round rounds every balance to Scale places in place.
func (b *NetBalances) Round() {
	for _, u := range b.users {
		b.amounts[u] = Round(b.amounts[u])
	}
}

// DebtEdge is one debtor -> creditor entry of a DebtGraph.
type DebtEdge struct {
	From   string // who owes
	To     string // who is owed
	Amount decimal.Decimal
}

type creditors struct {
	order   []string
	amounts map[string]decimal.Decimal
}

// DebtGraph is a directed weighted graph: an edge debtor -> creditor of
// weight w means debtor owes creditor w. Debtors and each debtor's creditors
// iterate in insertion order; overwriting an existing edge keeps its
// position.
type DebtGraph struct {
	debtors []string
	edges   map[string]*creditors
}

// NewDebtGraph creates an empty graph.
func NewDebtGraph() *DebtGraph {
	return &DebtGraph{edges: make(map[string]*creditors)}
}

func (g *DebtGraph) row(debtor string) *creditors {
	r, ok := g.edges[debtor]
	if !ok {
		r = &creditors{amounts: make(map[string]decimal.Decimal)}
		g.edges[debtor] = r
		g.debtors = append(g.debtors, debtor)
	}
	return r
}

// Set overwrites the edge weight, creating the edge if needed.
func (g *DebtGraph) Set(debtor, creditor string, amount decimal.Decimal) {
	r := g.row(debtor)
	if _, ok := r.amounts[creditor]; !ok {
		r.order = append(r.order, creditor)
	}
	r.amounts[creditor] = amount
}

// Add adds amount to the edge weight, creating the edge if needed.
func (g *DebtGraph) Add(debtor, creditor string, amount decimal.Decimal) {
	cur, _ := g.Get(debtor, creditor)
	g.Set(debtor, creditor, cur.Add(amount))
}

// Get returns the edge weight and whether the edge exists.
func (g *DebtGraph) Get(debtor, creditor string) (decimal.Decimal, bool) {
	r, ok := g.edges[debtor]
	if !ok {
		return decimal.Zero, false
	}
	amount, ok := r.amounts[creditor]
	return amount, ok
}

// Delete removes an edge. The debtor stays registered, possibly with no
// edges, until Prune runs.
func (g *DebtGraph) Delete(debtor, creditor string) {
	r, ok := g.edges[debtor]
	if !ok {
		return
	}
	if _, ok := r.amounts[creditor]; !ok {
		return
	}
	delete(r.amounts, creditor)
	r.order = slices.DeleteFunc(r.order, func(c string) bool { return c == creditor })
}

func (g *DebtGraph) deleteDebtor(debtor string) {
	delete(g.edges, debtor)
	g.debtors = slices.DeleteFunc(g.debtors, func(d string) bool { return d == debtor })
}

// Debtors returns every registered debtor in insertion order.
func (g *DebtGraph) Debtors() []string {
	return slices.Clone(g.debtors)
}

// Creditors returns the debtor's creditors in insertion order.
func (g *DebtGraph) Creditors(debtor string) []string {
	r, ok := g.edges[debtor]
	if !ok {
		return nil
	}
	return slices.Clone(r.order)
}

// Edges returns all edges, debtor-major, in insertion order.
func (g *DebtGraph) Edges() []DebtEdge {
	var out []DebtEdge
	for _, d := range g.debtors {
		r := g.edges[d]
		for _, c := range r.order {
			out = append(out, DebtEdge{From: d, To: c, Amount: r.amounts[c]})
		}
	}
	return out
}

// Len returns the number of edges.
func (g *DebtGraph) Len() int {
	n := 0
	for _, r := range g.edges {
		n += len(r.order)
	}
	return n
}

// Empty reports whether the graph holds no edges.
func (g *DebtGraph) Empty() bool {
	return g.Len() == 0
}

// Clone returns a structural copy sharing nothing with g.
func (g *DebtGraph) Clone() *DebtGraph {
	c := &DebtGraph{
		debtors: slices.Clone(g.debtors),
		edges:   make(map[string]*creditors, len(g.edges)),
	}
	for d, r := range g.edges {
		cr := &creditors{
			order:   slices.Clone(r.order),
			amounts: make(map[string]decimal.Decimal, len(r.amounts)),
		}
		for k, v := range r.amounts {
			cr.amounts[k] = v
		}
		c.edges[d] = cr
	}
	return c
}

// Prune removes every edge for which drop returns true, then every debtor
// left without edges.
func (g *DebtGraph) Prune(drop func(amount decimal.Decimal) bool) {
	for _, d := range g.Debtors() {
		r := g.edges[d]
		for _, c := range slices.Clone(r.order) {
			if drop(r.amounts[c]) {
				g.Delete(d, c)
			}
		}
		if len(r.order) == 0 {
			g.deleteDebtor(d)
		}
	}
}

// Round rounds every edge to Scale places in place.
func (g *DebtGraph) Round() {
	for _, r := range g.edges {
		for c, v := range r.amounts {
			r.amounts[c] = Round(v)
		}
	}
}

func notPositive(amount decimal.Decimal) bool {
	return !amount.IsPositive()
}
