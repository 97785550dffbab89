package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balances(pairs ...string) *NetBalances {
	b := NewNetBalances()
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Set(pairs[i], dec(pairs[i+1]))
	}
	return b
}

func graph(triples ...string) *DebtGraph {
	g := NewDebtGraph()
	for i := 0; i+2 < len(triples); i += 3 {
		g.Add(triples[i], triples[i+1], dec(triples[i+2]))
	}
	return g
}

// edgesOf renders a graph as "from->to:amount" strings in iteration order.
func edgesOf(g *DebtGraph) []string {
	var out []string
	for _, e := range g.Edges() {
		out = append(out, e.From+"->"+e.To+":"+FormatAmount(e.Amount))
	}
	return out
}

func TestAggregate_FatalInconsistency(t *testing.T) {
	net := balances("alice", "10.00", "bob", "-19.00")

	g, err := NewBalanceAggregator(net, NewDebtGraph()).Aggregate()
	require.Error(t, err)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, ErrBalanceInconsistent)
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestAggregate_AbsorbsDiscrepancyWithinTolerance(t *testing.T) {
	net := balances("alice", "5.005", "bob", "-5.00")

	agg := NewBalanceAggregator(net, NewDebtGraph())
	g, err := agg.Aggregate()
	require.NoError(t, err)

	adjusted := agg.NetBalances()
	assert.True(t, adjusted.Sum().IsZero())
	assertAmount(t, "5.00", adjusted.Get("alice"))
	assert.Equal(t, []string{"bob->alice:5.00"}, edgesOf(g))

	// Input untouched.
	assertAmount(t, "5.005", net.Get("alice"))
}

func TestAggregate_BuildsGraphFromNetBalances(t *testing.T) {
	tests := []struct {
		name string
		net  *NetBalances
		want []string
	}{
		{
			name: "one creditor",
			net:  balances("alice", "30.00", "bob", "-10.00", "carol", "-20.00"),
			want: []string{"carol->alice:20.00", "bob->alice:10.00"},
		},
		{
			name: "one debtor",
			net:  balances("alice", "-50.00", "bob", "30.00", "carol", "20.00"),
			want: []string{"alice->bob:30.00", "alice->carol:20.00"},
		},
		{
			name: "debtor spans creditors",
			net:  balances("a", "-60.00", "b", "-40.00", "c", "70.00", "d", "30.00"),
			want: []string{"a->c:60.00", "b->c:10.00", "b->d:30.00"},
		},
		{
			name: "all settled",
			net:  balances("a", "0.00", "b", "0.00"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewBalanceAggregator(tt.net, NewDebtGraph()).Aggregate()
			require.NoError(t, err)
			assert.Equal(t, tt.want, edgesOf(g))
		})
	}
}

func TestAggregate_CleansDetailedBalances(t *testing.T) {
	net := balances("alice", "20.00", "bob", "-20.00")
	detailed := graph(
		"bob", "alice", "20.00",
		"carol", "alice", "0.01",
		"bob", "carol", "0.004",
	)

	agg := NewBalanceAggregator(net, detailed)
	_, err := agg.Aggregate()
	require.NoError(t, err)

	assert.Equal(t, []string{"bob->alice:20.00"}, edgesOf(agg.Detailed()))
	assert.Equal(t, []string{"bob", "carol"}, detailed.Debtors(), "input graph must not change")
	assert.Equal(t, 3, detailed.Len())
}

func TestAggregate_SameNetEffectAsDetailed(t *testing.T) {
	members := []string{"a", "b", "c", "d"}
	expenses := []Expense{
		expense("a", "40.00", "a", "10.00", "b", "10.00", "c", "10.00", "d", "10.00"),
		expense("b", "30.00", "c", "15.00", "d", "15.00"),
		expense("c", "12.00", "a", "6.00", "b", "6.00"),
	}
	payments := []Payment{payment("d", "a", "5.00")}

	calc := NewBalanceCalculator(members, expenses, payments)
	net := calc.CalculateNetBalances()
	detailed := calc.CalculateDetailedBalances()

	g, err := NewBalanceAggregator(net, detailed).Aggregate()
	require.NoError(t, err)

	assertSameNet(t, detailed, g)
	for _, u := range members {
		assertAmount(t, net.Get(u).String(), netOf(g).Get(u), u)
	}
}
