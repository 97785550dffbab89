package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle_ExecutingPlanClearsGroup(t *testing.T) {
	members := []string{"alice", "bob", "carol", "dave"}

	var expenses []Expense
	for _, e := range []struct {
		payer  string
		total  string
		method SplitMethod
		params SplitParams
	}{
		{"alice", "120.00", SplitEqually, SplitParams{}},
		{"bob", "45.30", SplitByWeights, SplitParams{Weights: portions("bob", "1", "carol", "2")}},
		{"carol", "80.00", SplitByPercentages, SplitParams{Percentages: portions("alice", "25", "dave", "75")}},
		{"dave", "10.01", SplitEqually, SplitParams{}},
	} {
		shares, err := NewSplitRuleEngine(members, dec(e.total)).ApplySplit(e.method, e.params)
		require.NoError(t, err)
		expenses = append(expenses, Expense{PayerID: e.payer, Total: dec(e.total), Participants: shares})
	}
	payments := []Payment{payment("bob", "alice", "10.00")}

	report, err := Settle(members, expenses, payments)
	require.NoError(t, err)
	require.NotEmpty(t, report.Payments)
	assert.Equal(t, members, report.NetBalances.Users())
	assert.True(t, report.NetBalances.Sum().IsZero())

	for _, p := range report.Payments {
		payments = append(payments, Payment{PayerID: p.PayerID, ReceiverID: p.ReceiverID, Amount: p.Amount})
	}

	after, err := Settle(members, expenses, payments)
	require.NoError(t, err)
	assert.Empty(t, after.Payments)
	assert.True(t, after.SimplifiedGraph.Empty())
	for _, u := range members {
		assert.True(t, Negligible(after.NetBalances.Get(u)), "%s still at %s", u, after.NetBalances.Get(u))
	}
}

func TestSettle_PropagatesInconsistency(t *testing.T) {
	expenses := []Expense{expense("alice", "10.00", "bob", "1.00")}

	_, err := Settle([]string{"alice", "bob"}, expenses, nil)
	assert.ErrorIs(t, err, ErrBalanceInconsistent)
}

func TestDebtGraph_OrderAndPrune(t *testing.T) {
	g := graph("b", "a", "1.00", "a", "c", "2.00", "b", "c", "3.00")
	g.Set("b", "a", dec("4.00"))

	assert.Equal(t, []string{"b", "a"}, g.Debtors())
	assert.Equal(t, []string{"a", "c"}, g.Creditors("b"))
	assert.Equal(t, []string{"b->a:4.00", "b->c:3.00", "a->c:2.00"}, edgesOf(g))

	g.Delete("a", "c")
	g.Prune(notPositive)
	assert.Equal(t, []string{"b"}, g.Debtors())
	assert.Equal(t, 2, g.Len())

	clone := g.Clone()
	clone.Add("b", "a", dec("1.00"))
	got, _ := g.Get("b", "a")
	assertAmount(t, "4.00", got)
}
