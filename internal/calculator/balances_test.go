package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(payer, total string, shares ...string) Expense {
	e := Expense{PayerID: payer, Total: dec(total)}
	for i := 0; i+1 < len(shares); i += 2 {
		e.Participants = append(e.Participants, Share{UserID: shares[i], Amount: dec(shares[i+1])})
	}
	return e
}

func payment(payer, receiver, amount string) Payment {
	return Payment{PayerID: payer, ReceiverID: receiver, Amount: dec(amount)}
}

func TestCalculateNetBalances(t *testing.T) {
	tests := []struct {
		name     string
		expenses []Expense
		payments []Payment
		want     map[string]string
	}{
		{
			name:     "payer covers everyone",
			expenses: []Expense{expense("alice", "30.00", "alice", "10.00", "bob", "10.00", "carol", "10.00")},
			want:     map[string]string{"alice": "20.00", "bob": "-10.00", "carol": "-10.00"},
		},
		{
			name:     "payment reduces what the payer owes",
			expenses: []Expense{expense("alice", "30.00", "alice", "10.00", "bob", "10.00", "carol", "10.00")},
			payments: []Payment{payment("bob", "alice", "10.00")},
			want:     map[string]string{"alice": "10.00", "bob": "0.00", "carol": "-10.00"},
		},
		{
			name: "several payers",
			expenses: []Expense{
				expense("alice", "90.00", "alice", "30.00", "bob", "30.00", "carol", "30.00"),
				expense("bob", "60.00", "bob", "20.00", "carol", "40.00"),
			},
			payments: []Payment{payment("carol", "alice", "25.00")},
			want:     map[string]string{"alice": "35.00", "bob": "10.00", "carol": "-45.00"},
		},
		{
			name: "no history",
			want: map[string]string{"alice": "0.00", "bob": "0.00", "carol": "0.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := NewBalanceCalculator(trio, tt.expenses, tt.payments).CalculateNetBalances()
			assert.Equal(t, trio, net.Users())
			for user, want := range tt.want {
				assertAmount(t, want, net.Get(user), user)
			}
			assert.True(t, net.Sum().IsZero())
		})
	}
}

func TestCalculateNetBalances_AbsorbsResidualOnFirstMember(t *testing.T) {
	// Participant shares sum to 9.995 against a 10.00 total.
	expenses := []Expense{expense("bob", "10.00", "alice", "3.33", "bob", "3.33", "carol", "3.335")}

	net := NewBalanceCalculator(trio, expenses, nil).CalculateNetBalances()

	assertAmount(t, "-3.34", net.Get("alice")) // -3.33 - 0.005 rounded away from zero
	assertAmount(t, "6.67", net.Get("bob"))
	assertAmount(t, "-3.34", net.Get("carol"))
	assert.True(t, Negligible(net.Sum()), "sum %s", net.Sum())
}

func TestCalculateNetBalances_LeavesLargeInconsistency(t *testing.T) {
	expenses := []Expense{expense("alice", "10.00", "alice", "4.00", "bob", "5.00")}

	net := NewBalanceCalculator([]string{"alice", "bob"}, expenses, nil).CalculateNetBalances()

	assertAmount(t, "6.00", net.Get("alice"))
	assertAmount(t, "-5.00", net.Get("bob"))
	assertAmount(t, "1.00", net.Sum())

	_, err := NewBalanceAggregator(net, NewDebtGraph()).Aggregate()
	assert.ErrorIs(t, err, ErrBalanceInconsistent)
}

func TestCalculateNetBalances_ZeroSumAcrossHistories(t *testing.T) {
	members := []string{"u1", "u2", "u3", "u4", "u5"}
	var expenses []Expense
	var payments []Payment

	for i := 0; i < 40; i++ {
		payer := members[i%len(members)]
		participants := members[:1+i%len(members)]
		total := decimal.NewFromInt(int64(1000 + i*137)).Shift(-2)

		shares, err := NewSplitRuleEngine(participants, total).ApplySplit(SplitEqually, SplitParams{})
		require.NoError(t, err)
		expenses = append(expenses, Expense{PayerID: payer, Total: total, Participants: shares})

		if i%3 == 0 {
			payments = append(payments, Payment{
				PayerID:    members[(i+1)%len(members)],
				ReceiverID: members[(i+2)%len(members)],
				Amount:     decimal.NewFromInt(int64(500 + i*11)).Shift(-2),
			})
		}

		net := NewBalanceCalculator(members, expenses, payments).CalculateNetBalances()
		assert.True(t, Negligible(net.Sum()), "after %d expenses sum is %s", i+1, net.Sum())
	}
}

func TestCalculateDetailedBalances(t *testing.T) {
	t.Run("participants owe the payer, payer's own share ignored", func(t *testing.T) {
		expenses := []Expense{
			expense("alice", "30.00", "alice", "10.00", "bob", "10.00", "carol", "10.00"),
			expense("bob", "20.00", "alice", "20.00"),
		}
		g := NewBalanceCalculator(trio, expenses, nil).CalculateDetailedBalances()

		assert.Equal(t, []string{"bob", "carol", "alice"}, g.Debtors())
		got, _ := g.Get("bob", "alice")
		assertAmount(t, "10.00", got)
		got, _ = g.Get("alice", "bob")
		assertAmount(t, "20.00", got)
		_, ok := g.Get("alice", "alice")
		assert.False(t, ok)
	})

	t.Run("partial payment reduces the debt", func(t *testing.T) {
		expenses := []Expense{expense("bob", "40.00", "alice", "20.00", "bob", "20.00")}
		payments := []Payment{payment("alice", "bob", "5.00")}
		g := NewBalanceCalculator(trio, expenses, payments).CalculateDetailedBalances()

		got, _ := g.Get("alice", "bob")
		assertAmount(t, "15.00", got)
	})

	t.Run("overpayment becomes reverse debt", func(t *testing.T) {
		expenses := []Expense{expense("bob", "40.00", "alice", "20.00", "bob", "20.00")}
		payments := []Payment{payment("alice", "bob", "30.00")}
		g := NewBalanceCalculator(trio, expenses, payments).CalculateDetailedBalances()

		assert.Equal(t, []string{"bob"}, g.Debtors())
		assert.Nil(t, g.Creditors("alice"))
		got, ok := g.Get("bob", "alice")
		require.True(t, ok)
		assertAmount(t, "10.00", got)
	})

	t.Run("payment without debt is a loan", func(t *testing.T) {
		g := NewBalanceCalculator(trio, nil, []Payment{payment("alice", "carol", "12.00")}).CalculateDetailedBalances()

		got, ok := g.Get("carol", "alice")
		require.True(t, ok)
		assertAmount(t, "12.00", got)
		assert.Equal(t, 1, g.Len())
	})

	t.Run("exact payment clears the debtor", func(t *testing.T) {
		expenses := []Expense{expense("bob", "40.00", "alice", "20.00", "bob", "20.00")}
		g := NewBalanceCalculator(trio, expenses, []Payment{payment("alice", "bob", "20.00")}).CalculateDetailedBalances()

		assert.True(t, g.Empty())
		assert.Empty(t, g.Debtors())
	})
}
