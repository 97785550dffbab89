package calculator

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planOf(payments []SuggestedPayment) []string {
	var out []string
	for _, p := range payments {
		out = append(out, p.PayerID+"->"+p.ReceiverID+":"+FormatAmount(p.Amount))
	}
	return out
}

func TestGenerateOptimizedPayments(t *testing.T) {
	tests := []struct {
		name  string
		input *DebtGraph
		want  []string
	}{
		{
			name:  "chain collapses to one payment",
			input: graph("a", "b", "100.00", "b", "c", "100.00"),
			want:  []string{"a->c:100.00"},
		},
		{
			name:  "two debtors one creditor",
			input: graph("a", "c", "50.00", "b", "c", "30.00"),
			want:  []string{"a->c:50.00", "b->c:30.00"},
		},
		{
			name:  "largest debtor pays largest creditor first",
			input: graph("a", "b", "10.00", "c", "d", "40.00", "c", "b", "5.00"),
			want:  []string{"c->d:40.00", "a->b:10.00", "c->b:5.00"},
		},
		{
			name:  "ties follow first appearance",
			input: graph("a", "c", "10.00", "b", "c", "10.00"),
			want:  []string{"a->c:10.00", "b->c:10.00"},
		},
		{
			name:  "negligible balances ignored",
			input: graph("a", "b", "0.01"),
			want:  nil,
		},
		{
			name:  "empty graph",
			input: NewDebtGraph(),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateOptimizedPayments(tt.input)
			assert.Equal(t, tt.want, planOf(got))
		})
	}
}

func TestGenerateOptimizedPayments_Bounds(t *testing.T) {
	users := []string{"u0", "u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"}
	g := NewDebtGraph()
	for i := 0; i < 30; i++ {
		from := users[(i*7)%len(users)]
		to := users[(i*4+1)%len(users)]
		if from == to {
			continue
		}
		g.Add(from, to, decimal.NewFromInt(int64(100+i*53)).Shift(-2))
	}

	net := netOf(g)
	debtors, creditors := 0, 0
	for _, u := range net.Users() {
		switch b := net.Get(u); {
		case b.GreaterThan(Tolerance):
			creditors++
		case b.LessThan(Tolerance.Neg()):
			debtors++
		}
	}
	require.Positive(t, debtors)
	require.Positive(t, creditors)

	plan := GenerateOptimizedPayments(g)

	assert.LessOrEqual(t, len(plan), debtors+creditors-1)
	assertSameNet(t, g, PaymentsGraph(plan))
	for _, p := range plan {
		assert.NotEqual(t, p.PayerID, p.ReceiverID)
		assert.True(t, p.Amount.GreaterThan(Tolerance), fmt.Sprint(p))
		assert.True(t, p.Amount.Equal(Round(p.Amount)))
	}
}

func TestGenerateOptimizedPayments_IsFixedPoint(t *testing.T) {
	inputs := []*DebtGraph{
		graph("a", "b", "100.00", "b", "c", "100.00"),
		graph("a", "c", "50.00", "b", "c", "30.00"),
		graph("a", "d", "12.50", "b", "d", "7.25", "c", "e", "30.00", "a", "e", "1.10"),
	}

	for _, in := range inputs {
		once := GenerateOptimizedPayments(in)
		twice := GenerateOptimizedPayments(PaymentsGraph(once))
		assert.Equal(t, planOf(once), planOf(twice))
	}
}

func TestGenerateOptimizedPayments_DoesNotMutateInput(t *testing.T) {
	in := graph("a", "b", "100.00", "b", "c", "100.00")
	GenerateOptimizedPayments(in)
	assert.Equal(t, []string{"a->b:100.00", "b->c:100.00"}, edgesOf(in))
}
