package calculator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func shareSum(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

func portions(pairs ...string) []Portion {
	out := make([]Portion, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Portion{UserID: pairs[i], Value: dec(pairs[i+1])})
	}
	return out
}

var trio = []string{"alice", "bob", "carol"}

func TestApplySplit_Equally(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		total        string
		want         []string
	}{
		{"remainder goes negative on first", trio, "10.01", []string{"3.33", "3.34", "3.34"}},
		{"remainder goes positive on first", trio, "100.00", []string{"33.34", "33.33", "33.33"}},
		{"even split", []string{"alice", "bob"}, "33.00", []string{"16.50", "16.50"}},
		{"single participant", []string{"alice"}, "12.34", []string{"12.34"}},
		{"one cent", trio, "0.01", []string{"0.01", "0.00", "0.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := NewSplitRuleEngine(tt.participants, dec(tt.total)).ApplySplit(SplitEqually, SplitParams{})
			require.NoError(t, err)
			require.Len(t, shares, len(tt.want))
			for i, s := range shares {
				assert.Equal(t, tt.participants[i], s.UserID)
				assertAmount(t, tt.want[i], s.Amount, s.UserID)
			}
			assertAmount(t, tt.total, shareSum(shares))
		})
	}
}

func TestApplySplit_ByPercentages(t *testing.T) {
	engine := NewSplitRuleEngine(trio, dec("99.99"))

	shares, err := engine.ApplySplit(SplitByPercentages, SplitParams{
		Percentages: portions("alice", "50", "bob", "30", "carol", "20"),
	})
	require.NoError(t, err)
	require.Len(t, shares, 3)
	// 49.995 -> 50.00, 29.997 -> 30.00, 19.998 -> 20.00; residual -0.01 on the first.
	assertAmount(t, "49.99", shares[0].Amount)
	assertAmount(t, "30.00", shares[1].Amount)
	assertAmount(t, "20.00", shares[2].Amount)
	assertAmount(t, "99.99", shareSum(shares))
}

func TestApplySplit_ByPercentagesSubset(t *testing.T) {
	shares, err := NewSplitRuleEngine(trio, dec("80.00")).ApplySplit(SplitByPercentages, SplitParams{
		Percentages: portions("carol", "75", "alice", "25"),
	})
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Equal(t, "carol", shares[0].UserID)
	assertAmount(t, "60.00", shares[0].Amount)
	assertAmount(t, "20.00", shares[1].Amount)
}

func TestApplySplit_ByWeights(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		weights []Portion
		want    []string
	}{
		{"one to two", "10.00", portions("alice", "1", "bob", "2"), []string{"3.33", "6.67"}},
		{"equal weights residual on first", "10.00", portions("alice", "1", "bob", "1", "carol", "1"), []string{"3.34", "3.33", "3.33"}},
		{"fractional weights", "45.00", portions("alice", "0.5", "bob", "1.5", "carol", "1"), []string{"7.50", "22.50", "15.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := NewSplitRuleEngine(trio, dec(tt.total)).ApplySplit(SplitByWeights, SplitParams{Weights: tt.weights})
			require.NoError(t, err)
			require.Len(t, shares, len(tt.want))
			for i, s := range shares {
				assertAmount(t, tt.want[i], s.Amount, s.UserID)
			}
			assertAmount(t, tt.total, shareSum(shares))
		})
	}
}

func TestApplySplit_ByFixedAmounts(t *testing.T) {
	shares, err := NewSplitRuleEngine(trio, dec("10.00")).ApplySplit(SplitByFixedAmounts, SplitParams{
		Amounts: portions("alice", "4.00", "bob", "6.00", "carol", "0"),
	})
	require.NoError(t, err)
	require.Len(t, shares, 3)
	assertAmount(t, "4.00", shares[0].Amount)
	assertAmount(t, "6.00", shares[1].Amount)
	assertAmount(t, "0.00", shares[2].Amount)
}

func TestApplySplit_Errors(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		total        string
		method       SplitMethod
		params       SplitParams
		wantErr      error
	}{
		{"no participants", nil, "10.00", SplitEqually, SplitParams{}, ErrNoParticipants},
		{"unknown method", trio, "10.00", SplitMethod("by_mood"), SplitParams{}, ErrUnknownMethod},
		{"zero total", trio, "0", SplitEqually, SplitParams{}, ErrInvalidTotal},
		{"percentages sum to 90", trio, "10.00", SplitByPercentages,
			SplitParams{Percentages: portions("alice", "50", "bob", "40")}, ErrInvalidPercentages},
		{"negative percentage", trio, "10.00", SplitByPercentages,
			SplitParams{Percentages: portions("alice", "110", "bob", "-10")}, ErrInvalidPercentages},
		{"missing percentages", trio, "10.00", SplitByPercentages, SplitParams{}, ErrInvalidPercentages},
		{"percentage for outsider", trio, "10.00", SplitByPercentages,
			SplitParams{Percentages: portions("alice", "50", "mallory", "50")}, ErrUnknownParticipant},
		{"duplicate percentage", trio, "10.00", SplitByPercentages,
			SplitParams{Percentages: portions("alice", "50", "alice", "50")}, ErrInvalidPercentages},
		{"zero weight", trio, "10.00", SplitByWeights,
			SplitParams{Weights: portions("alice", "1", "bob", "0")}, ErrInvalidWeights},
		{"negative weight", trio, "10.00", SplitByWeights,
			SplitParams{Weights: portions("alice", "-1")}, ErrInvalidWeights},
		{"weight for outsider", trio, "10.00", SplitByWeights,
			SplitParams{Weights: portions("mallory", "1")}, ErrUnknownParticipant},
		{"fixed amounts short of total", trio, "10.00", SplitByFixedAmounts,
			SplitParams{Amounts: portions("alice", "4.00", "bob", "5.00")}, ErrInvalidFixedAmounts},
		{"negative fixed amount", trio, "10.00", SplitByFixedAmounts,
			SplitParams{Amounts: portions("alice", "11.00", "bob", "-1.00")}, ErrInvalidFixedAmounts},
		{"fixed amount for outsider", trio, "10.00", SplitByFixedAmounts,
			SplitParams{Amounts: portions("alice", "5.00", "mallory", "5.00")}, ErrUnknownParticipant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := NewSplitRuleEngine(tt.participants, dec(tt.total)).ApplySplit(tt.method, tt.params)
			require.Error(t, err)
			assert.Nil(t, shares)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.NotErrorIs(t, err, ErrInconsistent)
		})
	}
}

func TestValidateTotalMatch_IsInternalError(t *testing.T) {
	engine := NewSplitRuleEngine(trio, dec("10.00"))

	err := engine.validateTotalMatch([]Share{{UserID: "alice", Amount: dec("9.99")}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTotalMismatch)
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.False(t, errors.Is(err, ErrInvalidInput))

	assert.NoError(t, engine.validateTotalMatch([]Share{{UserID: "alice", Amount: dec("10.00")}}))
}

func TestApplySplit_SharesAlwaysSumToTotal(t *testing.T) {
	members := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"}
	totals := []string{"0.01", "0.07", "1.00", "10.01", "33.33", "99.99", "123.45", "1000.00", "9999.99"}

	for n := 1; n <= len(members); n++ {
		participants := members[:n]
		for _, total := range totals {
			engine := NewSplitRuleEngine(participants, dec(total))

			var weights, percentages []Portion
			remaining := decimal.NewFromInt(100)
			for i, p := range participants {
				weights = append(weights, Portion{UserID: p, Value: decimal.NewFromInt(int64(i*i + 1))})
				if i == n-1 {
					percentages = append(percentages, Portion{UserID: p, Value: remaining})
				} else {
					pct := dec("100").Div(decimal.NewFromInt(int64(n))).Truncate(1)
					percentages = append(percentages, Portion{UserID: p, Value: pct})
					remaining = remaining.Sub(pct)
				}
			}

			cases := map[SplitMethod]SplitParams{
				SplitEqually:       {},
				SplitByWeights:     {Weights: weights},
				SplitByPercentages: {Percentages: percentages},
			}
			for method, params := range cases {
				t.Run(fmt.Sprintf("%s/%d/%s", method, n, total), func(t *testing.T) {
					shares, err := engine.ApplySplit(method, params)
					require.NoError(t, err)
					assertAmount(t, total, shareSum(shares))
					for _, s := range shares {
						assert.True(t, s.Amount.Equal(Round(s.Amount)), "share %s has more than two places", s.Amount)
					}
				})
			}
		}
	}
}

func TestParseSplitMethod(t *testing.T) {
	tests := map[string]SplitMethod{
		"":                 SplitEqually,
		"equally":          SplitEqually,
		"percentages":      SplitByPercentages,
		"by_percentages":   SplitByPercentages,
		"Weights":          SplitByWeights,
		"fixed_amounts":    SplitByFixedAmounts,
		"by_fixed_amounts": SplitByFixedAmounts,
	}
	for in, want := range tests {
		got, err := ParseSplitMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSplitMethod("shares")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestParsePortion_RejectsNonNumeric(t *testing.T) {
	p, err := ParsePortion("alice", "12.5")
	require.NoError(t, err)
	assertAmount(t, "12.50", p.Value)

	_, err = ParsePortion("alice", "twelve")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
