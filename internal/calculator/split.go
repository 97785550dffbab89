package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SplitMethod selects how an expense total is divided among participants.
type SplitMethod string

const (
	SplitEqually        SplitMethod = "equally"
	SplitByPercentages  SplitMethod = "by_percentages"
	SplitByWeights      SplitMethod = "by_weights"
	SplitByFixedAmounts SplitMethod = "by_fixed_amounts"
)

var hundred = decimal.NewFromInt(100)

// ParseSplitMethod maps user-facing method names to a SplitMethod. Both the
// canonical names and the short forms ("percentages", "weights",
// "fixed_amounts") are accepted; an empty name means equally.
func ParseSplitMethod(name string) (SplitMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "equally", "equal":
		return SplitEqually, nil
	case "by_percentages", "percentages":
		return SplitByPercentages, nil
	case "by_weights", "weights":
		return SplitByWeights, nil
	case "by_fixed_amounts", "fixed_amounts":
		return SplitByFixedAmounts, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

// Portion is one user's parameter for a split: a percentage, a weight or a
// fixed amount depending on the method.
type Portion struct {
	UserID string
	Value  decimal.Decimal
}

// ParsePortion builds a Portion from a decimal string.
func ParsePortion(userID, value string) (Portion, error) {
	d, err := ParseAmount(value)
	if err != nil {
		return Portion{}, fmt.Errorf("value for user %s: %w", userID, err)
	}
	return Portion{UserID: userID, Value: d}, nil
}

// SplitParams holds the per-method parameters. Only the slice matching the
// method is read. Order matters: rounding residue goes to the first entry.
type SplitParams struct {
	Percentages []Portion
	Weights     []Portion
	Amounts     []Portion
}

// Share is the amount one participant owes for an expense.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// SplitRuleEngine divides a fixed total among a fixed participant set,
// normally a group's active members.
type SplitRuleEngine struct {
	participants []string
	members      map[string]bool
	total        decimal.Decimal
}

// NewSplitRuleEngine creates an engine for the given participants and total.
func NewSplitRuleEngine(participants []string, total decimal.Decimal) *SplitRuleEngine {
	members := make(map[string]bool, len(participants))
	for _, p := range participants {
		members[p] = true
	}
	return &SplitRuleEngine{
		participants: participants,
		members:      members,
		total:        total,
	}
}

// ApplySplit computes every participant's share. The shares always sum to
// the total rounded to two places.
func (e *SplitRuleEngine) ApplySplit(method SplitMethod, params SplitParams) ([]Share, error) {
	if len(e.participants) == 0 {
		return nil, ErrNoParticipants
	}
	if !e.total.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidTotal, e.total)
	}

	var (
		shares []Share
		err    error
	)
	switch method {
	case SplitEqually:
		shares = e.splitEqually()
	case SplitByPercentages:
		shares, err = e.splitByPercentages(params.Percentages)
	case SplitByWeights:
		shares, err = e.splitByWeights(params.Weights)
	case SplitByFixedAmounts:
		shares, err = e.splitByFixedAmounts(params.Amounts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if err != nil {
		return nil, err
	}

	if err := e.validateTotalMatch(shares); err != nil {
		return nil, err
	}
	return shares, nil
}

func (e *SplitRuleEngine) splitEqually() []Share {
	n := decimal.NewFromInt(int64(len(e.participants)))
	base := Round(e.total.Div(n))
	remainder := e.total.Sub(base.Mul(n))

	shares := make([]Share, len(e.participants))
	for i, p := range e.participants {
		shares[i] = Share{UserID: p, Amount: base}
	}
	shares[0].Amount = shares[0].Amount.Add(remainder)
	return shares
}

func (e *SplitRuleEngine) splitByPercentages(percentages []Portion) ([]Share, error) {
	if len(percentages) == 0 {
		return nil, fmt.Errorf("%w: no percentages given", ErrInvalidPercentages)
	}
	if err := e.checkPortions(percentages, ErrInvalidPercentages); err != nil {
		return nil, err
	}

	values := make([]decimal.Decimal, len(percentages))
	for i, p := range percentages {
		if p.Value.IsNegative() {
			return nil, fmt.Errorf("%w: percentage for user %s is negative", ErrInvalidPercentages, p.UserID)
		}
		values[i] = p.Value
	}
	if got := Round(sum(values)); !got.Equal(hundred) {
		return nil, fmt.Errorf("%w: percentages must sum to 100 (got %s)", ErrInvalidPercentages, FormatAmount(got))
	}

	shares := make([]Share, len(percentages))
	for i, p := range percentages {
		shares[i] = Share{UserID: p.UserID, Amount: Round(e.total.Mul(p.Value).Div(hundred))}
	}
	e.assignResidual(shares)
	return shares, nil
}

func (e *SplitRuleEngine) splitByWeights(weights []Portion) ([]Share, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: no weights given", ErrInvalidWeights)
	}
	if err := e.checkPortions(weights, ErrInvalidWeights); err != nil {
		return nil, err
	}

	values := make([]decimal.Decimal, len(weights))
	for i, w := range weights {
		if !w.Value.IsPositive() {
			return nil, fmt.Errorf("%w: weight for user %s must be positive", ErrInvalidWeights, w.UserID)
		}
		values[i] = w.Value
	}
	totalWeight := sum(values)
	if !totalWeight.IsPositive() {
		return nil, fmt.Errorf("%w: weights must sum to more than zero", ErrInvalidWeights)
	}

	shares := make([]Share, len(weights))
	for i, w := range weights {
		shares[i] = Share{UserID: w.UserID, Amount: Round(e.total.Mul(w.Value).Div(totalWeight))}
	}
	e.assignResidual(shares)
	return shares, nil
}

func (e *SplitRuleEngine) splitByFixedAmounts(amounts []Portion) ([]Share, error) {
	if len(amounts) == 0 {
		return nil, fmt.Errorf("%w: no amounts given", ErrInvalidFixedAmounts)
	}
	if err := e.checkPortions(amounts, ErrInvalidFixedAmounts); err != nil {
		return nil, err
	}

	values := make([]decimal.Decimal, len(amounts))
	for i, a := range amounts {
		if a.Value.IsNegative() {
			return nil, fmt.Errorf("%w: amount for user %s is negative", ErrInvalidFixedAmounts, a.UserID)
		}
		values[i] = a.Value
	}
	if got, want := Round(sum(values)), Round(e.total); !got.Equal(want) {
		return nil, fmt.Errorf("%w: amounts sum to %s, expense total is %s",
			ErrInvalidFixedAmounts, FormatAmount(got), FormatAmount(want))
	}

	shares := make([]Share, len(amounts))
	for i, a := range amounts {
		shares[i] = Share{UserID: a.UserID, Amount: Round(a.Value)}
	}
	return shares, nil
}

// checkPortions rejects unknown and repeated user ids.
func (e *SplitRuleEngine) checkPortions(portions []Portion, kind error) error {
	seen := make(map[string]bool, len(portions))
	for _, p := range portions {
		if !e.members[p.UserID] {
			return fmt.Errorf("%w: %s", ErrUnknownParticipant, p.UserID)
		}
		if seen[p.UserID] {
			return fmt.Errorf("%w: user %s listed more than once", kind, p.UserID)
		}
		seen[p.UserID] = true
	}
	return nil
}

// assignResidual adds target - sum(shares) to the first share.
func (e *SplitRuleEngine) assignResidual(shares []Share) {
	actual := decimal.Zero
	for _, s := range shares {
		actual = actual.Add(s.Amount)
	}
	if diff := Round(e.total).Sub(actual); !diff.IsZero() {
		shares[0].Amount = shares[0].Amount.Add(Round(diff))
	}
}

// validateTotalMatch is the last check after every method. A failure here is
// a bug in the engine, not bad input.
func (e *SplitRuleEngine) validateTotalMatch(shares []Share) error {
	actual := decimal.Zero
	for _, s := range shares {
		actual = actual.Add(s.Amount)
	}
	if got, want := Round(actual), Round(e.total); !got.Equal(want) {
		return fmt.Errorf("%w: shares sum to %s, expense total is %s",
			ErrTotalMismatch, FormatAmount(got), FormatAmount(want))
	}
	return nil
}
