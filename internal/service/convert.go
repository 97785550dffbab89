package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitgroup/internal/calculator"
	"github.com/mmynk/splitgroup/internal/models"
	"github.com/mmynk/splitgroup/pkg/api"
)

// DefaultCurrency is used when a request leaves the currency empty.
const DefaultCurrency = "USD"

// maxClockSkew bounds how far in the future an expense or payment date may lie.
const maxClockSkew = 24 * time.Hour

// parseMoney parses a positive amount with at most two decimal places.
func parseMoney(field, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, invalidArgument(field + " required")
	}
	d, err := calculator.ParseAmount(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, invalidArgument(field + " must be positive")
	}
	if !d.Equal(calculator.Round(d)) {
		return decimal.Zero, invalidArgument(field + " must have at most two decimal places")
	}
	return d, nil
}

// resolveDate defaults a zero Unix timestamp to now and rejects dates in the future.
func resolveDate(field string, unix int64) (int64, error) {
	now := time.Now()
	if unix == 0 {
		return now.Unix(), nil
	}
	if time.Unix(unix, 0).After(now.Add(maxClockSkew)) {
		return 0, invalidArgument(field + " cannot be in the future")
	}
	return unix, nil
}

func currencyOrDefault(currency string) string {
	if c := strings.ToUpper(strings.TrimSpace(currency)); c != "" {
		return c
	}
	return DefaultCurrency
}

func splitParamsFromAPI(p api.SplitParams) (calculator.SplitParams, error) {
	var out calculator.SplitParams
	var err error
	if out.Percentages, err = portionsFromAPI(p.Percentages); err != nil {
		return out, err
	}
	if out.Weights, err = portionsFromAPI(p.Weights); err != nil {
		return out, err
	}
	if out.Amounts, err = portionsFromAPI(p.Amounts); err != nil {
		return out, err
	}
	return out, nil
}

func portionsFromAPI(in []api.Portion) ([]calculator.Portion, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]calculator.Portion, len(in))
	for i, p := range in {
		portion, err := calculator.ParsePortion(p.UserID, p.Value)
		if err != nil {
			return nil, err
		}
		out[i] = portion
	}
	return out, nil
}

func sharesToAPI(shares []calculator.Share) []*api.Share {
	out := make([]*api.Share, len(shares))
	for i, s := range shares {
		out[i] = &api.Share{UserID: s.UserID, Amount: calculator.FormatAmount(s.Amount)}
	}
	return out
}

func userToAPI(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// groupToAPI converts a group. users supplies display names and may be nil.
func groupToAPI(g *models.Group, memberships []*models.Membership, users map[string]*models.User) *api.Group {
	out := &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatorID:   g.CreatorID,
		CreatedAt:   g.CreatedAt,
	}
	for _, m := range memberships {
		out.Members = append(out.Members, memberToAPI(m, users[m.UserID]))
	}
	return out
}

func memberToAPI(m *models.Membership, user *models.User) *api.Member {
	out := &api.Member{
		UserID:   m.UserID,
		Status:   string(m.Status),
		JoinedAt: m.JoinedAt,
	}
	if user != nil {
		out.DisplayName = user.DisplayName
	}
	return out
}

func expenseToAPI(e *models.Expense) *api.Expense {
	out := &api.Expense{
		ID:           e.ID,
		GroupID:      e.GroupID,
		PayerID:      e.PayerID,
		Description:  e.Description,
		TotalAmount:  calculator.FormatAmount(e.TotalAmount),
		Currency:     e.Currency,
		ExpenseDate:  e.ExpenseDate,
		SplitMethod:  e.SplitMethod,
		Participants: make([]*api.Share, len(e.Participants)),
		CreatedAt:    e.CreatedAt,
	}
	for i, p := range e.Participants {
		out.Participants[i] = &api.Share{UserID: p.UserID, Amount: calculator.FormatAmount(p.AmountOwed)}
	}
	return out
}

func paymentToAPI(p *models.Payment) *api.Payment {
	return &api.Payment{
		ID:          p.ID,
		GroupID:     p.GroupID,
		PayerID:     p.PayerID,
		ReceiverID:  p.ReceiverID,
		Amount:      calculator.FormatAmount(p.Amount),
		Currency:    p.Currency,
		PaymentDate: p.PaymentDate,
		CreatedAt:   p.CreatedAt,
	}
}

func expenseToCalc(e *models.Expense) calculator.Expense {
	shares := make([]calculator.Share, len(e.Participants))
	for i, p := range e.Participants {
		shares[i] = calculator.Share{UserID: p.UserID, Amount: p.AmountOwed}
	}
	return calculator.Expense{PayerID: e.PayerID, Total: e.TotalAmount, Participants: shares}
}

func paymentToCalc(p *models.Payment) calculator.Payment {
	return calculator.Payment{PayerID: p.PayerID, ReceiverID: p.ReceiverID, Amount: p.Amount}
}

func balancesToAPI(net *calculator.NetBalances) []*api.Balance {
	users := net.Users()
	out := make([]*api.Balance, len(users))
	for i, u := range users {
		out[i] = &api.Balance{UserID: u, Amount: calculator.FormatAmount(net.Get(u))}
	}
	return out
}

func debtsToAPI(g *calculator.DebtGraph) []*api.Debt {
	edges := g.Edges()
	out := make([]*api.Debt, len(edges))
	for i, e := range edges {
		out[i] = &api.Debt{From: e.From, To: e.To, Amount: calculator.FormatAmount(e.Amount)}
	}
	return out
}

func suggestedToAPI(payments []calculator.SuggestedPayment) []*api.SuggestedPayment {
	out := make([]*api.SuggestedPayment, len(payments))
	for i, p := range payments {
		out[i] = &api.SuggestedPayment{
			PayerID:    p.PayerID,
			ReceiverID: p.ReceiverID,
			Amount:     calculator.FormatAmount(p.Amount),
		}
	}
	return out
}
