package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitgroup/internal/cache"
	"github.com/mmynk/splitgroup/internal/calculator"
	"github.com/mmynk/splitgroup/internal/metrics"
	"github.com/mmynk/splitgroup/internal/models"
	"github.com/mmynk/splitgroup/internal/storage"
	"github.com/mmynk/splitgroup/pkg/api"
	"github.com/mmynk/splitgroup/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store storage.Store
	cache cache.Cache
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.Store, c cache.Cache) *ExpenseService {
	return &ExpenseService{store: store, cache: c}
}

// splitInput is the part of create, update and preview requests that
// determines the shares.
type splitInput struct {
	total        string
	method       string
	participants []string
	params       api.SplitParams
}

// split validates the input against the group's active members and runs the
// split rules. Participants default to every active member.
func split(memberships []*models.Membership, in splitInput) (decimal.Decimal, calculator.SplitMethod, []calculator.Share, error) {
	total, err := parseMoney("total_amount", in.total)
	if err != nil {
		return decimal.Zero, "", nil, err
	}
	method, err := calculator.ParseSplitMethod(in.method)
	if err != nil {
		return decimal.Zero, "", nil, err
	}
	params, err := splitParamsFromAPI(in.params)
	if err != nil {
		return decimal.Zero, "", nil, err
	}

	participants := in.participants
	if len(participants) == 0 {
		participants = models.ActiveMemberIDs(memberships)
	}
	if err := requireActiveMembers(memberships, participants...); err != nil {
		return decimal.Zero, "", nil, err
	}

	shares, err := calculator.NewSplitRuleEngine(participants, total).ApplySplit(method, params)
	if err != nil {
		return decimal.Zero, "", nil, err
	}
	metrics.SplitComputed(string(method))
	return total, method, shares, nil
}

func participantsFromShares(shares []calculator.Share) []models.ExpenseParticipant {
	out := make([]models.ExpenseParticipant, len(shares))
	for i, s := range shares {
		out[i] = models.ExpenseParticipant{UserID: s.UserID, AmountOwed: s.Amount}
	}
	return out
}

// CreateExpense splits a new expense among participants and stores it.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"total", req.Msg.TotalAmount,
		"method", req.Msg.SplitMethod,
		"participants", len(req.Msg.Participants),
	)

	caller, err := activeCaller(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}

	expense, err := s.buildExpense(ctx, req.Msg.GroupID, caller.UserID, expenseFields{
		payerID:     req.Msg.PayerID,
		description: req.Msg.Description,
		currency:    req.Msg.Currency,
		date:        req.Msg.ExpenseDate,
		split: splitInput{
			total:        req.Msg.TotalAmount,
			method:       req.Msg.SplitMethod,
			participants: req.Msg.Participants,
			params:       req.Msg.Params,
		},
	})
	if err != nil {
		slog.Warn("CreateExpense rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, connectError(err)
	}
	invalidateBalances(ctx, s.cache, expense.GroupID)

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", expense.GroupID)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// UpdateExpense replaces an expense and re-splits it. Only the payer may edit.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	existing, caller, err := s.payerOnly(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}

	expense, err := s.buildExpense(ctx, existing.GroupID, caller.UserID, expenseFields{
		payerID:     req.Msg.PayerID,
		description: req.Msg.Description,
		currency:    req.Msg.Currency,
		date:        req.Msg.ExpenseDate,
		split: splitInput{
			total:        req.Msg.TotalAmount,
			method:       req.Msg.SplitMethod,
			participants: req.Msg.Participants,
			params:       req.Msg.Params,
		},
	})
	if err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", existing.ID, "error", err)
		return nil, connectError(err)
	}
	expense.ID = existing.ID
	expense.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "error", err)
		return nil, connectError(err)
	}
	invalidateBalances(ctx, s.cache, expense.GroupID)

	slog.Info("Expense updated", "expense_id", expense.ID)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// GetExpense retrieves an expense visible to the caller.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	expense, err := s.visibleExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// ListExpenses returns the group's expenses in creation order.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	if _, err := callerMembership(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, connectError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = expenseToAPI(e)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense. Only the payer may delete it.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, _, err := s.payerOnly(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "error", err)
		return nil, connectError(err)
	}
	invalidateBalances(ctx, s.cache, expense.GroupID)

	slog.Info("Expense deleted", "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// PreviewSplit computes shares without storing anything.
func (s *ExpenseService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	if _, err := callerMembership(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, connectError(err)
	}
	memberships, err := s.store.ListMemberships(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}

	_, _, shares, err := split(memberships, splitInput{
		total:        req.Msg.TotalAmount,
		method:       req.Msg.SplitMethod,
		participants: req.Msg.Participants,
		params:       req.Msg.Params,
	})
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.PreviewSplitResponse{Shares: sharesToAPI(shares)}), nil
}

// SettleExpense records a payment from every participant to the expense payer,
// skipping participants who already paid the payer at least their share.
func (s *ExpenseService) SettleExpense(ctx context.Context, req *connect.Request[api.SettleExpenseRequest]) (*connect.Response[api.SettleExpenseResponse], error) {
	slog.Info("SettleExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.visibleExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}
	if _, err := activeCaller(ctx, s.store, expense.GroupID); err != nil {
		return nil, connectError(err)
	}

	payments, err := s.store.ListPaymentsByGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, connectError(err)
	}

	created := []*api.Payment{}
	for _, p := range expense.Participants {
		if p.UserID == expense.PayerID || !p.AmountOwed.IsPositive() {
			continue
		}
		if coveredBy(payments, p.UserID, expense.PayerID, p.AmountOwed) {
			continue
		}

		payment := &models.Payment{
			GroupID:    expense.GroupID,
			PayerID:    p.UserID,
			ReceiverID: expense.PayerID,
			Amount:     p.AmountOwed,
			Currency:   expense.Currency,
		}
		if err := s.store.CreatePayment(ctx, payment); err != nil {
			slog.Error("SettleExpense failed", "expense_id", expense.ID, "error", err)
			return nil, connectError(err)
		}
		created = append(created, paymentToAPI(payment))
	}
	if len(created) > 0 {
		invalidateBalances(ctx, s.cache, expense.GroupID)
	}

	slog.Info("Expense settled", "expense_id", expense.ID, "payments", len(created))
	return connect.NewResponse(&api.SettleExpenseResponse{Payments: created}), nil
}

// coveredBy reports whether a payment from payer to receiver of at least amount exists.
func coveredBy(payments []*models.Payment, payer, receiver string, amount decimal.Decimal) bool {
	for _, p := range payments {
		if p.PayerID == payer && p.ReceiverID == receiver && p.Amount.GreaterThanOrEqual(amount) {
			return true
		}
	}
	return false
}

type expenseFields struct {
	payerID     string
	description string
	currency    string
	date        int64
	split       splitInput
}

// buildExpense validates the fields and computes the shares of an expense in
// the group. The payer defaults to the caller.
func (s *ExpenseService) buildExpense(ctx context.Context, groupID, callerID string, f expenseFields) (*models.Expense, error) {
	description := strings.TrimSpace(f.description)
	if description == "" {
		return nil, invalidArgument("description required")
	}
	date, err := resolveDate("expense_date", f.date)
	if err != nil {
		return nil, err
	}

	memberships, err := s.store.ListMemberships(ctx, groupID)
	if err != nil {
		return nil, err
	}
	payerID := f.payerID
	if payerID == "" {
		payerID = callerID
	}
	if err := requireActiveMembers(memberships, payerID); err != nil {
		return nil, err
	}

	total, method, shares, err := split(memberships, f.split)
	if err != nil {
		return nil, err
	}

	return &models.Expense{
		GroupID:      groupID,
		PayerID:      payerID,
		Description:  description,
		TotalAmount:  total,
		Currency:     currencyOrDefault(f.currency),
		ExpenseDate:  date,
		SplitMethod:  string(method),
		Participants: participantsFromShares(shares),
	}, nil
}

// visibleExpense loads an expense whose group the caller belongs to. Expenses
// in other groups are reported as not found.
func (s *ExpenseService) visibleExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	if expenseID == "" {
		return nil, invalidArgument("expense_id required")
	}
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if _, err := callerMembership(ctx, s.store, expense.GroupID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
		}
		return nil, err
	}
	return expense, nil
}

// payerOnly loads an expense the caller paid for and may still edit.
func (s *ExpenseService) payerOnly(ctx context.Context, expenseID string) (*models.Expense, *models.Membership, error) {
	expense, err := s.visibleExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	caller, err := activeCaller(ctx, s.store, expense.GroupID)
	if err != nil {
		return nil, nil, err
	}
	if expense.PayerID != caller.UserID {
		return nil, nil, ErrNotPayer
	}
	return expense, caller, nil
}
