package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitgroup/internal/cache"
	"github.com/mmynk/splitgroup/internal/calculator"
	"github.com/mmynk/splitgroup/internal/metrics"
	"github.com/mmynk/splitgroup/internal/storage"
	"github.com/mmynk/splitgroup/pkg/api"
	"github.com/mmynk/splitgroup/pkg/api/apiconnect"
)

var _ apiconnect.BalanceServiceHandler = (*BalanceService)(nil)

// BalanceService computes balances and settlement plans from a group's history.
type BalanceService struct {
	store storage.Store
	cache cache.Cache
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(store storage.Store, c cache.Cache) *BalanceService {
	return &BalanceService{store: store, cache: c}
}

// history is a consistent snapshot of a group's members, expenses and payments.
type history struct {
	members  []string
	expenses []calculator.Expense
	payments []calculator.Payment
}

// loadHistory reads everything the calculator needs. Inactive members are
// included so their past expenses and payments still count.
func (s *BalanceService) loadHistory(ctx context.Context, groupID string) (*history, error) {
	memberships, err := s.store.ListMemberships(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	h := &history{
		members:  make([]string, len(memberships)),
		expenses: make([]calculator.Expense, len(expenses)),
		payments: make([]calculator.Payment, len(payments)),
	}
	for i, m := range memberships {
		h.members[i] = m.UserID
	}
	for i, e := range expenses {
		h.expenses[i] = expenseToCalc(e)
	}
	for i, p := range payments {
		h.payments[i] = paymentToCalc(p)
	}
	return h, nil
}

// GetBalances returns net and detailed balances, the simplified debt graph and
// a suggested settlement plan. Reports are served from the cache when present.
func (s *BalanceService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	slog.Info("GetBalances request received", "group_id", req.Msg.GroupID)

	if _, err := callerMembership(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, connectError(err)
	}

	cached, ok, err := s.cache.GetBalances(ctx, req.Msg.GroupID)
	switch {
	case err != nil:
		metrics.CacheError()
		slog.Warn("Balance cache lookup failed", "group_id", req.Msg.GroupID, "error", err)
	case ok:
		metrics.CacheHit()
		cached.Cached = true
		return connect.NewResponse(cached), nil
	default:
		metrics.CacheMiss()
	}

	h, err := s.loadHistory(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetBalances failed to load history", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	start := time.Now()
	report, err := calculator.Settle(h.members, h.expenses, h.payments)
	if err != nil {
		kind := "input"
		if errors.Is(err, calculator.ErrInconsistent) {
			kind = "inconsistent"
		}
		metrics.SettleFailed(kind)
		slog.Error("GetBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	metrics.ObserveSettle(start, len(report.Payments))

	resp := &api.GetBalancesResponse{
		GroupID:           req.Msg.GroupID,
		NetBalances:       balancesToAPI(report.NetBalances),
		DetailedBalances:  debtsToAPI(report.DetailedBalances),
		SimplifiedDebts:   debtsToAPI(report.SimplifiedGraph),
		SuggestedPayments: suggestedToAPI(report.Payments),
	}
	if err := s.cache.SetBalances(ctx, req.Msg.GroupID, resp); err != nil {
		slog.Warn("Failed to cache balances", "group_id", req.Msg.GroupID, "error", err)
	}

	slog.Info("GetBalances successful",
		"group_id", req.Msg.GroupID,
		"members", len(h.members),
		"suggested_payments", len(report.Payments),
	)
	return connect.NewResponse(resp), nil
}

// SimplifyDebts runs transaction simplification over the detailed balances
// alone and reports how many debts it removed.
func (s *BalanceService) SimplifyDebts(ctx context.Context, req *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	if _, err := callerMembership(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, connectError(err)
	}

	h, err := s.loadHistory(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}

	detailed := calculator.NewBalanceCalculator(h.members, h.expenses, h.payments).CalculateDetailedBalances()
	simplified := calculator.SimplifyTransactions(detailed)

	slog.Info("SimplifyDebts successful",
		"group_id", req.Msg.GroupID,
		"original", detailed.Len(),
		"simplified", simplified.Len(),
	)
	return connect.NewResponse(&api.SimplifyDebtsResponse{
		Debts:           debtsToAPI(simplified),
		OriginalCount:   detailed.Len(),
		SimplifiedCount: simplified.Len(),
	}), nil
}
