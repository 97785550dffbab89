package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitgroup/internal/cache"
	"github.com/mmynk/splitgroup/internal/models"
	"github.com/mmynk/splitgroup/internal/storage"
	"github.com/mmynk/splitgroup/pkg/api"
	"github.com/mmynk/splitgroup/pkg/api/apiconnect"
)

var _ apiconnect.PaymentServiceHandler = (*PaymentService)(nil)

// PaymentService implements the Connect PaymentService.
type PaymentService struct {
	store storage.Store
	cache cache.Cache
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(store storage.Store, c cache.Cache) *PaymentService {
	return &PaymentService{store: store, cache: c}
}

// RecordPayment records money handed from one active member to another.
func (s *PaymentService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	slog.Info("RecordPayment request received",
		"group_id", req.Msg.GroupID,
		"receiver_id", req.Msg.ReceiverID,
		"amount", req.Msg.Amount,
	)

	caller, err := activeCaller(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}

	payerID := req.Msg.PayerID
	if payerID == "" {
		payerID = caller.UserID
	}
	if req.Msg.ReceiverID == "" {
		return nil, connectError(invalidArgument("receiver_id required"))
	}
	if payerID == req.Msg.ReceiverID {
		return nil, connectError(invalidArgument("payer and receiver must be different users"))
	}

	amount, err := parseMoney("amount", req.Msg.Amount)
	if err != nil {
		return nil, connectError(err)
	}
	date, err := resolveDate("payment_date", req.Msg.PaymentDate)
	if err != nil {
		return nil, connectError(err)
	}

	memberships, err := s.store.ListMemberships(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}
	if err := requireActiveMembers(memberships, payerID, req.Msg.ReceiverID); err != nil {
		return nil, connectError(err)
	}

	payment := &models.Payment{
		GroupID:     req.Msg.GroupID,
		PayerID:     payerID,
		ReceiverID:  req.Msg.ReceiverID,
		Amount:      amount,
		Currency:    currencyOrDefault(req.Msg.Currency),
		PaymentDate: date,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.Error("RecordPayment failed", "error", err)
		return nil, connectError(err)
	}
	invalidateBalances(ctx, s.cache, payment.GroupID)

	slog.Info("Payment recorded", "payment_id", payment.ID, "group_id", payment.GroupID)
	return connect.NewResponse(&api.RecordPaymentResponse{Payment: paymentToAPI(payment)}), nil
}

// ListPayments returns the group's payments in creation order.
func (s *PaymentService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	if _, err := callerMembership(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, connectError(err)
	}

	payments, err := s.store.ListPaymentsByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListPayments failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Payment, len(payments))
	for i, p := range payments {
		out[i] = paymentToAPI(p)
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: out}), nil
}

// DeletePayment removes a payment. Only its payer may delete it.
func (s *PaymentService) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	slog.Info("DeletePayment request received", "payment_id", req.Msg.PaymentID)

	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	if req.Msg.PaymentID == "" {
		return nil, connectError(invalidArgument("payment_id required"))
	}

	payment, err := s.store.GetPayment(ctx, req.Msg.PaymentID)
	if err != nil {
		return nil, connectError(err)
	}
	caller, err := activeCaller(ctx, s.store, payment.GroupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = fmt.Errorf("payment %s: %w", payment.ID, storage.ErrNotFound)
		}
		return nil, connectError(err)
	}
	if payment.PayerID != caller.UserID {
		return nil, connectError(ErrNotPayer)
	}

	if err := s.store.DeletePayment(ctx, payment.ID); err != nil {
		slog.Error("DeletePayment failed", "error", err)
		return nil, connectError(err)
	}
	invalidateBalances(ctx, s.cache, payment.GroupID)

	slog.Info("Payment deleted", "payment_id", payment.ID)
	return connect.NewResponse(&api.DeletePaymentResponse{}), nil
}
