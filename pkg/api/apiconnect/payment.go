package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitgroup/pkg/api"
)

const PaymentServiceName = "splitgroup.v1.PaymentService"

var (
	PaymentServiceRecordPaymentProcedure = procedure(PaymentServiceName, "RecordPayment")
	PaymentServiceListPaymentsProcedure  = procedure(PaymentServiceName, "ListPayments")
	PaymentServiceDeletePaymentProcedure = procedure(PaymentServiceName, "DeletePayment")
)

// PaymentServiceHandler is implemented by the server side of PaymentService.
type PaymentServiceHandler interface {
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
}

// NewPaymentServiceHandler returns the path prefix and handler serving svc.
func NewPaymentServiceHandler(svc PaymentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(PaymentServiceRecordPaymentProcedure, connect.NewUnaryHandler(PaymentServiceRecordPaymentProcedure, svc.RecordPayment, opts...))
	mux.Handle(PaymentServiceListPaymentsProcedure, connect.NewUnaryHandler(PaymentServiceListPaymentsProcedure, svc.ListPayments, opts...))
	mux.Handle(PaymentServiceDeletePaymentProcedure, connect.NewUnaryHandler(PaymentServiceDeletePaymentProcedure, svc.DeletePayment, opts...))
	return "/" + PaymentServiceName + "/", mux
}

// PaymentServiceClient is a client for PaymentService.
type PaymentServiceClient interface {
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
}

type paymentServiceClient struct {
	recordPayment *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	listPayments  *connect.Client[api.ListPaymentsRequest, api.ListPaymentsResponse]
	deletePayment *connect.Client[api.DeletePaymentRequest, api.DeletePaymentResponse]
}

// NewPaymentServiceClient constructs a client for PaymentService at baseURL.
func NewPaymentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PaymentServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &paymentServiceClient{
		recordPayment: connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+PaymentServiceRecordPaymentProcedure, opts...),
		listPayments:  connect.NewClient[api.ListPaymentsRequest, api.ListPaymentsResponse](httpClient, baseURL+PaymentServiceListPaymentsProcedure, opts...),
		deletePayment: connect.NewClient[api.DeletePaymentRequest, api.DeletePaymentResponse](httpClient, baseURL+PaymentServiceDeletePaymentProcedure, opts...),
	}
}

func (c *paymentServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *paymentServiceClient) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}

func (c *paymentServiceClient) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	return c.deletePayment.CallUnary(ctx, req)
}
