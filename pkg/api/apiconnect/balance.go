package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitgroup/pkg/api"
)

const BalanceServiceName = "splitgroup.v1.BalanceService"

var (
	BalanceServiceGetBalancesProcedure   = procedure(BalanceServiceName, "GetBalances")
	BalanceServiceSimplifyDebtsProcedure = procedure(BalanceServiceName, "SimplifyDebts")
)

// BalanceServiceHandler is implemented by the server side of BalanceService.
type BalanceServiceHandler interface {
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	SimplifyDebts(context.Context, *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error)
}

// NewBalanceServiceHandler returns the path prefix and handler serving svc.
func NewBalanceServiceHandler(svc BalanceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(BalanceServiceGetBalancesProcedure, connect.NewUnaryHandler(BalanceServiceGetBalancesProcedure, svc.GetBalances, opts...))
	mux.Handle(BalanceServiceSimplifyDebtsProcedure, connect.NewUnaryHandler(BalanceServiceSimplifyDebtsProcedure, svc.SimplifyDebts, opts...))
	return "/" + BalanceServiceName + "/", mux
}

// BalanceServiceClient is a client for BalanceService.
type BalanceServiceClient interface {
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	SimplifyDebts(context.Context, *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error)
}

type balanceServiceClient struct {
	getBalances   *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	simplifyDebts *connect.Client[api.SimplifyDebtsRequest, api.SimplifyDebtsResponse]
}

// NewBalanceServiceClient constructs a client for BalanceService at baseURL.
func NewBalanceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BalanceServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &balanceServiceClient{
		getBalances:   connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+BalanceServiceGetBalancesProcedure, opts...),
		simplifyDebts: connect.NewClient[api.SimplifyDebtsRequest, api.SimplifyDebtsResponse](httpClient, baseURL+BalanceServiceSimplifyDebtsProcedure, opts...),
	}
}

func (c *balanceServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *balanceServiceClient) SimplifyDebts(ctx context.Context, req *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	return c.simplifyDebts.CallUnary(ctx, req)
}
