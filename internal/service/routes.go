package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitgroup/internal/auth"
	"github.com/mmynk/splitgroup/internal/cache"
	"github.com/mmynk/splitgroup/internal/middleware"
	"github.com/mmynk/splitgroup/internal/storage"
	"github.com/mmynk/splitgroup/pkg/api/apiconnect"
)

// Services bundles every RPC service of the server.
type Services struct {
	Auth    *AuthService
	Group   *GroupService
	Expense *ExpenseService
	Payment *PaymentService
	Balance *BalanceService
}

// NewServices creates all services over one store and balance cache.
func NewServices(store storage.Store, c cache.Cache, authenticator auth.Authenticator, jwtManager *auth.JWTManager) *Services {
	return &Services{
		Auth:    NewAuthService(authenticator, jwtManager, store, slog.Default()),
		Group:   NewGroupService(store, c),
		Expense: NewExpenseService(store, c),
		Payment: NewPaymentService(store, c),
		Balance: NewBalanceService(store, c),
	}
}

// Mount registers every service on mux. AuthService accepts anonymous calls so
// Register and Login stay public; all other services require a valid token.
func (s *Services) Mount(mux *http.ServeMux, jwtManager *auth.JWTManager) {
	public := connect.WithInterceptors(middleware.LoggingInterceptor(), middleware.OptionalAuth(jwtManager))
	protected := connect.WithInterceptors(middleware.LoggingInterceptor(), middleware.RequireAuth(jwtManager))

	mux.Handle(apiconnect.NewAuthServiceHandler(s.Auth, public))
	mux.Handle(apiconnect.NewGroupServiceHandler(s.Group, protected))
	mux.Handle(apiconnect.NewExpenseServiceHandler(s.Expense, protected))
	mux.Handle(apiconnect.NewPaymentServiceHandler(s.Payment, protected))
	mux.Handle(apiconnect.NewBalanceServiceHandler(s.Balance, protected))
}
