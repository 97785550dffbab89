package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitgroup/internal/auth"
	"github.com/mmynk/splitgroup/internal/cache"
	"github.com/mmynk/splitgroup/internal/storage/sqlite"
	"github.com/mmynk/splitgroup/pkg/api"
	"github.com/mmynk/splitgroup/pkg/api/apiconnect"
)

// testEnv is a full server over a temporary database with a client per service.
type testEnv struct {
	store    *sqlite.SQLiteStore
	auth     apiconnect.AuthServiceClient
	groups   apiconnect.GroupServiceClient
	expenses apiconnect.ExpenseServiceClient
	payments apiconnect.PaymentServiceClient
	balances apiconnect.BalanceServiceClient
}

type testUser struct {
	ID    string
	Email string
	Token string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "splitgroup-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	services := NewServices(store, cache.NewMemoryCache(time.Minute), authenticator, jwtManager)

	mux := http.NewServeMux()
	services.Mount(mux, jwtManager)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		store:    store,
		auth:     apiconnect.NewAuthServiceClient(server.Client(), server.URL),
		groups:   apiconnect.NewGroupServiceClient(server.Client(), server.URL),
		expenses: apiconnect.NewExpenseServiceClient(server.Client(), server.URL),
		payments: apiconnect.NewPaymentServiceClient(server.Client(), server.URL),
		balances: apiconnect.NewBalanceServiceClient(server.Client(), server.URL),
	}
}

// withToken builds a request authenticated as the token's user.
func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func (e *testEnv) register(t *testing.T, name string) testUser {
	t.Helper()
	email := name + "@example.com"
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: name,
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register %s failed: %v", name, err)
	}
	return testUser{ID: resp.Msg.User.ID, Email: email, Token: resp.Msg.Token}
}

// newGroup creates a group owned by creator with the other users as members.
func (e *testEnv) newGroup(t *testing.T, creator testUser, members ...testUser) string {
	t.Helper()
	ctx := context.Background()
	resp, err := e.groups.CreateGroup(ctx, withToken(creator.Token, &api.CreateGroupRequest{Name: "Trip"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := resp.Msg.Group.ID
	for _, m := range members {
		if _, err := e.groups.AddMember(ctx, withToken(creator.Token, &api.AddMemberRequest{GroupID: groupID, UserID: m.ID})); err != nil {
			t.Fatalf("AddMember %s failed: %v", m.Email, err)
		}
	}
	return groupID
}

func (e *testEnv) addExpense(t *testing.T, payer testUser, groupID, total string, participants ...string) *api.Expense {
	t.Helper()
	resp, err := e.expenses.CreateExpense(context.Background(), withToken(payer.Token, &api.CreateExpenseRequest{
		GroupID:      groupID,
		Description:  "Dinner",
		TotalAmount:  total,
		Participants: participants,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}

func sharesOf(shares []*api.Share) map[string]string {
	out := make(map[string]string, len(shares))
	for _, s := range shares {
		out[s.UserID] = s.Amount
	}
	return out
}
