package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitgroup/pkg/api"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice")
	if alice.ID == "" || alice.Token == "" {
		t.Fatalf("expected user ID and token, got %+v", alice)
	}

	login, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "ALICE@example.com",
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.User.ID != alice.ID {
		t.Errorf("expected user %s, got %s", alice.ID, login.Msg.User.ID)
	}

	me, err := env.auth.GetCurrentUser(ctx, withToken(login.Msg.Token, &api.GetCurrentUserRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Msg.User.Email != "alice@example.com" || me.Msg.User.DisplayName != "alice" {
		t.Errorf("unexpected current user: %+v", me.Msg.User)
	}
}

func TestRegisterErrors(t *testing.T) {
	env := setupTestServer(t)
	env.register(t, "alice")

	tests := []struct {
		name string
		req  *api.RegisterRequest
		want connect.Code
	}{
		{"duplicate email", &api.RegisterRequest{Email: "alice@example.com", DisplayName: "Alice", Password: "password123"}, connect.CodeAlreadyExists},
		{"weak password", &api.RegisterRequest{Email: "bob@example.com", DisplayName: "Bob", Password: "short"}, connect.CodeInvalidArgument},
		{"bad email", &api.RegisterRequest{Email: "not-an-email", DisplayName: "Bob", Password: "password123"}, connect.CodeInvalidArgument},
		{"missing name", &api.RegisterRequest{Email: "bob@example.com", Password: "password123"}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, tt.want)
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupTestServer(t)
	env.register(t, "alice")

	_, err := env.auth.Login(context.Background(), connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestProtectedServicesRequireToken(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = env.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = env.groups.ListGroups(ctx, withToken("garbage", &api.ListGroupsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}
