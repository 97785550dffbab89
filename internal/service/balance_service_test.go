package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitgroup/pkg/api"
)

func planOf(payments []*api.SuggestedPayment) []string {
	var out []string
	for _, p := range payments {
		out = append(out, p.PayerID+"->"+p.ReceiverID+":"+p.Amount)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGetBalances(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	groupID := env.newGroup(t, alice, bob, carol)
	ctx := context.Background()

	env.addExpense(t, alice, groupID, "90.00")
	env.addExpense(t, bob, groupID, "30.00", alice.ID, bob.ID)

	resp, err := env.balances.GetBalances(ctx, withToken(carol.Token, &api.GetBalancesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if resp.Msg.Cached {
		t.Error("first computation must not come from the cache")
	}

	wantNet := map[string]string{alice.ID: "45.00", bob.ID: "-15.00", carol.ID: "-30.00"}
	if len(resp.Msg.NetBalances) != 3 {
		t.Fatalf("expected 3 balances, got %d", len(resp.Msg.NetBalances))
	}
	for i, b := range resp.Msg.NetBalances {
		if b.Amount != wantNet[b.UserID] {
			t.Errorf("net of %s: expected %s, got %s", b.UserID, wantNet[b.UserID], b.Amount)
		}
		if want := []string{alice.ID, bob.ID, carol.ID}[i]; b.UserID != want {
			t.Errorf("balance %d: expected member order, got %s", i, b.UserID)
		}
	}
	if len(resp.Msg.DetailedBalances) != 3 {
		t.Errorf("expected 3 detailed debts, got %d", len(resp.Msg.DetailedBalances))
	}

	wantPlan := []string{carol.ID + "->" + alice.ID + ":30.00", bob.ID + "->" + alice.ID + ":15.00"}
	if got := planOf(resp.Msg.SuggestedPayments); !equalStrings(got, wantPlan) {
		t.Errorf("plan: expected %v, got %v", wantPlan, got)
	}

	cached, err := env.balances.GetBalances(ctx, withToken(alice.Token, &api.GetBalancesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetBalances (cached) failed: %v", err)
	}
	if !cached.Msg.Cached {
		t.Error("second computation should come from the cache")
	}
	if got := planOf(cached.Msg.SuggestedPayments); !equalStrings(got, wantPlan) {
		t.Errorf("cached plan: expected %v, got %v", wantPlan, got)
	}

	// A payment invalidates the cached report.
	if _, err := env.payments.RecordPayment(ctx, withToken(bob.Token, &api.RecordPaymentRequest{
		GroupID:    groupID,
		ReceiverID: alice.ID,
		Amount:     "15.00",
	})); err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	after, err := env.balances.GetBalances(ctx, withToken(alice.Token, &api.GetBalancesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetBalances (after payment) failed: %v", err)
	}
	if after.Msg.Cached {
		t.Error("expected the cache to be invalidated by the payment")
	}
	wantPlan = []string{carol.ID + "->" + alice.ID + ":30.00"}
	if got := planOf(after.Msg.SuggestedPayments); !equalStrings(got, wantPlan) {
		t.Errorf("plan after payment: expected %v, got %v", wantPlan, got)
	}
}

func TestGetBalancesIncludesRemovedMembers(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	groupID := env.newGroup(t, alice, bob)
	ctx := context.Background()

	env.addExpense(t, alice, groupID, "20.00")
	if _, err := env.groups.RemoveMember(ctx, withToken(alice.Token, &api.RemoveMemberRequest{GroupID: groupID, UserID: bob.ID})); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	resp, err := env.balances.GetBalances(ctx, withToken(bob.Token, &api.GetBalancesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	want := []string{bob.ID + "->" + alice.ID + ":10.00"}
	if got := planOf(resp.Msg.SuggestedPayments); !equalStrings(got, want) {
		t.Errorf("expected removed member to still owe, got %v", got)
	}
}

func TestGetBalancesEmptyGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice")
	groupID := env.newGroup(t, alice)

	resp, err := env.balances.GetBalances(context.Background(), withToken(alice.Token, &api.GetBalancesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if len(resp.Msg.NetBalances) != 1 || resp.Msg.NetBalances[0].Amount != "0.00" {
		t.Errorf("expected a single zero balance, got %+v", resp.Msg.NetBalances)
	}
	if len(resp.Msg.SuggestedPayments) != 0 || len(resp.Msg.SimplifiedDebts) != 0 {
		t.Error("expected nothing to settle")
	}
}

func TestGetBalancesNotMember(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice")
	mallory := env.register(t, "mallory")
	groupID := env.newGroup(t, alice)

	_, err := env.balances.GetBalances(context.Background(), withToken(mallory.Token, &api.GetBalancesRequest{GroupID: groupID}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = env.balances.SimplifyDebts(context.Background(), withToken(mallory.Token, &api.SimplifyDebtsRequest{GroupID: groupID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestSimplifyDebts(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	groupID := env.newGroup(t, alice, bob, carol)

	// bob owes alice, carol owes bob and alice owes carol 10.00 each.
	env.addExpense(t, alice, groupID, "20.00", alice.ID, bob.ID)
	env.addExpense(t, bob, groupID, "20.00", bob.ID, carol.ID)
	env.addExpense(t, carol, groupID, "20.00", carol.ID, alice.ID)

	resp, err := env.balances.SimplifyDebts(context.Background(), withToken(alice.Token, &api.SimplifyDebtsRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("SimplifyDebts failed: %v", err)
	}
	if resp.Msg.OriginalCount != 3 {
		t.Errorf("original: expected 3 debts, got %d", resp.Msg.OriginalCount)
	}
	if resp.Msg.SimplifiedCount != 0 || len(resp.Msg.Debts) != 0 {
		t.Errorf("expected the cycle to cancel out, got %+v", resp.Msg.Debts)
	}
}
