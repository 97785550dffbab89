// Package cache caches computed balance reports per group.
//
// Reports are derived data: any write to a group's expenses, payments or
// memberships invalidates the group's entry, and every entry also carries a
// TTL so a missed invalidation heals itself.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mmynk/splitgroup/pkg/api"
)

// Cache stores balance reports keyed by group ID.
type Cache interface {
	// GetBalances returns the cached report and whether one was found.
	GetBalances(ctx context.Context, groupID string) (*api.GetBalancesResponse, bool, error)
	SetBalances(ctx context.Context, groupID string, report *api.GetBalancesResponse) error
	Invalidate(ctx context.Context, groupID string) error
}

func balancesKey(groupID string) string {
	return "splitgroup:balances:" + groupID
}

func encode(report *api.GetBalancesResponse) ([]byte, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode balances: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*api.GetBalancesResponse, error) {
	var report api.GetBalancesResponse
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached balances: %w", err)
	}
	return &report, nil
}
