package loyalty

import (
	"errors"
	"testing"
	"time"
)

func newTestHook(t *testing.T, baseFeeBps uint32) (*Hook, *mockState, *mockMinter) {
	t.Helper()
	state := newMockState()
	registry := NewRegistry(state)
	minter := newMockMinter()
	engine := NewEngine(minter, newMockBadges())
	return NewHook(state, registry, engine, baseFeeBps), state, minter
}

func testPool(b byte) PoolID {
	var id PoolID
	id[0] = b
	return id
}

func TestOnPoolInitializedOnce(t *testing.T) {
	hook, state, _ := newTestHook(t, 300)
	pool := testPool(0x01)

	on, err := hook.OnPoolInitialized(pool)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !on {
		t.Fatalf("expected fee override to be seeded on")
	}
	if _, err := hook.OnPoolInitialized(pool); !errors.Is(err, ErrPoolAlreadyInitialized) {
		t.Fatalf("expected ErrPoolAlreadyInitialized, got %v", err)
	}
	if on, exists, _ := state.PoolFeeOverride(pool); !exists || !on {
		t.Fatalf("expected flag to survive the rejected repeat")
	}
}

func TestOnBeforeSwapNoContextPassThrough(t *testing.T) {
	hook, _, _ := newTestHook(t, 300)
	pre, err := hook.OnBeforeSwap(SwapParams{Pool: testPool(0x02), Amount: units(10)}, nil, time.Now())
	if err != nil {
		t.Fatalf("expected pass-through, got %v", err)
	}
	if pre.Ctx != nil {
		t.Fatalf("expected no context on pass-through")
	}
	if pre.Fee.Override {
		t.Fatalf("pass-through must not override the base fee")
	}
	// Settlement with a context-free admission never touches state.
	if err := hook.OnAfterSwap(pre, units(10), time.Now()); err != nil {
		t.Fatalf("after swap: %v", err)
	}
}

func TestOnBeforeSwapMalformedBlob(t *testing.T) {
	hook, _, _ := newTestHook(t, 300)
	_, err := hook.OnBeforeSwap(SwapParams{Pool: testPool(0x03)}, make([]byte, ContextBlobSize+4), time.Now())
	if !errors.Is(err, ErrMalformedContext) {
		t.Fatalf("expected ErrMalformedContext, got %v", err)
	}
}

func TestOnBeforeSwapConstraintRejection(t *testing.T) {
	hook, _, _ := newTestHook(t, 300)
	blob := EncodeContext(SwapContext{User: testAddr(0x41), Restaurant: testRestaurantID(0x42)})
	_, err := hook.OnBeforeSwap(SwapParams{Pool: testPool(0x04), Amount: units(10)}, blob, time.Now())
	if !errors.Is(err, ErrUnknownRestaurant) {
		t.Fatalf("expected ErrUnknownRestaurant, got %v", err)
	}
}

func TestSwapLifecycle(t *testing.T) {
	hook, state, minter := newTestHook(t, 300)

	admin := testAddr(0xad)
	state.grantRole(RoleLoyaltyAdmin, admin)
	id := testRestaurantID(0x43)
	registry := NewRegistry(state)
	if err := registry.AddOrUpdate(admin, &Restaurant{ID: id, Owner: testAddr(0x44), Active: true}); err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}

	user := testAddr(0x45)
	blob := EncodeContext(SwapContext{User: user, Restaurant: id})
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	pre, err := hook.OnBeforeSwap(SwapParams{Pool: testPool(0x05), Amount: units(100)}, blob, now)
	if err != nil {
		t.Fatalf("before swap: %v", err)
	}
	if pre.Ctx == nil || pre.Ctx.User != user {
		t.Fatalf("expected decoded context, got %#v", pre.Ctx)
	}
	if pre.Tier != TierBronze {
		t.Fatalf("expected bronze pricing for a fresh user, got %s", pre.Tier)
	}
	if pre.Fee.Bps != 294 || !pre.Fee.Override {
		t.Fatalf("expected 294 bps override, got %#v", pre.Fee)
	}

	if err := hook.OnAfterSwap(pre, units(100), now); err != nil {
		t.Fatalf("after swap: %v", err)
	}
	if got := minter.balance(user); got != units(3).String() {
		t.Fatalf("expected 3 units cashback, got %s", got)
	}
	record, ok, _ := state.UserLoyalty(user)
	if !ok || record.SwapCount != 1 {
		t.Fatalf("expected one settled swap on the ledger, got %#v", record)
	}
}

func TestQuoteFeeForReadOnly(t *testing.T) {
	hook, state, _ := newTestHook(t, 300)
	user := testAddr(0x46)
	state.PutUserLoyalty((&UserLoyalty{Address: user, CumulativeSpend: units(1200)}).Normalize())

	offPeak := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	if fee := hook.QuoteFeeFor(user, offPeak); fee.Bps != 264 {
		t.Fatalf("expected 264 bps for VIP off-peak, got %d", fee.Bps)
	}
	record, _, _ := state.UserLoyalty(user)
	if record.SwapCount != 0 || record.CumulativeSpend.Cmp(units(1200)) != 0 {
		t.Fatalf("quote must not mutate the ledger, got %#v", record)
	}
}

func TestNewHookClampsBaseFee(t *testing.T) {
	hook, _, _ := newTestHook(t, BaseFeeBpsMax+500)
	if hook.BaseFeeBps() != BaseFeeBpsMax {
		t.Fatalf("expected base fee clamped to %d, got %d", BaseFeeBpsMax, hook.BaseFeeBps())
	}
}
