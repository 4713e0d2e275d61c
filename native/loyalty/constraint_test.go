package loyalty

import (
	"errors"
	"math/big"
	"testing"
	"time"
)

func seedRestaurant(t *testing.T, state *mockState, rec *Restaurant) *Registry {
	t.Helper()
	registry := NewRegistry(state)
	admin := testAddr(0xad)
	state.grantRole(RoleLoyaltyAdmin, admin)
	if err := registry.AddOrUpdate(admin, rec); err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	return registry
}

func atHour(hour int) time.Time {
	return time.Date(2026, 3, 2, hour, 30, 0, 0, time.UTC)
}

func TestCheckConstraintsNilContext(t *testing.T) {
	registry := NewRegistry(newMockState())
	if err := registry.CheckConstraints(nil, atHour(3), units(1)); err != nil {
		t.Fatalf("expected pass-through for nil context, got %v", err)
	}
}

func TestCheckConstraintsUnknownRestaurant(t *testing.T) {
	registry := NewRegistry(newMockState())
	ctx := &SwapContext{User: testAddr(0x01), Restaurant: testRestaurantID(0x99)}
	err := registry.CheckConstraints(ctx, atHour(12), units(1))
	if !errors.Is(err, ErrUnknownRestaurant) {
		t.Fatalf("expected ErrUnknownRestaurant, got %v", err)
	}
}

func TestCheckConstraintsInactiveRestaurant(t *testing.T) {
	state := newMockState()
	id := testRestaurantID(0x11)
	registry := seedRestaurant(t, state, &Restaurant{ID: id, Owner: testAddr(0x01), Active: false})
	ctx := &SwapContext{User: testAddr(0x02), Restaurant: id}
	err := registry.CheckConstraints(ctx, atHour(12), units(1))
	if !errors.Is(err, ErrInactiveRestaurant) {
		t.Fatalf("expected ErrInactiveRestaurant, got %v", err)
	}
}

func TestCheckConstraintsOperatingWindow(t *testing.T) {
	state := newMockState()
	id := testRestaurantID(0x12)
	registry := seedRestaurant(t, state, &Restaurant{
		ID: id, Owner: testAddr(0x01), Active: true, OpenHour: 9, CloseHour: 17,
	})
	ctx := &SwapContext{User: testAddr(0x02), Restaurant: id}

	if err := registry.CheckConstraints(ctx, atHour(9), units(1)); err != nil {
		t.Fatalf("open boundary should pass, got %v", err)
	}
	if err := registry.CheckConstraints(ctx, atHour(16), units(1)); err != nil {
		t.Fatalf("in-window hour should pass, got %v", err)
	}
	err := registry.CheckConstraints(ctx, atHour(17), units(1))
	if !errors.Is(err, ErrOutsideOperatingHours) {
		t.Fatalf("close boundary is exclusive, expected ErrOutsideOperatingHours, got %v", err)
	}
	err = registry.CheckConstraints(ctx, atHour(3), units(1))
	if !errors.Is(err, ErrOutsideOperatingHours) {
		t.Fatalf("expected ErrOutsideOperatingHours, got %v", err)
	}
}

func TestCheckConstraintsMidnightWraparound(t *testing.T) {
	state := newMockState()
	id := testRestaurantID(0x13)
	registry := seedRestaurant(t, state, &Restaurant{
		ID: id, Owner: testAddr(0x01), Active: true, OpenHour: 22, CloseHour: 6,
	})
	ctx := &SwapContext{User: testAddr(0x02), Restaurant: id}

	if err := registry.CheckConstraints(ctx, atHour(23), units(1)); err != nil {
		t.Fatalf("hour 23 should pass in [22,6), got %v", err)
	}
	if err := registry.CheckConstraints(ctx, atHour(2), units(1)); err != nil {
		t.Fatalf("hour 2 should pass in [22,6), got %v", err)
	}
	err := registry.CheckConstraints(ctx, atHour(10), units(1))
	if !errors.Is(err, ErrOutsideOperatingHours) {
		t.Fatalf("hour 10 should fail in [22,6), got %v", err)
	}
}

func TestCheckConstraintsAlwaysOpen(t *testing.T) {
	state := newMockState()
	id := testRestaurantID(0x14)
	registry := seedRestaurant(t, state, &Restaurant{
		ID: id, Owner: testAddr(0x01), Active: true, OpenHour: 7, CloseHour: 7,
	})
	ctx := &SwapContext{User: testAddr(0x02), Restaurant: id}
	for _, hour := range []int{0, 7, 12, 23} {
		if err := registry.CheckConstraints(ctx, atHour(hour), units(1)); err != nil {
			t.Fatalf("equal hours mean always open, hour %d failed: %v", hour, err)
		}
	}
}

func TestCheckConstraintsTransactionLimit(t *testing.T) {
	state := newMockState()
	id := testRestaurantID(0x15)
	registry := seedRestaurant(t, state, &Restaurant{
		ID: id, Owner: testAddr(0x01), Active: true, MaxTxAmount: units(50),
	})
	ctx := &SwapContext{User: testAddr(0x02), Restaurant: id}

	if err := registry.CheckConstraints(ctx, atHour(12), units(50)); err != nil {
		t.Fatalf("amount at cap should pass, got %v", err)
	}
	err := registry.CheckConstraints(ctx, atHour(12), units(51))
	if !errors.Is(err, ErrTransactionLimitExceeded) {
		t.Fatalf("expected ErrTransactionLimitExceeded, got %v", err)
	}
}

func TestCheckConstraintsZeroCapUnlimited(t *testing.T) {
	state := newMockState()
	id := testRestaurantID(0x16)
	registry := seedRestaurant(t, state, &Restaurant{
		ID: id, Owner: testAddr(0x01), Active: true, MaxTxAmount: big.NewInt(0),
	})
	ctx := &SwapContext{User: testAddr(0x02), Restaurant: id}
	if err := registry.CheckConstraints(ctx, atHour(12), units(1_000_000)); err != nil {
		t.Fatalf("zero cap means unlimited, got %v", err)
	}
}
