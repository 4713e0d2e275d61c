package loyalty

import (
	"errors"
	"math/big"
	"testing"
)

func TestRegistryRequiresAdminRole(t *testing.T) {
	state := newMockState()
	registry := NewRegistry(state)
	rec := &Restaurant{ID: testRestaurantID(0x01), Owner: testAddr(0x01), Active: true}

	if err := registry.AddOrUpdate(testAddr(0x02), rec); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := registry.Deactivate(testAddr(0x02), rec.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRegistryAddAndGet(t *testing.T) {
	state := newMockState()
	registry := NewRegistry(state)
	admin := testAddr(0xad)
	state.grantRole(RoleLoyaltyAdmin, admin)

	rec := &Restaurant{
		ID:          testRestaurantID(0x02),
		Owner:       testAddr(0x03),
		Active:      true,
		OpenHour:    9,
		CloseHour:   21,
		MaxTxAmount: units(100),
	}
	if err := registry.AddOrUpdate(admin, rec); err != nil {
		t.Fatalf("add: %v", err)
	}

	stored, ok := registry.Get(rec.ID)
	if !ok {
		t.Fatalf("expected restaurant to resolve")
	}
	if stored.Owner != rec.Owner || stored.OpenHour != 9 || stored.CloseHour != 21 {
		t.Fatalf("unexpected stored record %#v", stored)
	}
	if stored.MaxTxAmount.Cmp(units(100)) != 0 {
		t.Fatalf("expected cap 100 units, got %s", stored.MaxTxAmount)
	}

	// Updates overwrite in place, including the owner payout wallet.
	rec.Owner = testAddr(0x04)
	if err := registry.AddOrUpdate(admin, rec); err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, _ = registry.Get(rec.ID)
	if stored.Owner != testAddr(0x04) {
		t.Fatalf("expected owner update, got %x", stored.Owner)
	}
}

func TestRegistryRejectsInvalidRecords(t *testing.T) {
	state := newMockState()
	registry := NewRegistry(state)
	admin := testAddr(0xad)
	state.grantRole(RoleLoyaltyAdmin, admin)

	if err := registry.AddOrUpdate(admin, nil); !errors.Is(err, ErrNilRestaurant) {
		t.Fatalf("expected ErrNilRestaurant, got %v", err)
	}
	err := registry.AddOrUpdate(admin, &Restaurant{ID: testRestaurantID(0x05), OpenHour: 24})
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
	err = registry.AddOrUpdate(admin, &Restaurant{ID: testRestaurantID(0x06), MaxTxAmount: big.NewInt(-1)})
	if !errors.Is(err, ErrInvalidRestaurant) {
		t.Fatalf("expected ErrInvalidRestaurant, got %v", err)
	}
}

func TestRegistryDeactivateKeepsRecord(t *testing.T) {
	state := newMockState()
	registry := NewRegistry(state)
	admin := testAddr(0xad)
	state.grantRole(RoleLoyaltyAdmin, admin)

	id := testRestaurantID(0x07)
	if err := registry.AddOrUpdate(admin, &Restaurant{ID: id, Owner: testAddr(0x01), Active: true}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := registry.Deactivate(admin, id); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	stored, ok := registry.Get(id)
	if !ok {
		t.Fatalf("deactivated record must stay resolvable")
	}
	if stored.Active {
		t.Fatalf("expected record to be inactive")
	}
	// Deactivating twice is a no-op.
	if err := registry.Deactivate(admin, id); err != nil {
		t.Fatalf("repeat deactivate: %v", err)
	}
}

func TestRegistryDeactivateUnknown(t *testing.T) {
	state := newMockState()
	registry := NewRegistry(state)
	admin := testAddr(0xad)
	state.grantRole(RoleLoyaltyAdmin, admin)

	err := registry.Deactivate(admin, testRestaurantID(0x08))
	if !errors.Is(err, ErrUnknownRestaurant) {
		t.Fatalf("expected ErrUnknownRestaurant, got %v", err)
	}
}
