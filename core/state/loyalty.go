package state

import (
	"encoding/hex"
	"fmt"

	"dinehook/native/loyalty"
)

func userLoyaltyKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("loyalty/user/%s", hex.EncodeToString(addr[:])))
}

func poolFeeOverrideKey(pool loyalty.PoolID) []byte {
	return []byte(fmt.Sprintf("loyalty/pool/%s", hex.EncodeToString(pool[:])))
}

var loyaltyTotalsKey = []byte("loyalty/totals")

// UserLoyalty loads the ledger record for a user. The boolean reports whether
// the user has settled a swap (or been linked to a referrer) before.
func (m *Manager) UserLoyalty(addr [20]byte) (*loyalty.UserLoyalty, bool, error) {
	record := new(loyalty.UserLoyalty)
	ok, err := m.KVGet(userLoyaltyKey(addr), record)
	if err != nil || !ok {
		return nil, false, err
	}
	return record.Normalize(), true, nil
}

// PutUserLoyalty persists the ledger record under the user's address.
func (m *Manager) PutUserLoyalty(record *loyalty.UserLoyalty) error {
	if record == nil {
		return fmt.Errorf("state: nil loyalty record")
	}
	return m.KVPut(userLoyaltyKey(record.Address), record.Clone().Normalize())
}

// LoyaltyTotals loads the process-wide volume and reward accumulators.
func (m *Manager) LoyaltyTotals() (loyalty.Totals, error) {
	totals := new(loyalty.Totals)
	ok, err := m.KVGet(loyaltyTotalsKey, totals)
	if err != nil {
		return loyalty.Totals{}, err
	}
	if !ok {
		empty := loyalty.Totals{}
		return *empty.Normalize(), nil
	}
	return *totals.Normalize(), nil
}

// SetLoyaltyTotals persists the process-wide accumulators.
func (m *Manager) SetLoyaltyTotals(t loyalty.Totals) error {
	clone := t.Clone()
	return m.KVPut(loyaltyTotalsKey, &clone)
}

// PoolFeeOverride reports the stored fee-override flag for a pool. The second
// boolean distinguishes an uninitialised pool from one seeded with the flag
// off.
func (m *Manager) PoolFeeOverride(pool loyalty.PoolID) (bool, bool, error) {
	var on bool
	exists, err := m.KVGet(poolFeeOverrideKey(pool), &on)
	if err != nil {
		return false, false, err
	}
	return on, exists, nil
}

// SetPoolFeeOverride seeds or updates the fee-override flag for a pool.
func (m *Manager) SetPoolFeeOverride(pool loyalty.PoolID, on bool) error {
	return m.KVPut(poolFeeOverrideKey(pool), on)
}
