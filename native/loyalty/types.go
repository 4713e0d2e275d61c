package loyalty

import "math/big"

// RestaurantID uniquely identifies a merchant policy record. In practice this
// is supplied by the onboarding tooling, e.g. keccak256(owner || salt).
type RestaurantID [32]byte

// Restaurant captures the merchant policy evaluated before every swap.
// Records are never deleted, only deactivated, so settled swaps keep a valid
// historical reference.
type Restaurant struct {
	ID    RestaurantID
	Owner [20]byte
	// Active gates the merchant without removing the record.
	Active bool
	// OpenHour and CloseHour bound the UTC operating window [open, close).
	// Equal values mean the merchant is always open. A window that wraps
	// midnight (open > close) is supported.
	OpenHour  uint8
	CloseHour uint8
	// MaxTxAmount caps a single swap in the policy currency. Zero means
	// unlimited.
	MaxTxAmount *big.Int
}

// Clone returns a deep copy of the restaurant record.
func (r *Restaurant) Clone() *Restaurant {
	if r == nil {
		return nil
	}
	clone := *r
	clone.MaxTxAmount = cloneBigInt(r.MaxTxAmount)
	return &clone
}

// UserLoyalty tracks the per-user ledger mutated exclusively by the settlement
// engine. Spend, swap count, and earned totals only ever grow; the referrer
// link and first-swap bonus flag are write-once.
type UserLoyalty struct {
	Address         [20]byte
	CumulativeSpend *big.Int
	SwapCount       uint64
	TotalEarned     *big.Int
	Referrer        [20]byte
	HasReferrer     bool
	// FirstSwapBonusPaid marks the one-time referee bonus as consumed.
	FirstSwapBonusPaid bool
}

// Clone returns a deep copy of the ledger record.
func (u *UserLoyalty) Clone() *UserLoyalty {
	if u == nil {
		return nil
	}
	clone := *u
	clone.CumulativeSpend = cloneBigInt(u.CumulativeSpend)
	clone.TotalEarned = cloneBigInt(u.TotalEarned)
	return &clone
}

// Normalize ensures the big integer fields are non-nil so the record can be
// persisted and compared safely. The receiver is returned for fluent usage.
func (u *UserLoyalty) Normalize() *UserLoyalty {
	if u == nil {
		return nil
	}
	if u.CumulativeSpend == nil {
		u.CumulativeSpend = big.NewInt(0)
	}
	if u.TotalEarned == nil {
		u.TotalEarned = big.NewInt(0)
	}
	return u
}

// Tier reports the loyalty rank derived from cumulative spend. It is never
// read from storage.
func (u *UserLoyalty) Tier() Tier {
	if u == nil {
		return TierBronze
	}
	return TierForSpend(u.CumulativeSpend)
}

// SwapContext identifies the payer and merchant for a single swap. It is
// decoded from the per-call context blob; absence of a context is a valid
// state handled by the orchestrator, not an error.
type SwapContext struct {
	User       [20]byte
	Restaurant RestaurantID
}

// Totals aggregates the process-wide settlement accounting: total value-side
// volume settled and total reward tokens distributed.
type Totals struct {
	Volume  *big.Int
	Rewards *big.Int
}

// Clone returns a copy of the totals with duplicated big.Int values.
func (t Totals) Clone() Totals {
	return Totals{Volume: cloneBigInt(t.Volume), Rewards: cloneBigInt(t.Rewards)}
}

// Normalize ensures the totals carry non-nil values.
func (t *Totals) Normalize() *Totals {
	if t == nil {
		return nil
	}
	if t.Volume == nil {
		t.Volume = big.NewInt(0)
	}
	if t.Rewards == nil {
		t.Rewards = big.NewInt(0)
	}
	return t
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}
