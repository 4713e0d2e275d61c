package loyalty

import "time"

// FeeOverride carries the fee the host engine applies to a single swap. The
// Override flag marks it as a one-shot replacement of the pool's standing fee
// rather than a permanent change.
type FeeOverride struct {
	Bps      uint32
	Override bool
}

// peakHour reports whether the UTC hour falls in the lunch or dinner window.
func peakHour(hour int) bool {
	switch hour {
	case 11, 12, 13, 17, 18, 19, 20:
		return true
	}
	return false
}

// QuoteFee computes the overridden fee for a single swap from the user's tier
// and the time of day. The discount is never negative, so the quoted fee never
// exceeds the base fee; it is clamped so it never goes below zero either.
//
// The function is pure and side-effect-free, so it doubles as the read-only
// fee estimate exposed on the query surface.
func QuoteFee(tier Tier, now time.Time, baseFeeBps uint32) FeeOverride {
	discount := tier.DiscountPercent()
	if peakHour(now.UTC().Hour()) {
		discount += PeakDiscountPercent
	}
	if discount > PercentDenominator {
		discount = PercentDenominator
	}
	fee := baseFeeBps - baseFeeBps*discount/PercentDenominator
	return FeeOverride{Bps: fee, Override: true}
}

// TierFor resolves the current tier for a user, treating an unknown user as
// Bronze with no loyalty history.
func TierFor(st SettlementState, user [20]byte) Tier {
	record, ok, err := st.UserLoyalty(user)
	if err != nil || !ok {
		return TierBronze
	}
	return record.Tier()
}
