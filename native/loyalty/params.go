package loyalty

const (
	// ValueUnit is the scaling factor of one whole unit of the policy
	// currency (six decimals, stable-value).
	ValueUnit = 1_000_000
	// PercentDenominator defines the scaling factor for the percentage math
	// used by cashback and referral payouts.
	PercentDenominator = 100
	// PeakDiscountPercent is the extra fee discount applied during the lunch
	// and dinner windows.
	PeakDiscountPercent = 1
	// ReferrerSharePercent is minted to the referrer on every settled swap of
	// the referee.
	ReferrerSharePercent = 1
	// RefereeBonusPercent is minted to the referee once, on the first settled
	// swap after a referrer has been linked.
	RefereeBonusPercent = 2
	// BaseFeeBpsMax bounds the pool base fee a hook can be configured with.
	BaseFeeBpsMax = 10_000
)
