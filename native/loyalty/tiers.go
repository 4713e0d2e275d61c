package loyalty

import "math/big"

// Tier is the ordered loyalty rank derived from cumulative spend. It gates the
// fee discount and cashback rate and is recomputed on every settlement rather
// than stored, so it can never desynchronise from the spend that implies it.
type Tier uint8

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
	TierVIP
)

// tierEntry binds a spend threshold to the rates unlocked at that threshold.
type tierEntry struct {
	tier      Tier
	threshold *big.Int
	discount  uint32
	cashback  uint32
}

// tierTable is ordered by ascending threshold. Thresholds are denominated in
// the policy currency (ValueUnit scaling). Four entries, linear scan.
var tierTable = []tierEntry{
	{tier: TierBronze, threshold: big.NewInt(0), discount: 2, cashback: 3},
	{tier: TierSilver, threshold: big.NewInt(200 * ValueUnit), discount: 5, cashback: 5},
	{tier: TierGold, threshold: big.NewInt(500 * ValueUnit), discount: 8, cashback: 7},
	{tier: TierVIP, threshold: big.NewInt(1000 * ValueUnit), discount: 12, cashback: 10},
}

// VIPThreshold returns the cumulative spend at which the membership badge is
// issued.
func VIPThreshold() *big.Int {
	return new(big.Int).Set(tierTable[len(tierTable)-1].threshold)
}

// TierForSpend classifies cumulative spend into a tier. Nil or negative spend
// maps to Bronze.
func TierForSpend(spend *big.Int) Tier {
	if spend == nil {
		return TierBronze
	}
	result := TierBronze
	for _, entry := range tierTable {
		if spend.Cmp(entry.threshold) >= 0 {
			result = entry.tier
		}
	}
	return result
}

func (t Tier) entry() tierEntry {
	for _, entry := range tierTable {
		if entry.tier == t {
			return entry
		}
	}
	return tierTable[0]
}

// DiscountPercent returns the fee discount unlocked by the tier.
func (t Tier) DiscountPercent() uint32 {
	return t.entry().discount
}

// CashbackPercent returns the cashback rate unlocked by the tier.
func (t Tier) CashbackPercent() uint32 {
	return t.entry().cashback
}

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierVIP:
		return "vip"
	default:
		return "unknown"
	}
}
