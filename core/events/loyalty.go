package events

import (
	"math/big"
	"strconv"

	"dinehook/core/types"
)

const (
	// TypeRestaurantRegistered is emitted when a restaurant policy record is
	// created or updated.
	TypeRestaurantRegistered = "loyalty.restaurant.registered"
	// TypeRestaurantDeactivated is emitted when a restaurant is paused without
	// removing its historical record.
	TypeRestaurantDeactivated = "loyalty.restaurant.deactivated"
	// TypeReferrerSet is emitted when a user's write-once referrer link is
	// established.
	TypeReferrerSet = "loyalty.referrer.set"
	// TypeCashbackMinted is emitted after the reward issuer minted the cashback
	// for a settled swap.
	TypeCashbackMinted = "loyalty.cashback.minted"
	// TypeReferralPaid is emitted when a referral bonus is minted, either the
	// ongoing referrer share or the one-time referee bonus.
	TypeReferralPaid = "loyalty.referral.paid"
	// TypeTierPromoted is emitted when a settlement moves a user into a higher
	// tier.
	TypeTierPromoted = "loyalty.tier.promoted"
	// TypeBadgeIssued is emitted when the membership issuer grants the VIP
	// badge.
	TypeBadgeIssued = "loyalty.badge.issued"
	// TypePoolInitialized is emitted when the dynamic fee override flag is
	// seeded for a pool.
	TypePoolInitialized = "loyalty.pool.initialized"
)

// RestaurantRegistered captures the policy stored for a restaurant after an
// admin add-or-update call.
type RestaurantRegistered struct {
	ID          [32]byte
	Owner       [20]byte
	Active      bool
	OpenHour    uint8
	CloseHour   uint8
	MaxTxAmount *big.Int
}

// EventType implements the Event interface.
func (RestaurantRegistered) EventType() string { return TypeRestaurantRegistered }

// RestaurantDeactivated captures the pause operation for a restaurant.
type RestaurantDeactivated struct {
	ID     [32]byte
	Caller [20]byte
}

// EventType implements the Event interface.
func (RestaurantDeactivated) EventType() string { return TypeRestaurantDeactivated }

// ReferrerSet captures the write-once referral link between two users.
type ReferrerSet struct {
	User     [20]byte
	Referrer [20]byte
}

// EventType implements the Event interface.
func (ReferrerSet) EventType() string { return TypeReferrerSet }

// CashbackMinted records the reward minted to the payer of a settled swap.
type CashbackMinted struct {
	User       [20]byte
	Restaurant [32]byte
	Amount     *big.Int
	Reward     *big.Int
	Tier       string
}

// EventType implements the Event interface.
func (CashbackMinted) EventType() string { return TypeCashbackMinted }

// Event converts the cashback payout to the generic event payload.
func (e CashbackMinted) Event() *types.Event {
	amount := big.NewInt(0)
	if e.Amount != nil {
		amount = new(big.Int).Set(e.Amount)
	}
	reward := big.NewInt(0)
	if e.Reward != nil {
		reward = new(big.Int).Set(e.Reward)
	}
	return &types.Event{
		Type: TypeCashbackMinted,
		Attributes: map[string]string{
			"amount": amount.String(),
			"reward": reward.String(),
			"tier":   e.Tier,
		},
	}
}

// ReferralPaid records a referral bonus payout. FirstSwap marks the one-time
// referee bonus as opposed to the ongoing referrer share.
type ReferralPaid struct {
	Recipient [20]byte
	Referee   [20]byte
	Reward    *big.Int
	FirstSwap bool
}

// EventType implements the Event interface.
func (ReferralPaid) EventType() string { return TypeReferralPaid }

// TierPromoted records a tier upgrade derived from cumulative spend.
type TierPromoted struct {
	User [20]byte
	From string
	To   string
}

// EventType implements the Event interface.
func (TierPromoted) EventType() string { return TypeTierPromoted }

// BadgeIssued records the one-time VIP membership badge issuance.
type BadgeIssued struct {
	User [20]byte
}

// EventType implements the Event interface.
func (BadgeIssued) EventType() string { return TypeBadgeIssued }

// PoolInitialized records the one-time seeding of a pool's fee override flag.
type PoolInitialized struct {
	Pool       [32]byte
	OverrideOn bool
}

// EventType implements the Event interface.
func (PoolInitialized) EventType() string { return TypePoolInitialized }

// Event converts the pool seed transition to the generic event payload.
func (e PoolInitialized) Event() *types.Event {
	return &types.Event{
		Type: TypePoolInitialized,
		Attributes: map[string]string{
			"override": strconv.FormatBool(e.OverrideOn),
		},
	}
}
