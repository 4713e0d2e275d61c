package loyalty

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"dinehook/core/events"
	"dinehook/core/types"
)

const (
	eventSettled = "loyalty.swap.settled"
	eventSkipped = "loyalty.swap.skipped"
)

// SettlementState describes the minimal functionality the settlement engine
// needs from the surrounding state implementation.
type SettlementState interface {
	UserLoyalty(addr [20]byte) (*UserLoyalty, bool, error)
	PutUserLoyalty(record *UserLoyalty) error
	LoyaltyTotals() (Totals, error)
	SetLoyaltyTotals(t Totals) error
	AppendEvent(evt *types.Event)
}

// RewardMinter is the external reward-token issuer. The engine holds an
// authorization credential on the issuer; a mint failure is fatal to the
// enclosing settlement so reward and spend accounting stay consistent.
type RewardMinter interface {
	Mint(recipient [20]byte, amount *big.Int) error
}

// BadgeIssuer is the external membership-badge issuer. Issue must tolerate a
// duplicate call for the same recipient, though the engine only requests one
// issuance per qualifying tier transition.
type BadgeIssuer interface {
	Issue(recipient [20]byte) error
}

// Engine is the post-swap mutator: it mints cashback, updates the loyalty
// ledger, pays referral bonuses, and triggers badge issuance. It runs only
// after the underlying swap has unconditionally succeeded.
type Engine struct {
	minter  RewardMinter
	badges  BadgeIssuer
	emitter events.Emitter
}

// NewEngine creates a settlement engine bound to its external collaborators.
func NewEngine(minter RewardMinter, badges BadgeIssuer) *Engine {
	return &Engine{minter: minter, badges: badges, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter used to broadcast settlement
// outcomes. Passing nil resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func settlementAttributes(ctx *SwapContext, amount *big.Int) map[string]string {
	attrs := map[string]string{}
	if ctx != nil {
		attrs["user"] = hex.EncodeToString(ctx.User[:])
		attrs["restaurant"] = hex.EncodeToString(ctx.Restaurant[:])
	}
	if amount != nil {
		attrs["amount"] = amount.String()
	}
	return attrs
}

func emitSkip(st SettlementState, ctx *SwapContext, amount *big.Int, reason string) {
	if st == nil {
		return
	}
	attrs := settlementAttributes(ctx, amount)
	attrs["reason"] = reason
	st.AppendEvent(&types.Event{Type: eventSkipped, Attributes: attrs})
}

// percentOf computes amount * percent / 100 with floor division, never
// rounding in the recipient's favour.
func percentOf(amount *big.Int, percent uint32) *big.Int {
	reward := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(percent)))
	return reward.Quo(reward, big.NewInt(PercentDenominator))
}

// Settle applies the full post-swap settlement for a single swap: cashback at
// the pre-update tier, monotonic ledger update, referral payouts, VIP badge
// issuance on threshold crossing, and the process-wide totals.
//
// A nil context is a deliberate no-op. Mint and badge failures return an
// error; the host engine rolls the enclosing transaction back as a unit, so
// partial loyalty updates are never observable.
func (e *Engine) Settle(st SettlementState, ctx *SwapContext, amount *big.Int, now time.Time) error {
	if e == nil || st == nil || ctx == nil {
		return nil
	}
	if amount == nil || amount.Sign() <= 0 {
		emitSkip(st, ctx, amount, "amount_not_positive")
		return nil
	}

	record, ok, err := st.UserLoyalty(ctx.User)
	if err != nil {
		return err
	}
	if !ok {
		record = &UserLoyalty{Address: ctx.User}
	}
	record.Normalize()

	tierBefore := record.Tier()
	swapCountBefore := record.SwapCount
	minted := big.NewInt(0)

	// Cashback is rated at the tier the user entered the swap with, the same
	// classification the pricing layer used.
	cashback := percentOf(amount, tierBefore.CashbackPercent())
	if cashback.Sign() > 0 {
		if err := e.minter.Mint(ctx.User, cashback); err != nil {
			return fmt.Errorf("%w: %v", ErrRewardMintFailed, err)
		}
		record.TotalEarned = new(big.Int).Add(record.TotalEarned, cashback)
		minted = minted.Add(minted, cashback)
		paid := events.CashbackMinted{
			User:       ctx.User,
			Restaurant: ctx.Restaurant,
			Amount:     cloneBigInt(amount),
			Reward:     cloneBigInt(cashback),
			Tier:       tierBefore.String(),
		}
		st.AppendEvent(paid.Event())
		e.emit(paid)
	}

	record.CumulativeSpend = new(big.Int).Add(record.CumulativeSpend, amount)
	record.SwapCount = swapCountBefore + 1
	tierAfter := record.Tier()
	if tierAfter > tierBefore {
		e.emit(events.TierPromoted{User: ctx.User, From: tierBefore.String(), To: tierAfter.String()})
	}

	if record.HasReferrer {
		referrerShare := percentOf(amount, ReferrerSharePercent)
		if referrerShare.Sign() > 0 {
			if err := e.minter.Mint(record.Referrer, referrerShare); err != nil {
				return fmt.Errorf("%w: %v", ErrRewardMintFailed, err)
			}
			minted = minted.Add(minted, referrerShare)
			e.emit(events.ReferralPaid{
				Recipient: record.Referrer,
				Referee:   ctx.User,
				Reward:    cloneBigInt(referrerShare),
			})
		}
		if swapCountBefore == 0 && !record.FirstSwapBonusPaid {
			bonus := percentOf(amount, RefereeBonusPercent)
			if bonus.Sign() > 0 {
				if err := e.minter.Mint(ctx.User, bonus); err != nil {
					return fmt.Errorf("%w: %v", ErrRewardMintFailed, err)
				}
				record.TotalEarned = new(big.Int).Add(record.TotalEarned, bonus)
				minted = minted.Add(minted, bonus)
				e.emit(events.ReferralPaid{
					Recipient: ctx.User,
					Referee:   ctx.User,
					Reward:    cloneBigInt(bonus),
					FirstSwap: true,
				})
			}
			record.FirstSwapBonusPaid = true
		}
	}

	if tierBefore < TierVIP && tierAfter == TierVIP {
		if err := e.badges.Issue(ctx.User); err != nil {
			return fmt.Errorf("%w: %v", ErrBadgeIssueFailed, err)
		}
		e.emit(events.BadgeIssued{User: ctx.User})
	}

	if err := st.PutUserLoyalty(record); err != nil {
		return err
	}

	totals, err := st.LoyaltyTotals()
	if err != nil {
		return err
	}
	totals.Normalize()
	totals.Volume = new(big.Int).Add(totals.Volume, amount)
	totals.Rewards = new(big.Int).Add(totals.Rewards, minted)
	if err := st.SetLoyaltyTotals(totals); err != nil {
		return err
	}

	attrs := settlementAttributes(ctx, amount)
	attrs["reward"] = minted.String()
	attrs["tier"] = tierAfter.String()
	attrs["swapCount"] = strconv.FormatUint(record.SwapCount, 10)
	attrs["day"] = now.UTC().Format("2006-01-02")
	st.AppendEvent(&types.Event{Type: eventSettled, Attributes: attrs})
	return nil
}

// SetReferrer establishes the write-once referral link for a user. It is a
// separate entry point and never runs as part of swap settlement.
func (e *Engine) SetReferrer(st SettlementState, user, referrer [20]byte) error {
	if e == nil || st == nil {
		return nil
	}
	if isZeroAddress(referrer) {
		return ErrInvalidReferrer
	}
	if user == referrer {
		return ErrSelfReferral
	}
	record, ok, err := st.UserLoyalty(user)
	if err != nil {
		return err
	}
	if !ok {
		record = &UserLoyalty{Address: user}
	}
	record.Normalize()
	if record.HasReferrer {
		return ErrReferrerAlreadySet
	}
	record.Referrer = referrer
	record.HasReferrer = true
	if err := st.PutUserLoyalty(record); err != nil {
		return err
	}
	e.emit(events.ReferrerSet{User: user, Referrer: referrer})
	return nil
}

func (e *Engine) emit(event events.Event) {
	if e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}
