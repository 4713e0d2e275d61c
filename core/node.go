package core

import (
	"errors"
	"log/slog"
	"math/big"
	"time"

	"dinehook/core/events"
	"dinehook/core/state"
	"dinehook/native/loyalty"
	"dinehook/native/membership"
	"dinehook/native/rewardtoken"
	"dinehook/observability"
	"dinehook/storage"
)

// NodeConfig carries the static wiring for a hook node.
type NodeConfig struct {
	// BaseFeeBps is the pool's standing fee the pricing layer discounts from.
	BaseFeeBps uint32
	// MintAuthority is the credential the hook holds on the reward issuer.
	MintAuthority [20]byte
	// BadgeAuthority is the credential the hook holds on the badge issuer.
	BadgeAuthority [20]byte
}

// Node binds storage, state, and the native modules behind the entry points
// the host swap engine and the RPC surface call into. The host engine
// serialises hook invocations, so the node holds no lock of its own.
type Node struct {
	db       storage.Database
	state    *state.Manager
	registry *loyalty.Registry
	engine   *loyalty.Engine
	hook     *loyalty.Hook
	token    *rewardtoken.Token
	badges   *membership.Registry
	bus      *events.Bus
	metrics  *observability.LoyaltyMetrics
	log      *slog.Logger
}

// NewNode assembles a node on top of the provided database.
func NewNode(db storage.Database, cfg NodeConfig, logger *slog.Logger) *Node {
	if logger == nil {
		logger = slog.Default()
	}
	manager := state.NewManager(db)
	bus := events.NewBus()

	registry := loyalty.NewRegistry(manager)
	registry.SetEmitter(bus)

	token := rewardtoken.NewToken(manager, cfg.MintAuthority)
	badges := membership.NewRegistry(manager, cfg.BadgeAuthority)

	engine := loyalty.NewEngine(token, badges)
	engine.SetEmitter(bus)

	hook := loyalty.NewHook(manager, registry, engine, cfg.BaseFeeBps)
	hook.SetEmitter(bus)

	return &Node{
		db:       db,
		state:    manager,
		registry: registry,
		engine:   engine,
		hook:     hook,
		token:    token,
		badges:   badges,
		bus:      bus,
		metrics:  observability.Loyalty(),
		log:      logger,
	}
}

// GrantRole assigns a role during bootstrap (admin, mint, and badge
// credentials).
func (n *Node) GrantRole(role string, addr [20]byte) error {
	return n.state.GrantRole(role, addr[:])
}

// --- Host engine entry points ---

// OnPoolInitialized seeds the dynamic fee flag for a pool, once.
func (n *Node) OnPoolInitialized(pool loyalty.PoolID) (bool, error) {
	on, err := n.hook.OnPoolInitialized(pool)
	if err != nil {
		n.log.Warn("pool initialization rejected", "error", err)
		return false, err
	}
	n.log.Info("pool initialized", "feeOverride", on)
	return on, nil
}

// OnBeforeSwap admits a swap through the constraint and pricing layers.
func (n *Node) OnBeforeSwap(params loyalty.SwapParams, contextBlob []byte, now time.Time) (loyalty.PreResult, error) {
	pre, err := n.hook.OnBeforeSwap(params, contextBlob, now)
	if err != nil {
		n.metrics.ObserveRejection(rejectionReason(err))
		n.log.Info("swap rejected", "error", err)
		return loyalty.PreResult{}, err
	}
	return pre, nil
}

// OnAfterSwap settles a swap the host engine committed.
func (n *Node) OnAfterSwap(pre loyalty.PreResult, settledAmount *big.Int, now time.Time) error {
	if err := n.hook.OnAfterSwap(pre, settledAmount, now); err != nil {
		n.log.Error("settlement failed", "swap", pre.SwapID.String(), "error", err)
		return err
	}
	if pre.Ctx != nil {
		n.observeSettlement(pre, settledAmount)
	}
	for _, evt := range n.state.DrainEvents() {
		n.log.Debug("settlement event", "type", evt.Type, "attributes", evt.Attributes)
	}
	return nil
}

func (n *Node) observeSettlement(pre loyalty.PreResult, amount *big.Int) {
	record, ok, err := n.state.UserLoyalty(pre.Ctx.User)
	rewards := big.NewInt(0)
	if err == nil && ok {
		if record.Tier() == loyalty.TierVIP && pre.Tier < loyalty.TierVIP {
			n.metrics.ObserveBadge()
		}
	}
	// Totals delta is approximated from the cashback rate; the counters are
	// operational mirrors, state stays authoritative.
	if amount != nil {
		rewards = new(big.Int).Mul(amount, big.NewInt(int64(pre.Tier.CashbackPercent())))
		rewards = rewards.Quo(rewards, big.NewInt(loyalty.PercentDenominator))
	}
	n.metrics.ObserveSettlement(amount, rewards, loyalty.ValueUnit)
}

// --- Administrative surface ---

func (n *Node) RegisterRestaurant(caller [20]byte, rec *loyalty.Restaurant) error {
	return n.registry.AddOrUpdate(caller, rec)
}

func (n *Node) DeactivateRestaurant(caller [20]byte, id loyalty.RestaurantID) error {
	return n.registry.Deactivate(caller, id)
}

func (n *Node) SetReferrer(user, referrer [20]byte) error {
	return n.engine.SetReferrer(n.state, user, referrer)
}

// --- Public view surface ---

// Restaurant resolves a policy record; the boolean distinguishes unknown from
// deactivated records.
func (n *Node) Restaurant(id loyalty.RestaurantID) (*loyalty.Restaurant, bool) {
	return n.registry.Get(id)
}

// UserRecord returns the loyalty ledger entry for a user along with the badge
// holding and reward-token balance.
func (n *Node) UserRecord(addr [20]byte) (*loyalty.UserLoyalty, bool, error) {
	return n.state.UserLoyalty(addr)
}

// RewardBalance returns the user's reward-token balance.
func (n *Node) RewardBalance(addr [20]byte) (*big.Int, error) {
	return n.token.BalanceOf(addr)
}

// HoldsBadge reports whether the user carries the VIP membership badge.
func (n *Node) HoldsBadge(addr [20]byte) (bool, error) {
	return n.badges.Holds(addr)
}

// QuoteFee prices a hypothetical swap for the user at the given time without
// touching state.
func (n *Node) QuoteFee(user [20]byte, now time.Time) loyalty.FeeOverride {
	return n.hook.QuoteFeeFor(user, now)
}

// Totals returns the running volume and reward accumulators.
func (n *Node) Totals() (loyalty.Totals, error) {
	return n.state.LoyaltyTotals()
}

// EventsSubscribe attaches a subscriber to the typed event stream.
func (n *Node) EventsSubscribe(buffer int) (<-chan events.Event, func()) {
	return n.bus.Subscribe(buffer)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, loyalty.ErrUnknownRestaurant):
		return "unknown_restaurant"
	case errors.Is(err, loyalty.ErrInactiveRestaurant):
		return "inactive_restaurant"
	case errors.Is(err, loyalty.ErrOutsideOperatingHours):
		return "outside_operating_hours"
	case errors.Is(err, loyalty.ErrTransactionLimitExceeded):
		return "transaction_limit_exceeded"
	case errors.Is(err, loyalty.ErrMalformedContext):
		return "malformed_context"
	default:
		return "other"
	}
}
