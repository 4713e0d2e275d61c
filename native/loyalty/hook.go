package loyalty

import (
	"math/big"
	"time"

	"github.com/google/uuid"

	"dinehook/core/events"
)

// PoolID identifies a pool on the host swap engine.
type PoolID [32]byte

// HookState extends the settlement state with the per-pool bookkeeping the
// orchestrator needs.
type HookState interface {
	SettlementState
	PoolFeeOverride(pool PoolID) (on bool, exists bool, err error)
	SetPoolFeeOverride(pool PoolID, on bool) error
}

// SwapParams carries the host-side parameters of a single swap the hook cares
// about: the pool and the attempted value-side amount in the policy currency.
type SwapParams struct {
	Pool   PoolID
	Amount *big.Int
}

// PreResult is the admission decision produced at the pre-swap stage. The
// orchestrator threads it into the post-swap stage for the same swap, so
// settlement can distinguish "context absent at admission" from "context
// present". SwapID pairs the two phases when the host does not guarantee it.
type PreResult struct {
	SwapID uuid.UUID
	Ctx    *SwapContext
	Tier   Tier
	Fee    FeeOverride
}

// Hook is the pipeline orchestrator invoked by the host swap engine at the
// pre-swap and post-swap points of every swap's lifecycle.
type Hook struct {
	st         HookState
	registry   *Registry
	engine     *Engine
	baseFeeBps uint32
	emitter    events.Emitter
}

// NewHook wires the three pipeline layers behind the host-facing entry
// points.
func NewHook(st HookState, registry *Registry, engine *Engine, baseFeeBps uint32) *Hook {
	if baseFeeBps > BaseFeeBpsMax {
		baseFeeBps = BaseFeeBpsMax
	}
	return &Hook{
		st:         st,
		registry:   registry,
		engine:     engine,
		baseFeeBps: baseFeeBps,
		emitter:    events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter for pool lifecycle events.
func (h *Hook) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		h.emitter = events.NoopEmitter{}
		return
	}
	h.emitter = emitter
}

// BaseFeeBps exposes the pool base fee the hook quotes against.
func (h *Hook) BaseFeeBps() uint32 {
	return h.baseFeeBps
}

// OnPoolInitialized seeds the pool's dynamic fee-override flag. It runs
// exactly once per pool; a repeat call fails without touching state.
func (h *Hook) OnPoolInitialized(pool PoolID) (bool, error) {
	_, exists, err := h.st.PoolFeeOverride(pool)
	if err != nil {
		return false, err
	}
	if exists {
		return false, ErrPoolAlreadyInitialized
	}
	if err := h.st.SetPoolFeeOverride(pool, true); err != nil {
		return false, err
	}
	seeded := events.PoolInitialized{Pool: pool, OverrideOn: true}
	h.st.AppendEvent(seeded.Event())
	h.emitter.Emit(seeded)
	return true, nil
}

// OnBeforeSwap decodes the context blob, runs the constraint layer, and
// quotes the personalised fee. A swap with no context always passes through
// with the pool's unmodified base fee; any constraint failure aborts the
// enclosing swap.
func (h *Hook) OnBeforeSwap(params SwapParams, contextBlob []byte, now time.Time) (PreResult, error) {
	ctx, err := DecodeContext(contextBlob)
	if err != nil {
		return PreResult{}, err
	}
	pre := PreResult{SwapID: uuid.New()}
	if ctx == nil {
		return pre, nil
	}
	if err := h.registry.CheckConstraints(ctx, now, params.Amount); err != nil {
		return PreResult{}, err
	}
	pre.Ctx = ctx
	pre.Tier = TierFor(h.st, ctx.User)
	pre.Fee = QuoteFee(pre.Tier, now, h.baseFeeBps)
	return pre, nil
}

// OnAfterSwap settles a swap that succeeded on the host engine. A swap that
// was admitted without a context never gains loyalty effects here.
func (h *Hook) OnAfterSwap(pre PreResult, settledAmount *big.Int, now time.Time) error {
	if pre.Ctx == nil {
		return nil
	}
	return h.engine.Settle(h.st, pre.Ctx, settledAmount, now)
}

// QuoteFeeFor is the read-only fee estimate for the public query surface: it
// resolves the user's tier and prices a hypothetical swap at the given time
// without touching any state.
func (h *Hook) QuoteFeeFor(user [20]byte, now time.Time) FeeOverride {
	return QuoteFee(TierFor(h.st, user), now, h.baseFeeBps)
}
