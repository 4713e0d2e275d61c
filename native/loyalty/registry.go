package loyalty

import (
	"encoding/hex"
	"fmt"

	"dinehook/core/events"
)

// RoleLoyaltyAdmin must be held by the caller of every registry mutation.
const RoleLoyaltyAdmin = "ROLE_LOYALTY_ADMIN"

type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	HasRole(role string, addr []byte) bool
}

func restaurantKey(id RestaurantID) []byte {
	return []byte(fmt.Sprintf("loyalty/restaurant/%s", hex.EncodeToString(id[:])))
}

// Registry manages persistence and retrieval of restaurant policy records.
type Registry struct {
	st      registryState
	emitter events.Emitter
}

// NewRegistry creates a registry backed by the provided state manager.
func NewRegistry(st registryState) *Registry {
	return &Registry{st: st, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter used to broadcast registry updates.
// Passing nil resets the emitter to a no-op implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// AddOrUpdate persists a restaurant policy record, creating it when missing.
// Only callers holding RoleLoyaltyAdmin may mutate the registry; the owner
// payout wallet is updated through the same call.
func (r *Registry) AddOrUpdate(caller [20]byte, rec *Restaurant) error {
	if rec == nil {
		return ErrNilRestaurant
	}
	if !r.st.HasRole(RoleLoyaltyAdmin, caller[:]) {
		return ErrUnauthorized
	}
	sanitized, err := sanitizeRestaurant(rec)
	if err != nil {
		return err
	}
	if err := r.st.KVPut(restaurantKey(sanitized.ID), sanitized); err != nil {
		return err
	}
	r.emit(events.RestaurantRegistered{
		ID:          sanitized.ID,
		Owner:       sanitized.Owner,
		Active:      sanitized.Active,
		OpenHour:    sanitized.OpenHour,
		CloseHour:   sanitized.CloseHour,
		MaxTxAmount: cloneBigInt(sanitized.MaxTxAmount),
	})
	return nil
}

// Deactivate pauses a restaurant without removing the record so settled swaps
// keep resolving against it.
func (r *Registry) Deactivate(caller [20]byte, id RestaurantID) error {
	if !r.st.HasRole(RoleLoyaltyAdmin, caller[:]) {
		return ErrUnauthorized
	}
	rec, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRestaurant, hex.EncodeToString(id[:]))
	}
	if !rec.Active {
		return nil
	}
	rec.Active = false
	if err := r.st.KVPut(restaurantKey(id), rec); err != nil {
		return err
	}
	r.emit(events.RestaurantDeactivated{ID: id, Caller: caller})
	return nil
}

// Get retrieves a restaurant by its identifier. The boolean distinguishes an
// unknown restaurant from a deliberately deactivated one.
func (r *Registry) Get(id RestaurantID) (*Restaurant, bool) {
	out := new(Restaurant)
	ok, err := r.st.KVGet(restaurantKey(id), out)
	if err != nil || !ok {
		return nil, false
	}
	return out.Normalize(), true
}

func (r *Registry) emit(event events.Event) {
	if r.emitter == nil {
		return
	}
	r.emitter.Emit(event)
}

// Normalize ensures the cap field is non-nil. The receiver is returned for
// fluent usage.
func (rec *Restaurant) Normalize() *Restaurant {
	if rec == nil {
		return nil
	}
	if rec.MaxTxAmount == nil {
		rec.MaxTxAmount = cloneBigInt(nil)
	}
	return rec
}

func sanitizeRestaurant(rec *Restaurant) (*Restaurant, error) {
	copyRec := rec.Clone()
	if copyRec.OpenHour > 23 || copyRec.CloseHour > 23 {
		return nil, fmt.Errorf("%w: hours must be within [0,23]", ErrInvalidSchedule)
	}
	if copyRec.MaxTxAmount != nil && copyRec.MaxTxAmount.Sign() < 0 {
		return nil, fmt.Errorf("%w: max tx amount must be non-negative", ErrInvalidRestaurant)
	}
	return copyRec.Normalize(), nil
}
