// Package membership implements the non-transferable VIP membership badge.
// Issuance is requested by the settlement engine when a user crosses the VIP
// spend threshold; once held, a badge can never move to another account.
package membership

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// RoleIssuer must be held by the authority badges are issued on behalf of.
const RoleIssuer = "ROLE_BADGE_ISSUER"

var (
	ErrUnauthorizedIssuer = errors.New("membership: unauthorized issuer")
	ErrNonTransferable    = errors.New("membership: badge is non-transferable")
)

type badgeState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	HasRole(role string, addr []byte) bool
}

func badgeKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("membership/badge/%s", hex.EncodeToString(addr[:])))
}

// Badge records a soulbound membership credential.
type Badge struct {
	Holder   [20]byte
	IssuedAt uint64
}

// Registry is the state-backed badge issuer.
type Registry struct {
	st        badgeState
	authority [20]byte
}

// NewRegistry creates an issuer granting badges on behalf of the provided
// authority. The authority must hold RoleIssuer for issuance to succeed.
func NewRegistry(st badgeState, authority [20]byte) *Registry {
	return &Registry{st: st, authority: authority}
}

// Issue grants the badge to the recipient. Issuing to a holder that already
// carries the badge is a no-op, so a duplicate request from the settlement
// engine cannot double-issue.
func (r *Registry) Issue(recipient [20]byte) error {
	if !r.st.HasRole(RoleIssuer, r.authority[:]) {
		return ErrUnauthorizedIssuer
	}
	held, err := r.Holds(recipient)
	if err != nil {
		return err
	}
	if held {
		return nil
	}
	return r.st.KVPut(badgeKey(recipient), Badge{Holder: recipient})
}

// Holds reports whether the address carries the badge.
func (r *Registry) Holds(addr [20]byte) (bool, error) {
	badge := new(Badge)
	ok, err := r.st.KVGet(badgeKey(addr), badge)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Transfer rejects every transfer attempt unconditionally; the badge is
// soulbound.
func (r *Registry) Transfer(from, to [20]byte) error {
	return ErrNonTransferable
}
