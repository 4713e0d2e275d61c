// Package rewardtoken implements the fungible reward token ("CRUMB") the
// settlement engine requests cashback mints from. The issuer is external to
// the loyalty core: the core only holds a mint authorization credential on it.
package rewardtoken

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// Symbol is the ticker of the reward token.
const Symbol = "CRUMB"

// RoleMinter must be held by the authority the issuer mints on behalf of.
const RoleMinter = "ROLE_CRUMB_MINTER"

var (
	ErrUnauthorizedMinter = errors.New("rewardtoken: unauthorized minter")
	ErrInvalidAmount      = errors.New("rewardtoken: amount must be positive")
)

type ledgerState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	HasRole(role string, addr []byte) bool
}

func balanceKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("rewardtoken/balance/%s", hex.EncodeToString(addr[:])))
}

func supplyKey() []byte {
	return []byte("rewardtoken/supply")
}

// Token is the state-backed reward token issuer.
type Token struct {
	st        ledgerState
	authority [20]byte
}

// NewToken creates an issuer minting on behalf of the provided authority. The
// authority must hold RoleMinter for mints to succeed.
func NewToken(st ledgerState, authority [20]byte) *Token {
	return &Token{st: st, authority: authority}
}

// Mint credits the recipient with freshly issued reward tokens. Callers treat
// a failure as fatal to the enclosing operation.
func (t *Token) Mint(recipient [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if !t.st.HasRole(RoleMinter, t.authority[:]) {
		return ErrUnauthorizedMinter
	}
	balance, err := t.BalanceOf(recipient)
	if err != nil {
		return err
	}
	if err := t.st.KVPut(balanceKey(recipient), new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	supply, err := t.TotalSupply()
	if err != nil {
		return err
	}
	return t.st.KVPut(supplyKey(), new(big.Int).Add(supply, amount))
}

// BalanceOf returns the reward-token balance of the address.
func (t *Token) BalanceOf(addr [20]byte) (*big.Int, error) {
	balance := new(big.Int)
	ok, err := t.st.KVGet(balanceKey(addr), balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return balance, nil
}

// TotalSupply returns the cumulative amount minted.
func (t *Token) TotalSupply() (*big.Int, error) {
	supply := new(big.Int)
	ok, err := t.st.KVGet(supplyKey(), supply)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return supply, nil
}
