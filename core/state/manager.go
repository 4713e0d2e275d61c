package state

import (
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"dinehook/core/types"
	"dinehook/storage"
)

// Manager provides the persistence layer shared by the native modules. Keys
// are hashed before hitting the backend so callers can use readable prefixes,
// values are RLP encoded.
//
// The host engine serialises every hook invocation, so the manager performs no
// locking of its own.
type Manager struct {
	db     storage.Database
	events []types.Event
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var rolePrefix = []byte("role:")

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

func roleMemberKey(role string, addr []byte) []byte {
	buf := make([]byte, 0, len(rolePrefix)+len(role)+1+len(addr))
	buf = append(buf, rolePrefix...)
	buf = append(buf, role...)
	buf = append(buf, ':')
	buf = append(buf, addr...)
	return ethcrypto.Keccak256(buf)
}

// KVGet loads and decodes the value stored under key. The boolean reports
// whether a record was present.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	data, err := m.db.Get(kvKey(key))
	if err != nil || len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

// KVPut encodes and stores the value under key.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return m.db.Put(kvKey(key), encoded)
}

// HasRole reports whether the address holds the named role.
func (m *Manager) HasRole(role string, addr []byte) bool {
	data, err := m.db.Get(roleMemberKey(role, addr))
	return err == nil && len(data) > 0
}

// GrantRole assigns the named role to the address.
func (m *Manager) GrantRole(role string, addr []byte) error {
	return m.db.Put(roleMemberKey(role, addr), []byte{1})
}

// AppendEvent records a loosely-typed event produced during the current
// execution window.
func (m *Manager) AppendEvent(evt *types.Event) {
	if evt == nil {
		return
	}
	m.events = append(m.events, *evt)
}

// Events returns the events accumulated since the last drain.
func (m *Manager) Events() []types.Event {
	out := make([]types.Event, len(m.events))
	copy(out, m.events)
	return out
}

// DrainEvents returns and clears the accumulated events.
func (m *Manager) DrainEvents() []types.Event {
	out := m.events
	m.events = nil
	return out
}
