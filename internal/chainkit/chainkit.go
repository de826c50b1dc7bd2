// Package chainkit defines the per-chain adapter capability set and the
// registry of supported chains.
package chainkit

import (
	"github.com/duskvault/duskvault/internal/seed"
)

// ID identifies a supported blockchain. New chains are added as new ID
// variants with a registered Adapter, never as subclasses of an existing
// adapter.
type ID string

// Supported chain identifiers.
const (
	Solana   ID = "solana"
	Ethereum ID = "ethereum"
)

// Known reports whether id names a supported chain.
func Known(id ID) bool {
	switch id {
	case Solana, Ethereum:
		return true
	default:
		return false
	}
}

// All returns every supported chain identifier.
func All() []ID {
	return []ID{Solana, Ethereum}
}

// TxRequest carries the chain-specific fields needed to assemble and sign a
// transaction. Which fields are populated determines the transaction shape
// on chains with more than one (Ethereum legacy vs. EIP-1559).
type TxRequest struct {
	To       string
	Amount   []byte // big-endian unsigned integer, smallest unit
	Data     []byte
	Nonce    uint64
	ChainID  []byte // big-endian unsigned integer, Ethereum only

	GasLimit uint64

	// Ethereum legacy pricing. Mutually exclusive with the EIP-1559 fields.
	GasPrice []byte

	// Ethereum EIP-1559 pricing.
	MaxFeePerGas         []byte
	MaxPriorityFeePerGas []byte
}

// Adapter is the capability set every chain implementation must satisfy.
type Adapter interface {
	// ID returns the chain identifier this adapter implements.
	ID() ID

	// DefaultPath returns the default derivation path for the given
	// account index.
	DefaultPath(index uint32) seed.Path

	// DeriveAccount derives the public key and address for index from seed.
	DeriveAccount(seedBytes []byte, index uint32) (pubKey, address string, err error)

	// ValidateAddress reports whether s is a well-formed address for this
	// chain, or an error describing why it is not.
	ValidateAddress(s string) (bool, error)

	// SignTransaction signs tx with priv and returns the raw bytes ready
	// for broadcast.
	SignTransaction(priv []byte, tx TxRequest) ([]byte, error)

	// SignMessage produces a detached signature over msg.
	SignMessage(priv []byte, msg []byte) ([]byte, error)

	// VerifyMessage reports whether sig is address's signature over msg,
	// per the same convention SignMessage uses to produce one.
	VerifyMessage(address string, msg, sig []byte) (bool, error)
}

// registry maps chain identifiers to their adapter. Populated by each
// adapter package's init function via Register.
var registry = map[ID]Adapter{}

// Register adds an adapter to the registry. Called from each chain
// subpackage's init function.
func Register(a Adapter) {
	registry[a.ID()] = a
}

// Get returns the adapter for id, or false if the chain is unknown.
func Get(id ID) (Adapter, bool) {
	a, ok := registry[id]
	return a, ok
}
