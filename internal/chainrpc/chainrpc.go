// Package chainrpc defines the outbound contract to a chain's network layer:
// broadcasting signed transactions and fetching the nonce/fee data needed to
// build one. No concrete client ships in the core; callers wire in whatever
// RPC client fits their chain.
package chainrpc

import (
	"context"
	"math/big"

	"github.com/duskvault/duskvault/internal/chainkit"
)

// Broadcaster submits a signed, chain-encoded transaction and returns the
// chain's transaction identifier (hash or signature) on success.
type Broadcaster interface {
	Broadcast(ctx context.Context, chain chainkit.ID, raw []byte) (txID string, err error)
}

// FeeEstimate carries the current network conditions for chains whose
// TxRequest fields need filling before signing.
type FeeEstimate struct {
	Nonce                uint64
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// FeeEstimator fetches the nonce and fee data for account on chain.
type FeeEstimator interface {
	FetchNonceAndFee(ctx context.Context, chain chainkit.ID, account string) (FeeEstimate, error)
}
