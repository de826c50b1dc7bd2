// Package signer resolves an account to its chain adapter and derived key,
// producing signatures without ever returning the underlying private key to
// the caller.
package signer

import (
	"context"

	"github.com/duskvault/duskvault/internal/chainkit"
	"github.com/duskvault/duskvault/internal/seed"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// SeedSource is the narrow slice of internal/keyring.Keyring the dispatcher
// needs: a read view of the unlocked seed.
type SeedSource interface {
	WithSeed(fn func(seedBytes []byte) error) error
}

// AccountResolver is the narrow slice of internal/store.Store needed to
// look up an account's chain and derivation path.
type AccountResolver interface {
	GetAccount(ctx context.Context, id string) (Account, error)
}

// Account is the subset of store.Account the dispatcher needs, declared
// locally to avoid importing internal/store (which does not need to know
// about signing).
type Account struct {
	Chain          chainkit.ID
	DerivationPath string
}

// Dispatcher signs payloads and transactions on behalf of accounts held in
// a keyring, dispatching to the chain adapter registered for each
// account's chain.
type Dispatcher struct {
	seeds     SeedSource
	accounts  AccountResolver
	adapterOf func(chainkit.ID) (chainkit.Adapter, bool)
}

// New constructs a Dispatcher that looks up chain adapters with chainkit.Get.
func New(seeds SeedSource, accounts AccountResolver) *Dispatcher {
	return &Dispatcher{seeds: seeds, accounts: accounts, adapterOf: chainkit.Get}
}

func (d *Dispatcher) resolve(ctx context.Context, accountID string) (Account, chainkit.Adapter, seed.Path, error) {
	acct, err := d.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return Account{}, nil, nil, err
	}

	adapter, ok := d.adapterOf(acct.Chain)
	if !ok {
		return Account{}, nil, nil, vaulterr.New(vaulterr.KindInvalidInput, "no adapter registered for chain %q", acct.Chain)
	}

	path, err := seed.ParsePath(acct.DerivationPath)
	if err != nil {
		return Account{}, nil, nil, err
	}

	return acct, adapter, path, nil
}

func (d *Dispatcher) derivePrivateKey(acct Account, path seed.Path, seedBytes []byte) ([]byte, error) {
	switch acct.Chain {
	case chainkit.Ethereum:
		k, err := seed.DeriveSecp256k1(seedBytes, path)
		if err != nil {
			return nil, err
		}
		return k.Serialize(), nil
	case chainkit.Solana:
		k, err := seed.DeriveEd25519(seedBytes, path)
		if err != nil {
			return nil, err
		}
		return k, nil
	default:
		return nil, vaulterr.New(vaulterr.KindInvalidInput, "no derivation known for chain %q", acct.Chain)
	}
}

// Sign produces a chain-native transaction signature for accountID over tx.
func (d *Dispatcher) Sign(ctx context.Context, accountID string, tx chainkit.TxRequest) ([]byte, error) {
	acct, adapter, path, err := d.resolve(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var sig []byte
	err = d.seeds.WithSeed(func(seedBytes []byte) error {
		priv, derErr := d.derivePrivateKey(acct, path, seedBytes)
		if derErr != nil {
			return derErr
		}
		defer zero(priv)

		s, signErr := adapter.SignTransaction(priv, tx)
		if signErr != nil {
			return signErr
		}
		sig = s
		return nil
	})
	return sig, err
}

// SignMessage produces a detached signature over an arbitrary message for
// accountID, per the account's chain's message-signing convention.
func (d *Dispatcher) SignMessage(ctx context.Context, accountID string, msg []byte) ([]byte, error) {
	acct, adapter, path, err := d.resolve(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var sig []byte
	err = d.seeds.WithSeed(func(seedBytes []byte) error {
		priv, derErr := d.derivePrivateKey(acct, path, seedBytes)
		if derErr != nil {
			return derErr
		}
		defer zero(priv)

		s, signErr := adapter.SignMessage(priv, msg)
		if signErr != nil {
			return signErr
		}
		sig = s
		return nil
	})
	return sig, err
}

// ValidateAddress validates s as an address on chain, per that chain's
// adapter rules.
func ValidateAddress(chain chainkit.ID, s string) (bool, error) {
	adapter, ok := chainkit.Get(chain)
	if !ok {
		return false, vaulterr.New(vaulterr.KindInvalidInput, "no adapter registered for chain %q", chain)
	}
	return adapter.ValidateAddress(s)
}

// VerifyOwnerSignature checks sig over msg against each of owners in turn
// and returns the first one whose address the signature verifies under.
// It fails with KindNotAnOwner if no owner's address matches.
func VerifyOwnerSignature(chain chainkit.ID, owners []string, msg, sig []byte) (string, error) {
	adapter, ok := chainkit.Get(chain)
	if !ok {
		return "", vaulterr.New(vaulterr.KindInvalidInput, "no adapter registered for chain %q", chain)
	}

	for _, owner := range owners {
		ok, err := adapter.VerifyMessage(owner, msg, sig)
		if err != nil {
			continue
		}
		if ok {
			return owner, nil
		}
	}
	return "", vaulterr.New(vaulterr.KindNotAnOwner, "signature does not match any owner")
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
