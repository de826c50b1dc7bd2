// Package store defines the persistence contract for wallets, accounts,
// multi-sig groups, and proposals. The core never assumes a particular
// backing technology; filestore is the one concrete implementation shipped
// alongside it.
package store

import (
	"context"
	"time"

	"github.com/duskvault/duskvault/internal/chainkit"
	"github.com/duskvault/duskvault/internal/multisig"
	"github.com/duskvault/duskvault/internal/vaultcrypto"
)

// WalletType distinguishes a single-seed wallet from other future vault
// shapes; the core only ever produces Standard today.
type WalletType string

// Standard is the only wallet type the core currently produces.
const Standard WalletType = "standard"

// Wallet is the persisted record identifying a vault envelope and the
// accounts derived under it.
type Wallet struct {
	ID        string
	VaultRef  string
	Name      string
	Type      WalletType
	CreatedAt time.Time
}

// Account is a single derived keypair within a wallet.
type Account struct {
	ID              string
	WalletID        string
	Chain           chainkit.ID
	DerivationIndex uint32
	DerivationPath  string
	PublicKeyHex    string
	Address         string
	Name            string
	CreatedAt       time.Time
}

// Store is the persistence contract every concrete backend must satisfy.
// All methods accept a context so a backend implemented over a network
// client can honor cancellation and deadlines; filestore ignores ctx and
// runs each operation to completion.
type Store interface {
	CreateWallet(ctx context.Context, w Wallet) error
	GetWallet(ctx context.Context, id string) (Wallet, error)
	ListWallets(ctx context.Context) ([]Wallet, error)
	DeleteWallet(ctx context.Context, id string) error

	// SaveEnvelope and LoadEnvelope persist the encrypted seed envelope
	// identified by a wallet's VaultRef, independent of the Wallet record
	// itself so envelope bytes never appear in a wallet listing.
	SaveEnvelope(ctx context.Context, vaultRef string, env *vaultcrypto.Envelope) error
	LoadEnvelope(ctx context.Context, vaultRef string) (*vaultcrypto.Envelope, error)
	DeleteEnvelope(ctx context.Context, vaultRef string) error

	CreateAccount(ctx context.Context, a Account) error
	GetAccount(ctx context.Context, id string) (Account, error)
	ListAccounts(ctx context.Context, walletID string) ([]Account, error)
	DeleteAccount(ctx context.Context, id string) error

	CreateGroup(ctx context.Context, g multisig.Group) error
	GetGroup(ctx context.Context, id string) (multisig.Group, error)
	ListGroups(ctx context.Context) ([]multisig.Group, error)

	CreateProposal(ctx context.Context, p multisig.Proposal) error
	GetProposal(ctx context.Context, id string) (multisig.Proposal, error)
	ListProposals(ctx context.Context, groupID string) ([]multisig.Proposal, error)
	UpdateProposal(ctx context.Context, p multisig.Proposal) error

	// Tx runs fn with exclusive access to the store for the duration of the
	// call, so compound operations (e.g. approve-then-maybe-execute) see a
	// consistent view and cannot interleave with a concurrent writer.
	Tx(ctx context.Context, fn func(Store) error) error
}
