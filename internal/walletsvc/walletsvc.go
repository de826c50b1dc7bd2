// Package walletsvc exposes the wallet's full control surface as a single
// Go-native Service, wiring keyring, signer, multisig, and store behind one
// dispatcher that any transport (CLI, RPC, embedding library) can sit
// behind without change.
package walletsvc

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/duskvault/duskvault/internal/chainkit"
	"github.com/duskvault/duskvault/internal/keyring"
	"github.com/duskvault/duskvault/internal/mnemonic"
	"github.com/duskvault/duskvault/internal/multisig"
	"github.com/duskvault/duskvault/internal/seed"
	"github.com/duskvault/duskvault/internal/signer"
	"github.com/duskvault/duskvault/internal/store"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// Status reports the keyring's current lifecycle state.
type Status struct {
	Unlocked bool
	WalletID string
}

// storeAccountResolver adapts internal/store.Store to signer.AccountResolver
// without making the signer package depend on store.
type storeAccountResolver struct {
	s store.Store
}

func (r storeAccountResolver) GetAccount(ctx context.Context, id string) (signer.Account, error) {
	a, err := r.s.GetAccount(ctx, id)
	if err != nil {
		return signer.Account{}, err
	}
	return signer.Account{Chain: a.Chain, DerivationPath: a.DerivationPath}, nil
}

// storeProposalAdapter adapts internal/store.Store to multisig.ProposalStore.
type storeProposalAdapter struct {
	s store.Store
}

func (a storeProposalAdapter) GetGroup(ctx context.Context, id string) (multisig.Group, error) {
	return a.s.GetGroup(ctx, id)
}
func (a storeProposalAdapter) GetProposal(ctx context.Context, id string) (multisig.Proposal, error) {
	return a.s.GetProposal(ctx, id)
}
func (a storeProposalAdapter) CreateProposal(ctx context.Context, p multisig.Proposal) error {
	return a.s.CreateProposal(ctx, p)
}
func (a storeProposalAdapter) UpdateProposal(ctx context.Context, p multisig.Proposal) error {
	return a.s.UpdateProposal(ctx, p)
}
func (a storeProposalAdapter) Tx(ctx context.Context, fn func(multisig.ProposalStore) error) error {
	return a.s.Tx(ctx, func(tx store.Store) error {
		return fn(storeProposalAdapter{tx})
	})
}

// ownerVerifier adapts internal/signer's address-signature check to
// multisig.Verifier.
type ownerVerifier struct{}

func (ownerVerifier) VerifyOwner(_ context.Context, g multisig.Group, digest, sig []byte) (string, error) {
	return signer.VerifyOwnerSignature(g.Chain, g.Owners, digest, sig)
}

// dispatcherSigner adapts signer.Dispatcher to multisig.Signer, combining
// every approver into a single signing identity: the account bound to the
// group with BindGroupSigner. Real multi-key on-chain schemes would instead
// aggregate a signature per approver; this core targets single-key-per-chain
// wallets (§1 Non-goal on native multi-sig program authoring).
type dispatcherSigner struct {
	dispatcher  *signer.Dispatcher
	accountsFor func(ctx context.Context, groupID string) (accountID string, err error)
}

func (d dispatcherSigner) SignProposal(ctx context.Context, g multisig.Group, p multisig.Proposal) ([]byte, error) {
	accountID, err := d.accountsFor(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	// GasPrice is a placeholder fee field: a production deployment would
	// inject a chainrpc.FeeEstimator result here instead of a nominal value.
	return d.dispatcher.Sign(ctx, accountID, chainkit.TxRequest{
		To:       p.To,
		Amount:   p.Amount.Bytes(),
		Data:     p.CallData,
		Nonce:    p.Nonce,
		GasPrice: []byte{1},
	})
}

// Service is the wallet's full inbound control surface.
type Service struct {
	kr        *keyring.Keyring
	st        store.Store
	dispatch  *signer.Dispatcher
	coord     *multisig.Coordinator
	walletID  string
	groupAcct map[string]string // groupID -> signing account id, set via BindGroupSigner
}

// New wires a Service around an existing Keyring and Store. broadcast may
// be nil, in which case Execute signs a Ready proposal and marks it Executed
// without broadcasting it.
func New(kr *keyring.Keyring, st store.Store, broadcast func(ctx context.Context, chainName string, raw []byte) (string, error)) *Service {
	dispatch := signer.New(kr, storeAccountResolver{st})
	svc := &Service{
		kr:        kr,
		st:        st,
		dispatch:  dispatch,
		groupAcct: make(map[string]string),
	}
	svc.coord = multisig.New(storeProposalAdapter{st}, dispatcherSigner{
		dispatcher: dispatch,
		accountsFor: func(_ context.Context, groupID string) (string, error) {
			acct, ok := svc.groupAcct[groupID]
			if !ok {
				return "", vaulterr.New(vaulterr.KindInvalidInput, "no signing account bound for group %s", groupID)
			}
			return acct, nil
		},
	}, ownerVerifier{}, broadcast)
	return svc
}

// BindGroupSigner designates accountID as the signing identity used when
// executing proposals against groupID.
func (s *Service) BindGroupSigner(groupID, accountID string) {
	s.groupAcct[groupID] = accountID
}

// Status reports whether the keyring is currently unlocked.
func (s *Service) Status() Status {
	return Status{Unlocked: s.kr.IsUnlocked(), WalletID: s.walletID}
}

// CreateWallet generates a fresh mnemonic, derives its seed, encrypts it
// under password, and persists the wallet record. It returns the mnemonic
// phrase exactly once so the caller can display it for backup.
func (s *Service) CreateWallet(ctx context.Context, walletID, name, password string, wordCount int) (mnemonic.Phrase, error) {
	phrase, err := mnemonic.Generate(wordCount)
	if err != nil {
		return nil, err
	}

	seedBytes := seed.New(phrase.Normalize(), "")
	if err := s.kr.Create(ctx, password, seedBytes); err != nil {
		return nil, err
	}

	if err := s.persistWallet(ctx, walletID, name); err != nil {
		return nil, err
	}
	if err := s.st.SaveEnvelope(ctx, walletID, s.kr.Envelope()); err != nil {
		return nil, err
	}
	return phrase, nil
}

// ImportWallet recovers a wallet from an existing mnemonic phrase.
func (s *Service) ImportWallet(ctx context.Context, walletID, name, password string, words []string) error {
	entropy, err := mnemonic.Decode(words)
	if err != nil {
		return err
	}
	phrase, err := mnemonic.Encode(entropy)
	if err != nil {
		return err
	}

	seedBytes := seed.New(phrase.Normalize(), "")
	return s.restoreFromSeed(ctx, walletID, name, password, seedBytes)
}

// RestoreFromSeed recovers a wallet from raw seed bytes obtained outside
// the mnemonic flow, such as a backup.Service Shamir reconstruction.
func (s *Service) RestoreFromSeed(ctx context.Context, walletID, name, password string, seedBytes []byte) error {
	return s.restoreFromSeed(ctx, walletID, name, password, seedBytes)
}

func (s *Service) restoreFromSeed(ctx context.Context, walletID, name, password string, seedBytes []byte) error {
	if err := s.kr.Import(ctx, password, seedBytes); err != nil {
		return err
	}
	if err := s.persistWallet(ctx, walletID, name); err != nil {
		return err
	}
	return s.st.SaveEnvelope(ctx, walletID, s.kr.Envelope())
}

func (s *Service) persistWallet(ctx context.Context, walletID, name string) error {
	s.walletID = walletID
	return s.st.CreateWallet(ctx, store.Wallet{
		ID:        walletID,
		VaultRef:  walletID,
		Name:      name,
		Type:      store.Standard,
		CreatedAt: time.Now(),
	})
}

// Unlock decrypts the wallet's stored envelope under password.
func (s *Service) Unlock(ctx context.Context, walletID, password string) error {
	w, err := s.st.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}
	env, err := s.st.LoadEnvelope(ctx, w.VaultRef)
	if err != nil {
		return err
	}
	s.walletID = w.ID
	return s.kr.Unlock(ctx, password, env)
}

// UnlockCachedSeed restores a session-cached seed without re-deriving the
// password-based key, for callers that keep their own short-lived seed
// cache (see internal/session) in front of Unlock.
func (s *Service) UnlockCachedSeed(ctx context.Context, walletID string, seedBytes []byte) error {
	w, err := s.st.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}
	env, err := s.st.LoadEnvelope(ctx, w.VaultRef)
	if err != nil {
		return err
	}
	s.walletID = w.ID
	return s.kr.UnlockCachedSeed(seedBytes, env)
}

// WithSeed runs fn with a read view of the unlocked seed, for callers that
// need the raw seed bytes directly (e.g. internal/backup splitting it into
// Shamir shares). See keyring.Keyring.WithSeed for the aliasing contract.
func (s *Service) WithSeed(fn func(seedBytes []byte) error) error {
	return s.kr.WithSeed(fn)
}

// Lock discards the in-memory seed.
func (s *Service) Lock() { s.kr.Lock() }

// Reset deletes the current wallet's persisted envelope and every account
// derived under it, then discards the in-memory seed. The wallet record
// itself and its deletion all happen inside a single store.Tx so a crash
// mid-reset cannot leave accounts behind with no envelope or vice versa. A
// later Unlock attempt against walletID fails with KindNotFound once Reset
// returns. Safe to call when no wallet has been created or unlocked yet.
func (s *Service) Reset(ctx context.Context) error {
	walletID := s.walletID
	if walletID == "" {
		s.kr.Reset()
		return nil
	}

	err := s.st.Tx(ctx, func(tx store.Store) error {
		w, err := tx.GetWallet(ctx, walletID)
		if err != nil {
			return err
		}

		accounts, err := tx.ListAccounts(ctx, walletID)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			if err := tx.DeleteAccount(ctx, a.ID); err != nil {
				return err
			}
		}

		if err := tx.DeleteEnvelope(ctx, w.VaultRef); err != nil {
			return err
		}
		return tx.DeleteWallet(ctx, walletID)
	})
	if err != nil {
		return err
	}

	s.kr.Reset()
	s.walletID = ""
	return nil
}

// ListAccounts lists every account under walletID.
func (s *Service) ListAccounts(ctx context.Context, walletID string) ([]store.Account, error) {
	return s.st.ListAccounts(ctx, walletID)
}

// CreateAccount derives a new account for chain at the next default index
// and persists it.
func (s *Service) CreateAccount(ctx context.Context, walletID string, chain chainkit.ID, name string) (store.Account, error) {
	adapter, ok := chainkit.Get(chain)
	if !ok {
		return store.Account{}, vaulterr.New(vaulterr.KindInvalidInput, "no adapter registered for chain %q", chain)
	}

	existing, err := s.st.ListAccounts(ctx, walletID)
	if err != nil {
		return store.Account{}, err
	}
	index := uint32(0)
	for _, a := range existing {
		if a.Chain == chain && a.DerivationIndex >= index {
			index = a.DerivationIndex + 1
		}
	}

	var pub, addr string
	err = s.kr.WithSeed(func(seedBytes []byte) error {
		var derErr error
		pub, addr, derErr = adapter.DeriveAccount(seedBytes, index)
		return derErr
	})
	if err != nil {
		return store.Account{}, err
	}

	acct := store.Account{
		ID:              randID(),
		WalletID:        walletID,
		Chain:           chain,
		DerivationIndex: index,
		DerivationPath:  adapter.DefaultPath(index).String(),
		PublicKeyHex:    pub,
		Address:         addr,
		Name:            name,
		CreatedAt:       time.Now(),
	}
	if err := s.st.CreateAccount(ctx, acct); err != nil {
		return store.Account{}, err
	}
	return acct, nil
}

// DeleteAccount removes an account record.
func (s *Service) DeleteAccount(ctx context.Context, accountID string) error {
	return s.st.DeleteAccount(ctx, accountID)
}

// SignTransaction signs tx on behalf of accountID.
func (s *Service) SignTransaction(ctx context.Context, accountID string, tx chainkit.TxRequest) ([]byte, error) {
	return s.dispatch.Sign(ctx, accountID, tx)
}

// SignMessage produces a detached signature over msg for accountID.
func (s *Service) SignMessage(ctx context.Context, accountID string, msg []byte) ([]byte, error) {
	return s.dispatch.SignMessage(ctx, accountID, msg)
}

// ValidateAddress validates s as an address on chain.
func (s *Service) ValidateAddress(chain chainkit.ID, addr string) (bool, error) {
	return signer.ValidateAddress(chain, addr)
}

// CreateGroup persists a new multi-sig group.
func (s *Service) CreateGroup(ctx context.Context, g multisig.Group) error {
	return s.st.CreateGroup(ctx, g)
}

// ListGroups lists every persisted multi-sig group.
func (s *Service) ListGroups(ctx context.Context) ([]multisig.Group, error) {
	return s.st.ListGroups(ctx)
}

// Propose, Approve, Execute, Cancel delegate to the multisig.Coordinator.
func (s *Service) Propose(ctx context.Context, groupID string, p multisig.Proposal, sig []byte) (multisig.Proposal, error) {
	return s.coord.Propose(ctx, groupID, p, sig)
}
func (s *Service) Approve(ctx context.Context, proposalID, owner string) (multisig.Proposal, error) {
	return s.coord.Approve(ctx, proposalID, owner)
}
func (s *Service) Execute(ctx context.Context, proposalID string) (multisig.Proposal, error) {
	return s.coord.Execute(ctx, proposalID)
}
func (s *Service) Cancel(ctx context.Context, proposalID, owner string) (multisig.Proposal, error) {
	return s.coord.Cancel(ctx, proposalID, owner)
}

func randID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
