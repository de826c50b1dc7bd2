// Package filestore implements internal/store.Store as one atomically
// written JSON file per record under a directory tree, standing in for an
// external key-value or SQL store.
package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/duskvault/duskvault/internal/fileutil"
	"github.com/duskvault/duskvault/internal/multisig"
	"github.com/duskvault/duskvault/internal/store"
	"github.com/duskvault/duskvault/internal/vaultcrypto"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

const filePerm = 0o600

// Store is a directory-backed store.Store implementation.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a Store rooted at dir, creating the subdirectory layout if it
// does not yet exist.
func New(dir string) (*Store, error) {
	for _, sub := range []string{"wallets", "accounts", "groups", "proposals", "vaults"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o700); err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "creating %s directory", sub)
		}
	}
	return &Store{root: dir}, nil
}

func (s *Store) path(sub, id string) string {
	return filepath.Join(s.root, sub, id+".json")
}

func writeRecord(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "marshaling record")
	}
	if err := fileutil.WriteAtomic(path, data, filePerm); err != nil {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "writing record")
	}
	return nil
}

func readRecord(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from a store-internal id, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return vaulterr.ErrNotFound
		}
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "reading record")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "unmarshaling record")
	}
	return nil
}

func listRecords[T any](dir string) ([]T, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "listing %s", dir)
	}

	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var v T
		if err := readRecord(filepath.Join(dir, e.Name()), &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) CreateWallet(_ context.Context, w store.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeRecord(s.path("wallets", w.ID), w)
}

func (s *Store) GetWallet(_ context.Context, id string) (store.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var w store.Wallet
	err := readRecord(s.path("wallets", id), &w)
	return w, err
}

func (s *Store) ListWallets(_ context.Context) ([]store.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listRecords[store.Wallet](filepath.Join(s.root, "wallets"))
}

func (s *Store) DeleteWallet(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path("wallets", id)); err != nil && !os.IsNotExist(err) {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "deleting wallet")
	}
	return nil
}

func (s *Store) SaveEnvelope(_ context.Context, vaultRef string, env *vaultcrypto.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeRecord(s.path("vaults", vaultRef), env)
}

func (s *Store) LoadEnvelope(_ context.Context, vaultRef string) (*vaultcrypto.Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var env vaultcrypto.Envelope
	if err := readRecord(s.path("vaults", vaultRef), &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (s *Store) DeleteEnvelope(_ context.Context, vaultRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path("vaults", vaultRef)); err != nil && !os.IsNotExist(err) {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "deleting envelope")
	}
	return nil
}

func (s *Store) CreateAccount(_ context.Context, a store.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeRecord(s.path("accounts", a.ID), a)
}

func (s *Store) GetAccount(_ context.Context, id string) (store.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var a store.Account
	err := readRecord(s.path("accounts", id), &a)
	return a, err
}

func (s *Store) ListAccounts(_ context.Context, walletID string) ([]store.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := listRecords[store.Account](filepath.Join(s.root, "accounts"))
	if err != nil {
		return nil, err
	}
	if walletID == "" {
		return all, nil
	}
	out := make([]store.Account, 0, len(all))
	for _, a := range all {
		if a.WalletID == walletID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path("accounts", id)); err != nil && !os.IsNotExist(err) {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "deleting account")
	}
	return nil
}

func (s *Store) CreateGroup(_ context.Context, g multisig.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeRecord(s.path("groups", g.ID), g)
}

func (s *Store) GetGroup(_ context.Context, id string) (multisig.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var g multisig.Group
	err := readRecord(s.path("groups", id), &g)
	return g, err
}

func (s *Store) ListGroups(_ context.Context) ([]multisig.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listRecords[multisig.Group](filepath.Join(s.root, "groups"))
}

func (s *Store) CreateProposal(_ context.Context, p multisig.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeRecord(s.path("proposals", p.ID), p)
}

func (s *Store) GetProposal(_ context.Context, id string) (multisig.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var p multisig.Proposal
	err := readRecord(s.path("proposals", id), &p)
	return p, err
}

func (s *Store) ListProposals(_ context.Context, groupID string) ([]multisig.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := listRecords[multisig.Proposal](filepath.Join(s.root, "proposals"))
	if err != nil {
		return nil, err
	}
	if groupID == "" {
		return all, nil
	}
	out := make([]multisig.Proposal, 0, len(all))
	for _, p := range all {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) UpdateProposal(_ context.Context, p multisig.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeRecord(s.path("proposals", p.ID), p)
}

// Tx serializes fn against the same mutex guarding every other Store
// method, giving callers a consistent view across the compound
// read-modify-write sequences internal/multisig and internal/walletsvc
// perform (e.g. approve-then-maybe-execute).
func (s *Store) Tx(_ context.Context, fn func(store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&unlockedStore{s})
}

// unlockedStore re-exposes Store's methods without re-acquiring s.mu, for
// use strictly inside Tx's callback where the lock is already held.
type unlockedStore struct {
	s *Store
}

func (u *unlockedStore) CreateWallet(ctx context.Context, w store.Wallet) error { return writeRecord(u.s.path("wallets", w.ID), w) }
func (u *unlockedStore) GetWallet(_ context.Context, id string) (store.Wallet, error) {
	var w store.Wallet
	err := readRecord(u.s.path("wallets", id), &w)
	return w, err
}
func (u *unlockedStore) ListWallets(_ context.Context) ([]store.Wallet, error) {
	return listRecords[store.Wallet](filepath.Join(u.s.root, "wallets"))
}
func (u *unlockedStore) DeleteWallet(_ context.Context, id string) error {
	if err := os.Remove(u.s.path("wallets", id)); err != nil && !os.IsNotExist(err) {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "deleting wallet")
	}
	return nil
}
func (u *unlockedStore) SaveEnvelope(_ context.Context, vaultRef string, env *vaultcrypto.Envelope) error {
	return writeRecord(u.s.path("vaults", vaultRef), env)
}
func (u *unlockedStore) LoadEnvelope(_ context.Context, vaultRef string) (*vaultcrypto.Envelope, error) {
	var env vaultcrypto.Envelope
	if err := readRecord(u.s.path("vaults", vaultRef), &env); err != nil {
		return nil, err
	}
	return &env, nil
}
func (u *unlockedStore) DeleteEnvelope(_ context.Context, vaultRef string) error {
	if err := os.Remove(u.s.path("vaults", vaultRef)); err != nil && !os.IsNotExist(err) {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "deleting envelope")
	}
	return nil
}

func (u *unlockedStore) CreateAccount(_ context.Context, a store.Account) error {
	return writeRecord(u.s.path("accounts", a.ID), a)
}
func (u *unlockedStore) GetAccount(_ context.Context, id string) (store.Account, error) {
	var a store.Account
	err := readRecord(u.s.path("accounts", id), &a)
	return a, err
}
func (u *unlockedStore) ListAccounts(_ context.Context, walletID string) ([]store.Account, error) {
	all, err := listRecords[store.Account](filepath.Join(u.s.root, "accounts"))
	if err != nil {
		return nil, err
	}
	if walletID == "" {
		return all, nil
	}
	out := make([]store.Account, 0, len(all))
	for _, a := range all {
		if a.WalletID == walletID {
			out = append(out, a)
		}
	}
	return out, nil
}
func (u *unlockedStore) DeleteAccount(_ context.Context, id string) error {
	if err := os.Remove(u.s.path("accounts", id)); err != nil && !os.IsNotExist(err) {
		return vaulterr.Wrap(vaulterr.KindStorageUnavailable, err, "deleting account")
	}
	return nil
}
func (u *unlockedStore) CreateGroup(_ context.Context, g multisig.Group) error {
	return writeRecord(u.s.path("groups", g.ID), g)
}
func (u *unlockedStore) GetGroup(_ context.Context, id string) (multisig.Group, error) {
	var g multisig.Group
	err := readRecord(u.s.path("groups", id), &g)
	return g, err
}
func (u *unlockedStore) ListGroups(_ context.Context) ([]multisig.Group, error) {
	return listRecords[multisig.Group](filepath.Join(u.s.root, "groups"))
}
func (u *unlockedStore) CreateProposal(_ context.Context, p multisig.Proposal) error {
	return writeRecord(u.s.path("proposals", p.ID), p)
}
func (u *unlockedStore) GetProposal(_ context.Context, id string) (multisig.Proposal, error) {
	var p multisig.Proposal
	err := readRecord(u.s.path("proposals", id), &p)
	return p, err
}
func (u *unlockedStore) ListProposals(_ context.Context, groupID string) ([]multisig.Proposal, error) {
	all, err := listRecords[multisig.Proposal](filepath.Join(u.s.root, "proposals"))
	if err != nil {
		return nil, err
	}
	if groupID == "" {
		return all, nil
	}
	out := make([]multisig.Proposal, 0, len(all))
	for _, p := range all {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (u *unlockedStore) UpdateProposal(_ context.Context, p multisig.Proposal) error {
	return writeRecord(u.s.path("proposals", p.ID), p)
}
func (u *unlockedStore) Tx(ctx context.Context, fn func(store.Store) error) error {
	return fn(u)
}
