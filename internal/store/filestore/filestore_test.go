package filestore_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskvault/duskvault/internal/chainkit"
	"github.com/duskvault/duskvault/internal/multisig"
	"github.com/duskvault/duskvault/internal/store"
	"github.com/duskvault/duskvault/internal/store/filestore"
	"github.com/duskvault/duskvault/internal/vaultcrypto"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

func TestWalletCRUD(t *testing.T) {
	t.Parallel()
	fs, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	w := store.Wallet{ID: "w1", Name: "primary", Type: store.Standard, CreatedAt: time.Now()}
	require.NoError(t, fs.CreateWallet(ctx, w))

	got, err := fs.GetWallet(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, w.Name, got.Name)

	list, err := fs.ListWallets(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, fs.DeleteWallet(ctx, "w1"))
	_, err = fs.GetWallet(ctx, "w1")
	require.Error(t, err)
	assert.True(t, vaulterr.Is(err, vaulterr.KindNotFound))
}

func TestAccountListFiltersByWallet(t *testing.T) {
	t.Parallel()
	fs, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.CreateAccount(ctx, store.Account{ID: "a1", WalletID: "w1", Chain: chainkit.Ethereum}))
	require.NoError(t, fs.CreateAccount(ctx, store.Account{ID: "a2", WalletID: "w2", Chain: chainkit.Solana}))

	list, err := fs.ListAccounts(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)
}

func TestProposalUpdateOverwrites(t *testing.T) {
	t.Parallel()
	fs, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.CreateGroup(ctx, multisig.Group{ID: "g1", Chain: chainkit.Ethereum, Threshold: 2, Owners: []string{"A", "B"}}))

	p := multisig.NewProposal("p1", "g1", "0xdead", big.NewInt(5), nil, 0)
	require.NoError(t, fs.CreateProposal(ctx, p))

	p.Status = multisig.Ready
	p.Approvals["A"] = struct{}{}
	require.NoError(t, fs.UpdateProposal(ctx, p))

	got, err := fs.GetProposal(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, multisig.Ready, got.Status)
	assert.Contains(t, got.Approvals, "A")
}

func TestDeleteEnvelopeRemovesVaultFile(t *testing.T) {
	t.Parallel()
	fs, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.SaveEnvelope(ctx, "w1", &vaultcrypto.Envelope{}))
	_, err = fs.LoadEnvelope(ctx, "w1")
	require.NoError(t, err)

	require.NoError(t, fs.DeleteEnvelope(ctx, "w1"))
	_, err = fs.LoadEnvelope(ctx, "w1")
	require.Error(t, err)
	assert.True(t, vaulterr.Is(err, vaulterr.KindNotFound))

	// Deleting an already-absent envelope is not an error.
	require.NoError(t, fs.DeleteEnvelope(ctx, "w1"))
}

func TestTxRunsAgainstSameUnderlyingFiles(t *testing.T) {
	t.Parallel()
	fs, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	err = fs.Tx(ctx, func(s store.Store) error {
		return s.CreateWallet(ctx, store.Wallet{ID: "w1", Name: "tx-wallet"})
	})
	require.NoError(t, err)

	got, err := fs.GetWallet(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "tx-wallet", got.Name)
}
