package signer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskvault/duskvault/internal/chainkit"
	_ "github.com/duskvault/duskvault/internal/chainkit/ethereum"
	_ "github.com/duskvault/duskvault/internal/chainkit/solana"
	"github.com/duskvault/duskvault/internal/keyring"
	"github.com/duskvault/duskvault/internal/seed"
	"github.com/duskvault/duskvault/internal/signer"
	"github.com/duskvault/duskvault/internal/vaultcrypto"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

type fakeAccounts map[string]signer.Account

func (f fakeAccounts) GetAccount(_ context.Context, id string) (signer.Account, error) {
	a, ok := f[id]
	if !ok {
		return signer.Account{}, assertNotFound{}
	}
	return a, nil
}

type assertNotFound struct{}

func (assertNotFound) Error() string { return "not found" }

func unlockedKeyring(t *testing.T) *keyring.Keyring {
	t.Helper()
	k := keyring.New(keyring.WithKDFParams(vaultcrypto.KDFParams{MemoryKiB: 8 * 1024, Iterations: 1, Parallelism: 1}))
	require.NoError(t, k.Create(context.Background(), "pw", seed.New(testMnemonic, "")))
	return k
}

func TestSignEthereumTransaction(t *testing.T) {
	t.Parallel()
	k := unlockedKeyring(t)
	accounts := fakeAccounts{
		"acct-eth": {Chain: chainkit.Ethereum, DerivationPath: "m/44'/60'/0'/0/0"},
	}
	d := signer.New(k, accounts)

	sig, err := d.Sign(context.Background(), "acct-eth", chainkit.TxRequest{
		To:       "0x9858EfFD232B4033E47d90003D41EC34EcaEda94",
		Amount:   []byte{1},
		Nonce:    0,
		ChainID:  []byte{1},
		GasLimit: 21000,
		GasPrice: []byte{1},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
}

func TestSignSolanaMessage(t *testing.T) {
	t.Parallel()
	k := unlockedKeyring(t)
	accounts := fakeAccounts{
		"acct-sol": {Chain: chainkit.Solana, DerivationPath: "m/44'/501'/0'/0'"},
	}
	d := signer.New(k, accounts)

	sig, err := d.SignMessage(context.Background(), "acct-sol", []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, sig, 64)
}

func TestSignUnknownAccountFails(t *testing.T) {
	t.Parallel()
	k := unlockedKeyring(t)
	d := signer.New(k, fakeAccounts{})

	_, err := d.SignMessage(context.Background(), "missing", []byte("x"))
	require.Error(t, err)
}

func TestValidateAddress(t *testing.T) {
	t.Parallel()
	valid, err := signer.ValidateAddress(chainkit.Ethereum, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestSignFailsWhenKeyringLocked(t *testing.T) {
	t.Parallel()
	k := unlockedKeyring(t)
	k.Lock()
	accounts := fakeAccounts{"acct-sol": {Chain: chainkit.Solana, DerivationPath: "m/44'/501'/0'/0'"}}
	d := signer.New(k, accounts)

	_, err := d.SignMessage(context.Background(), "acct-sol", []byte("x"))
	require.Error(t, err)
}
