package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/duskvault/duskvault/internal/chainkit"
	_ "github.com/duskvault/duskvault/internal/chainkit/ethereum"
	_ "github.com/duskvault/duskvault/internal/chainkit/solana"
	"github.com/duskvault/duskvault/internal/keyring"
	"github.com/duskvault/duskvault/internal/output"
	"github.com/duskvault/duskvault/internal/store/filestore"
	"github.com/duskvault/duskvault/internal/vaultcrypto"
	"github.com/duskvault/duskvault/internal/walletsvc"
)

// newTestCommand builds a cobra.Command carrying a CommandContext wired to
// a throwaway file-backed store and a fast-KDF keyring, with output captured
// in the returned buffer. format controls the attached Formatter.
func newTestCommand(t *testing.T, format output.Format) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	st, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	kr := keyring.New(keyring.WithKDFParams(vaultcrypto.KDFParams{MemoryKiB: 8 * 1024, Iterations: 1, Parallelism: 1}))
	svc := walletsvc.New(kr, st, nil)

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())

	SetCmdContext(cmd, &CommandContext{
		Fmt:    output.NewFormatter(format, &buf),
		Store:  st,
		Wallet: svc,
	})

	return cmd, &buf
}

// requireWallet creates and unlocks a wallet directly through the service
// attached to cmd, bypassing the interactive create/restore flow.
func requireWallet(t *testing.T, cmd *cobra.Command, walletID, password string) {
	t.Helper()
	ctx := GetCmdContext(cmd)
	_, err := ctx.Wallet.CreateWallet(cmd.Context(), walletID, walletID, password, 12)
	require.NoError(t, err)
}

func requireAccount(t *testing.T, cmd *cobra.Command, walletID string, chain chainkit.ID) string {
	t.Helper()
	ctx := GetCmdContext(cmd)
	acct, err := ctx.Wallet.CreateAccount(cmd.Context(), walletID, chain, "primary")
	require.NoError(t, err)
	return acct.ID
}
