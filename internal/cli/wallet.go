package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/duskvault/duskvault/internal/mnemonic"
	"github.com/duskvault/duskvault/internal/session"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	createWords      int
	createPassphrase bool
	restoreWords     []string
	sessionTTL       time.Duration
	resetYes         bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Create, restore, and manage wallets",
}

var walletCreateCmd = &cobra.Command{
	Use:   "create <wallet-id>",
	Short: "Create a new wallet from a freshly generated mnemonic",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletCreate,
}

var walletRestoreCmd = &cobra.Command{
	Use:   "restore <wallet-id>",
	Short: "Restore a wallet from an existing recovery phrase",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletRestore,
}

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock <wallet-id>",
	Short: "Unlock a wallet for the current session",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletUnlock,
}

var walletLockCmd = &cobra.Command{
	Use:   "lock <wallet-id>",
	Short: "Lock the wallet and end any cached session",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletLock,
}

var walletStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the wallet is currently unlocked",
	Args:  cobra.NoArgs,
	RunE:  runWalletStatus,
}

var walletResetCmd = &cobra.Command{
	Use:   "reset <wallet-id>",
	Short: "Permanently delete a wallet's envelope and derived accounts",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletReset,
}

func runWalletCreate(cmd *cobra.Command, args []string) error {
	walletID, err := sanitizeIdentifier("wallet", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)

	if createWords != 12 && createWords != 15 && createWords != 18 && createWords != 21 && createWords != 24 {
		return vaulterr.New(vaulterr.KindInvalidInput, "word count must be one of 12, 15, 18, 21, 24")
	}

	password, err := promptNewPassword()
	if err != nil {
		return err
	}
	defer zeroBytes(password)

	if createPassphrase {
		passphrase, ppErr := promptPassphrase()
		if ppErr != nil {
			return ppErr
		}
		if passphrase != "" {
			outln(cmd.OutOrStderr(), "Note: BIP39 passphrases are not yet combined into seed derivation; the phrase below is the sole backup of this wallet.")
		}
	}

	phrase, err := ctx.Wallet.CreateWallet(cmd.Context(), walletID, walletID, string(password), createWords)
	if err != nil {
		return err
	}

	displayMnemonic(phrase, cmd)
	outln(cmd.OutOrStdout())
	out(cmd.OutOrStdout(), "Wallet %q created and unlocked.\n", walletID)
	return nil
}

func runWalletRestore(cmd *cobra.Command, args []string) error {
	walletID, err := sanitizeIdentifier("wallet", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)

	words := restoreWords
	if len(words) == 0 {
		phrase, err := promptMnemonic()
		if err != nil {
			return err
		}
		words = strings.Fields(phrase)
	}

	password, err := promptNewPassword()
	if err != nil {
		return err
	}
	defer zeroBytes(password)

	if err := ctx.Wallet.ImportWallet(cmd.Context(), walletID, walletID, string(password), words); err != nil {
		return err
	}

	outln(cmd.OutOrStdout())
	out(cmd.OutOrStdout(), "Wallet %q restored and unlocked.\n", walletID)
	return nil
}

func runWalletUnlock(cmd *cobra.Command, args []string) error {
	walletID, err := sanitizeIdentifier("wallet", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)

	if ctx.SessionMgr != nil && ctx.SessionMgr.Available() {
		if seedBytes, sess, sessErr := ctx.SessionMgr.GetSession(walletID); sessErr == nil {
			defer zeroBytes(seedBytes)
			if unlockErr := ctx.Wallet.UnlockCachedSeed(cmd.Context(), walletID, seedBytes); unlockErr == nil {
				out(cmd.OutOrStdout(), "Wallet %q unlocked from cached session (expires in %s).\n", walletID, sess.TTL().Round(time.Second))
				return nil
			}
		}
	}

	password, err := promptPassword("Enter wallet password: ")
	if err != nil {
		return err
	}
	defer zeroBytes(password)

	if err := ctx.Wallet.Unlock(cmd.Context(), walletID, string(password)); err != nil {
		return err
	}

	if ctx.SessionMgr != nil && ctx.SessionMgr.Available() {
		if seedErr := ctx.Wallet.WithSeed(func(seedBytes []byte) error {
			return ctx.SessionMgr.StartSession(walletID, seedBytes, sessionTTL)
		}); seedErr != nil {
			ctx.Log.Debug("failed to cache session for wallet %s: %v", walletID, seedErr)
		}
	}

	out(cmd.OutOrStdout(), "Wallet %q unlocked.\n", walletID)
	return nil
}

func runWalletLock(cmd *cobra.Command, args []string) error {
	walletID, err := sanitizeIdentifier("wallet", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)

	ctx.Wallet.Lock()
	if ctx.SessionMgr != nil {
		_ = ctx.SessionMgr.EndSession(walletID)
	}
	out(cmd.OutOrStdout(), "Wallet %q locked.\n", walletID)
	return nil
}

func runWalletReset(cmd *cobra.Command, args []string) error {
	walletID, err := sanitizeIdentifier("wallet", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)

	if !resetYes && !promptConfirmation("This permanently deletes the envelope and every account for wallet "+walletID+". Continue?") {
		return vaulterr.New(vaulterr.KindInvalidInput, "reset cancelled")
	}

	if err := ctx.Wallet.Reset(cmd.Context()); err != nil {
		return err
	}
	if ctx.SessionMgr != nil {
		_ = ctx.SessionMgr.EndSession(walletID)
	}

	return ctx.Fmt.Printf("wallet %q reset; envelope and accounts deleted.\n", walletID)
}

func runWalletStatus(cmd *cobra.Command, _ []string) error {
	ctx := GetCmdContext(cmd)
	status := ctx.Wallet.Status()

	if ctx.Fmt.IsJSON() {
		return ctx.Fmt.Print(status)
	}
	state := "locked"
	if status.Unlocked {
		state = "unlocked"
	}
	return ctx.Fmt.Printf("wallet %q is %s\n", status.WalletID, state)
}

// displayMnemonic shows the recovery phrase with formatting meant to
// discourage accidental screenshots or scrollback loss.
func displayMnemonic(phrase mnemonic.Phrase, cmd *cobra.Command) {
	w := cmd.OutOrStdout()
	outln(w)
	outln(w, "===================================================================")
	outln(w, "                        RECOVERY PHRASE")
	outln(w, "===================================================================")
	outln(w)
	outln(w, "Write down these words in order and store them offline.")
	outln(w, "This is the only way to recover this wallet.")
	outln(w)

	for i, word := range phrase {
		out(w, "%2d. %s\n", i+1, word)
	}

	outln(w)
	outln(w, "===================================================================")
}

func init() {
	walletCreateCmd.Flags().IntVar(&createWords, "words", 24, "mnemonic word count: 12, 15, 18, 21, or 24")
	walletCreateCmd.Flags().BoolVar(&createPassphrase, "passphrase", false, "prompt for an additional BIP39 passphrase")

	walletRestoreCmd.Flags().StringSliceVar(&restoreWords, "words", nil, "recovery phrase words (prompted interactively if omitted)")

	walletUnlockCmd.Flags().DurationVar(&sessionTTL, "session-ttl", session.DefaultTTL, "how long to cache the unlocked seed for future commands")

	walletResetCmd.Flags().BoolVar(&resetYes, "yes", false, "skip the confirmation prompt")

	walletCmd.AddCommand(walletCreateCmd, walletRestoreCmd, walletUnlockCmd, walletLockCmd, walletStatusCmd, walletResetCmd)
	rootCmd.AddCommand(walletCmd)
}
