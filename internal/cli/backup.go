package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/duskvault/duskvault/internal/backup"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	backupThreshold int
	backupShares    int
	shareInputs     []string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Split and reconstruct wallet seeds for social recovery",
}

var backupSplitCmd = &cobra.Command{
	Use:   "split <wallet-id>",
	Short: "Split the currently unlocked wallet's seed into Shamir shares",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupSplit,
}

var backupReconstructCmd = &cobra.Command{
	Use:   "reconstruct <wallet-id>",
	Short: "Reconstruct a seed from a threshold subset of shares and restore it as a wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupReconstruct,
}

func backupService(ctx *CommandContext) *backup.Service {
	return backup.NewService(filepath.Join(ctx.Cfg.Home, "backups"))
}

func runBackupSplit(cmd *cobra.Command, args []string) error {
	walletID, err := sanitizeIdentifier("wallet", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)
	svc := backupService(ctx)

	var shares []string
	if err := ctx.Wallet.WithSeed(func(seedBytes []byte) error {
		var splitErr error
		shares, _, splitErr = svc.Split(walletID, seedBytes, backupThreshold, backupShares)
		return splitErr
	}); err != nil {
		return err
	}

	displayShamirShares(shares, backupThreshold, cmd)
	return nil
}

func runBackupReconstruct(cmd *cobra.Command, args []string) error {
	walletID, err := sanitizeIdentifier("wallet", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)
	svc := backupService(ctx)

	shares := shareInputs
	seedBytes, err := svc.Reconstruct(walletID, shares)
	if err != nil {
		return err
	}
	defer zeroBytes(seedBytes)

	password, err := promptNewPassword()
	if err != nil {
		return err
	}
	defer zeroBytes(password)

	if err := ctx.Wallet.RestoreFromSeed(cmd.Context(), walletID, walletID, string(password), seedBytes); err != nil {
		return err
	}

	return ctx.Fmt.Printf("wallet %q reconstructed from %d shares.\n", walletID, len(shares))
}

// displayShamirShares shows the generated Shamir shares for the operator to
// distribute to trustees.
func displayShamirShares(shares []string, threshold int, cmd *cobra.Command) {
	w := cmd.OutOrStdout()
	outln(w)
	outln(w, "===================================================================")
	outln(w, "                    SHAMIR SECRET SHARES")
	outln(w, "===================================================================")
	outln(w)
	out(w, "The seed has been split into %d shares; any %d reconstruct it.\n", len(shares), threshold)
	outln(w, "Store each share with a different trustee.")
	outln(w)

	for i, share := range shares {
		out(w, "Share %d:\n%s\n\n", i+1, share)
	}
	outln(w, "===================================================================")
}

func init() {
	backupSplitCmd.Flags().IntVar(&backupThreshold, "threshold", 2, "shares required to reconstruct")
	backupSplitCmd.Flags().IntVar(&backupShares, "shares", 3, "total shares to generate")

	backupReconstructCmd.Flags().StringSliceVar(&shareInputs, "share", nil, "a share string, repeatable (threshold required)")
	_ = backupReconstructCmd.MarkFlagRequired("share")

	backupCmd.AddCommand(backupSplitCmd, backupReconstructCmd)
	rootCmd.AddCommand(backupCmd)
}
