package cli

import (
	"github.com/spf13/cobra"

	"github.com/duskvault/duskvault/internal/chainkit"
	"github.com/duskvault/duskvault/internal/store"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	accountChain string
	accountName  string
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Derive and manage per-chain accounts within a wallet",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create <wallet-id>",
	Short: "Derive a new account for a chain",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountCreate,
}

var accountListCmd = &cobra.Command{
	Use:   "list <wallet-id>",
	Short: "List accounts derived under a wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountList,
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete <account-id>",
	Short: "Remove an account record",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountDelete,
}

func runAccountCreate(cmd *cobra.Command, args []string) error {
	walletID, err := sanitizeIdentifier("wallet", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)

	chain := chainkit.ID(accountChain)
	if !chainkit.Known(chain) {
		return vaulterr.New(vaulterr.KindInvalidInput, "unknown chain %q", accountChain)
	}

	acct, err := ctx.Wallet.CreateAccount(cmd.Context(), walletID, chain, accountName)
	if err != nil {
		return err
	}

	if ctx.Fmt.IsJSON() {
		return ctx.Fmt.Print(acct)
	}
	return ctx.Fmt.Printf("account %s created: chain=%s address=%s path=%s\n",
		acct.ID, acct.Chain, acct.Address, acct.DerivationPath)
}

func runAccountList(cmd *cobra.Command, args []string) error {
	walletID, err := sanitizeIdentifier("wallet", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)

	accounts, err := ctx.Wallet.ListAccounts(cmd.Context(), walletID)
	if err != nil {
		return err
	}

	if ctx.Fmt.IsJSON() {
		return ctx.Fmt.Print(accounts)
	}
	return printAccountTable(ctx, accounts)
}

func printAccountTable(ctx *CommandContext, accounts []store.Account) error {
	if len(accounts) == 0 {
		return ctx.Fmt.Println("no accounts")
	}
	for _, a := range accounts {
		if err := ctx.Fmt.Printf("%-36s %-10s %-24s %s\n", a.ID, a.Chain, a.Name, a.Address); err != nil {
			return err
		}
	}
	return nil
}

func runAccountDelete(cmd *cobra.Command, args []string) error {
	accountID, err := sanitizeIdentifier("account", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)

	if err := ctx.Wallet.DeleteAccount(cmd.Context(), accountID); err != nil {
		return err
	}
	return ctx.Fmt.Printf("account %s deleted\n", accountID)
}

func init() {
	accountCreateCmd.Flags().StringVar(&accountChain, "chain", "", "chain to derive the account for (required)")
	accountCreateCmd.Flags().StringVar(&accountName, "name", "", "human-readable label for the account")
	_ = accountCreateCmd.MarkFlagRequired("chain")

	accountCmd.AddCommand(accountCreateCmd, accountListCmd, accountDeleteCmd)
	rootCmd.AddCommand(accountCmd)
}
