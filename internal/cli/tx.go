package cli

import (
	"encoding/hex"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/duskvault/duskvault/internal/chainkit"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	txAccount  string
	txTo       string
	txAmount   string
	txData     string
	txNonce    uint64
	txGasLimit uint64
	txGasPrice string
	txChain    string
	txConfirm  bool
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Sign transactions and messages",
}

var txSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a transaction for broadcast",
	Long: `Build and sign a transaction without broadcasting it. The raw signed
transaction bytes are printed hex-encoded so the caller can broadcast them
through whichever RPC endpoint or relay they prefer.`,
	RunE: runTxSign,
}

var txSignMessageCmd = &cobra.Command{
	Use:   "sign-message",
	Short: "Produce a detached signature over an arbitrary message",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxSignMessage,
}

var txValidateAddressCmd = &cobra.Command{
	Use:   "validate-address <address>",
	Short: "Check whether an address is well-formed for a chain",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxValidateAddress,
}

func runTxSign(cmd *cobra.Command, _ []string) error {
	ctx := GetCmdContext(cmd)

	amount, ok := new(big.Int).SetString(txAmount, 10)
	if !ok || amount.Sign() < 0 {
		return vaulterr.New(vaulterr.KindInvalidInput, "amount must be a non-negative base-unit integer, got %q", txAmount)
	}

	gasPrice := new(big.Int)
	if txGasPrice != "" {
		var gpOK bool
		gasPrice, gpOK = new(big.Int).SetString(txGasPrice, 10)
		if !gpOK {
			return vaulterr.New(vaulterr.KindInvalidInput, "gas price must be a base-unit integer, got %q", txGasPrice)
		}
	}

	var data []byte
	if txData != "" {
		decoded, err := hex.DecodeString(txData)
		if err != nil {
			return vaulterr.Wrap(vaulterr.KindInvalidInput, err, "decoding --data as hex")
		}
		data = decoded
	}

	if !txConfirm && !promptConfirmation("Sign a transaction sending " + txAmount + " to " + txTo + "?") {
		return vaulterr.New(vaulterr.KindInvalidInput, "signing cancelled")
	}

	req := chainkit.TxRequest{
		To:       txTo,
		Amount:   amount.Bytes(),
		Data:     data,
		Nonce:    txNonce,
		GasLimit: txGasLimit,
		GasPrice: gasPrice.Bytes(),
	}

	raw, err := ctx.Wallet.SignTransaction(cmd.Context(), txAccount, req)
	if err != nil {
		return err
	}

	if ctx.Fmt.IsJSON() {
		return ctx.Fmt.Print(map[string]string{"raw_tx": hex.EncodeToString(raw)})
	}
	return ctx.Fmt.Printf("%s\n", hex.EncodeToString(raw))
}

func runTxSignMessage(cmd *cobra.Command, args []string) error {
	ctx := GetCmdContext(cmd)

	sig, err := ctx.Wallet.SignMessage(cmd.Context(), txAccount, []byte(args[0]))
	if err != nil {
		return err
	}

	if ctx.Fmt.IsJSON() {
		return ctx.Fmt.Print(map[string]string{"signature": hex.EncodeToString(sig)})
	}
	return ctx.Fmt.Printf("%s\n", hex.EncodeToString(sig))
}

func runTxValidateAddress(cmd *cobra.Command, args []string) error {
	ctx := GetCmdContext(cmd)
	chain := chainkit.ID(txChain)
	if !chainkit.Known(chain) {
		return vaulterr.New(vaulterr.KindInvalidInput, "unknown chain %q", txChain)
	}

	valid, err := ctx.Wallet.ValidateAddress(chain, args[0])
	if err != nil {
		return err
	}

	if ctx.Fmt.IsJSON() {
		return ctx.Fmt.Print(map[string]bool{"valid": valid})
	}
	if valid {
		return ctx.Fmt.Println("valid")
	}
	return ctx.Fmt.Println("invalid")
}

func init() {
	txSignCmd.Flags().StringVar(&txAccount, "account", "", "signing account id (required)")
	txSignCmd.Flags().StringVar(&txTo, "to", "", "recipient address (required)")
	txSignCmd.Flags().StringVar(&txAmount, "amount", "0", "amount in the chain's smallest unit")
	txSignCmd.Flags().StringVar(&txData, "data", "", "hex-encoded call data")
	txSignCmd.Flags().Uint64Var(&txNonce, "nonce", 0, "transaction nonce")
	txSignCmd.Flags().Uint64Var(&txGasLimit, "gas-limit", 0, "gas limit")
	txSignCmd.Flags().StringVar(&txGasPrice, "gas-price", "", "gas price in the chain's smallest unit")
	txSignCmd.Flags().BoolVar(&txConfirm, "yes", false, "skip the confirmation prompt")
	_ = txSignCmd.MarkFlagRequired("account")
	_ = txSignCmd.MarkFlagRequired("to")

	txSignMessageCmd.Flags().StringVar(&txAccount, "account", "", "signing account id (required)")
	_ = txSignMessageCmd.MarkFlagRequired("account")

	txValidateAddressCmd.Flags().StringVar(&txChain, "chain", "", "chain to validate against (required)")
	_ = txValidateAddressCmd.MarkFlagRequired("chain")

	txCmd.AddCommand(txSignCmd, txSignMessageCmd, txValidateAddressCmd)
	rootCmd.AddCommand(txCmd)
}
