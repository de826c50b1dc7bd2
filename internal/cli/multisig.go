package cli

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/duskvault/duskvault/internal/chainkit"
	"github.com/duskvault/duskvault/internal/multisig"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	groupChain     string
	groupThreshold int
	groupOwners    []string
	groupSigner    string

	proposeID        string
	proposeTo        string
	proposeAmount    string
	proposeCallData  string
	proposeNonce     uint64
	proposeSignature string
	approveOwner     string
	cancelOwner      string
)

var multisigCmd = &cobra.Command{
	Use:   "multisig",
	Short: "Manage threshold multi-signature groups and proposals",
}

var multisigGroupCreateCmd = &cobra.Command{
	Use:   "group-create <group-id>",
	Short: "Create a multi-sig group",
	Args:  cobra.ExactArgs(1),
	RunE:  runMultisigGroupCreate,
}

var multisigGroupListCmd = &cobra.Command{
	Use:   "group-list",
	Short: "List multi-sig groups",
	Args:  cobra.NoArgs,
	RunE:  runMultisigGroupList,
}

var multisigProposeCmd = &cobra.Command{
	Use:   "propose <group-id>",
	Short: "Propose a spend from a multi-sig group",
	Args:  cobra.ExactArgs(1),
	RunE:  runMultisigPropose,
}

var multisigApproveCmd = &cobra.Command{
	Use:   "approve <proposal-id>",
	Short: "Approve a pending proposal",
	Args:  cobra.ExactArgs(1),
	RunE:  runMultisigApprove,
}

var multisigExecuteCmd = &cobra.Command{
	Use:   "execute <proposal-id>",
	Short: "Execute a proposal once its approval threshold is met",
	Args:  cobra.ExactArgs(1),
	RunE:  runMultisigExecute,
}

var multisigCancelCmd = &cobra.Command{
	Use:   "cancel <proposal-id>",
	Short: "Cancel a pending proposal",
	Args:  cobra.ExactArgs(1),
	RunE:  runMultisigCancel,
}

func runMultisigGroupCreate(cmd *cobra.Command, args []string) error {
	groupID, err := sanitizeIdentifier("group", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)

	chain := chainkit.ID(groupChain)
	if !chainkit.Known(chain) {
		return vaulterr.New(vaulterr.KindInvalidInput, "unknown chain %q", groupChain)
	}
	if groupThreshold < 1 || groupThreshold > len(groupOwners) {
		return vaulterr.New(vaulterr.KindInvalidInput, "threshold must be between 1 and the number of owners")
	}

	group := multisig.Group{
		ID:        groupID,
		Chain:     chain,
		Threshold: groupThreshold,
		Owners:    groupOwners,
	}
	if err := ctx.Wallet.CreateGroup(cmd.Context(), group); err != nil {
		return err
	}
	if groupSigner != "" {
		ctx.Wallet.BindGroupSigner(groupID, groupSigner)
	}

	return ctx.Fmt.Printf("group %q created: threshold=%d/%d\n", groupID, groupThreshold, len(groupOwners))
}

func runMultisigGroupList(cmd *cobra.Command, _ []string) error {
	ctx := GetCmdContext(cmd)
	groups, err := ctx.Wallet.ListGroups(cmd.Context())
	if err != nil {
		return err
	}
	if ctx.Fmt.IsJSON() {
		return ctx.Fmt.Print(groups)
	}
	for _, g := range groups {
		if perr := ctx.Fmt.Printf("%-20s chain=%-10s threshold=%d/%d owners=%s\n",
			g.ID, g.Chain, g.Threshold, len(g.Owners), strings.Join(g.Owners, ",")); perr != nil {
			return perr
		}
	}
	return nil
}

func runMultisigPropose(cmd *cobra.Command, args []string) error {
	groupID, err := sanitizeIdentifier("group", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)

	amount, ok := new(big.Int).SetString(proposeAmount, 10)
	if !ok || amount.Sign() < 0 {
		return vaulterr.New(vaulterr.KindInvalidInput, "amount must be a non-negative base-unit integer, got %q", proposeAmount)
	}

	var callData []byte
	if proposeCallData != "" {
		callData = []byte(proposeCallData)
	}

	proposalID, err := sanitizeIdentifier("proposal", proposeID)
	if err != nil {
		return err
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(proposeSignature, "0x"))
	if err != nil {
		return vaulterr.New(vaulterr.KindInvalidInput, "signature must be hex-encoded: %v", err)
	}

	p, err := ctx.Wallet.Propose(cmd.Context(), groupID, multisig.NewProposal(proposalID, groupID, proposeTo, amount, callData, proposeNonce), sig)
	if err != nil {
		return err
	}
	return printProposal(ctx, p)
}

func runMultisigApprove(cmd *cobra.Command, args []string) error {
	proposalID, err := sanitizeIdentifier("proposal", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)
	p, err := ctx.Wallet.Approve(cmd.Context(), proposalID, approveOwner)
	if err != nil {
		return err
	}
	return printProposal(ctx, p)
}

func runMultisigExecute(cmd *cobra.Command, args []string) error {
	proposalID, err := sanitizeIdentifier("proposal", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)
	p, err := ctx.Wallet.Execute(cmd.Context(), proposalID)
	if err != nil {
		return err
	}
	return printProposal(ctx, p)
}

func runMultisigCancel(cmd *cobra.Command, args []string) error {
	proposalID, err := sanitizeIdentifier("proposal", args[0])
	if err != nil {
		return err
	}
	ctx := GetCmdContext(cmd)
	p, err := ctx.Wallet.Cancel(cmd.Context(), proposalID, cancelOwner)
	if err != nil {
		return err
	}
	return printProposal(ctx, p)
}

func printProposal(ctx *CommandContext, p multisig.Proposal) error {
	if ctx.Fmt.IsJSON() {
		return ctx.Fmt.Print(p)
	}
	return ctx.Fmt.Printf("proposal %s: status=%s to=%s amount=%s approvals=%d\n",
		p.ID, p.Status, p.To, p.Amount, len(p.Approvals))
}

func init() {
	multisigGroupCreateCmd.Flags().StringVar(&groupChain, "chain", "", "chain the group signs on (required)")
	multisigGroupCreateCmd.Flags().IntVar(&groupThreshold, "threshold", 1, "number of approvals required")
	multisigGroupCreateCmd.Flags().StringSliceVar(&groupOwners, "owner", nil, "owner identifier, repeatable")
	multisigGroupCreateCmd.Flags().StringVar(&groupSigner, "signer-account", "", "account id that signs executed proposals for this group")
	_ = multisigGroupCreateCmd.MarkFlagRequired("chain")
	_ = multisigGroupCreateCmd.MarkFlagRequired("owner")

	multisigProposeCmd.Flags().StringVar(&proposeID, "id", "", "proposal id (required)")
	multisigProposeCmd.Flags().StringVar(&proposeTo, "to", "", "recipient address (required)")
	multisigProposeCmd.Flags().StringVar(&proposeAmount, "amount", "0", "amount in the chain's smallest unit")
	multisigProposeCmd.Flags().StringVar(&proposeCallData, "data", "", "raw call data")
	multisigProposeCmd.Flags().Uint64Var(&proposeNonce, "nonce", 0, "transaction nonce")
	multisigProposeCmd.Flags().StringVar(&proposeSignature, "signature", "", "hex-encoded owner signature over the proposal payload (required)")
	_ = multisigProposeCmd.MarkFlagRequired("id")
	_ = multisigProposeCmd.MarkFlagRequired("to")
	_ = multisigProposeCmd.MarkFlagRequired("signature")

	multisigApproveCmd.Flags().StringVar(&approveOwner, "owner", "", "approving owner identifier (required)")
	_ = multisigApproveCmd.MarkFlagRequired("owner")

	multisigCancelCmd.Flags().StringVar(&cancelOwner, "owner", "", "cancelling owner identifier (required)")
	_ = multisigCancelCmd.MarkFlagRequired("owner")

	multisigCmd.AddCommand(multisigGroupCreateCmd, multisigGroupListCmd, multisigProposeCmd, multisigApproveCmd, multisigExecuteCmd, multisigCancelCmd)
	rootCmd.AddCommand(multisigCmd)
}
