package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/duskvault/duskvault/internal/config"
	"github.com/duskvault/duskvault/internal/output"
	"github.com/duskvault/duskvault/internal/session"
	"github.com/duskvault/duskvault/internal/store"
	"github.com/duskvault/duskvault/internal/walletsvc"
)

// contextKey is the type for context keys to avoid collisions.
type contextKey string

// cmdCtxKey is the key for storing CommandContext in cobra's context.
const cmdCtxKey contextKey = "duskvault-cmd-ctx"

// CommandContext holds the dependencies every subcommand needs.
type CommandContext struct {
	Cfg        *config.Config
	Log        *config.Logger
	Fmt        *output.Formatter
	Store      store.Store
	Wallet     *walletsvc.Service
	SessionMgr session.Manager
}

// SetCmdContext stores the CommandContext in the cobra command's context.
func SetCmdContext(cmd *cobra.Command, ctx *CommandContext) {
	cmd.SetContext(context.WithValue(cmd.Context(), cmdCtxKey, ctx))
}

// GetCmdContext retrieves the CommandContext from the cobra command's context.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	if cmdCtx, ok := ctx.Value(cmdCtxKey).(*CommandContext); ok {
		return cmdCtx
	}
	return nil
}
