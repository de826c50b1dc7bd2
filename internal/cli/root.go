// Package cli implements the duskvaultd command-line interface.
//
// Every subcommand reaches its dependencies through GetCmdContext(cmd)
// rather than ad hoc package-level state, so the wiring built in
// PersistentPreRunE is the only place that constructs a Keyring, Store, or
// Service.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/duskvault/duskvault/internal/config"
	"github.com/duskvault/duskvault/internal/keyring"
	"github.com/duskvault/duskvault/internal/output"
	"github.com/duskvault/duskvault/internal/session"
	"github.com/duskvault/duskvault/internal/store/filestore"
	"github.com/duskvault/duskvault/internal/vaultcrypto"
	"github.com/duskvault/duskvault/internal/walletsvc"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	homeDir      string
	outputFormat string
	verbose      bool

	// lastCmdCtx mirrors the CommandContext set on the invoked subcommand so
	// Execute's error path can format with the right Formatter: cobra gives
	// PersistentPreRunE the subcommand being run, not rootCmd, so rootCmd's
	// own context is never populated.
	lastCmdCtx *CommandContext
)

// rootCmd is the base command when called without any subcommands.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires a package-level command tree
var rootCmd = &cobra.Command{
	Use:   "duskvaultd",
	Short: "A self-custodial multi-chain wallet daemon and CLI",
	Long: `duskvaultd manages self-custodial wallets across multiple chains from the
terminal: BIP39 mnemonic wallets, per-chain account derivation, transaction
and message signing, and threshold multi-signature approval flows.

Example:
  duskvaultd wallet create main --words 24
  duskvaultd account create main --chain ethereum --name spending
  duskvaultd tx sign --account <id> --to 0x... --amount 100 --gas-price 1000000000`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		cleanup(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		formatErr(err)
		return err
	}
	return nil
}

// formatErr prints err to stderr in the active output format.
func formatErr(err error) {
	format := output.FormatText
	if lastCmdCtx != nil && lastCmdCtx.Fmt != nil {
		format = lastCmdCtx.Fmt.Format()
	}
	if fmtErr := output.FormatError(os.Stderr, err, format); fmtErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (formatting failed: %v)\n", err, fmtErr)
	}
}

// ExitCode maps err to the process exit code a shell driving the CLI
// should observe, using the same classification output.FormatError prints.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var sb strings.Builder
	if writeErr := output.FormatError(&sb, err, output.FormatJSON); writeErr != nil {
		return output.ExitGeneral
	}
	var parsed output.ErrorOutput
	if jsonErr := json.Unmarshal([]byte(sb.String()), &parsed); jsonErr != nil {
		return output.ExitGeneral
	}
	return parsed.Error.ExitCode
}

// initGlobals wires config, logging, storage, the keyring, the session
// manager, and the wallet service into a CommandContext for this
// invocation.
func initGlobals(cmd *cobra.Command) error {
	home := homeDir
	if home == "" {
		home = os.Getenv("DUSKVAULT_HOME")
	}
	if home == "" {
		home = config.DefaultHome()
	}
	if strings.HasPrefix(home, "~/") {
		if userHome, homeErr := os.UserHomeDir(); homeErr == nil {
			home = filepath.Join(userHome, home[2:])
		}
	}

	cfg, err := config.Load(config.Path(home))
	if err != nil {
		if os.IsNotExist(err) {
			cfg = config.Defaults()
		} else {
			fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
			cfg = config.Defaults()
		}
		cfg.Home = home
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err := config.NewLogger(logLevel, cfg.Logging.File)
	if err != nil {
		logger = config.NullLogger()
	}

	explicitFormat := output.ParseFormat(outputFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter := output.NewFormatter(detectedFormat, os.Stdout)

	st, err := filestore.New(filepath.Join(home, "data"))
	if err != nil {
		return err
	}

	kr := keyring.New(
		keyring.WithAutoLock(durationFromMinutes(cfg.AutoLockMinutes)),
		keyring.WithKDFParams(vaultcrypto.KDFParams{
			MemoryKiB:   cfg.Argon2.MemoryKiB,
			Iterations:  cfg.Argon2.Iterations,
			Parallelism: cfg.Argon2.Parallelism,
		}),
	)
	svc := walletsvc.New(kr, st, nil)

	sessionMgr := session.NewManager(filepath.Join(home, "sessions"), nil)

	cmdCtx := &CommandContext{
		Cfg:        cfg,
		Log:        logger,
		Fmt:        formatter,
		Store:      st,
		Wallet:     svc,
		SessionMgr: sessionMgr,
	}
	SetCmdContext(cmd, cmdCtx)
	lastCmdCtx = cmdCtx
	return nil
}

// cleanup releases resources acquired in initGlobals.
func cleanup(cmd *cobra.Command) {
	cmdCtx := GetCmdContext(cmd)
	if cmdCtx == nil || cmdCtx.Log == nil {
		return
	}
	if closeErr := cmdCtx.Log.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", closeErr)
	}
}

// Version information, set at build time via ldflags.
//
//nolint:gochecknoglobals // Version info set at build time via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmdCtx := GetCmdContext(cmd)
		if cmdCtx != nil && cmdCtx.Fmt != nil && cmdCtx.Fmt.Format() == output.FormatJSON {
			cmd.Println("{")
			cmd.Printf("  \"version\": %q,\n", Version)
			cmd.Printf("  \"commit\": %q,\n", GitCommit)
			cmd.Printf("  \"date\": %q\n", BuildDate)
			cmd.Println("}")
			return
		}
		cmd.Printf("duskvaultd version %s\n", Version)
		cmd.Printf("  commit: %s\n", GitCommit)
		cmd.Printf("  built:  %s\n", BuildDate)
	},
}

// durationFromMinutes converts a fractional minute count into a
// time.Duration, treating zero or negative values as "auto-lock disabled".
func durationFromMinutes(minutes float64) time.Duration {
	if minutes <= 0 {
		return 0
	}
	return time.Duration(minutes * float64(time.Minute))
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "duskvaultd data directory (default: ~/.duskvault)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
