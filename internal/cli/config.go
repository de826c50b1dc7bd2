package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/duskvault/duskvault/internal/config"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and initialize configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	ctx := GetCmdContext(cmd)
	configPath := config.Path(ctx.Cfg.Home)

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return vaulterr.New(vaulterr.KindInvalidInput, "configuration already exists at %s; use --force to overwrite", configPath)
	}

	defaults := config.Defaults()
	defaults.Home = ctx.Cfg.Home
	if err := config.Save(defaults, configPath); err != nil {
		return err
	}
	return ctx.Fmt.Printf("configuration initialized at %s\n", configPath)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	ctx := GetCmdContext(cmd)
	if ctx.Fmt.IsJSON() {
		return ctx.Fmt.Print(ctx.Cfg)
	}

	w := cmd.OutOrStdout()
	outln(w, "Configuration:")
	out(w, "  home: %s\n", ctx.Cfg.Home)
	out(w, "  auto_lock_minutes: %g\n", ctx.Cfg.AutoLockMinutes)
	out(w, "  default_chain: %s\n", ctx.Cfg.DefaultChain)
	outln(w, "  argon2:")
	out(w, "    memory_kib: %d\n", ctx.Cfg.Argon2.MemoryKiB)
	out(w, "    iterations: %d\n", ctx.Cfg.Argon2.Iterations)
	out(w, "    parallelism: %d\n", ctx.Cfg.Argon2.Parallelism)
	outln(w, "  logging:")
	out(w, "    level: %s\n", ctx.Cfg.Logging.Level)
	out(w, "    file: %s\n", ctx.Cfg.Logging.File)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	ctx := GetCmdContext(cmd)
	return ctx.Fmt.Println(filepath.Clean(config.Path(ctx.Cfg.Home)))
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing configuration file")

	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
