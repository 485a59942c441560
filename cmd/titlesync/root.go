package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sassoanarchico/titlesync/internal/version"
	"github.com/sassoanarchico/titlesync/pkg/config"
	"github.com/sassoanarchico/titlesync/pkg/filesystem"
	"github.com/sassoanarchico/titlesync/pkg/logging"
	"github.com/sassoanarchico/titlesync/pkg/paths"
	"github.com/sassoanarchico/titlesync/pkg/pfs"
	"github.com/sassoanarchico/titlesync/pkg/reconcile"
	"github.com/sassoanarchico/titlesync/pkg/registry"
	"github.com/sassoanarchico/titlesync/pkg/scanner"
)

var (
	verbosity    int
	registryRoot string

	rootCmd = &cobra.Command{
		Use:   "titlesync",
		Short: "Keep emulator title registries in sync with game content on disk",
		Long: `titlesync reconciles the emulator's per-title JSON registries (the
updates list and the DLC container list) with the actual location of game
content files after an install, move, or uninstall.

The file copy itself is someone else's job; titlesync only fixes up the
registries afterwards, preserving metadata it cannot cheaply recompute.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&registryRoot, "registry-root", "", "Override the emulator registry root directory")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(deregisterCmd)
	rootCmd.AddCommand(scanCmd)
}

// newEngine wires the reconciliation engine from configuration and flags
func newEngine() (*reconcile.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if registryRoot != "" {
		cfg.RegistryRoot = registryRoot
	}

	fsys := filesystem.NewOS()
	inspector := pfs.NewInspector(fsys)
	if cfg.ContentExtension != "" {
		inspector.ContentExtension = cfg.ContentExtension
	}
	if cfg.MetadataMarker != "" {
		inspector.MetadataMarker = cfg.MetadataMarker
	}

	sc := scanner.NewScanner(fsys, inspector)
	if len(cfg.PackageExtensions) > 0 {
		sc.PackageExtensions = cfg.PackageExtensions
	}

	return reconcile.NewEngine(fsys, registry.NewStore(fsys), sc, paths.New(cfg.RegistryRoot)), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information for titlesync`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("titlesync version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(titlesync completion bash)

Zsh:
  $ titlesync completion zsh > "${fpath[1]}/_titlesync"

Fish:
  $ titlesync completion fish | source

PowerShell:
  PS> titlesync completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("Failed to generate fish completion")
			}
		case "powershell":
			if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate powershell completion")
			}
		}
	},
}
