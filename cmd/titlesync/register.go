package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sassoanarchico/titlesync/pkg/logging"
)

var registerCmd = &cobra.Command{
	Use:   "register <source-dir> <dest-dir> <base-filename>",
	Short: "Reconcile registries after content moved to a new folder",
	Long: `Register rewrites existing registry entries from the source folder onto
the destination folder and then discovers any packages under the destination
the registries do not know yet. The content copy must already be complete.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.register")
		srcDir, dstDir, baseFilename := args[0], args[1], args[2]

		engine, err := newEngine()
		if err != nil {
			return err
		}

		result, err := engine.Register(srcDir, dstDir, baseFilename)
		if err != nil {
			logger.Error().Err(err).Msg("Registration failed")
			fmt.Fprintln(cmd.ErrOrStderr(), errorMsg(err.Error()))
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), successMsg(fmt.Sprintf("Registered title %s", result.TitleID.Value)))
		fmt.Fprintf(cmd.OutOrStdout(), "  rewritten:  %d updates, %d DLC\n",
			result.UpdatesRewritten.Added, result.DLCRewritten.Added)
		fmt.Fprintf(cmd.OutOrStdout(), "  discovered: %d updates, %d DLC\n",
			len(result.Discovered.AddedUpdates), len(result.Discovered.AddedDLC))
		if result.Selected != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  selected:   %s\n", result.Selected)
		}
		return nil
	},
}
