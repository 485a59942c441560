package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sassoanarchico/titlesync/pkg/logging"
)

var deregisterCmd = &cobra.Command{
	Use:   "deregister <installed-dir> <base-filename>",
	Short: "Remove registry entries pointing inside an uninstalled folder",
	Long: `Deregister removes every registry entry whose path lies inside the
removed folder tree, leaving unrelated entries untouched. Registry files
whose collection becomes empty are deleted entirely.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.deregister")
		installedDir, baseFilename := args[0], args[1]

		engine, err := newEngine()
		if err != nil {
			return err
		}

		result, err := engine.Deregister(installedDir, baseFilename)
		if err != nil {
			logger.Error().Err(err).Msg("Deregistration failed")
			fmt.Fprintln(cmd.ErrOrStderr(), errorMsg(err.Error()))
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), successMsg(fmt.Sprintf(
			"Removed %d update and %d DLC entries", result.RemovedUpdates, result.RemovedDLC)))
		return nil
	},
}
