package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sassoanarchico/titlesync/pkg/config"
	tserrors "github.com/sassoanarchico/titlesync/pkg/errors"
	"github.com/sassoanarchico/titlesync/pkg/filesystem"
	"github.com/sassoanarchico/titlesync/pkg/pfs"
	"github.com/sassoanarchico/titlesync/pkg/scanner"
	"github.com/sassoanarchico/titlesync/pkg/titleid"
)

var scanCmd = &cobra.Command{
	Use:   "scan <folder> <base-filename>",
	Short: "Report what a discovery pass would find, without writing anything",
	Long: `Scan walks the folder tree and classifies every package file relative
to the base title, printing what registration would record. No registry is
read or written.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, baseFilename := args[0], args[1]

		id, ok := titleid.Extract(baseFilename)
		if !ok {
			return tserrors.Newf(tserrors.ErrMissingTitleID, "no title ID in base filename %q", baseFilename)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
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

		candidates, err := sc.Scan(folder, baseFilename, id.Value)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), boldMsg(fmt.Sprintf("Base title %s", id.Value)))
		if len(candidates) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No package files found")
			return nil
		}
		for _, c := range candidates {
			switch {
			case c.IsUpdate:
				fmt.Fprintf(cmd.OutOrStdout(), "  update  v%-6d %s\n", c.Version, c.Path)
			case c.SkipReason != "":
				fmt.Fprintf(cmd.OutOrStdout(), "  skipped (%s) %s\n", c.SkipReason, c.Path)
			default:
				approx := ""
				if c.ID.Approximate {
					approx = " (approximate ID)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  dlc     %s, %d entries%s %s\n",
					c.ID.Value, c.NumEntries, approx, c.Path)
			}
		}
		return nil
	},
}
