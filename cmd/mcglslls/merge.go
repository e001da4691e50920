package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/optifine-glsl/mcglsl-lsp/internal/config"
	"github.com/optifine-glsl/mcglsl-lsp/internal/lint"
	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
	"github.com/optifine-glsl/mcglsl-lsp/internal/workspace"
)

var mergeShowTable bool

var mergeCmd = &cobra.Command{
	Use:   "merge <entry-file>",
	Short: "Print the merged GLSL translation unit for a top-level shader entry file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		path := normpath.New(args[0])
		manager := workspace.NewManager()
		if err := manager.Discover(normpath.New(cfg.WorkspaceRoot)); err != nil {
			return err
		}
		tree, ok := manager.TreeForFile(path)
		if !ok {
			return fmt.Errorf("no workspace owns %s", path)
		}

		merged, table, err := lint.MergeEntry(tree, path, cfg.Preamble)
		if err != nil {
			return err
		}
		fmt.Print(merged)

		if mergeShowTable {
			w := tabwriter.NewWriter(os.Stderr, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SOURCE\tPATH")
			nums := make([]int, 0, len(table))
			for n := range table {
				nums = append(nums, n)
			}
			sort.Ints(nums)
			for _, n := range nums {
				fmt.Fprintf(w, "%d\t%s\n", n, table[n])
			}
			w.Flush()
		}
		return nil
	},
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeShowTable, "table", false, "print the SourceNum table to stderr")
}
