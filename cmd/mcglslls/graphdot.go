package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
	"github.com/optifine-glsl/mcglsl-lsp/internal/workspace"
)

var graphDotCmd = &cobra.Command{
	Use:   "graphdot <workspace-root>",
	Short: "Render a workspace's include dependency graph as Graphviz DOT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := normpath.New(args[0])
		tree := workspace.NewTree(root)
		if err := tree.Build(); err != nil {
			return fmt.Errorf("building workspace %s: %w", root, err)
		}
		fmt.Print(tree.DOT())
		return nil
	},
}
