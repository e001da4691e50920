package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/optifine-glsl/mcglsl-lsp/internal/config"
	"github.com/optifine-glsl/mcglsl-lsp/internal/lint"
	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
	"github.com/optifine-glsl/mcglsl-lsp/internal/validator"
	"github.com/optifine-glsl/mcglsl-lsp/internal/workspace"
)

var lintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Lint every shader tree a file belongs to and print the diagnostics",
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

		actor := validator.NewActor(validator.Unavailable{VendorName: cfg.Vendor})
		defer actor.Close()
		runner := &lint.Runner{Preamble: cfg.Preamble, Validator: actor}

		diags, err := runner.Lint(context.Background(), tree, path)
		if err != nil {
			return err
		}

		paths := make([]string, 0, len(diags))
		for p := range diags {
			paths = append(paths, p.String())
		}
		sort.Strings(paths)
		for _, p := range paths {
			ds := diags[normpath.New(p)]
			if len(ds) == 0 {
				fmt.Printf("%s: clean\n", p)
				continue
			}
			for _, d := range ds {
				fmt.Printf("%s:%d: %s\n", p, d.Range.Start.Line+1, d.Message)
			}
		}
		return nil
	},
}
