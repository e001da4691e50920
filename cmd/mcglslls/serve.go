package main

import (
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/optifine-glsl/mcglsl-lsp/internal/config"
	"github.com/optifine-glsl/mcglsl-lsp/internal/editorfacade"
	"github.com/optifine-glsl/mcglsl-lsp/internal/lint"
	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
	"github.com/optifine-glsl/mcglsl-lsp/internal/validator"
	"github.com/optifine-glsl/mcglsl-lsp/internal/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editor facade (stdio transport)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		manager := workspace.NewManager()
		if err := manager.Discover(normpath.New(cfg.WorkspaceRoot)); err != nil {
			return err
		}

		actor := validator.NewActor(validator.Unavailable{VendorName: cfg.Vendor})
		defer actor.Close()

		runner := &lint.Runner{Preamble: cfg.Preamble, Validator: actor}

		s := editorfacade.NewServer(manager, runner)

		slog.Info("starting editor facade (stdio)", "root", cfg.WorkspaceRoot, "vendor", cfg.Vendor)
		return mcpserver.ServeStdio(s)
	},
}
