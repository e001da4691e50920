// Package editorfacade exposes the workspace core through MCP tools over
// stdio. Each tool mirrors one of the editor-protocol entry points:
// did_open, did_save, did_change, did_delete, and the graphDot/
// virtualMerge commands.
package editorfacade

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/optifine-glsl/mcglsl-lsp/internal/lint"
	"github.com/optifine-glsl/mcglsl-lsp/internal/normpath"
	"github.com/optifine-glsl/mcglsl-lsp/internal/workspace"
)

func init() {
	// stdout carries the stdio transport; logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}

// NewServer builds an MCP server exposing the workspace core's edit
// notifications and execute_command payloads over a given Manager.
func NewServer(manager *workspace.Manager, runner *lint.Runner) *server.MCPServer {
	s := server.NewMCPServer(
		"mcglsl-lsp",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(didOpenTool(), didOpenHandler(manager, runner))
	s.AddTool(didSaveTool(), didSaveHandler(manager, runner))
	s.AddTool(didChangeTool(), didChangeHandler(manager))
	s.AddTool(didDeleteTool(), didDeleteHandler(manager, runner))
	s.AddTool(graphDotTool(), graphDotHandler(manager))
	s.AddTool(virtualMergeTool(), virtualMergeHandler(manager))

	return s
}

// --- Tool definitions ---

func didOpenTool() mcp.Tool {
	return mcp.NewTool("did_open",
		mcp.WithDescription("Notify the workspace that a shader file was opened, registering its text and relinting the trees it belongs to."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to the opened file")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Current file contents")),
	)
}

func didSaveTool() mcp.Tool {
	return mcp.NewTool("did_save",
		mcp.WithDescription("Notify the workspace that a shader file was saved, updating its includes and relinting."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to the saved file")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Current file contents")),
	)
}

func didChangeTool() mcp.Tool {
	return mcp.NewTool("did_change",
		mcp.WithDescription("Notify the workspace of an in-editor buffer change, without linting."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to the changed file")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Current buffer contents")),
	)
}

func didDeleteTool() mcp.Tool {
	return mcp.NewTool("did_delete",
		mcp.WithDescription("Notify the workspace that a file was deleted, capturing its ancestors before removal and relinting them."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to the deleted file")),
	)
}

func graphDotTool() mcp.Tool {
	return mcp.NewTool("graphDot",
		mcp.WithDescription("Render the include dependency graph for a workspace root as Graphviz DOT."),
		mcp.WithString("root", mcp.Required(), mcp.Description("Absolute path to the workspace root")),
	)
}

func virtualMergeTool() mcp.Tool {
	return mcp.NewTool("virtualMerge",
		mcp.WithDescription("Return the merged GLSL translation unit for a top-level shader entry file, plus its SourceNum table."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to a top-level shader entry file")),
	)
}

// --- Handlers ---

func didOpenHandler(m *workspace.Manager, r *lint.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, text, err := pathAndText(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tree, ok := m.TreeForFile(path)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no workspace owns %s", path)), nil
		}
		if err := tree.UpdateSourcefile(path, text); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return lintAndRender(ctx, r, tree, path)
	}
}

func didSaveHandler(m *workspace.Manager, r *lint.Runner) server.ToolHandlerFunc {
	return didOpenHandler(m, r) // open and save carry the same contract
}

func didChangeHandler(m *workspace.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, text, err := pathAndText(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tree, ok := m.TreeForFile(path)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no workspace owns %s", path)), nil
		}
		if err := tree.UpdateSourcefile(path, text); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("graph updated"), nil
	}
}

func didDeleteHandler(m *workspace.Manager, r *lint.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawPath, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError("missing required parameter: path"), nil
		}
		path := normpath.New(rawPath)
		tree, ok := m.TreeForFile(path)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no workspace owns %s", path)), nil
		}

		ancestors, _, _ := tree.RootAncestorsBeforeRemoval(path)
		tree.RemoveSourcefile(path)

		var b strings.Builder
		b.WriteString(fmt.Sprintf("removed %s\n", path))
		for _, ancestor := range ancestors {
			slog.Info("relinting ancestor after delete", "ancestor", ancestor.String(), "deleted", path.String())
			diags, err := r.Lint(ctx, tree, ancestor)
			if err != nil {
				fmt.Fprintf(&b, "relint %s failed: %v\n", ancestor, err)
				continue
			}
			fmt.Fprintf(&b, "relinted %s: %d file(s) reported\n", ancestor, len(diags))
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func graphDotHandler(m *workspace.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawRoot, err := req.RequireString("root")
		if err != nil {
			return mcp.NewToolResultError("missing required parameter: root"), nil
		}
		root := normpath.New(rawRoot)
		tree, ok := m.TreeForFile(root)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no workspace rooted at %s", root)), nil
		}
		return mcp.NewToolResultText(tree.DOT()), nil
	}
}

func virtualMergeHandler(m *workspace.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rawPath, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError("missing required parameter: path"), nil
		}
		path := normpath.New(rawPath)
		tree, ok := m.TreeForFile(path)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no workspace owns %s", path)), nil
		}
		merged, table, err := lint.MergeEntry(tree, path, "")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var b strings.Builder
		b.WriteString(merged)
		b.WriteString("\n--- source table ---\n")
		nums := make([]int, 0, len(table))
		for n := range table {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		for _, n := range nums {
			fmt.Fprintf(&b, "%d: %s\n", n, table[n])
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

// --- helpers ---

func pathAndText(req mcp.CallToolRequest) (normpath.Path, string, error) {
	rawPath, err := req.RequireString("path")
	if err != nil {
		return normpath.Path{}, "", fmt.Errorf("missing required parameter: path")
	}
	text, err := req.RequireString("text")
	if err != nil {
		return normpath.Path{}, "", fmt.Errorf("missing required parameter: text")
	}
	return normpath.New(rawPath), text, nil
}

func lintAndRender(ctx context.Context, r *lint.Runner, tree *workspace.Tree, path normpath.Path) (*mcp.CallToolResult, error) {
	diags, err := r.Lint(ctx, tree, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "linted %s\n", path)
	paths := make([]string, 0, len(diags))
	for p := range diags {
		paths = append(paths, p.String())
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(&b, "%s: %d diagnostic(s)\n", p, len(diags[normpath.New(p)]))
	}
	return mcp.NewToolResultText(b.String()), nil
}
