package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "mcglslls",
	Short: "Language server core for an OptiFine-style GLSL shader dialect: include graph, merged-view builder, and diagnostics back-mapper.",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(graphDotCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(lintCmd)
}
