// Package cli implements the grammarsnap commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/specvital/grammarsnap/pkg/engine"
)

// NewRootCmd creates the root grammarsnap command with all subcommands
// registered. A nil loader uses the tree-sitter engine with the built-in
// grammars.
func NewRootCmd(loader *engine.TreeSitter) *cobra.Command {
	if loader == nil {
		loader = engine.NewTreeSitter(nil)
	}

	root := &cobra.Command{
		Use:           "grammarsnap",
		Short:         "grammarsnap - snapshot tests for syntax highlighting grammars",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newRunCmd(loader))
	root.AddCommand(newLanguagesCmd(loader.Registry()))
	root.AddCommand(newInspectCmd())
	return root
}
