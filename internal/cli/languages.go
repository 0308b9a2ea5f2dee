package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/specvital/grammarsnap/pkg/engine"
)

func newLanguagesCmd(registry *engine.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the languages fixtures can load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tALIASES\tEMBEDS")
			for _, g := range registry.All() {
				aliases := make([]string, 0, len(g.Aliases))
				for _, alias := range g.Aliases {
					aliases = append(aliases, string(alias))
				}
				embeds := make([]string, 0, len(g.Injections))
				for _, injection := range g.Injections {
					embeds = append(embeds, string(injection.Language))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.ID, g.Title, joinOrDash(aliases), joinOrDash(embeds))
			}
			return w.Flush()
		},
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}
