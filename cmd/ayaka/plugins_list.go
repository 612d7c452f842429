package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	pluginsCmd.AddCommand(newPluginsListCmd())
}

func newPluginsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List the plugin modules loaded for the opened game",
		Example: `  ayaka plugins list --config game.yaml`,
		Args:    cobra.NoArgs,
		RunE: withViewModel(func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			modules, err := ctx.VM.Modules()
			if err != nil {
				return err
			}
			if len(modules) == 0 {
				fmt.Println("No plugins loaded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			if _, err := fmt.Fprintln(w, "NAME\tACTION\tTEXT\tLINE\tGAME"); err != nil {
				return err
			}
			for _, m := range modules {
				if _, err := fmt.Fprintf(w, "%s\t%t\t%s\t%s\t%t\n",
					m.Name, m.Kind.Action, strings.Join(m.Kind.Text, ","), strings.Join(m.Kind.Line, ","), m.Kind.Game,
				); err != nil {
					return err
				}
			}
			return w.Flush()
		}),
	}
}
