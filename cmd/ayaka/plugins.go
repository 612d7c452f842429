package main

import (
	"github.com/spf13/cobra"
)

// pluginsCmd represents the plugins command.
var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect loaded plugins",
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}
