package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayaka-run/ayaka/internal/viewmodel"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the runtime version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("ayaka version %s\n", viewmodel.AyakaVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
