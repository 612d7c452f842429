package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the opened game's title, author, and available locales",
	Args:  cobra.NoArgs,
	RunE: withViewModel(func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
		info, err := ctx.VM.Info()
		if err != nil {
			return err
		}
		fmt.Printf("title:     %s\n", info.Title)
		if info.Author != "" {
			fmt.Printf("author:    %s\n", info.Author)
		}
		fmt.Printf("base lang: %s\n", info.BaseLang)
		fmt.Printf("locales:   %s\n", strings.Join(info.Locales, ", "))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
