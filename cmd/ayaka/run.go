package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayaka-run/ayaka/internal/value"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

var (
	runLocale string
	runRecord int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play a game in the terminal",
	Long: `Run walks the opened game's paragraph graph in the terminal: each
step prints the cooked action, prompts for a switch choice when one is
offered, and saves progress to slot 0 on exit.`,
	Args: cobra.NoArgs,
	RunE: withViewModel(func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
		if runLocale == "" {
			info, err := ctx.VM.Info()
			if err != nil {
				return err
			}
			runLocale = info.BaseLang
		}

		if runRecord >= 0 {
			if err := ctx.VM.StartRecord(runLocale, runRecord); err != nil {
				return fmt.Errorf("resume record %d: %w", runRecord, err)
			}
		} else if err := ctx.VM.StartNew(runLocale); err != nil {
			return fmt.Errorf("start new run: %w", err)
		}

		scanner := bufio.NewScanner(os.Stdin)
		for {
			ok, err := ctx.VM.NextRun(ctx.Context)
			if err != nil {
				return fmt.Errorf("next_run: %w", err)
			}
			if !ok {
				fmt.Println("-- the end --")
				break
			}

			action := ctx.VM.CurrentRun()
			if action == nil {
				continue
			}
			printAction(action)

			if len(action.Switches) == 0 {
				continue
			}
			choice, quit := promptSwitch(scanner, action.Switches)
			if quit {
				break
			}
			result, err := ctx.VM.Switch(ctx.Context, choice)
			if err != nil {
				fmt.Fprintln(os.Stderr, "switch failed:", err)
				continue
			}
			if result.Type() != value.TypeUnit {
				fmt.Println("->", result.String())
			}
		}

		if err := ctx.VM.SaveRecordTo(0); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		return nil
	}),
}

func printAction(action *wireformat.Action) {
	if action.Character != nil {
		fmt.Printf("%s: ", action.Character.Name)
	}
	for _, line := range action.Line {
		switch line.Kind {
		case wireformat.ActionLineChars:
			fmt.Print(line.Chars)
		case wireformat.ActionLineBlock:
			fmt.Printf("[%s]", strings.Join(line.Block, " "))
		case wireformat.ActionLineOther:
			fmt.Printf("[%s %s]", line.Command, strings.Join(line.Args, " "))
		}
	}
	fmt.Println()
}

// promptSwitch reads a choice from stdin, returning (index, false), or
// (_, true) if the player asked to quit.
func promptSwitch(scanner *bufio.Scanner, switches []wireformat.Switch) (int, bool) {
	for {
		for i, sw := range switches {
			status := ""
			if !sw.Enabled {
				status = " (disabled)"
			}
			fmt.Printf("  %d) %s%s\n", i, sw.Text, status)
		}
		fmt.Print("> ")
		if !scanner.Scan() {
			return 0, true
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "q" {
			return 0, true
		}
		idx, err := strconv.Atoi(input)
		if err != nil || idx < 0 || idx >= len(switches) {
			fmt.Println("invalid choice")
			continue
		}
		if !switches[idx].Enabled {
			fmt.Println("that choice is disabled")
			continue
		}
		return idx, false
	}
}

func init() {
	runCmd.Flags().StringVar(&runLocale, "locale", "", "locale to play in (default: the game's base language)")
	runCmd.Flags().IntVar(&runRecord, "record", -1, "resume save-record slot index instead of starting new")
	rootCmd.AddCommand(runCmd)
}
