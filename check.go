package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elmanelman/sql-trainer/judge"
)

func checkCommand() *cobra.Command {
	var (
		theme    int
		number   int
		filePath string
	)

	cmd := &cobra.Command{
		Use:   "check [SQL]",
		Short: "Check a solution to an exercise",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			solution, err := readSolution(filePath, args)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			t, err := startTrainer(cmd, cfg)
			if err != nil {
				return err
			}
			defer t.Stop()

			ctx := cmd.Context()
			e, err := t.Exercise(ctx, theme, number)
			if err != nil {
				return err
			}
			s, err := t.Submit(ctx, theme, number, solution)
			if err != nil {
				return err
			}

			printVerdict(cmd.OutOrStdout(), s.Verdict)
			if !s.Verdict.Passed() {
				if e.Hint != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "hint: %s\n", e.Hint)
				}
				return errors.New("solution rejected")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&theme, "theme", 0, "theme number")
	cmd.Flags().IntVar(&number, "exercise", 0, "exercise number")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "read the solution from a file")
	cmd.MarkFlagRequired("theme")
	cmd.MarkFlagRequired("exercise")

	return cmd
}

// readSolution takes the solution from --file, the argument, or stdin, in
// that order.
func readSolution(filePath string, args []string) (string, error) {
	switch {
	case filePath != "" && len(args) > 0:
		return "", errors.New("pass the solution either as an argument or with --file")
	case filePath != "":
		data, err := os.ReadFile(filePath)
		return string(data), err
	case len(args) > 0:
		return args[0], nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no solution given")
	}
	return string(data), nil
}

func printVerdict(w io.Writer, v judge.Verdict) {
	if v.Passed() {
		color.New(color.FgGreen, color.Bold).Fprintf(w, "%s: %s\n", v.Status, v.ReviewerMessage)
		return
	}

	color.New(color.FgRed, color.Bold).Fprintf(w, "%s: %s\n", v.Status, v.ReviewerMessage)
	if v.Error != "" {
		color.New(color.FgYellow).Fprintln(w, v.Error)
	}
}
