package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/elmanelman/sql-trainer/judge"
)

func queryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query SQL",
		Short: "Run a query against the practice database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			t, err := startTrainer(cmd, cfg)
			if err != nil {
				return err
			}
			defer t.Stop()

			result, err := t.Query(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func printResult(w io.Writer, result *judge.ResultTable) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(result.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(result.Strings())
	table.Render()

	fmt.Fprintf(w, "(%d rows)\n", result.RowCount())
}
