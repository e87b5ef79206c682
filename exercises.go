package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func exercisesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exercises",
		Short: "List the exercise catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			themes, err := t.Themes(ctx)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Exercise", "Theme", "Title", "Order", "Database"})
			for _, th := range themes {
				exercises, err := t.Exercises(ctx, th.Number)
				if err != nil {
					return err
				}
				for _, e := range exercises {
					order := "any"
					if e.CheckOrder {
						order = "strict"
					}
					table.Append([]string{e.Key(), th.Name, e.Title, order, e.SchemaName})
				}
			}
			table.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "%d themes\n", len(themes))
			return nil
		},
	}
}
