package main

import (
	"github.com/spf13/cobra"

	"github.com/elmanelman/sql-trainer/api"
)

func serveCommand() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the trainer HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if address == "" {
				address = cfg.HTTPConfig.Address
			}

			t, err := startTrainer(cmd, cfg)
			if err != nil {
				return err
			}
			defer t.Stop()

			logger := t.Logger()
			return api.RegisterAndStart(
				cmd.Context(),
				logger,
				address,
				api.New(t, logger),
			)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address (overrides http.address)")

	return cmd
}
