package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reflow/internal/errors"
)

func transcriptsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "transcripts",
		Short: "List stored session transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("E160").
					WithDetail("no transcript store is configured").
					WithSuggestion("Set transcript.driver in reflow.json")
			}

			ids, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
