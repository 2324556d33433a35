package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var flags serviceFlags
	var sessionID string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every card of a session as CSV",
		Long: `Asks the card service for all cards processed in a session and saves
them as a CSV file in the output directory. The service clears the session
once the export succeeds.`,
		Example: `  cardscan export --session 3b241101-e2bb-4255-8caf-4136c566a962

  # Also write a Parquet copy
  cardscan export --session 3b241101-e2bb-4255-8caf-4136c566a962 --parquet -o ./exports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := flags.newUploadClient(sessionID, nil)
			if err != nil {
				return err
			}

			path, err := client.ExportCSV(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id printed by \"cardscan process\" (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}
