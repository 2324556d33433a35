package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/cardscan/internal/ui"
	"github.com/spf13/cobra"
)

func newProcessCmd() *cobra.Command {
	var flags serviceFlags
	var format string
	var tab string
	var saveVCard bool
	var export bool

	cmd := &cobra.Command{
		Use:   "process FRONT [BACK]",
		Short: "Scan one business card (front and optional back)",
		Long: `Uploads one or two images of a single business card to the card service
and prints the extracted contact details.

Each run starts a new session. Use --export to download the session as CSV
right away, or keep the printed session id and run "cardscan export" later.`,
		Example: `  # Scan the front of a card
  cardscan process front.jpg

  # Scan front and back, save the vCard and print JSON
  cardscan process front.jpg back.jpg --save-vcard --format json

  # Show the raw OCR text and export the session as CSV and Parquet
  cardscan process card.png --tab raw --export --parquet -o ./exports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := ui.ParseFormat(format)
			if err != nil {
				return err
			}

			client, err := flags.newUploadClient("", nil)
			if err != nil {
				return err
			}

			if err := client.SelectFiles(args); err != nil {
				return err
			}
			if err := client.Submit(cmd.Context()); err != nil {
				return err
			}
			if tab != "" {
				if err := client.SwitchTab(tab); err != nil {
					return err
				}
			}

			if err := ui.Write(cmd.OutOrStdout(), client.View(), outFormat); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}

			if saveVCard {
				path, err := client.DownloadVCard()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved vCard to %s\n", path)
			}

			sessionID := client.View().SessionID
			if !export {
				fmt.Fprintf(cmd.ErrOrStderr(), "Session %s (export with: cardscan export --session %s)\n", sessionID, sessionID)
				return nil
			}

			path, err := client.ExportCSV(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved CSV to %s\n", path)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, yaml)")
	cmd.Flags().StringVar(&tab, "tab", "", "Result view to print (structured, vcard, raw)")
	cmd.Flags().BoolVar(&saveVCard, "save-vcard", false, "Save the vCard as contact.vcf in the output directory")
	cmd.Flags().BoolVar(&export, "export", false, "Export the session as CSV after processing")

	return cmd
}
