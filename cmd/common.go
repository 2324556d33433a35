package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/cardscan/internal/cardclient"
	"github.com/lehigh-university-libraries/cardscan/internal/config"
	"github.com/lehigh-university-libraries/cardscan/internal/ui"
	"github.com/spf13/cobra"
)

// serviceFlags are shared by every command that talks to the card service
type serviceFlags struct {
	url     string
	output  string
	timeout string
	parquet bool
}

func (f *serviceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "Card service base URL (default $CARDSCAN_URL or "+config.DefaultServiceURL+")")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Directory for downloaded files (default $CARDSCAN_OUTPUT_DIR or .)")
	cmd.Flags().StringVar(&f.timeout, "timeout", "", "Request timeout such as 30s (default $CARDSCAN_TIMEOUT or none)")
	cmd.Flags().BoolVar(&f.parquet, "parquet", false, "Also archive exported CSV files as Parquet")
}

func (f *serviceFlags) config() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if f.url != "" {
		cfg.ServiceURL = f.url
	}
	if f.output != "" {
		cfg.OutputDir = f.output
	}
	if f.timeout != "" {
		if err := cfg.SetTimeout(f.timeout); err != nil {
			return nil, fmt.Errorf("invalid --timeout: %w", err)
		}
	}

	return cfg, nil
}

// newUploadClient builds an UploadClient for one session. An empty
// sessionID starts a new session.
func (f *serviceFlags) newUploadClient(sessionID string, alerts ui.Alerter) (*ui.UploadClient, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}

	opts := []cardclient.Option{cardclient.WithTimeout(cfg.Timeout)}
	if sessionID != "" {
		if _, err := uuid.Parse(sessionID); err != nil {
			return nil, fmt.Errorf("invalid session id %q: %w", sessionID, err)
		}
		opts = append(opts, cardclient.WithSessionID(sessionID))
	}
	service := cardclient.NewClient(cfg.ServiceURL, opts...)

	uiOpts := []ui.Option{ui.WithParquetArchive(f.parquet)}
	if alerts != nil {
		uiOpts = append(uiOpts, ui.WithAlerter(alerts))
	}
	return ui.New(service, cfg.OutputDir, uiOpts...), nil
}
