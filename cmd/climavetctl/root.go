package main

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/climavet/climavet/internal/api"
	"github.com/climavet/climavet/internal/config"
	"github.com/climavet/climavet/internal/logging"
)

// app holds what every subcommand shares once flags and environment are read.
type app struct {
	apiURL   string
	clinicID int64
	timeout  time.Duration
	logLevel string

	cfg    config.Config
	logger *slog.Logger
	client *api.Client
}

var errNoClinic = errors.New("no clinic selected: pass --clinic or set CLIMAVET_CLINIC_ID")

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "climavetctl",
		Short: "Terminal client for clinic disaster preparedness",
		Long: `climavetctl talks to the same REST backend as the web interface.

It lists disaster types and plans, generates plans, shows and exports
checklists, and opens an interactive checklist browser.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Backend base URL (or set CLIMAVET_API_URL)")
	root.PersistentFlags().Int64Var(&a.clinicID, "clinic", 0, "Clinic id (or set CLIMAVET_CLINIC_ID)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "Per-request timeout, 0 for none")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newTypesCmd(a),
		newPlansCmd(a),
		newGenerateCmd(a),
		newChecklistCmd(a),
		newBrowseCmd(a),
	)
	return root
}

// setup merges the environment with explicitly set flags and builds the client.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = a.apiURL
	}
	if flags.Changed("clinic") {
		if a.clinicID < 0 {
			return errors.New("--clinic must not be negative")
		}
		cfg.ClinicID = a.clinicID
	}
	if flags.Changed("timeout") {
		cfg.APITimeout = a.timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	a.cfg = cfg
	a.logger = logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	a.client = api.NewClient(api.Config{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout}, a.logger)
	return nil
}

func (a *app) requireClinic() (int64, error) {
	if a.cfg.ClinicID <= 0 {
		return 0, errNoClinic
	}
	return a.cfg.ClinicID, nil
}
