package main

import (
	"os"

	"github.com/abelzeko/water-alert/internal/app"
	"github.com/abelzeko/water-alert/internal/config"
	"github.com/abelzeko/water-alert/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries state shared by the subcommands
type cli struct {
	dbPath     string
	model      string
	debug      bool
	jsonOutput bool

	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Error already printed by cobra
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "floodctl",
		Short: "Operator tool for the water alert service",
		Long: `floodctl works directly on the water alert database.

  floodctl predict [location...]          Show trend predictions
  floodctl submit Location=level ...       Submit manual readings and alert subscribers
  floodctl signup --name N --contact A --locations L1,L2
  floodctl alerts [--location L]           Show the alert log
  floodctl simulate --location L           Seed simulated history
  floodctl import --location L file.csv    Import an hourly CSV
  floodctl refresh                         Pull readings from the configured sources once`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.dbPath, "db", "", "database path (overrides DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&c.model, "model", "", "prediction model: exponential or linear (overrides PREDICTION_MODEL)")
	rootCmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(
		c.newPredictCmd(),
		c.newSubmitCmd(),
		c.newSignupCmd(),
		c.newAlertsCmd(),
		c.newSimulateCmd(),
		c.newImportCmd(),
		c.newRefreshCmd(),
	)
	return rootCmd
}

func (c *cli) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	if c.model != "" {
		cfg.Prediction.Model = c.model
	}

	level := "error"
	if c.debug {
		level = "debug"
	}
	c.cfg = cfg
	c.logger = logging.New(level, "console", cfg.LogFile, "floodctl")
	return nil
}

func (c *cli) open(opts app.Options) (*app.App, error) {
	return app.New(c.cfg, opts, c.logger)
}
