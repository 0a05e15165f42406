package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/abelzeko/water-alert/internal/alerting"
	"github.com/abelzeko/water-alert/internal/app"
	"github.com/abelzeko/water-alert/internal/entities"
	"github.com/abelzeko/water-alert/internal/usecases"
	"github.com/spf13/cobra"
)

func (c *cli) newSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit Location=level [Location=level...]",
		Short: "Submit manual readings and alert subscribers",
		Long: `Submit one batch of manual readings. Every reading is recorded in the alert log
and subscribers of a location at or above its danger level are notified once.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			readings, err := parseReadingArgs(args)
			if err != nil {
				return err
			}

			a, err := c.open(app.Options{Delivery: true})
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.UseCase.SubmitManualReadings(cmd.Context(), readings)
			printRecords(cmd, records, c.jsonOutput)
			if err != nil {
				if failed := alerting.FailedLocations(err); len(failed) > 0 {
					return fmt.Errorf("failed locations %s: %w", strings.Join(failed, ", "), err)
				}
				return err
			}
			return nil
		},
	}
}

// parseReadingArgs turns "Varanasi=75.5" arguments into a batch
func parseReadingArgs(args []string) (map[string]float64, error) {
	readings := make(map[string]float64, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid reading %q, want Location=level", arg)
		}
		level, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err == nil {
			err = entities.CheckLevel(level)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid level in %q: %w", arg, err)
		}
		if _, dup := readings[name]; dup {
			return nil, fmt.Errorf("location %s given twice", name)
		}
		readings[name] = level
	}
	return readings, nil
}

func (c *cli) newSignupCmd() *cobra.Command {
	var name, contact, locations string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a subscriber",
		Long:  `Register a subscriber. The contact is an e-mail address or telegram:<chat id>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			sub, err := a.UseCase.Signup(cmd.Context(), name, contact, strings.Split(locations, ","))
			if err != nil {
				if errors.Is(err, usecases.ErrIncompleteSignup) {
					return fmt.Errorf("%w: --name, --contact and --locations are required", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s) for %s\n", sub.Name, sub.ID, strings.Join(sub.Locations, ", "))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "subscriber name")
	cmd.Flags().StringVar(&contact, "contact", "", "e-mail address or telegram:<chat id>")
	cmd.Flags().StringVar(&locations, "locations", "", "comma separated locations")
	return cmd
}

func (c *cli) newAlertsCmd() *cobra.Command {
	var location string
	var limit int

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Show the alert log, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.UseCase.RecentAlerts(cmd.Context(), location, limit)
			if err != nil {
				return err
			}
			printRecords(cmd, records, c.jsonOutput)
			return nil
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "only this location")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of records (0 for all)")
	return cmd
}

func printRecords(cmd *cobra.Command, records []entities.AlertRecord, asJSON bool) {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(records)
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No alert records.")
		return
	}
	for _, r := range records {
		fmt.Fprintf(out, "%s  %-12s %8.2f cm  %s\n", r.Timestamp.Format(alerting.TimestampLayout), r.Location, r.ObservedLevel, r.Status)
	}
}
