package main

import (
	"encoding/json"
	"fmt"

	"github.com/abelzeko/water-alert/internal/app"
	"github.com/abelzeko/water-alert/internal/usecases"
	"github.com/spf13/cobra"
)

type predictionOutput struct {
	Location string `json:"location"`
	Model    string `json:"model"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Points   int    `json:"points"`
}

func (c *cli) newPredictCmd() *cobra.Command {
	var chart bool

	cmd := &cobra.Command{
		Use:   "predict [location...]",
		Short: "Show trend predictions",
		Long:  `Fit the configured model to each location's recent readings. Without arguments every configured location is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 0 {
				for _, loc := range a.UseCase.DangerLevels() {
					args = append(args, loc.Name)
				}
			}

			out := cmd.OutOrStdout()
			var results []predictionOutput
			for _, name := range args {
				st, err := a.UseCase.LocationStatus(cmd.Context(), name)
				if err != nil {
					return err
				}
				msg := a.UseCase.FormatPrediction(st.Location.Name, st.Prediction)

				if c.jsonOutput {
					results = append(results, predictionOutput{
						Location: st.Location.Name,
						Model:    a.UseCase.ModelName(),
						Kind:     st.Prediction.Kind.String(),
						Message:  msg,
						Points:   len(st.Series),
					})
					continue
				}

				fmt.Fprintln(out, a.UseCase.FormatStatus(st))
				if chart {
					if g := usecases.RenderChart(st.Series, st.Location.DangerLevel); g != "" {
						fmt.Fprintln(out, g)
					}
				}
				fmt.Fprintln(out)
			}

			if c.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&chart, "chart", true, "draw a text chart of the series")
	return cmd
}
