package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"incident-horoscope/internal/app"
)

var (
	horoscopeDate      string
	horoscopeBirthDate string
	horoscopeLocation  string
)

var horoscopeCmd = &cobra.Command{
	Use:   "horoscope",
	Short: "Generate the incident horoscope for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		if horoscopeDate == "" {
			return fmt.Errorf("--date must be provided")
		}

		date, err := time.Parse(dateLayout, horoscopeDate)
		if err != nil {
			return fmt.Errorf("invalid --date value: %w", err)
		}

		opts := app.HoroscopeOptions{
			Date:     date.UTC(),
			Location: horoscopeLocation,
		}

		if horoscopeBirthDate != "" {
			birth, err := time.Parse(dateLayout, horoscopeBirthDate)
			if err != nil {
				return fmt.Errorf("invalid --birth-date value: %w", err)
			}
			utc := birth.UTC()
			opts.BirthDate = &utc
		}

		return getApp().Horoscope(cmd.Context(), opts)
	},
}

func init() {
	horoscopeCmd.Flags().StringVar(&horoscopeDate, "date", "", "Date to read (YYYY-MM-DD)")
	horoscopeCmd.Flags().StringVar(&horoscopeBirthDate, "birth-date", "", "Birth date for personal predictions (YYYY-MM-DD)")
	horoscopeCmd.Flags().StringVar(&horoscopeLocation, "location", "", "Observation location label (defaults to config)")
}
