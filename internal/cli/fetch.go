package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"incident-horoscope/internal/app"
)

const dateLayout = "2006-01-02"

var (
	fetchDates    []string
	fetchFrom     string
	fetchTo       string
	fetchLocation string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Acquire ephemeris records for one or more dates",
	RunE: func(cmd *cobra.Command, args []string) error {
		dates, err := resolveFetchDates()
		if err != nil {
			return err
		}

		opts := app.FetchOptions{
			Dates:    dates,
			Location: fetchLocation,
		}

		return getApp().Fetch(cmd.Context(), opts)
	},
}

// resolveFetchDates merges the repeatable --date values with the --from/--to
// window, expanding the window into one entry per day.
func resolveFetchDates() ([]time.Time, error) {
	seen := make(map[time.Time]struct{})
	dates := make([]time.Time, 0, len(fetchDates))

	add := func(d time.Time) {
		d = d.UTC()
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}

	for _, raw := range fetchDates {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --date value %q: %w", raw, err)
		}
		add(parsed)
	}

	if fetchFrom != "" || fetchTo != "" {
		if fetchFrom == "" || fetchTo == "" {
			return nil, fmt.Errorf("--from and --to must be provided together")
		}
		from, err := time.Parse(dateLayout, fetchFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid --from value: %w", err)
		}
		to, err := time.Parse(dateLayout, fetchTo)
		if err != nil {
			return nil, fmt.Errorf("invalid --to value: %w", err)
		}
		if to.Before(from) {
			return nil, fmt.Errorf("--from must not be after --to")
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			add(d)
		}
	}

	return dates, nil
}

func init() {
	fetchCmd.Flags().StringArrayVar(&fetchDates, "date", nil, "Date to fetch (YYYY-MM-DD, repeatable)")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "Start date of a range (YYYY-MM-DD, inclusive)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "End date of a range (YYYY-MM-DD, inclusive)")
	fetchCmd.Flags().StringVar(&fetchLocation, "location", "", "Observation location label (defaults to config)")
}
