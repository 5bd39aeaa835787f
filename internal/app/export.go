package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"incident-horoscope/internal/catalog"
	"incident-horoscope/internal/storage"
)

// Export renders one body's stored position history as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	body := catalog.Body(opts.Body)
	if !body.Known() {
		return fmt.Errorf("unknown body %q", opts.Body)
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	location := opts.Location
	if location == "" {
		location = a.Config.Fetch.DefaultLocation
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	// Records are daily, so the default window is one day per point.
	from := to.AddDate(0, 0, -opts.MaxPoints)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	var lister storage.RecordLister = store
	records, err := lister.ListRecordsBetween(ctx, from, to, location)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Info().Msg("no records found for export window")
		return nil
	}

	downsampled := downsampleRecords(records, opts.MaxPoints)
	a.Logger.Info().
		Str("body", body.String()).
		Int("total", len(records)).
		Int("exported", len(downsampled)).
		Msg("exporting records")

	if opts.CSVPath != "" {
		if err := writePositionsCSV(opts.CSVPath, body, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writePositionsPNG(opts.PNGPath, body, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleRecords(records []storage.EphemerisRecord, max int) []storage.EphemerisRecord {
	if max <= 0 || len(records) <= max {
		return records
	}

	result := make([]storage.EphemerisRecord, 0, max)
	step := float64(len(records)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(records) {
			idx = len(records) - 1
		}
		result = append(result, records[idx])
	}
	return result
}

func writePositionsCSV(path string, body catalog.Body, records []storage.EphemerisRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"date", "location", "ra_deg", "dec_deg", "distance_au", "provenance"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, record := range records {
		pos := record.Positions[body]
		row := []string{
			record.Date.UTC().Format("2006-01-02"),
			record.Location,
			csvCoordinate(pos.RA),
			csvCoordinate(pos.Dec),
			csvCoordinate(pos.Distance),
			string(pos.Provenance),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func csvCoordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *v)
}

func writePositionsPNG(path string, body catalog.Body, records []storage.EphemerisRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	// Errored bodies have no coordinates and would break the series.
	x := make([]time.Time, 0, len(records))
	ra := make([]float64, 0, len(records))
	dec := make([]float64, 0, len(records))
	distance := make([]float64, 0, len(records))

	for _, record := range records {
		pos := record.Positions[body]
		if pos.RA == nil || pos.Dec == nil || pos.Distance == nil {
			continue
		}
		x = append(x, record.Date)
		ra = append(ra, *pos.RA)
		dec = append(dec, *pos.Dec)
		distance = append(distance, *pos.Distance)
	}
	if len(x) < 2 {
		return errors.New("not enough plottable points for png export")
	}

	degFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.1f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Angle (deg)",
			ValueFormatter: degFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Distance (AU)",
			ValueFormatter: degFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "RA",
				XValues: x,
				YValues: ra,
			},
			chart.TimeSeries{
				Name:    "Dec",
				XValues: x,
				YValues: dec,
			},
			chart.TimeSeries{
				Name:    "Distance",
				XValues: x,
				YValues: distance,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
