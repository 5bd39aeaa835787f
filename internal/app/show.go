package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"incident-horoscope/internal/catalog"
	"incident-horoscope/internal/storage"
)

// Show prints recent ephemeris records.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show records")
	}
	if closeStore != nil {
		defer closeStore()
	}

	var lister storage.RecordLister = store
	records, err := lister.ListRecentRecords(ctx, opts.Limit)
	if err != nil {
		return err
	}

	renderRecords(os.Stdout, records)

	total, err := lister.CountRecords(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "showing %d of %d records\n", len(records), total)
	return nil
}

func renderRecords(w io.Writer, records []storage.EphemerisRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no records found")
		return
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Date\tLocation\tSun RA\tMoon RA\tLive\tFallback\tError\tFallback?")

	for _, record := range records {
		live, fallback, failed := provenanceCounts(record)
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%d\t%d\t%d\t%v\n",
			record.Date.UTC().Format("2006-01-02"),
			sanitizeInline(record.Location),
			formatCoordinate(record.RA(catalog.Sun)),
			formatCoordinate(record.RA(catalog.Moon)),
			live,
			fallback,
			failed,
			record.UsingFallbackData,
		)
	}

	writer.Flush()
}

func provenanceCounts(record storage.EphemerisRecord) (live, fallback, failed int) {
	for _, prov := range record.Sources {
		switch prov {
		case storage.ProvenanceLive:
			live++
		case storage.ProvenanceFallback:
			fallback++
		case storage.ProvenanceError:
			failed++
		}
	}
	return live, fallback, failed
}

func formatCoordinate(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *v)
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
