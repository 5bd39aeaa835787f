package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Horoscope ensures the record exists, generates the horoscope, and prints it
// as indented JSON.
func (a *App) Horoscope(ctx context.Context, opts HoroscopeOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot generate horoscope")
	}
	if closeStore != nil {
		defer closeStore()
	}

	location := opts.Location
	if location == "" {
		location = a.Config.Fetch.DefaultLocation
	}

	svc := a.newService(store, nil)

	// Unlike the HTTP route, the CLI acquires the date on demand.
	if _, err := svc.EnsureRecord(ctx, opts.Date, location); err != nil {
		return err
	}

	result, _, err := svc.Horoscope(ctx, opts.Date, opts.BirthDate, location)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal horoscope: %w", err)
	}

	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
