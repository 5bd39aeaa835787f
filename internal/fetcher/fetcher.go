package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"incident-horoscope/internal/catalog"
)

// EphemerisFetcher retrieves the raw observer-table text for one body and date.
type EphemerisFetcher interface {
	FetchBody(ctx context.Context, body catalog.Body, date time.Time) (string, error)
}

// FailureKind classifies a failed Horizons call.
type FailureKind string

const (
	FailTimeout     FailureKind = "timeout"
	FailUnreachable FailureKind = "unreachable"
	FailBadStatus   FailureKind = "bad_status"
)

// FetchError is a typed Horizons failure. The caller does not retry; it falls
// back to the synthesizer immediately.
type FetchError struct {
	Kind   FailureKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Kind == FailBadStatus {
		return fmt.Sprintf("horizons fetch failed (%s, status %d)", e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("horizons fetch failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("horizons fetch failed (%s)", e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain, if any.
func KindOf(err error) (FailureKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}
