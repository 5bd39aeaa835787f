package fetcher

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"incident-horoscope/internal/catalog"
)

const dateLayout = "2006-01-02"

// HorizonsOptions parameterise the JPL Horizons client.
type HorizonsOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Horizons fetches observer ephemeris tables from the JPL Horizons API.
type Horizons struct {
	opts    HorizonsOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewHorizons constructs a Horizons client.
func NewHorizons(opts HorizonsOptions, logger zerolog.Logger) *Horizons {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://ssd.jpl.nasa.gov/api/horizons.api"
	}

	return &Horizons{
		opts:    opts,
		logger:  logger.With().Str("component", "horizons_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchBody requests a one-day observation window starting at date, asking only
// for astrometric RA/DEC in degrees. Returns the raw text body or a FetchError.
func (h *Horizons) FetchBody(ctx context.Context, body catalog.Body, date time.Time) (string, error) {
	start := date.UTC().Format(dateLayout)
	stop := date.UTC().AddDate(0, 0, 1).Format(dateLayout)

	params := url.Values{}
	params.Set("format", "text")
	params.Set("COMMAND", body.Code())
	params.Set("OBJ_DATA", "YES")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "OBSERVER")
	params.Set("CENTER", "500@399")
	params.Set("START_TIME", start)
	params.Set("STOP_TIME", stop)
	params.Set("STEP_SIZE", "1d")
	// QUANTITIES=1 keeps the response small and avoids the Horizons
	// "too many constants" failure mode on wider quantity sets.
	params.Set("QUANTITIES", "1")
	params.Set("TIME_DIGITS", "MINUTES")
	params.Set("CAL_FORMAT", "CAL")
	params.Set("ANG_FORMAT", "DEG")
	params.Set("EXTRA_PREC", "YES")
	params.Set("CSV_FORMAT", "NO")

	endpoint := h.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &FetchError{Kind: FailUnreachable, Err: err}
	}
	req.Header.Set("Accept", "text/plain")
	if ua := strings.TrimSpace(h.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "incident-horoscope/1.0")
	}

	h.logger.Debug().Str("body", body.String()).Str("start", start).Msg("fetching horizons ephemeris")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.logger.Warn().Str("body", body.String()).Int("status", resp.StatusCode).Msg("horizons returned non-2xx status")
		return "", &FetchError{Kind: FailBadStatus, Status: resp.StatusCode}
	}

	return string(payload), nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: FailTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: FailTimeout, Err: err}
	}
	return &FetchError{Kind: FailUnreachable, Err: err}
}

var _ EphemerisFetcher = (*Horizons)(nil)
