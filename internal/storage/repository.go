package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"incident-horoscope/internal/catalog"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
	// ErrNotFound indicates no record exists for the requested (date, location).
	ErrNotFound = errors.New("storage: ephemeris record not found")
)

const (
	recordColumns = `date,
        location,
        sun_ra, sun_dec, sun_distance,
        mercury_ra, mercury_dec, mercury_distance,
        venus_ra, venus_dec, venus_distance,
        mars_ra, mars_dec, mars_distance,
        jupiter_ra, jupiter_dec, jupiter_distance,
        saturn_ra, saturn_dec, saturn_distance,
        uranus_ra, uranus_dec, uranus_distance,
        neptune_ra, neptune_dec, neptune_distance,
        moon_ra, moon_dec, moon_distance,
        using_fallback_data,
        data_sources,
        created_at`

	upsertRecordSQL = `INSERT INTO ephemeris_data (
        date,
        location,
        sun_ra, sun_dec, sun_distance,
        mercury_ra, mercury_dec, mercury_distance,
        venus_ra, venus_dec, venus_distance,
        mars_ra, mars_dec, mars_distance,
        jupiter_ra, jupiter_dec, jupiter_distance,
        saturn_ra, saturn_dec, saturn_distance,
        uranus_ra, uranus_dec, uranus_distance,
        neptune_ra, neptune_dec, neptune_distance,
        moon_ra, moon_dec, moon_distance,
        using_fallback_data,
        data_sources
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,
        $17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31
    )
    ON CONFLICT (date, location) DO UPDATE
    SET
        sun_ra = EXCLUDED.sun_ra, sun_dec = EXCLUDED.sun_dec, sun_distance = EXCLUDED.sun_distance,
        mercury_ra = EXCLUDED.mercury_ra, mercury_dec = EXCLUDED.mercury_dec, mercury_distance = EXCLUDED.mercury_distance,
        venus_ra = EXCLUDED.venus_ra, venus_dec = EXCLUDED.venus_dec, venus_distance = EXCLUDED.venus_distance,
        mars_ra = EXCLUDED.mars_ra, mars_dec = EXCLUDED.mars_dec, mars_distance = EXCLUDED.mars_distance,
        jupiter_ra = EXCLUDED.jupiter_ra, jupiter_dec = EXCLUDED.jupiter_dec, jupiter_distance = EXCLUDED.jupiter_distance,
        saturn_ra = EXCLUDED.saturn_ra, saturn_dec = EXCLUDED.saturn_dec, saturn_distance = EXCLUDED.saturn_distance,
        uranus_ra = EXCLUDED.uranus_ra, uranus_dec = EXCLUDED.uranus_dec, uranus_distance = EXCLUDED.uranus_distance,
        neptune_ra = EXCLUDED.neptune_ra, neptune_dec = EXCLUDED.neptune_dec, neptune_distance = EXCLUDED.neptune_distance,
        moon_ra = EXCLUDED.moon_ra, moon_dec = EXCLUDED.moon_dec, moon_distance = EXCLUDED.moon_distance,
        using_fallback_data = EXCLUDED.using_fallback_data,
        data_sources = EXCLUDED.data_sources;`
)

var (
	getRecordSQL = `SELECT ` + recordColumns + `
    FROM ephemeris_data
    WHERE date = $1 AND location = $2;`

	listRecentRecordsSQL = `SELECT ` + recordColumns + `
    FROM ephemeris_data
    ORDER BY date DESC
    LIMIT $1;`

	listRecordsBetweenSQL = `SELECT ` + recordColumns + `
    FROM ephemeris_data
    WHERE date >= $1
      AND date < $2
      AND location = $3
    ORDER BY date;`

	countRecordsSQL = `SELECT COUNT(*) FROM ephemeris_data;`
)

// RecordStore is the persistence contract the position assembler consumes:
// read a record by its natural key, or replace it wholesale.
type RecordStore interface {
	GetRecord(ctx context.Context, date time.Time, location string) (EphemerisRecord, error)
	UpsertRecord(ctx context.Context, record EphemerisRecord) error
}

// RecordLister exposes read paths for the show/export commands.
type RecordLister interface {
	ListRecentRecords(ctx context.Context, limit int) ([]EphemerisRecord, error)
	ListRecordsBetween(ctx context.Context, from, to time.Time, location string) ([]EphemerisRecord, error)
	CountRecords(ctx context.Context) (int64, error)
}

// Store provides Postgres-backed access to ephemeris records.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// GetRecord loads one record by (date, location). Returns ErrNotFound on miss.
func (s *Store) GetRecord(ctx context.Context, date time.Time, location string) (EphemerisRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return EphemerisRecord{}, err
	}

	row := pool.QueryRow(ctx, getRecordSQL, date.UTC(), location)
	record, scanErr := scanRecord(row)
	if scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return EphemerisRecord{}, ErrNotFound
		}
		return EphemerisRecord{}, fmt.Errorf("get ephemeris record: %w", scanErr)
	}
	return record, nil
}

// UpsertRecord persists a record, fully replacing any prior row for the key.
func (s *Store) UpsertRecord(ctx context.Context, record EphemerisRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	sources := make(map[string]string, len(record.Sources))
	for body, prov := range record.Sources {
		sources[body.String()] = string(prov)
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshal data sources: %w", err)
	}

	args := make([]interface{}, 0, 31)
	args = append(args, record.Date.UTC(), record.Location)
	for _, body := range catalog.Bodies {
		pos := record.Positions[body]
		args = append(args, numericArg(pos.RA), numericArg(pos.Dec), numericArg(pos.Distance))
	}
	args = append(args, record.UsingFallbackData, sourcesJSON)

	if _, execErr := pool.Exec(ctx, upsertRecordSQL, args...); execErr != nil {
		return fmt.Errorf("upsert ephemeris record: %w", execErr)
	}
	return nil
}

// ListRecentRecords lists the most recent records ordered by descending date.
func (s *Store) ListRecentRecords(ctx context.Context, limit int) ([]EphemerisRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentRecordsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent records: %w", queryErr)
	}
	defer rows.Close()

	return collectRecords(rows, limit)
}

// ListRecordsBetween lists records for a location within a date window.
func (s *Store) ListRecordsBetween(ctx context.Context, from, to time.Time, location string) ([]EphemerisRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecordsBetweenSQL, from.UTC(), to.UTC(), location)
	if queryErr != nil {
		return nil, fmt.Errorf("list records between: %w", queryErr)
	}
	defer rows.Close()

	return collectRecords(rows, 0)
}

// CountRecords counts stored records.
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countRecordsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count records: %w", scanErr)
	}
	return count, nil
}

func collectRecords(rows pgx.Rows, sizeHint int) ([]EphemerisRecord, error) {
	records := make([]EphemerisRecord, 0, sizeHint)
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, record)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

func numericArg(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return decimal.NewFromFloat(*v).String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (EphemerisRecord, error) {
	var (
		date        time.Time
		location    string
		coords      [27]sql.NullString
		usingFall   bool
		sourcesJSON []byte
		createdAt   time.Time
	)

	dest := make([]any, 0, 31)
	dest = append(dest, &date, &location)
	for i := range coords {
		dest = append(dest, &coords[i])
	}
	dest = append(dest, &usingFall, &sourcesJSON, &createdAt)

	if err := row.Scan(dest...); err != nil {
		return EphemerisRecord{}, err
	}

	sources := map[string]string{}
	if len(sourcesJSON) > 0 {
		if err := json.Unmarshal(sourcesJSON, &sources); err != nil {
			return EphemerisRecord{}, fmt.Errorf("parse data sources: %w", err)
		}
	}

	record := EphemerisRecord{
		Date:              date,
		Location:          location,
		Positions:         make(map[catalog.Body]Position, len(catalog.Bodies)),
		UsingFallbackData: usingFall,
		Sources:           make(map[catalog.Body]Provenance, len(catalog.Bodies)),
		CreatedAt:         createdAt,
	}

	for i, body := range catalog.Bodies {
		ra, err := numericValue(coords[i*3])
		if err != nil {
			return EphemerisRecord{}, fmt.Errorf("parse %s ra: %w", body, err)
		}
		dec, err := numericValue(coords[i*3+1])
		if err != nil {
			return EphemerisRecord{}, fmt.Errorf("parse %s dec: %w", body, err)
		}
		dist, err := numericValue(coords[i*3+2])
		if err != nil {
			return EphemerisRecord{}, fmt.Errorf("parse %s distance: %w", body, err)
		}

		prov := Provenance(sources[body.String()])
		if prov == "" {
			if ra != nil {
				prov = ProvenanceLive
			} else {
				prov = ProvenanceError
			}
		}

		record.Positions[body] = Position{Body: body, RA: ra, Dec: dec, Distance: dist, Provenance: prov}
		record.Sources[body] = prov
	}

	return record, nil
}

func numericValue(v sql.NullString) (*float64, error) {
	if !v.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil, err
	}
	f := d.InexactFloat64()
	return &f, nil
}
