package storage

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"incident-horoscope/internal/catalog"
)

func TestRecordMarshalFlattens(t *testing.T) {
	ra, dec, dist := 121.748346, 20.125637, 1.523691
	record := EphemerisRecord{
		Date:     time.Date(2025, time.July, 22, 0, 0, 0, 0, time.UTC),
		Location: "New York City",
		Positions: map[catalog.Body]Position{
			catalog.Mars: {Body: catalog.Mars, RA: &ra, Dec: &dec, Distance: &dist, Provenance: ProvenanceLive},
			catalog.Moon: {Body: catalog.Moon, Provenance: ProvenanceError},
		},
		UsingFallbackData: true,
		Sources: map[catalog.Body]Provenance{
			catalog.Mars: ProvenanceLive,
			catalog.Moon: ProvenanceError,
		},
		CreatedAt: time.Date(2025, time.July, 22, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}

	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}

	if payload["date"] != "2025-07-22" {
		t.Fatalf("date 字段不正确: %#v", payload["date"])
	}
	if payload["mars_ra"] != 121.748346 {
		t.Fatalf("mars_ra 不正确: %#v", payload["mars_ra"])
	}
	if payload["moon_ra"] != nil {
		t.Fatalf("error 来源的坐标应为 null: %#v", payload["moon_ra"])
	}
	if payload["using_fallback_data"] != true {
		t.Fatalf("fallback 标记丢失: %#v", payload)
	}

	sources, ok := payload["data_sources"].(map[string]any)
	if !ok || sources["mars"] != "live" || sources["moon"] != "error" {
		t.Fatalf("data_sources 不正确: %#v", payload["data_sources"])
	}

	// 27 coordinate keys are always present, even for absent bodies.
	for _, body := range catalog.Bodies {
		for _, suffix := range []string{"_ra", "_dec", "_distance"} {
			if _, ok := payload[body.String()+suffix]; !ok {
				t.Fatalf("缺少列 %s%s", body, suffix)
			}
		}
	}
}

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *time.Time:
			d2 := v.(time.Time)
			*d = d2
		case *string:
			*d = v.(string)
		case *sql.NullString:
			if v == nil {
				*d = sql.NullString{}
			} else {
				*d = sql.NullString{String: v.(string), Valid: true}
			}
		case *bool:
			*d = v.(bool)
		case *[]byte:
			*d = v.([]byte)
		}
	}
	return nil
}

func TestScanRecordProvenanceDefaults(t *testing.T) {
	values := make([]any, 0, 31)
	values = append(values, time.Date(2025, time.July, 22, 0, 0, 0, 0, time.UTC), "nyc")
	// Sun carries coordinates, everything else is null.
	values = append(values, "121.748346", "20.125637", "1.523691")
	for i := 1; i < len(catalog.Bodies); i++ {
		values = append(values, nil, nil, nil)
	}
	// Legacy rows have no data_sources payload.
	values = append(values, false, []byte(nil), time.Now().UTC())

	record, err := scanRecord(fakeRow{values: values})
	if err != nil {
		t.Fatalf("扫描失败: %v", err)
	}

	sun := record.Positions[catalog.Sun]
	if sun.Provenance != ProvenanceLive || sun.RA == nil || *sun.RA != 121.748346 {
		t.Fatalf("有坐标的天体应默认 live: %+v", sun)
	}

	moon := record.Positions[catalog.Moon]
	if moon.Provenance != ProvenanceError || moon.RA != nil {
		t.Fatalf("无坐标的天体应默认 error: %+v", moon)
	}
}

func TestNumericArg(t *testing.T) {
	if got := numericArg(nil); got != nil {
		t.Fatalf("nil 坐标应映射为 SQL NULL: %#v", got)
	}
	v := 1.523691
	if got := numericArg(&v); got != "1.523691" {
		t.Fatalf("坐标应以十进制字符串写入: %#v", got)
	}
}
