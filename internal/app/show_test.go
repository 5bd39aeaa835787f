package app

import (
	"strings"
	"testing"
	"time"

	"incident-horoscope/internal/catalog"
	"incident-horoscope/internal/storage"
)

func testRecord(day int, location string, ras map[catalog.Body]float64) storage.EphemerisRecord {
	record := storage.EphemerisRecord{
		Date:      time.Date(2025, time.July, day, 0, 0, 0, 0, time.UTC),
		Location:  location,
		Positions: make(map[catalog.Body]storage.Position, len(catalog.Bodies)),
		Sources:   make(map[catalog.Body]storage.Provenance, len(catalog.Bodies)),
	}
	for _, body := range catalog.Bodies {
		pos := storage.Position{Body: body, Provenance: storage.ProvenanceError}
		if ra, ok := ras[body]; ok {
			v := ra
			dec := 0.0
			dist := 1.0
			pos = storage.Position{Body: body, RA: &v, Dec: &dec, Distance: &dist, Provenance: storage.ProvenanceLive}
		} else {
			record.UsingFallbackData = true
		}
		record.Positions[body] = pos
		record.Sources[body] = pos.Provenance
	}
	return record
}

func TestRenderRecords(t *testing.T) {
	records := []storage.EphemerisRecord{
		testRecord(22, "bad\nloc", map[catalog.Body]float64{catalog.Sun: 121.748346}),
	}

	var out strings.Builder
	renderRecords(&out, records)
	rendered := out.String()

	if !strings.Contains(rendered, "Date") || !strings.Contains(rendered, "Fallback?") {
		t.Fatalf("缺少表头: %q", rendered)
	}
	if !strings.Contains(rendered, "2025-07-22") {
		t.Fatalf("缺少日期列: %q", rendered)
	}
	if !strings.Contains(rendered, "121.748") {
		t.Fatalf("Sun RA 未格式化输出: %q", rendered)
	}
	if strings.Contains(rendered, "bad\nloc") || !strings.Contains(rendered, "bad loc") {
		t.Fatalf("位置中的换行应被清理: %q", rendered)
	}
	// Moon has no coordinates; its RA column shows a dash.
	if !strings.Contains(rendered, "-") {
		t.Fatalf("缺失坐标应显示 -: %q", rendered)
	}
}

func TestRenderRecordsEmpty(t *testing.T) {
	var out strings.Builder
	renderRecords(&out, nil)
	if !strings.Contains(out.String(), "no records found") {
		t.Fatalf("空结果提示不正确: %q", out.String())
	}
}

func TestProvenanceCounts(t *testing.T) {
	record := testRecord(22, "nyc", map[catalog.Body]float64{catalog.Sun: 100, catalog.Mars: 200})
	record.Sources[catalog.Moon] = storage.ProvenanceFallback

	live, fallback, failed := provenanceCounts(record)
	if live != 2 || fallback != 1 || failed != 6 {
		t.Fatalf("来源统计不正确: live=%d fallback=%d error=%d", live, fallback, failed)
	}
}
