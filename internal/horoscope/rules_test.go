package horoscope

import (
	"strings"
	"testing"
	"time"

	"incident-horoscope/internal/catalog"
	"incident-horoscope/internal/storage"
)

// recordWith builds a record where only the listed bodies carry a live RA (and
// optional distance); everything else is an errored position with nil signals.
func recordWith(ras map[catalog.Body]float64, distances map[catalog.Body]float64) storage.EphemerisRecord {
	record := storage.EphemerisRecord{
		Date:      time.Date(2025, time.July, 22, 0, 0, 0, 0, time.UTC),
		Location:  "New York City",
		Positions: make(map[catalog.Body]storage.Position, len(catalog.Bodies)),
		Sources:   make(map[catalog.Body]storage.Provenance, len(catalog.Bodies)),
	}
	for _, body := range catalog.Bodies {
		pos := storage.Position{Body: body, Provenance: storage.ProvenanceError}
		if ra, ok := ras[body]; ok {
			v := ra
			dec := 0.0
			dist := 1.0
			if d, ok := distances[body]; ok {
				dist = d
			}
			pos = storage.Position{Body: body, RA: &v, Dec: &dec, Distance: &dist, Provenance: storage.ProvenanceLive}
		}
		record.Positions[body] = pos
		record.Sources[body] = pos.Provenance
	}
	return record
}

func findPrediction(preds []Prediction, category string) (Prediction, bool) {
	for _, pred := range preds {
		if pred.Category == category {
			return pred, true
		}
	}
	return Prediction{}, false
}

func TestMarsBands(t *testing.T) {
	cases := []struct {
		ra         float64
		category   string
		level      Level
		confidence float64
	}{
		{58, "incident_risk", LevelHigh, 0.75},    // tension 28
		{57, "incident_risk", LevelMedium, 0.6},   // tension 27, 不属于 high
		{25, "incident_risk", LevelMedium, 0.6},   // tension 25
		{32, "system_stability", LevelPositive, 0.5}, // tension 2
	}
	for _, tc := range cases {
		preds := Predictions(recordWith(map[catalog.Body]float64{catalog.Mars: tc.ra}, nil))
		pred, ok := findPrediction(preds, tc.category)
		if !ok {
			t.Fatalf("Mars RA=%f 应触发 %s", tc.ra, tc.category)
		}
		if pred.Level != tc.level || pred.Confidence != tc.confidence {
			t.Fatalf("Mars RA=%f: 期望 %s/%.2f, 实际 %s/%.2f", tc.ra, tc.level, tc.confidence, pred.Level, pred.Confidence)
		}
		if pred.Body != "Mars" {
			t.Fatalf("planet 字段应为 Mars, 实际 %q", pred.Body)
		}
	}
}

func TestMarsQuietBand(t *testing.T) {
	// tension 15 falls between the positive and medium bands; nothing fires.
	preds := Predictions(recordWith(map[catalog.Body]float64{catalog.Mars: 45}, nil))
	if len(preds) != 0 {
		t.Fatalf("Mars RA=45 不应触发任何规则: %+v", preds)
	}
}

func TestMercuryBoundaries(t *testing.T) {
	// 330 exactly fires the risk band; just below it does not.
	preds := Predictions(recordWith(map[catalog.Body]float64{catalog.Mercury: 330}, nil))
	pred, ok := findPrediction(preds, "communication_risk")
	if !ok || pred.Level != LevelMedium || pred.Confidence != 0.65 {
		t.Fatalf("RA=330 应触发 medium/0.65: %+v", preds)
	}

	preds = Predictions(recordWith(map[catalog.Body]float64{catalog.Mercury: 329.999}, nil))
	if _, ok := findPrediction(preds, "communication_risk"); ok {
		t.Fatal("RA=329.999 不应触发 communication_risk")
	}

	preds = Predictions(recordWith(map[catalog.Body]float64{catalog.Mercury: 180}, nil))
	pred, ok = findPrediction(preds, "communication_flow")
	if !ok || pred.Level != LevelPositive || pred.Confidence != 0.6 {
		t.Fatalf("RA=180 应触发 communication_flow positive/0.6: %+v", preds)
	}
}

func TestVenusJupiterSaturnMoonSun(t *testing.T) {
	preds := Predictions(recordWith(map[catalog.Body]float64{
		catalog.Venus:   90,  // sin=1 > 0.5
		catalog.Jupiter: 100, // distance below
		catalog.Saturn:  0,   // cos=1 > 0.7
		catalog.Moon:    30,  // phase 2 < 3
		catalog.Sun:     90,  // |sin|=1 > 0.7
	}, map[catalog.Body]float64{catalog.Jupiter: 4.2}))

	expected := []struct {
		category   string
		level      Level
		confidence float64
	}{
		{"team_harmony", LevelPositive, 0.55},
		{"growth_opportunities", LevelPositive, 0.5},
		{"testing_focus", LevelMedium, 0.6},
		{"on_call_management", LevelMedium, 0.7},
		{"leadership_opportunity", LevelPositive, 0.6},
	}
	for _, want := range expected {
		pred, ok := findPrediction(preds, want.category)
		if !ok {
			t.Fatalf("应触发 %s: %+v", want.category, preds)
		}
		if pred.Level != want.level || pred.Confidence != want.confidence {
			t.Fatalf("%s: 期望 %s/%.2f, 实际 %s/%.2f", want.category, want.level, want.confidence, pred.Level, pred.Confidence)
		}
	}
}

func TestSaturnFlexibilityAndMoonWellness(t *testing.T) {
	preds := Predictions(recordWith(map[catalog.Body]float64{
		catalog.Saturn: 180, // cos=-1 < -0.5
		catalog.Moon:   180, // phase 12
	}, nil))

	if pred, ok := findPrediction(preds, "process_flexibility"); !ok || pred.Level != LevelPositive {
		t.Fatalf("Saturn RA=180 应触发 process_flexibility: %+v", preds)
	}
	if pred, ok := findPrediction(preds, "team_wellness"); !ok || pred.Confidence != 0.55 {
		t.Fatalf("Moon RA=180 应触发 team_wellness/0.55: %+v", preds)
	}
}

func TestErroredBodiesContributeNothing(t *testing.T) {
	preds := Predictions(recordWith(nil, nil))
	if len(preds) != 0 {
		t.Fatalf("全部信号缺失时不应有预测: %+v", preds)
	}
}

func TestPredictionOrder(t *testing.T) {
	preds := Predictions(recordWith(map[catalog.Body]float64{
		catalog.Mars:    58,
		catalog.Mercury: 10,
		catalog.Sun:     90,
	}, nil))
	if len(preds) != 3 {
		t.Fatalf("应有 3 条预测: %+v", preds)
	}
	if preds[0].Body != "Mars" || preds[1].Body != "Mercury" || preds[2].Body != "Sun" {
		t.Fatalf("评估顺序应为 Mars, Mercury, Sun: %+v", preds)
	}
}

func TestPersonalPredictions(t *testing.T) {
	preds := PersonalPredictions(recordWith(map[catalog.Body]float64{catalog.Mars: 58}, nil))
	pred, ok := findPrediction(preds, "personal_incident_risk")
	if !ok {
		t.Fatalf("个人预测应加 personal_ 前缀: %+v", preds)
	}
	if !strings.Contains(pred.Message, "Mars in ") {
		t.Fatalf("消息应插入星座: %q", pred.Message)
	}
}
