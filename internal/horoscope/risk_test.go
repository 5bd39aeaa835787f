package horoscope

import (
	"testing"

	"incident-horoscope/internal/catalog"
)

func pred(level Level, confidence float64) Prediction {
	return Prediction{Category: "test", Level: level, Confidence: confidence, Body: "Mars"}
}

func TestOverallRisk(t *testing.T) {
	cases := []struct {
		name  string
		preds []Prediction
		want  string
	}{
		{"empty", nil, "normal"},
		{"one high", []Prediction{pred(LevelHigh, 0.75)}, "medium"}, // 2.25
		{"two high", []Prediction{pred(LevelHigh, 0.75), pred(LevelHigh, 0.75)}, "high"}, // 4.5
		{"high plus medium", []Prediction{pred(LevelHigh, 0.75), pred(LevelMedium, 0.65)}, "high"}, // 3.55
		{"one positive", []Prediction{pred(LevelPositive, 0.9)}, "favorable"},    // -0.9
		{"weak positive", []Prediction{pred(LevelPositive, 0.5)}, "normal"},      // -0.5
		{"mixed cancels", []Prediction{pred(LevelMedium, 0.5), pred(LevelPositive, 0.9)}, "normal"}, // 0.1
		{"low only", []Prediction{pred(LevelLow, 0.9)}, "normal"}, // 0.9 不超过 1.0
	}
	for _, tc := range cases {
		if got := OverallRisk(tc.preds); got != tc.want {
			t.Fatalf("%s: 期望 %q, 实际 %q", tc.name, tc.want, got)
		}
	}
}

func TestCosmicAdvice(t *testing.T) {
	risky := pred(LevelMedium, 0.6)
	positive := pred(LevelPositive, 0.5)

	if got := CosmicAdvice([]Prediction{risky, risky, positive}); got != adviceCautionary {
		t.Fatalf("风险占多数应给谨慎建议: %q", got)
	}
	if got := CosmicAdvice([]Prediction{positive, positive, risky}); got != adviceFavorable {
		t.Fatalf("正面占多数应给顺利建议: %q", got)
	}
	if got := CosmicAdvice([]Prediction{risky, positive}); got != adviceBalanced {
		t.Fatalf("持平应给平衡建议: %q", got)
	}
	if got := CosmicAdvice(nil); got != adviceBalanced {
		t.Fatalf("无预测应给平衡建议: %q", got)
	}
	// low carries weight in the score but counts on neither side here.
	if got := CosmicAdvice([]Prediction{pred(LevelLow, 0.9)}); got != adviceBalanced {
		t.Fatalf("low 级别不应影响建议选择: %q", got)
	}
}

func TestPlanetarySummary(t *testing.T) {
	record := recordWith(map[catalog.Body]float64{catalog.Mars: 90}, nil)
	summary := PlanetarySummary(record)

	if len(summary) != 7 {
		t.Fatalf("摘要应包含 7 颗行星, 实际 %d", len(summary))
	}
	if summary[0].Name != "Sun" || summary[0].Symbol != "☉" {
		t.Fatalf("第一项应为太阳: %+v", summary[0])
	}
	if summary[0].Sign != "Unknown" || summary[0].InfluenceStrength != "low" {
		t.Fatalf("缺失信号的行星应为 Unknown/low: %+v", summary[0])
	}

	var mars PlanetSummary
	for _, planet := range summary {
		if planet.Name == "Mars" {
			mars = planet
		}
	}
	if mars.Sign != "Cancer ♋" || mars.InfluenceStrength != "high" {
		t.Fatalf("Mars RA=90 应为 Cancer/high: %+v", mars)
	}
}
