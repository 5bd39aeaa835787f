package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"incident-horoscope/internal/catalog"
	"incident-horoscope/internal/config"
	"incident-horoscope/internal/service"
	"incident-horoscope/internal/storage"
)

const sampleTable = "$$SOE\n 2025-Jul-22 00:00     121.748346   20.125637   1.523691   -1.84\n$$EOE"

type stubFetcher struct{}

func (stubFetcher) FetchBody(ctx context.Context, body catalog.Body, date time.Time) (string, error) {
	return sampleTable, nil
}

type memStore struct {
	records map[string]storage.EphemerisRecord
}

func (s *memStore) key(date time.Time, location string) string {
	return fmt.Sprintf("%s|%s", date.UTC().Format("2006-01-02"), location)
}

func (s *memStore) GetRecord(ctx context.Context, date time.Time, location string) (storage.EphemerisRecord, error) {
	record, ok := s.records[s.key(date, location)]
	if !ok {
		return storage.EphemerisRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *memStore) UpsertRecord(ctx context.Context, record storage.EphemerisRecord) error {
	s.records[s.key(record.Date, record.Location)] = record
	return nil
}

func newTestRouter() (http.Handler, *memStore) {
	store := &memStore{records: map[string]storage.EphemerisRecord{}}
	svc := service.New(service.Options{}, stubFetcher{}, store, nil, nil, zerolog.Nop())
	handler := NewHandler(svc, "New York City", zerolog.Nop())
	srv := New(config.ServerConfig{Address: ":0"}, handler, zerolog.Nop())
	return srv.Handler, store
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	payload := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("响应不是合法 JSON: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, payload
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter()
	rec, payload := doRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("健康检查应返回 200, 实际 %d", rec.Code)
	}
	if payload["status"] != "OK" {
		t.Fatalf("status 应为 OK: %#v", payload)
	}
}

func TestGetEphemerisValidation(t *testing.T) {
	router, _ := newTestRouter()

	rec, payload := doRequest(t, router, http.MethodGet, "/api/ephemeris", "")
	if rec.Code != http.StatusBadRequest || payload["error"] != "Date parameter is required" {
		t.Fatalf("缺少 date 应返回 400: %d %#v", rec.Code, payload)
	}

	rec, payload = doRequest(t, router, http.MethodGet, "/api/ephemeris?date=07-22-2025", "")
	if rec.Code != http.StatusBadRequest || payload["error"] != "Invalid date parameter" {
		t.Fatalf("非法 date 应返回 400: %d %#v", rec.Code, payload)
	}
}

func TestGetEphemerisAcquires(t *testing.T) {
	router, store := newTestRouter()

	rec, payload := doRequest(t, router, http.MethodGet, "/api/ephemeris?date=2025-07-22", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("应采集并返回 200, 实际 %d: %s", rec.Code, rec.Body.String())
	}
	if payload["date"] != "2025-07-22" {
		t.Fatalf("响应日期不正确: %#v", payload["date"])
	}
	if payload["location"] != "New York City" {
		t.Fatalf("应使用默认位置: %#v", payload["location"])
	}
	if payload["mars_ra"] != 121.748346 {
		t.Fatalf("mars_ra 不正确: %#v", payload["mars_ra"])
	}
	if len(store.records) != 1 {
		t.Fatalf("应持久化一条记录: %d", len(store.records))
	}
}

func TestBulkEphemeris(t *testing.T) {
	router, _ := newTestRouter()

	rec, payload := doRequest(t, router, http.MethodPost, "/api/ephemeris/bulk", `{"dates":[]}`)
	if rec.Code != http.StatusBadRequest || payload["error"] != "Dates array is required" {
		t.Fatalf("空日期数组应返回 400: %d %#v", rec.Code, payload)
	}

	rec, payload = doRequest(t, router, http.MethodPost, "/api/ephemeris/bulk", `{"dates":["2025-07-22","not-a-date"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("非法日期应返回 400: %d", rec.Code)
	}

	rec, payload = doRequest(t, router, http.MethodPost, "/api/ephemeris/bulk", `{"dates":["2025-07-22","2025-07-23"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("批量采集应返回 200: %d %s", rec.Code, rec.Body.String())
	}
	results, ok := payload["results"].([]any)
	if !ok || len(results) != 2 {
		t.Fatalf("应返回两条结果: %#v", payload)
	}
}

func TestTestHorizons(t *testing.T) {
	router, _ := newTestRouter()

	rec, payload := doRequest(t, router, http.MethodGet, "/api/ephemeris/test", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("探测应返回 200: %d", rec.Code)
	}
	if payload["status"] != "success" || payload["horizons_api_working"] != true {
		t.Fatalf("可用的上游应报告 success: %#v", payload)
	}
}

func TestGetHoroscopeNotFetched(t *testing.T) {
	router, _ := newTestRouter()

	rec, payload := doRequest(t, router, http.MethodGet, "/api/horoscope?date=2025-07-22", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("未抓取日期应返回 200 和提示: %d", rec.Code)
	}
	if payload["horoscope"] != nil {
		t.Fatalf("horoscope 应为 null: %#v", payload)
	}
	if !strings.Contains(payload["message"].(string), "fetch it first") {
		t.Fatalf("提示消息不正确: %#v", payload["message"])
	}
}

func TestGetHoroscopeSuccess(t *testing.T) {
	router, _ := newTestRouter()

	if rec, _ := doRequest(t, router, http.MethodGet, "/api/ephemeris?date=2025-07-22", ""); rec.Code != http.StatusOK {
		t.Fatalf("预置抓取失败: %d", rec.Code)
	}

	rec, payload := doRequest(t, router, http.MethodGet, "/api/horoscope?date=2025-07-22", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("生成报告应返回 200: %d %s", rec.Code, rec.Body.String())
	}

	horoscope, ok := payload["horoscope"].(map[string]any)
	if !ok {
		t.Fatalf("应包含 horoscope 对象: %#v", payload)
	}
	if horoscope["overall_risk_level"] == nil || horoscope["cosmic_advice"] == nil {
		t.Fatalf("报告字段缺失: %#v", horoscope)
	}
	if _, ok := payload["ephemeris"].(map[string]any); !ok {
		t.Fatalf("应包含底层 ephemeris: %#v", payload)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/api/horoscope?date=2025-07-22&birth_date=bad", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("非法 birth_date 应返回 400: %d", rec.Code)
	}
}
