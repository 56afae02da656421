package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/salespulse/backend/internal/ai"
	"github.com/salespulse/backend/internal/analytics"
	"github.com/salespulse/backend/internal/kvstore"
	"github.com/salespulse/backend/internal/store"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &Handler{
		Store:       store.New(),
		Engine:      analytics.NewEngine(),
		Assistant:   ai.MockAssistant{},
		Cache:       kvstore.NewMemory(),
		Validator:   validator.New(),
		Logger:      zerolog.Nop(),
		TrendMonths: 6,
		Now:         func() time.Time { return testNow },
	}

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	api := r.Group("/api")
	api.POST("/import", h.Import)
	api.GET("/datasets", h.DatasetsList)
	api.GET("/datasets/:id", h.DatasetDetails)
	api.DELETE("/datasets/:id", h.DatasetDelete)
	api.GET("/datasets/:id/regions", h.Regions)
	api.GET("/datasets/:id/agents", h.Agents)
	api.GET("/datasets/:id/segments", h.Segments)
	api.GET("/datasets/:id/trends", h.Trends)
	api.GET("/datasets/:id/timing", h.Timing)
	api.GET("/datasets/:id/recommendations", h.Recommendations)
	api.POST("/datasets/:id/agenda", h.Agenda)
	api.POST("/datasets/:id/narrative", h.Narrative)
	return r, h
}

// importForm builds the multipart body for an import request.
func importForm(t *testing.T, files map[string]string, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".csv")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write content: %v", err)
		}
	}
	for k, v := range values {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const tripsCSV = `Trip Date,Destination,Owner,Passthrough Date
2024-06-01,Paris,Alice,2024-06-02
2024-06-02,Paris,Alice,2024-06-03
2024-06-03,Paris,Alice,
2024-06-04,Paris,Bob,2024-06-05
2024-06-05,Paris,Bob,
2024-06-06,Rome,Bob,
2024-06-07,Rome,Bob,
2024-06-08,Rome,Alice,2024-06-09
`

func importDataset(t *testing.T, r *gin.Engine) string {
	t.Helper()
	body, ct := importForm(t, map[string]string{"trips": tripsCSV}, map[string]string{
		"teams":         `{"Europe":["Alice","Bob"]}`,
		"senior_agents": `["Alice"]`,
	})
	rec := doRequest(t, r, http.MethodPost, "/api/import", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("import failed: %d %s", rec.Code, rec.Body.String())
	}
	var summary ImportSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.DatasetID == "" {
		t.Fatalf("expected a dataset id, got %+v", summary)
	}
	return summary.DatasetID
}

func TestImportAndRegions(t *testing.T) {
	r, _ := newTestRouter(t)
	id := importDataset(t, r)

	rec := doRequest(t, r, http.MethodGet, "/api/datasets/"+id+"/regions?timeframe=all", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("regions: %d %s", rec.Code, rec.Body.String())
	}
	var perf struct {
		Buckets []struct {
			Key   string  `json:"key"`
			Trips int     `json:"trips"`
			Rate  float64 `json:"rate"`
		} `json:"buckets"`
		DataAvailable bool `json:"data_available"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &perf); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !perf.DataAvailable {
		t.Fatalf("expected data, got %s", rec.Body.String())
	}
	if len(perf.Buckets) != 2 || perf.Buckets[0].Key != "Paris" {
		t.Fatalf("expected Paris first, got %s", rec.Body.String())
	}
	if perf.Buckets[0].Trips != 5 || perf.Buckets[0].Rate != 60.0 {
		t.Fatalf("unexpected Paris bucket: %+v", perf.Buckets[0])
	}
}

func TestImportRequiresTrips(t *testing.T) {
	r, _ := newTestRouter(t)
	body, ct := importForm(t, map[string]string{"quotes": "Quote Date\n2024-06-01\n"}, nil)
	rec := doRequest(t, r, http.MethodPost, "/api/import", body, ct)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_REQUEST") {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
}

func TestImportRejectsBadRosterJSON(t *testing.T) {
	r, _ := newTestRouter(t)
	body, ct := importForm(t, map[string]string{"trips": tripsCSV}, map[string]string{"teams": "{broken"})
	rec := doRequest(t, r, http.MethodPost, "/api/import", body, ct)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "PARSE_ERROR") {
		t.Fatalf("expected PARSE_ERROR, got %s", rec.Body.String())
	}
}

func TestDatasetNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doRequest(t, r, http.MethodGet, "/api/datasets/nope/regions", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND envelope, got %s", rec.Body.String())
	}
}

func TestAgentsUseRosters(t *testing.T) {
	r, _ := newTestRouter(t)
	id := importDataset(t, r)

	rec := doRequest(t, r, http.MethodGet, "/api/datasets/"+id+"/agents", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("agents: %d %s", rec.Code, rec.Body.String())
	}
	var perf struct {
		Agents []struct {
			Key    string `json:"key"`
			Team   string `json:"team"`
			Senior bool   `json:"senior"`
		} `json:"agents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &perf); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(perf.Agents) != 2 {
		t.Fatalf("expected Alice and Bob, got %s", rec.Body.String())
	}
	for _, a := range perf.Agents {
		if a.Team != "Europe" {
			t.Fatalf("expected roster team annotation, got %+v", a)
		}
		if a.Key == "Alice" && !a.Senior {
			t.Fatalf("Alice should be marked senior: %+v", a)
		}
	}
}

func TestTrendsMonthsValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	id := importDataset(t, r)

	rec := doRequest(t, r, http.MethodGet, "/api/datasets/"+id+"/trends?months=99", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for months=99, got %d", rec.Code)
	}

	rec = doRequest(t, r, http.MethodGet, "/api/datasets/"+id+"/trends?months=3", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("trends: %d %s", rec.Code, rec.Body.String())
	}
	var trend struct {
		Periods []string `json:"periods"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &trend); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(trend.Periods) != 3 {
		t.Fatalf("expected 3 periods, got %s", rec.Body.String())
	}
}

func TestRecommendationsAgentScoped(t *testing.T) {
	r, _ := newTestRouter(t)
	id := importDataset(t, r)

	rec := doRequest(t, r, http.MethodGet, "/api/datasets/"+id+"/recommendations?agent=alice", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("agent recommendations: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Agent string `json:"agent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Agent != "Alice" {
		t.Fatalf("agent match should be case-insensitive, got %s", rec.Body.String())
	}

	rec = doRequest(t, r, http.MethodGet, "/api/datasets/"+id+"/recommendations?agent=nobody", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown agent, got %d", rec.Code)
	}
}

func TestAgendaValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	id := importDataset(t, r)

	body := bytes.NewBufferString(`{"program":"all"}`)
	rec := doRequest(t, r, http.MethodPost, "/api/datasets/"+id+"/agenda", body, "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing timeframe must fail validation, got %d %s", rec.Code, rec.Body.String())
	}

	body = bytes.NewBufferString(`{"program":"all","timeframe":"all"}`)
	rec = doRequest(t, r, http.MethodPost, "/api/datasets/"+id+"/agenda", body, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("agenda: %d %s", rec.Code, rec.Body.String())
	}
	var agenda struct {
		Program string `json:"program"`
		Totals  struct {
			Trips int `json:"trips"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &agenda); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if agenda.Program != "all" || agenda.Totals.Trips != 8 {
		t.Fatalf("unexpected agenda: %s", rec.Body.String())
	}
}

func TestNarrativeCaching(t *testing.T) {
	r, _ := newTestRouter(t)
	id := importDataset(t, r)

	rec := doRequest(t, r, http.MethodPost, "/api/datasets/"+id+"/narrative", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("narrative: %d %s", rec.Code, rec.Body.String())
	}
	var first struct {
		Text   string `json:"text"`
		Cached bool   `json:"cached"`
		Blocks []struct {
			Kind string `json:"kind"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Cached {
		t.Fatalf("first call must not be served from cache")
	}
	if first.Text == "" || len(first.Blocks) == 0 {
		t.Fatalf("expected narrative text and blocks, got %s", rec.Body.String())
	}

	rec = doRequest(t, r, http.MethodPost, "/api/datasets/"+id+"/narrative", nil, "")
	var second struct {
		Text   string `json:"text"`
		Cached bool   `json:"cached"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !second.Cached || second.Text != first.Text {
		t.Fatalf("second call should hit the cache with identical text")
	}

	rec = doRequest(t, r, http.MethodPost, "/api/datasets/"+id+"/narrative?force=1", nil, "")
	var forced struct {
		Cached bool `json:"cached"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &forced); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if forced.Cached {
		t.Fatalf("force=1 must bypass the cache")
	}
}

func TestDeleteDataset(t *testing.T) {
	r, _ := newTestRouter(t)
	id := importDataset(t, r)

	rec := doRequest(t, r, http.MethodDelete, "/api/datasets/"+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, r, http.MethodGet, "/api/datasets/"+id, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := doRequest(t, r, http.MethodGet, "/healthz", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
