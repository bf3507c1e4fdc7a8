package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssessor struct {
	mu    sync.Mutex
	forms []map[string]any
	err   error
}

func (f *fakeAssessor) Assess(ctx context.Context, form map[string]any) (*model.Document, error) {
	f.mu.Lock()
	f.forms = append(f.forms, form)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return &model.Document{
		Source: "upstream",
		Path:   "structured",
		Report: model.CanonicalReport{
			OverallScore:  55,
			Grade:         "D",
			CompositeRisk: 45,
			RiskLevel:     "MODERATE",
			Risks:         model.Risks{Heart: 20, Diabetes: 30, Hypertension: 40, Obesity: 50},
		},
		Signals: []model.Signal{},
	}, nil
}

func (f *fakeAssessor) NormalizeBytes(ctx context.Context, data []byte, contentType string, source string) *model.Document {
	return &model.Document{
		Source:  source,
		Path:    "text",
		Report:  model.CanonicalReport{OverallScore: float64(len(data))},
		Signals: []model.Signal{},
	}
}

func newTestServer(a Assessor) *Server {
	cfg := model.DefaultConfig()
	cfg.Server.ShutdownTimeout = time.Second
	return New(cfg, a)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeAssessor{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestNormalize(t *testing.T) {
	srv := newTestServer(&fakeAssessor{})

	req := httptest.NewRequest(http.MethodPost, "/api/normalize", strings.NewReader("hello"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var doc model.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "request", doc.Source)
	assert.Equal(t, 5.0, doc.Report.OverallScore)
}

func TestAssess_StoresResultsInSession(t *testing.T) {
	fake := &fakeAssessor{}
	srv := newTestServer(fake)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/assess", strings.NewReader(`{"age": 45, "gender": "female"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AssessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "/results", resp.RedirectURL)
	require.NotNil(t, resp.Report)
	assert.Equal(t, "D", resp.Report.Grade)

	require.Len(t, fake.forms, 1)
	assert.Equal(t, json.Number("45"), fake.forms[0]["age"])

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "vitalscan_session", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)

	results := httptest.NewRequest(http.MethodGet, "/results", nil)
	results.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, results)

	require.Equal(t, http.StatusOK, rec.Code)

	var got ResultsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.HasResults)
	require.NotNil(t, got.Document)
	assert.Equal(t, 45.0, got.Document.Report.CompositeRisk)
	assert.Equal(t, 50.0, got.Document.Report.Risks.Obesity)
}

func TestAssess_FormEncoded(t *testing.T) {
	fake := &fakeAssessor{}
	srv := newTestServer(fake)

	body := url.Values{"age": {"30"}, "smoker": {"no"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/api/assess", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fake.forms, 1)
	assert.Equal(t, "30", fake.forms[0]["age"])
	assert.Equal(t, "no", fake.forms[0]["smoker"])
}

func TestAssess_UpstreamFailure(t *testing.T) {
	fake := &fakeAssessor{err: fmt.Errorf("%w: model unavailable", pipeline.ErrUpstreamFailed)}
	srv := newTestServer(fake)

	req := httptest.NewRequest(http.MethodPost, "/api/assess", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	var resp AssessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "model unavailable")
}

func TestAssess_InvalidJSON(t *testing.T) {
	srv := newTestServer(&fakeAssessor{})

	req := httptest.NewRequest(http.MethodPost, "/api/assess", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResults_NoSession(t *testing.T) {
	srv := newTestServer(&fakeAssessor{})
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"has_results": false}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/results", nil)
	req.AddCookie(&http.Cookie{Name: "vitalscan_session", Value: "unknown"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSampleAssessment(t *testing.T) {
	fake := &fakeAssessor{}
	srv := newTestServer(fake)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sample-assessment", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	var resp SampleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 55.0, resp.Report.OverallScore)
	assert.Equal(t, "Male", resp.SampleData["gender"])

	require.Len(t, fake.forms, 1)
	assert.Equal(t, 52, fake.forms[0]["age"])
}

func TestSampleAssessment_UpstreamFailure(t *testing.T) {
	srv := newTestServer(&fakeAssessor{err: fmt.Errorf("%w: offline", pipeline.ErrUpstreamFailed)})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sample-assessment", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var resp SampleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Sample assessment failed")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv := newTestServer(&fakeAssessor{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "OK", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
