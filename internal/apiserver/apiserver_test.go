package apiserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chrissnell/solarengine/internal/orchestrator"
	"github.com/chrissnell/solarengine/internal/solarmodel"
)

func newTestServer() *Server {
	return NewServer(orchestrator.New(nil), nil)
}

func TestHealthz(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAnalyzeSynchronous(t *testing.T) {
	s := newTestServer()
	body := solarmodel.SearchRequest{
		Center:   solarmodel.Coordinate{Lat: 30.2672, Lng: -97.7431},
		RadiusKm: 2,
	}
	raw, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var results []solarmodel.Result
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one result")
	}
}

func TestAnalyzeInvalidRequestReturns400(t *testing.T) {
	s := newTestServer()
	body := solarmodel.SearchRequest{
		Center:   solarmodel.Coordinate{Lat: 999, Lng: 0},
		RadiusKm: 2,
	}
	raw, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAnalyzeAsyncReturnsAccepted(t *testing.T) {
	s := newTestServer()
	body := solarmodel.SearchRequest{
		Center:   solarmodel.Coordinate{Lat: 30.2672, Lng: -97.7431},
		RadiusKm: 2,
	}
	raw, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze?async=true", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var accepted map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if accepted["analysis_id"] == "" {
		t.Fatalf("expected an analysis_id in the response")
	}
}

func TestLogsEndpointReturnsArray(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
