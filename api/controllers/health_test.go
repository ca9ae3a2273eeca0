package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medimartid/medimart-gateway/pkg/config"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func testAppConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	handler := HealthLive(testAppConfig())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-MediMart-Env") != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-MediMart-Env"))
	}
}

func TestHealthReadyAllUp(t *testing.T) {
	deps := map[string]Pinger{
		"marketplace": stubPinger{},
		"redis":       stubPinger{},
	}
	handler := HealthReady(testAppConfig(), nil, deps)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["status"] != "ready" {
		t.Fatalf("unexpected status %q", envelope.Data["status"])
	}
	if envelope.Data["redis"] != "up" {
		t.Fatalf("expected redis up, got %q", envelope.Data["redis"])
	}
}

func TestHealthReadyReportsDownDependency(t *testing.T) {
	deps := map[string]Pinger{
		"marketplace": stubPinger{err: errors.New("connection refused")},
		"redis":       stubPinger{},
	}
	handler := HealthReady(testAppConfig(), nil, deps)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["status"] != "degraded" {
		t.Fatalf("unexpected status %q", envelope.Data["status"])
	}
	if envelope.Data["marketplace"] != "down" {
		t.Fatalf("expected marketplace down, got %q", envelope.Data["marketplace"])
	}
}

func TestPublicPing(t *testing.T) {
	resp := httptest.NewRecorder()
	PublicPing().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/public/ping", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
