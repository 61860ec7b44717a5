package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func checkHealth(t *testing.T, hc *HealthController) (int, map[string]string) {
	t.Helper()
	r := gin.New()
	r.GET("/health", hc.HealthCheck)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	return w.Code, body
}

func TestHealthCheck(t *testing.T) {
	code, body := checkHealth(t, NewHealthController(fakePinger{}, nil))
	if code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health %d %v", code, body)
	}
	if _, ok := body["cache"]; ok {
		t.Fatalf("cache should not be reported when not configured")
	}

	code, body = checkHealth(t, NewHealthController(fakePinger{}, fakePinger{err: errors.New("down")}))
	if code != http.StatusOK || body["cache"] == "ok" {
		t.Fatalf("a cache outage is reported but not fatal: %d %v", code, body)
	}

	code, body = checkHealth(t, NewHealthController(fakePinger{err: errors.New("down")}, fakePinger{}))
	if code != http.StatusInternalServerError || body["status"] != "error" {
		t.Fatalf("database outage should fail the check: %d %v", code, body)
	}
}
