package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive("dev")(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Accounts-Env") != "dev" {
		t.Fatalf("missing env header")
	}
}

func TestHealthReady(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("refused") })

	cases := []struct {
		name   string
		deps   map[string]Pinger
		status int
		checks map[string]string
	}{
		{"all healthy", map[string]Pinger{"store": ok, "redis": ok}, http.StatusOK, map[string]string{"store": "ok", "redis": "ok"}},
		{"optional skipped", map[string]Pinger{"store": ok, "redis": nil}, http.StatusOK, map[string]string{"store": "ok"}},
		{"store down", map[string]Pinger{"store": down, "redis": ok}, http.StatusServiceUnavailable, map[string]string{"store": "down", "redis": "ok"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthReady("dev", nil, tc.deps)(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var payload struct {
				Data struct {
					Checks map[string]string `json:"checks"`
				} `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(payload.Data.Checks) != len(tc.checks) {
				t.Fatalf("unexpected checks %v", payload.Data.Checks)
			}
			for k, v := range tc.checks {
				if payload.Data.Checks[k] != v {
					t.Fatalf("check %s: expected %s, got %s", k, v, payload.Data.Checks[k])
				}
			}
		})
	}
}
