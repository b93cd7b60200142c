package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/accounts-backend/pkg/errors"
)

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	store := newFakeRateStore()
	policy := NewRateLimitPolicy("register", time.Minute, 2, 2)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"email":"tester@example.com"`) {
			t.Fatalf("body should be replayed downstream, got %s", string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", strings.NewReader(`{"email":"tester@example.com","password":"secret"}`))
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRateLimit_EmailLimitIgnoresCaseAndWhitespace(t *testing.T) {
	store := newFakeRateStore()
	policy := NewRateLimitPolicy("register", time.Minute, 0, 2)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	emails := []string{"blocked@example.com", " BLOCKED@example.com ", "Blocked@Example.com"}
	for i, email := range emails {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", strings.NewReader(`{"email":"`+email+`"}`))
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		switch {
		case i < 2 && rec.Code != http.StatusOK:
			t.Fatalf("expected success before limit, got %d", rec.Code)
		case i >= 2:
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429, got %d", rec.Code)
			}
			if rec.Header().Get("Retry-After") != "60" {
				t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
			}
			var payload struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
				t.Fatalf("unexpected code: %s", payload.Error.Code)
			}
		}
	}
}

func TestRateLimit_IPLimitTriggers(t *testing.T) {
	store := newFakeRateStore()
	policy := NewRateLimitPolicy("register", time.Minute, 1, 0)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", strings.NewReader(`{"email":"foo@example.com"}`))
		req.Header.Set("X-Forwarded-For", "5.6.7.8, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 0 && rec.Code != http.StatusOK {
			t.Fatalf("expected success, got %d", rec.Code)
		}
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
	}
	if _, ok := store.counts["register:ip:5.6.7.8"]; !ok {
		t.Fatalf("expected forwarded ip key, got %v", store.counts)
	}
}

func TestRateLimit_StoreFailureIsDependencyError(t *testing.T) {
	store := newFakeRateStore()
	store.err = errors.New("redis down")
	policy := NewRateLimitPolicy("register", time.Minute, 1, 0)
	handler := RateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRateLimit_DisabledWithoutStore(t *testing.T) {
	policy := NewRateLimitPolicy("register", time.Minute, 1, 1)
	called := 0
	handler := RateLimit(policy, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
	}))
	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	}
	if called != 3 {
		t.Fatalf("expected every request through, got %d", called)
	}
}

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) FixedWindowAllow(ctx context.Context, limit int64, window time.Duration, scope ...string) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, 0, f.err
	}
	key := strings.Join(scope, ":")
	f.counts[key]++
	return f.counts[key] <= limit, f.counts[key], nil
}
