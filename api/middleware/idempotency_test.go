package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error
	setErr  error
	setHits int
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setHits++
	if f.setErr != nil {
		return false, f.setErr
	}
	if _, exists := f.values[key]; exists {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "tp:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func requestWithPattern(method, target, pattern, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		wantTTL time.Duration
		wantOK  bool
	}{
		{"create sale", http.MethodPost, "/api/v1/sales", criticalIdempotencyTTL, true},
		{"refund sale", http.MethodPost, "/api/v1/sales/{saleID}/refund", criticalIdempotencyTTL, true},
		{"adjust stock", http.MethodPost, "/api/v1/inventory/adjust", defaultIdempotencyTTL, true},
		{"list sales not matched", http.MethodGet, "/api/v1/sales", 0, false},
		{"sale detail not matched", http.MethodGet, "/api/v1/sales/{saleID}", 0, false},
		{"unrelated route", http.MethodPost, "/api/v1/products", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ttl, ok := routeTTL(tt.method, tt.pattern)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v got %v", tt.wantOK, ok)
			}
			if ttl != tt.wantTTL {
				t.Fatalf("expected ttl %v got %v", tt.wantTTL, ttl)
			}
		})
	}
}

func TestTrimRoutePattern(t *testing.T) {
	if got := trimRoutePattern("/api/v1/sales/"); got != "/api/v1/sales" {
		t.Fatalf("expected trailing slash trimmed, got %q", got)
	}
	if got := trimRoutePattern("/"); got != "/" {
		t.Fatalf("expected root untouched, got %q", got)
	}
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := requestWithPattern(http.MethodPost, "/api/v1/sales", "/api/v1/sales", `{}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without header, got %d", resp.Code)
	}
}

func TestIdempotencySkipsUnmatchedRoutes(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := requestWithPattern(http.MethodGet, "/api/v1/sales", "/api/v1/sales", "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if store.setHits != 0 {
		t.Fatalf("expected no store writes for unmatched route, got %d", store.setHits)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	body := `{"items":[{"product_id":"p1","quantity":2}]}`

	first := requestWithPattern(http.MethodPost, "/api/v1/sales", "/api/v1/sales", body)
	first.Header.Set("Idempotency-Key", "req-42")
	firstResp := httptest.NewRecorder()
	handler.ServeHTTP(firstResp, first)
	if firstResp.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first call, got %d", firstResp.Code)
	}

	second := requestWithPattern(http.MethodPost, "/api/v1/sales", "/api/v1/sales", body)
	second.Header.Set("Idempotency-Key", "req-42")
	secondResp := httptest.NewRecorder()
	handler.ServeHTTP(secondResp, second)

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if secondResp.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", secondResp.Code)
	}
	if secondResp.Body.String() != firstResp.Body.String() {
		t.Fatalf("expected replayed body %q, got %q", firstResp.Body.String(), secondResp.Body.String())
	}
	if ct := secondResp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected replayed content type, got %q", ct)
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	first := requestWithPattern(http.MethodPost, "/api/v1/sales", "/api/v1/sales", `{"quantity":1}`)
	first.Header.Set("Idempotency-Key", "req-9")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := requestWithPattern(http.MethodPost, "/api/v1/sales", "/api/v1/sales", `{"quantity":2}`)
	second.Header.Set("Idempotency-Key", "req-9")
	secondResp := httptest.NewRecorder()
	handler.ServeHTTP(secondResp, second)

	if secondResp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on hash mismatch, got %d", secondResp.Code)
	}
}

func TestIdempotencyScopesByUser(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	body := `{"quantity":1}`

	first := requestWithPattern(http.MethodPost, "/api/v1/sales", "/api/v1/sales", body)
	first = first.WithContext(WithUserID(first.Context(), "user-a"))
	first.Header.Set("Idempotency-Key", "shared")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := requestWithPattern(http.MethodPost, "/api/v1/sales", "/api/v1/sales", body)
	second = second.WithContext(WithUserID(second.Context(), "user-b"))
	second.Header.Set("Idempotency-Key", "shared")
	handler.ServeHTTP(httptest.NewRecorder(), second)

	if calls != 2 {
		t.Fatalf("expected both users to reach the handler, got %d calls", calls)
	}
}
