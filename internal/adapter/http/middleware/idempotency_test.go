package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	released      []string
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

type outcomeRecorder struct {
	outcomes []string
}

func (o *outcomeRecorder) IdempotencyOutcome(outcome string) {
	o.outcomes = append(o.outcomes, outcome)
}

func newKeyedRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/topup", bytes.NewBufferString(`{"top_up_amount":1000}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req.WithContext(WithUserID(req.Context(), "user-1"))
}

func TestIdempotencyMiddleware_StoreErrorFailsRequest(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, nil)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, newKeyedRequest("key-err"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ScopesKeyToUserAndPath(t *testing.T) {
	var seenKey string
	var seenTTL time.Duration
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			seenKey, seenTTL = key, ttl
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, nil)

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), newKeyedRequest("abc"))

	if seenKey != "user-1:/topup:abc" || seenTTL != time.Hour {
		t.Fatalf("unexpected key %q ttl %s", seenKey, seenTTL)
	}
}

func TestIdempotencyMiddleware_StoresSuccessfulResponse(t *testing.T) {
	var stored []byte
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			stored = response
			return nil
		},
	}
	observer := &outcomeRecorder{}
	mw := NewIdempotencyMiddleware(store, time.Hour, observer)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0}`))
	})).ServeHTTP(rr, newKeyedRequest("key-ok"))

	if string(stored) != `{"status":0}` {
		t.Fatalf("expected response to be stored, got %q", stored)
	}
	if len(store.released) != 0 {
		t.Fatalf("expected key to be kept, released %v", store.released)
	}
	if len(observer.outcomes) != 1 || observer.outcomes[0] != IdempotencyFirst {
		t.Fatalf("unexpected outcomes %v", observer.outcomes)
	}
}

func TestIdempotencyMiddleware_ReleasesFailedResponses(t *testing.T) {
	var updated bool
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, nil)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})).ServeHTTP(rr, newKeyedRequest("key-fail"))

	if updated {
		t.Fatalf("expected error responses not to be cached")
	}
	if len(store.released) != 1 || store.released[0] != "user-1:/topup:key-fail" {
		t.Fatalf("expected key to be released, got %v", store.released)
	}
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(`{"status":0,"message":"Top Up Balance berhasil"}`), nil
		},
	}
	observer := &outcomeRecorder{}
	mw := NewIdempotencyMiddleware(store, time.Hour, observer)

	var called bool
	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, newKeyedRequest("key-replay"))

	if called {
		t.Fatal("handler should not run for a replay")
	}
	if rr.Header().Get("X-Idempotency-Replay") != "true" || rr.Body.String() != `{"status":0,"message":"Top Up Balance berhasil"}` {
		t.Fatalf("unexpected replay %q headers %v", rr.Body.String(), rr.Header())
	}
	if len(observer.outcomes) != 1 || observer.outcomes[0] != IdempotencyReplayed {
		t.Fatalf("unexpected outcomes %v", observer.outcomes)
	}
}

func TestIdempotencyMiddleware_RejectsInFlightDuplicate(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte("processing"), nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, nil)

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run while the first request is in flight")
	})).ServeHTTP(rr, newKeyedRequest("key-busy"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_PassesThroughWithoutKey(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatal("store should not be consulted")
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, nil)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/topup", nil),
		httptest.NewRequest(http.MethodGet, "/balance", nil),
	} {
		req.Header.Set("X-Other", "1")
		if req.Method == http.MethodGet {
			req.Header.Set(IdempotencyKeyHeader, "ignored")
		}
		called := false
		mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})).ServeHTTP(httptest.NewRecorder(), req)
		if !called {
			t.Fatalf("%s %s: expected handler to run", req.Method, req.URL.Path)
		}
	}
}
