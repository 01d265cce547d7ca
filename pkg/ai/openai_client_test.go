package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nolabor/pkg/logger"
)

const chatBody = `{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"overview\":{}}"},"finish_reason":"stop"}]}`

func testClient(endpoint string) *openAI {
	return &openAI{
		endpoint: endpoint,
		key:      "test-key",
		log:      logger.NewNop(),
		backoff:  []time.Duration{time.Millisecond, time.Millisecond},
	}
}

func TestGeneratePlanRetriesTransportFaultThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			// cut the connection mid-request: transport-class fault
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("no hijacker")
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatBody))
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	out, err := c.GeneratePlan(context.Background(), "s", "u", "a", DefaultParams(""))
	if err != nil {
		t.Fatalf("want success on attempt 3, got %v", err)
	}
	if string(out) != `{"overview":{}}` {
		t.Fatalf("content = %s", out)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
}

func TestGeneratePlanGivesUpAfterThreeTransportFaults(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		hj := w.(http.Hijacker)
		conn, _, _ := hj.Hijack()
		conn.Close()
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	_, err := c.GeneratePlan(context.Background(), "s", "u", "a", DefaultParams(""))
	if !IsTransport(err) {
		t.Fatalf("want transport error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("attempts = %d, want exactly 3", got)
	}
}

func TestGeneratePlanDoesNotRetryProvider4xx(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad request","type":"invalid_request_error"}}`))
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	_, err := c.GeneratePlan(context.Background(), "s", "u", "a", DefaultParams(""))
	if err == nil {
		t.Fatal("want error")
	}
	if IsTransport(err) {
		t.Fatalf("4xx must not classify as transport: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("attempts = %d, want 1 (no retry)", got)
	}
}

func TestGeneratePlanEmptyContent(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  "},"finish_reason":"stop"}]}`))
	}))
	defer ts.Close()

	c := testClient(ts.URL)
	_, err := c.GeneratePlan(context.Background(), "s", "u", "a", DefaultParams(""))
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("want ErrEmptyContent, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("attempts = %d, want 1 (no retry on empty content)", got)
	}
}

func TestConnectBudgetFollowsParams(t *testing.T) {
	p := DefaultParams("")
	p.TimeoutSec = 90
	if got := connectBudget(p); got != 90*time.Second {
		t.Fatalf("connect budget = %v, want 90s", got)
	}
	p.TimeoutSec = 0
	if got := connectBudget(p); got != connectTimeout {
		t.Fatalf("zero timeout must fall back to %v, got %v", connectTimeout, got)
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams("")
	if p.ModelName == "" || p.MaxTokens != 2500 || p.TimeoutSec != 45 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if DefaultParams("custom").ModelName != "custom" {
		t.Fatal("explicit model ignored")
	}
}
