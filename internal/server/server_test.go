package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"hello-eks/internal/config"
	"hello-eks/internal/logging"
	"hello-eks/internal/telemetry"
	"hello-eks/internal/version"
)

// lockedBuffer is a bytes.Buffer safe for the logger and the test to share
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(nil, version.Get()); err == nil {
		t.Fatal("Expected error for nil config")
	}
}

// TestStartLogsPortAndServes starts a real listener and fetches the greeting
func TestStartLogsPortAndServes(t *testing.T) {
	logs := &lockedBuffer{}
	logging.SetOutput(logs)
	defer logging.SetOutput(os.Stdout)

	s := newTestServer(t, "127.0.0.1:0")

	done := make(chan error, 1)
	go func() {
		done <- s.Start()
	}()

	portRe := regexp.MustCompile(`Server is running on port (\d+)`)
	var port string
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if m := portRe.FindStringSubmatch(logs.String()); m != nil {
			port = m[1]
			break
		}
		select {
		case err := <-done:
			t.Fatalf("Start() returned early: %v", err)
		case <-time.After(10 * time.Millisecond):
		}
	}
	if port == "" {
		t.Fatalf("startup log line not found, logs: %q", logs.String())
	}

	resp, err := http.Get("http://127.0.0.1:" + port + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close() //nolint:errcheck,gosec // test cleanup
	if err != nil {
		t.Fatal(err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if string(body) != Greeting {
		t.Errorf("Expected body %q, got %q", Greeting, body)
	}

	s.Shutdown()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() after Shutdown returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Shutdown")
	}
}

// TestStartBindError verifies a second server on a taken port fails to start
func TestStartBindError(t *testing.T) {
	first := newTestServer(t, "127.0.0.1:0")
	ln, err := first.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	go first.Serve(ln) //nolint:errcheck // stopped by Shutdown
	defer first.Shutdown()

	addr := ln.Addr().String()
	second := newTestServer(t, addr)

	err = second.Start()
	if err == nil {
		second.Shutdown()
		t.Fatal("Expected second Start() on a bound port to fail")
	}

	var bindErr *BindError
	if !errors.As(err, &bindErr) {
		t.Fatalf("Expected *BindError, got %T: %v", err, err)
	}
	if bindErr.Addr != addr {
		t.Errorf("BindError.Addr = %q, want %q", bindErr.Addr, addr)
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Errorf("Expected wrapped *net.OpError, got %v", bindErr.Err)
	}
}

func TestListenInvalidAddress(t *testing.T) {
	s := newTestServer(t, "127.0.0.1:notaport")

	_, err := s.Listen()
	var bindErr *BindError
	if !errors.As(err, &bindErr) {
		t.Fatalf("Expected *BindError, got %v", err)
	}
}

// TestConcurrentRequests fires 100 simultaneous GET / requests
func TestConcurrentRequests(t *testing.T) {
	s := newTestServer(t, config.DefaultPort)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	const n = 100
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := srv.Client().Get(srv.URL + "/")
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close() //nolint:errcheck // test cleanup

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				errs <- err
				return
			}
			if resp.StatusCode != http.StatusOK {
				errs <- errors.New("unexpected status " + resp.Status)
				return
			}
			if string(body) != Greeting {
				errs <- errors.New("corrupted body: " + string(body))
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

// TestTracingSpanPerRequest verifies one span per request, tagged with the
// request ID, without touching the response
func TestTracingSpanPerRequest(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	// otelhttp captures the global provider at construction time
	s := newTestServer(t, config.DefaultPort)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "trace-me")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if rec.Body.String() != Greeting {
		t.Errorf("Expected body %q, got %q", Greeting, rec.Body.String())
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("Expected exactly one ended span, got %d", len(spans))
	}
	if got := spans[0].Name(); got != "GET /" {
		t.Errorf("Span name = %q, want %q", got, "GET /")
	}

	var requestID string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == telemetry.RequestIDKey {
			requestID = kv.Value.AsString()
		}
	}
	if requestID != "trace-me" {
		t.Errorf("Span request ID = %q, want %q", requestID, "trace-me")
	}
}
