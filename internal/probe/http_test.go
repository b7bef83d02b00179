package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aisdiag/internal/domain"
)

func httpSpec(target string, timeout time.Duration) domain.ProbeSpec {
	return domain.ProbeSpec{
		ID:      "http_test",
		Target:  target,
		Kind:    domain.KindHTTPGet,
		Timeout: timeout,
	}
}

func TestHTTPChecker_StatusOK(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	}))
	defer s.Close()

	out := NewHTTPChecker().Run(context.Background(), httpSpec(s.URL, 2*time.Second))
	if out.Status != domain.StatusSuccess {
		t.Fatalf("want success, got %+v", out)
	}
	if out.HTTPStatus != 200 {
		t.Fatalf("want status 200, got %d", out.HTTPStatus)
	}
	if out.LatencyMS < 0 {
		t.Fatalf("latency should be >= 0, got %f", out.LatencyMS)
	}
}

func TestHTTPChecker_403IsFailureWithCode(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", 403)
	}))
	defer s.Close()

	chk := NewHTTPChecker()

	// Determinism under stable external conditions: same result twice.
	for i := 0; i < 2; i++ {
		out := chk.Run(context.Background(), httpSpec(s.URL, 2*time.Second))
		if out.Status != domain.StatusFailure {
			t.Fatalf("run %d: want failure, got %+v", i, out)
		}
		if out.HTTPStatus != 403 {
			t.Fatalf("run %d: want status 403, got %d", i, out.HTTPStatus)
		}
	}
}

func TestHTTPChecker_TimeoutIsNotError(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	spec := httpSpec(s.URL, 50*time.Millisecond)
	start := time.Now()
	out := NewHTTPChecker().Run(context.Background(), spec)
	took := time.Since(start)

	if out.Status != domain.StatusTimeout {
		t.Fatalf("want timeout, got %+v", out)
	}
	if out.HTTPStatus != 0 {
		t.Fatalf("want no http status on timeout, got %d", out.HTTPStatus)
	}
	// Timeout must be enforced strictly, with a small tolerance.
	if took > spec.Timeout+500*time.Millisecond {
		t.Fatalf("probe overran its timeout: took %s with budget %s", took, spec.Timeout)
	}
}

func TestHTTPChecker_ConnectionRefusedIsError(t *testing.T) {
	// Bind then close a listener so the port is known-dead.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	out := NewHTTPChecker().Run(context.Background(), httpSpec("http://"+addr, 2*time.Second))
	if out.Status != domain.StatusError {
		t.Fatalf("want error, got %+v", out)
	}
	if !strings.Contains(out.Detail, "connection refused") {
		t.Fatalf("want refused detail, got %q", out.Detail)
	}
}

func TestHTTPChecker_ExpectedStatusNoted(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "restricted", 403)
	}))
	defer s.Close()

	spec := httpSpec(s.URL, 2*time.Second)
	spec.ExpectStatus = "200,403"
	out := NewHTTPChecker().Run(context.Background(), spec)

	if out.Status != domain.StatusFailure {
		t.Fatalf("expectation must not change classification, got %+v", out)
	}
	if !strings.Contains(out.Detail, "within expected 200,403") {
		t.Fatalf("want expectation note in detail, got %q", out.Detail)
	}
}

func TestMatchStatus(t *testing.T) {
	cases := []struct {
		pattern string
		code    int
		want    bool
	}{
		{"", 200, true},
		{"", 302, true},
		{"", 404, false},
		{"2xx", 204, true},
		{"2xx", 404, false},
		{"200,403", 403, true},
		{"200,403", 401, false},
		{"200,4xx", 418, true},
	}
	for _, c := range cases {
		if got := matchStatus(c.pattern, c.code); got != c.want {
			t.Fatalf("matchStatus(%q, %d)=%v want %v", c.pattern, c.code, got, c.want)
		}
	}
}
