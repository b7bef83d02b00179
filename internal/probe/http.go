package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"aisdiag/internal/domain"
)

// userAgent identifies the tool to third-party hosts.
const userAgent = "aisdiag/1.0 (overlay diagnostic)"

// HTTPChecker issues one GET bounded by the spec's timeout and maps
// the outcome onto the four-way status classification:
//
//	2xx/3xx            → SUCCESS
//	4xx/5xx            → FAILURE, carrying the status code
//	deadline exceeded  → TIMEOUT
//	transport failure  → ERROR (connection refused, TLS, DNS, ...)
type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker() *HTTPChecker {
	// Per-probe deadlines come from the request context, so the client
	// itself carries no timeout.
	return &HTTPChecker{Client: &http.Client{}}
}

func (h *HTTPChecker) Run(ctx context.Context, spec domain.ProbeSpec) domain.ProbeResult {
	res := domain.ProbeResult{ProbeID: spec.ID, CheckedAt: time.Now().UTC()}

	cctx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, spec.Target, nil)
	if err != nil {
		res.Status = domain.StatusError
		res.Detail = fmt.Sprintf("bad target %q: %v", spec.Target, err)
		return res
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := h.Client.Do(req)
	res.LatencyMS = float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		res.Status, res.Detail = classifyTransportError(spec.Target, err)
		return res
	}
	defer resp.Body.Close()

	res.HTTPStatus = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		res.Status = domain.StatusSuccess
		res.Detail = resp.Status
	} else {
		res.Status = domain.StatusFailure
		res.Detail = resp.Status
	}
	if spec.ExpectStatus != "" && matchStatus(spec.ExpectStatus, resp.StatusCode) {
		res.Detail += fmt.Sprintf(" (within expected %s)", spec.ExpectStatus)
	}
	return res
}

func classifyTransportError(target string, err error) (domain.Status, string) {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return domain.StatusTimeout, fmt.Sprintf("%s: request timed out: %v", target, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return domain.StatusError, fmt.Sprintf("%s: connection refused: %v", target, err)
	}
	var tlsErr *tls.CertificateVerificationError
	var recErr tls.RecordHeaderError
	if errors.As(err, &tlsErr) || errors.As(err, &recErr) {
		return domain.StatusError, fmt.Sprintf("%s: TLS failure: %v", target, err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.StatusError, fmt.Sprintf("%s: DNS failure during connect: %v", target, err)
	}
	return domain.StatusError, fmt.Sprintf("%s: connection error: %v", target, err)
}
