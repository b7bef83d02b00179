package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"aisdiag/internal/domain"
)

// ipResolver is the slice of net.Resolver the checker needs; tests
// substitute a fake.
type ipResolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// DNSChecker resolves a hostname once through the OS resolver and
// classifies the outcome. Name-not-found is a FAILURE — the name is
// authoritatively gone — while a resolver timeout is a TIMEOUT; the
// two must never be collapsed because the verdict rules treat
// "provider endpoint removed" and "resolver unreachable" differently.
type DNSChecker struct {
	Resolver ipResolver
}

func NewDNSChecker() *DNSChecker {
	return &DNSChecker{Resolver: &net.Resolver{}} // OS resolver
}

func (d *DNSChecker) Run(ctx context.Context, spec domain.ProbeSpec) domain.ProbeResult {
	host := extractHost(spec.Target)
	res := domain.ProbeResult{ProbeID: spec.ID, CheckedAt: time.Now().UTC()}

	cctx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	start := time.Now()
	ips, err := d.Resolver.LookupIP(cctx, "ip", host)
	res.LatencyMS = float64(time.Since(start).Microseconds()) / 1000.0

	switch {
	case err == nil && len(ips) > 0:
		res.Status = domain.StatusSuccess
		res.Detail = fmt.Sprintf("%s resolves to %s", host, joinIPs(ips))
	case err == nil:
		res.Status = domain.StatusFailure
		res.Detail = fmt.Sprintf("%s returned no addresses", host)
	default:
		res.Status, res.Detail = classifyDNSError(host, err)
	}
	return res
}

func classifyDNSError(host string, err error) (domain.Status, string) {
	var de *net.DNSError
	if errors.As(err, &de) {
		if de.IsNotFound {
			return domain.StatusFailure, fmt.Sprintf("%s: NXDOMAIN (name not found)", host)
		}
		if de.Timeout() {
			return domain.StatusTimeout, fmt.Sprintf("%s: resolver timeout: %v", host, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.StatusTimeout, fmt.Sprintf("%s: resolver timeout: %v", host, err)
	}
	return domain.StatusError, fmt.Sprintf("%s: resolver error: %v", host, err)
}

// extractHost accepts either a bare hostname or a URL target.
func extractHost(raw string) string {
	if !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}

func joinIPs(ips []net.IP) string {
	ss := make([]string, len(ips))
	for i, ip := range ips {
		ss[i] = ip.String()
	}
	return strings.Join(ss, ", ")
}
