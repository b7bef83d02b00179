package probe

import (
	"context"
	"strconv"
	"strings"

	"aisdiag/internal/domain"
)

// Runner executes a single probe spec once. No retries anywhere: a
// retried probe would blur transient against persistent failure, and
// the report has to be a faithful single-shot snapshot.
type Runner interface {
	Run(ctx context.Context, spec domain.ProbeSpec) domain.ProbeResult
}

// matchStatus reports whether code satisfies an expected-status
// pattern like "2xx", "200,403" or "200,4xx". An empty pattern means
// plain success (2xx/3xx).
func matchStatus(pattern string, code int) bool {
	if pattern == "" {
		return code >= 200 && code < 400
	}
	for _, tok := range strings.Split(pattern, ",") {
		tok = strings.TrimSpace(tok)
		if len(tok) == 3 && strings.HasSuffix(tok, "xx") {
			if c, err := strconv.Atoi(tok[:1]); err == nil && code/100 == c {
				return true
			}
			continue
		}
		if c, err := strconv.Atoi(tok); err == nil && code == c {
			return true
		}
	}
	return false
}
