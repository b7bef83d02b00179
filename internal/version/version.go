// Package version carries the build identifier, injected at link time
// via -ldflags "-X aisdiag/internal/version.Build=...". Default "dev".
package version

var Build = "dev"
