// Package registry declares the probes a diagnostic run executes. The
// list is pure data: building it has no side effects and two calls to
// List always return the same specs in the same order.
package registry

import (
	"fmt"
	"math"
	"time"

	"aisdiag/internal/domain"
)

// Registry holds the ordered probe specifications for one run.
type Registry struct {
	specs []domain.ProbeSpec
}

// List returns the specs in declaration order. Callers get a copy so
// the registry stays immutable.
func (r *Registry) List() []domain.ProbeSpec {
	out := make([]domain.ProbeSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Options narrows what Default needs from the run configuration.
type Options struct {
	PageURL      string
	ProbeTimeout time.Duration
}

// Default covers every plausible failure point between the AIS data
// providers and the rendered overlay: DNS for each known provider
// hostname, HTTP against each historical or current data endpoint,
// the service's own backend API, and one browser-trigger probe for
// the live page.
func Default(opts Options) *Registry {
	t := opts.ProbeTimeout
	if t <= 0 {
		t = 10 * time.Second
	}

	// Tile request for central London at zoom 10, the same sample the
	// historical MarineTraffic integration fetched.
	tileURL := marineTrafficTileURL(51.5074, -0.1278, 10)

	specs := []domain.ProbeSpec{
		// DNS resolution of every hostname in the data path.
		{ID: "dns_openseamap", Target: "map.openseamap.org", Kind: domain.KindDNSResolution, Timeout: t},
		{ID: "dns_marinetraffic_tiles", Target: "tiles.marinetraffic.com", Kind: domain.KindDNSResolution, Timeout: t, Provider: true},
		{ID: "dns_aishub", Target: "data.aishub.net", Kind: domain.KindDNSResolution, Timeout: t, Provider: true},
		{ID: "dns_aisstream", Target: "aisstream.io", Kind: domain.KindDNSResolution, Timeout: t, Provider: true},

		// Historical primary provider: the MarineTraffic ship-tile
		// service and its public site.
		{ID: "http_marinetraffic_tiles", Target: tileURL, Kind: domain.KindHTTPGet, Timeout: t, Provider: true},
		{ID: "http_marinetraffic_site", Target: "https://www.marinetraffic.com/en/data/?asset_type=vessels", Kind: domain.KindHTTPGet, Timeout: t, Provider: true},

		// Alternative providers raised on the service's issue tracker.
		{ID: "http_aishub_api", Target: "https://data.aishub.net/ws.php?username=DEMO&format=1&output=json&compress=0", Kind: domain.KindHTTPGet, Timeout: t, Provider: true},
		{ID: "http_aisstream_site", Target: "https://aisstream.io", Kind: domain.KindHTTPGet, Timeout: t, Provider: true},

		// The service's own infrastructure. The API directory answers
		// 403 when present but restricted; getAIS.php answers 400 to a
		// degenerate bbox when the endpoint still exists.
		{ID: "http_openseamap_main", Target: "https://map.openseamap.org", Kind: domain.KindHTTPGet, Timeout: t},
		{ID: "http_openseamap_api_dir", Target: "https://map.openseamap.org/api/", Kind: domain.KindHTTPGet, Timeout: t, ExpectStatus: "200,403"},
		{ID: "http_openseamap_getais", Target: "https://map.openseamap.org/api/getAIS.php?bbox=0,0,1,1", Kind: domain.KindHTTPGet, Timeout: t, ExpectStatus: "200,400"},

		// The live page itself, driven by the browser session monitor.
		{ID: "browser_overlay_trigger", Target: opts.PageURL, Kind: domain.KindBrowserTrigger, Timeout: t},
	}

	return &Registry{specs: specs}
}

// marineTrafficTileURL reproduces the tile request the map's historical
// AIS layer issued, with slippy-map tile coordinates derived from
// lat/lon/zoom.
func marineTrafficTileURL(lat, lon float64, zoom int) string {
	n := math.Exp2(float64(zoom))
	x := int((lon + 180.0) / 360.0 * n)
	y := int((1.0 - math.Asinh(math.Tan(lat*math.Pi/180.0))/math.Pi) / 2.0 * n)
	return fmt.Sprintf(
		"https://tiles.marinetraffic.com/ais_helpers/shiptilesingle.aspx"+
			"?output=png&sat=1&grouping=shiptype&tile_size=512&legends=1&zoom=%d&X=%d&Y=%d",
		zoom, x, y)
}
