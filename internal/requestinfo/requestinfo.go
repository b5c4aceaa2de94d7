// internal/requestinfo/requestinfo.go
//
// Per-request metadata for the access log: user-agent fingerprint, client
// IP, and best-effort GeoLite2 geolocation.  The structs are inert and hold
// no handles, so they are safe to log or JSON-encode.
//
// Notes
// -----
//   - Geo lookups are optional.  When no database path is configured every
//     lookup returns just the IP and the middleware still works.
//   - uasurfer parses from ~18 000 crawler signatures, so Bot is reliable
//     enough to drop bot traffic from request metrics.

package requestinfo

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"

	"github.com/saessac/soda-server/internal/cache"
)

// UA is the parsed user-agent fingerprint.
type UA struct {
	Browser string // "Chrome", "Safari", ...
	Version string // "124.0.6367", trailing ".0" trimmed
	OS      string // "macOS", "Android", ...
	Device  string // "Desktop", "Phone", "Tablet", ...
	Bot     bool
}

// Geo is the best-effort location of the client address.  CountryISO and
// City stay empty when the database has no match or is not loaded.
type Geo struct {
	IP         net.IP
	CountryISO string // "KR", "US", ...
	City       string // "Seoul", "Busan", ...
}

// Info is what the Enrich middleware stores on the request context.
type Info struct {
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

type ctxKey struct{}

// FromContext returns the Info stored by Enrich, or nil if the middleware
// has not run.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

// geoReader is a process-wide MaxMind handle.  It is read-only after
// OpenGeo, which is all geoip2 requires for concurrent use.
var geoReader *geoip2.Reader

// geoCache memoizes lookups per IP; clients hammer the API in bursts from
// the same address, so most requests hit the cache.
var geoCache = cache.New(4096)

// OpenGeo loads the GeoLite2-City database.  Call it once from main before
// serving; skipping it leaves geolocation disabled rather than broken.
func OpenGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

func parseUA(header string) UA {
	u := uasurfer.Parse(header)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	return UA{
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version: trimVersion(u.Browser.Version),
		OS:      osName,
		Device:  deviceString(u.DeviceType),
		Bot:     u.IsBot(),
	}
}

// trimVersion renders "major.minor.patch" without trailing ".0" segments.
func trimVersion(v uasurfer.Version) string {
	out := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	for strings.HasSuffix(out, ".0") {
		out = strings.TrimSuffix(out, ".0")
	}
	return out
}

func deviceString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

func lookupGeo(ip net.IP) Geo {
	if geoReader == nil || ip == nil {
		return Geo{IP: ip}
	}
	key := ip.String()
	if v, ok := geoCache.Get(key); ok {
		g := v.(Geo)
		g.IP = ip
		return g
	}
	rec, err := geoReader.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	g := Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
	geoCache.Add(key, g)
	return g
}
