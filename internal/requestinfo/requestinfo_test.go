// internal/requestinfo/requestinfo_test.go

package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avct/uasurfer"
)

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:55555"
	r.Header.Set("X-Forwarded-For", "garbage, 203.0.113.7, 10.0.0.1")

	ip := clientIP(r)
	if ip == nil || ip.String() != "203.0.113.7" {
		t.Fatalf("clientIP = %v, want 203.0.113.7", ip)
	}
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.9:1234"

	ip := clientIP(r)
	if ip == nil || ip.String() != "192.0.2.9" {
		t.Fatalf("clientIP = %v, want 192.0.2.9", ip)
	}
}

func TestEnrichStoresInfo(t *testing.T) {
	var got *Info
	h := Enrich(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/topics", nil)
	r.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatal("Info missing from context")
	}
	if got.UA.Browser != "Chrome" || got.UA.Device != "Desktop" {
		t.Fatalf("UA = %+v", got.UA)
	}
	if got.UA.Bot {
		t.Fatal("desktop Chrome flagged as bot")
	}
}

func TestTrimVersion(t *testing.T) {
	cases := []struct {
		major, minor, patch int
		want                string
	}{
		{124, 0, 0, "124"},
		{14, 5, 0, "14.5"},
		{1, 2, 3, "1.2.3"},
		{0, 0, 0, "0"},
	}
	for _, c := range cases {
		got := trimVersion(uasurfer.Version{Major: c.major, Minor: c.minor, Patch: c.patch})
		if got != c.want {
			t.Errorf("trimVersion(%d.%d.%d) = %q, want %q", c.major, c.minor, c.patch, got, c.want)
		}
	}
}
