package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func runLocale(t *testing.T, lookup CountryLookup, prep func(*http.Request)) (locale, country string) {
	t.Helper()
	handler := Locale("en-IN", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if prep != nil {
		prep(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return locale, country
}

func TestLocaleFromHeaders(t *testing.T) {
	cases := []struct {
		name string
		prep func(*http.Request)
		want string
	}{
		{"explicit X-Locale wins", func(r *http.Request) {
			r.Header.Set("X-Locale", "hi-IN")
			r.Header.Set("Accept-Language", "en-US")
		}, "hi-IN"},
		{"accept-language hindi", func(r *http.Request) {
			r.Header.Set("Accept-Language", "hi-IN,hi;q=0.9,en;q=0.5")
		}, "hi-IN"},
		{"accept-language english variant", func(r *http.Request) {
			r.Header.Set("Accept-Language", "en-GB,en;q=0.8")
		}, "en-IN"},
		{"garbage header falls back", func(r *http.Request) {
			r.Header.Set("Accept-Language", ";;;")
		}, "en-IN"},
		{"no hints", nil, "en-IN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			locale, _ := runLocale(t, nil, tc.prep)
			if locale != tc.want {
				t.Fatalf("locale = %q, want %q", locale, tc.want)
			}
		})
	}
}

func TestLocaleCountryFallback(t *testing.T) {
	// Domestic visitors without language hints default to Hindi.
	locale, country := runLocale(t, nil, func(r *http.Request) {
		r.Header.Set("CF-IPCountry", "in")
	})
	if locale != "hi-IN" {
		t.Fatalf("locale = %q, want hi-IN", locale)
	}
	if country != "IN" {
		t.Fatalf("country = %q, want IN", country)
	}

	locale, country = runLocale(t, nil, func(r *http.Request) {
		r.Header.Set("X-Country-Code", "FR")
	})
	if locale != "en-IN" {
		t.Fatalf("locale = %q, want en-IN", locale)
	}
	if country != "FR" {
		t.Fatalf("country = %q, want FR", country)
	}
}

func TestLocaleGeoIPLookup(t *testing.T) {
	lookup := func(ip string) (string, error) {
		if ip == "203.0.113.7" {
			return "IN", nil
		}
		return "", errors.New("not found")
	}

	locale, country := runLocale(t, lookup, func(r *http.Request) {
		r.RemoteAddr = "203.0.113.7:51234"
	})
	if locale != "hi-IN" || country != "IN" {
		t.Fatalf("locale/country = %q/%q, want hi-IN/IN", locale, country)
	}

	// Lookup failure falls back silently.
	locale, country = runLocale(t, lookup, func(r *http.Request) {
		r.RemoteAddr = "198.51.100.1:443"
	})
	if locale != "en-IN" || country != "" {
		t.Fatalf("locale/country = %q/%q, want en-IN/ empty", locale, country)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name string
		prep func(*http.Request)
		want string
	}{
		{"forwarded header first hop", func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		}, "203.0.113.9"},
		{"remote addr with port", func(r *http.Request) {
			r.RemoteAddr = "192.0.2.4:8443"
		}, "192.0.2.4"},
		{"remote addr without port", func(r *http.Request) {
			r.RemoteAddr = "192.0.2.4"
		}, "192.0.2.4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.prep(req)
			if got := ClientIP(req); got != tc.want {
				t.Fatalf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
