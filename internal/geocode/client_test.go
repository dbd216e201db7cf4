package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tiptopassets/analysis-engine/internal/contracts"
)

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geocode" {
			t.Errorf("path = %s, want /geocode", r.URL.Path)
		}
		if got := r.URL.Query().Get("address"); got != "123 Main St, San Francisco, CA" {
			t.Errorf("address param = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"country":"US","state":"CA","city":"San Francisco","zip_code":"94105","lat":37.7749,"lng":-122.4194}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL)
	loc, err := r.Geocode(context.Background(), "123 Main St, San Francisco, CA")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	want := contracts.LocationInfo{
		Country: "US", State: "CA", City: "San Francisco", ZipCode: "94105",
		Coordinates: contracts.Coordinates{Lat: 37.7749, Lng: -122.4194},
	}
	if loc != want {
		t.Fatalf("loc = %+v, want %+v", loc, want)
	}
}

func TestGeocodeEmptyAddress(t *testing.T) {
	r := NewHTTPResolver("http://localhost:1")
	if _, err := r.Geocode(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("path = %s, want /reverse", r.URL.Path)
		}
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lng") == "" {
			t.Error("lat/lng params missing")
		}
		w.Write([]byte(`{"country":"US","state":"MN","city":"Minneapolis","lat":44.9778,"lng":-93.265}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL)
	loc, err := r.Reverse(context.Background(), contracts.Coordinates{Lat: 44.9778, Lng: -93.265})
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if loc.State != "MN" || loc.City != "Minneapolis" {
		t.Fatalf("loc = %+v", loc)
	}
}

func TestNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL)
	if _, err := r.Reverse(context.Background(), contracts.Coordinates{}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestMissingCountryRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"state":"CA"}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL)
	if _, err := r.Geocode(context.Background(), "somewhere"); err == nil {
		t.Fatal("expected error when country is missing")
	}
}
