package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

func TestClient_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "Taft Avenue, Manila" {
			t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
		}
		if r.Header.Get("User-Agent") != "bloodmap-test" {
			t.Errorf("missing identifying user agent, got %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"14.5831","lon":"120.9842","display_name":"Taft Ave"}]`))
	}))
	defer server.Close()

	c := New(server.URL, "bloodmap-test")
	coord, err := c.Resolve(context.Background(), "Taft Avenue, Manila")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if coord.Lat != 14.5831 || coord.Lng != 120.9842 {
		t.Errorf("coord = %+v, want (14.5831, 120.9842)", coord)
	}
}

func TestClient_ResolveNoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(server.URL, "bloodmap-test")
	_, err := c.Resolve(context.Background(), "Nowhere Street")
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestClient_ResolveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New(server.URL, "bloodmap-test")
	if _, err := c.Resolve(context.Background(), "Taft Avenue"); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestClient_ResolveOutOfRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"123.0","lon":"500.0"}]`))
	}))
	defer server.Close()

	c := New(server.URL, "bloodmap-test")
	if _, err := c.Resolve(context.Background(), "Bad Place"); err == nil {
		t.Fatal("expected error for out-of-range coordinate")
	}
}

func TestClient_Backfill(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "Known Address":
			w.Write([]byte(`[{"lat":"14.60","lon":"121.00"}]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	centers := []core.Center{
		{ID: "has", Location: &core.Coordinate{Lat: 14.0, Lng: 121.0}, Address: "Known Address"},
		{ID: "needs", Address: "Known Address"},
		{ID: "unknown", Address: "Unknown Address"},
		{ID: "blank"},
	}

	c := New(server.URL, "bloodmap-test")
	resolved := c.Backfill(context.Background(), centers)
	if resolved != 1 {
		t.Errorf("resolved = %d, want 1", resolved)
	}
	if centers[0].Location.Lat != 14.0 {
		t.Error("existing coordinate must not be overwritten")
	}
	if centers[1].Location == nil || centers[1].Location.Lat != 14.60 {
		t.Errorf("missing coordinate should be backfilled, got %+v", centers[1].Location)
	}
	if centers[2].Location != nil || centers[3].Location != nil {
		t.Error("unresolvable centers must stay unlocated")
	}
}
