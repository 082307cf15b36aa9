package geomath

import (
	"math"
	"testing"
)

func TestDistanceMeters_ZeroForSamePoint(t *testing.T) {
	d := DistanceMeters(14.6, 121.0, 14.6, 121.0)
	if d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistanceMeters_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude along a meridian is R * pi / 180.
	want := EarthRadiusMeters * math.Pi / 180
	got := DistanceMeters(0, 0, 1, 0)
	if math.Abs(got-want)/want > 0.001 {
		t.Errorf("expected ~%f, got %f", want, got)
	}
}

func TestDistanceMeters_KnownCityPair(t *testing.T) {
	// Manila city hall to Quezon City memorial circle, roughly 10.5 km.
	got := DistanceMeters(14.5896, 120.9811, 14.6513, 121.0494)
	if got < 9500 || got > 11500 {
		t.Errorf("expected roughly 10.5 km, got %f m", got)
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := DistanceMeters(14.6, 121.0, 14.7, 121.1)
	b := DistanceMeters(14.7, 121.1, 14.6, 121.0)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestFormatDistance_MetersBoundary(t *testing.T) {
	if s := FormatDistance(999); s != "999 m" {
		t.Errorf("expected %q, got %q", "999 m", s)
	}
	if s := FormatDistance(1000); s != "1.0 km" {
		t.Errorf("expected %q, got %q", "1.0 km", s)
	}
}

func TestFormatDistance_SmallValues(t *testing.T) {
	if s := FormatDistance(230); s != "230 m" {
		t.Errorf("expected %q, got %q", "230 m", s)
	}
	if s := FormatDistance(0); s != "0 m" {
		t.Errorf("expected %q, got %q", "0 m", s)
	}
}

func TestFormatDistance_Kilometers(t *testing.T) {
	if s := FormatDistance(1200); s != "1.2 km" {
		t.Errorf("expected %q, got %q", "1.2 km", s)
	}
	if s := FormatDistance(15000); s != "15.0 km" {
		t.Errorf("expected %q, got %q", "15.0 km", s)
	}
}

func TestValidCoordinate_InRange(t *testing.T) {
	if !ValidCoordinate(14.6, 121.0) {
		t.Error("expected valid")
	}
	if !ValidCoordinate(-90, 180) {
		t.Error("expected boundary values valid")
	}
	if !ValidCoordinate(90, -180) {
		t.Error("expected boundary values valid")
	}
}

func TestValidCoordinate_OutOfRange(t *testing.T) {
	if ValidCoordinate(91, 0) {
		t.Error("expected latitude 91 invalid")
	}
	if ValidCoordinate(0, 181) {
		t.Error("expected longitude 181 invalid")
	}
	if ValidCoordinate(-90.001, 0) {
		t.Error("expected latitude -90.001 invalid")
	}
}

func TestValidCoordinate_NonFinite(t *testing.T) {
	if ValidCoordinate(math.NaN(), 0) {
		t.Error("expected NaN latitude invalid")
	}
	if ValidCoordinate(0, math.Inf(1)) {
		t.Error("expected Inf longitude invalid")
	}
}

func TestWebMercator_Origin(t *testing.T) {
	p := WebMercator(0, 0)
	if p.X != 0 || p.Y != 0 {
		t.Errorf("expected origin, got %v", p)
	}
}

func TestWebMercator_RoundTrip(t *testing.T) {
	lat, lng := FromWebMercator(WebMercator(14.6, 121.0))
	if math.Abs(lat-14.6) > 1e-6 || math.Abs(lng-121.0) > 1e-6 {
		t.Errorf("round trip drifted: %f, %f", lat, lng)
	}
}

func TestWebMercator_HemisphereSigns(t *testing.T) {
	p := WebMercator(-30, -45)
	if p.X >= 0 || p.Y >= 0 {
		t.Errorf("expected negative X and Y, got %v", p)
	}
}
