package catalog

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(zerolog.Nop())
	db, err := m.GetSqliteDB("")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	m.DB = db
	m.IsValid = true
	if err := m.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return m
}

func f64(v float64) *float64 { return &v }

func TestManager_ReplaceAndReadAll(t *testing.T) {
	m := newTestManager(t)

	raw := []core.RawCenter{
		{
			ID:           "prc-manila",
			Name:         "PRC Manila Blood Center",
			Address:      "Taft Avenue, Manila",
			Lat:          f64(14.5831),
			Lng:          f64(120.9842),
			Hours:        "Mon-Sat 8:00 - 17:00",
			Phone:        "+63 2 8527 0000",
			BloodTypes:   []string{"A+", "O+", "O-"},
			Availability: "High",
		},
		{
			ID:          "qc-nested",
			Name:        "QC Satellite",
			Coordinates: &core.Coordinate{Lat: 14.6760, Lng: 121.0437},
		},
		{
			ID:   "no-coord",
			Name: "Unmapped Branch",
		},
	}
	if err := m.Replace(raw); err != nil {
		t.Fatalf("replace: %v", err)
	}

	centers, err := m.ReadAll()
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(centers) != 3 {
		t.Fatalf("got %d centers, want 3", len(centers))
	}

	byID := make(map[string]core.Center)
	for _, c := range centers {
		byID[c.ID] = c
	}

	manila := byID["prc-manila"]
	if manila.Location == nil || manila.Location.Lat != 14.5831 || manila.Location.Lng != 120.9842 {
		t.Errorf("manila location = %+v, want top-level coordinates", manila.Location)
	}
	if len(manila.BloodTypes) != 3 || manila.BloodTypes[0] != "A+" {
		t.Errorf("manila blood types = %v, want round-tripped list", manila.BloodTypes)
	}
	if manila.Hours != "Mon-Sat 8:00 - 17:00" {
		t.Errorf("manila hours = %q", manila.Hours)
	}

	nested := byID["qc-nested"]
	if nested.Location == nil || nested.Location.Lat != 14.6760 {
		t.Errorf("nested coordinates were not normalized: %+v", nested.Location)
	}

	if byID["no-coord"].Location != nil {
		t.Error("center without coordinates must normalize to nil location")
	}
}

func TestManager_TopLevelCoordinatesWin(t *testing.T) {
	m := newTestManager(t)

	raw := []core.RawCenter{{
		ID:          "both",
		Name:        "Both Shapes",
		Lat:         f64(14.10),
		Lng:         f64(121.10),
		Coordinates: &core.Coordinate{Lat: 99.0, Lng: 99.0},
	}}
	if err := m.Replace(raw); err != nil {
		t.Fatalf("replace: %v", err)
	}

	centers, err := m.ReadAll()
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if centers[0].Location == nil || centers[0].Location.Lat != 14.10 {
		t.Errorf("location = %+v, want top-level fields to win", centers[0].Location)
	}
}

func TestManager_ReplaceDropsPrevious(t *testing.T) {
	m := newTestManager(t)

	if err := m.Replace([]core.RawCenter{{ID: "old", Name: "Old"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := m.Replace([]core.RawCenter{{ID: "new", Name: "New"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	n, err := m.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	centers, _ := m.ReadAll()
	if len(centers) != 1 || centers[0].ID != "new" {
		t.Errorf("catalog = %+v, want only the new record", centers)
	}
}

func TestManager_EmptyReplace(t *testing.T) {
	m := newTestManager(t)

	if err := m.Replace([]core.RawCenter{{ID: "a", Name: "A"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := m.Replace(nil); err != nil {
		t.Fatalf("empty replace: %v", err)
	}
	n, err := m.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}
