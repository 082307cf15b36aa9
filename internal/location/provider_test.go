package location

import (
	"testing"

	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

func TestStatic_InitialState(t *testing.T) {
	p := NewStatic()
	defer p.Close()

	if p.Current() != nil {
		t.Error("expected no coordinate before Set")
	}
	if p.Permission() != PermissionUnknown {
		t.Errorf("permission = %v, want unknown", p.Permission())
	}
}

func TestStatic_SetGrantsAndPublishes(t *testing.T) {
	p := NewStatic()
	defer p.Close()

	p.Set(core.UserCoordinate{Lat: 14.60, Lng: 121.00, AccuracyMeters: 12})

	cur := p.Current()
	if cur == nil || cur.Lat != 14.60 || cur.Lng != 121.00 {
		t.Fatalf("current = %+v, want the set coordinate", cur)
	}
	if p.Permission() != PermissionGranted {
		t.Errorf("permission = %v, want granted", p.Permission())
	}

	select {
	case got := <-p.Updates().Receive():
		if got.Lat != 14.60 {
			t.Errorf("update lat = %f, want 14.60", got.Lat)
		}
	default:
		t.Fatal("expected a buffered update")
	}
}

func TestStatic_DenyClearsCoordinate(t *testing.T) {
	p := NewStatic()
	defer p.Close()

	p.Set(core.UserCoordinate{Lat: 14.60, Lng: 121.00})
	p.Deny()

	if p.Current() != nil {
		t.Error("denied provider must not report a coordinate")
	}
	if p.Permission() != PermissionDenied {
		t.Errorf("permission = %v, want denied", p.Permission())
	}
}

func TestStatic_SlowConsumerDoesNotBlock(t *testing.T) {
	p := NewStatic()
	defer p.Close()

	// Overflow the update buffer; Set must never block.
	for i := 0; i < 64; i++ {
		p.Set(core.UserCoordinate{Lat: 14.0 + float64(i)*0.01, Lng: 121.00})
	}
	cur := p.Current()
	if cur == nil || cur.Lat != 14.0+63*0.01 {
		t.Errorf("current should reflect the latest Set, got %+v", cur)
	}
}

func TestStatic_CurrentReturnsCopy(t *testing.T) {
	p := NewStatic()
	defer p.Close()

	p.Set(core.UserCoordinate{Lat: 14.60, Lng: 121.00})
	c := p.Current()
	c.Lat = 0
	if p.Current().Lat != 14.60 {
		t.Error("mutating the returned coordinate must not affect the provider")
	}
}
