// Package core defines the canonical domain types shared across the engine.
// Raw catalog records arrive in a loose shape (coordinates at the top level,
// nested, or missing entirely); the catalog boundary normalizes them into
// these types once, and every internal component only ever sees this schema.
package core

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UserCoordinate is the device location snapshot published by the location
// provider. AccuracyMeters is zero when the provider does not report one.
type UserCoordinate struct {
	Lat            float64
	Lng            float64
	AccuracyMeters float64
}

// Coordinate returns the position as a plain Coordinate.
func (u UserCoordinate) Coordinate() Coordinate {
	return Coordinate{Lat: u.Lat, Lng: u.Lng}
}

// Center is one blood donation center as seen by the engine. Location is nil
// when neither the catalog nor the geocoder could resolve a coordinate.
//
// Distance, DistanceText and OpenToday are derived annotations, recomputed on
// every evaluation pass. They are never authoritative.
type Center struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Address      string      `json:"address"`
	Location     *Coordinate `json:"location,omitempty"`
	Hours        string      `json:"hours"`
	Phone        string      `json:"phone"`
	BloodTypes   []string    `json:"bloodTypes"`
	Availability string      `json:"availability"`

	Distance     *float64 `json:"distance,omitempty"`
	DistanceText string   `json:"distanceText,omitempty"`
	OpenToday    bool     `json:"openToday"`
}

// RawCenter is the loose record shape returned by the catalog backend before
// normalization. Coordinates may appear as top-level Lat/Lng fields or inside
// the nested Coordinates object; top-level fields win when both are present.
type RawCenter struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Address      string      `json:"address"`
	Lat          *float64    `json:"lat,omitempty"`
	Lng          *float64    `json:"lng,omitempty"`
	Coordinates  *Coordinate `json:"coordinates,omitempty"`
	Hours        string      `json:"hours"`
	Phone        string      `json:"phone"`
	BloodTypes   []string    `json:"bloodTypes"`
	Availability string      `json:"availability"`
}

// Normalize resolves the raw record into the canonical Center shape.
// Coordinate validation is left to callers (geomath.ValidCoordinate); this
// only collapses the two possible coordinate locations into one.
func (r RawCenter) Normalize() Center {
	c := Center{
		ID:           r.ID,
		Name:         r.Name,
		Address:      r.Address,
		Hours:        r.Hours,
		Phone:        r.Phone,
		BloodTypes:   r.BloodTypes,
		Availability: r.Availability,
	}
	if r.Lat != nil && r.Lng != nil {
		c.Location = &Coordinate{Lat: *r.Lat, Lng: *r.Lng}
	} else if r.Coordinates != nil {
		loc := *r.Coordinates
		c.Location = &loc
	}
	return c
}
