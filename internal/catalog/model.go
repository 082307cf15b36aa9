package catalog

import (
	"encoding/json"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

// Center is the persisted form of a donation center. Location is stored as
// WKB in EPSG:4326 with X=longitude, Y=latitude; HasLocation distinguishes
// a genuinely absent coordinate from a zero point.
type Center struct {
	ID           string         `json:"id" gorm:"primarykey"`
	Name         string         `json:"name"`
	Address      string         `json:"address"`
	Location     geom.Point     `json:"location"`
	HasLocation  bool           `json:"hasLocation"`
	Hours        string         `json:"hours"`
	Phone        string         `json:"phone"`
	BloodTypes   datatypes.JSON `json:"bloodTypes"`
	Availability string         `json:"availability"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// DatabaseModels lists every table in the schema.
var DatabaseModels = []interface{}{
	&Center{},
}

// FromRaw normalizes an upstream record into its persisted form.
func FromRaw(raw core.RawCenter) Center {
	c := raw.Normalize()
	return FromCore(c)
}

// FromCore converts a domain center into its persisted form.
func FromCore(c core.Center) Center {
	rec := Center{
		ID:           c.ID,
		Name:         c.Name,
		Address:      c.Address,
		Hours:        c.Hours,
		Phone:        c.Phone,
		Availability: c.Availability,
	}
	if c.Location != nil {
		rec.Location = geom.NewPoint(geom.Coordinates{
			XY: geom.XY{X: c.Location.Lng, Y: c.Location.Lat},
		})
		rec.HasLocation = true
	}
	if len(c.BloodTypes) > 0 {
		if b, err := json.Marshal(c.BloodTypes); err == nil {
			rec.BloodTypes = datatypes.JSON(b)
		}
	}
	return rec
}

// ToCore converts a persisted record back into the domain form.
func (c Center) ToCore() core.Center {
	out := core.Center{
		ID:           c.ID,
		Name:         c.Name,
		Address:      c.Address,
		Hours:        c.Hours,
		Phone:        c.Phone,
		Availability: c.Availability,
	}
	if c.HasLocation {
		if xy, ok := c.Location.XY(); ok {
			out.Location = &core.Coordinate{Lat: xy.Y, Lng: xy.X}
		}
	}
	if len(c.BloodTypes) > 0 {
		var types []string
		if err := json.Unmarshal(c.BloodTypes, &types); err == nil {
			out.BloodTypes = types
		}
	}
	return out
}
