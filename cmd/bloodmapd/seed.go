package main

import (
	"context"
	"time"

	"github.com/spf13/viper"

	"github.com/IrishLince/bloodbank-frontend-sub003/internal/geocode"
	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

func f64(v float64) *float64 { return &v }

// sampleCenters is a small Metro Manila catalog. The shapes are deliberately
// mixed: top-level coordinates, nested coordinates and address-only records,
// which exercises the normalization and geocoding paths end to end.
var sampleCenters = []core.RawCenter{
	{
		ID:           "prc-manila",
		Name:         "Philippine Red Cross - National Blood Center",
		Address:      "37 EDSA corner Boni Avenue, Mandaluyong City",
		Lat:          f64(14.5743),
		Lng:          f64(121.0293),
		Hours:        "Mon-Sat 8:00 AM - 5:00 PM",
		Phone:        "(02) 8790-2300",
		BloodTypes:   []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"},
		Availability: "High",
	},
	{
		ID:           "prc-quezon",
		Name:         "Philippine Red Cross - Quezon City Chapter",
		Address:      "Quezon Memorial Circle, Elliptical Road, Quezon City",
		Coordinates:  &core.Coordinate{Lat: 14.6515, Lng: 121.0493},
		Hours:        "Mon-Fri 9:00 AM - 4:00 PM",
		Phone:        "(02) 8925-5453",
		BloodTypes:   []string{"A+", "B+", "O+", "O-"},
		Availability: "Medium",
	},
	{
		ID:           "pgh-blood-bank",
		Name:         "Philippine General Hospital Blood Bank",
		Address:      "Taft Avenue, Ermita, Manila",
		Lat:          f64(14.5794),
		Lng:          f64(120.9847),
		Hours:        "Daily 24 hours",
		Phone:        "(02) 8554-8400",
		BloodTypes:   []string{"A+", "B+", "AB+", "O+"},
		Availability: "High",
	},
	{
		ID:           "stluke-qc",
		Name:         "St. Luke's Medical Center Blood Bank",
		Address:      "279 E Rodriguez Sr. Avenue, Quezon City",
		Coordinates:  &core.Coordinate{Lat: 14.6222, Lng: 121.0225},
		Hours:        "Mon-Sun 7:00 AM - 7:00 PM",
		Phone:        "(02) 8723-0101",
		BloodTypes:   []string{"A+", "A-", "O+", "AB+"},
		Availability: "Low",
	},
	{
		// no coordinates on purpose, resolved by the geocoder when reachable
		ID:           "makati-med",
		Name:         "Makati Medical Center Blood Bank",
		Address:      "2 Amorsolo Street, Legazpi Village, Makati City",
		Hours:        "Mon-Fri 8:00 AM - 6:00 PM",
		Phone:        "(02) 8888-8999",
		BloodTypes:   []string{"B+", "B-", "O+"},
		Availability: "Medium",
	},
	{
		ID:           "muntinlupa-prc",
		Name:         "Philippine Red Cross - Muntinlupa Chapter",
		Address:      "National Road, Putatan, Muntinlupa City",
		Lat:          f64(14.3930),
		Lng:          f64(121.0410),
		Hours:        "Tue-Sun 8:00 AM - 5:00 PM",
		Phone:        "(02) 8862-2597",
		BloodTypes:   []string{"A+", "O+", "O-"},
		Availability: "Medium",
	},
}

// seedCatalog writes the sample catalog into the database, geocoding any
// record that has an address but no coordinates.
func seedCatalog() error {
	raws := make([]core.RawCenter, len(sampleCenters))
	copy(raws, sampleCenters)

	centers := make([]core.Center, len(raws))
	for i, r := range raws {
		centers[i] = r.Normalize()
	}

	client := geocode.New(
		viper.GetString("geocode.baseUrl"),
		viper.GetString("geocode.userAgent"),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	resolved := client.Backfill(ctx, centers)
	if resolved > 0 {
		Logger.Info("geocoded centers", "resolved", resolved)
	}

	// fold resolved coordinates back into the raw records
	for i := range raws {
		if raws[i].Lat == nil && raws[i].Coordinates == nil && centers[i].Location != nil {
			loc := *centers[i].Location
			raws[i].Coordinates = &loc
		}
	}

	if err := CatalogManager.Replace(raws); err != nil {
		return err
	}
	count, err := CatalogManager.Count()
	if err != nil {
		return err
	}
	Logger.Info("catalog seeded", "centers", count)
	return nil
}
