// Package proximity computes the filtered, sorted, annotated center list the
// map and the result list both render.
package proximity

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/IrishLince/bloodbank-frontend-sub003/internal/geomath"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/hours"
	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

// Mode selects the distance behavior of an evaluation pass.
type Mode string

const (
	// ModeNearby keeps only centers within the strict radius of the user.
	ModeNearby Mode = "nearby"
	// ModeAll passes every center through; distance is display-only.
	ModeAll Mode = "all"
)

// DefaultRadiusMeters is the strict nearby-mode inclusion radius.
const DefaultRadiusMeters = 15000.0

// Filters are the structured list filters, applied after the mode filter.
// Empty fields match everything.
type Filters struct {
	Name         string
	Location     string
	BloodType    string
	Availability string
}

// Options configures one evaluation pass.
type Options struct {
	Mode    Mode
	Search  string
	Filters Filters
}

// Filter evaluates the catalog against a user coordinate. Zero value is not
// usable; construct with New.
type Filter struct {
	radius float64
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithRadius overrides the nearby-mode inclusion radius.
func WithRadius(meters float64) Option {
	return func(f *Filter) { f.radius = meters }
}

// WithClock overrides the time source used for open-today annotation.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) { f.now = now }
}

// New creates a Filter with the strict default radius.
func New(logger *slog.Logger, opts ...Option) *Filter {
	f := &Filter{
		radius: DefaultRadiusMeters,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Evaluate runs one full pass: distance computation, mode filter, search and
// structured filters, stable distance sort, open-today annotation. The input
// slice is not mutated; annotations land on returned copies.
//
// Nearby mode with a nil user coordinate degrades to the unfiltered catalog
// (fallback, not an error).
func (f *Filter) Evaluate(catalog []core.Center, user *core.UserCoordinate, opts Options) []core.Center {
	results := make([]core.Center, 0, len(catalog))

	if opts.Mode == ModeNearby && user == nil {
		f.logger.Warn("nearby evaluation without user coordinate, returning unfiltered catalog")
		results = append(results, catalog...)
	} else {
		for _, c := range catalog {
			annotated, hasDistance := f.annotateDistance(c, user)
			switch opts.Mode {
			case ModeNearby:
				if !hasDistance {
					// MissingCoordinate: excluded from nearby view.
					continue
				}
				if *annotated.Distance > f.radius {
					continue
				}
			default:
				// All mode never excludes by distance.
			}
			results = append(results, annotated)
		}
	}

	results = f.applyTextFilters(results, opts)

	// Stable sort keeps catalog order for ties and for entries without a
	// distance, which sort last.
	sort.SliceStable(results, func(i, j int) bool {
		di, dj := results[i].Distance, results[j].Distance
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})

	now := f.now()
	for i := range results {
		results[i].OpenToday = hours.OperatesToday(results[i].Hours, now)
	}

	return results
}

// annotateDistance attaches distance annotations when both the user and the
// center carry a usable coordinate. Invalid center coordinates are treated
// the same as missing ones, with a diagnostic trace.
func (f *Filter) annotateDistance(c core.Center, user *core.UserCoordinate) (core.Center, bool) {
	c.Distance = nil
	c.DistanceText = ""

	if user == nil || c.Location == nil {
		return c, false
	}
	if !geomath.ValidCoordinate(c.Location.Lat, c.Location.Lng) {
		f.logger.Debug("center has out-of-range coordinate, treating as missing",
			"center", c.ID, "lat", c.Location.Lat, "lng", c.Location.Lng)
		return c, false
	}

	d := geomath.DistanceMeters(user.Lat, user.Lng, c.Location.Lat, c.Location.Lng)
	c.Distance = &d
	c.DistanceText = geomath.FormatDistance(d)
	return c, true
}

func (f *Filter) applyTextFilters(in []core.Center, opts Options) []core.Center {
	out := in[:0]
	for _, c := range in {
		if !matchesSearch(c, opts.Search) {
			continue
		}
		if !matchesFilters(c, opts.Filters) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// matchesSearch is a case-insensitive substring match against name, address,
// and the blood-type list joined as one string.
func matchesSearch(c core.Center, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	haystack := strings.ToLower(c.Name + " " + c.Address + " " + strings.Join(c.BloodTypes, " "))
	return strings.Contains(haystack, term)
}

func matchesFilters(c core.Center, flt Filters) bool {
	if flt.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(flt.Name)) {
		return false
	}
	if flt.Location != "" && !strings.Contains(strings.ToLower(c.Address), strings.ToLower(flt.Location)) {
		return false
	}
	if flt.BloodType != "" {
		joined := strings.ToLower(strings.Join(c.BloodTypes, ","))
		if !strings.Contains(joined, strings.ToLower(flt.BloodType)) {
			return false
		}
	}
	if flt.Availability != "" && !strings.EqualFold(c.Availability, flt.Availability) {
		return false
	}
	return true
}
