package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/IrishLince/bloodbank-frontend-sub003/internal/dispatcher"
	"github.com/IrishLince/bloodbank-frontend-sub003/internal/proximity"
	"github.com/IrishLince/bloodbank-frontend-sub003/pkg/core"
)

// RegisterHandlers registers all view commands with the dispatcher.
func (c *Controller) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Selection kicks off a focus session - sync so the caller sees errors
	d.Register(":SELECT:CENTER:", c.handleSelectCenter, dispatcher.Logged())

	// Filter changes - sync, cheap
	d.Register(":SET:MODE:", c.handleSetMode, dispatcher.Logged())
	d.Register(":SET:SEARCH:", c.handleSetSearch)
	d.Register(":SET:FILTERS:", c.handleSetFilters)

	// Location updates can arrive at GPS rate - buffered
	d.Register(":LOCATION:UPDATE:", c.handleLocationUpdate, dispatcher.Buffered(100))

	// Catalog reload - sync so the caller sees load failures
	d.Register(":CATALOG:RELOAD:", c.handleCatalogReload, dispatcher.Logged())

	d.Register(":REFRESH:", c.handleRefresh)
}

func (c *Controller) handleSelectCenter(e dispatcher.Event) (any, error) {
	if len(e.Args) < 1 {
		return nil, fmt.Errorf("SELECT:CENTER requires a center id")
	}
	if err := c.Select(strings.TrimSpace(e.Args[0])); err != nil {
		return nil, err
	}
	return "focusing", nil
}

func (c *Controller) handleSetMode(e dispatcher.Event) (any, error) {
	if len(e.Args) < 1 {
		return nil, fmt.Errorf("SET:MODE requires a mode argument")
	}
	switch mode := proximity.Mode(strings.ToLower(strings.TrimSpace(e.Args[0]))); mode {
	case proximity.ModeNearby, proximity.ModeAll:
		c.SetMode(mode)
		return string(mode), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", e.Args[0])
	}
}

func (c *Controller) handleSetSearch(e dispatcher.Event) (any, error) {
	query := ""
	if len(e.Args) > 0 {
		query = e.Args[0]
	}
	c.SetSearch(query)
	return "ok", nil
}

// handleSetFilters expects key=value pairs: name, location, bloodType,
// availability. An empty arg list clears all filters.
func (c *Controller) handleSetFilters(e dispatcher.Event) (any, error) {
	var f proximity.Filters
	for _, arg := range e.Args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("bad filter argument %q", arg)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			f.Name = value
		case "location":
			f.Location = value
		case "bloodtype":
			f.BloodType = value
		case "availability":
			f.Availability = value
		default:
			return nil, fmt.Errorf("unknown filter %q", key)
		}
	}
	c.SetFilters(f)
	return "ok", nil
}

func (c *Controller) handleLocationUpdate(e dispatcher.Event) (any, error) {
	if len(e.Args) < 2 {
		return nil, fmt.Errorf("LOCATION:UPDATE requires lat and lng")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(e.Args[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude %q: %w", e.Args[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(e.Args[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude %q: %w", e.Args[1], err)
	}
	u := core.UserCoordinate{Lat: lat, Lng: lng}
	if len(e.Args) > 2 {
		if acc, err := strconv.ParseFloat(strings.TrimSpace(e.Args[2]), 64); err == nil {
			u.AccuracyMeters = acc
		}
	}
	c.UpdateLocation(u)
	return "ok", nil
}

func (c *Controller) handleCatalogReload(e dispatcher.Event) (any, error) {
	if err := c.ReloadCatalog(); err != nil {
		return nil, err
	}
	return fmt.Sprintf("%d centers", len(c.Results())), nil
}

func (c *Controller) handleRefresh(e dispatcher.Event) (any, error) {
	c.ForceRefresh()
	return "ok", nil
}
