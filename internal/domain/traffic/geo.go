package traffic

import (
	"fmt"
	"math"
)

// CenterMatchTolerance is the per-axis slack, in degrees, allowed when
// re-identifying a center from a marker's coordinates (about 1.1m at the equator).
const CenterMatchTolerance = 0.00001

// Coordinate is a caller-supplied point. Out-of-range values are accepted and
// simply match nothing.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the inclusive box a stored center must fall in to match.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) {
		return fmt.Errorf("%w: lat must be a finite number", ErrInvalidInput)
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return fmt.Errorf("%w: lng must be a finite number", ErrInvalidInput)
	}
	return nil
}

func (c Coordinate) Bounds() Bounds {
	return Bounds{
		MinLat: c.Lat - CenterMatchTolerance,
		MaxLat: c.Lat + CenterMatchTolerance,
		MinLng: c.Lng - CenterMatchTolerance,
		MaxLng: c.Lng + CenterMatchTolerance,
	}
}

// Matches reports whether a center stored at (lat, lng) matches c.
func (c Coordinate) Matches(lat, lng float64) bool {
	b := c.Bounds()
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}
