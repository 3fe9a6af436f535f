package geospatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// ErrInvalidRing is returned for a boundary that is not a closed ring.
var ErrInvalidRing = errors.New("invalid ring")

// Ring converts [lng, lat] positions into a closed ring. The first and last
// positions must be equal and the ring needs at least four positions.
func Ring(positions [][]float64) (orb.Ring, error) {
	if len(positions) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 positions, got %d", ErrInvalidRing, len(positions))
	}
	ring := make(orb.Ring, len(positions))
	for i, p := range positions {
		if len(p) != 2 {
			return nil, fmt.Errorf("%w: position %d has %d values", ErrInvalidRing, i, len(p))
		}
		lng, lat := p[0], p[1]
		if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
			return nil, fmt.Errorf("%w: position %d out of range", ErrInvalidRing, i)
		}
		ring[i] = orb.Point{lng, lat}
	}
	if !ring.Closed() {
		return nil, fmt.Errorf("%w: first and last positions differ", ErrInvalidRing)
	}
	return ring, nil
}

// Area returns the geodesic area of the ring in square meters, rounded.
func Area(ring orb.Ring) float64 {
	return math.Round(math.Abs(geo.Area(ring)))
}

// Contains reports whether the point lies inside the ring.
func Contains(ring orb.Ring, lng, lat float64) bool {
	return planar.RingContains(ring, orb.Point{lng, lat})
}
