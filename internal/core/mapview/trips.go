package mapview

import "github.com/samirrijal/citrusfield/internal/core/domain"

// TripSpan is the timestamp of the last point of every trip.
const TripSpan = 100.0

// Trips maps each line onto a Trip whose timestamps run from 0 to TripSpan.
func Trips(lines []domain.LineFeature) []domain.Trip {
	trips := make([]domain.Trip, 0, len(lines))
	for _, l := range lines {
		path := make([][2]float64, len(l.Coordinates))
		for i, p := range l.Coordinates {
			path[i] = [2]float64(p)
		}
		trips = append(trips, domain.Trip{
			Path:       path,
			Timestamps: Timestamps(len(path)),
		})
	}
	return trips
}

// Timestamps returns n evenly spaced values over [0, TripSpan].
// A single point gets timestamp 0.
func Timestamps(n int) []float64 {
	ts := make([]float64, n)
	if n < 2 {
		return ts
	}
	last := float64(n - 1)
	for i := range ts {
		ts[i] = (float64(i) / last) * TripSpan
	}
	return ts
}
