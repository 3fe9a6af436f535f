package mapview

import "github.com/samirrijal/citrusfield/internal/core/domain"

// SummaryPointType marks the point that carries the route totals.
const SummaryPointType = "S"

// Summary returns the totals of the first start point in features.
// ok is false when the response has no such point.
func Summary(features []domain.Feature) (summary domain.RouteSummary, ok bool) {
	points, _ := Classify(features)
	for _, p := range points {
		if p.Properties.PointType != SummaryPointType {
			continue
		}
		return domain.RouteSummary{
			TotalDistance: float64(p.Properties.TotalDistance),
			TotalTime:     float64(p.Properties.TotalTime),
			TotalFare:     float64(p.Properties.TotalFare),
			TaxiFare:      float64(p.Properties.TaxiFare),
		}, true
	}
	return domain.RouteSummary{}, false
}
