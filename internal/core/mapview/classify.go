package mapview

import "github.com/samirrijal/citrusfield/internal/core/domain"

// Classify splits features into points and lines, keeping their relative order.
// Any other geometry kind is dropped.
func Classify(features []domain.Feature) (points []domain.PointFeature, lines []domain.LineFeature) {
	for _, f := range features {
		switch v := f.(type) {
		case domain.PointFeature:
			points = append(points, v)
		case *domain.PointFeature:
			if v != nil {
				points = append(points, *v)
			}
		case domain.LineFeature:
			lines = append(lines, v)
		case *domain.LineFeature:
			if v != nil {
				lines = append(lines, *v)
			}
		}
	}
	return points, lines
}
