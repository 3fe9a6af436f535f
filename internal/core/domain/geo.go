package domain

// Coordinates is a WGS 84 location as stored on records.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" yaml:"lng" validate:"gte=-180,lte=180"`
}

// LngLat returns the position in GeoJSON axis order.
func (c Coordinates) LngLat() [2]float64 {
	return [2]float64{c.Lng, c.Lat}
}

// MapEntity is the map-facing projection of a survey, land change or civil request.
type MapEntity struct {
	ID          string      `json:"id"`
	Coordinates Coordinates `json:"coordinates"`
	Boundary    [][]float64 `json:"boundary,omitempty"`
	Area        float64     `json:"area,omitempty"`
	Status      string      `json:"status,omitempty"`
	Type        string      `json:"type,omitempty"`
	Address     string      `json:"address,omitempty"`
	TreeCount   int         `json:"treeCount,omitempty"`
}

// Trip is a path annotated with per-point normalized timestamps in [0, 100].
type Trip struct {
	Path       [][2]float64 `json:"path"`
	Timestamps []float64    `json:"timestamps"`
}

// RouteSummary holds the aggregate metrics of a predicted route.
type RouteSummary struct {
	TotalDistance float64 `json:"totalDistance"` // meters
	TotalTime     float64 `json:"totalTime"`     // seconds
	TotalFare     float64 `json:"totalFare,omitempty"`
	TaxiFare      float64 `json:"taxiFare,omitempty"`
}
