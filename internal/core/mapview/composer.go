package mapview

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/citrusfield/internal/core/domain"
)

// Mode selects the base map.
type Mode string

const (
	ModeSatellite Mode = "satellite"
	ModeStandard  Mode = "standard"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeSatellite || m == ModeStandard
}

// LayerType names the renderer layer class.
type LayerType string

const (
	LayerScenegraph LayerType = "ScenegraphLayer"
	LayerText       LayerType = "TextLayer"
	LayerGeoJSON    LayerType = "GeoJsonLayer"
	LayerPath       LayerType = "PathLayer"
	LayerTrips      LayerType = "TripsLayer"
	LayerScatter    LayerType = "ScatterplotLayer"
)

// Group orders layers: every static layer paints below every dynamic one.
type Group string

const (
	GroupStatic  Group = "static"
	GroupDynamic Group = "dynamic"
)

// Layer IDs, one per logical role.
const (
	LayerIDTrees         = "farmland-trees"
	LayerIDInfoLabels    = "info-labels"
	LayerIDSelectedLand  = "selected-land-polygon"
	LayerIDRouteBase     = "route-base"
	LayerIDRoutePulse    = "route-pulse"
	LayerIDRoutePoints   = "route-points-base"
	LayerIDRouteLabels   = "route-labels"
	LayerIDRouteInfoText = "route-info-text"
)

const (
	treeModelURL     = "/models/orange_tree.glb"
	treeAltitude     = 25.0
	selectedScale    = 1.5
	fontFamily       = `"Pretendard", "Malgun Gothic", "Apple SD Gothic Neo", sans-serif`
	unknownPlace     = "알 수 없는 곳"
	startLabel       = "출발"
	endLabel         = "도착"
	pulseTrailLength = 30
)

// Layer is one renderable layer descriptor.
type Layer struct {
	ID    string         `json:"id"`
	Type  LayerType      `json:"type"`
	Group Group          `json:"group"`
	Data  any            `json:"data"`
	Props map[string]any `json:"props,omitempty"`
}

// Scene is everything the composer reads. Compose never modifies it.
type Scene struct {
	Entities       []domain.MapEntity
	SelectedID     string
	Mode           Mode
	SelectedParcel *geojson.Feature
	Route          *domain.FeatureCollection
	Start          *domain.Coordinates
	End            *domain.Coordinates
	Time           float64
}

// TreeMarker places one tree model on an entity.
type TreeMarker struct {
	ID          string     `json:"id"`
	Position    [3]float64 `json:"position"`
	Orientation [3]float64 `json:"orientation"`
	Scale       [3]float64 `json:"scale"`
}

// TextDatum is a positioned label.
type TextDatum struct {
	ID              string     `json:"id,omitempty"`
	Position        [2]float64 `json:"position"`
	Text            string     `json:"text"`
	BackgroundColor []int      `json:"backgroundColor,omitempty"`
}

// PathDatum is one route segment.
type PathDatum struct {
	Path       [][2]float64          `json:"path"`
	Properties domain.LineProperties `json:"properties"`
}

// Endpoint is the route start or end marker.
type Endpoint struct {
	Position  [2]float64 `json:"position"`
	Type      string     `json:"type"`
	Label     string     `json:"label"`
	FillColor []int      `json:"fillColor"`
}

// Compose builds the ordered layer list for a scene: entity trees and labels,
// the selected parcel, then the route line, pulse, endpoints and summary text.
func Compose(s Scene) []Layer {
	layers := staticLayers(s)
	return append(layers, dynamicLayers(s)...)
}

func staticLayers(s Scene) []Layer {
	trees := make([]TreeMarker, 0, len(s.Entities))
	labels := make([]TextDatum, 0, len(s.Entities))
	for _, e := range s.Entities {
		scale := 1.0
		if e.ID == s.SelectedID {
			scale = selectedScale
		}
		trees = append(trees, TreeMarker{
			ID:          e.ID,
			Position:    [3]float64{e.Coordinates.Lng, e.Coordinates.Lat, treeAltitude},
			Orientation: [3]float64{0, yaw(e.ID), 90},
			Scale:       [3]float64{scale, scale, scale},
		})

		address := e.Address
		if address == "" {
			address = unknownPlace
		}
		labels = append(labels, TextDatum{
			ID:       e.ID,
			Position: e.Coordinates.LngLat(),
			Text:     fmt.Sprintf("%s\n🌲 %d본", address, treeCount(e)),
		})
	}

	layers := []Layer{
		{
			ID:    LayerIDTrees,
			Type:  LayerScenegraph,
			Group: GroupStatic,
			Data:  trees,
			Props: map[string]any{
				"pickable":   true,
				"scenegraph": treeModelURL,
				"sizeScale":  20,
				"_lighting":  "pbr",
			},
		},
		{
			ID:    LayerIDInfoLabels,
			Type:  LayerText,
			Group: GroupStatic,
			Data:  labels,
			Props: map[string]any{
				"pickable":          true,
				"getSize":           14,
				"getColor":          []int{255, 255, 255},
				"getPixelOffset":    []int{0, 50},
				"background":        true,
				"backgroundColor":   []int{0, 0, 0, 160},
				"backgroundPadding": []int{8, 4},
				"fontFamily":        fontFamily,
				"fontWeight":        700,
				"characterSet":      "auto",
				"billboard":         true,
			},
		},
	}

	if s.SelectedParcel != nil {
		fill, line := []int{245, 219, 127, 20}, []int{245, 219, 127, 255}
		if s.Mode == ModeStandard {
			fill, line = []int{0, 219, 127, 20}, []int{0, 219, 127, 255}
		}
		layers = append(layers, Layer{
			ID:    LayerIDSelectedLand,
			Type:  LayerGeoJSON,
			Group: GroupStatic,
			Data:  s.SelectedParcel,
			Props: map[string]any{
				"pickable":           true,
				"stroked":            true,
				"filled":             true,
				"extruded":           false,
				"getFillColor":       fill,
				"getLineColor":       line,
				"getLineWidth":       2,
				"lineWidthMinPixels": 2,
				"lineJointRounded":   true,
				"lineCapRounded":     true,
				"depthTest":          false,
			},
		})
	}
	return layers
}

func dynamicLayers(s Scene) []Layer {
	var layers []Layer

	var features []domain.Feature
	if s.Route != nil {
		features = s.Route.Features
	}
	_, lines := Classify(features)
	trips := Trips(lines)

	if len(trips) > 0 {
		paths := make([]PathDatum, len(lines))
		for i, l := range lines {
			paths[i] = PathDatum{Path: trips[i].Path, Properties: l.Properties}
		}
		layers = append(layers,
			Layer{
				ID:    LayerIDRouteBase,
				Type:  LayerPath,
				Group: GroupDynamic,
				Data:  paths,
				Props: map[string]any{
					"getColor":       []int{245, 73, 39},
					"getWidth":       10,
					"widthMinPixels": 2,
					"capRounded":     true,
					"jointRounded":   true,
				},
			},
			Layer{
				ID:    LayerIDRoutePulse,
				Type:  LayerTrips,
				Group: GroupDynamic,
				Data:  trips,
				Props: map[string]any{
					"getColor":       []int{0, 0, 0},
					"opacity":        1,
					"widthMinPixels": 5,
					"rounded":        true,
					"trailLength":    pulseTrailLength,
					"currentTime":    s.Time,
					"shadowEnabled":  false,
					"blendFunc":      []string{"ONE", "ONE"},
				},
			},
		)
	}

	var points []Endpoint
	if s.Start != nil {
		points = append(points, Endpoint{Position: s.Start.LngLat(), Type: "start", Label: startLabel, FillColor: []int{34, 197, 94}})
	}
	if s.End != nil {
		points = append(points, Endpoint{Position: s.End.LngLat(), Type: "end", Label: endLabel, FillColor: []int{239, 68, 68}})
	}
	if len(points) > 0 {
		labels := make([]TextDatum, len(points))
		for i, p := range points {
			bg := append([]int{}, p.FillColor...)
			labels[i] = TextDatum{Position: p.Position, Text: p.Label, BackgroundColor: append(bg, 200)}
		}
		layers = append(layers,
			Layer{
				ID:    LayerIDRoutePoints,
				Type:  LayerScatter,
				Group: GroupDynamic,
				Data:  points,
				Props: map[string]any{
					"getRadius":       8,
					"radiusMinPixels": 8,
					"stroked":         true,
					"getLineColor":    []int{255, 255, 255},
					"getLineWidth":    2,
				},
			},
			Layer{
				ID:    LayerIDRouteLabels,
				Type:  LayerText,
				Group: GroupDynamic,
				Data:  labels,
				Props: map[string]any{
					"getSize":           14,
					"getColor":          []int{255, 255, 255},
					"getPixelOffset":    []int{0, -28},
					"background":        true,
					"backgroundPadding": []int{8, 4},
					"billboard":         true,
					"fontFamily":        fontFamily,
					"fontWeight":        700,
					"characterSet":      "auto",
				},
			},
		)
	}

	if summary, ok := Summary(features); ok && s.End != nil {
		layers = append(layers, Layer{
			ID:    LayerIDRouteInfoText,
			Type:  LayerText,
			Group: GroupDynamic,
			Data: []TextDatum{{
				Position: s.End.LngLat(),
				Text:     SummaryText(summary),
			}},
			Props: map[string]any{
				"getSize":           20,
				"getColor":          []int{255, 255, 255},
				"getPixelOffset":    []int{0, -60},
				"background":        true,
				"backgroundColor":   []int{0, 0, 0, 200},
				"backgroundPadding": []int{8, 4},
				"fontFamily":        fontFamily,
				"fontWeight":        800,
				"characterSet":      "auto",
			},
		})
	}
	return layers
}

// SummaryText formats route totals as "12.3km | 17분".
func SummaryText(s domain.RouteSummary) string {
	return fmt.Sprintf("%.1fkm | %d분", s.TotalDistance/1000, int(math.Round(s.TotalTime/60)))
}

// yaw gives every entity a fixed heading so trees do not spin between frames.
func yaw(id string) float64 {
	return float64(hash(id) % 360)
}

// treeCount falls back to a stable 50..99 when the entity has no recorded trees.
func treeCount(e domain.MapEntity) int {
	if e.TreeCount > 0 {
		return e.TreeCount
	}
	return 50 + int(hash(e.ID)%50)
}

func hash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
