package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeometryKind is the GeoJSON geometry type of a feature.
type GeometryKind string

const (
	GeometryPoint      GeometryKind = "Point"
	GeometryLineString GeometryKind = "LineString"
)

// Feature is a route feature. It is one of PointFeature, LineFeature or OtherFeature.
type Feature interface {
	Kind() GeometryKind
	isFeature()
}

// PointProperties are the properties TMAP attaches to guidance points.
// The point with PointType "S" carries the totals of the whole route.
type PointProperties struct {
	Index         int       `json:"index"`
	PointIndex    int       `json:"pointIndex"`
	Name          string    `json:"name,omitempty"`
	Description   string    `json:"description,omitempty"`
	NextRoadName  string    `json:"nextRoadName,omitempty"`
	TurnType      int       `json:"turnType,omitempty"`
	PointType     string    `json:"pointType,omitempty"`
	TotalDistance FlexFloat `json:"totalDistance,omitempty"`
	TotalTime     FlexFloat `json:"totalTime,omitempty"`
	TotalFare     FlexFloat `json:"totalFare,omitempty"`
	TaxiFare      FlexFloat `json:"taxiFare,omitempty"`
}

// LineProperties are the properties TMAP attaches to route segments.
type LineProperties struct {
	Index        int       `json:"index"`
	LineIndex    int       `json:"lineIndex"`
	Name         string    `json:"name,omitempty"`
	Description  string    `json:"description,omitempty"`
	Distance     FlexFloat `json:"distance,omitempty"`
	Time         FlexFloat `json:"time,omitempty"`
	RoadType     int       `json:"roadType,omitempty"`
	FacilityType string    `json:"facilityType,omitempty"`
}

// PointFeature is a Point geometry with guidance-point properties.
type PointFeature struct {
	Coordinates orb.Point
	Properties  PointProperties
}

// LineFeature is a LineString geometry with segment properties.
type LineFeature struct {
	Coordinates orb.LineString
	Properties  LineProperties
}

// OtherFeature keeps any geometry kind the pipeline does not render.
type OtherFeature struct {
	GeometryType string
	Raw          json.RawMessage
}

func (PointFeature) Kind() GeometryKind   { return GeometryPoint }
func (LineFeature) Kind() GeometryKind    { return GeometryLineString }
func (o OtherFeature) Kind() GeometryKind { return GeometryKind(o.GeometryType) }

func (PointFeature) isFeature() {}
func (LineFeature) isFeature()  {}
func (OtherFeature) isFeature() {}

// MarshalJSON encodes the feature as a GeoJSON Feature.
func (f PointFeature) MarshalJSON() ([]byte, error) {
	return json.Marshal(featureDoc{
		Type:       "Feature",
		Geometry:   geojson.NewGeometry(f.Coordinates),
		Properties: f.Properties,
	})
}

// MarshalJSON encodes the feature as a GeoJSON Feature.
func (f LineFeature) MarshalJSON() ([]byte, error) {
	return json.Marshal(featureDoc{
		Type:       "Feature",
		Geometry:   geojson.NewGeometry(f.Coordinates),
		Properties: f.Properties,
	})
}

// MarshalJSON re-emits the original feature.
func (o OtherFeature) MarshalJSON() ([]byte, error) {
	if len(o.Raw) == 0 {
		return []byte("null"), nil
	}
	return o.Raw, nil
}

type featureDoc struct {
	Type       string            `json:"type"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties any               `json:"properties"`
}

// FeatureCollection is a decoded route response.
type FeatureCollection struct {
	Features []Feature
}

// MarshalJSON encodes the collection as a GeoJSON FeatureCollection.
func (fc FeatureCollection) MarshalJSON() ([]byte, error) {
	features := fc.Features
	if features == nil {
		features = []Feature{}
	}
	return json.Marshal(struct {
		Type     string    `json:"type"`
		Features []Feature `json:"features"`
	}{Type: "FeatureCollection", Features: features})
}

// UnmarshalJSON decodes a GeoJSON FeatureCollection into typed features.
func (fc *FeatureCollection) UnmarshalJSON(data []byte) error {
	var doc struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode feature collection: %w", err)
	}
	features := make([]Feature, 0, len(doc.Features))
	for i, raw := range doc.Features {
		f, err := DecodeFeature(raw)
		if err != nil {
			return fmt.Errorf("feature %d: %w", i, err)
		}
		features = append(features, f)
	}
	fc.Features = features
	return nil
}

// DecodeFeature decodes one GeoJSON feature. Geometry kinds other than Point and
// LineString come back as OtherFeature, and so does a Point or LineString whose
// coordinates cannot be decoded or a LineString with no coordinates. Only a
// feature that is not a JSON object or has malformed properties is an error.
func DecodeFeature(raw json.RawMessage) (Feature, error) {
	var doc struct {
		Geometry   json.RawMessage `json:"geometry"`
		Properties json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	var head struct {
		Type string `json:"type"`
	}
	if len(doc.Geometry) > 0 && !bytes.Equal(doc.Geometry, []byte("null")) {
		if err := json.Unmarshal(doc.Geometry, &head); err != nil {
			return nil, err
		}
	}

	switch GeometryKind(head.Type) {
	case GeometryPoint, GeometryLineString:
	default:
		return OtherFeature{GeometryType: head.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}

	other := OtherFeature{GeometryType: head.Type, Raw: append(json.RawMessage(nil), raw...)}
	g, err := geojson.UnmarshalGeometry(doc.Geometry)
	if err != nil {
		return other, nil
	}

	switch geom := g.Geometry().(type) {
	case orb.Point:
		f := PointFeature{Coordinates: geom}
		if err := decodeProperties(doc.Properties, &f.Properties); err != nil {
			return nil, err
		}
		return f, nil
	case orb.LineString:
		if len(geom) == 0 {
			return other, nil
		}
		f := LineFeature{Coordinates: geom}
		if err := decodeProperties(doc.Properties, &f.Properties); err != nil {
			return nil, err
		}
		return f, nil
	default:
		return other, nil
	}
}

func decodeProperties(raw json.RawMessage, v any) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode properties: %w", err)
	}
	return nil
}

// FlexFloat accepts a JSON number or a numeric string.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}
