package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/ports"
)

// PredictionTimeLayout is the local-time format the prediction API expects.
const PredictionTimeLayout = "2006-01-02T15:04:05-0700"

// RouteService requests predicted driving routes.
type RouteService struct {
	predictor ports.RoutePredictor
}

// NewRouteService creates a new RouteService.
func NewRouteService(predictor ports.RoutePredictor) *RouteService {
	return &RouteService{predictor: predictor}
}

// Predict forwards a prediction request and returns the provider body unchanged.
func (s *RouteService) Predict(ctx context.Context, req ports.RouteRequest) ([]byte, error) {
	return s.predictor.PredictRoute(ctx, req)
}

// Configured reports whether the predictor has its credentials. A predictor
// that cannot tell is taken as configured.
func (s *RouteService) Configured() bool {
	if c, ok := s.predictor.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

// Between predicts a departure-now route from start to end and decodes it.
func (s *RouteService) Between(ctx context.Context, start, end *domain.Coordinates, at time.Time) (*domain.FeatureCollection, error) {
	if start == nil || end == nil {
		return nil, domain.ErrMissingEndpoints
	}
	req, err := RouteRequestBetween(*start, *end, at)
	if err != nil {
		return nil, err
	}
	body, err := s.predictor.PredictRoute(ctx, req)
	if err != nil {
		return nil, err
	}
	return DecodeRoute(body)
}

type routePlace struct {
	Name           string `json:"name"`
	Lon            string `json:"lon"`
	Lat            string `json:"lat"`
	DepSearchFlag  string `json:"depSearchFlag,omitempty"`
	DestSearchFlag string `json:"destSearchFlag,omitempty"`
}

type routesInfo struct {
	Departure       routePlace `json:"departure"`
	Destination     routePlace `json:"destination"`
	PredictionType  string     `json:"predictionType"`
	PredictionTime  string     `json:"predictionTime"`
	SearchOption    string     `json:"searchOption"`
	TollgateCarType string     `json:"tollgateCarType"`
}

// RouteRequestBetween builds the prediction request for a car leaving start at
// time at. Times are sent in at's own location.
func RouteRequestBetween(start, end domain.Coordinates, at time.Time) (ports.RouteRequest, error) {
	info, err := json.Marshal(routesInfo{
		Departure: routePlace{
			Name:          "출발",
			Lon:           strconv.FormatFloat(start.Lng, 'f', -1, 64),
			Lat:           strconv.FormatFloat(start.Lat, 'f', -1, 64),
			DepSearchFlag: "03",
		},
		Destination: routePlace{
			Name:           "도착",
			Lon:            strconv.FormatFloat(end.Lng, 'f', -1, 64),
			Lat:            strconv.FormatFloat(end.Lat, 'f', -1, 64),
			DestSearchFlag: "03",
		},
		PredictionType:  "departure",
		PredictionTime:  at.Format(PredictionTimeLayout),
		SearchOption:    "00",
		TollgateCarType: "car",
	})
	if err != nil {
		return ports.RouteRequest{}, fmt.Errorf("encode routes info: %w", err)
	}
	return ports.RouteRequest{
		RoutesInfo: info,
		Query: ports.RouteQuery{
			Version:      "1",
			ReqCoordType: "WGS84GEO",
			ResCoordType: "WGS84GEO",
			Sort:         "index",
			TrafficInfo:  "N",
		},
	}, nil
}

// DecodeRoute decodes a prediction response. Some responses wrap the
// collection in a "geojson" member; that one is used when the top level has
// no features.
func DecodeRoute(body []byte) (*domain.FeatureCollection, error) {
	var head struct {
		Features []json.RawMessage `json:"features"`
		GeoJSON  json.RawMessage   `json:"geojson"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("decode route response: %w", err)
	}

	src := body
	if len(head.Features) == 0 {
		if len(head.GeoJSON) == 0 || bytes.Equal(head.GeoJSON, []byte("null")) {
			return nil, domain.ErrRouteDataMissing
		}
		src = head.GeoJSON
	}

	var fc domain.FeatureCollection
	if err := json.Unmarshal(src, &fc); err != nil {
		return nil, fmt.Errorf("decode route features: %w", err)
	}
	return &fc, nil
}
