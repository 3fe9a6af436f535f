package telemetry

// Tracer and span names used for instrumentation.
const (
	TracerProviders = "citrusfield/providers"
	TracerWorkflows = "citrusfield/workflows"

	SpanParcelLookup    = "vworld.parcel_lookup"
	SpanTileFetch       = "vworld.tile_fetch"
	SpanRoutePrediction = "tmap.route_prediction"
)

// Span attribute keys.
const (
	AttrProvider   = "provider.name"
	AttrStatusCode = "http.status_code"
	AttrLng        = "geo.lng"
	AttrLat        = "geo.lat"
	AttrTileLayer  = "tile.layer"
	AttrTileZoom   = "tile.zoom"
)
