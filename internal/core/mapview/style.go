package mapview

// MaxTileZoom is the deepest zoom level the tile provider serves.
const MaxTileZoom = 18

// TileLayer is a raster tile set of the tile provider.
type TileLayer string

const (
	TileBase      TileLayer = "Base"
	TileSatellite TileLayer = "Satellite"
	TileHybrid    TileLayer = "Hybrid"
)

// Ext is the image extension the provider uses for the layer.
func (l TileLayer) Ext() string {
	if l == TileSatellite {
		return "jpeg"
	}
	return "png"
}

// ParseTileLayer reports whether name is a known tile layer.
func ParseTileLayer(name string) (TileLayer, bool) {
	switch l := TileLayer(name); l {
	case TileBase, TileSatellite, TileHybrid:
		return l, true
	}
	return "", false
}

const osmTiles = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// StyleSource is one raster source of a map style.
type StyleSource struct {
	Type     string   `json:"type"`
	Tiles    []string `json:"tiles"`
	TileSize int      `json:"tileSize"`
	MaxZoom  int      `json:"maxzoom,omitempty"`
}

// StyleLayer draws one source.
type StyleLayer struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Source string `json:"source"`
}

// MapStyle is a MapLibre style document.
type MapStyle struct {
	Version int                    `json:"version"`
	Sources map[string]StyleSource `json:"sources"`
	Layers  []StyleLayer           `json:"layers"`
}

// Style returns the base map style for mode. Tiles are fetched from tilePrefix,
// which must serve "{prefix}/{layer}/{z}/{y}/{x}". Without provider
// credentials the style falls back to OpenStreetMap.
func Style(mode Mode, tilePrefix string, hasKey bool) MapStyle {
	if !hasKey {
		return MapStyle{
			Version: 8,
			Sources: map[string]StyleSource{
				"osm": {Type: "raster", Tiles: []string{osmTiles}, TileSize: 256},
			},
			Layers: []StyleLayer{{ID: "osm", Type: "raster", Source: "osm"}},
		}
	}

	source := func(l TileLayer) StyleSource {
		return StyleSource{
			Type:     "raster",
			Tiles:    []string{tilePrefix + "/" + string(l) + "/{z}/{y}/{x}"},
			TileSize: 256,
			MaxZoom:  MaxTileZoom,
		}
	}
	style := MapStyle{
		Version: 8,
		Sources: map[string]StyleSource{
			"vworldBase":      source(TileBase),
			"vworldSatellite": source(TileSatellite),
			"vworldHybrid":    source(TileHybrid),
		},
	}
	if mode == ModeStandard {
		style.Layers = []StyleLayer{{ID: "base", Type: "raster", Source: "vworldBase"}}
	} else {
		style.Layers = []StyleLayer{
			{ID: "satellite", Type: "raster", Source: "vworldSatellite"},
			{ID: "hybrid", Type: "raster", Source: "vworldHybrid"},
		}
	}
	return style
}

// ClampTileZoom caps z at MaxTileZoom.
func ClampTileZoom(z int) int {
	if z > MaxTileZoom {
		return MaxTileZoom
	}
	return z
}
