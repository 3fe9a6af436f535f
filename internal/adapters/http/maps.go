package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/mapview"
	"github.com/samirrijal/citrusfield/internal/core/usecases"
)

const tilePrefix = "/api/tiles"

// MapStyleHandler returns the base map style for ?mode=satellite|standard.
func MapStyleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode := mapview.Mode(c.Query("mode", string(mapview.ModeSatellite)))
		if !mode.Valid() {
			return errBadRequest(c, "mode must be satellite or standard")
		}
		hasKey := deps.Tiles != nil && deps.Tiles.Configured()
		return c.JSON(mapview.Style(mode, tilePrefix, hasKey))
	}
}

// TileHandler proxies one base map tile so the provider key stays server-side.
func TileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		layer, ok := mapview.ParseTileLayer(c.Params("layer"))
		if !ok {
			return errNotFound(c, "unknown tile layer")
		}
		var zyx [3]int
		for i, name := range []string{"z", "y", "x"} {
			v, err := strconv.Atoi(c.Params(name))
			if err != nil || v < 0 {
				return errBadRequest(c, "tile "+name+" must be a non-negative integer")
			}
			zyx[i] = v
		}
		if deps.Tiles == nil {
			return errFromDomain(c, domain.ErrProviderNotConfigured)
		}

		tile, err := deps.Tiles.Tile(c.UserContext(), layer, zyx[0], zyx[1], zyx[2])
		if err != nil {
			logProviderFailure(c, "vworld_tiles", err)
			return errFromDomain(c, err)
		}
		c.Set(fiber.HeaderContentType, tile.ContentType)
		return c.Send(tile.Data)
	}
}

// CreateMapSessionHandler opens a map session over one record collection.
func CreateMapSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var opts usecases.SessionOptions
		if err := bind(c, &opts); err != nil {
			return errBadRequest(c, err.Error())
		}
		view, err := deps.Maps.Create(c.UserContext(), opts)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// GetMapSessionHandler returns a session snapshot.
func GetMapSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Maps.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// UpdateMapSessionHandler changes selection, mode or route endpoints.
func UpdateMapSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var u usecases.SessionUpdate
		if err := bind(c, &u); err != nil {
			return errBadRequest(c, err.Error())
		}
		view, err := deps.Maps.Update(c.Params("id"), u)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// DeleteMapSessionHandler drops a session.
func DeleteMapSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Maps.Delete(c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type pointRequest struct {
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
}

// MapParcelHandler selects the parcel under a clicked point.
func MapParcelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pointRequest
		if err := bind(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		view, err := deps.Maps.Parcel(c.UserContext(), c.Params("id"), *req.Lng, *req.Lat)
		if err != nil {
			if providerFailed(err) {
				logProviderFailure(c, "vworld", err)
			}
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// MapRouteHandler predicts the route between the session endpoints.
func MapRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Maps.Route(c.UserContext(), c.Params("id"))
		if err != nil {
			if providerFailed(err) {
				logProviderFailure(c, "tmap", err)
			}
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// MapLayersHandler returns the composed layers at ?time= (0..100).
func MapLayersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t := 0.0
		if raw := c.Query("time"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 || v > 100 {
				return errBadRequest(c, "time must be a number between 0 and 100")
			}
			t = v
		}
		layers, err := deps.Maps.Layers(c.Params("id"), t)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(layers)
	}
}

// MapSummaryHandler returns the route totals of a session.
func MapSummaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := deps.Maps.Summary(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{
			"summary": sum,
			"text":    mapview.SummaryText(*sum),
		})
	}
}
