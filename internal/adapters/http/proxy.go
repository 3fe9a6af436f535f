package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/ports"
)

// queryCoord parses a required coordinate query parameter.
func queryCoord(c *fiber.Ctx, key string) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// LandHandler looks up the cadastral parcel containing lng/lat.
// A point on no parcel answers 200 with an empty feature list.
func LandHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lng, okLng := queryCoord(c, "lng")
		lat, okLat := queryCoord(c, "lat")
		if !okLng || !okLat {
			return errBadRequest(c, "Missing parameters")
		}

		fc, err := deps.Parcels.ParcelAt(c.UserContext(), lng, lat)
		if err != nil {
			var pe *domain.ProviderError
			switch {
			case errors.Is(err, domain.ErrProviderNotConfigured):
				return errBadRequest(c, "Missing parameters")
			case errors.As(err, &pe):
				logProviderFailure(c, pe.Provider, err)
				return newError(c, fiber.StatusInternalServerError, "provider_error", pe.Message, pe.Details)
			}
			logProviderFailure(c, "vworld", err)
			return errInternal(c, "Failed to fetch land data")
		}
		if fc == nil {
			fc = geojson.NewFeatureCollection()
		}
		return c.JSON(fc)
	}
}

// RoutePredictionHandler forwards a route-prediction request and relays the
// provider body unchanged.
func RoutePredictionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Configuration is checked before the body is even read.
		if !deps.Routes.Configured() {
			return routeNotConfigured(c, domain.ErrProviderNotConfigured)
		}

		var req ports.RouteRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body: "+err.Error())
		}

		body, err := deps.Routes.Predict(c.UserContext(), req)
		if err != nil {
			var pe *domain.ProviderError
			switch {
			case errors.Is(err, domain.ErrProviderNotConfigured):
				return routeNotConfigured(c, err)
			case errors.As(err, &pe):
				logProviderFailure(c, pe.Provider, err)
				return newError(c, pe.StatusCode, "provider_error", pe.Message, pe.Details)
			}
			logProviderFailure(c, "tmap", err)
			return newError(c, fiber.StatusInternalServerError, "internal_error", "Internal server error", err.Error())
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}
}

func routeNotConfigured(c *fiber.Ctx, err error) error {
	LoggerFromCtx(c.UserContext()).Error("route prediction not configured", "error", err)
	return newError(c, fiber.StatusInternalServerError, "not_configured",
		"TMAP_APP_KEY or TMAP_PREDICTION_URL is missing", "set tmap.app_key and tmap.prediction_url")
}
