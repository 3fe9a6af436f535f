package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets a default Cache-Control on GET responses that did not
// set their own. Records are edited in place, so they are never cached publicly.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || len(c.Response().Header.Peek(fiber.HeaderCacheControl)) > 0 {
			return err
		}

		path := c.Path()
		var ttl string
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"
		case path == "/metrics":
			ttl = "no-cache"
		case strings.HasPrefix(path, "/api/tiles/"):
			ttl = "public, max-age=86400" // imagery changes rarely
		case path == "/api/map/style":
			ttl = "public, max-age=3600"
		case path == "/api/surveys/regions" || path == "/api/surveys/varieties":
			ttl = "public, max-age=3600"
		case path == "/api/land":
			ttl = "public, max-age=300"
		case strings.HasPrefix(path, "/api/map/sessions"):
			ttl = "no-store"
		case strings.HasPrefix(path, "/api/"):
			ttl = "private, no-cache"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}
