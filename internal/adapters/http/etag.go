package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware tags successful JSON and GeoJSON GET responses with a weak
// ETag over the body and answers 304 when If-None-Match already names it.
// Tiles and streams are not JSON and pass through untouched.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		if !taggable(string(c.Response().Header.ContentType())) {
			return nil
		}

		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		etag := weakETag(body)
		c.Set(fiber.HeaderETag, etag)

		if matchesETag(c.Get(fiber.HeaderIfNoneMatch), etag) {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}

func taggable(contentType string) bool {
	return strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) ||
		strings.HasPrefix(contentType, "application/geo+json")
}

func weakETag(body []byte) string {
	h := sha256.Sum256(body)
	return `W/"` + hex.EncodeToString(h[:8]) + `"`
}

// matchesETag reports whether an If-None-Match header covers etag. The header
// may list several tags or be "*"; comparison is weak, so W/ prefixes are ignored.
func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == want {
			return true
		}
	}
	return false
}
