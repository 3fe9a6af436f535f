package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// slowRequest marks requests that took long enough to be worth a look,
// usually because a provider was slow.
const slowRequest = 2 * time.Second

// AccessLogMiddleware logs one structured line per request. 5xx responses log
// at Error and 4xx at Warn. Successful tile and metrics hits log at Debug so
// map panning does not drown the log.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		status := c.Response().StatusCode()
		latency := time.Since(start)
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", latency),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		if rid, ok := c.Locals("requestid").(string); ok {
			attrs = append(attrs, slog.String("request_id", rid))
		}
		if latency >= slowRequest {
			attrs = append(attrs, slog.Bool("slow", true))
		}

		level := accessLevel(path, status)
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		}

		slog.LogAttrs(c.UserContext(), level, method+" "+path, attrs...)
		return err
	}
}

func accessLevel(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case strings.HasPrefix(path, tilePrefix+"/") || path == "/metrics":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
