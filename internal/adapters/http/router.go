package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/citrusfield/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP. Tiles come in bursts
	// while panning, so they are not counted.
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), tilePrefix+"/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited",
				"rate limit exceeded", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	to := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, deps.timeout())
	}

	api := app.Group("/api")
	api.Get("/dashboard", to(DashboardHandler(deps)))

	api.Get("/surveys", to(ListSurveysHandler(deps)))
	api.Get("/surveys/regions", to(SurveyRegionsHandler(deps)))
	api.Get("/surveys/varieties", to(SurveyVarietiesHandler(deps)))
	api.Get("/surveys/sub-record-template", to(SubRecordTemplateHandler(deps)))
	api.Get("/surveys/:id", to(GetSurveyHandler(deps)))
	api.Put("/surveys/:id", to(UpdateSurveyHandler(deps)))
	api.Put("/surveys/:id/boundary", to(UpdateBoundaryHandler(deps)))
	api.Post("/surveys/:id/sub-records", to(AddSubRecordHandler(deps)))
	api.Put("/surveys/:id/sub-records/:subId", to(ReplaceSubRecordHandler(deps)))
	api.Delete("/surveys/:id/sub-records/:subId", to(DeleteSubRecordHandler(deps)))

	api.Get("/land-changes", to(ListLandChangesHandler(deps)))
	api.Get("/land-changes/months", to(LandChangeMonthsHandler(deps)))
	api.Get("/land-changes/:id", to(GetLandChangeHandler(deps)))
	api.Post("/land-changes/:id/draft", to(DraftLandChangeHandler(deps)))

	api.Get("/civil-requests", to(ListCivilRequestsHandler(deps)))
	api.Get("/civil-requests/:id", to(GetCivilRequestHandler(deps)))
	api.Post("/civil-requests/:id/process", to(ProcessCivilRequestHandler(deps)))

	// Provider proxies
	api.Get("/land", to(LandHandler(deps)))
	api.Post("/tmap/route-prediction", to(RoutePredictionHandler(deps)))

	// Map
	api.Get("/map/style", MapStyleHandler(deps))
	api.Get("/tiles/:layer/:z/:y/:x", to(TileHandler(deps)))
	api.Post("/map/sessions", to(CreateMapSessionHandler(deps)))
	api.Get("/map/sessions/:id", to(GetMapSessionHandler(deps)))
	api.Put("/map/sessions/:id", to(UpdateMapSessionHandler(deps)))
	api.Delete("/map/sessions/:id", to(DeleteMapSessionHandler(deps)))
	api.Post("/map/sessions/:id/parcel", to(MapParcelHandler(deps)))
	api.Post("/map/sessions/:id/route", to(MapRouteHandler(deps)))
	api.Get("/map/sessions/:id/layers", to(MapLayersHandler(deps)))
	api.Get("/map/sessions/:id/summary", to(MapSummaryHandler(deps)))

	app.Post("/graphql", to(GraphQLHandler(deps)))

	SetupDocs(app, deps.SpecPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(EventsSocketHandler(deps)))
	app.Get("/ws/map/:id", websocket.New(MapSocketHandler(deps)))
}
