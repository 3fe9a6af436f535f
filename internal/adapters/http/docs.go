package http

import (
	"context"
	"os"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// DefaultSpecPath is where the OpenAPI document lives relative to the repo root.
const DefaultSpecPath = "api/openapi.yaml"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="ko">
<head>
  <meta charset="UTF-8">
  <title>Citrusfield API · Swagger UI</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/docs/openapi.json',
      dom_id: '#swagger-ui',
      deepLinking: true,
      docExpansion: 'list',
      tryItOutEnabled: true,
      presets: [SwaggerUIBundle.presets.apis],
    });
  </script>
</body>
</html>`

// apiDocs loads and validates the OpenAPI document once, on first request.
type apiDocs struct {
	path string
	once sync.Once
	raw  []byte
	doc  *openapi3.T
	err  error
}

func (d *apiDocs) load() error {
	d.once.Do(func() {
		d.raw, d.err = os.ReadFile(d.path)
		if d.err != nil {
			return
		}
		d.doc, d.err = openapi3.NewLoader().LoadFromData(d.raw)
		if d.err != nil {
			return
		}
		d.err = d.doc.Validate(context.Background())
	})
	return d.err
}

// SetupDocs registers Swagger UI at /docs and the OpenAPI document at
// /docs/openapi.yaml (as written) and /docs/openapi.json (parsed).
func SetupDocs(app *fiber.App, specPath string) {
	if specPath == "" {
		specPath = DefaultSpecPath
	}
	docs := &apiDocs{path: specPath}

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(swaggerUIHTML)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		if err := docs.load(); err != nil {
			return errNotFound(c, "openapi document unavailable: "+err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(docs.raw)
	})

	app.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		if err := docs.load(); err != nil {
			return errNotFound(c, "openapi document unavailable: "+err.Error())
		}
		return c.JSON(docs.doc)
	})
}
