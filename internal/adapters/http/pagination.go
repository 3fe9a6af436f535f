package http

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// paginate slices items by the offset and limit query parameters and sets the
// Link header.
func paginate[T any](c *fiber.Ctx, items []T, defLimit, maxLimit int) PaginatedResponse {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", defLimit)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxLimit {
		limit = defLimit
	}

	total := len(items)
	page := []T{}
	if offset < total {
		end := min(offset+limit, total)
		page = items[offset:end]
	}

	pg := Pagination{Offset: offset, Limit: limit, Total: total}
	SetLinkHeaders(c, pg)
	return PaginatedResponse{Data: page, Pagination: pg}
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses.
// Other query parameters of the request are carried over.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	var keep []string
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if key == "offset" || key == "limit" {
			return
		}
		keep = append(keep, url.QueryEscape(key)+"="+url.QueryEscape(string(v)))
	})
	extra := ""
	if len(keep) > 0 {
		extra = "&" + strings.Join(keep, "&")
	}

	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d%s>; rel="%s"`, base, offset, p.Limit, extra, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	links = append(links, link(max(p.Total-p.Limit, 0), "last"))

	c.Set("Link", strings.Join(links, ", "))
}
