// Package api exposes the stash HTTP interface: saving and browsing items,
// tagging, highlights, feed subscriptions, health and metrics.
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries the collaborators the HTTP layer needs.
type Deps struct {
	Items      ItemStore
	Highlights HighlightStore
	Feeds      FeedStore
	// Refresh triggers one feed poll; wired to the poller in main.
	Refresh func(ctx context.Context) error
	// DefaultUser owns requests that carry no X-User-ID header.
	DefaultUser string
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	RegisterArticleRoutes(r, d)
	RegisterHighlightRoutes(r, d)
	RegisterFeedRoutes(r, d)
	RegisterHealthRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// userID resolves the request owner. Auth proper lives outside this service;
// the header is trusted as-is.
func userID(c *gin.Context, fallback string) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return fallback
}
