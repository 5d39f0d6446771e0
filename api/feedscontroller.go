package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stash/storage"
	"stash/types"
)

// FeedStore is the slice of the storage layer the feed routes need.
type FeedStore interface {
	AddFeed(ctx context.Context, userID, feedURL string) (*types.Feed, error)
	ListFeeds(ctx context.Context, userID string) ([]*types.Feed, error)
	DeleteFeed(ctx context.Context, userID, id string) error
}

// RegisterFeedRoutes registers feed subscription routes.
func RegisterFeedRoutes(r *gin.Engine, d Deps) {
	ctl := &feedController{store: d.Feeds, refresh: d.Refresh, defaultUser: d.DefaultUser}

	g := r.Group("/api/feeds")
	g.POST("", ctl.add)
	g.GET("", ctl.list)
	g.DELETE("/:id", ctl.delete)
	g.POST("/refresh", ctl.refreshAll)
}

type feedController struct {
	store       FeedStore
	refresh     func(ctx context.Context) error
	defaultUser string
}

type addFeedRequest struct {
	URL string `json:"url" binding:"required"`
}

func (ctl *feedController) add(c *gin.Context) {
	var req addFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feed, err := ctl.store.AddFeed(c.Request.Context(), userID(c, ctl.defaultUser), req.URL)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateURL) {
			c.JSON(http.StatusConflict, gin.H{"error": "feed already subscribed"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, feed)
}

func (ctl *feedController) list(c *gin.Context) {
	feeds, err := ctl.store.ListFeeds(c.Request.Context(), userID(c, ctl.defaultUser))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feeds": feeds})
}

func (ctl *feedController) delete(c *gin.Context) {
	err := ctl.store.DeleteFeed(c.Request.Context(), userID(c, ctl.defaultUser), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "feed not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// refreshAll triggers one poll of every due feed. It runs asynchronously
// and returns 202 Accepted immediately.
func (ctl *feedController) refreshAll(c *gin.Context) {
	if ctl.refresh == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "poller not running"})
		return
	}
	go func() {
		_ = ctl.refresh(context.Background())
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}
