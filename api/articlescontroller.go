package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stash/extract"
	"stash/metrics"
	"stash/storage"
	"stash/types"
)

// ItemStore is the slice of the storage layer the article routes need.
type ItemStore interface {
	SaveItem(ctx context.Context, item *types.Item) (string, error)
	GetItem(ctx context.Context, userID, id string) (*types.Item, error)
	ListItems(ctx context.Context, userID string, includeArchived bool) ([]*types.Item, error)
	DeleteItem(ctx context.Context, userID, id string) error
	SetArchived(ctx context.Context, userID, id string, archived bool) error
	TagItem(ctx context.Context, userID, itemID, name string) error
	UntagItem(ctx context.Context, userID, itemID, name string) error
	ListTags(ctx context.Context, userID string) ([]types.Tag, error)
}

// RegisterArticleRoutes registers item and tag routes.
func RegisterArticleRoutes(r *gin.Engine, d Deps) {
	ctl := &articleController{store: d.Items, defaultUser: d.DefaultUser}

	g := r.Group("/api/articles")
	g.POST("", ctl.save)
	g.GET("", ctl.list)
	g.GET("/:id", ctl.get)
	g.DELETE("/:id", ctl.delete)
	g.POST("/:id/archive", ctl.archive)
	g.POST("/:id/tags", ctl.tag)
	g.DELETE("/:id/tags/:tag", ctl.untag)

	r.GET("/api/tags", ctl.listTags)
}

type articleController struct {
	store       ItemStore
	defaultUser string
}

type saveArticleRequest struct {
	URL  string   `json:"url" binding:"required"`
	Kind string   `json:"kind"`
	Tags []string `json:"tags"`
}

// save extracts the page behind the submitted URL and persists the result.
func (ctl *articleController) save(c *gin.Context) {
	var req saveArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	article, err := extract.FromURL(c.Request.Context(), req.URL)
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	metrics.ExtractionsTotal.WithLabelValues("ok").Inc()

	item := &types.Item{
		UserID:      userID(c, ctl.defaultUser),
		URL:         req.URL,
		Kind:        req.Kind,
		Title:       article.Title,
		Content:     article.Content,
		Excerpt:     article.Excerpt,
		ImageURL:    article.ImageURL,
		Author:      article.Author,
		PublishedAt: article.PublishedAt,
		Tags:        req.Tags,
	}

	id, err := ctl.store.SaveItem(c.Request.Context(), item)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateURL) {
			c.JSON(http.StatusConflict, gin.H{"error": "url already saved"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	item.ID = id

	c.JSON(http.StatusCreated, item)
}

func (ctl *articleController) list(c *gin.Context) {
	includeArchived := c.Query("archived") == "true"
	items, err := ctl.store.ListItems(c.Request.Context(), userID(c, ctl.defaultUser), includeArchived)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": items})
}

func (ctl *articleController) get(c *gin.Context) {
	item, err := ctl.store.GetItem(c.Request.Context(), userID(c, ctl.defaultUser), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ctl *articleController) delete(c *gin.Context) {
	err := ctl.store.DeleteItem(c.Request.Context(), userID(c, ctl.defaultUser), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type archiveRequest struct {
	Archived bool `json:"archived"`
}

func (ctl *articleController) archive(c *gin.Context) {
	var req archiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ctl.store.SetArchived(c.Request.Context(), userID(c, ctl.defaultUser), c.Param("id"), req.Archived)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "archived": req.Archived})
}

type tagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

func (ctl *articleController) tag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := ctl.store.TagItem(c.Request.Context(), userID(c, ctl.defaultUser), c.Param("id"), req.Tag)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "tagged"})
}

func (ctl *articleController) untag(c *gin.Context) {
	err := ctl.store.UntagItem(c.Request.Context(), userID(c, ctl.defaultUser), c.Param("id"), c.Param("tag"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tag not found on article"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "untagged"})
}

func (ctl *articleController) listTags(c *gin.Context) {
	tags, err := ctl.store.ListTags(c.Request.Context(), userID(c, ctl.defaultUser))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
