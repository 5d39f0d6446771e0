package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stash/storage"
	"stash/types"
)

// HighlightStore is the slice of the storage layer the highlight routes need.
type HighlightStore interface {
	AddHighlight(ctx context.Context, h *types.Highlight) (string, error)
	ListHighlights(ctx context.Context, itemID string) ([]types.Highlight, error)
	DeleteHighlight(ctx context.Context, id string) error
}

// RegisterHighlightRoutes registers highlight routes.
func RegisterHighlightRoutes(r *gin.Engine, d Deps) {
	ctl := &highlightController{store: d.Highlights}

	r.POST("/api/articles/:id/highlights", ctl.add)
	r.GET("/api/articles/:id/highlights", ctl.list)
	r.DELETE("/api/highlights/:id", ctl.delete)
}

type highlightController struct {
	store HighlightStore
}

type addHighlightRequest struct {
	Quote string `json:"quote" binding:"required"`
	Note  string `json:"note"`
}

func (ctl *highlightController) add(c *gin.Context) {
	var req addHighlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h := &types.Highlight{
		ItemID: c.Param("id"),
		Quote:  req.Quote,
		Note:   req.Note,
	}
	id, err := ctl.store.AddHighlight(c.Request.Context(), h)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.ID = id

	c.JSON(http.StatusCreated, h)
}

func (ctl *highlightController) list(c *gin.Context) {
	hs, err := ctl.store.ListHighlights(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"highlights": hs})
}

func (ctl *highlightController) delete(c *gin.Context) {
	err := ctl.store.DeleteHighlight(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "highlight not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
