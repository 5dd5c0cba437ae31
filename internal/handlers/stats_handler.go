package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fileflow-backend/internal/repository"
	"fileflow-backend/internal/services/stats"
)

const dateLayout = "2006-01-02"

type StatsProvider interface {
	FileStats(ctx context.Context) (stats.FileStats, error)
	RowStats(ctx context.Context, filename string, day *time.Time) (stats.RowStats, error)
	DailyCounts(ctx context.Context, from, to time.Time) ([]repository.DailyCount, error)
}

type StatsHandler struct {
	stats StatsProvider
}

func NewStatsHandler(s StatsProvider) *StatsHandler {
	return &StatsHandler{stats: s}
}

func (h *StatsHandler) FileStats(c *gin.Context) {
	out, err := h.stats.FileStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

// RowStats requires filename; date (YYYY-MM-DD) narrows to one processing day.
func (h *StatsHandler) RowStats(c *gin.Context) {
	filename := c.Query("filename")
	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}

	var day *time.Time
	if raw := c.Query("date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, expected YYYY-MM-DD"})
			return
		}
		day = &d
	}

	out, err := h.stats.RowStats(c.Request.Context(), filename, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *StatsHandler) DailyStats(c *gin.Context) {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, expected YYYY-MM-DD"})
		return
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, expected YYYY-MM-DD"})
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return
	}

	out, err := h.stats.DailyCounts(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": c.Query("from"), "to": c.Query("to"), "days": out})
}
