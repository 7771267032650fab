package handlers

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openclub/bulletin/internal/stats"
	"github.com/openclub/bulletin/pkg/logger"
)

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// StatsHandler exposes the action log and its CSV export.
type StatsHandler struct {
	statLog *stats.Log
}

func NewStatsHandler(statLog *stats.Log) *StatsHandler {
	return &StatsHandler{statLog: statLog}
}

func (h *StatsHandler) Register(rg *gin.RouterGroup) {
	s := rg.Group("/stats")
	s.GET("/today", h.Today)
	s.GET("/month", h.Month)
	s.GET("/export", h.Export)
}

func (h *StatsHandler) Today(c *gin.Context) {
	now := time.Now().UTC()
	records, err := h.statLog.ReadPeriod(c.Request.Context(), stats.Period(now))
	if err != nil {
		logger.Errorf("stats read: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "stats unavailable"})
		return
	}
	y, m, d := now.Date()
	today := []stats.Record{}
	for _, rec := range records {
		ry, rm, rd := rec.Date.UTC().Date()
		if ry == y && rm == m && rd == d {
			today = append(today, rec)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "records": today})
}

func (h *StatsHandler) Month(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}
	records, err := h.statLog.ReadPeriod(c.Request.Context(), period)
	if err != nil {
		logger.Errorf("stats read: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "stats unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "records": records})
}

func (h *StatsHandler) Export(c *gin.Context) {
	period, ok := h.period(c)
	if !ok {
		return
	}
	out, err := h.statLog.ExportCSV(c.Request.Context(), period)
	if err != nil {
		logger.Errorf("stats export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "msg": "stats unavailable"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="stats-`+period+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", out)
}

// period pulls ?month=YYYY-MM, defaulting to the current month.
func (h *StatsHandler) period(c *gin.Context) (string, bool) {
	period := c.Query("month")
	if period == "" {
		return stats.Period(time.Now().UTC()), true
	}
	if !periodPattern.MatchString(period) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "month must be YYYY-MM"})
		return "", false
	}
	return period, true
}
