package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/salespulse/backend/internal/analytics"
)

// @Summary Destination performance
// @Tags analytics
// @Produce json
// @Param timeframe query string false "lastWeek|thisMonth|lastMonth|thisQuarter|lastQuarter|lastYear|all"
// @Param metric query string false "tp|pq|hotpass"
// @Success 200 {object} models.DepartmentPerformance
// @Router /api/datasets/{id}/regions [get]
func (h *Handler) Regions(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	metric := c.DefaultQuery("metric", analytics.MetricTP)
	timeframe := c.DefaultQuery("timeframe", "all")
	c.JSON(http.StatusOK, h.Engine.RegionPerformance(d.Data, metric, timeframe, h.now()))
}

// @Summary Agent performance
// @Tags analytics
// @Produce json
// @Success 200 {object} models.AgentPerformance
// @Router /api/datasets/{id}/agents [get]
func (h *Handler) Agents(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	timeframe := c.DefaultQuery("timeframe", "all")
	c.JSON(http.StatusOK, h.Engine.AgentPerformance(d.Data, timeframe, h.now(), h.rosters(d)))
}

func (h *Handler) Segments(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	timeframe := c.DefaultQuery("timeframe", "all")
	c.JSON(http.StatusOK, h.Engine.SegmentPerformance(d.Data, timeframe, h.now()))
}

func (h *Handler) Trends(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	months := h.TrendMonths
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 24 {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "months must be between 1 and 24", nil)
			return
		}
		months = n
	}
	c.JSON(http.StatusOK, h.Engine.PeriodTrend(d.Data, months, h.now()))
}

func (h *Handler) Timing(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	timeframe := c.DefaultQuery("timeframe", "all")
	c.JSON(http.StatusOK, h.Engine.Timing(d.Data, timeframe, h.now()))
}

// Recommendations serves the department-level list, or the agent-scoped one
// when ?agent= names an agent from the dataset.
func (h *Handler) Recommendations(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	timeframe := c.DefaultQuery("timeframe", "all")
	now := h.now()
	dept := h.Engine.RegionPerformance(d.Data, analytics.MetricTP, timeframe, now)

	agent := strings.TrimSpace(c.Query("agent"))
	if agent == "" {
		c.JSON(http.StatusOK, gin.H{"items": h.Engine.Recommendations(dept)})
		return
	}

	perf := h.Engine.AgentPerformance(d.Data, timeframe, now, h.rosters(d))
	for _, a := range perf.Agents {
		if strings.EqualFold(strings.TrimSpace(a.Key), agent) {
			c.JSON(http.StatusOK, gin.H{
				"agent": a.Key,
				"items": h.Engine.AgentRecommendations(a.Regions, dept),
			})
			return
		}
	}
	writeError(c, http.StatusNotFound, "NOT_FOUND", "Agent not found in dataset", nil)
}
