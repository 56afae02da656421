package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salespulse/backend/internal/ai"
	"github.com/salespulse/backend/internal/analytics"
	"github.com/salespulse/backend/internal/utils"
)

type AgendaRequest struct {
	Program   string `json:"program"`
	Timeframe string `json:"timeframe" validate:"required"`
}

// @Summary Build meeting agenda
// @Tags report
// @Accept json
// @Produce json
// @Success 200 {object} models.MeetingAgendaData
// @Router /api/datasets/{id}/agenda [post]
func (h *Handler) Agenda(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	var req AgendaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, h.Engine.BuildAgenda(d.Data, req.Program, req.Timeframe, h.now(), h.rosters(d)))
}

// Narrative builds the prompt from fresh aggregates, asks the assistant, and
// caches the prose. The prompt is rebuilt cheaply on every call; only the
// assistant round-trip is cached, so a failed call never forces callers to
// re-upload or recompute anything before retrying.
func (h *Handler) Narrative(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	timeframe := c.DefaultQuery("timeframe", "all")
	force := c.Query("force") == "1"

	insights := h.Engine.CollectInsights(d.Data, timeframe, h.now(), h.rosters(d))
	prompt := analytics.BuildPrompt(insights)
	cacheKey := fmt.Sprintf("narrative:%s:%s:%016x", d.ID, timeframe, utils.HashStringToUint64(prompt))

	if !force {
		if cached, hit, err := h.Cache.Get(cacheKey); err == nil && hit {
			c.JSON(http.StatusOK, gin.H{
				"text":   cached,
				"blocks": analytics.ClassifyNarrative(cached),
				"cached": true,
			})
			return
		}
	}

	text, err := h.Assistant.Ask(c.Request.Context(), prompt, nil)
	if err != nil {
		var rl ai.RateLimitError
		if errors.As(err, &rl) {
			writeError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Assistant is rate limited", err.Error())
			return
		}
		h.Logger.Error().Err(err).Str("dataset_id", d.ID).Msg("narrative generation failed")
		writeError(c, http.StatusBadGateway, "ASSISTANT_ERROR", "Narrative generation failed", err.Error())
		return
	}

	if err := h.Cache.Set(cacheKey, text); err != nil {
		h.Logger.Warn().Err(err).Msg("failed to cache narrative")
	}
	c.JSON(http.StatusOK, gin.H{
		"text":   text,
		"blocks": analytics.ClassifyNarrative(text),
		"cached": false,
	})
}
