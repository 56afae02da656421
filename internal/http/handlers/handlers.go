package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/salespulse/backend/internal/ai"
	"github.com/salespulse/backend/internal/analytics"
	"github.com/salespulse/backend/internal/kvstore"
	"github.com/salespulse/backend/internal/models"
	"github.com/salespulse/backend/internal/roster"
	"github.com/salespulse/backend/internal/store"
)

type Handler struct {
	Store       *store.Store
	Engine      analytics.Engine
	Assistant   ai.Assistant
	Cache       kvstore.Store
	Validator   *validator.Validate
	Logger      zerolog.Logger
	AdminKey    string
	TrendMonths int

	// Now is the injected clock; nil falls back to the system clock.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "datasets": h.Store.Count()})
}

// @Summary List datasets
// @Tags datasets
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/datasets [get]
func (h *Handler) DatasetsList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Store.ListDatasets()})
}

func (h *Handler) DatasetDetails(c *gin.Context) {
	d, ok := h.dataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, store.Summarize(d))
}

func (h *Handler) DatasetDelete(c *gin.Context) {
	if err := h.Store.DeleteDataset(c.Param("id")); err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Dataset not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// dataset loads the dataset named by the :id path param, writing the error
// response itself when it is missing.
func (h *Handler) dataset(c *gin.Context) (models.Dataset, bool) {
	d, err := h.Store.GetDataset(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Dataset not found", nil)
		} else {
			writeError(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load dataset", err.Error())
		}
		return models.Dataset{}, false
	}
	return d, true
}

func (h *Handler) rosters(d models.Dataset) roster.Rosters {
	return roster.Rosters{Teams: d.Teams, SeniorAgents: d.SeniorAgents}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
