package httpapi

import (
	"net/http"

	"github.com/dkrasnov/flashread/internal/common"
	"github.com/dkrasnov/flashread/internal/server/models"
	"github.com/dkrasnov/flashread/internal/server/services"
	"github.com/gin-gonic/gin"
)

type statsHandler struct {
	stats *services.StatsService
}

func (h *statsHandler) get(c *gin.Context) {
	s, err := h.stats.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": common.ErrorInternal.Error()})
		return
	}
	c.JSON(http.StatusOK, statsPayload{
		TotalWordsRead:          s.TotalWordsRead,
		TotalDocumentsCompleted: s.TotalDocumentsCompleted,
		CurrentStreak:           s.CurrentStreak,
		LastReadDate:            s.LastReadDate,
		StreakFreezeActive:      s.StreakFreezeActive,
		StreakFreezeUsedAt:      s.StreakFreezeUsedAt,
	})
}

func (h *statsHandler) save(c *gin.Context) {
	var req statsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.stats.Save(c.Request.Context(), &models.UserStats{
		UserID:                  currentUserID(c),
		TotalWordsRead:          req.TotalWordsRead,
		TotalDocumentsCompleted: req.TotalDocumentsCompleted,
		CurrentStreak:           req.CurrentStreak,
		LastReadDate:            req.LastReadDate,
		StreakFreezeActive:      req.StreakFreezeActive,
		StreakFreezeUsedAt:      req.StreakFreezeUsedAt,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": common.ErrorInternal.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *statsHandler) saveSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.stats.SaveSession(c.Request.Context(), &models.ReadingSession{
		UserID:     currentUserID(c),
		DocumentID: req.DocumentID,
		WordsRead:  req.WordsRead,
		DurationMs: req.DurationMs,
		AvgWPM:     req.AvgWPM,
		StartedAt:  parseTimestamp(req.StartedAt),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": common.ErrorInternal.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
