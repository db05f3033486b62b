package httpapi

import (
	"errors"
	"net/http"

	"github.com/dkrasnov/flashread/internal/common"
	"github.com/dkrasnov/flashread/internal/server/models"
	"github.com/dkrasnov/flashread/internal/server/services"
	"github.com/gin-gonic/gin"
)

type documentHandler struct {
	documents *services.DocumentService
}

func (h *documentHandler) list(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": common.ErrorInternal.Error()})
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResponse(d))
	}
	c.JSON(http.StatusOK, out)
}

func (h *documentHandler) create(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc := &models.Document{
		UserID:        currentUserID(c),
		Title:         req.Title,
		Fingerprint:   req.Fingerprint,
		TotalWords:    req.TotalWords,
		BookmarkIndex: req.BookmarkIndex,
		LastReadAt:    parseTimestamp(req.LastReadAt),
	}
	created, err := h.documents.Create(c.Request.Context(), doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": common.ErrorInternal.Error()})
		return
	}
	c.JSON(http.StatusOK, toDocumentResponse(created))
}

func (h *documentHandler) updateProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.documents.UpdateProgress(c.Request.Context(), currentUserID(c), c.Param("id"),
		req.BookmarkIndex, parseTimestamp(req.LastReadAt))
	if err != nil {
		writeDocumentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *documentHandler) setFingerprint(c *gin.Context) {
	var req fingerprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.documents.SetFingerprint(c.Request.Context(), currentUserID(c), c.Param("id"), req.Fingerprint)
	if err != nil {
		writeDocumentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *documentHandler) delete(c *gin.Context) {
	err := h.documents.Delete(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		writeDocumentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeDocumentError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": common.ErrorNotFound.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": common.ErrorInternal.Error()})
}
