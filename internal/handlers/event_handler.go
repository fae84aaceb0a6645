package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DemosCVV/Oge/internal/models"
	"github.com/DemosCVV/Oge/internal/service"
)

// EventHandler translates chat-gateway HTTP calls into conversation
// events.
type EventHandler struct {
	conv *service.Conversation
	log  *zap.Logger
}

func NewEventHandler(conv *service.Conversation, log *zap.Logger) *EventHandler {
	return &EventHandler{conv: conv, log: log}
}

func (h *EventHandler) StartPurchase(c *gin.Context) {
	var ev models.StartPurchaseEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	purchase, err := h.conv.HandleStart(c.Request.Context(), ev)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   "awaiting_receipt",
		"purchase": purchase,
	})
}

func (h *EventHandler) SubmitReceipt(c *gin.Context) {
	var ev models.SubmitReceiptEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	remaining, err := h.conv.HandleReceipt(c.Request.Context(), ev)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "accepted",
		"attempts_remaining": remaining,
	})
}

func (h *EventHandler) CancelPending(c *gin.Context) {
	var ev models.CancelPendingEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.conv.HandleCancel(c.Request.Context(), ev); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "canceled"})
}

func (h *EventHandler) Text(c *gin.Context) {
	var ev models.TextEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	next, err := h.conv.HandleText(c.Request.Context(), ev)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": next})
}
