package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DemosCVV/Oge/internal/service"
)

type AdminHandler struct {
	conv *service.Conversation
	log  *zap.Logger
}

func NewAdminHandler(conv *service.Conversation, log *zap.Logger) *AdminHandler {
	return &AdminHandler{conv: conv, log: log}
}

type adminRequest struct {
	OperatorID int64 `json:"operator_id"`
}

func (h *AdminHandler) EnterFlow(c *gin.Context) {
	var req adminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.conv.EnterAdminFlow(c.Request.Context(), req.OperatorID, c.Param("flow")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "flow entered", "flow": c.Param("flow")})
}

type broadcastConfirmRequest struct {
	OperatorID int64 `json:"operator_id"`
	Confirm    bool  `json:"confirm"`
}

func (h *AdminHandler) ConfirmBroadcast(c *gin.Context) {
	var req broadcastConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.conv.ConfirmBroadcast(c.Request.Context(), req.OperatorID, req.Confirm)
	if err != nil {
		respondError(c, err)
		return
	}

	if !req.Confirm {
		c.JSON(http.StatusOK, gin.H{"status": "canceled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent", "result": result})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	operatorID, err := strconv.ParseInt(c.Query("operator_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid operator id"})
		return
	}

	stats, err := h.conv.Stats(c.Request.Context(), operatorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
