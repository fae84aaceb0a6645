package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DemosCVV/Oge/internal/interfaces"
	"github.com/DemosCVV/Oge/internal/models"
	"github.com/DemosCVV/Oge/internal/service"
)

type PurchaseHandler struct {
	repo interfaces.PurchaseRepository
	conv *service.Conversation
	log  *zap.Logger
}

func NewPurchaseHandler(repo interfaces.PurchaseRepository, conv *service.Conversation, log *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{repo: repo, conv: conv, log: log}
}

func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}

	purchase, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

type decisionRequest struct {
	OperatorID int64           `json:"operator_id"`
	Decision   models.Decision `json:"decision"`
}

func (h *PurchaseHandler) Decide(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase id"})
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	purchase, err := h.conv.HandleDecision(c.Request.Context(), models.OperatorDecisionEvent{
		OperatorID: req.OperatorID,
		PurchaseID: id,
		Decision:   req.Decision,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "applied",
		"purchase": purchase,
	})
}
