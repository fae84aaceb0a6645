package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DemosCVV/Oge/internal/models"
)

// respondError maps the core error taxonomy to HTTP statuses.
// Validation 400, authorization 403, missing entities 404, policy
// refusals 409, expired flows 410, throttling 429; anything else is a
// system fault.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrUnknownProduct),
		errors.Is(err, models.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrPurchaseNotFound),
		errors.Is(err, models.ErrActorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyPending),
		errors.Is(err, models.ErrAlreadyDecided),
		errors.Is(err, models.ErrNotPending),
		errors.Is(err, models.ErrAttemptLimit),
		errors.Is(err, models.ErrDuplicateReceipt),
		errors.Is(err, models.ErrNoActiveFlow):
		status = http.StatusConflict
	case errors.Is(err, models.ErrFlowExpired):
		status = http.StatusGone
	case errors.Is(err, models.ErrRateLimited):
		status = http.StatusTooManyRequests
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
