package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/laxmielectronics/site-api/internal/models"
	"github.com/laxmielectronics/site-api/internal/services"
	apperrors "github.com/laxmielectronics/site-api/pkg/errors"
)

type EmailHandler struct {
	service services.RelayServiceInterface
}

func NewEmailHandler(service services.RelayServiceInterface) *EmailHandler {
	return &EmailHandler{service: service}
}

// SendEmail relays a pre-rendered admin/customer message pair
func (h *EmailHandler) SendEmail(c *gin.Context) {
	var req models.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// An empty body carries neither message
		if errors.Is(err, io.EOF) {
			respondError(c, http.StatusBadRequest, models.MessageMissingEmails, err)
			return
		}
		if malformedAttachmentMetadata(err) {
			respondErrorWithDetails(c, http.StatusInternalServerError, models.MessageInternalError, err)
			return
		}
		respondErrorWithDetails(c, bindingStatus(err), bindingErrorMessage(err), err)
		return
	}

	result, err := h.service.Relay(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingEmails):
			respondError(c, http.StatusBadRequest, models.MessageMissingEmails, err)
		case errors.Is(err, services.ErrMissingAddresses):
			respondError(c, http.StatusBadRequest, models.MessageMissingAddresses, err)
		case apperrors.Is(err, apperrors.ErrInvalidInput):
			respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request", err)
		default:
			respondErrorWithDetails(c, http.StatusInternalServerError, models.MessageInternalError, err)
		}
		return
	}

	if !result.Success {
		attachError(c, apperrors.ErrDeliveryFailed)
		c.JSON(http.StatusInternalServerError, result)
		return
	}

	c.JSON(http.StatusOK, result)
}
