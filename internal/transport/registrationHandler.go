package transport

import (
	"net/http"

	"github.com/anna199/TeachTogether/internal/entity"
	"github.com/anna199/TeachTogether/internal/service"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	registrationService service.RegistrationService
}

func NewRegistrationHandler(registrationService service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

func (h *RegistrationHandler) Register(c *gin.Context) {
	var req entity.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadBody(c, err)
		return
	}

	event, err := h.registrationService.Register(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *RegistrationHandler) CancelRegistration(c *gin.Context) {
	event, err := h.registrationService.CancelRegistration(
		c.Request.Context(),
		c.Param("id"),
		c.Param("participantEmail"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}
