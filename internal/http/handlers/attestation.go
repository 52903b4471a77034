package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/veritalabs/supplement-verifier/internal/http/response"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
	"github.com/veritalabs/supplement-verifier/internal/services"
)

type AttestationHandler struct {
	log          *logger.Logger
	attestations services.AttestationService
	publisher    services.PublishService
}

func NewAttestationHandler(
	log *logger.Logger,
	attestations services.AttestationService,
	publisher services.PublishService,
) *AttestationHandler {
	return &AttestationHandler{
		log:          log.With("handler", "AttestationHandler"),
		attestations: attestations,
		publisher:    publisher,
	}
}

// Get handles GET /batches/:batchId/attestation.
func (h *AttestationHandler) Get(c *gin.Context) {
	view, err := h.attestations.Get(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, view)
}

// Publish handles POST /batches/:batchId/publish.
func (h *AttestationHandler) Publish(c *gin.Context) {
	result, err := h.publisher.Publish(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, result)
}
