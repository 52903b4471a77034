package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/veritalabs/supplement-verifier/internal/http/response"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
	"github.com/veritalabs/supplement-verifier/internal/services"
)

type VerifyHandler struct {
	log      *logger.Logger
	verifier services.VerifyService
}

func NewVerifyHandler(log *logger.Logger, verifier services.VerifyService) *VerifyHandler {
	return &VerifyHandler{
		log:      log.With("handler", "VerifyHandler"),
		verifier: verifier,
	}
}

// Verify handles GET /batches/:batchId/verify. Public: no API key.
func (h *VerifyHandler) Verify(c *gin.Context) {
	result, err := h.verifier.Verify(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, result)
}
