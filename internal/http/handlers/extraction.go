package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/veritalabs/supplement-verifier/internal/http/response"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
	"github.com/veritalabs/supplement-verifier/internal/services"
)

type ExtractionHandler struct {
	log         *logger.Logger
	extractions services.ExtractionService
}

func NewExtractionHandler(log *logger.Logger, extractions services.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{
		log:         log.With("handler", "ExtractionHandler"),
		extractions: extractions,
	}
}

// Extract handles POST /batches/:batchId/extract.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	extraction, err := h.extractions.Run(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}

	response.RespondOK(c, gin.H{
		"batchId":             extraction.BatchID,
		"extractedFields":     json.RawMessage(extraction.ExtractedFields),
		"modelInfo":           json.RawMessage(extraction.ModelInfo),
		"extractedAt":         extraction.ExtractedAt,
		"documentFingerprint": extraction.DocumentFingerprint,
	})
}
