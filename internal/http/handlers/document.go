package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritalabs/supplement-verifier/internal/http/response"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
	"github.com/veritalabs/supplement-verifier/internal/services"
)

// Uploads are held in memory before storage; 20MB is plenty for a lab
// report PDF.
const maxUploadBytes = 20 << 20

type DocumentHandler struct {
	log       *logger.Logger
	documents services.DocumentService
}

func NewDocumentHandler(log *logger.Logger, documents services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		log:       log.With("handler", "DocumentHandler"),
		documents: documents,
	}
}

// Upload handles POST /batches/:batchId/documents (multipart, field "file").
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New("Multipart field 'file' is required"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New("File exceeds the 20MB upload limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	if len(data) > maxUploadBytes {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New("File exceeds the 20MB upload limit"))
		return
	}

	doc, err := h.documents.Upload(
		c.Request.Context(),
		c.Param("batchId"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}

	response.RespondCreated(c, gin.H{
		"documentId":  doc.DocumentID,
		"batchId":     doc.BatchID,
		"filename":    doc.Filename,
		"contentType": doc.ContentType,
		"fingerprint": doc.Fingerprint,
		"uploadedAt":  doc.UploadedAt,
	})
}
