package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/http/response"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
	"github.com/veritalabs/supplement-verifier/internal/services"
)

const dateLayout = "2006-01-02"

type BatchHandler struct {
	log     *logger.Logger
	batches services.BatchService
}

func NewBatchHandler(log *logger.Logger, batches services.BatchService) *BatchHandler {
	return &BatchHandler{
		log:     log.With("handler", "BatchHandler"),
		batches: batches,
	}
}

type registerBatchRequest struct {
	BatchID        string  `json:"batchId"`
	ProductName    string  `json:"productName"`
	SupplementType string  `json:"supplementType"`
	Manufacturer   string  `json:"manufacturer"`
	ProductionDate string  `json:"productionDate"`
	ExpiresDate    *string `json:"expiresDate"`
}

type batchView struct {
	BatchID        string     `json:"batchId"`
	ProductName    string     `json:"productName"`
	SupplementType string     `json:"supplementType"`
	Manufacturer   string     `json:"manufacturer"`
	ProductionDate string     `json:"productionDate"`
	ExpiresDate    *string    `json:"expiresDate"`
	Status         string     `json:"status"`
	Chain          string     `json:"chain,omitempty"`
	TxHash         string     `json:"txHash,omitempty"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func newBatchView(b *domain.Batch) batchView {
	view := batchView{
		BatchID:        b.BatchID,
		ProductName:    b.ProductName,
		SupplementType: b.SupplementType,
		Manufacturer:   b.Manufacturer,
		ProductionDate: b.ProductionDate.Format(dateLayout),
		Status:         string(b.Status),
		Chain:          b.Chain,
		TxHash:         b.TxHash,
		PublishedAt:    b.PublishedAt,
		CreatedAt:      b.CreatedAt,
	}
	if b.ExpiresDate != nil {
		expires := b.ExpiresDate.Format(dateLayout)
		view.ExpiresDate = &expires
	}
	return view
}

// Register handles POST /batches.
func (h *BatchHandler) Register(c *gin.Context) {
	var req registerBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New("Invalid request body"))
		return
	}

	req.BatchID = strings.TrimSpace(req.BatchID)
	if req.BatchID == "" || req.ProductName == "" || req.Manufacturer == "" {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New("batchId, productName, and manufacturer are required"))
		return
	}

	productionDate, err := time.Parse(dateLayout, req.ProductionDate)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New("productionDate must be formatted as YYYY-MM-DD"))
		return
	}
	var expiresDate *time.Time
	if req.ExpiresDate != nil && *req.ExpiresDate != "" {
		parsed, err := time.Parse(dateLayout, *req.ExpiresDate)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", errors.New("expiresDate must be formatted as YYYY-MM-DD"))
			return
		}
		expiresDate = &parsed
	}

	batch, err := h.batches.Register(c.Request.Context(), services.RegisterBatchInput{
		BatchID:        req.BatchID,
		ProductName:    req.ProductName,
		SupplementType: req.SupplementType,
		Manufacturer:   req.Manufacturer,
		ProductionDate: productionDate,
		ExpiresDate:    expiresDate,
	})
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondCreated(c, newBatchView(batch))
}

// Get handles GET /batches/:batchId.
func (h *BatchHandler) Get(c *gin.Context) {
	batch, err := h.batches.Get(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, newBatchView(batch))
}
