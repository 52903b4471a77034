package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/veritalabs/supplement-verifier/internal/data/repos"
	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/platform/apierr"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
	"github.com/veritalabs/supplement-verifier/internal/platform/pdftext"
)

type ExtractionService interface {
	// Run extracts structured fields from the batch's latest document,
	// stores the result (overwriting any prior extraction), and moves
	// the batch to READY.
	Run(ctx context.Context, batchID string) (*domain.Extraction, error)
}

type extractionService struct {
	db             *gorm.DB
	log            *logger.Logger
	batchRepo      repos.BatchRepo
	documentRepo   repos.DocumentRepo
	extractionRepo repos.ExtractionRepo
	textExtractor  pdftext.Extractor
	fieldExtractor FieldExtractor
}

func NewExtractionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	batchRepo repos.BatchRepo,
	documentRepo repos.DocumentRepo,
	extractionRepo repos.ExtractionRepo,
	textExtractor pdftext.Extractor,
	fieldExtractor FieldExtractor,
) ExtractionService {
	return &extractionService{
		db:             db,
		log:            baseLog.With("service", "ExtractionService"),
		batchRepo:      batchRepo,
		documentRepo:   documentRepo,
		extractionRepo: extractionRepo,
		textExtractor:  textExtractor,
		fieldExtractor: fieldExtractor,
	}
}

func (s *extractionService) Run(ctx context.Context, batchID string) (*domain.Extraction, error) {
	batch, err := s.batchRepo.GetByID(ctx, nil, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, apierr.Newf(http.StatusNotFound, "BATCH_NOT_FOUND", "Batch '%s' not found", batchID)
	}
	if batch.Status == domain.BatchStatusPublished {
		// Re-extraction would regress a published batch to READY;
		// status only moves forward.
		return nil, apierr.Newf(http.StatusConflict, "ALREADY_PUBLISHED", "Batch '%s' is already published", batchID)
	}

	document, err := s.documentRepo.LatestByBatchID(ctx, nil, batchID)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, apierr.Newf(http.StatusBadRequest, "NO_DOCUMENT", "No document found for batch '%s'", batchID)
	}

	text, err := s.textExtractor.Text(document.Data)
	if err != nil {
		return nil, apierr.New(http.StatusUnprocessableEntity, "DOCUMENT_UNREADABLE", err)
	}

	fields, modelInfo, err := s.fieldExtractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal extracted fields: %w", err)
	}
	modelInfoJSON, err := json.Marshal(modelInfo)
	if err != nil {
		return nil, fmt.Errorf("marshal model info: %w", err)
	}

	extraction := &domain.Extraction{
		BatchID:             batch.BatchID,
		ExtractedFields:     fieldsJSON,
		ModelInfo:           modelInfoJSON,
		ExtractedAt:         time.Now().UTC(),
		DocumentFingerprint: document.Fingerprint,
	}
	if err := s.extractionRepo.Upsert(ctx, nil, extraction); err != nil {
		return nil, err
	}
	if err := s.batchRepo.UpdateStatus(ctx, nil, batch.BatchID, domain.BatchStatusReady); err != nil {
		return nil, err
	}

	s.log.Info("Extraction stored",
		"batch_id", batch.BatchID,
		"document_fingerprint", document.Fingerprint,
		"model", modelInfo.ModelName,
		"confidence", fields.Confidence,
	)
	return extraction, nil
}
