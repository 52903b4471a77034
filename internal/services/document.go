package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veritalabs/supplement-verifier/internal/data/repos"
	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/platform/apierr"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

type DocumentService interface {
	Upload(ctx context.Context, batchID, filename, contentType string, data []byte) (*domain.Document, error)
}

type documentService struct {
	db           *gorm.DB
	log          *logger.Logger
	batchRepo    repos.BatchRepo
	documentRepo repos.DocumentRepo
}

func NewDocumentService(db *gorm.DB, baseLog *logger.Logger, batchRepo repos.BatchRepo, documentRepo repos.DocumentRepo) DocumentService {
	return &documentService{
		db:           db,
		log:          baseLog.With("service", "DocumentService"),
		batchRepo:    batchRepo,
		documentRepo: documentRepo,
	}
}

func (s *documentService) Upload(ctx context.Context, batchID, filename, contentType string, data []byte) (*domain.Document, error) {
	batch, err := s.batchRepo.GetByID(ctx, nil, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, apierr.Newf(http.StatusNotFound, "BATCH_NOT_FOUND", "Batch '%s' not found", batchID)
	}

	if filename == "" {
		filename = "document.pdf"
	}
	if contentType == "" {
		contentType = "application/pdf"
	}

	digest := sha256.Sum256(data)
	doc := &domain.Document{
		DocumentID:  uuid.New(),
		BatchID:     batch.BatchID,
		Filename:    filename,
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
		Data:        data,
		Fingerprint: "0x" + hex.EncodeToString(digest[:]),
	}
	if err := s.documentRepo.Create(ctx, nil, doc); err != nil {
		return nil, err
	}

	s.log.Info("Document uploaded",
		"batch_id", batch.BatchID,
		"document_id", doc.DocumentID,
		"fingerprint", doc.Fingerprint,
		"size_bytes", len(data),
	)
	return doc, nil
}
