package services

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/veritalabs/supplement-verifier/internal/data/repos"
	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/platform/apierr"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

type RegisterBatchInput struct {
	BatchID        string
	ProductName    string
	SupplementType string
	Manufacturer   string
	ProductionDate time.Time
	ExpiresDate    *time.Time
}

type BatchService interface {
	Register(ctx context.Context, input RegisterBatchInput) (*domain.Batch, error)
	Get(ctx context.Context, batchID string) (*domain.Batch, error)
}

type batchService struct {
	db        *gorm.DB
	log       *logger.Logger
	batchRepo repos.BatchRepo
}

func NewBatchService(db *gorm.DB, baseLog *logger.Logger, batchRepo repos.BatchRepo) BatchService {
	return &batchService{
		db:        db,
		log:       baseLog.With("service", "BatchService"),
		batchRepo: batchRepo,
	}
}

func (s *batchService) Register(ctx context.Context, input RegisterBatchInput) (*domain.Batch, error) {
	existing, err := s.batchRepo.GetByID(ctx, nil, input.BatchID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apierr.Newf(http.StatusConflict, "BATCH_EXISTS", "Batch with ID '%s' already exists", input.BatchID)
	}

	batch := &domain.Batch{
		BatchID:        input.BatchID,
		ProductName:    input.ProductName,
		SupplementType: input.SupplementType,
		Manufacturer:   input.Manufacturer,
		ProductionDate: input.ProductionDate,
		ExpiresDate:    input.ExpiresDate,
		Status:         domain.BatchStatusDraft,
	}
	if err := s.batchRepo.Create(ctx, nil, batch); err != nil {
		return nil, err
	}

	s.log.Info("Batch registered", "batch_id", batch.BatchID)
	return batch, nil
}

func (s *batchService) Get(ctx context.Context, batchID string) (*domain.Batch, error) {
	batch, err := s.batchRepo.GetByID(ctx, nil, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, apierr.Newf(http.StatusNotFound, "BATCH_NOT_FOUND", "Batch '%s' not found", batchID)
	}
	return batch, nil
}
