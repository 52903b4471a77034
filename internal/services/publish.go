package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/veritalabs/supplement-verifier/internal/attestation"
	"github.com/veritalabs/supplement-verifier/internal/chain"
	"github.com/veritalabs/supplement-verifier/internal/data/repos"
	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/platform/apierr"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

type PublishResult struct {
	BatchID     string    `json:"batchId"`
	TxHash      string    `json:"txHash"`
	BlockNumber uint64    `json:"blockNumber"`
	PublishedAt time.Time `json:"publishedAt"`
}

// PublishService drives the READY -> PUBLISHED transition: validate the
// batch, derive both hashes, submit to the registry, wait for
// confirmation, then record the chain metadata. A ledger failure leaves
// the batch untouched in READY, so the whole operation is safe to
// re-invoke.
type PublishService interface {
	Publish(ctx context.Context, batchID string) (*PublishResult, error)
}

type publishService struct {
	db             *gorm.DB
	log            *logger.Logger
	batchRepo      repos.BatchRepo
	extractionRepo repos.ExtractionRepo
	builder        *attestation.Builder
	registry       chain.Registry
	chainName      string
}

func NewPublishService(
	db *gorm.DB,
	baseLog *logger.Logger,
	batchRepo repos.BatchRepo,
	extractionRepo repos.ExtractionRepo,
	builder *attestation.Builder,
	registry chain.Registry,
	chainName string,
) PublishService {
	return &publishService{
		db:             db,
		log:            baseLog.With("service", "PublishService"),
		batchRepo:      batchRepo,
		extractionRepo: extractionRepo,
		builder:        builder,
		registry:       registry,
		chainName:      chainName,
	}
}

func (s *publishService) Publish(ctx context.Context, batchID string) (*PublishResult, error) {
	batch, err := s.batchRepo.GetByID(ctx, nil, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, apierr.Newf(http.StatusNotFound, "BATCH_NOT_FOUND", "Batch '%s' not found", batchID)
	}
	switch batch.Status {
	case domain.BatchStatusReady:
	case domain.BatchStatusPublished:
		return nil, apierr.Newf(http.StatusConflict, "ALREADY_PUBLISHED", "Batch '%s' is already published", batchID)
	default:
		return nil, apierr.Newf(http.StatusBadRequest, "ATTESTATION_NOT_READY", "Attestation data not available. Extract data first.")
	}

	extraction, err := s.extractionRepo.GetByBatchID(ctx, nil, batchID)
	if err != nil {
		return nil, err
	}
	if extraction == nil {
		// READY without an extraction record means the store is
		// inconsistent; refuse rather than publish an empty attestation.
		return nil, apierr.Newf(http.StatusNotFound, "NOT_FOUND", "No extraction found for batch '%s'", batchID)
	}

	keyHash := chain.HashBatchID(batch.BatchID)
	canonicalJSON, err := s.builder.CanonicalJSON(batch, extraction)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "INTERNAL_ERROR", err)
	}
	valueHash := chain.HashAttestation(canonicalJSON)

	txHash, err := s.registry.Publish(ctx, keyHash, valueHash)
	if err != nil {
		if errors.Is(err, chain.ErrAlreadyPublished) {
			return nil, apierr.New(http.StatusConflict, "ALREADY_PUBLISHED", err)
		}
		return nil, apierr.New(http.StatusBadGateway, "CHAIN_ERROR", err)
	}

	receipt, err := s.registry.WaitReceipt(ctx, txHash)
	if err != nil {
		// Batch stays READY; the caller may retry the whole publish.
		return nil, apierr.New(http.StatusBadGateway, "CHAIN_ERROR", err)
	}

	publishedAt := time.Now().UTC()
	if err := s.batchRepo.MarkPublished(ctx, nil, batch.BatchID, s.chainName, receipt.TxHash, s.registry.PublisherAddress(), publishedAt); err != nil {
		return nil, err
	}

	s.log.Info("Batch published",
		"batch_id", batch.BatchID,
		"tx_hash", receipt.TxHash,
		"block_number", receipt.BlockNumber,
		"key_hash", keyHash.Hex(),
		"value_hash", valueHash.Hex(),
	)
	return &PublishResult{
		BatchID:     batch.BatchID,
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
		PublishedAt: publishedAt,
	}, nil
}
