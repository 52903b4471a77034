package services

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/veritalabs/supplement-verifier/internal/attestation"
	"github.com/veritalabs/supplement-verifier/internal/chain"
	"github.com/veritalabs/supplement-verifier/internal/data/repos"
	"github.com/veritalabs/supplement-verifier/internal/platform/apierr"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

const (
	reasonNoEntry  = "No on-chain attestation found for this batch"
	reasonMismatch = "Hash mismatch: off-chain and on-chain hashes do not match"
)

// VerificationResult always carries both hashes so a caller can audit
// the comparison by hand. A negative verdict is a successful call, not
// an error.
type VerificationResult struct {
	Verified       bool    `json:"verified"`
	BatchID        string  `json:"batchId"`
	OffchainHash   string  `json:"offchainHash"`
	OnchainHash    *string `json:"onchainHash"`
	TxHash         *string `json:"txHash"`
	MismatchReason *string `json:"mismatchReason"`
}

type VerifyService interface {
	Verify(ctx context.Context, batchID string) (*VerificationResult, error)
}

type verifyService struct {
	db             *gorm.DB
	log            *logger.Logger
	batchRepo      repos.BatchRepo
	extractionRepo repos.ExtractionRepo
	builder        *attestation.Builder
	registry       chain.Registry
}

func NewVerifyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	batchRepo repos.BatchRepo,
	extractionRepo repos.ExtractionRepo,
	builder *attestation.Builder,
	registry chain.Registry,
) VerifyService {
	return &verifyService{
		db:             db,
		log:            baseLog.With("service", "VerifyService"),
		batchRepo:      batchRepo,
		extractionRepo: extractionRepo,
		builder:        builder,
		registry:       registry,
	}
}

func (s *verifyService) Verify(ctx context.Context, batchID string) (*VerificationResult, error) {
	batch, err := s.batchRepo.GetByID(ctx, nil, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, apierr.Newf(http.StatusNotFound, "BATCH_NOT_FOUND", "Batch '%s' not found", batchID)
	}

	extraction, err := s.extractionRepo.GetByBatchID(ctx, nil, batchID)
	if err != nil {
		return nil, err
	}
	if extraction == nil {
		return nil, apierr.Newf(http.StatusNotFound, "NOT_FOUND", "No extraction found for batch '%s'", batchID)
	}

	canonicalJSON, err := s.builder.CanonicalJSON(batch, extraction)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "INTERNAL_ERROR", err)
	}
	offchainHash := chain.HashAttestation(canonicalJSON)

	onchainHash, found, err := s.registry.Get(ctx, chain.HashBatchID(batch.BatchID))
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "CHAIN_ERROR", err)
	}

	result := &VerificationResult{
		BatchID:      batch.BatchID,
		OffchainHash: offchainHash.Hex(),
	}
	if batch.TxHash != "" {
		txHash := batch.TxHash
		result.TxHash = &txHash
	}

	switch {
	case !found:
		reason := reasonNoEntry
		result.MismatchReason = &reason
	case onchainHash != offchainHash:
		onchainHex := onchainHash.Hex()
		reason := reasonMismatch
		result.OnchainHash = &onchainHex
		result.MismatchReason = &reason
	default:
		onchainHex := onchainHash.Hex()
		result.OnchainHash = &onchainHex
		result.Verified = true
	}

	s.log.Debug("Verification completed",
		"batch_id", batch.BatchID,
		"verified", result.Verified,
	)
	return result, nil
}
