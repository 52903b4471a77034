package services

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/veritalabs/supplement-verifier/internal/attestation"
	"github.com/veritalabs/supplement-verifier/internal/chain"
	"github.com/veritalabs/supplement-verifier/internal/data/repos"
	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/platform/apierr"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

// AttestationView is what an auditor needs to reproduce the published
// hash by hand: the exact canonical bytes and both digests.
type AttestationView struct {
	BatchID           string             `json:"batchId"`
	Status            domain.BatchStatus `json:"status"`
	CanonicalJSON     string             `json:"canonicalJson"`
	BatchIDHash       string             `json:"batchIdHash"`
	CanonicalJSONHash string             `json:"canonicalJsonHash"`
	TxHash            string             `json:"txHash,omitempty"`
}

type AttestationService interface {
	Get(ctx context.Context, batchID string) (*AttestationView, error)
}

type attestationService struct {
	db             *gorm.DB
	log            *logger.Logger
	batchRepo      repos.BatchRepo
	extractionRepo repos.ExtractionRepo
	builder        *attestation.Builder
}

func NewAttestationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	batchRepo repos.BatchRepo,
	extractionRepo repos.ExtractionRepo,
	builder *attestation.Builder,
) AttestationService {
	return &attestationService{
		db:             db,
		log:            baseLog.With("service", "AttestationService"),
		batchRepo:      batchRepo,
		extractionRepo: extractionRepo,
		builder:        builder,
	}
}

func (s *attestationService) Get(ctx context.Context, batchID string) (*AttestationView, error) {
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

	return &AttestationView{
		BatchID:           batch.BatchID,
		Status:            batch.Status,
		CanonicalJSON:     canonicalJSON,
		BatchIDHash:       chain.HashBatchID(batch.BatchID).Hex(),
		CanonicalJSONHash: chain.HashAttestation(canonicalJSON).Hex(),
		TxHash:            batch.TxHash,
	}, nil
}
