package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

type BatchRepo interface {
	Create(ctx context.Context, tx *gorm.DB, batch *domain.Batch) error
	GetByID(ctx context.Context, tx *gorm.DB, batchID string) (*domain.Batch, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, batchID string, status domain.BatchStatus) error
	// MarkPublished records the chain metadata and flips the status to
	// PUBLISHED in a single update.
	MarkPublished(ctx context.Context, tx *gorm.DB, batchID, chainName, txHash, publisherAddress string, publishedAt time.Time) error
}

type batchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBatchRepo(db *gorm.DB, baseLog *logger.Logger) BatchRepo {
	return &batchRepo{db: db, log: baseLog.With("repo", "BatchRepo")}
}

func (r *batchRepo) Create(ctx context.Context, tx *gorm.DB, batch *domain.Batch) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(batch).Error
}

func (r *batchRepo) GetByID(ctx context.Context, tx *gorm.DB, batchID string) (*domain.Batch, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var batch domain.Batch
	err := transaction.WithContext(ctx).
		Where("batch_id = ?", batchID).
		First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, batchID string, status domain.BatchStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Batch{}).
		Where("batch_id = ?", batchID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *batchRepo) MarkPublished(ctx context.Context, tx *gorm.DB, batchID, chainName, txHash, publisherAddress string, publishedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&domain.Batch{}).
		Where("batch_id = ?", batchID).
		Updates(map[string]interface{}{
			"status":            domain.BatchStatusPublished,
			"chain":             chainName,
			"tx_hash":           txHash,
			"publisher_address": publisherAddress,
			"published_at":      publishedAt,
			"updated_at":        time.Now().UTC(),
		}).Error
}
