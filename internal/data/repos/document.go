package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

type DocumentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, doc *domain.Document) error
	// LatestByBatchID returns the most recently uploaded document for a
	// batch, or nil when none exists.
	LatestByBatchID(ctx context.Context, tx *gorm.DB, batchID string) (*domain.Document, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

func (r *documentRepo) Create(ctx context.Context, tx *gorm.DB, doc *domain.Document) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(doc).Error
}

func (r *documentRepo) LatestByBatchID(ctx context.Context, tx *gorm.DB, batchID string) (*domain.Document, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var doc domain.Document
	err := transaction.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("uploaded_at DESC").
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
