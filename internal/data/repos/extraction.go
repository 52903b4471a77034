package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

type ExtractionRepo interface {
	// Upsert stores the extraction for its batch, overwriting any
	// previous result rather than duplicating it.
	Upsert(ctx context.Context, tx *gorm.DB, extraction *domain.Extraction) error
	GetByBatchID(ctx context.Context, tx *gorm.DB, batchID string) (*domain.Extraction, error)
}

type extractionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExtractionRepo(db *gorm.DB, baseLog *logger.Logger) ExtractionRepo {
	return &extractionRepo{db: db, log: baseLog.With("repo", "ExtractionRepo")}
}

func (r *extractionRepo) Upsert(ctx context.Context, tx *gorm.DB, extraction *domain.Extraction) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "batch_id"}},
			UpdateAll: true,
		}).
		Create(extraction).Error
}

func (r *extractionRepo) GetByBatchID(ctx context.Context, tx *gorm.DB, batchID string) (*domain.Extraction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var extraction domain.Extraction
	err := transaction.WithContext(ctx).
		Where("batch_id = ?", batchID).
		First(&extraction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &extraction, nil
}
