package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/platform/apierr"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

func mustDate(s string) time.Time {
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return parsed
}

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func requireAPIErr(t *testing.T, err error, status int, code string) {
	t.Helper()
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("got %v, want *apierr.Error", err)
	}
	if apiErr.Status != status || apiErr.Code != code {
		t.Fatalf("got status=%d code=%s, want status=%d code=%s", apiErr.Status, apiErr.Code, status, code)
	}
}

type stubBatchRepo struct {
	batches map[string]*domain.Batch
}

func newStubBatchRepo(batches ...*domain.Batch) *stubBatchRepo {
	r := &stubBatchRepo{batches: make(map[string]*domain.Batch)}
	for _, b := range batches {
		r.batches[b.BatchID] = b
	}
	return r
}

func (r *stubBatchRepo) Create(_ context.Context, _ *gorm.DB, batch *domain.Batch) error {
	r.batches[batch.BatchID] = batch
	return nil
}

func (r *stubBatchRepo) GetByID(_ context.Context, _ *gorm.DB, batchID string) (*domain.Batch, error) {
	return r.batches[batchID], nil
}

func (r *stubBatchRepo) UpdateStatus(_ context.Context, _ *gorm.DB, batchID string, status domain.BatchStatus) error {
	b, ok := r.batches[batchID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Status = status
	return nil
}

func (r *stubBatchRepo) MarkPublished(_ context.Context, _ *gorm.DB, batchID, chainName, txHash, publisherAddress string, publishedAt time.Time) error {
	b, ok := r.batches[batchID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Status = domain.BatchStatusPublished
	b.Chain = chainName
	b.TxHash = txHash
	b.PublisherAddress = publisherAddress
	b.PublishedAt = &publishedAt
	return nil
}

type stubDocumentRepo struct {
	docs []*domain.Document
}

func (r *stubDocumentRepo) Create(_ context.Context, _ *gorm.DB, doc *domain.Document) error {
	r.docs = append(r.docs, doc)
	return nil
}

func (r *stubDocumentRepo) LatestByBatchID(_ context.Context, _ *gorm.DB, batchID string) (*domain.Document, error) {
	var matches []*domain.Document
	for _, d := range r.docs {
		if d.BatchID == batchID {
			matches = append(matches, d)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].UploadedAt.After(matches[j].UploadedAt)
	})
	return matches[0], nil
}

type stubExtractionRepo struct {
	extractions map[string]*domain.Extraction
}

func newStubExtractionRepo(extractions ...*domain.Extraction) *stubExtractionRepo {
	r := &stubExtractionRepo{extractions: make(map[string]*domain.Extraction)}
	for _, e := range extractions {
		r.extractions[e.BatchID] = e
	}
	return r
}

func (r *stubExtractionRepo) Upsert(_ context.Context, _ *gorm.DB, extraction *domain.Extraction) error {
	r.extractions[extraction.BatchID] = extraction
	return nil
}

func (r *stubExtractionRepo) GetByBatchID(_ context.Context, _ *gorm.DB, batchID string) (*domain.Extraction, error) {
	return r.extractions[batchID], nil
}

type stubTextExtractor struct {
	text string
	err  error
}

func (s stubTextExtractor) Text(_ []byte) (string, error) {
	return s.text, s.err
}
