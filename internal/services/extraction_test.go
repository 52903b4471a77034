package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/veritalabs/supplement-verifier/internal/domain"
)

func readyPipeline(batch *domain.Batch, textErr error) (ExtractionService, *stubBatchRepo, *stubExtractionRepo) {
	batchRepo := newStubBatchRepo(batch)
	docRepo := &stubDocumentRepo{docs: []*domain.Document{{
		BatchID:     batch.BatchID,
		Filename:    "coa.pdf",
		UploadedAt:  time.Now().UTC(),
		Data:        []byte("%PDF"),
		Fingerprint: "0xfeed",
	}}}
	extractionRepo := newStubExtractionRepo()
	svc := NewExtractionService(
		nil, testLogger(),
		batchRepo, docRepo, extractionRepo,
		stubTextExtractor{text: "Lab report text", err: textErr},
		NewMockFieldExtractor(),
	)
	return svc, batchRepo, extractionRepo
}

func TestExtractStoresResultAndMarksReady(t *testing.T) {
	batch := &domain.Batch{BatchID: "B1", Status: domain.BatchStatusDraft}
	svc, batchRepo, extractionRepo := readyPipeline(batch, nil)

	extraction, err := svc.Run(context.Background(), "B1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if extraction.DocumentFingerprint != "0xfeed" {
		t.Fatalf("got fingerprint %s, want 0xfeed", extraction.DocumentFingerprint)
	}
	if !strings.Contains(string(extraction.ExtractedFields), `"confidence":0.1`) {
		t.Fatalf("extracted fields missing confidence: %s", extraction.ExtractedFields)
	}
	if batchRepo.batches["B1"].Status != domain.BatchStatusReady {
		t.Fatalf("got status %s, want READY", batchRepo.batches["B1"].Status)
	}
	if extractionRepo.extractions["B1"] == nil {
		t.Fatal("extraction not persisted")
	}
}

func TestExtractOverwritesPriorResult(t *testing.T) {
	batch := &domain.Batch{BatchID: "B1", Status: domain.BatchStatusReady}
	svc, _, extractionRepo := readyPipeline(batch, nil)
	extractionRepo.extractions["B1"] = &domain.Extraction{
		BatchID:             "B1",
		DocumentFingerprint: "0xold",
	}

	if _, err := svc.Run(context.Background(), "B1"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := extractionRepo.extractions["B1"].DocumentFingerprint; got != "0xfeed" {
		t.Fatalf("prior extraction not overwritten: %s", got)
	}
}

func TestExtractPublishedBatchRejected(t *testing.T) {
	batch := &domain.Batch{BatchID: "B1", Status: domain.BatchStatusPublished}
	svc, _, _ := readyPipeline(batch, nil)

	_, err := svc.Run(context.Background(), "B1")
	requireAPIErr(t, err, http.StatusConflict, "ALREADY_PUBLISHED")
}

func TestExtractWithoutDocument(t *testing.T) {
	batchRepo := newStubBatchRepo(&domain.Batch{BatchID: "B1"})
	svc := NewExtractionService(
		nil, testLogger(),
		batchRepo, &stubDocumentRepo{}, newStubExtractionRepo(),
		stubTextExtractor{text: "text"},
		NewMockFieldExtractor(),
	)
	_, err := svc.Run(context.Background(), "B1")
	requireAPIErr(t, err, http.StatusBadRequest, "NO_DOCUMENT")
}

func TestExtractUnreadableDocument(t *testing.T) {
	batch := &domain.Batch{BatchID: "B1", Status: domain.BatchStatusDraft}
	svc, _, _ := readyPipeline(batch, errors.New("broken xref table"))

	_, err := svc.Run(context.Background(), "B1")
	requireAPIErr(t, err, http.StatusUnprocessableEntity, "DOCUMENT_UNREADABLE")
}
