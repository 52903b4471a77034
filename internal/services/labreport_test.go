package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/veritalabs/supplement-verifier/internal/domain"
)

type stubLLMClient struct {
	raw json.RawMessage
	err error
}

func (s stubLLMClient) GenerateJSON(_ context.Context, _, _, _ string, _ map[string]any) (json.RawMessage, error) {
	return s.raw, s.err
}

func TestLLMFieldExtractorNormalizes(t *testing.T) {
	client := stubLLMClient{raw: json.RawMessage(`{
		"labName": "Eurofins",
		"analytes": [{"name": "EPA", "result": "420", "unit": "mg"}],
		"confidence": 0.9
	}`)}
	extractor := NewLLMFieldExtractor(client, "gpt-4o-mini", testLogger())

	fields, info, err := extractor.Extract(context.Background(), "report text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if info.ModelName != "gpt-4o-mini" {
		t.Fatalf("got model %s", info.ModelName)
	}
	if fields.Contaminants == nil || fields.Methods == nil {
		t.Fatal("absent lists not normalized to empty")
	}
	if fields.Analytes[0].Status != domain.AnalyteUnknown {
		t.Fatalf("missing status not defaulted: %s", fields.Analytes[0].Status)
	}
}

func TestLLMFieldExtractorRejectsBadConfidence(t *testing.T) {
	client := stubLLMClient{raw: json.RawMessage(`{"confidence": 1.5}`)}
	extractor := NewLLMFieldExtractor(client, "gpt-4o-mini", testLogger())

	_, _, err := extractor.Extract(context.Background(), "report text")
	requireAPIErr(t, err, http.StatusUnprocessableEntity, "LLM_RESPONSE_INVALID")
}

func TestLLMFieldExtractorRejectsMalformedJSON(t *testing.T) {
	client := stubLLMClient{raw: json.RawMessage(`{"confidence": `)}
	extractor := NewLLMFieldExtractor(client, "gpt-4o-mini", testLogger())

	_, _, err := extractor.Extract(context.Background(), "report text")
	requireAPIErr(t, err, http.StatusUnprocessableEntity, "LLM_RESPONSE_INVALID")
}

func TestLLMFieldExtractorWrapsClientError(t *testing.T) {
	client := stubLLMClient{err: errors.New("upstream timeout")}
	extractor := NewLLMFieldExtractor(client, "gpt-4o-mini", testLogger())

	_, _, err := extractor.Extract(context.Background(), "report text")
	requireAPIErr(t, err, http.StatusBadGateway, "LLM_ERROR")
}
