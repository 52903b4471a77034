package services

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/veritalabs/supplement-verifier/internal/domain"
	"github.com/veritalabs/supplement-verifier/internal/platform/apierr"
	"github.com/veritalabs/supplement-verifier/internal/platform/llm"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

// FieldExtractor turns lab-report text into the structured extraction
// result. The service treats it as a black box; swapping the model
// never touches the attestation pipeline.
type FieldExtractor interface {
	Extract(ctx context.Context, text string) (*domain.ExtractionFields, domain.ModelInfo, error)
}

const labReportPrompt = `You are a data extraction system for supplement lab reports (certificates of analysis).
Extract the requested fields from the report text exactly as printed. Do not infer values
that are not present; use null for anything missing. Dates must be formatted YYYY-MM-DD.
Each analyte and contaminant row carries a status of PASS, FAIL, or UNKNOWN based on the
report's own pass/fail indication. Set confidence between 0 and 1 to reflect how completely
and unambiguously the fields could be read.`

var extractionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"labName":             map[string]any{"type": []string{"string", "null"}},
		"reportDate":          map[string]any{"type": []string{"string", "null"}, "description": "YYYY-MM-DD"},
		"productOrSampleName": map[string]any{"type": []string{"string", "null"}},
		"lotOrBatchInReport":  map[string]any{"type": []string{"string", "null"}},
		"potency": map[string]any{
			"type": []string{"object", "null"},
			"properties": map[string]any{
				"name":   map[string]any{"type": []string{"string", "null"}},
				"amount": map[string]any{"type": []string{"string", "null"}},
				"unit":   map[string]any{"type": []string{"string", "null"}},
			},
		},
		"analytes":     map[string]any{"type": "array", "items": analyteSchema},
		"contaminants": map[string]any{"type": "array", "items": analyteSchema},
		"methods":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"notes":        map[string]any{"type": []string{"string", "null"}},
		"confidence":   map[string]any{"type": "number", "minimum": 0, "maximum": 1},
	},
	"required": []string{"confidence"},
}

var analyteSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":   map[string]any{"type": []string{"string", "null"}},
		"result": map[string]any{"type": []string{"string", "null"}},
		"unit":   map[string]any{"type": []string{"string", "null"}},
		"limit":  map[string]any{"type": []string{"string", "null"}},
		"status": map[string]any{"type": "string", "enum": []string{"PASS", "FAIL", "UNKNOWN"}},
	},
}

type llmFieldExtractor struct {
	log    *logger.Logger
	client llm.Client
	info   domain.ModelInfo
}

func NewLLMFieldExtractor(client llm.Client, modelName string, baseLog *logger.Logger) FieldExtractor {
	return &llmFieldExtractor{
		log:    baseLog.With("service", "FieldExtractor"),
		client: client,
		info:   domain.ModelInfo{ModelName: modelName, Version: "v1"},
	}
}

func (e *llmFieldExtractor) Extract(ctx context.Context, text string) (*domain.ExtractionFields, domain.ModelInfo, error) {
	raw, err := e.client.GenerateJSON(ctx, labReportPrompt, text, "ExtractionResult", extractionSchema)
	if err != nil {
		return nil, domain.ModelInfo{}, apierr.New(http.StatusBadGateway, "LLM_ERROR", err)
	}

	var fields domain.ExtractionFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, domain.ModelInfo{}, apierr.Newf(http.StatusUnprocessableEntity, "LLM_RESPONSE_INVALID", "LLM response did not match schema: %v", err)
	}
	if fields.Confidence < 0 || fields.Confidence > 1 {
		return nil, domain.ModelInfo{}, apierr.Newf(http.StatusUnprocessableEntity, "LLM_RESPONSE_INVALID", "confidence %v outside [0,1]", fields.Confidence)
	}
	normalizeFields(&fields)
	return &fields, e.info, nil
}

// mockFieldExtractor is the no-network provider used in development and
// tests: an empty, low-confidence result.
type mockFieldExtractor struct{}

func NewMockFieldExtractor() FieldExtractor {
	return &mockFieldExtractor{}
}

func (mockFieldExtractor) Extract(_ context.Context, _ string) (*domain.ExtractionFields, domain.ModelInfo, error) {
	fields := &domain.ExtractionFields{
		Analytes:     []domain.Analyte{},
		Contaminants: []domain.Analyte{},
		Methods:      []string{},
		Confidence:   0.1,
	}
	return fields, domain.ModelInfo{ModelName: "mock", Version: "0"}, nil
}

func normalizeFields(fields *domain.ExtractionFields) {
	if fields.Analytes == nil {
		fields.Analytes = []domain.Analyte{}
	}
	if fields.Contaminants == nil {
		fields.Contaminants = []domain.Analyte{}
	}
	if fields.Methods == nil {
		fields.Methods = []string{}
	}
	for i := range fields.Analytes {
		if fields.Analytes[i].Status == "" {
			fields.Analytes[i].Status = domain.AnalyteUnknown
		}
	}
	for i := range fields.Contaminants {
		if fields.Contaminants[i].Status == "" {
			fields.Contaminants[i].Status = domain.AnalyteUnknown
		}
	}
}
