package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Extraction holds the structured result derived from a batch's latest
// document. At most one row per batch; re-extraction overwrites it.
type Extraction struct {
	BatchID         string         `gorm:"column:batch_id;type:varchar(64);primaryKey" json:"batchId"`
	ExtractedFields datatypes.JSON `gorm:"column:extracted_fields;not null" json:"extractedFields"`
	ModelInfo       datatypes.JSON `gorm:"column:model_info;not null" json:"modelInfo"`
	ExtractedAt     time.Time      `gorm:"column:extracted_at;not null" json:"extractedAt"`
	// DocumentFingerprint is the fingerprint of the document the fields
	// were derived from, carried into the canonical attestation.
	DocumentFingerprint string `gorm:"column:document_fingerprint;type:varchar(66);not null" json:"documentFingerprint"`
}

func (Extraction) TableName() string { return "extractions" }

type AnalyteStatus string

const (
	AnalytePass    AnalyteStatus = "PASS"
	AnalyteFail    AnalyteStatus = "FAIL"
	AnalyteUnknown AnalyteStatus = "UNKNOWN"
)

type Potency struct {
	Name   *string `json:"name"`
	Amount *string `json:"amount"`
	Unit   *string `json:"unit"`
}

type Analyte struct {
	Name   *string       `json:"name"`
	Result *string       `json:"result"`
	Unit   *string       `json:"unit"`
	Limit  *string       `json:"limit"`
	Status AnalyteStatus `json:"status"`
}

// ExtractionFields is the structured lab-report result in its external
// naming convention. Every field is emitted, absent values as null;
// the stored JSON of this struct is what the canonical encoder reads.
type ExtractionFields struct {
	LabName             *string   `json:"labName"`
	ReportDate          *string   `json:"reportDate"`
	ProductOrSampleName *string   `json:"productOrSampleName"`
	LotOrBatchInReport  *string   `json:"lotOrBatchInReport"`
	Potency             *Potency  `json:"potency"`
	Analytes            []Analyte `json:"analytes"`
	Contaminants        []Analyte `json:"contaminants"`
	Methods             []string  `json:"methods"`
	Notes               *string   `json:"notes"`
	Confidence          float64   `json:"confidence"`
}

type ModelInfo struct {
	ModelName string `json:"modelName"`
	Version   string `json:"version"`
}
