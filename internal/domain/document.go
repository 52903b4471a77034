package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is one uploaded lab-report file bound to a batch. Rows are
// immutable once created; the latest upload per batch is the one
// extraction reads.
type Document struct {
	DocumentID  uuid.UUID `gorm:"column:document_id;type:uuid;primaryKey" json:"documentId"`
	BatchID     string    `gorm:"column:batch_id;type:varchar(64);not null;index" json:"batchId"`
	Filename    string    `gorm:"column:filename;type:varchar(255);not null" json:"filename"`
	ContentType string    `gorm:"column:content_type;type:varchar(127);not null" json:"contentType"`
	UploadedAt  time.Time `gorm:"column:uploaded_at;not null" json:"uploadedAt"`
	Data        []byte    `gorm:"column:data;not null" json:"-"`
	// Fingerprint is "0x" + sha256 hex of the raw bytes.
	Fingerprint string `gorm:"column:fingerprint;type:varchar(66);not null" json:"fingerprint"`
}

func (Document) TableName() string { return "documents" }
