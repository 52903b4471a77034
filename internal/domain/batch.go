package domain

import "time"

type BatchStatus string

const (
	BatchStatusDraft     BatchStatus = "DRAFT"
	BatchStatusReady     BatchStatus = "READY"
	BatchStatusPublished BatchStatus = "PUBLISHED"
)

// Batch is a tracked production lot. Status only moves forward:
// DRAFT -> READY -> PUBLISHED.
type Batch struct {
	BatchID        string      `gorm:"column:batch_id;type:varchar(64);primaryKey" json:"batchId"`
	ProductName    string      `gorm:"column:product_name;type:varchar(255);not null" json:"productName"`
	SupplementType string      `gorm:"column:supplement_type;type:varchar(255);not null" json:"supplementType"`
	Manufacturer   string      `gorm:"column:manufacturer;type:varchar(255);not null" json:"manufacturer"`
	ProductionDate time.Time   `gorm:"column:production_date;type:date;not null" json:"productionDate"`
	ExpiresDate    *time.Time  `gorm:"column:expires_date;type:date" json:"expiresDate"`
	Status         BatchStatus `gorm:"column:status;type:varchar(16);not null;default:'DRAFT'" json:"status"`

	Chain            string     `gorm:"column:chain;type:varchar(64)" json:"chain,omitempty"`
	TxHash           string     `gorm:"column:tx_hash;type:varchar(66)" json:"txHash,omitempty"`
	PublisherAddress string     `gorm:"column:publisher_address;type:varchar(42)" json:"publisherAddress,omitempty"`
	PublishedAt      *time.Time `gorm:"column:published_at" json:"publishedAt,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updatedAt"`
}

func (Batch) TableName() string { return "batches" }
