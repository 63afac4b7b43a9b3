package records

import (
	"net/url"
	"strings"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OwnerType names the kind of row an attachment hangs from
type OwnerType string

const (
	OwnerContact   OwnerType = "contact"
	OwnerDocument  OwnerType = "document"
	OwnerLedgerUSD OwnerType = "ledger_usd"
	OwnerLedgerMXN OwnerType = "ledger_mxn"
)

// IsValid checks if the owner type is known
func (o OwnerType) IsValid() bool {
	switch o {
	case OwnerContact, OwnerDocument, OwnerLedgerUSD, OwnerLedgerMXN:
		return true
	}
	return false
}

// LedgerOwner returns the attachment owner type of a ledger currency
func LedgerOwner(c shared.Currency) OwnerType {
	if c == shared.CurrencyUSD {
		return OwnerLedgerUSD
	}
	return OwnerLedgerMXN
}

// Attachment is the metadata of a file stored by the upload provider
type Attachment struct {
	shared.BaseEntity
	OwnerType   OwnerType  `gorm:"type:varchar(20);not null;index:idx_attachment_owner,priority:1" json:"owner_type"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_attachment_owner,priority:2" json:"owner_id"`
	FileName    string     `gorm:"type:varchar(255);not null" json:"file_name"`
	URL         string     `gorm:"column:url;type:text;not null" json:"url"`
	ContentType string     `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes   int64      `gorm:"not null;default:0" json:"size_bytes"`
	StorageKey  string     `gorm:"type:varchar(500)" json:"storage_key,omitempty"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
}

// TableName returns the table name for GORM
func (Attachment) TableName() string {
	return "attachments"
}

// AttachmentInput describes an uploaded file
type AttachmentInput struct {
	FileName    string
	URL         string
	ContentType string
	SizeBytes   int64
	StorageKey  string
}

// NewAttachment registers an uploaded file for an owner row
func NewAttachment(ownerType OwnerType, ownerID uuid.UUID, in AttachmentInput, createdBy *uuid.UUID) (*Attachment, error) {
	if !ownerType.IsValid() {
		return nil, shared.InvalidInput("invalid owner type %q", ownerType)
	}
	name := strings.TrimSpace(in.FileName)
	if name == "" {
		return nil, shared.InvalidInput("file_name is required")
	}
	u, err := url.Parse(strings.TrimSpace(in.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, shared.InvalidInput("url must be an absolute http(s) URL")
	}
	if in.SizeBytes < 0 {
		return nil, shared.InvalidInput("size_bytes cannot be negative")
	}
	return &Attachment{
		BaseEntity:  shared.NewBaseEntity(),
		OwnerType:   ownerType,
		OwnerID:     ownerID,
		FileName:    name,
		URL:         u.String(),
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
		StorageKey:  in.StorageKey,
		CreatedBy:   createdBy,
	}, nil
}
