package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	DocumentContract       DocumentType = "contract"
	DocumentID             DocumentType = "id_document"
	DocumentTaxForm        DocumentType = "tax_form"
	DocumentCertification  DocumentType = "certification"
	DocumentTrainingRecord DocumentType = "training_record"
	DocumentOther          DocumentType = "other"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentContract, DocumentID, DocumentTaxForm,
		DocumentCertification, DocumentTrainingRecord, DocumentOther:
		return true
	}
	return false
}

// RequiredDocumentTypes every staff member must have on file regardless of
// expiry state.
var RequiredDocumentTypes = []DocumentType{DocumentContract, DocumentID}

// StaffDocument is a compliance artifact. The database record is
// authoritative; the backing file lives in object storage under ObjectKey and
// its deletion is best-effort.
type StaffDocument struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	BusinessID     uuid.UUID    `json:"business_id" db:"business_id"`
	StaffID        uuid.UUID    `json:"staff_id" db:"staff_id"`
	Type           DocumentType `json:"document_type" db:"document_type"`
	FileName       string       `json:"file_name" db:"file_name"`
	ObjectKey      string       `json:"object_key" db:"object_key"`
	ContentType    string       `json:"content_type" db:"content_type"`
	ExpirationDate *time.Time   `json:"expiration_date" db:"expiration_date"`
	IsRequired     bool         `json:"is_required" db:"is_required"`
	UploadedBy     *uuid.UUID   `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

type ComplianceState string

const (
	Compliant      ComplianceState = "compliant"
	NeedsAttention ComplianceState = "needs_attention"
	NonCompliant   ComplianceState = "non_compliant"
)

// ComplianceStatus is derived on read from the live document set. It is never
// stored, so it reflects "now", not history.
type ComplianceStatus struct {
	StaffID               uuid.UUID       `json:"staff_id"`
	Status                ComplianceState `json:"status"`
	ExpiredDocuments      []StaffDocument `json:"expired_documents"`
	ExpiringSoonDocuments []StaffDocument `json:"expiring_soon_documents"`
	MissingRequiredTypes  []DocumentType  `json:"missing_required_types"`
}

// ComplianceOverview aggregates per-staff compliance across a business.
type ComplianceOverview struct {
	TotalStaff           int     `json:"total_staff"`
	CompliantStaff       int     `json:"compliant_staff"`
	NeedsAttentionStaff  int     `json:"needs_attention_staff"`
	NonCompliantStaff    int     `json:"non_compliant_staff"`
	CompliancePercentage float64 `json:"compliance_percentage"`
}
