package models

import "time"

// VerificationStatus is the verdict on an uploaded document
type VerificationStatus string

const (
	VerificationPending VerificationStatus = "pending"
	VerificationValid   VerificationStatus = "valid"
	VerificationFake    VerificationStatus = "fake"
)

// IsVerdict reports whether s is a final verdict a reviewer may record
func (s VerificationStatus) IsVerdict() bool {
	return s == VerificationValid || s == VerificationFake
}

// Document is a file a student uploaded in support of applications
type Document struct {
	ID                 int64              `json:"id"`
	StudentID          int64              `json:"studentId"`
	ApplicationID      *int64             `json:"applicationId,omitempty"`
	DocumentType       string             `json:"documentType"`
	FileName           string             `json:"fileName"`
	FileURL            string             `json:"-"`
	DownloadURL        string             `json:"downloadUrl,omitempty"`
	FileSize           int64              `json:"fileSize"`
	MimeType           string             `json:"mimeType,omitempty"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	VerifiedBy         *int64             `json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time         `json:"verifiedAt,omitempty"`
	VerificationNote   *string            `json:"verificationNote,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
}
