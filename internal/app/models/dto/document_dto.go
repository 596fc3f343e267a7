package dto

import (
	"encoding/json"
	"mime/multipart"
)

// UploadDocumentRequest is the multipart form of a document upload
type UploadDocumentRequest struct {
	DocumentType  string                `form:"documentType" binding:"required,max=64" example:"transcript"`
	ApplicationID *int64                `form:"applicationId" binding:"omitempty,gt=0"`
	File          *multipart.FileHeader `form:"file" binding:"required"`
}

// VerifyDocumentRequest records a reviewer's verdict on a document
type VerifyDocumentRequest struct {
	Verdict string  `json:"verdict" binding:"required,oneof=valid fake" example:"valid"`
	Note    *string `json:"note,omitempty" binding:"omitempty,max=2000"`
}

// StorageValueRequest is the body stored under a client storage key
type StorageValueRequest struct {
	Value json.RawMessage `json:"value" binding:"required" swaggertype:"object"`
}
