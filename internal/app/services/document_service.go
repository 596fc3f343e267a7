package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/filestorage"
)

// allowedDocumentExtensions are the file types students may upload
var allowedDocumentExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".doc":  true,
	".docx": true,
}

// DocumentService handles document uploads and verification
type DocumentService struct {
	documents    documentStore
	applications applicationStore
	storage      filestorage.FileStorage
	notifier     Notifier
	maxBytes     int64
	logger       zerolog.Logger
}

// NewDocumentService creates a new DocumentService. maxBytes <= 0 disables the size check.
func NewDocumentService(
	documents documentStore,
	applications applicationStore,
	storage filestorage.FileStorage,
	notifier Notifier,
	maxBytes int64,
	logger zerolog.Logger,
) *DocumentService {
	return &DocumentService{
		documents:    documents,
		applications: applications,
		storage:      storage,
		notifier:     notifier,
		maxBytes:     maxBytes,
		logger:       logger,
	}
}

// Upload stores a file for the calling student and records it as pending verification
func (s *DocumentService) Upload(ctx context.Context, caller authz.Principal, req *dto.UploadDocumentRequest) (*models.Document, error) {
	if err := requireStudent(caller); err != nil {
		return nil, err
	}
	if req.File == nil {
		return nil, fmt.Errorf("%w: file is required", apperrors.ErrValidationFailed)
	}
	if s.maxBytes > 0 && req.File.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds the %d byte limit", apperrors.ErrValidationFailed, s.maxBytes)
	}
	ext := strings.ToLower(filepath.Ext(req.File.Filename))
	if !allowedDocumentExtensions[ext] {
		return nil, fmt.Errorf("%w: file type %q is not accepted", apperrors.ErrValidationFailed, ext)
	}
	docType := strings.TrimSpace(req.DocumentType)
	if docType == "" {
		return nil, fmt.Errorf("%w: document type is required", apperrors.ErrValidationFailed)
	}

	if req.ApplicationID != nil {
		app, err := s.applications.GetByID(ctx, *req.ApplicationID)
		if err != nil {
			return nil, err
		}
		if app.StudentID != caller.AccountID {
			return nil, apperrors.ErrApplicationNotFound
		}
	}

	stored, err := s.storage.Save(req.File, fmt.Sprintf("documents/%d", caller.AccountID))
	if err != nil {
		if errors.Is(err, filestorage.ErrEmptyFile) {
			return nil, fmt.Errorf("%w: file is empty", apperrors.ErrValidationFailed)
		}
		return nil, fmt.Errorf("error saving document file: %w", err)
	}

	doc := &models.Document{
		StudentID:     caller.AccountID,
		ApplicationID: req.ApplicationID,
		DocumentType:  docType,
		FileName:      stored.OriginalName,
		FileURL:       stored.URL,
		FileSize:      stored.Size,
		MimeType:      stored.MimeType,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		if delErr := s.storage.DeleteFile(stored.URL); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", stored.URL).Msg("Failed to remove orphaned upload")
		}
		return nil, err
	}

	s.logger.Info().Int64("documentID", doc.ID).Int64("studentID", doc.StudentID).Str("type", docType).Msg("Document uploaded")
	return doc, nil
}

// ListOwn returns the documents of the calling student
func (s *DocumentService) ListOwn(ctx context.Context, caller authz.Principal) ([]*models.Document, error) {
	if err := requireStudent(caller); err != nil {
		return nil, err
	}
	return s.documents.ListByStudent(ctx, caller.AccountID)
}

// ListForApplication returns the documents attached to an application the caller may see
func (s *DocumentService) ListForApplication(ctx context.Context, caller authz.Principal, applicationID int64) ([]*models.Document, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !caller.CanViewApplication(app) {
		return nil, apperrors.ErrApplicationNotFound
	}
	return s.documents.ListByApplication(ctx, applicationID)
}

// canVerify reports whether the caller reviews applications the document supports
func (s *DocumentService) canVerify(ctx context.Context, caller authz.Principal, doc *models.Document) (bool, error) {
	if caller.IsAdmin() {
		return true, nil
	}
	if !caller.IsStaff() || caller.InstitutionID == nil {
		return false, nil
	}

	if doc.ApplicationID != nil {
		app, err := s.applications.GetByID(ctx, *doc.ApplicationID)
		if err != nil {
			return false, err
		}
		return caller.CanReviewApplication(app), nil
	}

	// Unattached documents may be verified by any institution the student applied to
	studentID := doc.StudentID
	apps, err := s.applications.List(ctx, models.ApplicationFilter{StudentID: &studentID, InstitutionID: caller.InstitutionID})
	if err != nil {
		return false, err
	}
	return len(apps) > 0, nil
}

// Open returns a document the caller may read together with the path of its file.
// Documents outside the caller's reach are reported as not found.
func (s *DocumentService) Open(ctx context.Context, caller authz.Principal, documentID int64) (*models.Document, string, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, "", err
	}

	allowed := caller.Role == models.RoleStudent && caller.AccountID == doc.StudentID
	if !allowed {
		if allowed, err = s.canVerify(ctx, caller, doc); err != nil {
			return nil, "", err
		}
	}
	if !allowed {
		s.logger.Warn().Int64("documentID", documentID).Int64("accountID", caller.AccountID).Msg("Document download refused")
		return nil, "", apperrors.ErrDocumentNotFound
	}

	path := s.storage.GetFullPath(doc.FileURL)
	if path == "" {
		s.logger.Error().Int64("documentID", documentID).Str("locator", doc.FileURL).Msg("Document locator does not resolve to a file")
		return nil, "", apperrors.ErrDocumentNotFound
	}
	return doc, path, nil
}

// Verify records a reviewer verdict on a document and notifies the student
func (s *DocumentService) Verify(ctx context.Context, caller authz.Principal, documentID int64, req *dto.VerifyDocumentRequest) (*models.Document, error) {
	verdict := models.VerificationStatus(req.Verdict)
	if !verdict.IsVerdict() {
		return nil, fmt.Errorf("%w: verdict must be valid or fake", apperrors.ErrValidationFailed)
	}

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.canVerify(ctx, caller, doc)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrPermissionDenied
	}

	var note *string
	if req.Note != nil {
		if trimmed := strings.TrimSpace(*req.Note); trimmed != "" {
			note = &trimmed
		}
	}

	updated, err := s.documents.UpdateVerification(ctx, documentID, verdict, caller.AccountID, note)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, updated.StudentID, models.NotifyDocumentVerified,
			fmt.Sprintf("Your %s was marked %s", updated.DocumentType, updated.VerificationStatus),
			map[string]interface{}{"documentId": updated.ID, "verificationStatus": updated.VerificationStatus})
	}
	return updated, nil
}
