package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/dberrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/logger"
)

const documentColumns = `id, student_id, application_id, document_type, file_name, file_url, file_size,
	COALESCE(mime_type, ''), verification_status, verified_by, verified_at, verification_note, created_at`

// DocumentRepository handles document database operations
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	d := &models.Document{}
	err := row.Scan(&d.ID, &d.StudentID, &d.ApplicationID, &d.DocumentType, &d.FileName, &d.FileURL, &d.FileSize,
		&d.MimeType, &d.VerificationStatus, &d.VerifiedBy, &d.VerifiedAt, &d.VerificationNote, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DocumentRepository) list(ctx context.Context, where string, arg int64) ([]*models.Document, error) {
	rows, err := r.db.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE `+where+` ORDER BY created_at DESC, id DESC`, arg)
	if err != nil {
		logger.Error().Err(err).Int64("id", arg).Msg("Error listing documents")
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	defer rows.Close()

	docs := []*models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Create records an uploaded document as pending verification
func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	d.VerificationStatus = models.VerificationPending
	err := r.db.QueryRow(ctx, `
		INSERT INTO documents (student_id, application_id, document_type, file_name, file_url, file_size, mime_type, verification_status)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), 'pending')
		RETURNING id, created_at`,
		d.StudentID, d.ApplicationID, d.DocumentType, d.FileName, d.FileURL, d.FileSize, d.MimeType,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, "documents_application_id_fkey") {
			return apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Int64("studentID", d.StudentID).Msg("Error inserting document")
		return fmt.Errorf("error creating document: %w", err)
	}
	return nil
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDocumentNotFound
		}
		logger.Error().Err(err).Int64("documentID", id).Msg("Error retrieving document")
		return nil, fmt.Errorf("error retrieving document: %w", err)
	}
	return d, nil
}

// ListByStudent returns the documents a student uploaded
func (r *DocumentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Document, error) {
	return r.list(ctx, "student_id = $1", studentID)
}

// ListByApplication returns the documents attached to an application
func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Document, error) {
	return r.list(ctx, "application_id = $1", applicationID)
}

// UpdateVerification records a reviewer verdict
func (r *DocumentRepository) UpdateVerification(ctx context.Context, id int64, status models.VerificationStatus, verifierID int64, note *string) (*models.Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx, `
		UPDATE documents SET verification_status = $2, verified_by = $3, verified_at = NOW(), verification_note = $4
		WHERE id = $1
		RETURNING `+documentColumns,
		id, string(status), verifierID, note))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDocumentNotFound
		}
		logger.Error().Err(err).Int64("documentID", id).Msg("Error updating document verification")
		return nil, fmt.Errorf("error updating document verification: %w", err)
	}
	return d, nil
}
