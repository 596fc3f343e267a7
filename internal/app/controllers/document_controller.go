package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/middleware"
)

// DocumentService is the part of services.DocumentService the HTTP layer uses
type DocumentService interface {
	Upload(ctx context.Context, caller authz.Principal, req *dto.UploadDocumentRequest) (*models.Document, error)
	ListOwn(ctx context.Context, caller authz.Principal) ([]*models.Document, error)
	ListForApplication(ctx context.Context, caller authz.Principal, applicationID int64) ([]*models.Document, error)
	Verify(ctx context.Context, caller authz.Principal, documentID int64, req *dto.VerifyDocumentRequest) (*models.Document, error)
	Open(ctx context.Context, caller authz.Principal, documentID int64) (*models.Document, string, error)
}

// DocumentDownloadPath is the route template a document file is fetched from
const DocumentDownloadPath = "/api/v1/documents/%d/file"

func withDownloadURL(docs ...*models.Document) {
	for _, d := range docs {
		if d != nil {
			d.DownloadURL = fmt.Sprintf(DocumentDownloadPath, d.ID)
		}
	}
}

// DocumentController handles document upload and verification
type DocumentController struct {
	documentService DocumentService
	logger          zerolog.Logger
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(documentService DocumentService, logger zerolog.Logger) *DocumentController {
	return &DocumentController{
		documentService: documentService,
		logger:          logger,
	}
}

// Upload stores a document for the calling student
// @Summary Upload a document
// @Description Accepts pdf, png, jpg, jpeg, doc and docx files. The document starts pending verification.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Document file"
// @Param documentType formData string true "Document type, e.g. transcript"
// @Param applicationId formData int false "Application the document supports"
// @Success 201 {object} dto.APIResponse{data=models.Document} "Document uploaded"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Students only"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /student/documents [post]
func (c *DocumentController) Upload(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.UploadDocumentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid document upload form")
		middleware.HandleBindError(ctx, err)
		return
	}

	doc, err := c.documentService.Upload(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	withDownloadURL(doc)

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(doc))
}

// ListOwn returns the caller's documents
// @Summary List own documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Document} "Documents"
// @Failure 403 {object} dto.ErrorResponse "Students only"
// @Router /student/documents [get]
func (c *DocumentController) ListOwn(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	docs, err := c.documentService.ListOwn(ctx.Request.Context(), principal)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	withDownloadURL(docs...)

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nonNil(docs)))
}

// ListForApplication returns the documents attached to an application
// @Summary List application documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Document} "Documents"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /institution/application/{id}/documents [get]
func (c *DocumentController) ListForApplication(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	docs, err := c.documentService.ListForApplication(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	withDownloadURL(docs...)

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nonNil(docs)))
}

// Verify records a verdict on a document
// @Summary Verify a document
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Param request body dto.VerifyDocumentRequest true "Verdict"
// @Success 200 {object} dto.APIResponse{data=models.Document} "Document verified"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /institution/documents/{id}/verify [put]
func (c *DocumentController) Verify(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.VerifyDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	doc, err := c.documentService.Verify(ctx.Request.Context(), principal, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	withDownloadURL(doc)

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(doc))
}

// Download streams a document file to its owner or a reviewer of the student's applications
// @Summary Download a document
// @Tags documents
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {file} file "Document file"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{id}/file [get]
func (c *DocumentController) Download(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	doc, path, err := c.documentService.Open(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if doc.MimeType != "" {
		ctx.Header("Content-Type", doc.MimeType)
	}
	ctx.Header("Cache-Control", "private, no-store")
	ctx.FileAttachment(path, doc.FileName)
}
