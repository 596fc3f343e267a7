package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authz "github.com/fahad-nakib/CareerCompass-sub000/internal/app/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models/dto"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/middleware"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/helpers"
)

// StudentService is the part of services.StudentService the HTTP layer uses
type StudentService interface {
	GetByAccount(ctx context.Context, caller authz.Principal, accountID int64) (*models.StudentProfile, error)
	GetByProfileID(ctx context.Context, caller authz.Principal, id int64) (*models.StudentProfile, error)
	List(ctx context.Context, page, size int) ([]*models.StudentProfile, int64, error)
	UpdateProfile(ctx context.Context, caller authz.Principal, accountID int64, req *dto.UpdateStudentProfileRequest) (*models.StudentProfile, error)
	AddEducation(ctx context.Context, caller authz.Principal, req *dto.AddEducationRequest) (*models.Education, error)
	ListEducation(ctx context.Context, caller authz.Principal, studentID int64) ([]*models.Education, error)
	SaveProgram(ctx context.Context, caller authz.Principal, programID int64) error
	RemoveSavedProgram(ctx context.Context, caller authz.Principal, programID int64) error
	ListSavedPrograms(ctx context.Context, caller authz.Principal, studentID int64) ([]*models.SavedProgram, error)
}

// StudentController handles student registration, profiles, education and saved programs
type StudentController struct {
	studentService StudentService
	authService    AuthService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService StudentService, authService AuthService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		authService:    authService,
		logger:         logger,
	}
}

// Register handles student sign-up
// @Summary Register a student
// @Description Creates an approved student account with an empty profile.
// @Tags students
// @Accept json
// @Produce json
// @Param request body dto.RegisterStudentRequest true "Student registration"
// @Success 201 {object} dto.APIResponse{data=dto.AccountResponse} "Student registered"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /student/studentregister [post]
func (c *StudentController) Register(ctx *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid student registration payload")
		middleware.HandleBindError(ctx, err)
		return
	}

	acc, err := c.authService.RegisterStudent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.NewAccountResponse(acc)))
}

// List returns one page of student profiles
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.StudentProfile}} "Students"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /student/studentregister [get]
func (c *StudentController) List(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	students, total, err := c.studentService.List(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PaginatedResponse{
		Items:      nonNil(students),
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}))
}

// GetByAccount returns the profile of a student account
// @Summary Student profile by account id
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student account ID"
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile} "Profile"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /student/students/{id} [get]
func (c *StudentController) GetByAccount(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.studentService.GetByAccount(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile))
}

// UpdateProfile edits the caller's profile
// @Summary Update student profile
// @Description Overwrites only the fields present in the request.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student account ID"
// @Param request body dto.UpdateStudentProfileRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile} "Updated profile"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /student/students/{id} [put]
func (c *StudentController) UpdateProfile(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateStudentProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	profile, err := c.studentService.UpdateProfile(ctx.Request.Context(), principal, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile))
}

// GetByProfileID returns a profile by its own id
// @Summary Student profile by profile id
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Success 200 {object} dto.APIResponse{data=models.StudentProfile} "Profile"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /student/studentuid/{id} [get]
func (c *StudentController) GetByProfileID(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.studentService.GetByProfileID(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(profile))
}

// AddEducation appends an education record for the caller
// @Summary Add education
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AddEducationRequest true "Education record"
// @Success 201 {object} dto.APIResponse{data=models.Education} "Education added"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Students only"
// @Router /student/education [post]
func (c *StudentController) AddEducation(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.AddEducationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	record, err := c.studentService.AddEducation(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(record))
}

// ListEducation returns the education records of a student
// @Summary List education
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student account ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Education} "Education records"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /student/education/{id} [get]
func (c *StudentController) ListEducation(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	records, err := c.studentService.ListEducation(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nonNil(records)))
}

// SaveProgram bookmarks a program for the caller
// @Summary Save a program
// @Description Saving an already saved program succeeds without creating a duplicate.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SaveProgramRequest true "Program to save"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Program saved"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Students only"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /student/savedprogram/ [post]
func (c *StudentController) SaveProgram(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.SaveProgramRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	if err := c.studentService.SaveProgram(ctx.Request.Context(), principal, req.ProgramID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Program saved"}))
}

// ListSavedPrograms returns a student's saved programs
// @Summary List saved programs
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student account ID"
// @Success 200 {object} dto.APIResponse{data=[]models.SavedProgram} "Saved programs"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /student/savedprogram/{id} [get]
func (c *StudentController) ListSavedPrograms(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := middleware.ParseIDParam(ctx, "id")
	if !ok {
		return
	}

	saved, err := c.studentService.ListSavedPrograms(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(nonNil(saved)))
}

// RemoveSavedProgram deletes one of the caller's bookmarks
// @Summary Remove a saved program
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param programId path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Removed"
// @Failure 403 {object} dto.ErrorResponse "Students only"
// @Router /student/savedprogram/{programId} [delete]
func (c *StudentController) RemoveSavedProgram(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	programID, ok := middleware.ParseIDParam(ctx, "programId")
	if !ok {
		return
	}

	if err := c.studentService.RemoveSavedProgram(ctx.Request.Context(), principal, programID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "Saved program removed"}))
}
