package services

import (
	"context"
	"time"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/repositories"
)

// The interfaces below are the slices of the repositories each service uses.
// The concrete repositories in internal/app/repositories satisfy them.

type accountStore interface {
	Create(ctx context.Context, acc *models.Account) error
	CreateStudent(ctx context.Context, acc *models.Account, profile *models.StudentProfile) error
	CreateInstitutionAccount(ctx context.Context, inst *models.Institution, acc *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context, filter repositories.AccountFilter) ([]*models.Account, error)
	UpdateApproval(ctx context.Context, change models.ApprovalChange, revision int) (*models.Account, error)
	UpdateRole(ctx context.Context, email string, role models.Role) (*models.Account, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}

type tokenStore interface {
	CreateToken(ctx context.Context, token string, accountID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllAccountTokens(ctx context.Context, accountID int64) error
}

type institutionStore interface {
	GetByID(ctx context.Context, id int64) (*models.Institution, error)
	GetName(ctx context.Context, id int64) (string, error)
	ListWithAccounts(ctx context.Context, status *models.ApprovalStatus) ([]*models.InstitutionAccount, error)
}

type programStore interface {
	Create(ctx context.Context, p *models.Program) error
	GetByID(ctx context.Context, id int64) (*models.Program, error)
	GetTitle(ctx context.Context, id int64) (string, error)
	List(ctx context.Context, f models.ProgramFilter) ([]*models.Program, int64, error)
	Update(ctx context.Context, p *models.Program) error
	Delete(ctx context.Context, id int64) error
	AddRequirements(ctx context.Context, programID int64, requirements []string) error
	ListRequirements(ctx context.Context, programID int64) ([]string, error)
}

type applicationStore interface {
	Create(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	List(ctx context.Context, f models.ApplicationFilter) ([]*models.Application, error)
	UpdateStatus(ctx context.Context, change models.StatusChange, revision int) (*models.Application, error)
	AddComment(ctx context.Context, c *models.Comment) error
	ListComments(ctx context.Context, applicationID int64) ([]*models.Comment, error)
}

type studentStore interface {
	GetByAccountID(ctx context.Context, accountID int64) (*models.StudentProfile, error)
	GetByID(ctx context.Context, id int64) (*models.StudentProfile, error)
	List(ctx context.Context, offset uint64, limit int) ([]*models.StudentProfile, int64, error)
	UpdateProfile(ctx context.Context, s *models.StudentProfile) error
	AddEducation(ctx context.Context, e *models.Education) error
	ListEducation(ctx context.Context, studentID int64) ([]*models.Education, error)
	SaveProgram(ctx context.Context, studentID, programID int64) error
	RemoveSavedProgram(ctx context.Context, studentID, programID int64) error
	ListSavedPrograms(ctx context.Context, studentID int64) ([]*models.SavedProgram, error)
}

type professorStore interface {
	Create(ctx context.Context, p *models.ProfessorProfile) error
	GetByID(ctx context.Context, id int64) (*models.ProfessorProfile, error)
	List(ctx context.Context, institutionID *int64) ([]*models.ProfessorProfile, error)
	Update(ctx context.Context, p *models.ProfessorProfile) error
	Delete(ctx context.Context, id int64) error
}

type documentStore interface {
	Create(ctx context.Context, d *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Document, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]*models.Document, error)
	UpdateVerification(ctx context.Context, id int64, status models.VerificationStatus, verifierID int64, note *string) (*models.Document, error)
}

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByAccount(ctx context.Context, accountID int64, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, accountID int64) error
}

type storageStore interface {
	Get(ctx context.Context, accountID int64, key string) (*models.StorageEntry, error)
	Put(ctx context.Context, e *models.StorageEntry) error
}

type statsStore interface {
	Counts(ctx context.Context) (*models.PortalStats, error)
}
