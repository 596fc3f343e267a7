package repositories

import (
	"github.com/fahad-nakib/CareerCompass-sub000/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	AccountRepository       *AccountRepository
	InstitutionRepository   *InstitutionRepository
	ProgramRepository       *ProgramRepository
	ApplicationRepository   *ApplicationRepository
	StudentRepository       *StudentRepository
	ProfessorRepository     *ProfessorRepository
	DocumentRepository      *DocumentRepository
	NotificationRepository  *NotificationRepository
	ClientStorageRepository *ClientStorageRepository
	StatsRepository         *StatsRepository
	TokenRepository         *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	pool := database.Pool
	return &Repositories{
		AccountRepository:       NewAccountRepository(database),
		InstitutionRepository:   NewInstitutionRepository(pool),
		ProgramRepository:       NewProgramRepository(database),
		ApplicationRepository:   NewApplicationRepository(pool),
		StudentRepository:       NewStudentRepository(database),
		ProfessorRepository:     NewProfessorRepository(pool),
		DocumentRepository:      NewDocumentRepository(pool),
		NotificationRepository:  NewNotificationRepository(pool),
		ClientStorageRepository: NewClientStorageRepository(pool),
		StatsRepository:         NewStatsRepository(pool),
		TokenRepository:         NewTokenRepository(pool),
	}
}
