package services

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/app/repositories"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/apperrors"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/auth"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/cache"
	"github.com/fahad-nakib/CareerCompass-sub000/internal/pkg/filestorage"
)

func TestMain(m *testing.M) {
	auth.BcryptCost = 4
	os.Exit(m.Run())
}

var testLogger = zerolog.Nop()

// memDB is an in-memory stand-in for the Postgres schema shared by the fake stores
type memDB struct {
	mu     sync.Mutex
	nextID int64

	accounts      map[int64]*models.Account
	institutions  map[int64]*models.Institution
	students      map[int64]*models.StudentProfile
	education     []*models.Education
	saved         map[[2]int64]time.Time
	professors    map[int64]*models.ProfessorProfile
	programs      map[int64]*models.Program
	requirements  map[int64][]string
	applications  map[int64]*models.Application
	comments      []*models.Comment
	documents     map[int64]*models.Document
	notifications []*models.Notification
	storage       map[string]*models.StorageEntry
	tokens        map[string]*memToken
}

type memToken struct {
	accountID int64
	expiry    time.Time
	revoked   bool
}

func newMemDB() *memDB {
	return &memDB{
		accounts:     map[int64]*models.Account{},
		institutions: map[int64]*models.Institution{},
		students:     map[int64]*models.StudentProfile{},
		saved:        map[[2]int64]time.Time{},
		professors:   map[int64]*models.ProfessorProfile{},
		programs:     map[int64]*models.Program{},
		requirements: map[int64][]string{},
		applications: map[int64]*models.Application{},
		documents:    map[int64]*models.Document{},
		storage:      map[string]*models.StorageEntry{},
		tokens:       map[string]*memToken{},
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) insertAccount(acc *models.Account) error {
	for _, existing := range db.accounts {
		if existing.Email == acc.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	if acc.InstitutionID != nil {
		if _, ok := db.institutions[*acc.InstitutionID]; !ok {
			return apperrors.ErrInstitutionNotFound
		}
	}
	now := time.Now()
	acc.ID = db.id()
	acc.Revision = 1
	acc.CreatedAt = now
	acc.UpdatedAt = now
	if acc.ApprovalStatus == models.ApprovalApproved {
		acc.ApprovedAt = &now
	}
	cp := *acc
	db.accounts[acc.ID] = &cp
	return nil
}

// seedAccount stores an account directly, bypassing validation and hashing
func (db *memDB) seedAccount(acc *models.Account) *models.Account {
	db.mu.Lock()
	defer db.mu.Unlock()
	if acc.ApprovalStatus == "" {
		acc.ApprovalStatus = models.ApprovalApproved
	}
	if err := db.insertAccount(acc); err != nil {
		panic(err)
	}
	return acc
}

func (db *memDB) seedInstitution(name string) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	id := db.id()
	db.institutions[id] = &models.Institution{ID: id, Name: name, CreatedAt: time.Now()}
	return id
}

func (db *memDB) seedProgram(institutionID int64, title string) *models.Program {
	db.mu.Lock()
	defer db.mu.Unlock()
	p := &models.Program{ID: db.id(), InstitutionID: institutionID, Title: title, Slug: strings.ToLower(title)}
	db.programs[p.ID] = p
	cp := *p
	return &cp
}

// memAccounts implements accountStore
type memAccounts struct{ *memDB }

func (r memAccounts) Create(_ context.Context, acc *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertAccount(acc)
}

func (r memAccounts) CreateStudent(_ context.Context, acc *models.Account, profile *models.StudentProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.insertAccount(acc); err != nil {
		return err
	}
	profile.ID = r.id()
	profile.AccountID = acc.ID
	profile.Name = acc.Name
	profile.Email = acc.Email
	cp := *profile
	r.students[acc.ID] = &cp
	return nil
}

func (r memAccounts) CreateInstitutionAccount(_ context.Context, inst *models.Institution, acc *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst.ID = r.id()
	inst.CreatedAt = time.Now()
	instCopy := *inst
	r.institutions[inst.ID] = &instCopy
	institutionID := inst.ID
	acc.InstitutionID = &institutionID
	if err := r.insertAccount(acc); err != nil {
		delete(r.institutions, inst.ID)
		return err
	}
	return nil
}

func (r memAccounts) GetByID(_ context.Context, id int64) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

func (r memAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.accounts {
		if acc.Email == email {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, apperrors.ErrAccountNotFound
}

func (r memAccounts) List(_ context.Context, filter repositories.AccountFilter) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Account{}
	for _, acc := range r.accounts {
		if len(filter.Roles) > 0 {
			match := false
			for _, role := range filter.Roles {
				match = match || acc.Role == role
			}
			if !match {
				continue
			}
		}
		if filter.Status != nil && acc.ApprovalStatus != *filter.Status {
			continue
		}
		if filter.InstitutionID != nil && !acc.BelongsTo(*filter.InstitutionID) {
			continue
		}
		cp := *acc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAccounts) UpdateApproval(_ context.Context, change models.ApprovalChange, revision int) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[change.AccountID]
	if !ok || acc.Revision != revision {
		return nil, apperrors.ErrRevisionMismatch
	}
	now := time.Now()
	acc.ApprovalStatus = change.Status
	acc.RejectionReason = nil
	switch change.Status {
	case models.ApprovalApproved:
		acc.ApprovedAt = &now
	case models.ApprovalRejected:
		acc.RejectedAt = &now
		acc.RejectionReason = change.Reason
	}
	acc.Revision++
	acc.UpdatedAt = now
	cp := *acc
	return &cp, nil
}

func (r memAccounts) UpdateRole(_ context.Context, email string, role models.Role) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.accounts {
		if acc.Email == strings.ToLower(email) {
			if role == models.RoleInstitution && acc.InstitutionID != nil {
				for _, other := range r.accounts {
					if other.ID != acc.ID && other.Role == models.RoleInstitution &&
						other.InstitutionID != nil && *other.InstitutionID == *acc.InstitutionID {
						return nil, apperrors.ErrInstitutionHasOwner
					}
				}
			}
			acc.Role = role
			acc.Revision++
			cp := *acc
			return &cp, nil
		}
	}
	return nil, apperrors.ErrAccountNotFound
}

func (r memAccounts) UpdateLastLogin(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	now := time.Now()
	acc.LastLoginAt = &now
	return nil
}

// memTokens implements tokenStore
type memTokens struct{ *memDB }

func (r memTokens) CreateToken(_ context.Context, token string, accountID int64, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = &memToken{accountID: accountID, expiry: expiry}
	return nil
}

func (r memTokens) GetTokenByValue(_ context.Context, token string) (int64, time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	switch {
	case !ok:
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	case t.expiry.Before(time.Now()):
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return t.accountID, t.expiry, nil
}

func (r memTokens) RevokeToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[token]; ok {
		t.revoked = true
	}
	return nil
}

func (r memTokens) RevokeAllAccountTokens(_ context.Context, accountID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.accountID == accountID {
			t.revoked = true
		}
	}
	return nil
}

// memInstitutions implements institutionStore
type memInstitutions struct{ *memDB }

func (r memInstitutions) GetByID(_ context.Context, id int64) (*models.Institution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.institutions[id]
	if !ok {
		return nil, apperrors.ErrInstitutionNotFound
	}
	cp := *inst
	return &cp, nil
}

func (r memInstitutions) GetName(ctx context.Context, id int64) (string, error) {
	inst, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return inst.Name, nil
}

func (r memInstitutions) ListWithAccounts(_ context.Context, status *models.ApprovalStatus) ([]*models.InstitutionAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.InstitutionAccount{}
	for _, acc := range r.accounts {
		if acc.Role != models.RoleInstitution || acc.InstitutionID == nil {
			continue
		}
		if status != nil && acc.ApprovalStatus != *status {
			continue
		}
		inst := r.institutions[*acc.InstitutionID]
		out = append(out, &models.InstitutionAccount{Institution: *inst, Account: *acc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Institution.ID < out[j].Institution.ID })
	return out, nil
}

// memPrograms implements programStore
type memPrograms struct{ *memDB }

func (r memPrograms) Create(_ context.Context, p *models.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.institutions[p.InstitutionID]; !ok {
		return apperrors.ErrInstitutionNotFound
	}
	p.ID = r.id()
	p.InstitutionName = r.institutions[p.InstitutionID].Name
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	cp.Requirements = nil
	r.programs[p.ID] = &cp
	r.requirements[p.ID] = append([]string(nil), p.Requirements...)
	return nil
}

func (r memPrograms) GetByID(_ context.Context, id int64) (*models.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.programs[id]
	if !ok {
		return nil, apperrors.ErrProgramNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPrograms) GetTitle(ctx context.Context, id int64) (string, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Title, nil
}

func (r memPrograms) List(_ context.Context, f models.ProgramFilter) ([]*models.Program, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []*models.Program{}
	for _, p := range r.programs {
		if f.InstitutionID != nil && p.InstitutionID != *f.InstitutionID {
			continue
		}
		if f.Discipline != "" && !strings.EqualFold(p.Discipline, f.Discipline) {
			continue
		}
		if f.Degree != "" && !strings.EqualFold(p.Degree, f.Degree) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Search)) {
			continue
		}
		cp := *p
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := int64(len(matched))
	start := int(f.Offset)
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return matched[start:end], total, nil
}

func (r memPrograms) Update(_ context.Context, p *models.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.programs[p.ID]
	if !ok {
		return apperrors.ErrProgramNotFound
	}
	p.InstitutionID = existing.InstitutionID
	p.InstitutionName = existing.InstitutionName
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	cp := *p
	cp.Requirements = nil
	r.programs[p.ID] = &cp
	return nil
}

func (r memPrograms) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[id]; !ok {
		return apperrors.ErrProgramNotFound
	}
	for _, app := range r.applications {
		if app.ProgramID == id {
			return apperrors.ErrProgramHasApplications
		}
	}
	delete(r.programs, id)
	delete(r.requirements, id)
	return nil
}

func (r memPrograms) AddRequirements(_ context.Context, programID int64, requirements []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[programID]; !ok {
		return apperrors.ErrProgramNotFound
	}
	r.requirements[programID] = append(r.requirements[programID], requirements...)
	return nil
}

func (r memPrograms) ListRequirements(_ context.Context, programID int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.requirements[programID]...), nil
}

// memApplications implements applicationStore
type memApplications struct{ *memDB }

func (r memApplications) Create(_ context.Context, a *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	program, ok := r.programs[a.ProgramID]
	if !ok {
		return apperrors.ErrProgramNotFound
	}
	if _, ok := r.accounts[a.StudentID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	for _, existing := range r.applications {
		if existing.ProgramID == a.ProgramID && existing.StudentID == a.StudentID {
			return apperrors.ErrAlreadyApplied
		}
	}
	now := time.Now()
	a.ID = r.id()
	a.Status = models.StatusPending
	a.ProgramTitle = program.Title
	a.InstitutionID = program.InstitutionID
	a.Revision = 1
	a.CreatedAt = now
	a.UpdatedAt = now
	cp := *a
	r.applications[a.ID] = &cp
	return nil
}

func (r memApplications) GetByID(_ context.Context, id int64) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.applications[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memApplications) List(_ context.Context, f models.ApplicationFilter) ([]*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Application{}
	for _, a := range r.applications {
		if f.StudentID != nil && a.StudentID != *f.StudentID {
			continue
		}
		if f.InstitutionID != nil && a.InstitutionID != *f.InstitutionID {
			continue
		}
		if f.ProgramID != nil && a.ProgramID != *f.ProgramID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memApplications) UpdateStatus(_ context.Context, change models.StatusChange, revision int) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.applications[change.ApplicationID]
	if !ok || a.Revision != revision {
		return nil, apperrors.ErrRevisionMismatch
	}
	a.Status = change.Status
	if change.Feedback != nil {
		fb := *change.Feedback
		a.Feedback = &fb
	}
	a.Revision++
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (r memApplications) AddComment(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.applications[c.ApplicationID]; !ok {
		return apperrors.ErrApplicationNotFound
	}
	author, ok := r.accounts[c.AuthorID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	c.ID = r.id()
	c.AuthorName = author.Name
	c.CreatedAt = time.Now()
	cp := *c
	r.comments = append(r.comments, &cp)
	return nil
}

func (r memApplications) ListComments(_ context.Context, applicationID int64) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Comment{}
	for _, c := range r.comments {
		if c.ApplicationID == applicationID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memStudents implements studentStore
type memStudents struct{ *memDB }

func (r memStudents) GetByAccountID(_ context.Context, accountID int64) (*models.StudentProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[accountID]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	cp := *s
	cp.Name = r.accounts[accountID].Name
	return &cp, nil
}

func (r memStudents) GetByID(ctx context.Context, id int64) (*models.StudentProfile, error) {
	r.mu.Lock()
	var accountID int64
	for _, s := range r.students {
		if s.ID == id {
			accountID = s.AccountID
		}
	}
	r.mu.Unlock()
	if accountID == 0 {
		return nil, apperrors.ErrStudentNotFound
	}
	return r.GetByAccountID(ctx, accountID)
}

func (r memStudents) List(_ context.Context, offset uint64, limit int) ([]*models.StudentProfile, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []*models.StudentProfile{}
	for _, s := range r.students {
		cp := *s
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	start := int(offset)
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r memStudents) UpdateProfile(_ context.Context, s *models.StudentProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[s.AccountID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	cp := *s
	r.students[s.AccountID] = &cp
	if s.Name != "" {
		r.accounts[s.AccountID].Name = s.Name
	}
	return nil
}

func (r memStudents) AddEducation(_ context.Context, e *models.Education) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.id()
	e.CreatedAt = time.Now()
	cp := *e
	r.education = append(r.education, &cp)
	return nil
}

func (r memStudents) ListEducation(_ context.Context, studentID int64) ([]*models.Education, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Education{}
	for _, e := range r.education {
		if e.StudentID == studentID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memStudents) SaveProgram(_ context.Context, studentID, programID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[programID]; !ok {
		return apperrors.ErrProgramNotFound
	}
	key := [2]int64{studentID, programID}
	if _, ok := r.saved[key]; !ok {
		r.saved[key] = time.Now()
	}
	return nil
}

func (r memStudents) RemoveSavedProgram(_ context.Context, studentID, programID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.saved, [2]int64{studentID, programID})
	return nil
}

func (r memStudents) ListSavedPrograms(_ context.Context, studentID int64) ([]*models.SavedProgram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.SavedProgram{}
	for key, at := range r.saved {
		if key[0] != studentID {
			continue
		}
		program := *r.programs[key[1]]
		out = append(out, &models.SavedProgram{StudentID: key[0], ProgramID: key[1], SavedAt: at, Program: &program})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProgramID < out[j].ProgramID })
	return out, nil
}

// memProfessors implements professorStore
type memProfessors struct{ *memDB }

func (r memProfessors) Create(_ context.Context, p *models.ProfessorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.professors {
		if existing.AccountID == p.AccountID {
			return apperrors.ErrProfileExists
		}
	}
	acc, ok := r.accounts[p.AccountID]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	p.ID = r.id()
	p.Name = acc.Name
	p.Email = acc.Email
	p.InstitutionID = acc.InstitutionID
	cp := *p
	r.professors[p.ID] = &cp
	return nil
}

func (r memProfessors) GetByID(_ context.Context, id int64) (*models.ProfessorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.professors[id]
	if !ok {
		return nil, apperrors.ErrProfessorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memProfessors) List(_ context.Context, institutionID *int64) ([]*models.ProfessorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.ProfessorProfile{}
	for _, p := range r.professors {
		if institutionID != nil && (p.InstitutionID == nil || *p.InstitutionID != *institutionID) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memProfessors) Update(_ context.Context, p *models.ProfessorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.professors[p.ID]
	if !ok {
		return apperrors.ErrProfessorNotFound
	}
	p.Name, p.Email, p.InstitutionID = existing.Name, existing.Email, existing.InstitutionID
	cp := *p
	r.professors[p.ID] = &cp
	return nil
}

func (r memProfessors) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.professors[id]; !ok {
		return apperrors.ErrProfessorNotFound
	}
	delete(r.professors, id)
	return nil
}

// memDocuments implements documentStore
type memDocuments struct{ *memDB }

func (r memDocuments) Create(_ context.Context, d *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ApplicationID != nil {
		if _, ok := r.applications[*d.ApplicationID]; !ok {
			return apperrors.ErrApplicationNotFound
		}
	}
	d.ID = r.id()
	d.VerificationStatus = models.VerificationPending
	d.CreatedAt = time.Now()
	cp := *d
	r.documents[d.ID] = &cp
	return nil
}

func (r memDocuments) GetByID(_ context.Context, id int64) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.documents[id]
	if !ok {
		return nil, apperrors.ErrDocumentNotFound
	}
	cp := *d
	return &cp, nil
}

func (r memDocuments) list(match func(*models.Document) bool) []*models.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Document{}
	for _, d := range r.documents {
		if match(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memDocuments) ListByStudent(_ context.Context, studentID int64) ([]*models.Document, error) {
	return r.list(func(d *models.Document) bool { return d.StudentID == studentID }), nil
}

func (r memDocuments) ListByApplication(_ context.Context, applicationID int64) ([]*models.Document, error) {
	return r.list(func(d *models.Document) bool { return d.ApplicationID != nil && *d.ApplicationID == applicationID }), nil
}

func (r memDocuments) UpdateVerification(_ context.Context, id int64, status models.VerificationStatus, verifierID int64, note *string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.documents[id]
	if !ok {
		return nil, apperrors.ErrDocumentNotFound
	}
	now := time.Now()
	d.VerificationStatus = status
	d.VerifiedBy = &verifierID
	d.VerifiedAt = &now
	d.VerificationNote = note
	cp := *d
	return &cp, nil
}

// memNotifications implements notificationStore
type memNotifications struct{ *memDB }

func (r memNotifications) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.id()
	n.CreatedAt = time.Now()
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r memNotifications) ListByAccount(_ context.Context, accountID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Notification{}
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if n.AccountID != accountID || (unreadOnly && n.ReadAt != nil) {
			continue
		}
		cp := *n
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r memNotifications) MarkRead(_ context.Context, id, accountID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.AccountID == accountID {
			if n.ReadAt == nil {
				now := time.Now()
				n.ReadAt = &now
			}
			return nil
		}
	}
	return apperrors.ErrNotificationNotFound
}

// memStorage implements storageStore and counts reads
type memStorage struct {
	*memDB
	reads int
	// afterRead runs once the row has been read, outside the lock
	afterRead func()
}

func (r *memStorage) Get(_ context.Context, accountID int64, key string) (*models.StorageEntry, error) {
	r.mu.Lock()
	r.reads++
	e, ok := r.storage[storageCacheKey(accountID, key)]
	var cp models.StorageEntry
	if ok {
		cp = *e
	}
	r.mu.Unlock()

	if r.afterRead != nil {
		hook := r.afterRead
		r.afterRead = nil
		hook()
	}
	if !ok {
		return nil, apperrors.ErrStorageKeyNotFound
	}
	return &cp, nil
}

func (r *memStorage) Put(_ context.Context, e *models.StorageEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.UpdatedAt = time.Now()
	cp := *e
	r.storage[storageCacheKey(e.AccountID, e.Key)] = &cp
	return nil
}

// fakeStats implements statsStore and counts queries
type fakeStats struct {
	stats models.PortalStats
	calls int
	err   error
}

func (f *fakeStats) Counts(context.Context) (*models.PortalStats, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := f.stats
	return &cp, nil
}

// memCache is a map-backed cache.Cache
type memCache struct {
	mu     sync.Mutex
	items  map[string][]byte
	fences map[string]int64
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]byte{}, fences: map[string]int64{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *memCache) Fence(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fences[key], nil
}

func (c *memCache) SetIfFence(_ context.Context, key string, fence int64, value []byte, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fences[key] != fence {
		return false, nil
	}
	c.items[key] = value
	return true, nil
}

func (c *memCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fences[key]++
	delete(c.items, key)
	return nil
}

func (c *memCache) Healthy(context.Context) bool { return true }

// recordingNotifier remembers every notification it is asked to deliver
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

type sentNotification struct {
	AccountID int64
	Kind      models.NotificationKind
	Message   string
}

func (n *recordingNotifier) Notify(_ context.Context, accountID int64, kind models.NotificationKind, message string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{AccountID: accountID, Kind: kind, Message: message})
}

func (n *recordingNotifier) to(accountID int64) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []sentNotification{}
	for _, s := range n.sent {
		if s.AccountID == accountID {
			out = append(out, s)
		}
	}
	return out
}

// recordingMailer implements email.EmailService
type recordingMailer struct {
	approved, rejected, pending []string
	reasons                     []string
}

func (m *recordingMailer) SendApprovalEmail(to, _ string) error {
	m.approved = append(m.approved, to)
	return nil
}

func (m *recordingMailer) SendRejectionEmail(to, _, reason string) error {
	m.rejected = append(m.rejected, to)
	m.reasons = append(m.reasons, reason)
	return nil
}

func (m *recordingMailer) SendPendingReviewEmail(to, _ string) error {
	m.pending = append(m.pending, to)
	return nil
}

// recordingPusher implements Pusher
type recordingPusher struct {
	frames []pushedFrame
}

type pushedFrame struct {
	AccountID int64
	Kind      string
	Data      interface{}
}

func (p *recordingPusher) Push(accountID int64, kind string, data interface{}) {
	p.frames = append(p.frames, pushedFrame{AccountID: accountID, Kind: kind, Data: data})
}

// fakeFileStorage implements filestorage.FileStorage without touching disk
type fakeFileStorage struct {
	saved   []string
	deleted []string
}

func (f *fakeFileStorage) Save(fh *multipart.FileHeader, subPath string) (*filestorage.StoredFile, error) {
	if fh.Size == 0 {
		return nil, filestorage.ErrEmptyFile
	}
	url := filestorage.LocatorPrefix + "/" + subPath + "/stored-" + fh.Filename
	f.saved = append(f.saved, url)
	return &filestorage.StoredFile{URL: url, OriginalName: fh.Filename, Size: fh.Size, MimeType: "application/pdf"}, nil
}

func (f *fakeFileStorage) DeleteFile(fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

func (f *fakeFileStorage) GetFullPath(fileURL string) string { return fileURL }

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}
