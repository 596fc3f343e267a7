package dto

import "github.com/fahad-nakib/CareerCompass-sub000/internal/app/models"

// RegisterInstitutionRequest represents institution sign-up data
type RegisterInstitutionRequest struct {
	Name        string `json:"name" binding:"required,max=255" example:"Acme U"`
	Email       string `json:"email" binding:"required,email" example:"a@acme.edu"`
	Password    string `json:"password" binding:"required"`
	Website     string `json:"website,omitempty" binding:"omitempty,max=255"`
	Location    string `json:"location,omitempty" binding:"omitempty,max=255"`
	Country     string `json:"country,omitempty" binding:"omitempty,max=100"`
	Description string `json:"description,omitempty"`
	DocumentURL string `json:"documentUrl,omitempty"`
}

// ToModels splits the request into the institution and its managing account
func (r *RegisterInstitutionRequest) ToModels() (*models.Institution, *models.Account) {
	inst := &models.Institution{
		Name:        r.Name,
		Website:     r.Website,
		Location:    r.Location,
		Country:     r.Country,
		Description: r.Description,
		DocumentURL: r.DocumentURL,
	}
	acc := &models.Account{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     models.RoleInstitution,
	}
	return inst, acc
}

// InstitutionResponse is an institution together with its approval state
type InstitutionResponse struct {
	models.Institution
	Account AccountResponse `json:"account"`
}

// NewInstitutionResponse maps a joined institution row to its response
func NewInstitutionResponse(ia *models.InstitutionAccount) InstitutionResponse {
	return InstitutionResponse{
		Institution: ia.Institution,
		Account:     NewAccountResponse(&ia.Account),
	}
}
