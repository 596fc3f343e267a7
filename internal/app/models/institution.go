package models

import "time"

// Institution is a university or school publishing programs
type Institution struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Website     string    `json:"website,omitempty"`
	Location    string    `json:"location,omitempty"`
	Country     string    `json:"country,omitempty"`
	Description string    `json:"description,omitempty"`
	DocumentURL string    `json:"documentUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InstitutionAccount joins an institution with the account that manages it
type InstitutionAccount struct {
	Institution Institution `json:"institution"`
	Account     Account     `json:"account"`
}
