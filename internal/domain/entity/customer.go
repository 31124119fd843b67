package entity

import "time"

// Customer registro de cliente tal como lo guarda la capa de persistencia externa.
// El motor de duplicados solo lo lee.
type Customer struct {
	ID            string
	CompanyName   string
	Telephone     string
	AFM           string // NIF griego
	Address       string
	City          string
	PostalCode    string
	Email         string
	ContactPerson string
	Deleted       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
