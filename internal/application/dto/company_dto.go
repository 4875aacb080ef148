package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCompanyRequest : création d'une société émettrice.
type CreateCompanyRequest struct {
	Name           string           `json:"name" validate:"required,min=1,max=200"`
	SIREN          string           `json:"siren" validate:"required,len=9"`
	NumeroTVA      string           `json:"numero_tva"`
	Address        string           `json:"address"`
	Phone          string           `json:"phone"`
	Email          string           `json:"email" validate:"omitempty,email"`
	DefaultTauxTVA *decimal.Decimal `json:"default_taux_tva"` // absent : 20.00
	TVAEnabled     *bool            `json:"tva_enabled"`      // absent : true
}

// CompanyResponse : sortie d'une société.
type CompanyResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	SIREN          string          `json:"siren"`
	NumeroTVA      string          `json:"numero_tva"`
	Address        string          `json:"address"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Status         string          `json:"status"`
	DefaultTauxTVA decimal.Decimal `json:"default_taux_tva"`
	TVAEnabled     bool            `json:"tva_enabled"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
