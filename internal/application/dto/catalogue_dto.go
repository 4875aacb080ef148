package dto

import "github.com/shopspring/decimal"

// CreateCatalogueEntryRequest : corps de POST /api/catalogue.
type CreateCatalogueEntryRequest struct {
	Label        string           `json:"label" validate:"required,min=1,max=200"`
	PrixUnitaire decimal.Decimal  `json:"prix_unitaire" validate:"required"`
	TauxTVA      *decimal.Decimal `json:"taux_tva"` // absent : taux par défaut de la société
	Unite        string           `json:"unite"`
}

// CatalogueEntryResponse : entrée de catalogue dans les réponses.
type CatalogueEntryResponse struct {
	ID           string           `json:"id"`
	CompanyID    string           `json:"company_id"`
	Label        string           `json:"label"`
	PrixUnitaire decimal.Decimal  `json:"prix_unitaire"`
	TauxTVA      *decimal.Decimal `json:"taux_tva,omitempty"`
	Unite        string           `json:"unite,omitempty"`
	Actif        bool             `json:"actif"`
}
