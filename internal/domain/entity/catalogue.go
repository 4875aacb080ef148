package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogueEntry : entrée du catalogue de prix. Lecture seule côté moteur :
// sert à pré-remplir la description et le prix unitaire d'une ligne qui la
// référence, la ligne garde ensuite sa propre copie des valeurs.
type CatalogueEntry struct {
	ID           string
	CompanyID    string
	Label        string
	PrixUnitaire decimal.Decimal
	TauxTVA      *decimal.Decimal // nil : taux par défaut de la société
	Unite        string           // "heure", "jour", "forfait", ...
	Actif        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
