package entity

import (
	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/money"
)

// LigneDocument : socle commun des lignes de devis, facture, avoir et avenant.
// Invariant : TotalHT == round(PrixUnitaire * Quantite, 2) après chaque
// Recalculate. Le recalcul est séquencé par l'appelant après un lot de
// modifications, pas à chaque micro-mutation.
type LigneDocument struct {
	ID           string
	Description  string
	Quantite     int64
	PrixUnitaire decimal.Decimal
	TotalHT      decimal.Decimal
	TauxTVA      *decimal.Decimal // nil : pas de taux propre, repli sur le taux global
	CatalogueRef string           // entrée du catalogue de prix dont la ligne est issue, vide sinon
}

// Validate rejette les entrées malformées à la frontière de mutation,
// avant tout recalcul de total. Le prix unitaire négatif est réservé aux
// lignes d'avoir et d'avenant (sémantique de remboursement / delta).
func (l *LigneDocument) Validate(allowNegativePrice bool) error {
	if l.Quantite <= 0 {
		return domain.ErrInvalidInput
	}
	if !allowNegativePrice && l.PrixUnitaire.IsNegative() {
		return domain.ErrInvalidInput
	}
	if l.TauxTVA != nil {
		if l.TauxTVA.IsNegative() || l.TauxTVA.GreaterThan(decimal.NewFromInt(100)) {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// Recalculate rétablit l'invariant TotalHT.
func (l *LigneDocument) Recalculate() {
	l.TotalHT = money.TotalLigneHT(l.PrixUnitaire, l.Quantite)
}

// MoneyLigne adapte la ligne pour l'agrégateur.
func (l *LigneDocument) MoneyLigne() money.Ligne {
	return money.Ligne{TotalHT: l.TotalHT, TauxTVA: l.TauxTVA}
}

// LigneDevis : ligne d'un devis.
type LigneDevis struct {
	LigneDocument
	DevisID string
}

// LigneFacture : ligne d'une facture.
type LigneFacture struct {
	LigneDocument
	FactureID string
}

// LigneAvoir : ligne d'un avoir. Le TotalHT peut être négatif
// (sémantique de remboursement).
type LigneAvoir struct {
	LigneDocument
	AvoirID string
}

// Validate : variante avoir, prix unitaire négatif autorisé.
func (l *LigneAvoir) Validate() error {
	return l.LigneDocument.Validate(true)
}
