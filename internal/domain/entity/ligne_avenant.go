package entity

import (
	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/domain/money"
)

// LigneAvenant : ligne d'avenant, registre des deltas.
//
// Principe du delta : l'avenant ne réécrit jamais les chiffres du devis
// d'origine. Chaque ligne consigne AncienneValeur (HT de la ligne source au
// moment de l'avenant, 0 pour un ajout), NouvelleValeur (HT après avenant)
// et Delta = NouvelleValeur - AncienneValeur.
//
// Interprétation du prix unitaire :
//   - avec LigneSource : PrixUnitaire est un delta par unité
//     (NouvelleValeur = AncienneValeur + PrixUnitaire*Quantite) ;
//   - sans LigneSource : PrixUnitaire est un prix absolu
//     (NouvelleValeur = PrixUnitaire*Quantite, AncienneValeur = 0).
type LigneAvenant struct {
	LigneDocument
	AvenantID string

	// LigneSource : référence faible vers la ligne de devis modifiée.
	// nil signifie "ligne nouvelle", pas une modification.
	LigneSource *LigneDevis

	AncienneValeur decimal.Decimal
	NouvelleValeur decimal.Decimal
	Delta          decimal.Decimal

	// AncienneValeurFigee : AncienneValeur est capturée au premier recalcul
	// et n'est plus jamais écrasée, même si la ligne source évolue.
	AncienneValeurFigee bool
}

// Validate : le prix unitaire négatif est autorisé (delta de réduction).
func (l *LigneAvenant) Validate() error {
	return l.LigneDocument.Validate(true)
}

// Recalculate met à jour TotalHT puis la comptabilité delta.
func (l *LigneAvenant) Recalculate() {
	l.LigneDocument.Recalculate()

	if l.LigneSource != nil && !l.AncienneValeurFigee {
		l.AncienneValeur = l.LigneSource.TotalHT
		l.AncienneValeurFigee = true
	}
	if l.LigneSource == nil {
		l.AncienneValeur = decimal.Zero.Round(2)
	}
	l.NouvelleValeur = l.AncienneValeur.Add(l.TotalHT)
	l.Delta = l.NouvelleValeur.Sub(l.AncienneValeur)
}

// TauxApplicable détermine le taux de TVA du delta, par ordre de priorité :
//  1. le taux de la ligne source si le devis est en TVA par ligne ;
//  2. le taux global du devis s'il ne l'est pas ;
//  3. le taux propre de la ligne d'avenant ;
//  4. le taux global de l'avenant ;
//  5. le taux global du devis en dernier recours.
func (l *LigneAvenant) TauxApplicable(devisParLigne bool, tauxDevis decimal.Decimal, tauxAvenant *decimal.Decimal) decimal.Decimal {
	if l.LigneSource != nil {
		if devisParLigne && l.LigneSource.TauxTVA != nil {
			return *l.LigneSource.TauxTVA
		}
		return tauxDevis
	}
	if l.TauxTVA != nil {
		return *l.TauxTVA
	}
	if tauxAvenant != nil {
		return *tauxAvenant
	}
	return tauxDevis
}

// DeltaTTC applique le taux applicable directement au Delta HT.
// Jamais NouvelleValeurTTC - AncienneValeurTTC arrondis séparément : ce
// double arrondi produit une dérive au centime. Contrat : un taux, une
// multiplication, un arrondi.
func (l *LigneAvenant) DeltaTTC(devisParLigne bool, tauxDevis decimal.Decimal, tauxAvenant *decimal.Decimal) decimal.Decimal {
	taux := l.TauxApplicable(devisParLigne, tauxDevis, tauxAvenant)
	return money.ApplyTVA(l.Delta, taux)
}

// NouvelleValeurTTC : valeur après avenant, TTC, au même taux que le delta.
func (l *LigneAvenant) NouvelleValeurTTC(devisParLigne bool, tauxDevis decimal.Decimal, tauxAvenant *decimal.Decimal) decimal.Decimal {
	taux := l.TauxApplicable(devisParLigne, tauxDevis, tauxAvenant)
	return money.ApplyTVA(l.NouvelleValeur, taux)
}
