// Package money implémente l'arithmétique HT / TVA / TTC du moteur de
// facturation. Fonctions pures sur shopspring/decimal, arrondi commercial
// à 2 décimales appliqué uniquement sur le résultat final, jamais sur les
// valeurs intermédiaires par unité.
package money

import "github.com/shopspring/decimal"

// Round2 applique l'arrondi à 2 décimales (demi au-dessus).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// TotalLigneHT calcule le total HT d'une ligne : round(prixUnitaire * quantite, 2).
// L'arrondi porte sur le produit, pas sur le prix unitaire.
func TotalLigneHT(prixUnitaire decimal.Decimal, quantite int64) decimal.Decimal {
	return Round2(prixUnitaire.Mul(decimal.NewFromInt(quantite)))
}

// ApplyTVA applique un taux de TVA (en pourcentage, 0–100) à un montant HT
// et retourne le TTC arrondi à 2 décimales. Un taux nul signifie pas de TVA :
// TTC = HT.
func ApplyTVA(montantHT decimal.Decimal, taux decimal.Decimal) decimal.Decimal {
	if taux.IsZero() {
		return Round2(montantHT)
	}
	facteur := decimal.NewFromInt(1).Add(taux.Div(decimal.NewFromInt(100)))
	return Round2(montantHT.Mul(facteur))
}

// ApplyTVAPtr variante avec taux optionnel : nil vaut 0 (pas de TVA).
func ApplyTVAPtr(montantHT decimal.Decimal, taux *decimal.Decimal) decimal.Decimal {
	if taux == nil {
		return Round2(montantHT)
	}
	return ApplyTVA(montantHT, *taux)
}
