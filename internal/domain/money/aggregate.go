package money

import "github.com/shopspring/decimal"

// Totaux : résultat de l'agrégation des lignes d'un document.
type Totaux struct {
	HT  decimal.Decimal
	TVA decimal.Decimal
	TTC decimal.Decimal
}

// Ligne : vue minimale d'une ligne pour l'agrégation. Chaque entité
// (devis, avenant, facture, avoir) adapte ses lignes vers ce type.
type Ligne struct {
	TotalHT decimal.Decimal
	TauxTVA *decimal.Decimal // nil : la ligne n'a pas de taux propre
}

// Aggregate additionne les lignes d'un document selon le mode de TVA.
//
// Mode par ligne (parLigne=true) : le TTC est la somme des TTC calculés
// ligne à ligne avec le taux propre de chaque ligne (repli sur le taux
// global si la ligne n'en a pas) ; TVA = TTC - HT. C'est le mode des
// factures à taux mixtes.
//
// Mode global (parLigne=false) : un seul taux appliqué à la somme HT.
//
// Les deux modes ne donnent pas le même résultat quand les taux de lignes
// diffèrent entre eux : c'est voulu. Le mode est un attribut persisté du
// document, pas une déduction faite à l'agrégation.
func Aggregate(lignes []Ligne, parLigne bool, tauxGlobal decimal.Decimal) Totaux {
	if len(lignes) == 0 {
		return Totaux{HT: decimal.Zero, TVA: decimal.Zero, TTC: decimal.Zero}
	}

	ht := decimal.Zero
	for _, l := range lignes {
		ht = ht.Add(l.TotalHT)
	}
	ht = Round2(ht)

	if parLigne {
		ttc := decimal.Zero
		for _, l := range lignes {
			taux := tauxGlobal
			if l.TauxTVA != nil {
				taux = *l.TauxTVA
			}
			ttc = ttc.Add(ApplyTVA(l.TotalHT, taux))
		}
		ttc = Round2(ttc)
		return Totaux{HT: ht, TVA: ttc.Sub(ht), TTC: ttc}
	}

	ttc := ApplyTVA(ht, tauxGlobal)
	return Totaux{HT: ht, TVA: ttc.Sub(ht), TTC: ttc}
}

// DetectTVAParLigne : repli historique quand le document ne porte pas de
// drapeau de mode explicite (colonne NULL en base). Une ligne avec un taux
// propre suffit à basculer en mode par ligne. Heuristique, pas une garantie :
// persister le mode explicitement pour tout nouveau document.
func DetectTVAParLigne(lignes []Ligne) bool {
	for _, l := range lignes {
		if l.TauxTVA != nil {
			return true
		}
	}
	return false
}
