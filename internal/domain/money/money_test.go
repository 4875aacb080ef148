package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/facturio/facturation-api/internal/domain/money"
)

// ──────────────────────────────────────────────────────────────────────────────
// Arithmétique HT / TVA / TTC. Contrat : arrondi à 2 décimales sur le résultat
// final uniquement, jamais sur les valeurs intermédiaires par unité.
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTotalLigneHT_ArrondiSurLeProduit(t *testing.T) {
	// 3 x 33.335 = 100.005 -> 100.01. Si on arrondissait le prix unitaire
	// d'abord (33.34 ou 33.33), on obtiendrait 100.02 ou 99.99.
	total := money.TotalLigneHT(dec("33.335"), 3)
	assert.True(t, dec("100.01").Equal(total),
		"l'arrondi doit porter sur le produit, pas sur le prix unitaire (obtenu %s)", total)
}

func TestTotalLigneHT_CasSimples(t *testing.T) {
	assert.True(t, dec("100.00").Equal(money.TotalLigneHT(dec("50.00"), 2)))
	assert.True(t, dec("0.00").Equal(money.TotalLigneHT(dec("0"), 5)))
	assert.True(t, dec("-10.00").Equal(money.TotalLigneHT(dec("-10.00"), 1)),
		"un prix unitaire négatif (delta, avoir) doit passer tel quel")
}

func TestApplyTVA_TauxNormal(t *testing.T) {
	assert.True(t, dec("120.00").Equal(money.ApplyTVA(dec("100.00"), dec("20"))))
	assert.True(t, dec("120.12").Equal(money.ApplyTVA(dec("100.10"), dec("20"))))
	assert.True(t, dec("105.50").Equal(money.ApplyTVA(dec("100.00"), dec("5.5"))),
		"taux réduit 5.5 % : 100.00 -> 105.50")
}

func TestApplyTVA_TauxNulOuAbsent(t *testing.T) {
	// Taux 0 ou nil : pas de TVA, TTC = HT.
	assert.True(t, dec("100.00").Equal(money.ApplyTVA(dec("100.00"), decimal.Zero)))
	assert.True(t, dec("100.00").Equal(money.ApplyTVAPtr(dec("100.00"), nil)))
}

func TestApplyTVA_UnSeulArrondi(t *testing.T) {
	// 0.08 x 1.20 = 0.096 -> 0.10 (demi au-dessus).
	assert.True(t, dec("0.10").Equal(money.ApplyTVA(dec("0.08"), dec("20"))))
}

func TestRound2_DemiAuDessus(t *testing.T) {
	assert.True(t, dec("100.01").Equal(money.Round2(dec("100.005"))))
	assert.True(t, dec("100.00").Equal(money.Round2(dec("100.004"))))
}

func TestRound2_MidpointNegatifSymetrique(t *testing.T) {
	// Arrondi fiscal : le demi s'éloigne de zéro dans les deux sens, un delta
	// d'avenant de -0.525 donne -0.53 et non -0.52.
	assert.True(t, dec("-0.53").Equal(money.Round2(dec("-0.525"))))
}
