package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturation-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Registre des deltas (lignes d'avenant).
//
// Principe du delta : l'avenant ne réécrit jamais les chiffres du devis ;
// chaque ligne consigne AncienneValeur / NouvelleValeur / Delta, et le delta
// TTC s'obtient par UNE application de taux sur le delta HT (un taux, une
// multiplication, un arrondi).
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tauxPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func ligneDevis(totalHT string, taux *decimal.Decimal) *entity.LigneDevis {
	l := &entity.LigneDevis{}
	l.Description = "ligne d'origine"
	l.Quantite = 1
	l.PrixUnitaire = dec(totalHT)
	l.TauxTVA = taux
	l.Recalculate()
	return l
}

// Ajout : sans ligne source, le prix unitaire est un prix absolu.
// unitPrice=50.00, quantity=2 -> old=0.00, new=100.00, delta=100.00.
func TestLigneAvenant_Ajout(t *testing.T) {
	l := &entity.LigneAvenant{}
	l.Description = "prestation supplémentaire"
	l.Quantite = 2
	l.PrixUnitaire = dec("50.00")

	require.NoError(t, l.Validate())
	l.Recalculate()

	assert.True(t, dec("0.00").Equal(l.AncienneValeur), "ajout : ancienne valeur 0.00")
	assert.True(t, dec("100.00").Equal(l.NouvelleValeur))
	assert.True(t, dec("100.00").Equal(l.Delta))
}

// Modification : avec ligne source, le prix unitaire est un delta par unité.
// source.totalHt=100.00, unitPrice=-10.00, quantity=1 -> old=100, new=90, delta=-10.
func TestLigneAvenant_Modification(t *testing.T) {
	source := ligneDevis("100.00", nil)

	l := &entity.LigneAvenant{LigneSource: source}
	l.Description = "remise négociée"
	l.Quantite = 1
	l.PrixUnitaire = dec("-10.00")

	require.NoError(t, l.Validate(), "le prix unitaire négatif est légal sur une ligne d'avenant")
	l.Recalculate()

	assert.True(t, dec("100.00").Equal(l.AncienneValeur))
	assert.True(t, dec("90.00").Equal(l.NouvelleValeur))
	assert.True(t, dec("-10.00").Equal(l.Delta))
}

// L'ancienne valeur est capturée au premier recalcul puis figée : si la ligne
// source évolue ensuite, l'avenant garde la photographie d'origine.
func TestLigneAvenant_AncienneValeurFigee(t *testing.T) {
	source := ligneDevis("100.00", nil)

	l := &entity.LigneAvenant{LigneSource: source}
	l.Quantite = 1
	l.PrixUnitaire = dec("-10.00")
	l.Recalculate()
	require.True(t, dec("100.00").Equal(l.AncienneValeur))

	// La ligne source bouge après coup.
	source.PrixUnitaire = dec("200.00")
	source.Recalculate()

	l.Recalculate()
	assert.True(t, dec("100.00").Equal(l.AncienneValeur),
		"l'ancienne valeur ne doit jamais être écrasée par un recalcul ultérieur")
	assert.True(t, dec("90.00").Equal(l.NouvelleValeur))
}

// Contrat anti-dérive : deltaTTC = round(delta x (1+taux)), jamais
// newTTC arrondi - oldTTC arrondi. Vecteur choisi pour que le double arrondi
// donne un résultat différent : old=0.13, new=0.21 à 20 %.
//
//	double arrondi : round(0.21x1.2)=0.25 ; round(0.13x1.2)=0.16 ; diff=0.09
//	contrat        : delta=0.08 ; round(0.08x1.2)=0.10
func TestLigneAvenant_DeltaTTC_UnSeulArrondi(t *testing.T) {
	source := ligneDevis("0.13", nil)

	l := &entity.LigneAvenant{LigneSource: source}
	l.Quantite = 1
	l.PrixUnitaire = dec("0.08")
	l.Recalculate()
	require.True(t, dec("0.08").Equal(l.Delta))

	deltaTTC := l.DeltaTTC(false, dec("20"), nil)
	assert.True(t, dec("0.10").Equal(deltaTTC),
		"deltaTTC doit valoir 0.10 (un seul arrondi), pas 0.09 (soustraction de deux TTC arrondis), obtenu %s", deltaTTC)
}

// ── Priorité des taux ─────────────────────────────────────────────────────────

// 1. Ligne source + devis en TVA par ligne : taux de la ligne source.
func TestLigneAvenant_Taux_LigneSourceEnModeParLigne(t *testing.T) {
	source := ligneDevis("100.00", tauxPtr("5.5"))
	l := &entity.LigneAvenant{LigneSource: source}
	l.Quantite = 1
	l.PrixUnitaire = dec("10.00")
	l.Recalculate()

	taux := l.TauxApplicable(true, dec("20"), tauxPtr("10"))
	assert.True(t, dec("5.5").Equal(taux), "le taux de la ligne source prime en mode par ligne")
}

// 2. Ligne source + devis en mode global : taux global du devis, même si la
// ligne d'avenant porte son propre taux.
func TestLigneAvenant_Taux_LigneSourceEnModeGlobal(t *testing.T) {
	source := ligneDevis("100.00", tauxPtr("5.5"))
	l := &entity.LigneAvenant{LigneSource: source}
	l.Quantite = 1
	l.PrixUnitaire = dec("10.00")
	l.TauxTVA = tauxPtr("10")
	l.Recalculate()

	taux := l.TauxApplicable(false, dec("20"), tauxPtr("10"))
	assert.True(t, dec("20").Equal(taux), "en mode global c'est le taux du devis qui s'applique")
}

// 3-4-5. Ajout : taux propre de la ligne, sinon taux global de l'avenant,
// sinon taux global du devis en dernier recours.
func TestLigneAvenant_Taux_PrioriteSurAjout(t *testing.T) {
	base := func() *entity.LigneAvenant {
		l := &entity.LigneAvenant{}
		l.Quantite = 1
		l.PrixUnitaire = dec("100.00")
		l.Recalculate()
		return l
	}

	avecTauxPropre := base()
	avecTauxPropre.TauxTVA = tauxPtr("10")
	assert.True(t, dec("10").Equal(avecTauxPropre.TauxApplicable(false, dec("20"), tauxPtr("5.5"))))

	sansTauxPropre := base()
	assert.True(t, dec("5.5").Equal(sansTauxPropre.TauxApplicable(false, dec("20"), tauxPtr("5.5"))))

	dernierRecours := base()
	assert.True(t, dec("20").Equal(dernierRecours.TauxApplicable(false, dec("20"), nil)))
}

// ── Frontière de mutation ─────────────────────────────────────────────────────

func TestLigneAvenant_QuantiteInvalideRejetee(t *testing.T) {
	l := &entity.LigneAvenant{}
	l.Quantite = 0
	l.PrixUnitaire = dec("10.00")
	assert.Error(t, l.Validate(), "quantité nulle rejetée avant tout recalcul")

	l.Quantite = -3
	assert.Error(t, l.Validate(), "quantité négative rejetée avant tout recalcul")
}
