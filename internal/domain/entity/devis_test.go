package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
)

var (
	aujourdhui = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	dansUnMois = time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	hier       = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
)

// devisAvecLigne : devis brouillon à une ligne HT=100.00, taux global 20 %.
func devisAvecLigne(t *testing.T) *entity.Devis {
	t.Helper()
	d := &entity.Devis{
		ID:           "devis-1",
		CompanyID:    "company-1",
		ClientID:     "client-1",
		Statut:       entity.DevisBrouillon,
		TauxTVA:      dec("20"),
		DateValidite: dansUnMois,
	}
	l := &entity.LigneDevis{}
	l.Description = "prestation de service"
	l.Quantite = 1
	l.PrixUnitaire = dec("100.00")
	require.NoError(t, d.AjouterLigne(l))
	require.NoError(t, d.Recalculate())
	return d
}

// devisSigne : devis passé DRAFT -> SENT -> SIGNED.
func devisSigne(t *testing.T) *entity.Devis {
	t.Helper()
	d := devisAvecLigne(t)
	require.NoError(t, d.Envoyer(aujourdhui, "email"))
	require.NoError(t, d.Signer(aujourdhui))
	return d
}

// ── Garde de signature ────────────────────────────────────────────────────────

func TestDevis_SignatureSansLigneRefusee(t *testing.T) {
	d := &entity.Devis{Statut: entity.DevisEnvoye, TauxTVA: dec("20"), DateValidite: dansUnMois}
	err := d.ValidateCanBeSigned(aujourdhui)
	require.Error(t, err, "un devis sans ligne ne doit pas être signable")
	assert.True(t, domain.IsGuardError(err))
	assert.Equal(t, entity.DevisEnvoye, d.Statut, "la garde ne doit rien muter")
}

func TestDevis_SignatureNominale(t *testing.T) {
	d := devisAvecLigne(t)
	assert.True(t, dec("100.00").Equal(d.MontantHT))
	assert.True(t, dec("120.00").Equal(d.MontantTTC), "HT 100.00 à 20 % -> TTC 120.00")

	require.NoError(t, d.Envoyer(aujourdhui, "email"))
	require.NoError(t, d.Signer(aujourdhui))
	assert.Equal(t, entity.DevisSigne, d.Statut)
	require.NotNil(t, d.DateSignature)
}

func TestDevis_SignatureDepuisBrouillonRefusee(t *testing.T) {
	d := devisAvecLigne(t)
	err := d.Signer(aujourdhui)
	require.Error(t, err, "signature possible uniquement depuis SENT")
	assert.Equal(t, entity.DevisBrouillon, d.Statut)
}

func TestDevis_SignatureDevisExpireRefusee(t *testing.T) {
	d := devisAvecLigne(t)
	d.DateValidite = hier
	require.NoError(t, d.Envoyer(aujourdhui, "email"))
	err := d.Signer(aujourdhui)
	require.Error(t, err, "un devis dont la validité est dépassée ne doit pas être signable")
	assert.True(t, domain.IsGuardError(err))
	assert.Equal(t, entity.DevisEnvoye, d.Statut)
}

func TestDevis_EnvoiSansLigneRefuse(t *testing.T) {
	d := &entity.Devis{Statut: entity.DevisBrouillon, TauxTVA: dec("20")}
	err := d.Envoyer(aujourdhui, "email")
	require.Error(t, err)
	assert.Equal(t, entity.DevisBrouillon, d.Statut)
}

// ── Immuabilité post-émission ─────────────────────────────────────────────────

func TestDevis_NumeroAssigneUneSeuleFois(t *testing.T) {
	d := devisAvecLigne(t)
	require.NoError(t, d.AssignerNumero("DEV-2026-0001"), "numérotation d'un brouillon : autorisée")
	require.NoError(t, d.Envoyer(aujourdhui, "email"))

	err := d.AssignerNumero("DEV-2026-9999")
	require.ErrorIs(t, err, domain.ErrImmutable,
		"changer le numéro d'un document émis doit échouer bruyamment")
	assert.Equal(t, "DEV-2026-0001", d.Numero)

	// Reposer le même numéro est un no-op légal.
	assert.NoError(t, d.AssignerNumero("DEV-2026-0001"))
}

func TestDevis_RecalculRefuseApresEmission(t *testing.T) {
	d := devisAvecLigne(t)
	require.NoError(t, d.Envoyer(aujourdhui, "email"))

	avantHT, avantTTC := d.MontantHT, d.MontantTTC
	err := d.Recalculate()
	require.ErrorIs(t, err, domain.ErrImmutable)
	assert.True(t, avantHT.Equal(d.MontantHT), "MontantHT gelé après émission")
	assert.True(t, avantTTC.Equal(d.MontantTTC), "MontantTTC gelé après émission")

	errLigne := d.AjouterLigne(&entity.LigneDevis{})
	require.ErrorIs(t, errLigne, domain.ErrImmutable)
}

// ── Transitions diverses ──────────────────────────────────────────────────────

func TestDevis_RefusEtAnnulation(t *testing.T) {
	d := devisAvecLigne(t)
	require.NoError(t, d.Envoyer(aujourdhui, "email"))
	require.NoError(t, d.Refuser())
	assert.Equal(t, entity.DevisRefuse, d.Statut)

	// REFUSED est final : plus aucune transition.
	assert.Error(t, d.Annuler())
	assert.Error(t, d.Signer(aujourdhui))
}

func TestDevis_Expiration(t *testing.T) {
	d := devisAvecLigne(t)
	require.NoError(t, d.Envoyer(aujourdhui, "email"))

	tropTot := d.Expirer(aujourdhui)
	require.Error(t, tropTot, "validité non dépassée : pas d'expiration")

	d.DateValidite = hier
	require.NoError(t, d.Expirer(aujourdhui))
	assert.Equal(t, entity.DevisExpire, d.Statut)
}

// ── Vue corrigée (devis + avenants) ───────────────────────────────────────────

// avenantAvecDelta construit un avenant d'une ligne d'ajout de delta donné,
// au taux propre fourni.
func avenantAvecDelta(t *testing.T, devis *entity.Devis, statut entity.StatutAvenant, delta string, taux *decimal.Decimal) *entity.Avenant {
	t.Helper()
	av := &entity.Avenant{ID: "avenant-" + delta, DevisID: devis.ID, Statut: entity.AvenantBrouillon}
	l := &entity.LigneAvenant{}
	l.Description = "ajout"
	l.Quantite = 1
	l.PrixUnitaire = dec(delta)
	l.TauxTVA = taux
	require.NoError(t, av.AjouterLigne(l))
	require.NoError(t, av.Recalculate(devis))
	av.Statut = statut
	return av
}

// Additivité du delta : totalCorrected = montantTTC + deltaTTC, où deltaTTC
// résulte d'une seule application de taux sur D.
func TestDevis_TotalCorrige_Additivite(t *testing.T) {
	d := devisSigne(t)
	require.True(t, dec("120.00").Equal(d.MontantTTC))

	av := avenantAvecDelta(t, d, entity.AvenantSigne, "100.00", nil)
	total := d.TotalCorrige([]*entity.Avenant{av})
	assert.True(t, dec("240.00").Equal(total),
		"120.00 + (100.00 à 20 %%) = 240.00, obtenu %s", total)
}

// Les avenants DRAFT et SENT comptent dans le total corrigé, seuls les
// CANCELLED sont exclus. Comportement historique conservé tel quel :
// décision produit à confirmer (voir DESIGN.md), ne pas "corriger" ici.
func TestDevis_TotalCorrige_InclutBrouillonsExclutAnnules(t *testing.T) {
	d := devisSigne(t)

	brouillon := avenantAvecDelta(t, d, entity.AvenantBrouillon, "10.00", nil)
	envoye := avenantAvecDelta(t, d, entity.AvenantEnvoye, "20.00", nil)
	annule := avenantAvecDelta(t, d, entity.AvenantAnnule, "1000.00", nil)

	total := d.TotalCorrige([]*entity.Avenant{brouillon, envoye, annule})
	// 120 + 12 + 24, l'avenant annulé est ignoré.
	assert.True(t, dec("156.00").Equal(total), "obtenu %s", total)
}

// L'acompte et le solde corrigés repartent du total corrigé non arrondi,
// et leur somme retombe exactement sur TotalCorrige.
func TestDevis_AcompteEtSoldeCorriges(t *testing.T) {
	d := devisSigne(t)
	d.AcomptePourcentage = dec("30")

	av := avenantAvecDelta(t, d, entity.AvenantSigne, "100.00", nil)
	avenants := []*entity.Avenant{av}

	total := d.TotalCorrige(avenants)   // 240.00
	acompte := d.AcompteCorrige(avenants) // 72.00
	solde := d.SoldeCorrige(avenants)   // 168.00

	assert.True(t, dec("240.00").Equal(total))
	assert.True(t, dec("72.00").Equal(acompte))
	assert.True(t, dec("168.00").Equal(solde))
	assert.True(t, total.Equal(acompte.Add(solde)), "acompte + solde == total corrigé")
}

// Sans avenant, le total corrigé est le TTC d'origine.
func TestDevis_TotalCorrige_SansAvenant(t *testing.T) {
	d := devisSigne(t)
	assert.True(t, d.MontantTTC.Equal(d.TotalCorrige(nil)))
}

// ── Mode TVA hérité ───────────────────────────────────────────────────────────

func TestDevis_ModeTVADetecteSurLignesQuandFlagAbsent(t *testing.T) {
	d := devisAvecLigne(t) // TVAParLigne == nil, ligne sans taux propre
	assert.False(t, d.UsesTVAParLigne())

	l := &entity.LigneDevis{}
	l.Quantite = 1
	l.PrixUnitaire = dec("10.00")
	l.TauxTVA = tauxPtr("5.5")
	require.NoError(t, d.AjouterLigne(l))
	assert.True(t, d.UsesTVAParLigne(), "repli heuristique : une ligne avec taux propre bascule le mode")

	// Flag explicite : il prime toujours sur la détection.
	modeGlobal := false
	d.TVAParLigne = &modeGlobal
	assert.False(t, d.UsesTVAParLigne())
}

func TestDevis_ErreurGardeEstTypee(t *testing.T) {
	d := &entity.Devis{Statut: entity.DevisEnvoye, DateValidite: dansUnMois}
	err := d.ValidateCanBeSigned(aujourdhui)
	var ge *domain.GuardError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "devis", ge.Document)
	assert.NotEmpty(t, ge.Reason, "la garde doit porter un motif lisible")
}
