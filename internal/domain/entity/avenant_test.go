package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
)

// avenantPret : avenant SENT d'une ligne d'ajout 100.00 HT, rattaché au devis.
func avenantPret(t *testing.T, devis *entity.Devis) *entity.Avenant {
	t.Helper()
	av := &entity.Avenant{ID: "avenant-1", DevisID: devis.ID, Statut: entity.AvenantBrouillon}
	l := &entity.LigneAvenant{}
	l.Description = "prestation ajoutée"
	l.Quantite = 1
	l.PrixUnitaire = dec("100.00")
	require.NoError(t, av.AjouterLigne(l))
	require.NoError(t, av.Recalculate(devis))
	require.NoError(t, av.Envoyer(aujourdhui, "email"))
	return av
}

// Garde trans-document : un avenant ne se signe que contre un devis SIGNED.
func TestAvenant_SignatureExigeDevisSigne(t *testing.T) {
	d := devisAvecLigne(t)
	require.NoError(t, d.Envoyer(aujourdhui, "email")) // SENT, pas SIGNED

	av := avenantPret(t, d)
	err := av.Signer(d, aujourdhui)
	require.Error(t, err, "devis non signé : l'avenant ne doit pas être signable")
	assert.True(t, domain.IsGuardError(err))
	assert.Equal(t, entity.AvenantEnvoye, av.Statut, "échec de garde : aucune mutation")
}

func TestAvenant_SignatureNominale(t *testing.T) {
	d := devisSigne(t)
	av := avenantPret(t, d)

	require.NoError(t, av.Signer(d, aujourdhui))
	assert.Equal(t, entity.AvenantSigne, av.Statut)
	require.NotNil(t, av.DateSignature)
}

// La garde court à chaque tentative : muter le statut du devis entre deux
// tentatives change le verdict, il n'y a pas de chemin de code privilégié.
func TestAvenant_GardeReevalueeAChaqueTentative(t *testing.T) {
	d := devisSigne(t)
	av := avenantPret(t, d)

	require.NoError(t, av.ValidateCanBeSigned(d))

	require.NoError(t, d.Annuler())
	assert.Error(t, av.ValidateCanBeSigned(d), "devis annulé : la même garde doit désormais refuser")
}

func TestAvenant_SignatureContreMauvaisDevisRefusee(t *testing.T) {
	d := devisSigne(t)
	av := avenantPret(t, d)

	autre := devisSigne(t)
	autre.ID = "devis-2"
	err := av.Signer(autre, aujourdhui)
	require.Error(t, err, "le devis passé doit être le devis de rattachement")
}

func TestAvenant_RattachementImmuableApresEmission(t *testing.T) {
	d := devisSigne(t)
	av := avenantPret(t, d) // SENT = émis

	err := av.RattacherDevis("devis-2")
	require.ErrorIs(t, err, domain.ErrImmutable)
	assert.Equal(t, d.ID, av.DevisID)
}

func TestAvenant_TotauxRecalculesDepuisLesLignes(t *testing.T) {
	d := devisSigne(t)
	av := &entity.Avenant{ID: "avenant-1", DevisID: d.ID, Statut: entity.AvenantBrouillon}

	// Modification : -10.00 sur la ligne d'origine de 100.00.
	mod := &entity.LigneAvenant{LigneSource: d.Lignes[0]}
	mod.Quantite = 1
	mod.PrixUnitaire = dec("-10.00")
	require.NoError(t, av.AjouterLigne(mod))

	// Ajout : 50.00.
	ajout := &entity.LigneAvenant{}
	ajout.Quantite = 1
	ajout.PrixUnitaire = dec("50.00")
	require.NoError(t, av.AjouterLigne(ajout))

	require.NoError(t, av.Recalculate(d))

	// MontantHT = somme des nouvelles valeurs : 90.00 + 50.00.
	assert.True(t, dec("140.00").Equal(av.MontantHT), "obtenu %s", av.MontantHT)
	assert.True(t, dec("168.00").Equal(av.MontantTTC), "140.00 à 20 %%, obtenu %s", av.MontantTTC)

	// Le delta TTC total, lui, reste la somme des deltas : -10 + 50 à 20 %.
	assert.True(t, dec("48.00").Equal(av.DeltaTotalTTC(d)))
}

func TestAvenant_RejetEtAnnulation(t *testing.T) {
	d := devisSigne(t)
	av := avenantPret(t, d)
	require.NoError(t, av.Rejeter())
	assert.Equal(t, entity.AvenantRejete, av.Statut)
	assert.Error(t, av.Annuler(), "REJECTED est final")

	av2 := avenantPret(t, d)
	av2.ID = "avenant-2"
	require.NoError(t, av2.Annuler())
	assert.Equal(t, entity.AvenantAnnule, av2.Statut)
}

func TestAvenant_RecalculRefuseApresEmission(t *testing.T) {
	d := devisSigne(t)
	av := avenantPret(t, d)
	require.ErrorIs(t, av.Recalculate(d), domain.ErrImmutable)
}
