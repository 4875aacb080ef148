package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
)

func TestFacture_EmissionSansLigneRefusee(t *testing.T) {
	f := &entity.Facture{Statut: entity.FactureBrouillon, DevisID: "devis-1", TauxTVA: dec("20")}
	err := f.Envoyer(aujourdhui, "email")
	require.Error(t, err)
	assert.True(t, domain.IsGuardError(err))
	assert.Equal(t, entity.FactureBrouillon, f.Statut)
}

func TestFacture_CycleNominal(t *testing.T) {
	f := factureEmise(t)
	assert.Equal(t, entity.FactureEnvoyee, f.Statut)
	require.NotNil(t, f.DateEmission)

	require.NoError(t, f.MarquerPayee(aujourdhui))
	assert.Equal(t, entity.FacturePayee, f.Statut)
	require.NotNil(t, f.DatePaiement)

	assert.Error(t, f.Annuler(), "PAID est final")
}

func TestFacture_PassageEnRetard(t *testing.T) {
	f := factureEmise(t)

	tropTot := f.MarquerEnRetard(aujourdhui)
	require.Error(t, tropTot, "échéance non dépassée : pas de passage en retard")

	f.DateEcheance = hier
	require.NoError(t, f.MarquerEnRetard(aujourdhui))
	assert.Equal(t, entity.FactureEnRetard, f.Statut)

	// Une facture en retard reste encaissable.
	require.NoError(t, f.MarquerPayee(aujourdhui))
	assert.Equal(t, entity.FacturePayee, f.Statut)
}

func TestFacture_ImmuabiliteApresEmission(t *testing.T) {
	f := factureEmise(t)

	avantHT, avantTTC := f.MontantHT, f.MontantTTC
	require.ErrorIs(t, f.Recalculate(), domain.ErrImmutable)
	assert.True(t, avantHT.Equal(f.MontantHT))
	assert.True(t, avantTTC.Equal(f.MontantTTC))

	l := &entity.LigneFacture{}
	l.Quantite = 1
	l.PrixUnitaire = dec("5.00")
	require.ErrorIs(t, f.AjouterLigne(l), domain.ErrImmutable)
}

func TestFacture_NumeroImmuableApresEmission(t *testing.T) {
	f := &entity.Facture{Statut: entity.FactureBrouillon, DevisID: "devis-1", TauxTVA: dec("20")}
	l := &entity.LigneFacture{}
	l.Quantite = 1
	l.PrixUnitaire = dec("100.00")
	require.NoError(t, f.AjouterLigne(l))
	require.NoError(t, f.Recalculate())

	require.NoError(t, f.AssignerNumero("FAC-2026-0001"))
	require.NoError(t, f.Envoyer(aujourdhui, "email"))

	require.ErrorIs(t, f.AssignerNumero("FAC-2026-0002"), domain.ErrImmutable)
	assert.Equal(t, "FAC-2026-0001", f.Numero)
}

func TestFacture_LignePrixNegatifRefusee(t *testing.T) {
	f := &entity.Facture{Statut: entity.FactureBrouillon, TauxTVA: dec("20")}
	l := &entity.LigneFacture{}
	l.Quantite = 1
	l.PrixUnitaire = dec("-5.00")
	require.ErrorIs(t, f.AjouterLigne(l), domain.ErrInvalidInput,
		"le prix négatif est réservé aux avoirs et avenants")
}

func TestFacture_LigneRegularisationAccepteUnDeltaNegatif(t *testing.T) {
	f := &entity.Facture{Statut: entity.FactureBrouillon, TauxTVA: dec("20")}
	base := &entity.LigneFacture{}
	base.Quantite = 1
	base.PrixUnitaire = dec("100.00")
	require.NoError(t, f.AjouterLigne(base))

	delta := &entity.LigneFacture{}
	delta.Quantite = 1
	delta.PrixUnitaire = dec("-25.00")
	require.NoError(t, f.AjouterLigneRegularisation(delta))

	require.NoError(t, f.Recalculate())
	assert.True(t, dec("75.00").Equal(f.MontantHT))
}

func TestFacture_RenvoiIncrementeCompteur(t *testing.T) {
	f := factureEmise(t)
	require.Equal(t, 1, f.NbEnvois)
	require.NoError(t, f.EnregistrerRenvoi(aujourdhui, "courrier"))
	assert.Equal(t, 2, f.NbEnvois)
	assert.Equal(t, "courrier", f.CanalEnvoi)
	assert.Equal(t, entity.FactureEnvoyee, f.Statut, "un renvoi ne change pas le statut")
}
