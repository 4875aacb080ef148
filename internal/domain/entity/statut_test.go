package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/facturio/facturation-api/internal/domain/entity"
)

// Prédicats exhaustifs des quatre machines à états : IsModifiable vrai
// uniquement pré-émission, IsEmitted vrai partout ailleurs (annulation
// comprise), IsFinal vrai sur les états sans sortie.

func TestStatutDevis_Predicats(t *testing.T) {
	cas := []struct {
		statut     entity.StatutDevis
		modifiable bool
		emis       bool
		final      bool
	}{
		{entity.DevisBrouillon, true, false, false},
		{entity.DevisEnvoye, false, true, false},
		{entity.DevisSigne, false, true, false},
		{entity.DevisRefuse, false, true, true},
		{entity.DevisExpire, false, true, true},
		{entity.DevisAnnule, false, true, true},
	}
	for _, c := range cas {
		assert.Equal(t, c.modifiable, c.statut.IsModifiable(), "IsModifiable(%s)", c.statut)
		assert.Equal(t, c.emis, c.statut.IsEmitted(), "IsEmitted(%s)", c.statut)
		assert.Equal(t, c.final, c.statut.IsFinal(), "IsFinal(%s)", c.statut)
		assert.True(t, c.statut.IsValid())
		assert.NotEmpty(t, c.statut.Label())
		assert.NotEmpty(t, c.statut.Couleur())
	}
	assert.False(t, entity.StatutDevis("INCONNU").IsValid())
}

func TestStatutAvenant_Predicats(t *testing.T) {
	cas := []struct {
		statut     entity.StatutAvenant
		modifiable bool
		emis       bool
		final      bool
	}{
		{entity.AvenantBrouillon, true, false, false},
		{entity.AvenantEnvoye, false, true, false},
		{entity.AvenantSigne, false, true, false},
		{entity.AvenantRejete, false, true, true},
		{entity.AvenantAnnule, false, true, true},
	}
	for _, c := range cas {
		assert.Equal(t, c.modifiable, c.statut.IsModifiable(), "IsModifiable(%s)", c.statut)
		assert.Equal(t, c.emis, c.statut.IsEmitted(), "IsEmitted(%s)", c.statut)
		assert.Equal(t, c.final, c.statut.IsFinal(), "IsFinal(%s)", c.statut)
		assert.True(t, c.statut.IsValid())
	}
}

func TestStatutFacture_Predicats(t *testing.T) {
	cas := []struct {
		statut     entity.StatutFacture
		modifiable bool
		emis       bool
		final      bool
	}{
		{entity.FactureBrouillon, true, false, false},
		{entity.FactureEnvoyee, false, true, false},
		{entity.FacturePayee, false, true, true},
		{entity.FactureEnRetard, false, true, false},
		{entity.FactureAnnulee, false, true, true},
	}
	for _, c := range cas {
		assert.Equal(t, c.modifiable, c.statut.IsModifiable(), "IsModifiable(%s)", c.statut)
		assert.Equal(t, c.emis, c.statut.IsEmitted(), "IsEmitted(%s)", c.statut)
		assert.Equal(t, c.final, c.statut.IsFinal(), "IsFinal(%s)", c.statut)
	}
	assert.True(t, entity.FactureEnRetard.CanBePaid(), "une facture en retard reste encaissable")
	assert.False(t, entity.FacturePayee.CanBeCancelled())
}

func TestStatutAvoir_Predicats(t *testing.T) {
	cas := []struct {
		statut     entity.StatutAvoir
		modifiable bool
		emis       bool
		final      bool
	}{
		{entity.AvoirBrouillon, true, false, false},
		{entity.AvoirEmis, false, true, false},
		{entity.AvoirEnvoye, false, true, false},
		{entity.AvoirRembourse, false, true, true},
		{entity.AvoirAnnule, false, true, true},
	}
	for _, c := range cas {
		assert.Equal(t, c.modifiable, c.statut.IsModifiable(), "IsModifiable(%s)", c.statut)
		assert.Equal(t, c.emis, c.statut.IsEmitted(), "IsEmitted(%s)", c.statut)
		assert.Equal(t, c.final, c.statut.IsFinal(), "IsFinal(%s)", c.statut)
	}
	assert.True(t, entity.AvoirEmis.CanBeRefunded())
	assert.True(t, entity.AvoirEnvoye.CanBeRefunded())
	assert.False(t, entity.AvoirBrouillon.CanBeRefunded())
}
