package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturation-api/internal/application/dto"
	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
)

func avoirEnv(t *testing.T) (*AvoirUseCase, *fakeStore) {
	t.Helper()
	store := newFakeStore()

	emission := time.Now().AddDate(0, 0, -10)
	global := false
	store.factures.items["f-1"] = &entity.Facture{
		ID:           "f-1",
		CompanyID:    "c-1",
		ClientID:     "cl-1",
		DevisID:      "d-1",
		Numero:       "FAC-2026-0001",
		Statut:       entity.FactureEnvoyee,
		MontantHT:    dec("100.00"),
		MontantTTC:   dec("120.00"),
		TauxTVA:      dec("20.00"),
		TVAParLigne:  &global,
		DateEmission: &emission,
	}

	catalogue := &fakeCatalogueRepo{items: map[string]*entity.CatalogueEntry{}}
	uc := NewAvoirUseCase(store, store.avoirs, store.factures, catalogue, &fakeSender{})
	return uc, store
}

func creerAvoir(t *testing.T, uc *AvoirUseCase, motif, prix string) *dto.AvoirResponse {
	t.Helper()
	out, err := uc.Create(context.Background(), "c-1", dto.CreateAvoirRequest{
		FactureID: "f-1",
		Motif:     motif,
		Lignes: []dto.LigneRequest{
			{Description: "régularisation", Quantite: 1, PrixUnitaire: dec(prix)},
		},
	})
	require.NoError(t, err)
	return out
}

func TestAvoirUseCase_CreateHeriteDeLaFacture(t *testing.T) {
	uc, store := avoirEnv(t)

	out := creerAvoir(t, uc, "remise commerciale", "50.00")

	assert.Equal(t, string(entity.AvoirBrouillon), out.Statut)
	assert.Equal(t, "cl-1", out.ClientID, "client repris de la facture visée")
	assert.True(t, dec("20.00").Equal(out.TauxTVA), "taux repris de la facture visée")
	assert.True(t, dec("60.00").Equal(out.MontantTTC))
	require.Len(t, store.audit.records, 1)
}

func TestAvoirUseCase_CreateSansMotifRefuse(t *testing.T) {
	uc, _ := avoirEnv(t)

	_, err := uc.Create(context.Background(), "c-1", dto.CreateAvoirRequest{FactureID: "f-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAvoirUseCase_EmettreDansLePlafond(t *testing.T) {
	uc, store := avoirEnv(t)
	cree := creerAvoir(t, uc, "remise commerciale", "50.00")

	out, err := uc.Emettre(context.Background(), "c-1", cree.ID)
	require.NoError(t, err)

	assert.Equal(t, string(entity.AvoirEmis), out.Statut)
	assert.NotEmpty(t, out.Numero)
	assert.NotNil(t, out.DateEmission)
	assert.Equal(t, []string{"CREATION", "EMISSION"}, store.audit.actions())
}

func TestAvoirUseCase_EmettreAuDelaDuPlafondRefuse(t *testing.T) {
	uc, store := avoirEnv(t)

	premier := creerAvoir(t, uc, "remise commerciale", "50.00") // TTC 60.00
	_, err := uc.Emettre(context.Background(), "c-1", premier.ID)
	require.NoError(t, err)

	second := creerAvoir(t, uc, "litige", "60.00") // TTC 72.00, cumul 132.00 > 120.00
	_, err = uc.Emettre(context.Background(), "c-1", second.ID)
	var ge *domain.GuardError
	require.ErrorAs(t, err, &ge)
	assert.Contains(t, ge.Error(), "plafond")

	stocke := store.avoirs.items[second.ID]
	assert.Equal(t, entity.AvoirBrouillon, stocke.Statut, "la garde ne mute pas le statut")
}

func TestAvoirUseCase_AnnulationLibereLePlafond(t *testing.T) {
	uc, _ := avoirEnv(t)

	premier := creerAvoir(t, uc, "remise commerciale", "50.00")
	_, err := uc.Emettre(context.Background(), "c-1", premier.ID)
	require.NoError(t, err)
	_, err = uc.Annuler(context.Background(), "c-1", premier.ID)
	require.NoError(t, err)

	second := creerAvoir(t, uc, "litige", "60.00")
	out, err := uc.Emettre(context.Background(), "c-1", second.ID)
	require.NoError(t, err, "un avoir annulé sort du cumul de plafond")
	assert.Equal(t, string(entity.AvoirEmis), out.Statut)
}

func TestAvoirUseCase_EmettreSurFactureAnnuleeRefuse(t *testing.T) {
	uc, store := avoirEnv(t)
	cree := creerAvoir(t, uc, "remise commerciale", "50.00")
	store.factures.items["f-1"].Statut = entity.FactureAnnulee

	_, err := uc.Emettre(context.Background(), "c-1", cree.ID)
	var ge *domain.GuardError
	require.ErrorAs(t, err, &ge)
	assert.Contains(t, ge.Error(), "annulée")
}
