package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturation-api/internal/application/dto"
	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func devisEnv(t *testing.T) (*DevisUseCase, *fakeStore, *fakeSender) {
	t.Helper()
	store := newFakeStore()
	sender := &fakeSender{}
	companies := &fakeCompanyRepo{items: map[string]*entity.Company{
		"c-1": {ID: "c-1", Name: "Facturio SARL", SIREN: "123456789",
			DefaultTauxTVA: dec("20.00"), TVAEnabled: true},
	}}
	clients := &fakeClientRepo{items: map[string]*entity.Client{
		"cl-1": {ID: "cl-1", CompanyID: "c-1", Name: "Client Exemple"},
		"cl-2": {ID: "cl-2", CompanyID: "autre", Name: "Client d'une autre société"},
	}}
	catalogue := &fakeCatalogueRepo{items: map[string]*entity.CatalogueEntry{}}
	uc := NewDevisUseCase(store, store.devis, store.avenants, clients, companies, catalogue, sender)
	return uc, store, sender
}

func requeteDevis() dto.CreateDevisRequest {
	return dto.CreateDevisRequest{
		ClientID:           "cl-1",
		Objet:              "Rénovation salle de bain",
		AcomptePourcentage: dec("30"),
		DateValidite:       time.Now().AddDate(0, 1, 0),
		Lignes: []dto.LigneRequest{
			{Description: "main d'œuvre", Quantite: 2, PrixUnitaire: dec("100.00")},
		},
	}
}

func TestDevisUseCase_CreateNominal(t *testing.T) {
	uc, store, _ := devisEnv(t)

	out, err := uc.Create(context.Background(), "c-1", requeteDevis())
	require.NoError(t, err)

	assert.Equal(t, string(entity.DevisBrouillon), out.Statut)
	assert.Empty(t, out.Numero, "pas de numéro avant l'envoi")
	assert.True(t, dec("200.00").Equal(out.MontantHT))
	assert.True(t, dec("240.00").Equal(out.MontantTTC), "taux par défaut de la société appliqué")
	assert.True(t, dec("72.00").Equal(out.AcompteCorrige), "30 % de 240.00")

	require.Len(t, store.audit.records, 1)
	assert.Equal(t, "CREATION", store.audit.records[0].action)
}

func TestDevisUseCase_CreateClientInconnuOuEtranger(t *testing.T) {
	uc, _, _ := devisEnv(t)

	in := requeteDevis()
	in.ClientID = "inconnu"
	_, err := uc.Create(context.Background(), "c-1", in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in.ClientID = "cl-2"
	_, err = uc.Create(context.Background(), "c-1", in)
	assert.ErrorIs(t, err, domain.ErrForbidden, "client d'une autre société")
}

func TestDevisUseCase_EnvoyerNumeroteEtPasseEnvoye(t *testing.T) {
	uc, store, sender := devisEnv(t)
	cree, err := uc.Create(context.Background(), "c-1", requeteDevis())
	require.NoError(t, err)

	out, err := uc.Envoyer(context.Background(), "c-1", cree.ID, dto.EnvoiRequest{Canal: "courrier"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.DevisEnvoye), out.Statut)
	assert.NotEmpty(t, out.Numero, "le numéro définitif est posé à la première émission")
	assert.Equal(t, "courrier", out.CanalEnvoi)
	assert.Equal(t, 1, out.NbEnvois)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"CREATION", "ENVOI"}, store.audit.actions())
}

func TestDevisUseCase_EnvoyerDeuxFoisRefuse(t *testing.T) {
	uc, _, sender := devisEnv(t)
	cree, err := uc.Create(context.Background(), "c-1", requeteDevis())
	require.NoError(t, err)
	_, err = uc.Envoyer(context.Background(), "c-1", cree.ID, dto.EnvoiRequest{})
	require.NoError(t, err)

	_, err = uc.Envoyer(context.Background(), "c-1", cree.ID, dto.EnvoiRequest{})
	var ge *domain.GuardError
	require.ErrorAs(t, err, &ge)
	assert.Len(t, sender.sent, 1, "la garde précède l'appel au collaborateur d'envoi")
}

func TestDevisUseCase_EchecEnvoiBloqueLaTransition(t *testing.T) {
	uc, store, sender := devisEnv(t)
	cree, err := uc.Create(context.Background(), "c-1", requeteDevis())
	require.NoError(t, err)
	sender.fail = errors.New("smtp indisponible")

	_, err = uc.Envoyer(context.Background(), "c-1", cree.ID, dto.EnvoiRequest{})
	require.Error(t, err)

	stocke := store.devis.items[cree.ID]
	assert.Equal(t, entity.DevisBrouillon, stocke.Statut, "pas d'accusé, pas de passage en SENT")
	assert.Empty(t, stocke.Numero, "pas de numéro consommé")
}

func TestDevisUseCase_SignerPuisModifierRefuse(t *testing.T) {
	uc, _, _ := devisEnv(t)
	cree, err := uc.Create(context.Background(), "c-1", requeteDevis())
	require.NoError(t, err)
	_, err = uc.Envoyer(context.Background(), "c-1", cree.ID, dto.EnvoiRequest{})
	require.NoError(t, err)

	signe, err := uc.Signer(context.Background(), "c-1", cree.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.DevisSigne), signe.Statut)
	assert.NotNil(t, signe.DateSignature)

	objet := "autre objet"
	_, err = uc.Update(context.Background(), "c-1", cree.ID, dto.UpdateDevisRequest{Objet: &objet})
	assert.ErrorIs(t, err, domain.ErrImmutable, "un devis signé est gelé")
}

func TestDevisUseCase_RenvoyerConserveLeStatut(t *testing.T) {
	uc, _, sender := devisEnv(t)
	cree, err := uc.Create(context.Background(), "c-1", requeteDevis())
	require.NoError(t, err)
	envoye, err := uc.Envoyer(context.Background(), "c-1", cree.ID, dto.EnvoiRequest{})
	require.NoError(t, err)

	renvoye, err := uc.Renvoyer(context.Background(), "c-1", cree.ID, dto.EnvoiRequest{Canal: "email"})
	require.NoError(t, err)

	assert.Equal(t, envoye.Statut, renvoye.Statut)
	assert.Equal(t, envoye.Numero, renvoye.Numero, "le renvoi ne renumérote jamais")
	assert.Equal(t, 2, renvoye.NbEnvois)
	assert.Len(t, sender.sent, 2)
}
