package fec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/facturio/facturation-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func factureEmise(numero string, ht, ttc string) *entity.Facture {
	emission := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	return &entity.Facture{
		ID:           "f-1",
		CompanyID:    "c-1",
		ClientID:     "11111111-2222-3333-4444-555555555555",
		Numero:       numero,
		Objet:        "Prestation mars",
		Statut:       entity.FactureEnvoyee,
		MontantHT:    dec(ht),
		MontantTTC:   dec(ttc),
		DateEmission: &emission,
	}
}

func clientsDeTest() map[string]*entity.Client {
	return map[string]*entity.Client{
		"11111111-2222-3333-4444-555555555555": {
			ID:   "11111111-2222-3333-4444-555555555555",
			Name: "Société Générale de Peinture",
		},
	}
}

func decoder(t *testing.T, raw []byte) []string {
	t.Helper()
	utf8, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	require.NoError(t, err)
	texte := strings.TrimSuffix(string(utf8), "\r\n")
	return strings.Split(texte, "\r\n")
}

func TestWriter_EnTeteReglementaire(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(&buf, nil, nil, nil))

	lignes := decoder(t, buf.Bytes())
	require.Len(t, lignes, 1, "un FEC vide ne contient que l'en-tête")

	colonnes := strings.Split(lignes[0], "\t")
	require.Len(t, colonnes, 18)
	assert.Equal(t, "JournalCode", colonnes[0])
	assert.Equal(t, "Idevise", colonnes[17])
}

func TestWriter_FactureTroisMouvements(t *testing.T) {
	f := factureEmise("FAC-2025-0001", "100.00", "120.00")

	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(&buf, []*entity.Facture{f}, nil, clientsDeTest()))

	lignes := decoder(t, buf.Bytes())
	require.Len(t, lignes, 4, "en-tête + débit client + crédit ventes + crédit TVA")

	debit := strings.Split(lignes[1], "\t")
	require.Len(t, debit, 18)
	assert.Equal(t, "VE", debit[0])
	assert.Equal(t, "411000", debit[4])
	assert.Equal(t, "C11111111", debit[6], "compte auxiliaire dérivé de l'ID client")
	assert.Equal(t, "Société Générale de Peinture", debit[7])
	assert.Equal(t, "FAC-2025-0001", debit[8])
	assert.Equal(t, "20250315", debit[3])
	assert.Equal(t, "120,00", debit[11], "débit TTC à virgule décimale")
	assert.Equal(t, "0,00", debit[12])

	ventes := strings.Split(lignes[2], "\t")
	assert.Equal(t, "706000", ventes[4])
	assert.Equal(t, "100,00", ventes[12], "crédit HT")

	tva := strings.Split(lignes[3], "\t")
	assert.Equal(t, "445710", tva[4])
	assert.Equal(t, "20,00", tva[12], "crédit TVA collectée")
}

func TestWriter_FactureSansTVA(t *testing.T) {
	// Franchise en base : TTC = HT, pas de mouvement 445710.
	f := factureEmise("FAC-2025-0002", "100.00", "100.00")

	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(&buf, []*entity.Facture{f}, nil, clientsDeTest()))

	lignes := decoder(t, buf.Bytes())
	require.Len(t, lignes, 3, "pas de ligne de TVA pour une facture en franchise")
}

func TestWriter_AvoirEnSensInverse(t *testing.T) {
	emission := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a := &entity.Avoir{
		ID:           "a-1",
		ClientID:     "11111111-2222-3333-4444-555555555555",
		FactureID:    "f-1",
		Numero:       "AVO-2025-0001",
		Motif:        "remise commerciale",
		Statut:       entity.AvoirEmis,
		MontantHT:    dec("50.00"),
		MontantTTC:   dec("60.00"),
		DateEmission: &emission,
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(&buf, nil, []*entity.Avoir{a}, clientsDeTest()))

	lignes := decoder(t, buf.Bytes())
	require.Len(t, lignes, 4)

	ventes := strings.Split(lignes[1], "\t")
	assert.Equal(t, "706000", ventes[4])
	assert.Equal(t, "50,00", ventes[11], "le compte de ventes est débité sur un avoir")

	client := strings.Split(lignes[3], "\t")
	assert.Equal(t, "411000", client[4])
	assert.Equal(t, "60,00", client[12], "le compte client est crédité du TTC")
	assert.Contains(t, client[10], "remise commerciale")
}

func TestWriter_IgnoreLesBrouillons(t *testing.T) {
	brouillon := &entity.Facture{
		ID:         "f-2",
		ClientID:   "11111111-2222-3333-4444-555555555555",
		Statut:     entity.FactureBrouillon,
		MontantHT:  dec("10.00"),
		MontantTTC: dec("12.00"),
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(&buf, []*entity.Facture{brouillon}, nil, clientsDeTest()))

	lignes := decoder(t, buf.Bytes())
	require.Len(t, lignes, 1, "une pièce sans date d'émission ni numéro ne produit aucun mouvement")
}

func TestWriter_EncodageWindows1252(t *testing.T) {
	f := factureEmise("FAC-2025-0003", "100.00", "120.00")

	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(&buf, []*entity.Facture{f}, nil, clientsDeTest()))

	// "collectée" doit sortir avec le é encodé 0xE9, pas en UTF-8.
	assert.Contains(t, buf.String(), "collect\xe9e")
	assert.NotContains(t, buf.String(), "collect\xc3\xa9e")
}
