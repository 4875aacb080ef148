package facturx

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturation-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ligne(desc string, prix string, qte int64, taux *decimal.Decimal) *entity.LigneFacture {
	l := &entity.LigneFacture{LigneDocument: entity.LigneDocument{
		ID:           "l-" + desc,
		Description:  desc,
		Quantite:     qte,
		PrixUnitaire: dec(prix),
		TauxTVA:      taux,
	}}
	l.Recalculate()
	return l
}

func societeDeTest() *entity.Company {
	return &entity.Company{
		ID:        "c-1",
		Name:      "Facturio SARL",
		SIREN:     "123456789",
		NumeroTVA: "FR32123456789",
	}
}

func clientDeTest() *entity.Client {
	return &entity.Client{
		ID:    "cl-1",
		Name:  "Client Exemple",
		SIREN: "987654321",
	}
}

func factureEmise(t *testing.T, lignes ...*entity.LigneFacture) *entity.Facture {
	t.Helper()
	emission := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	global := false
	f := &entity.Facture{
		ID:           "f-1",
		CompanyID:    "c-1",
		ClientID:     "cl-1",
		DevisID:      "d-1",
		Numero:       "FAC-2026-0007",
		Type:         entity.FactureTotale,
		Statut:       entity.FactureBrouillon,
		TauxTVA:      dec("20.00"),
		TVAParLigne:  &global,
		Lignes:       lignes,
		DateEcheance: emission.AddDate(0, 0, 30),
	}
	require.NoError(t, f.Recalculate())
	f.Statut = entity.FactureEnvoyee
	f.DateEmission = &emission
	return f
}

func parse(t *testing.T, data []byte) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	return doc
}

func TestBuild_RefuseUneFactureNonEmise(t *testing.T) {
	f := factureEmise(t, ligne("presta", "100.00", 1, nil))
	f.DateEmission = nil

	_, err := NewCIIBuilder().Build(f, societeDeTest(), clientDeTest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pas émise")
}

func TestBuild_StructureDocument(t *testing.T) {
	f := factureEmise(t, ligne("presta", "100.00", 2, nil))

	data, err := NewCIIBuilder().Build(f, societeDeTest(), clientDeTest())
	require.NoError(t, err)

	doc := parse(t, data)
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "rsm:CrossIndustryInvoice", root.FullTag())

	assert.Equal(t, "FAC-2026-0007",
		doc.FindElement("//rsm:ExchangedDocument/ram:ID").Text())
	assert.Equal(t, "380",
		doc.FindElement("//rsm:ExchangedDocument/ram:TypeCode").Text())

	dateEl := doc.FindElement("//rsm:ExchangedDocument/ram:IssueDateTime/udt:DateTimeString")
	require.NotNil(t, dateEl)
	assert.Equal(t, "20260210", dateEl.Text())
	assert.Equal(t, "102", dateEl.SelectAttrValue("format", ""))

	guideline := doc.FindElement("//ram:GuidelineSpecifiedDocumentContextParameter/ram:ID")
	require.NotNil(t, guideline)
	assert.Contains(t, guideline.Text(), "factur-x.eu:1p0:basic")

	assert.Equal(t, "EUR",
		doc.FindElement("//ram:InvoiceCurrencyCode").Text())
}

func TestBuild_PartiesEtImmatriculations(t *testing.T) {
	f := factureEmise(t, ligne("presta", "100.00", 1, nil))

	data, err := NewCIIBuilder().Build(f, societeDeTest(), clientDeTest())
	require.NoError(t, err)
	doc := parse(t, data)

	seller := doc.FindElement("//ram:SellerTradeParty")
	require.NotNil(t, seller)
	assert.Equal(t, "Facturio SARL", seller.FindElement("ram:Name").Text())

	sirenVendeur := seller.FindElement("ram:SpecifiedLegalOrganization/ram:ID")
	require.NotNil(t, sirenVendeur)
	assert.Equal(t, "123456789", sirenVendeur.Text())
	assert.Equal(t, "0002", sirenVendeur.SelectAttrValue("schemeID", ""))

	tvaVendeur := seller.FindElement("ram:SpecifiedTaxRegistration/ram:ID")
	require.NotNil(t, tvaVendeur)
	assert.Equal(t, "FR32123456789", tvaVendeur.Text())
	assert.Equal(t, "VA", tvaVendeur.SelectAttrValue("schemeID", ""))

	buyer := doc.FindElement("//ram:BuyerTradeParty")
	require.NotNil(t, buyer)
	assert.Equal(t, "Client Exemple", buyer.FindElement("ram:Name").Text())
}

func TestBuild_TotauxGelesEtVentilation(t *testing.T) {
	f := factureEmise(t, ligne("presta", "100.00", 2, nil))
	// Mode global 20 % : HT 200.00, TTC 240.00.

	data, err := NewCIIBuilder().Build(f, societeDeTest(), clientDeTest())
	require.NoError(t, err)
	doc := parse(t, data)

	sum := doc.FindElement("//ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	require.NotNil(t, sum)
	assert.Equal(t, "200.00", sum.FindElement("ram:LineTotalAmount").Text())
	assert.Equal(t, "40.00", sum.FindElement("ram:TaxTotalAmount").Text())
	assert.Equal(t, "EUR", sum.FindElement("ram:TaxTotalAmount").SelectAttrValue("currencyID", ""))
	assert.Equal(t, "240.00", sum.FindElement("ram:GrandTotalAmount").Text())
	assert.Equal(t, "240.00", sum.FindElement("ram:DuePayableAmount").Text())

	ventilation := doc.FindElements("//ram:ApplicableHeaderTradeSettlement/ram:ApplicableTradeTax")
	require.Len(t, ventilation, 1, "un seul taux en mode global")
	assert.Equal(t, "200.00", ventilation[0].FindElement("ram:BasisAmount").Text())
	assert.Equal(t, "40.00", ventilation[0].FindElement("ram:CalculatedAmount").Text())
	assert.Equal(t, "S", ventilation[0].FindElement("ram:CategoryCode").Text())
	assert.Equal(t, "20.00", ventilation[0].FindElement("ram:RateApplicablePercent").Text())
}

func TestBuild_VentilationParLigneDeuxTaux(t *testing.T) {
	parLigne := true
	t20 := dec("20.00")
	t55 := dec("5.5")
	f := factureEmise(t,
		ligne("presta", "100.00", 1, &t20),
		ligne("livre", "50.00", 1, &t55),
	)
	f.TVAParLigne = &parLigne
	f.Statut = entity.FactureBrouillon
	require.NoError(t, f.Recalculate())
	f.Statut = entity.FactureEnvoyee

	data, err := NewCIIBuilder().Build(f, societeDeTest(), clientDeTest())
	require.NoError(t, err)
	doc := parse(t, data)

	ventilation := doc.FindElements("//ram:ApplicableHeaderTradeSettlement/ram:ApplicableTradeTax")
	require.Len(t, ventilation, 2)

	// Ordonnée par taux croissant.
	assert.Equal(t, "5.50", ventilation[0].FindElement("ram:RateApplicablePercent").Text())
	assert.Equal(t, "50.00", ventilation[0].FindElement("ram:BasisAmount").Text())
	assert.Equal(t, "20.00", ventilation[1].FindElement("ram:RateApplicablePercent").Text())
	assert.Equal(t, "100.00", ventilation[1].FindElement("ram:BasisAmount").Text())

	// La somme des groupes égale le total gelé TTC - HT.
	tvaTotale := dec(ventilation[0].FindElement("ram:CalculatedAmount").Text()).
		Add(dec(ventilation[1].FindElement("ram:CalculatedAmount").Text()))
	assert.True(t, f.MontantTTC.Sub(f.MontantHT).Equal(tvaTotale),
		"ventilation %s, total gelé %s", tvaTotale, f.MontantTTC.Sub(f.MontantHT))
}

func TestBuild_TauxZeroCategorieE(t *testing.T) {
	f := factureEmise(t, ligne("presta", "100.00", 1, nil))
	f.TauxTVA = decimal.Zero
	f.Statut = entity.FactureBrouillon
	require.NoError(t, f.Recalculate())
	f.Statut = entity.FactureEnvoyee

	data, err := NewCIIBuilder().Build(f, societeDeTest(), clientDeTest())
	require.NoError(t, err)
	doc := parse(t, data)

	ventilation := doc.FindElements("//ram:ApplicableHeaderTradeSettlement/ram:ApplicableTradeTax")
	require.Len(t, ventilation, 1)
	assert.Equal(t, "E", ventilation[0].FindElement("ram:CategoryCode").Text())
	assert.Equal(t, "0.00", ventilation[0].FindElement("ram:CalculatedAmount").Text())
}

func TestBuild_LignesEtEcheance(t *testing.T) {
	f := factureEmise(t, ligne("presta", "100.00", 3, nil))

	data, err := NewCIIBuilder().Build(f, societeDeTest(), clientDeTest())
	require.NoError(t, err)
	doc := parse(t, data)

	items := doc.FindElements("//ram:IncludedSupplyChainTradeLineItem")
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "1", item.FindElement("ram:AssociatedDocumentLineDocument/ram:LineID").Text())
	assert.Equal(t, "presta", item.FindElement("ram:SpecifiedTradeProduct/ram:Name").Text())

	qty := item.FindElement("ram:SpecifiedLineTradeDelivery/ram:BilledQuantity")
	require.NotNil(t, qty)
	assert.Equal(t, "3", qty.Text())
	assert.Equal(t, "C62", qty.SelectAttrValue("unitCode", ""))

	echeance := doc.FindElement("//ram:SpecifiedTradePaymentTerms/ram:DueDateDateTime/udt:DateTimeString")
	require.NotNil(t, echeance)
	assert.Equal(t, "20260312", echeance.Text())
}
