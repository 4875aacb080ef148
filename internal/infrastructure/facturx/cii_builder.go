// Package facturx produit le XML CII d'une facture au profil Factur-X BASIC
// (EN 16931, norme franco-allemande). Le XML est destiné à être joint au PDF
// de la facture ; il n'est généré que pour une facture émise.
package facturx

import (
	"fmt"
	"sort"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	appbilling "github.com/facturio/facturation-api/internal/application/billing"
	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/money"
)

// Espaces de noms officiels CII 16B.
const (
	nsRsm = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	nsRam = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	nsUdt = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"

	// Identifiant du profil BASIC.
	guidelineBasic = "urn:cen.eu:en16931:2017#compliant#urn:factur-x.eu:1p0:basic"

	// Code UNTDID 1001 d'une facture commerciale.
	typeCodeFacture = "380"
)

var _ appbilling.FacturXBuilder = (*CIIBuilder)(nil)

// CIIBuilder implémente billing.FacturXBuilder avec etree.
type CIIBuilder struct{}

// NewCIIBuilder construit le générateur.
func NewCIIBuilder() *CIIBuilder { return &CIIBuilder{} }

// Build génère le document CrossIndustryInvoice de la facture.
func (b *CIIBuilder) Build(facture *entity.Facture, company *entity.Company, client *entity.Client) ([]byte, error) {
	if facture == nil || company == nil || client == nil {
		return nil, fmt.Errorf("facturx: facture, société et client requis")
	}
	if facture.DateEmission == nil || facture.Numero == "" {
		return nil, fmt.Errorf("facturx: la facture %s n'est pas émise", facture.ID)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("rsm:CrossIndustryInvoice")
	root.CreateAttr("xmlns:rsm", nsRsm)
	root.CreateAttr("xmlns:ram", nsRam)
	root.CreateAttr("xmlns:udt", nsUdt)

	b.writeContext(root)
	b.writeDocument(root, facture)
	tx := root.CreateElement("rsm:SupplyChainTradeTransaction")
	for i, l := range facture.Lignes {
		b.writeLigne(tx, i+1, l, facture)
	}
	b.writeAgreement(tx, company, client)
	tx.CreateElement("ram:ApplicableHeaderTradeDelivery")
	b.writeSettlement(tx, facture)

	doc.Indent(2)
	return doc.WriteToBytes()
}

func (b *CIIBuilder) writeContext(root *etree.Element) {
	ctx := root.CreateElement("rsm:ExchangedDocumentContext")
	param := ctx.CreateElement("ram:GuidelineSpecifiedDocumentContextParameter")
	param.CreateElement("ram:ID").SetText(guidelineBasic)
}

func (b *CIIBuilder) writeDocument(root *etree.Element, facture *entity.Facture) {
	docEl := root.CreateElement("rsm:ExchangedDocument")
	docEl.CreateElement("ram:ID").SetText(facture.Numero)
	docEl.CreateElement("ram:TypeCode").SetText(typeCodeFacture)
	issue := docEl.CreateElement("ram:IssueDateTime")
	dt := issue.CreateElement("udt:DateTimeString")
	dt.CreateAttr("format", "102")
	dt.SetText(facture.DateEmission.Format("20060102"))
}

func (b *CIIBuilder) writeLigne(tx *etree.Element, num int, l *entity.LigneFacture, facture *entity.Facture) {
	item := tx.CreateElement("ram:IncludedSupplyChainTradeLineItem")

	lineDoc := item.CreateElement("ram:AssociatedDocumentLineDocument")
	lineDoc.CreateElement("ram:LineID").SetText(fmt.Sprintf("%d", num))

	product := item.CreateElement("ram:SpecifiedTradeProduct")
	product.CreateElement("ram:Name").SetText(l.Description)

	agreement := item.CreateElement("ram:SpecifiedLineTradeAgreement")
	price := agreement.CreateElement("ram:NetPriceProductTradePrice")
	price.CreateElement("ram:ChargeAmount").SetText(l.PrixUnitaire.StringFixed(2))

	delivery := item.CreateElement("ram:SpecifiedLineTradeDelivery")
	qty := delivery.CreateElement("ram:BilledQuantity")
	qty.CreateAttr("unitCode", "C62")
	qty.SetText(fmt.Sprintf("%d", l.Quantite))

	settlement := item.CreateElement("ram:SpecifiedLineTradeSettlement")
	tax := settlement.CreateElement("ram:ApplicableTradeTax")
	tax.CreateElement("ram:TypeCode").SetText("VAT")
	tax.CreateElement("ram:CategoryCode").SetText(categoryCode(tauxLigne(l, facture)))
	tax.CreateElement("ram:RateApplicablePercent").SetText(tauxLigne(l, facture).StringFixed(2))
	sum := settlement.CreateElement("ram:SpecifiedTradeSettlementLineMonetarySummation")
	sum.CreateElement("ram:LineTotalAmount").SetText(l.TotalHT.StringFixed(2))
}

func (b *CIIBuilder) writeAgreement(tx *etree.Element, company *entity.Company, client *entity.Client) {
	agreement := tx.CreateElement("ram:ApplicableHeaderTradeAgreement")

	seller := agreement.CreateElement("ram:SellerTradeParty")
	seller.CreateElement("ram:Name").SetText(company.Name)
	writeSIREN(seller, company.SIREN)
	if company.NumeroTVA != "" {
		reg := seller.CreateElement("ram:SpecifiedTaxRegistration")
		id := reg.CreateElement("ram:ID")
		id.CreateAttr("schemeID", "VA")
		id.SetText(company.NumeroTVA)
	}

	buyer := agreement.CreateElement("ram:BuyerTradeParty")
	buyer.CreateElement("ram:Name").SetText(client.Name)
	writeSIREN(buyer, client.SIREN)
	if client.NumeroTVA != "" {
		reg := buyer.CreateElement("ram:SpecifiedTaxRegistration")
		id := reg.CreateElement("ram:ID")
		id.CreateAttr("schemeID", "VA")
		id.SetText(client.NumeroTVA)
	}
}

// writeSIREN attache l'identifiant légal de la partie (schémathèque ICD,
// 0002 = SIRENE) quand il est connu.
func writeSIREN(party *etree.Element, siren string) {
	if siren == "" {
		return
	}
	org := party.CreateElement("ram:SpecifiedLegalOrganization")
	id := org.CreateElement("ram:ID")
	id.CreateAttr("schemeID", "0002")
	id.SetText(siren)
}

func (b *CIIBuilder) writeSettlement(tx *etree.Element, facture *entity.Facture) {
	settlement := tx.CreateElement("ram:ApplicableHeaderTradeSettlement")
	settlement.CreateElement("ram:InvoiceCurrencyCode").SetText("EUR")

	// Une ventilation ram:ApplicableTradeTax par taux distinct, ordonnée par
	// taux croissant pour une sortie stable.
	for _, v := range ventilationTVA(facture) {
		tax := settlement.CreateElement("ram:ApplicableTradeTax")
		tax.CreateElement("ram:CalculatedAmount").SetText(v.montant.StringFixed(2))
		tax.CreateElement("ram:TypeCode").SetText("VAT")
		tax.CreateElement("ram:BasisAmount").SetText(v.base.StringFixed(2))
		tax.CreateElement("ram:CategoryCode").SetText(categoryCode(v.taux))
		tax.CreateElement("ram:RateApplicablePercent").SetText(v.taux.StringFixed(2))
	}

	if !facture.DateEcheance.IsZero() {
		terms := settlement.CreateElement("ram:SpecifiedTradePaymentTerms")
		due := terms.CreateElement("ram:DueDateDateTime")
		dt := due.CreateElement("udt:DateTimeString")
		dt.CreateAttr("format", "102")
		dt.SetText(facture.DateEcheance.Format("20060102"))
	}

	tvaTotale := facture.MontantTTC.Sub(facture.MontantHT)
	sum := settlement.CreateElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	sum.CreateElement("ram:LineTotalAmount").SetText(facture.MontantHT.StringFixed(2))
	sum.CreateElement("ram:TaxBasisTotalAmount").SetText(facture.MontantHT.StringFixed(2))
	taxTotal := sum.CreateElement("ram:TaxTotalAmount")
	taxTotal.CreateAttr("currencyID", "EUR")
	taxTotal.SetText(tvaTotale.StringFixed(2))
	sum.CreateElement("ram:GrandTotalAmount").SetText(facture.MontantTTC.StringFixed(2))
	sum.CreateElement("ram:DuePayableAmount").SetText(facture.MontantTTC.StringFixed(2))
}

// ── ventilation de la TVA ────────────────────────────────────────────────────

type venteTaux struct {
	taux    decimal.Decimal
	base    decimal.Decimal
	montant decimal.Decimal
}

// ventilationTVA regroupe les bases HT par taux et calcule la TVA par groupe.
// En mode global, un seul groupe au taux du document porte toute la base ;
// l'écart d'arrondi éventuel entre la somme des groupes et le total gelé du
// document est absorbé sur le dernier groupe.
func ventilationTVA(facture *entity.Facture) []venteTaux {
	bases := map[string]*venteTaux{}
	parLigne := facture.UsesTVAParLigne()
	for _, l := range facture.Lignes {
		taux := facture.TauxTVA
		if parLigne && l.TauxTVA != nil {
			taux = *l.TauxTVA
		} else if !parLigne {
			taux = facture.TauxTVA
		}
		key := taux.StringFixed(4)
		if bases[key] == nil {
			bases[key] = &venteTaux{taux: taux}
		}
		bases[key].base = bases[key].base.Add(l.TotalHT)
	}

	out := make([]venteTaux, 0, len(bases))
	for _, v := range bases {
		v.montant = money.Round2(money.ApplyTVA(v.base, v.taux).Sub(v.base))
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].taux.LessThan(out[j].taux) })

	// Réconciliation avec le total gelé du document.
	if len(out) > 0 {
		var somme decimal.Decimal
		for _, v := range out {
			somme = somme.Add(v.montant)
		}
		ecart := facture.MontantTTC.Sub(facture.MontantHT).Sub(somme)
		if !ecart.IsZero() {
			out[len(out)-1].montant = out[len(out)-1].montant.Add(ecart)
		}
	}
	return out
}

func tauxLigne(l *entity.LigneFacture, facture *entity.Facture) decimal.Decimal {
	if facture.UsesTVAParLigne() && l.TauxTVA != nil {
		return *l.TauxTVA
	}
	return facture.TauxTVA
}

// categoryCode : S pour un taux positif, E pour l'exonération (franchise en
// base, taux zéro).
func categoryCode(taux decimal.Decimal) string {
	if taux.IsZero() {
		return "E"
	}
	return "S"
}
