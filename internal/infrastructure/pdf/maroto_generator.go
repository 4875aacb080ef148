// Package pdf produit la représentation imprimable des devis et factures
// avec Maroto v2.
//
// Gabarit de la page A4 :
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  EN-TÊTE : Raison sociale + SIREN  │  N° document + dates    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ÉMETTEUR : adresse / tél / email                            │
//	│  CLIENT : nom + SIREN / TVA + contact                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLEAU : Qté | Désignation | P.U. HT | TVA | Total HT      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAUX : Total HT / TVA / TOTAL TTC (+ acompte sur devis)   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PIED : mentions légales (pénalités, art. 293 B le cas       │
//	│  échéant)                                                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/facturio/facturation-api/internal/application/billing"
	"github.com/facturio/facturation-api/internal/domain/entity"
)

// ── Palette ──────────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 16, Green: 63, Blue: 110}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ────────────────────────────────────────────────────────────────

var _ appbilling.DocumentPDFGenerator = (*MarotoGenerator)(nil)

// MarotoGenerator implémente billing.DocumentPDFGenerator avec Maroto v2.
type MarotoGenerator struct{}

// NewMarotoGenerator construit le générateur.
func NewMarotoGenerator() *MarotoGenerator { return &MarotoGenerator{} }

// GenerateDevisPDF génère le PDF d'un devis et retourne ses octets.
func (g *MarotoGenerator) GenerateDevisPDF(
	_ context.Context,
	devis *entity.Devis,
	company *entity.Company,
	client *entity.Client,
) ([]byte, error) {
	m := newDocument("Devis "+devis.Numero, company.Name)

	dates := "Date : " + devis.CreatedAt.Format("02/01/2006")
	if !devis.DateValidite.IsZero() {
		dates += "   Valable jusqu'au : " + devis.DateValidite.Format("02/01/2006")
	}
	m.AddRows(headerRow("DEVIS", devis.Numero, dates, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emetteurRow(company))
	m.AddRows(clientRow(client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLigneRows(lignesDevis(devis.Lignes), devis.TauxTVA) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totauxRow(devis.MontantHT, devis.MontantTTC))
	if devis.AcomptePourcentage.IsPositive() {
		m.AddRows(acompteRow(devis.AcomptePourcentage, devis.MontantTTC))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(mentionsDevisRows(company)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf devis: %w", err)
	}
	return doc.GetBytes(), nil
}

// GenerateFacturePDF génère le PDF d'une facture émise et retourne ses octets.
func (g *MarotoGenerator) GenerateFacturePDF(
	_ context.Context,
	facture *entity.Facture,
	company *entity.Company,
	client *entity.Client,
) ([]byte, error) {
	m := newDocument("Facture "+facture.Numero, company.Name)

	dates := ""
	if facture.DateEmission != nil {
		dates = "Émise le : " + facture.DateEmission.Format("02/01/2006")
	}
	if !facture.DateEcheance.IsZero() {
		dates += "   Échéance : " + facture.DateEcheance.Format("02/01/2006")
	}
	titre := "FACTURE"
	switch facture.Type {
	case entity.FactureAcompte:
		titre = "FACTURE D'ACOMPTE"
	case entity.FactureSolde:
		titre = "FACTURE DE SOLDE"
	}
	m.AddRows(headerRow(titre, facture.Numero, strings.TrimSpace(dates), company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emetteurRow(company))
	m.AddRows(clientRow(client))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLigneRows(lignesFacture(facture.Lignes), facture.TauxTVA) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totauxRow(facture.MontantHT, facture.MontantTTC))

	m.AddRows(line.NewRow(3))
	m.AddRows(mentionsFactureRows(company)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf facture: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Sections ─────────────────────────────────────────────────────────────────

func newDocument(title, author string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
	return maroto.New(cfg)
}

// headerRow : raison sociale + SIREN (gauche), titre + numéro + dates (droite).
func headerRow(titre, numero, dates string, company *entity.Company) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("SIREN : "+company.SIREN, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(titre, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(numero, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New(dates, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func emetteurRow(company *entity.Company) core.Row {
	tva := nonEmpty(company.NumeroTVA, "—")
	return row.New(12).Add(
		col.New(12).Add(
			text.New("ÉMETTEUR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Adresse : %s   |   Tél : %s   |   Email : %s   |   TVA : %s",
				nonEmpty(company.Address, "—"),
				nonEmpty(company.Phone, "—"),
				nonEmpty(company.Email, "—"),
				tva,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func clientRow(client *entity.Client) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENT", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(client.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("SIREN : %s   |   Email : %s   |   Adresse : %s",
				nonEmpty(client.SIREN, "—"),
				nonEmpty(client.Email, "—"),
				nonEmpty(client.Address, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qté", 1, align.Center),
		h("Désignation", 5, align.Left),
		h("P.U. HT", 2, align.Right),
		h("TVA", 1, align.Center),
		h("Total HT", 3, align.Right),
	)
}

// ligneTableau : vue commune aux lignes de devis et de facture.
type ligneTableau struct {
	Description  string
	Quantite     int64
	PrixUnitaire decimal.Decimal
	TotalHT      decimal.Decimal
	TauxTVA      *decimal.Decimal
}

func lignesDevis(lignes []*entity.LigneDevis) []ligneTableau {
	out := make([]ligneTableau, 0, len(lignes))
	for _, l := range lignes {
		out = append(out, ligneTableau{l.Description, l.Quantite, l.PrixUnitaire, l.TotalHT, l.TauxTVA})
	}
	return out
}

func lignesFacture(lignes []*entity.LigneFacture) []ligneTableau {
	out := make([]ligneTableau, 0, len(lignes))
	for _, l := range lignes {
		out = append(out, ligneTableau{l.Description, l.Quantite, l.PrixUnitaire, l.TotalHT, l.TauxTVA})
	}
	return out
}

func tableLigneRows(lignes []ligneTableau, tauxGlobal decimal.Decimal) []core.Row {
	result := make([]core.Row, 0, len(lignes))
	for _, l := range lignes {
		taux := tauxGlobal
		if l.TauxTVA != nil {
			taux = *l.TauxTVA
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", l.Quantite),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				l.Description,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatEuro(l.PrixUnitaire),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				taux.StringFixed(1)+" %",
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				formatEuro(l.TotalHT),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func totauxRow(ht, ttc decimal.Decimal) core.Row {
	tva := ttc.Sub(ht)
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := text.New("TOTAL TTC :", props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right,
		Color: colorPrimary, Right: 2,
	})
	grandValue := text.New(formatEuro(ttc), props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right,
		Color: colorPrimary, Right: 1,
	})

	return row.New(26).Add(
		col.New(3),
		col.New(3).Add(
			label("Total HT :"),
			label("TVA :"),
			grandLabel,
		),
		col.New(3).Add(
			value(formatEuro(ht)),
			value(formatEuro(tva)),
			grandValue,
		),
		col.New(3),
	)
}

func acompteRow(pourcentage, ttc decimal.Decimal) core.Row {
	acompte := ttc.Mul(pourcentage).Div(decimal.NewFromInt(100)).Round(2)
	return row.New(8).Add(
		col.New(12).Add(text.New(
			fmt.Sprintf("Acompte à la signature : %s %% soit %s",
				pourcentage.StringFixed(0), formatEuro(acompte)),
			props.Text{Size: 8, Align: align.Right, Right: 1, Color: colorGray, Top: 1},
		)),
	)
}

func mentionsDevisRows(company *entity.Company) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New(
				"Bon pour accord, date et signature du client précédées de la mention « lu et approuvé ».",
				props.Text{Size: 7, Color: colorGray, Top: 1},
			),
		)),
	}
	return append(rows, franchiseRow(company)...)
}

func mentionsFactureRows(company *entity.Company) []core.Row {
	rows := []core.Row{
		row.New(8).Add(col.New(12).Add(
			text.New(
				"En cas de retard de paiement, pénalités au taux légal (art. L441-10 du Code de commerce) "+
					"et indemnité forfaitaire de recouvrement de 40 € (art. D441-5). Pas d'escompte pour paiement anticipé.",
				props.Text{Size: 6.5, Color: colorGray, Top: 2},
			),
		)),
	}
	return append(rows, franchiseRow(company)...)
}

// franchiseRow : mention obligatoire quand la société ne facture pas la TVA.
func franchiseRow(company *entity.Company) []core.Row {
	if company.TVAEnabled {
		return nil
	}
	return []core.Row{
		row.New(5).Add(col.New(12).Add(
			text.New("TVA non applicable, art. 293 B du CGI.", props.Text{
				Size: 7, Color: colorGray, Top: 1,
			}),
		)),
	}
}

// ── helpers ──────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatEuro rend un montant au format français : "1 234,56 €".
func formatEuro(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	parts := strings.SplitN(s, ".", 2)
	entier, cents := parts[0], parts[1]

	n := len(entier)
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(entier[i])
	}
	out := b.String() + "," + cents + " €"
	if neg {
		out = "-" + out
	}
	return out
}
