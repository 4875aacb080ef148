// Package fec produit le Fichier des Écritures Comptables (art. A47 A-1 du
// LPF) pour un exercice : une ligne par mouvement, colonnes séparées par
// tabulation, montants à virgule décimale, encodage Windows-1252 attendu par
// les outils de l'administration.
package fec

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/facturio/facturation-api/internal/domain/entity"
)

// En-tête réglementaire des 18 colonnes.
var header = []string{
	"JournalCode", "JournalLib", "EcritureNum", "EcritureDate",
	"CompteNum", "CompteLib", "CompAuxNum", "CompAuxLib",
	"PieceRef", "PieceDate", "EcritureLib", "Debit", "Credit",
	"EcritureLet", "DateLet", "ValidDate", "Montantdevise", "Idevise",
}

// Comptes du plan comptable général utilisés par le journal des ventes.
const (
	compteClients   = "411000"
	libClients      = "Clients"
	compteVentes    = "706000"
	libVentes       = "Prestations de services"
	compteTVA       = "445710"
	libTVA          = "TVA collectée"
	journalVentes   = "VE"
	journalVentesLi = "Journal des ventes"
)

// Writer produit le FEC d'un exercice à partir des documents émis.
type Writer struct{}

// NewWriter construit le générateur.
func NewWriter() *Writer { return &Writer{} }

// Write écrit le FEC sur w. Les factures et avoirs doivent être émis et déjà
// triés par date d'émission croissante (c'est l'ordre de ListEmittedByYear).
// clients associe l'ID de client à son entité pour le compte auxiliaire.
func (wr *Writer) Write(w io.Writer, factures []*entity.Facture, avoirs []*entity.Avoir, clients map[string]*entity.Client) error {
	enc := charmap.Windows1252.NewEncoder().Writer(w)

	if err := writeRow(enc, header); err != nil {
		return err
	}

	num := 0
	for _, f := range factures {
		if f.DateEmission == nil || f.Numero == "" {
			continue
		}
		num++
		tva := f.MontantTTC.Sub(f.MontantHT)
		lib := "Facture " + f.Numero
		if f.Objet != "" {
			lib += " - " + f.Objet
		}
		client := clients[f.ClientID]
		rows := [][]string{
			ecriture(num, *f.DateEmission, compteClients, libClients, client, f.Numero, lib, f.MontantTTC, decimal.Zero),
			ecriture(num, *f.DateEmission, compteVentes, libVentes, nil, f.Numero, lib, decimal.Zero, f.MontantHT),
		}
		if tva.IsPositive() {
			rows = append(rows, ecriture(num, *f.DateEmission, compteTVA, libTVA, nil, f.Numero, lib, decimal.Zero, tva))
		}
		for _, r := range rows {
			if err := writeRow(enc, r); err != nil {
				return err
			}
		}
	}

	// Les avoirs s'écrivent en sens inverse de la facture visée.
	for _, a := range avoirs {
		if a.DateEmission == nil || a.Numero == "" {
			continue
		}
		num++
		tva := a.MontantTTC.Sub(a.MontantHT)
		lib := "Avoir " + a.Numero + " - " + a.Motif
		client := clients[a.ClientID]
		rows := [][]string{
			ecriture(num, *a.DateEmission, compteVentes, libVentes, nil, a.Numero, lib, a.MontantHT, decimal.Zero),
		}
		if tva.IsPositive() {
			rows = append(rows, ecriture(num, *a.DateEmission, compteTVA, libTVA, nil, a.Numero, lib, tva, decimal.Zero))
		}
		rows = append(rows, ecriture(num, *a.DateEmission, compteClients, libClients, client, a.Numero, lib, decimal.Zero, a.MontantTTC))
		for _, r := range rows {
			if err := writeRow(enc, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// ecriture construit une ligne de mouvement. Débit et crédit sont exclusifs,
// l'autre colonne porte 0,00.
func ecriture(num int, date time.Time, compte, compteLib string, client *entity.Client, piece, lib string, debit, credit decimal.Decimal) []string {
	auxNum, auxLib := "", ""
	if client != nil {
		auxNum = "C" + client.ID[:8]
		auxLib = client.Name
	}
	d := date.Format("20060102")
	return []string{
		journalVentes, journalVentesLi, fmt.Sprintf("%d", num), d,
		compte, compteLib, auxNum, auxLib,
		piece, d, lib, montant(debit), montant(credit),
		"", "", d, "", "",
	}
}

// montant rend un décimal au format FEC : virgule décimale, deux décimales.
func montant(d decimal.Decimal) string {
	return strings.ReplaceAll(d.StringFixed(2), ".", ",")
}

func writeRow(w io.Writer, fields []string) error {
	if _, err := io.WriteString(w, strings.Join(fields, "\t")+"\r\n"); err != nil {
		return fmt.Errorf("écriture ligne FEC: %w", err)
	}
	return nil
}
