package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/money"
)

// TypeFacture : nature de la facture générée depuis un devis signé.
type TypeFacture string

const (
	FactureAcompte TypeFacture = "ACOMPTE" // acompte à la signature
	FactureSolde   TypeFacture = "SOLDE"   // solde, total corrigé moins acompte
	FactureTotale  TypeFacture = "TOTALE"  // totalité du devis corrigé
)

// Facture : pièce comptable. Référence exactement un devis (1:1) et peut
// être visée par plusieurs avoirs. Émise, elle devient immuable : numéro
// et montants sont gelés pendant dix ans (archivage légal).
type Facture struct {
	ID        string
	CompanyID string
	ClientID  string

	// DevisID : devis d'origine, immuable après émission.
	DevisID string

	Numero string
	Objet  string
	Type   TypeFacture
	Statut StatutFacture

	Lignes []*LigneFacture

	MontantHT  decimal.Decimal
	MontantTTC decimal.Decimal

	TauxTVA     decimal.Decimal
	TVAParLigne *bool

	DateEmission  *time.Time
	DateEcheance  time.Time
	DatePaiement  *time.Time
	DateEnvoi     *time.Time
	CanalEnvoi    string
	NbEnvois      int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UsesTVAParLigne retourne le mode d'agrégation effectif.
func (f *Facture) UsesTVAParLigne() bool {
	if f.TVAParLigne != nil {
		return *f.TVAParLigne
	}
	lignes := make([]money.Ligne, 0, len(f.Lignes))
	for _, l := range f.Lignes {
		lignes = append(lignes, l.MoneyLigne())
	}
	return money.DetectTVAParLigne(lignes)
}

// AjouterLigne valide puis rattache une ligne. Refusé hors brouillon.
// Le prix unitaire négatif est réservé aux avoirs et aux lignes de
// régularisation posées par la génération.
func (f *Facture) AjouterLigne(l *LigneFacture) error {
	return f.attacher(l, false)
}

// AjouterLigneRegularisation rattache une ligne issue d'un delta d'avenant
// ou d'un solde corrigé : le prix unitaire peut être négatif, la garde
// d'émission maintient les totaux positifs.
func (f *Facture) AjouterLigneRegularisation(l *LigneFacture) error {
	return f.attacher(l, true)
}

func (f *Facture) attacher(l *LigneFacture, prixNegatifAutorise bool) error {
	if !f.Statut.IsModifiable() {
		return domain.ErrImmutable
	}
	if err := l.Validate(prixNegatifAutorise); err != nil {
		return err
	}
	l.Recalculate()
	l.FactureID = f.ID
	f.Lignes = append(f.Lignes, l)
	return nil
}

// Recalculate re-dérive les totaux depuis les lignes. Interdit après émission.
func (f *Facture) Recalculate() error {
	if f.Statut.IsEmitted() {
		return domain.ErrImmutable
	}
	lignes := make([]money.Ligne, 0, len(f.Lignes))
	for _, l := range f.Lignes {
		l.Recalculate()
		lignes = append(lignes, l.MoneyLigne())
	}
	totaux := money.Aggregate(lignes, f.UsesTVAParLigne(), f.TauxTVA)
	f.MontantHT = totaux.HT
	f.MontantTTC = totaux.TTC
	return nil
}

// AssignerNumero pose le numéro définitif, immuable après émission.
func (f *Facture) AssignerNumero(numero string) error {
	if numero == "" {
		return domain.ErrInvalidInput
	}
	if f.Numero != "" && f.Statut.IsEmitted() && f.Numero != numero {
		return domain.ErrImmutable
	}
	f.Numero = numero
	return nil
}

// ValidateCanBeSent vérifie la garde d'émission sans muter.
func (f *Facture) ValidateCanBeSent() error {
	if !f.Statut.CanBeSent() {
		return domain.NewGuardError("facture", "seul un brouillon peut être émis (statut "+string(f.Statut)+")")
	}
	if len(f.Lignes) == 0 {
		return domain.NewGuardError("facture", "aucune ligne : émission impossible")
	}
	if !f.MontantHT.IsPositive() || !f.MontantTTC.IsPositive() {
		return domain.NewGuardError("facture", "montants HT et TTC doivent être strictement positifs")
	}
	if f.DevisID == "" {
		return domain.NewGuardError("facture", "facture sans devis d'origine")
	}
	return nil
}

// Envoyer émet la facture : passage en SENT, gel des montants et du numéro.
func (f *Facture) Envoyer(sentAt time.Time, canal string) error {
	if err := f.ValidateCanBeSent(); err != nil {
		return err
	}
	f.Statut = FactureEnvoyee
	f.DateEmission = &sentAt
	f.DateEnvoi = &sentAt
	f.CanalEnvoi = canal
	f.NbEnvois++
	return nil
}

// EnregistrerRenvoi consigne un renvoi (le statut ne change pas).
func (f *Facture) EnregistrerRenvoi(sentAt time.Time, canal string) error {
	if !f.Statut.IsEmitted() || f.Statut == FactureAnnulee {
		return domain.NewGuardError("facture", "renvoi impossible dans le statut "+string(f.Statut))
	}
	f.DateEnvoi = &sentAt
	f.CanalEnvoi = canal
	f.NbEnvois++
	return nil
}

// MarquerPayee passe la facture en PAID.
func (f *Facture) MarquerPayee(now time.Time) error {
	if !f.Statut.CanBePaid() {
		return domain.NewGuardError("facture", "encaissement possible depuis SENT ou OVERDUE (statut "+string(f.Statut)+")")
	}
	f.Statut = FacturePayee
	f.DatePaiement = &now
	return nil
}

// MarquerEnRetard constate le dépassement d'échéance d'une facture envoyée.
func (f *Facture) MarquerEnRetard(now time.Time) error {
	if !f.Statut.CanBeOverdue() {
		return domain.NewGuardError("facture", "passage en retard possible uniquement depuis SENT (statut "+string(f.Statut)+")")
	}
	if f.DateEcheance.IsZero() || !f.DateEcheance.Before(now) {
		return domain.NewGuardError("facture", "échéance non dépassée")
	}
	f.Statut = FactureEnRetard
	return nil
}

// Annuler passe la facture en CANCELLED (terminal, pas de suppression physique).
func (f *Facture) Annuler() error {
	if !f.Statut.CanBeCancelled() {
		return domain.NewGuardError("facture", "annulation impossible depuis un statut final ("+string(f.Statut)+")")
	}
	f.Statut = FactureAnnulee
	return nil
}
