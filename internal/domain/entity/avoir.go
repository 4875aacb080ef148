package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/money"
)

// Avoir : note de crédit visant une facture émise. Le cumul TTC des avoirs
// d'une même facture ne dépasse jamais le TTC de la facture.
type Avoir struct {
	ID        string
	CompanyID string
	ClientID  string

	// FactureID : facture visée, immuable après émission.
	FactureID string

	Numero string
	// Motif : obligatoire à l'émission (exigence de traçabilité comptable).
	Motif  string
	Statut StatutAvoir

	Lignes []*LigneAvoir

	MontantHT  decimal.Decimal
	MontantTTC decimal.Decimal

	TauxTVA     decimal.Decimal
	TVAParLigne *bool

	DateEmission      *time.Time
	DateRemboursement *time.Time
	DateEnvoi         *time.Time
	CanalEnvoi        string
	NbEnvois          int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UsesTVAParLigne retourne le mode d'agrégation effectif.
func (a *Avoir) UsesTVAParLigne() bool {
	if a.TVAParLigne != nil {
		return *a.TVAParLigne
	}
	lignes := make([]money.Ligne, 0, len(a.Lignes))
	for _, l := range a.Lignes {
		lignes = append(lignes, l.MoneyLigne())
	}
	return money.DetectTVAParLigne(lignes)
}

// AjouterLigne valide puis rattache une ligne (HT négatif autorisé).
func (a *Avoir) AjouterLigne(l *LigneAvoir) error {
	if !a.Statut.IsModifiable() {
		return domain.ErrImmutable
	}
	if err := l.Validate(); err != nil {
		return err
	}
	l.Recalculate()
	l.AvoirID = a.ID
	a.Lignes = append(a.Lignes, l)
	return nil
}

// Recalculate re-dérive les totaux depuis les lignes. Interdit après émission.
func (a *Avoir) Recalculate() error {
	if a.Statut.IsEmitted() {
		return domain.ErrImmutable
	}
	lignes := make([]money.Ligne, 0, len(a.Lignes))
	for _, l := range a.Lignes {
		l.Recalculate()
		lignes = append(lignes, l.MoneyLigne())
	}
	totaux := money.Aggregate(lignes, a.UsesTVAParLigne(), a.TauxTVA)
	a.MontantHT = totaux.HT
	a.MontantTTC = totaux.TTC
	return nil
}

// AssignerNumero pose le numéro définitif, immuable après émission.
func (a *Avoir) AssignerNumero(numero string) error {
	if numero == "" {
		return domain.ErrInvalidInput
	}
	if a.Numero != "" && a.Statut.IsEmitted() && a.Numero != numero {
		return domain.ErrImmutable
	}
	a.Numero = numero
	return nil
}

// ValidateCanBeIssued : garde d'émission trans-document. La facture visée
// doit être émise et non annulée ; sommeAutresAvoirsTTC est le cumul TTC des
// avoirs frères non annulés (soi-même exclu), fourni par l'appelant. Le
// cumul, cet avoir compris, ne doit pas dépasser le TTC de la facture.
func (a *Avoir) ValidateCanBeIssued(facture *Facture, sommeAutresAvoirsTTC decimal.Decimal) error {
	if !a.Statut.CanBeIssued() {
		return domain.NewGuardError("avoir", "émission possible uniquement depuis le brouillon (statut "+string(a.Statut)+")")
	}
	if len(a.Lignes) == 0 {
		return domain.NewGuardError("avoir", "aucune ligne : émission impossible")
	}
	if a.MontantHT.IsZero() {
		return domain.NewGuardError("avoir", "montant HT nul : émission impossible")
	}
	if a.Motif == "" {
		return domain.NewGuardError("avoir", "motif obligatoire pour émettre un avoir")
	}
	if facture == nil || facture.ID != a.FactureID {
		return domain.NewGuardError("avoir", "facture visée introuvable")
	}
	if !facture.Statut.IsEmitted() {
		return domain.NewGuardError("avoir", "la facture visée n'est pas émise")
	}
	if facture.Statut == FactureAnnulee {
		return domain.NewGuardError("avoir", "la facture visée est annulée")
	}
	cumul := sommeAutresAvoirsTTC.Add(a.MontantTTC)
	if cumul.GreaterThan(facture.MontantTTC) {
		return domain.NewGuardError("avoir",
			"plafond dépassé : cumul des avoirs "+cumul.StringFixed(2)+
				" > TTC facture "+facture.MontantTTC.StringFixed(2))
	}
	return nil
}

// Emettre passe l'avoir en ISSUED après la garde trans-document.
func (a *Avoir) Emettre(facture *Facture, sommeAutresAvoirsTTC decimal.Decimal, now time.Time) error {
	if err := a.ValidateCanBeIssued(facture, sommeAutresAvoirsTTC); err != nil {
		return err
	}
	a.Statut = AvoirEmis
	a.DateEmission = &now
	return nil
}

// Envoyer passe l'avoir en SENT.
func (a *Avoir) Envoyer(sentAt time.Time, canal string) error {
	if !a.Statut.CanBeSent() {
		return domain.NewGuardError("avoir", "envoi possible uniquement après émission (statut "+string(a.Statut)+")")
	}
	a.Statut = AvoirEnvoye
	a.DateEnvoi = &sentAt
	a.CanalEnvoi = canal
	a.NbEnvois++
	return nil
}

// MarquerRembourse passe l'avoir en REFUNDED.
func (a *Avoir) MarquerRembourse(now time.Time) error {
	if !a.Statut.CanBeRefunded() {
		return domain.NewGuardError("avoir", "remboursement possible depuis ISSUED ou SENT (statut "+string(a.Statut)+")")
	}
	a.Statut = AvoirRembourse
	a.DateRemboursement = &now
	return nil
}

// Annuler passe l'avoir en CANCELLED.
func (a *Avoir) Annuler() error {
	if !a.Statut.CanBeCancelled() {
		return domain.NewGuardError("avoir", "annulation impossible depuis un statut final ("+string(a.Statut)+")")
	}
	a.Statut = AvoirAnnule
	return nil
}
