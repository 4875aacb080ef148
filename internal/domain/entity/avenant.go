package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/money"
)

// Avenant : correction contractuelle d'un devis signé. Référence exactement
// un devis (rattachement immuable une fois posé). Ses totaux représentent la
// valeur après avenant des lignes touchées ; le delta TTC, lui, vit ligne à
// ligne (voir LigneAvenant).
type Avenant struct {
	ID        string
	CompanyID string

	// DevisID : rattachement au devis, immuable après émission.
	DevisID string

	Numero string
	Objet  string
	Statut StatutAvenant

	Lignes []*LigneAvenant

	MontantHT  decimal.Decimal
	MontantTTC decimal.Decimal

	// TauxTVA : taux global propre à l'avenant, optionnel. Entre en jeu dans
	// la priorité des taux du delta (après le taux propre de la ligne).
	TauxTVA *decimal.Decimal

	DateEnvoi     *time.Time
	DateSignature *time.Time
	CanalEnvoi    string
	NbEnvois      int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RattacherDevis pose le devis de rattachement. Re-lier un avenant émis
// à un autre devis est une violation d'immuabilité.
func (a *Avenant) RattacherDevis(devisID string) error {
	if devisID == "" {
		return domain.ErrInvalidInput
	}
	if a.DevisID != "" && a.DevisID != devisID {
		if a.Statut.IsEmitted() {
			return domain.ErrImmutable
		}
	}
	a.DevisID = devisID
	return nil
}

// AjouterLigne valide puis rattache une ligne. Refusé hors brouillon.
func (a *Avenant) AjouterLigne(l *LigneAvenant) error {
	if !a.Statut.IsModifiable() {
		return domain.ErrImmutable
	}
	if err := l.Validate(); err != nil {
		return err
	}
	l.AvenantID = a.ID
	a.Lignes = append(a.Lignes, l)
	return nil
}

// Recalculate re-dérive les totaux depuis les lignes : MontantHT est la somme
// des nouvelles valeurs HT, MontantTTC leur somme TTC au taux applicable de
// chaque ligne. Le devis parent fournit le mode et le taux de repli.
func (a *Avenant) Recalculate(devis *Devis) error {
	if a.Statut.IsEmitted() {
		return domain.ErrImmutable
	}
	parLigne := false
	tauxDevis := decimal.Zero
	if devis != nil {
		parLigne = devis.UsesTVAParLigne()
		tauxDevis = devis.TauxTVA
	}
	ht := decimal.Zero
	ttc := decimal.Zero
	for _, l := range a.Lignes {
		l.Recalculate()
		ht = ht.Add(l.NouvelleValeur)
		ttc = ttc.Add(l.NouvelleValeurTTC(parLigne, tauxDevis, a.TauxTVA))
	}
	a.MontantHT = money.Round2(ht)
	a.MontantTTC = money.Round2(ttc)
	return nil
}

// DeltaTotalTTC : somme des deltas TTC des lignes, arrondi final uniquement.
func (a *Avenant) DeltaTotalTTC(devis *Devis) decimal.Decimal {
	parLigne := false
	tauxDevis := decimal.Zero
	if devis != nil {
		parLigne = devis.UsesTVAParLigne()
		tauxDevis = devis.TauxTVA
	}
	total := decimal.Zero
	for _, l := range a.Lignes {
		total = total.Add(l.DeltaTTC(parLigne, tauxDevis, a.TauxTVA))
	}
	return money.Round2(total)
}

// AssignerNumero pose le numéro définitif, immuable après émission.
func (a *Avenant) AssignerNumero(numero string) error {
	if numero == "" {
		return domain.ErrInvalidInput
	}
	if a.Numero != "" && a.Statut.IsEmitted() && a.Numero != numero {
		return domain.ErrImmutable
	}
	a.Numero = numero
	return nil
}

// ValidateCanBeSent vérifie la garde d'envoi sans muter.
func (a *Avenant) ValidateCanBeSent() error {
	if !a.Statut.CanBeSent() {
		return domain.NewGuardError("avenant", "seul un brouillon peut être envoyé (statut "+string(a.Statut)+")")
	}
	if len(a.Lignes) == 0 {
		return domain.NewGuardError("avenant", "aucune ligne : rien à envoyer")
	}
	if a.DevisID == "" {
		return domain.NewGuardError("avenant", "avenant sans devis de rattachement")
	}
	return nil
}

// Envoyer passe l'avenant en SENT.
func (a *Avenant) Envoyer(sentAt time.Time, canal string) error {
	if err := a.ValidateCanBeSent(); err != nil {
		return err
	}
	a.Statut = AvenantEnvoye
	a.DateEnvoi = &sentAt
	a.CanalEnvoi = canal
	a.NbEnvois++
	return nil
}

// ValidateCanBeSigned : garde trans-document. Un avenant ne peut être signé
// que si son devis est lui-même SIGNED : il ne précède ni ne survit à l'état
// contractuel du devis. La garde court à chaque tentative, elle n'est pas
// contournable par mutation directe d'un champ.
func (a *Avenant) ValidateCanBeSigned(devis *Devis) error {
	if a.Statut == AvenantAnnule {
		return domain.NewGuardError("avenant", "un avenant annulé ne peut pas être signé")
	}
	if !a.Statut.CanBeSigned() {
		return domain.NewGuardError("avenant", "signature possible uniquement depuis SENT (statut "+string(a.Statut)+")")
	}
	if len(a.Lignes) == 0 {
		return domain.NewGuardError("avenant", "aucune ligne : signature impossible")
	}
	if !a.MontantHT.IsPositive() || !a.MontantTTC.IsPositive() {
		return domain.NewGuardError("avenant", "montants HT et TTC doivent être strictement positifs")
	}
	if devis == nil || devis.ID != a.DevisID {
		return domain.NewGuardError("avenant", "devis de rattachement introuvable")
	}
	if devis.Statut != DevisSigne {
		return domain.NewGuardError("avenant", "le devis de rattachement doit être signé (statut "+string(devis.Statut)+")")
	}
	return nil
}

// Signer passe l'avenant en SIGNED après la garde trans-document.
func (a *Avenant) Signer(devis *Devis, now time.Time) error {
	if err := a.ValidateCanBeSigned(devis); err != nil {
		return err
	}
	a.Statut = AvenantSigne
	a.DateSignature = &now
	return nil
}

// Rejeter passe l'avenant en REJECTED.
func (a *Avenant) Rejeter() error {
	if !a.Statut.CanBeRejected() {
		return domain.NewGuardError("avenant", "rejet possible uniquement depuis SENT (statut "+string(a.Statut)+")")
	}
	a.Statut = AvenantRejete
	return nil
}

// Annuler passe l'avenant en CANCELLED. Ses deltas sortent alors du
// total corrigé du devis.
func (a *Avenant) Annuler() error {
	if !a.Statut.CanBeCancelled() {
		return domain.NewGuardError("avenant", "annulation impossible depuis un statut final ("+string(a.Statut)+")")
	}
	a.Statut = AvenantAnnule
	return nil
}
