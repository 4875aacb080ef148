package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/money"
)

// Devis : proposition commerciale. Une fois signé il acquiert valeur
// contractuelle : ses chiffres ne bougent plus, seuls des avenants
// peuvent le corriger (principe du delta). Aucun document émis n'est
// jamais supprimé (archivage légal) : l'annulation est un statut terminal.
type Devis struct {
	ID        string
	CompanyID string
	ClientID  string

	// Numero : assigné une seule fois, à la première émission, immuable ensuite.
	Numero string
	Objet  string
	Statut StatutDevis

	Lignes []*LigneDevis

	MontantHT  decimal.Decimal
	MontantTTC decimal.Decimal

	// TauxTVA : taux global du document.
	TauxTVA decimal.Decimal
	// TVAParLigne : mode d'agrégation persisté. nil sur les enregistrements
	// historiques antérieurs à la colonne, auquel cas le mode est détecté
	// par présence de taux sur les lignes (repli heuristique).
	TVAParLigne *bool

	// AcomptePourcentage : part du total demandée à la signature (0–100).
	AcomptePourcentage decimal.Decimal

	DateValidite  time.Time
	DateEnvoi     *time.Time
	DateSignature *time.Time

	// Trace du dernier envoi (collaborateur de livraison).
	CanalEnvoi string
	NbEnvois   int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UsesTVAParLigne retourne le mode d'agrégation effectif.
func (d *Devis) UsesTVAParLigne() bool {
	if d.TVAParLigne != nil {
		return *d.TVAParLigne
	}
	lignes := make([]money.Ligne, 0, len(d.Lignes))
	for _, l := range d.Lignes {
		lignes = append(lignes, l.MoneyLigne())
	}
	return money.DetectTVAParLigne(lignes)
}

// AjouterLigne valide puis rattache une ligne. Refusé hors brouillon.
func (d *Devis) AjouterLigne(l *LigneDevis) error {
	if !d.Statut.IsModifiable() {
		return domain.ErrImmutable
	}
	if err := l.Validate(false); err != nil {
		return err
	}
	l.Recalculate()
	l.DevisID = d.ID
	d.Lignes = append(d.Lignes, l)
	return nil
}

// Recalculate re-dérive MontantHT et MontantTTC depuis les lignes.
// Interdit après émission : les totaux d'un document émis sont gelés.
func (d *Devis) Recalculate() error {
	if d.Statut.IsEmitted() {
		return domain.ErrImmutable
	}
	lignes := make([]money.Ligne, 0, len(d.Lignes))
	for _, l := range d.Lignes {
		l.Recalculate()
		lignes = append(lignes, l.MoneyLigne())
	}
	totaux := money.Aggregate(lignes, d.UsesTVAParLigne(), d.TauxTVA)
	d.MontantHT = totaux.HT
	d.MontantTTC = totaux.TTC
	return nil
}

// AssignerNumero pose le numéro définitif. Changer le numéro d'un document
// émis échoue bruyamment, jamais d'écrasement silencieux.
func (d *Devis) AssignerNumero(numero string) error {
	if numero == "" {
		return domain.ErrInvalidInput
	}
	if d.Numero != "" && d.Statut.IsEmitted() && d.Numero != numero {
		return domain.ErrImmutable
	}
	d.Numero = numero
	return nil
}

// ValidateCanBeSent vérifie la garde d'envoi sans muter.
func (d *Devis) ValidateCanBeSent() error {
	if !d.Statut.CanBeSent() {
		return domain.NewGuardError("devis", "seul un brouillon peut être envoyé (statut "+string(d.Statut)+")")
	}
	if len(d.Lignes) == 0 {
		return domain.NewGuardError("devis", "aucune ligne : rien à envoyer")
	}
	if !d.MontantHT.IsPositive() || !d.MontantTTC.IsPositive() {
		return domain.NewGuardError("devis", "montants HT et TTC doivent être strictement positifs")
	}
	return nil
}

// Envoyer passe le devis en SENT et consigne l'envoi.
func (d *Devis) Envoyer(sentAt time.Time, canal string) error {
	if err := d.ValidateCanBeSent(); err != nil {
		return err
	}
	d.Statut = DevisEnvoye
	d.DateEnvoi = &sentAt
	d.CanalEnvoi = canal
	d.NbEnvois++
	return nil
}

// EnregistrerRenvoi consigne un renvoi du document déjà émis (le statut ne change pas).
func (d *Devis) EnregistrerRenvoi(sentAt time.Time, canal string) error {
	if !d.Statut.IsEmitted() || d.Statut.IsFinal() {
		return domain.NewGuardError("devis", "renvoi impossible dans le statut "+string(d.Statut))
	}
	d.DateEnvoi = &sentAt
	d.CanalEnvoi = canal
	d.NbEnvois++
	return nil
}

// ValidateCanBeSigned vérifie la garde de signature sans muter :
// au moins une ligne, montants strictement positifs, statut SENT,
// date de validité non dépassée.
func (d *Devis) ValidateCanBeSigned(now time.Time) error {
	if d.Statut == DevisAnnule {
		return domain.NewGuardError("devis", "un devis annulé ne peut pas être signé")
	}
	if !d.Statut.CanBeSigned() {
		return domain.NewGuardError("devis", "signature possible uniquement depuis SENT (statut "+string(d.Statut)+")")
	}
	if len(d.Lignes) == 0 {
		return domain.NewGuardError("devis", "aucune ligne : signature impossible")
	}
	if !d.MontantHT.IsPositive() || !d.MontantTTC.IsPositive() {
		return domain.NewGuardError("devis", "montants HT et TTC doivent être strictement positifs")
	}
	if !d.DateValidite.IsZero() && d.DateValidite.Before(now) {
		return domain.NewGuardError("devis", "devis expiré le "+d.DateValidite.Format("2006-01-02"))
	}
	return nil
}

// Signer passe le devis en SIGNED après la garde.
func (d *Devis) Signer(now time.Time) error {
	if err := d.ValidateCanBeSigned(now); err != nil {
		return err
	}
	d.Statut = DevisSigne
	d.DateSignature = &now
	return nil
}

// Refuser passe le devis en REFUSED.
func (d *Devis) Refuser() error {
	if !d.Statut.CanBeRefused() {
		return domain.NewGuardError("devis", "refus possible uniquement depuis SENT (statut "+string(d.Statut)+")")
	}
	d.Statut = DevisRefuse
	return nil
}

// Annuler passe le devis en CANCELLED (terminal, pas de suppression physique).
func (d *Devis) Annuler() error {
	if !d.Statut.CanBeCancelled() {
		return domain.NewGuardError("devis", "annulation impossible depuis un statut final ("+string(d.Statut)+")")
	}
	d.Statut = DevisAnnule
	return nil
}

// Expirer constate l'expiration d'un devis envoyé dont la validité est dépassée.
func (d *Devis) Expirer(now time.Time) error {
	if !d.Statut.CanExpire() {
		return domain.NewGuardError("devis", "expiration possible uniquement depuis SENT (statut "+string(d.Statut)+")")
	}
	if d.DateValidite.IsZero() || !d.DateValidite.Before(now) {
		return domain.NewGuardError("devis", "date de validité non dépassée")
	}
	d.Statut = DevisExpire
	return nil
}

// totalCorrigeBrut : somme non arrondie du TTC d'origine et des deltas TTC
// de tous les avenants non annulés. Les avenants DRAFT et SENT sont inclus
// au même titre que les signés : seul CANCELLED est exclu (comportement
// historique conservé, voir DESIGN.md).
func (d *Devis) totalCorrigeBrut(avenants []*Avenant) decimal.Decimal {
	total := d.MontantTTC
	parLigne := d.UsesTVAParLigne()
	for _, av := range avenants {
		if av.Statut == AvenantAnnule {
			continue
		}
		for _, l := range av.Lignes {
			total = total.Add(l.DeltaTTC(parLigne, d.TauxTVA, av.TauxTVA))
		}
	}
	return total
}

// TotalCorrige : TTC d'origine corrigé des avenants, arrondi final uniquement.
func (d *Devis) TotalCorrige(avenants []*Avenant) decimal.Decimal {
	return money.Round2(d.totalCorrigeBrut(avenants))
}

// AcompteCorrige recalcule le total corrigé depuis zéro (pas de réutilisation
// d'une valeur déjà arrondie) avant d'appliquer le pourcentage d'acompte,
// pour ne pas cumuler les erreurs d'arrondi entre grandeurs dérivées.
func (d *Devis) AcompteCorrige(avenants []*Avenant) decimal.Decimal {
	brut := d.totalCorrigeBrut(avenants)
	return money.Round2(brut.Mul(d.AcomptePourcentage).Div(decimal.NewFromInt(100)))
}

// SoldeCorrige : total corrigé moins acompte corrigé. La somme
// acompte + solde retombe exactement sur TotalCorrige.
func (d *Devis) SoldeCorrige(avenants []*Avenant) decimal.Decimal {
	return d.TotalCorrige(avenants).Sub(d.AcompteCorrige(avenants))
}
