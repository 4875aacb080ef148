package entity

// StatutAvoir : ensemble fermé des états d'un avoir (note de crédit).
type StatutAvoir string

const (
	AvoirBrouillon StatutAvoir = "DRAFT"
	AvoirEmis      StatutAvoir = "ISSUED" // Émis comptablement : numéro et montants gelés
	AvoirEnvoye    StatutAvoir = "SENT"
	AvoirRembourse StatutAvoir = "REFUNDED"
	AvoirAnnule    StatutAvoir = "CANCELLED"
)

// IsValid indique si la valeur appartient à l'ensemble fermé.
func (s StatutAvoir) IsValid() bool {
	switch s {
	case AvoirBrouillon, AvoirEmis, AvoirEnvoye, AvoirRembourse, AvoirAnnule:
		return true
	}
	return false
}

// IsModifiable : seul le brouillon est modifiable.
func (s StatutAvoir) IsModifiable() bool { return s == AvoirBrouillon }

// IsEmitted : tout état post-émission, annulation comprise.
func (s StatutAvoir) IsEmitted() bool { return s != AvoirBrouillon }

// IsFinal : états terminaux.
func (s StatutAvoir) IsFinal() bool {
	switch s {
	case AvoirRembourse, AvoirAnnule:
		return true
	}
	return false
}

// CanBeIssued : émission depuis le brouillon uniquement.
func (s StatutAvoir) CanBeIssued() bool { return s == AvoirBrouillon }

// CanBeSent : envoi après émission uniquement.
func (s StatutAvoir) CanBeSent() bool { return s == AvoirEmis }

// CanBeRefunded : remboursement après émission ou envoi.
func (s StatutAvoir) CanBeRefunded() bool {
	return s == AvoirEmis || s == AvoirEnvoye
}

// CanBeCancelled : annulable tant qu'un état final n'est pas atteint.
func (s StatutAvoir) CanBeCancelled() bool { return !s.IsFinal() }

// Label : libellé d'affichage.
func (s StatutAvoir) Label() string {
	switch s {
	case AvoirBrouillon:
		return "Brouillon"
	case AvoirEmis:
		return "Émis"
	case AvoirEnvoye:
		return "Envoyé"
	case AvoirRembourse:
		return "Remboursé"
	case AvoirAnnule:
		return "Annulé"
	}
	return string(s)
}

// Couleur : code couleur pour l'interface.
func (s StatutAvoir) Couleur() string {
	switch s {
	case AvoirBrouillon:
		return "gray"
	case AvoirEmis:
		return "blue"
	case AvoirEnvoye:
		return "teal"
	case AvoirRembourse:
		return "green"
	case AvoirAnnule:
		return "black"
	}
	return "gray"
}
