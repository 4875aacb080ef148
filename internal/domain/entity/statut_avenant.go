package entity

// StatutAvenant : ensemble fermé des états d'un avenant.
type StatutAvenant string

const (
	AvenantBrouillon StatutAvenant = "DRAFT"
	AvenantEnvoye    StatutAvenant = "SENT" // Validé et transmis au client
	AvenantSigne     StatutAvenant = "SIGNED"
	AvenantRejete    StatutAvenant = "REJECTED"
	AvenantAnnule    StatutAvenant = "CANCELLED"
)

// IsValid indique si la valeur appartient à l'ensemble fermé.
func (s StatutAvenant) IsValid() bool {
	switch s {
	case AvenantBrouillon, AvenantEnvoye, AvenantSigne, AvenantRejete, AvenantAnnule:
		return true
	}
	return false
}

// IsModifiable : seul le brouillon est modifiable.
func (s StatutAvenant) IsModifiable() bool { return s == AvenantBrouillon }

// IsEmitted : tout état post-émission, annulation comprise.
func (s StatutAvenant) IsEmitted() bool { return s != AvenantBrouillon }

// IsFinal : états terminaux.
func (s StatutAvenant) IsFinal() bool {
	switch s {
	case AvenantRejete, AvenantAnnule:
		return true
	}
	return false
}

// CanBeSent : envoi depuis le brouillon uniquement.
func (s StatutAvenant) CanBeSent() bool { return s == AvenantBrouillon }

// CanBeSigned : signature depuis SENT uniquement.
func (s StatutAvenant) CanBeSigned() bool { return s == AvenantEnvoye }

// CanBeRejected : rejet depuis SENT uniquement.
func (s StatutAvenant) CanBeRejected() bool { return s == AvenantEnvoye }

// CanBeCancelled : annulable tant qu'un état final n'est pas atteint.
func (s StatutAvenant) CanBeCancelled() bool { return !s.IsFinal() }

// Label : libellé d'affichage.
func (s StatutAvenant) Label() string {
	switch s {
	case AvenantBrouillon:
		return "Brouillon"
	case AvenantEnvoye:
		return "Envoyé"
	case AvenantSigne:
		return "Signé"
	case AvenantRejete:
		return "Rejeté"
	case AvenantAnnule:
		return "Annulé"
	}
	return string(s)
}

// Couleur : code couleur pour l'interface.
func (s StatutAvenant) Couleur() string {
	switch s {
	case AvenantBrouillon:
		return "gray"
	case AvenantEnvoye:
		return "blue"
	case AvenantSigne:
		return "green"
	case AvenantRejete:
		return "red"
	case AvenantAnnule:
		return "black"
	}
	return "gray"
}
