package entity

// StatutFacture : ensemble fermé des états d'une facture.
type StatutFacture string

const (
	FactureBrouillon StatutFacture = "DRAFT"
	FactureEnvoyee   StatutFacture = "SENT"
	FacturePayee     StatutFacture = "PAID"
	FactureEnRetard  StatutFacture = "OVERDUE"
	FactureAnnulee   StatutFacture = "CANCELLED"
)

// IsValid indique si la valeur appartient à l'ensemble fermé.
func (s StatutFacture) IsValid() bool {
	switch s {
	case FactureBrouillon, FactureEnvoyee, FacturePayee, FactureEnRetard, FactureAnnulee:
		return true
	}
	return false
}

// IsModifiable : seul le brouillon est modifiable.
func (s StatutFacture) IsModifiable() bool { return s == FactureBrouillon }

// IsEmitted : tout état post-émission, annulation comprise.
func (s StatutFacture) IsEmitted() bool { return s != FactureBrouillon }

// IsFinal : états terminaux.
func (s StatutFacture) IsFinal() bool {
	switch s {
	case FacturePayee, FactureAnnulee:
		return true
	}
	return false
}

// CanBeSent : envoi depuis le brouillon uniquement.
func (s StatutFacture) CanBeSent() bool { return s == FactureBrouillon }

// CanBePaid : encaissement depuis SENT ou OVERDUE.
func (s StatutFacture) CanBePaid() bool {
	return s == FactureEnvoyee || s == FactureEnRetard
}

// CanBeOverdue : passage en retard depuis SENT uniquement.
func (s StatutFacture) CanBeOverdue() bool { return s == FactureEnvoyee }

// CanBeCancelled : annulable tant qu'un état final n'est pas atteint.
func (s StatutFacture) CanBeCancelled() bool { return !s.IsFinal() }

// Label : libellé d'affichage.
func (s StatutFacture) Label() string {
	switch s {
	case FactureBrouillon:
		return "Brouillon"
	case FactureEnvoyee:
		return "Envoyée"
	case FacturePayee:
		return "Payée"
	case FactureEnRetard:
		return "En retard"
	case FactureAnnulee:
		return "Annulée"
	}
	return string(s)
}

// Couleur : code couleur pour l'interface.
func (s StatutFacture) Couleur() string {
	switch s {
	case FactureBrouillon:
		return "gray"
	case FactureEnvoyee:
		return "blue"
	case FacturePayee:
		return "green"
	case FactureEnRetard:
		return "orange"
	case FactureAnnulee:
		return "black"
	}
	return "gray"
}
