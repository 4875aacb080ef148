package entity

// StatutDevis : ensemble fermé des états d'un devis.
type StatutDevis string

const (
	DevisBrouillon StatutDevis = "DRAFT"     // Modifiable, non émis
	DevisEnvoye    StatutDevis = "SENT"      // Émis, en attente de réponse du client
	DevisSigne     StatutDevis = "SIGNED"    // Accepté : valeur contractuelle
	DevisRefuse    StatutDevis = "REFUSED"   // Refusé par le client
	DevisExpire    StatutDevis = "EXPIRED"   // Date de validité dépassée sans signature
	DevisAnnule    StatutDevis = "CANCELLED" // Annulation : statut terminal, jamais de suppression
)

// IsValid indique si la valeur appartient à l'ensemble fermé.
func (s StatutDevis) IsValid() bool {
	switch s {
	case DevisBrouillon, DevisEnvoye, DevisSigne, DevisRefuse, DevisExpire, DevisAnnule:
		return true
	}
	return false
}

// IsModifiable : seul le brouillon (pré-émission) est modifiable.
func (s StatutDevis) IsModifiable() bool { return s == DevisBrouillon }

// IsEmitted : tout état post-émission, annulation comprise.
func (s StatutDevis) IsEmitted() bool { return s != DevisBrouillon }

// IsFinal : états dont aucune transition ne sort.
func (s StatutDevis) IsFinal() bool {
	switch s {
	case DevisRefuse, DevisExpire, DevisAnnule:
		return true
	}
	return false
}

// CanBeSent : l'envoi n'est légal que depuis le brouillon.
func (s StatutDevis) CanBeSent() bool { return s == DevisBrouillon }

// CanBeSigned : la signature n'est légale que depuis SENT.
func (s StatutDevis) CanBeSigned() bool { return s == DevisEnvoye }

// CanBeRefused : le refus n'est légal que depuis SENT.
func (s StatutDevis) CanBeRefused() bool { return s == DevisEnvoye }

// CanBeCancelled : annulable tant qu'un état final n'est pas atteint.
func (s StatutDevis) CanBeCancelled() bool { return !s.IsFinal() }

// CanExpire : l'expiration ne frappe qu'un devis envoyé non signé.
func (s StatutDevis) CanExpire() bool { return s == DevisEnvoye }

// Label : libellé d'affichage.
func (s StatutDevis) Label() string {
	switch s {
	case DevisBrouillon:
		return "Brouillon"
	case DevisEnvoye:
		return "Envoyé"
	case DevisSigne:
		return "Signé"
	case DevisRefuse:
		return "Refusé"
	case DevisExpire:
		return "Expiré"
	case DevisAnnule:
		return "Annulé"
	}
	return string(s)
}

// Couleur : code couleur pour l'interface.
func (s StatutDevis) Couleur() string {
	switch s {
	case DevisBrouillon:
		return "gray"
	case DevisEnvoye:
		return "blue"
	case DevisSigne:
		return "green"
	case DevisRefuse:
		return "red"
	case DevisExpire:
		return "orange"
	case DevisAnnule:
		return "black"
	}
	return "gray"
}
