package repository

// Types de documents pour les séquences de numérotation.
const (
	DocTypeDevis   = "DEVIS"
	DocTypeAvenant = "AVENANT"
	DocTypeFacture = "FACTURE"
	DocTypeAvoir   = "AVOIR"
)

// SequenceRepository alloue les numéros définitifs. NextNumber est appelé
// une seule fois par document, à la première émission, dans la même
// transaction que le changement de statut : la séquence ne doit jamais
// présenter de trou ni de doublon par société et type de document.
type SequenceRepository interface {
	NextNumber(companyID, documentType string) (string, error)
}
