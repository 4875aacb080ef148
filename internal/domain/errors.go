package domain

import (
	"errors"
	"fmt"
)

// Erreurs de domaine (sans dépendances externes).
var (
	ErrNotFound           = errors.New("ressource introuvable")
	ErrUserNotFound       = errors.New("utilisateur introuvable")
	ErrEmailAlreadyExists = errors.New("cet email est déjà enregistré")
	ErrInvalidInput       = errors.New("entrée invalide")
	ErrDuplicate          = errors.New("ressource dupliquée")
	ErrUnauthorized       = errors.New("non autorisé")
	ErrForbidden          = errors.New("accès refusé")
	ErrConflict           = errors.New("conflit avec l'état actuel")

	// ErrImmutable : tentative de modifier un champ gelé par l'émission
	// (numéro, montants, rattachement). Erreur de programmation côté appelant,
	// mais toujours interceptable, jamais un no-op silencieux.
	ErrImmutable = errors.New("document émis : champ immuable")
)

// GuardError : violation d'une garde de transition (signature sans ligne,
// plafond d'avoir dépassé, devis expiré...). Le document reste inchangé.
type GuardError struct {
	Document string // "devis", "avenant", "facture", "avoir"
	Reason   string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("transition refusée (%s) : %s", e.Document, e.Reason)
}

// NewGuardError construit une GuardError avec un motif lisible.
func NewGuardError(document, reason string) *GuardError {
	return &GuardError{Document: document, Reason: reason}
}

// IsGuardError indique si err est (ou enveloppe) une violation de garde.
func IsGuardError(err error) bool {
	var ge *GuardError
	return errors.As(err, &ge)
}
