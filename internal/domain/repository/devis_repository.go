package repository

import "github.com/facturio/facturation-api/internal/domain/entity"

// DevisRepository définit le port de persistance du devis et de ses lignes (DIP).
// L'implémentation vit dans infrastructure.
type DevisRepository interface {
	Create(devis *entity.Devis) error
	// Update persiste statut, numéro, totaux et dates d'envoi/signature.
	Update(devis *entity.Devis) error
	GetByID(id string) (*entity.Devis, error)
	// GetWithLignes charge le devis et ses lignes en une passe.
	GetWithLignes(id string) (*entity.Devis, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Devis, error)
	CreateLigne(ligne *entity.LigneDevis) error
	UpdateLigne(ligne *entity.LigneDevis) error
	DeleteLigne(id string) error
	GetLignesByDevisID(devisID string) ([]*entity.LigneDevis, error)
}
