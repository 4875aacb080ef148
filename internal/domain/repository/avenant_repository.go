package repository

import "github.com/facturio/facturation-api/internal/domain/entity"

// AvenantRepository définit le port de persistance de l'avenant et de ses lignes.
type AvenantRepository interface {
	Create(avenant *entity.Avenant) error
	Update(avenant *entity.Avenant) error
	GetByID(id string) (*entity.Avenant, error)
	GetWithLignes(id string) (*entity.Avenant, error)
	// ListByDevisID : index côté devis, reconstruit depuis le stockage
	// (pas de paire de pointeurs vivants devis<->avenants).
	ListByDevisID(devisID string) ([]*entity.Avenant, error)
	CreateLigne(ligne *entity.LigneAvenant) error
	UpdateLigne(ligne *entity.LigneAvenant) error
	DeleteLigne(id string) error
	GetLignesByAvenantID(avenantID string) ([]*entity.LigneAvenant, error)
}
