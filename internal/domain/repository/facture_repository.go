package repository

import "github.com/facturio/facturation-api/internal/domain/entity"

// FactureRepository définit le port de persistance de la facture et de ses lignes.
type FactureRepository interface {
	Create(facture *entity.Facture) error
	Update(facture *entity.Facture) error
	GetByID(id string) (*entity.Facture, error)
	GetWithLignes(id string) (*entity.Facture, error)
	// GetByDevisID : relation 1:1 devis -> facture.
	GetByDevisID(devisID string) (*entity.Facture, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Facture, error)
	// ListEmittedByYear : factures émises d'un exercice (export FEC).
	ListEmittedByYear(companyID string, year int) ([]*entity.Facture, error)
	CreateLigne(ligne *entity.LigneFacture) error
	GetLignesByFactureID(factureID string) ([]*entity.LigneFacture, error)
}
