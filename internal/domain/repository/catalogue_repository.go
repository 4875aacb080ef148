package repository

import "github.com/facturio/facturation-api/internal/domain/entity"

// CatalogueRepository : catalogue de prix, lecture seule côté moteur.
type CatalogueRepository interface {
	GetByID(id string) (*entity.CatalogueEntry, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.CatalogueEntry, error)
	Create(entry *entity.CatalogueEntry) error
	Update(entry *entity.CatalogueEntry) error
}
