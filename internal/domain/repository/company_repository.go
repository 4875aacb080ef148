package repository

import "github.com/facturio/facturation-api/internal/domain/entity"

// CompanyRepository définit le port de persistance pour Company (DIP).
// GetByID sert aussi de lecture des paramètres de facturation
// (DefaultTauxTVA, TVAEnabled) consultés par les cas d'usage.
type CompanyRepository interface {
	Create(company *entity.Company) error
	GetByID(id string) (*entity.Company, error)
	GetBySIREN(siren string) (*entity.Company, error)
	Update(company *entity.Company) error
	List(limit, offset int) ([]*entity.Company, error)
}
