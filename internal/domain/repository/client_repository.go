package repository

import "github.com/facturio/facturation-api/internal/domain/entity"

// ClientRepository définit le port de persistance pour Client (DIP).
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	Update(client *entity.Client) error
	ListByCompany(companyID string, limit, offset int) ([]*entity.Client, error)
}
