package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/facturation-api/internal/application/dto"
	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

// CatalogueUseCase : catalogue de prix de la société. Les lignes de document
// créées depuis une entrée gardent leur propre copie des valeurs : modifier
// ou désactiver une entrée ne touche aucun document existant.
type CatalogueUseCase struct {
	repo repository.CatalogueRepository
}

// NewCatalogueUseCase construit le cas d'usage.
func NewCatalogueUseCase(repo repository.CatalogueRepository) *CatalogueUseCase {
	return &CatalogueUseCase{repo: repo}
}

// Create crée une entrée de catalogue active.
func (uc *CatalogueUseCase) Create(ctx context.Context, companyID string, in dto.CreateCatalogueEntryRequest) (*dto.CatalogueEntryResponse, error) {
	if in.Label == "" || in.PrixUnitaire.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.TauxTVA != nil && (in.TauxTVA.IsNegative() || in.TauxTVA.GreaterThan(centPourcent)) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	entry := &entity.CatalogueEntry{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		Label:        in.Label,
		PrixUnitaire: in.PrixUnitaire,
		TauxTVA:      in.TauxTVA,
		Unite:        in.Unite,
		Actif:        true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(entry); err != nil {
		return nil, err
	}
	return catalogueToResponse(entry), nil
}

// Desactiver retire l'entrée des choix proposés sans toucher aux documents
// qui la référencent.
func (uc *CatalogueUseCase) Desactiver(ctx context.Context, companyID, id string) (*dto.CatalogueEntryResponse, error) {
	entry, err := uc.repo.GetByID(id)
	if err != nil || entry == nil {
		return nil, domain.ErrNotFound
	}
	if entry.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	entry.Actif = false
	entry.UpdatedAt = time.Now()
	if err := uc.repo.Update(entry); err != nil {
		return nil, err
	}
	return catalogueToResponse(entry), nil
}

// List liste les entrées de la société.
func (uc *CatalogueUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]*dto.CatalogueEntryResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CatalogueEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, catalogueToResponse(e))
	}
	return out, nil
}

func catalogueToResponse(e *entity.CatalogueEntry) *dto.CatalogueEntryResponse {
	return &dto.CatalogueEntryResponse{
		ID:           e.ID,
		CompanyID:    e.CompanyID,
		Label:        e.Label,
		PrixUnitaire: e.PrixUnitaire,
		TauxTVA:      e.TauxTVA,
		Unite:        e.Unite,
		Actif:        e.Actif,
	}
}
