package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/application/dto"
	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

var centPourcent = decimal.NewFromInt(100)

// buildLigneDocument construit le socle d'une ligne depuis la requête.
// Une CatalogueRef pré-remplit description, prix unitaire et taux quand la
// requête les laisse vides ; la ligne garde ensuite sa propre copie, le
// catalogue peut évoluer sans toucher aux documents existants.
func buildLigneDocument(catalogueRepo repository.CatalogueRepository, companyID string, in dto.LigneRequest) (entity.LigneDocument, error) {
	l := entity.LigneDocument{
		ID:           uuid.New().String(),
		Description:  in.Description,
		Quantite:     in.Quantite,
		PrixUnitaire: in.PrixUnitaire,
		TauxTVA:      in.TauxTVA,
		CatalogueRef: in.CatalogueRef,
	}
	if in.CatalogueRef == "" {
		return l, nil
	}
	entry, err := catalogueRepo.GetByID(in.CatalogueRef)
	if err != nil || entry == nil {
		return entity.LigneDocument{}, domain.ErrNotFound
	}
	if entry.CompanyID != companyID {
		return entity.LigneDocument{}, domain.ErrForbidden
	}
	if !entry.Actif {
		return entity.LigneDocument{}, domain.ErrInvalidInput
	}
	if l.Description == "" {
		l.Description = entry.Label
	}
	if l.PrixUnitaire.IsZero() {
		l.PrixUnitaire = entry.PrixUnitaire
	}
	if l.TauxTVA == nil && entry.TauxTVA != nil {
		taux := *entry.TauxTVA
		l.TauxTVA = &taux
	}
	return l, nil
}

func ligneToResponse(l entity.LigneDocument) dto.LigneResponse {
	return dto.LigneResponse{
		ID:           l.ID,
		Description:  l.Description,
		Quantite:     l.Quantite,
		PrixUnitaire: l.PrixUnitaire,
		TotalHT:      l.TotalHT,
		TauxTVA:      l.TauxTVA,
		CatalogueRef: l.CatalogueRef,
	}
}
