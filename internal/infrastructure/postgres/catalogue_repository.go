package postgres

import (
	"context"
	"fmt"

	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

var _ repository.CatalogueRepository = (*CatalogueRepo)(nil)

// CatalogueRepo : adaptateur PostgreSQL du port CatalogueRepository.
type CatalogueRepo struct {
	q Querier
}

// NewCatalogueRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewCatalogueRepository(q Querier) *CatalogueRepo {
	return &CatalogueRepo{q: q}
}

// GetByID retourne une entrée de catalogue par ID.
func (r *CatalogueRepo) GetByID(id string) (*entity.CatalogueEntry, error) {
	query := `
		SELECT id, company_id, label, prix_unitaire, taux_tva, COALESCE(unite, ''), actif, created_at, updated_at
		FROM catalogue WHERE id = $1`
	var e entity.CatalogueEntry
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&e.ID, &e.CompanyID, &e.Label, &e.PrixUnitaire, &e.TauxTVA,
		&e.Unite, &e.Actif, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get entrée catalogue: %w", err)
	}
	return &e, nil
}

// ListByCompany liste les entrées de la société avec pagination.
func (r *CatalogueRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.CatalogueEntry, error) {
	query := `
		SELECT id, company_id, label, prix_unitaire, taux_tva, COALESCE(unite, ''), actif, created_at, updated_at
		FROM catalogue WHERE company_id = $1 ORDER BY label LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list catalogue: %w", err)
	}
	defer rows.Close()
	var list []*entity.CatalogueEntry
	for rows.Next() {
		var e entity.CatalogueEntry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Label, &e.PrixUnitaire, &e.TauxTVA,
			&e.Unite, &e.Actif, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entrée catalogue: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// Create persiste une entrée de catalogue.
func (r *CatalogueRepo) Create(entry *entity.CatalogueEntry) error {
	query := `
		INSERT INTO catalogue (id, company_id, label, prix_unitaire, taux_tva, unite, actif, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.CompanyID, entry.Label, entry.PrixUnitaire, entry.TauxTVA,
		nullIfEmpty(entry.Unite), entry.Actif, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert entrée catalogue: %w", err)
	}
	return nil
}

// Update met à jour une entrée de catalogue.
func (r *CatalogueRepo) Update(entry *entity.CatalogueEntry) error {
	query := `
		UPDATE catalogue
		SET label = $2, prix_unitaire = $3, taux_tva = $4, unite = $5, actif = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.Label, entry.PrixUnitaire, entry.TauxTVA,
		nullIfEmpty(entry.Unite), entry.Actif, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update entrée catalogue: %w", err)
	}
	return nil
}
