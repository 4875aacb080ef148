package postgres

import (
	"context"
	"fmt"

	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo : adaptateur PostgreSQL du port CompanyRepository.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, name, siren, COALESCE(numero_tva, ''), COALESCE(address, ''),
	COALESCE(phone, ''), COALESCE(email, ''), status, default_taux_tva, tva_enabled,
	created_at, updated_at`

// Create persiste une société.
func (r *CompanyRepo) Create(company *entity.Company) error {
	query := `
		INSERT INTO companies (id, name, siren, numero_tva, address, phone, email, status,
			default_taux_tva, tva_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		company.ID, company.Name, company.SIREN, nullIfEmpty(company.NumeroTVA),
		nullIfEmpty(company.Address), nullIfEmpty(company.Phone), nullIfEmpty(company.Email),
		company.Status, company.DefaultTauxTVA, company.TVAEnabled,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("SIREN déjà enregistré: %w", err)
		}
		return fmt.Errorf("insert société: %w", err)
	}
	return nil
}

// GetByID retourne une société par ID.
func (r *CompanyRepo) GetByID(id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	company, err := scanCompany(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get société: %w", err)
	}
	return company, nil
}

// GetBySIREN retourne une société par SIREN (contrôle d'unicité à la création).
func (r *CompanyRepo) GetBySIREN(siren string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE siren = $1`
	row := r.q.QueryRow(context.Background(), query, siren)
	company, err := scanCompany(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get société par SIREN: %w", err)
	}
	return company, nil
}

// Update met à jour une société, paramètres de facturation compris.
func (r *CompanyRepo) Update(company *entity.Company) error {
	query := `
		UPDATE companies
		SET name = $2, siren = $3, numero_tva = $4, address = $5, phone = $6, email = $7,
		    status = $8, default_taux_tva = $9, tva_enabled = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		company.ID, company.Name, company.SIREN, nullIfEmpty(company.NumeroTVA),
		nullIfEmpty(company.Address), nullIfEmpty(company.Phone), nullIfEmpty(company.Email),
		company.Status, company.DefaultTauxTVA, company.TVAEnabled, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update société: %w", err)
	}
	return nil
}

// List retourne les sociétés avec pagination.
func (r *CompanyRepo) List(limit, offset int) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sociétés: %w", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan société: %w", err)
		}
		list = append(list, company)
	}
	return list, rows.Err()
}

func scanCompany(row rowScanner) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(
		&c.ID, &c.Name, &c.SIREN, &c.NumeroTVA, &c.Address,
		&c.Phone, &c.Email, &c.Status, &c.DefaultTauxTVA, &c.TVAEnabled,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
