package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

var _ repository.AvoirRepository = (*AvoirRepo)(nil)

// AvoirRepo : adaptateur PostgreSQL du port AvoirRepository (pool ou tx).
type AvoirRepo struct {
	q Querier
}

// NewAvoirRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewAvoirRepository(q Querier) *AvoirRepo {
	return &AvoirRepo{q: q}
}

const avoirColumns = `id, company_id, client_id, facture_id, numero, motif, statut,
	montant_ht, montant_ttc, taux_tva, tva_par_ligne,
	date_emission, date_remboursement, date_envoi, canal_envoi, nb_envois,
	created_at, updated_at`

// Create persiste l'en-tête de l'avoir.
func (r *AvoirRepo) Create(avoir *entity.Avoir) error {
	query := `
		INSERT INTO avoirs (` + avoirColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(context.Background(), query,
		avoir.ID, avoir.CompanyID, avoir.ClientID, avoir.FactureID,
		nullIfEmpty(avoir.Numero), avoir.Motif, avoir.Statut,
		avoir.MontantHT, avoir.MontantTTC, avoir.TauxTVA, avoir.TVAParLigne,
		avoir.DateEmission, avoir.DateRemboursement, avoir.DateEnvoi,
		nullIfEmpty(avoir.CanalEnvoi), avoir.NbEnvois,
		avoir.CreatedAt, avoir.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numéro d'avoir déjà attribué: %w", err)
		}
		return fmt.Errorf("insert avoir: %w", err)
	}
	return nil
}

// Update persiste statut, numéro, totaux et dates.
func (r *AvoirRepo) Update(avoir *entity.Avoir) error {
	query := `
		UPDATE avoirs
		SET numero = $2, motif = $3, statut = $4,
		    montant_ht = $5, montant_ttc = $6, taux_tva = $7, tva_par_ligne = $8,
		    date_emission = $9, date_remboursement = $10, date_envoi = $11,
		    canal_envoi = $12, nb_envois = $13, updated_at = $14
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		avoir.ID, nullIfEmpty(avoir.Numero), avoir.Motif, avoir.Statut,
		avoir.MontantHT, avoir.MontantTTC, avoir.TauxTVA, avoir.TVAParLigne,
		avoir.DateEmission, avoir.DateRemboursement, avoir.DateEnvoi,
		nullIfEmpty(avoir.CanalEnvoi), avoir.NbEnvois, avoir.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update avoir: %w", err)
	}
	return nil
}

// GetByID retourne l'avoir sans ses lignes.
func (r *AvoirRepo) GetByID(id string) (*entity.Avoir, error) {
	query := `SELECT ` + avoirColumns + ` FROM avoirs WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	avoir, err := scanAvoir(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get avoir: %w", err)
	}
	return avoir, nil
}

// GetWithLignes retourne l'avoir et ses lignes.
func (r *AvoirRepo) GetWithLignes(id string) (*entity.Avoir, error) {
	avoir, err := r.GetByID(id)
	if err != nil || avoir == nil {
		return avoir, err
	}
	lignes, err := r.GetLignesByAvoirID(id)
	if err != nil {
		return nil, err
	}
	avoir.Lignes = lignes
	return avoir, nil
}

// ListByFactureID liste les avoirs visant une facture, du plus ancien au
// plus récent.
func (r *AvoirRepo) ListByFactureID(factureID string) ([]*entity.Avoir, error) {
	query := `SELECT ` + avoirColumns + `
		FROM avoirs WHERE facture_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, factureID)
	if err != nil {
		return nil, fmt.Errorf("list avoirs: %w", err)
	}
	defer rows.Close()
	var list []*entity.Avoir
	for rows.Next() {
		avoir, err := scanAvoir(rows)
		if err != nil {
			return nil, fmt.Errorf("scan avoir: %w", err)
		}
		list = append(list, avoir)
	}
	return list, rows.Err()
}

// SumTTCByFactureID : cumul TTC des avoirs de la facture qui consomment le
// plafond (émis, envoyés ou remboursés), excludeID exclu. Les brouillons
// n'ont encore rien consommé, les annulés plus rien.
func (r *AvoirRepo) SumTTCByFactureID(factureID, excludeID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(montant_ttc), 0)
		FROM avoirs
		WHERE facture_id = $1 AND id <> $2 AND statut NOT IN ('DRAFT', 'CANCELLED')`
	var somme decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, factureID, excludeID).Scan(&somme); err != nil {
		return decimal.Zero, fmt.Errorf("somme avoirs facture: %w", err)
	}
	return somme, nil
}

// ListEmittedByYear liste les avoirs émis sur l'exercice (export FEC).
func (r *AvoirRepo) ListEmittedByYear(companyID string, year int) ([]*entity.Avoir, error) {
	query := `SELECT ` + avoirColumns + `
		FROM avoirs
		WHERE company_id = $1
		  AND date_emission IS NOT NULL
		  AND EXTRACT(YEAR FROM date_emission) = $2
		ORDER BY date_emission, numero`
	rows, err := r.q.Query(context.Background(), query, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("list avoirs émis: %w", err)
	}
	defer rows.Close()
	var list []*entity.Avoir
	for rows.Next() {
		avoir, err := scanAvoir(rows)
		if err != nil {
			return nil, fmt.Errorf("scan avoir: %w", err)
		}
		list = append(list, avoir)
	}
	return list, rows.Err()
}

// CreateLigne persiste une ligne d'avoir (total HT potentiellement négatif).
func (r *AvoirRepo) CreateLigne(ligne *entity.LigneAvoir) error {
	query := `
		INSERT INTO lignes_avoir (id, avoir_id, description, quantite, prix_unitaire, total_ht, taux_tva, catalogue_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		ligne.ID, ligne.AvoirID, ligne.Description, ligne.Quantite,
		ligne.PrixUnitaire, ligne.TotalHT, ligne.TauxTVA, nullIfEmpty(ligne.CatalogueRef),
	)
	if err != nil {
		return fmt.Errorf("insert ligne avoir: %w", err)
	}
	return nil
}

// GetLignesByAvoirID liste les lignes d'un avoir dans l'ordre d'insertion.
func (r *AvoirRepo) GetLignesByAvoirID(avoirID string) ([]*entity.LigneAvoir, error) {
	query := `
		SELECT id, avoir_id, description, quantite, prix_unitaire, total_ht, taux_tva, COALESCE(catalogue_ref, '')
		FROM lignes_avoir WHERE avoir_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, avoirID)
	if err != nil {
		return nil, fmt.Errorf("list lignes avoir: %w", err)
	}
	defer rows.Close()
	var list []*entity.LigneAvoir
	for rows.Next() {
		var l entity.LigneAvoir
		if err := rows.Scan(&l.ID, &l.AvoirID, &l.Description, &l.Quantite,
			&l.PrixUnitaire, &l.TotalHT, &l.TauxTVA, &l.CatalogueRef); err != nil {
			return nil, fmt.Errorf("scan ligne avoir: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

func scanAvoir(row rowScanner) (*entity.Avoir, error) {
	var a entity.Avoir
	var numero, canal *string
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.ClientID, &a.FactureID, &numero, &a.Motif, &a.Statut,
		&a.MontantHT, &a.MontantTTC, &a.TauxTVA, &a.TVAParLigne,
		&a.DateEmission, &a.DateRemboursement, &a.DateEnvoi, &canal, &a.NbEnvois,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Numero = derefStr(numero)
	a.CanalEnvoi = derefStr(canal)
	return &a, nil
}
