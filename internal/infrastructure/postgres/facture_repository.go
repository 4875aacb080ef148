package postgres

import (
	"context"
	"fmt"

	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

var _ repository.FactureRepository = (*FactureRepo)(nil)

// FactureRepo : adaptateur PostgreSQL du port FactureRepository (pool ou tx).
type FactureRepo struct {
	q Querier
}

// NewFactureRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewFactureRepository(q Querier) *FactureRepo {
	return &FactureRepo{q: q}
}

const factureColumns = `id, company_id, client_id, devis_id, numero, objet, type, statut,
	montant_ht, montant_ttc, taux_tva, tva_par_ligne,
	date_emission, date_echeance, date_paiement, date_envoi, canal_envoi, nb_envois,
	created_at, updated_at`

// Create persiste l'en-tête de la facture.
func (r *FactureRepo) Create(facture *entity.Facture) error {
	query := `
		INSERT INTO factures (` + factureColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(context.Background(), query,
		facture.ID, facture.CompanyID, facture.ClientID, facture.DevisID,
		nullIfEmpty(facture.Numero), facture.Objet, facture.Type, facture.Statut,
		facture.MontantHT, facture.MontantTTC, facture.TauxTVA, facture.TVAParLigne,
		facture.DateEmission, facture.DateEcheance, facture.DatePaiement,
		facture.DateEnvoi, nullIfEmpty(facture.CanalEnvoi), facture.NbEnvois,
		facture.CreatedAt, facture.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numéro de facture déjà attribué: %w", err)
		}
		return fmt.Errorf("insert facture: %w", err)
	}
	return nil
}

// Update persiste statut, numéro, totaux et dates.
func (r *FactureRepo) Update(facture *entity.Facture) error {
	query := `
		UPDATE factures
		SET numero = $2, objet = $3, type = $4, statut = $5,
		    montant_ht = $6, montant_ttc = $7, taux_tva = $8, tva_par_ligne = $9,
		    date_emission = $10, date_echeance = $11, date_paiement = $12,
		    date_envoi = $13, canal_envoi = $14, nb_envois = $15,
		    updated_at = $16
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		facture.ID, nullIfEmpty(facture.Numero), facture.Objet, facture.Type, facture.Statut,
		facture.MontantHT, facture.MontantTTC, facture.TauxTVA, facture.TVAParLigne,
		facture.DateEmission, facture.DateEcheance, facture.DatePaiement,
		facture.DateEnvoi, nullIfEmpty(facture.CanalEnvoi), facture.NbEnvois,
		facture.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numéro de facture déjà attribué: %w", err)
		}
		return fmt.Errorf("update facture: %w", err)
	}
	return nil
}

// GetByID retourne la facture sans ses lignes.
func (r *FactureRepo) GetByID(id string) (*entity.Facture, error) {
	query := `SELECT ` + factureColumns + ` FROM factures WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	facture, err := scanFacture(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get facture: %w", err)
	}
	return facture, nil
}

// GetWithLignes retourne la facture et ses lignes.
func (r *FactureRepo) GetWithLignes(id string) (*entity.Facture, error) {
	facture, err := r.GetByID(id)
	if err != nil || facture == nil {
		return facture, err
	}
	lignes, err := r.GetLignesByFactureID(id)
	if err != nil {
		return nil, err
	}
	facture.Lignes = lignes
	return facture, nil
}

// GetByDevisID retourne la facture la plus récente du devis (relation 1:1,
// une annulée peut avoir été remplacée).
func (r *FactureRepo) GetByDevisID(devisID string) (*entity.Facture, error) {
	query := `SELECT ` + factureColumns + `
		FROM factures WHERE devis_id = $1
		ORDER BY created_at DESC LIMIT 1`
	row := r.q.QueryRow(context.Background(), query, devisID)
	facture, err := scanFacture(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get facture by devis: %w", err)
	}
	return facture, nil
}

// ListByCompany liste les factures de la société, sans lignes.
func (r *FactureRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Facture, error) {
	query := `SELECT ` + factureColumns + `
		FROM factures WHERE company_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list factures: %w", err)
	}
	defer rows.Close()
	var list []*entity.Facture
	for rows.Next() {
		facture, err := scanFacture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan facture: %w", err)
		}
		list = append(list, facture)
	}
	return list, rows.Err()
}

// ListEmittedByYear liste les factures émises sur l'exercice (export FEC),
// par date d'émission croissante comme l'exige le format.
func (r *FactureRepo) ListEmittedByYear(companyID string, year int) ([]*entity.Facture, error) {
	query := `SELECT ` + factureColumns + `
		FROM factures
		WHERE company_id = $1
		  AND date_emission IS NOT NULL
		  AND EXTRACT(YEAR FROM date_emission) = $2
		ORDER BY date_emission, numero`
	rows, err := r.q.Query(context.Background(), query, companyID, year)
	if err != nil {
		return nil, fmt.Errorf("list factures émises: %w", err)
	}
	defer rows.Close()
	var list []*entity.Facture
	for rows.Next() {
		facture, err := scanFacture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan facture: %w", err)
		}
		list = append(list, facture)
	}
	return list, rows.Err()
}

// CreateLigne persiste une ligne de facture.
func (r *FactureRepo) CreateLigne(ligne *entity.LigneFacture) error {
	query := `
		INSERT INTO lignes_facture (id, facture_id, description, quantite, prix_unitaire, total_ht, taux_tva, catalogue_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		ligne.ID, ligne.FactureID, ligne.Description, ligne.Quantite,
		ligne.PrixUnitaire, ligne.TotalHT, ligne.TauxTVA, nullIfEmpty(ligne.CatalogueRef),
	)
	if err != nil {
		return fmt.Errorf("insert ligne facture: %w", err)
	}
	return nil
}

// GetLignesByFactureID liste les lignes d'une facture dans l'ordre d'insertion.
func (r *FactureRepo) GetLignesByFactureID(factureID string) ([]*entity.LigneFacture, error) {
	query := `
		SELECT id, facture_id, description, quantite, prix_unitaire, total_ht, taux_tva, COALESCE(catalogue_ref, '')
		FROM lignes_facture WHERE facture_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, factureID)
	if err != nil {
		return nil, fmt.Errorf("list lignes facture: %w", err)
	}
	defer rows.Close()
	var list []*entity.LigneFacture
	for rows.Next() {
		var l entity.LigneFacture
		if err := rows.Scan(&l.ID, &l.FactureID, &l.Description, &l.Quantite,
			&l.PrixUnitaire, &l.TotalHT, &l.TauxTVA, &l.CatalogueRef); err != nil {
			return nil, fmt.Errorf("scan ligne facture: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

func scanFacture(row rowScanner) (*entity.Facture, error) {
	var f entity.Facture
	var numero, canal *string
	err := row.Scan(
		&f.ID, &f.CompanyID, &f.ClientID, &f.DevisID, &numero, &f.Objet, &f.Type, &f.Statut,
		&f.MontantHT, &f.MontantTTC, &f.TauxTVA, &f.TVAParLigne,
		&f.DateEmission, &f.DateEcheance, &f.DatePaiement, &f.DateEnvoi, &canal, &f.NbEnvois,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Numero = derefStr(numero)
	f.CanalEnvoi = derefStr(canal)
	return &f, nil
}
