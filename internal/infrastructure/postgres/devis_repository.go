package postgres

import (
	"context"
	"fmt"

	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

var _ repository.DevisRepository = (*DevisRepo)(nil)

// DevisRepo : adaptateur PostgreSQL du port DevisRepository (pool ou tx).
type DevisRepo struct {
	q Querier
}

// NewDevisRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewDevisRepository(q Querier) *DevisRepo {
	return &DevisRepo{q: q}
}

const devisColumns = `id, company_id, client_id, numero, objet, statut,
	montant_ht, montant_ttc, taux_tva, tva_par_ligne, acompte_pourcentage,
	date_validite, date_envoi, date_signature, canal_envoi, nb_envois,
	created_at, updated_at`

// Create persiste l'en-tête du devis.
func (r *DevisRepo) Create(devis *entity.Devis) error {
	query := `
		INSERT INTO devis (` + devisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(context.Background(), query,
		devis.ID, devis.CompanyID, devis.ClientID, nullIfEmpty(devis.Numero),
		devis.Objet, devis.Statut, devis.MontantHT, devis.MontantTTC,
		devis.TauxTVA, devis.TVAParLigne, devis.AcomptePourcentage,
		devis.DateValidite, devis.DateEnvoi, devis.DateSignature,
		nullIfEmpty(devis.CanalEnvoi), devis.NbEnvois,
		devis.CreatedAt, devis.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numéro de devis déjà attribué: %w", err)
		}
		return fmt.Errorf("insert devis: %w", err)
	}
	return nil
}

// Update persiste statut, numéro, totaux et dates.
func (r *DevisRepo) Update(devis *entity.Devis) error {
	query := `
		UPDATE devis
		SET numero = $2, objet = $3, statut = $4,
		    montant_ht = $5, montant_ttc = $6, taux_tva = $7, tva_par_ligne = $8,
		    acompte_pourcentage = $9, date_validite = $10,
		    date_envoi = $11, date_signature = $12, canal_envoi = $13, nb_envois = $14,
		    updated_at = $15
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		devis.ID, nullIfEmpty(devis.Numero), devis.Objet, devis.Statut,
		devis.MontantHT, devis.MontantTTC, devis.TauxTVA, devis.TVAParLigne,
		devis.AcomptePourcentage, devis.DateValidite,
		devis.DateEnvoi, devis.DateSignature, nullIfEmpty(devis.CanalEnvoi), devis.NbEnvois,
		devis.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numéro de devis déjà attribué: %w", err)
		}
		return fmt.Errorf("update devis: %w", err)
	}
	return nil
}

// GetByID retourne le devis sans ses lignes.
func (r *DevisRepo) GetByID(id string) (*entity.Devis, error) {
	query := `SELECT ` + devisColumns + ` FROM devis WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	devis, err := scanDevis(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get devis: %w", err)
	}
	return devis, nil
}

// GetWithLignes retourne le devis et ses lignes.
func (r *DevisRepo) GetWithLignes(id string) (*entity.Devis, error) {
	devis, err := r.GetByID(id)
	if err != nil || devis == nil {
		return devis, err
	}
	lignes, err := r.GetLignesByDevisID(id)
	if err != nil {
		return nil, err
	}
	devis.Lignes = lignes
	return devis, nil
}

// ListByCompany liste les devis de la société, sans lignes.
func (r *DevisRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Devis, error) {
	query := `SELECT ` + devisColumns + `
		FROM devis WHERE company_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list devis: %w", err)
	}
	defer rows.Close()
	var list []*entity.Devis
	for rows.Next() {
		devis, err := scanDevis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan devis: %w", err)
		}
		list = append(list, devis)
	}
	return list, rows.Err()
}

// CreateLigne persiste une ligne de devis.
func (r *DevisRepo) CreateLigne(ligne *entity.LigneDevis) error {
	query := `
		INSERT INTO lignes_devis (id, devis_id, description, quantite, prix_unitaire, total_ht, taux_tva, catalogue_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		ligne.ID, ligne.DevisID, ligne.Description, ligne.Quantite,
		ligne.PrixUnitaire, ligne.TotalHT, ligne.TauxTVA, nullIfEmpty(ligne.CatalogueRef),
	)
	if err != nil {
		return fmt.Errorf("insert ligne devis: %w", err)
	}
	return nil
}

// UpdateLigne met à jour une ligne de devis.
func (r *DevisRepo) UpdateLigne(ligne *entity.LigneDevis) error {
	query := `
		UPDATE lignes_devis
		SET description = $2, quantite = $3, prix_unitaire = $4, total_ht = $5, taux_tva = $6, catalogue_ref = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		ligne.ID, ligne.Description, ligne.Quantite, ligne.PrixUnitaire,
		ligne.TotalHT, ligne.TauxTVA, nullIfEmpty(ligne.CatalogueRef),
	)
	if err != nil {
		return fmt.Errorf("update ligne devis: %w", err)
	}
	return nil
}

// DeleteLigne supprime une ligne de devis (brouillons uniquement, le domaine
// interdit la mutation après émission).
func (r *DevisRepo) DeleteLigne(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM lignes_devis WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ligne devis: %w", err)
	}
	return nil
}

// GetLignesByDevisID liste les lignes d'un devis dans l'ordre d'insertion.
func (r *DevisRepo) GetLignesByDevisID(devisID string) ([]*entity.LigneDevis, error) {
	query := `
		SELECT id, devis_id, description, quantite, prix_unitaire, total_ht, taux_tva, COALESCE(catalogue_ref, '')
		FROM lignes_devis WHERE devis_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, devisID)
	if err != nil {
		return nil, fmt.Errorf("list lignes devis: %w", err)
	}
	defer rows.Close()
	var list []*entity.LigneDevis
	for rows.Next() {
		var l entity.LigneDevis
		if err := rows.Scan(&l.ID, &l.DevisID, &l.Description, &l.Quantite,
			&l.PrixUnitaire, &l.TotalHT, &l.TauxTVA, &l.CatalogueRef); err != nil {
			return nil, fmt.Errorf("scan ligne devis: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevis(row rowScanner) (*entity.Devis, error) {
	var d entity.Devis
	var numero, canal *string
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.ClientID, &numero, &d.Objet, &d.Statut,
		&d.MontantHT, &d.MontantTTC, &d.TauxTVA, &d.TVAParLigne, &d.AcomptePourcentage,
		&d.DateValidite, &d.DateEnvoi, &d.DateSignature, &canal, &d.NbEnvois,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Numero = derefStr(numero)
	d.CanalEnvoi = derefStr(canal)
	return &d, nil
}
