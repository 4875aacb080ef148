package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

var _ repository.AvenantRepository = (*AvenantRepo)(nil)

// AvenantRepo : adaptateur PostgreSQL du port AvenantRepository (pool ou tx).
type AvenantRepo struct {
	q Querier
}

// NewAvenantRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewAvenantRepository(q Querier) *AvenantRepo {
	return &AvenantRepo{q: q}
}

const avenantColumns = `id, company_id, devis_id, numero, objet, statut,
	montant_ht, montant_ttc, taux_tva,
	date_envoi, date_signature, canal_envoi, nb_envois,
	created_at, updated_at`

// Create persiste l'en-tête de l'avenant.
func (r *AvenantRepo) Create(avenant *entity.Avenant) error {
	query := `
		INSERT INTO avenants (` + avenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		avenant.ID, avenant.CompanyID, avenant.DevisID, nullIfEmpty(avenant.Numero),
		avenant.Objet, avenant.Statut, avenant.MontantHT, avenant.MontantTTC,
		avenant.TauxTVA, avenant.DateEnvoi, avenant.DateSignature,
		nullIfEmpty(avenant.CanalEnvoi), avenant.NbEnvois,
		avenant.CreatedAt, avenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numéro d'avenant déjà attribué: %w", err)
		}
		return fmt.Errorf("insert avenant: %w", err)
	}
	return nil
}

// Update persiste statut, numéro, totaux et dates.
func (r *AvenantRepo) Update(avenant *entity.Avenant) error {
	query := `
		UPDATE avenants
		SET numero = $2, objet = $3, statut = $4,
		    montant_ht = $5, montant_ttc = $6, taux_tva = $7,
		    date_envoi = $8, date_signature = $9, canal_envoi = $10, nb_envois = $11,
		    updated_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		avenant.ID, nullIfEmpty(avenant.Numero), avenant.Objet, avenant.Statut,
		avenant.MontantHT, avenant.MontantTTC, avenant.TauxTVA,
		avenant.DateEnvoi, avenant.DateSignature, nullIfEmpty(avenant.CanalEnvoi), avenant.NbEnvois,
		avenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update avenant: %w", err)
	}
	return nil
}

// GetByID retourne l'avenant sans ses lignes.
func (r *AvenantRepo) GetByID(id string) (*entity.Avenant, error) {
	query := `SELECT ` + avenantColumns + ` FROM avenants WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	avenant, err := scanAvenant(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get avenant: %w", err)
	}
	return avenant, nil
}

// GetWithLignes retourne l'avenant et ses lignes.
func (r *AvenantRepo) GetWithLignes(id string) (*entity.Avenant, error) {
	avenant, err := r.GetByID(id)
	if err != nil || avenant == nil {
		return avenant, err
	}
	lignes, err := r.GetLignesByAvenantID(id)
	if err != nil {
		return nil, err
	}
	avenant.Lignes = lignes
	return avenant, nil
}

// ListByDevisID liste les avenants d'un devis, sans lignes, du plus ancien
// au plus récent (ordre d'application des corrections).
func (r *AvenantRepo) ListByDevisID(devisID string) ([]*entity.Avenant, error) {
	query := `SELECT ` + avenantColumns + `
		FROM avenants WHERE devis_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, devisID)
	if err != nil {
		return nil, fmt.Errorf("list avenants: %w", err)
	}
	defer rows.Close()
	var list []*entity.Avenant
	for rows.Next() {
		avenant, err := scanAvenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan avenant: %w", err)
		}
		list = append(list, avenant)
	}
	return list, rows.Err()
}

// CreateLigne persiste une ligne d'avenant avec sa comptabilité delta.
func (r *AvenantRepo) CreateLigne(ligne *entity.LigneAvenant) error {
	var sourceID *string
	if ligne.LigneSource != nil {
		sourceID = &ligne.LigneSource.ID
	}
	query := `
		INSERT INTO lignes_avenant (id, avenant_id, ligne_source_id, description, quantite, prix_unitaire,
			total_ht, taux_tva, catalogue_ref, ancienne_valeur, nouvelle_valeur, delta, ancienne_valeur_figee)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		ligne.ID, ligne.AvenantID, sourceID, ligne.Description, ligne.Quantite,
		ligne.PrixUnitaire, ligne.TotalHT, ligne.TauxTVA, nullIfEmpty(ligne.CatalogueRef),
		ligne.AncienneValeur, ligne.NouvelleValeur, ligne.Delta, ligne.AncienneValeurFigee,
	)
	if err != nil {
		return fmt.Errorf("insert ligne avenant: %w", err)
	}
	return nil
}

// UpdateLigne met à jour une ligne d'avenant. AncienneValeur et son gel sont
// réécrits tels quels : le gel se joue dans l'entité, jamais en SQL.
func (r *AvenantRepo) UpdateLigne(ligne *entity.LigneAvenant) error {
	var sourceID *string
	if ligne.LigneSource != nil {
		sourceID = &ligne.LigneSource.ID
	}
	query := `
		UPDATE lignes_avenant
		SET ligne_source_id = $2, description = $3, quantite = $4, prix_unitaire = $5,
		    total_ht = $6, taux_tva = $7, catalogue_ref = $8,
		    ancienne_valeur = $9, nouvelle_valeur = $10, delta = $11, ancienne_valeur_figee = $12
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		ligne.ID, sourceID, ligne.Description, ligne.Quantite, ligne.PrixUnitaire,
		ligne.TotalHT, ligne.TauxTVA, nullIfEmpty(ligne.CatalogueRef),
		ligne.AncienneValeur, ligne.NouvelleValeur, ligne.Delta, ligne.AncienneValeurFigee,
	)
	if err != nil {
		return fmt.Errorf("update ligne avenant: %w", err)
	}
	return nil
}

// DeleteLigne supprime une ligne d'avenant (brouillons uniquement).
func (r *AvenantRepo) DeleteLigne(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM lignes_avenant WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ligne avenant: %w", err)
	}
	return nil
}

// GetLignesByAvenantID liste les lignes d'un avenant. La ligne de devis
// source est jointe et reconstruite entière : le calcul du taux applicable
// a besoin de son taux propre, pas seulement de son ID.
func (r *AvenantRepo) GetLignesByAvenantID(avenantID string) ([]*entity.LigneAvenant, error) {
	query := `
		SELECT la.id, la.avenant_id, la.description, la.quantite, la.prix_unitaire,
		       la.total_ht, la.taux_tva, COALESCE(la.catalogue_ref, ''),
		       la.ancienne_valeur, la.nouvelle_valeur, la.delta, la.ancienne_valeur_figee,
		       ld.id, ld.devis_id, ld.description, ld.quantite, ld.prix_unitaire, ld.total_ht, ld.taux_tva
		FROM lignes_avenant la
		LEFT JOIN lignes_devis ld ON ld.id = la.ligne_source_id
		WHERE la.avenant_id = $1 ORDER BY la.id`
	rows, err := r.q.Query(context.Background(), query, avenantID)
	if err != nil {
		return nil, fmt.Errorf("list lignes avenant: %w", err)
	}
	defer rows.Close()
	var list []*entity.LigneAvenant
	for rows.Next() {
		var l entity.LigneAvenant
		var srcID, srcDevisID, srcDescription *string
		var srcQuantite *int64
		var srcPrix, srcTotal, srcTaux *decimal.Decimal
		err := rows.Scan(
			&l.ID, &l.AvenantID, &l.Description, &l.Quantite, &l.PrixUnitaire,
			&l.TotalHT, &l.TauxTVA, &l.CatalogueRef,
			&l.AncienneValeur, &l.NouvelleValeur, &l.Delta, &l.AncienneValeurFigee,
			&srcID, &srcDevisID, &srcDescription, &srcQuantite,
			&srcPrix, &srcTotal, &srcTaux,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ligne avenant: %w", err)
		}
		if srcID != nil {
			src := entity.LigneDevis{DevisID: derefStr(srcDevisID)}
			src.ID = *srcID
			src.Description = derefStr(srcDescription)
			if srcQuantite != nil {
				src.Quantite = *srcQuantite
			}
			if srcPrix != nil {
				src.PrixUnitaire = *srcPrix
			}
			if srcTotal != nil {
				src.TotalHT = *srcTotal
			}
			src.TauxTVA = srcTaux
			l.LigneSource = &src
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

func scanAvenant(row rowScanner) (*entity.Avenant, error) {
	var a entity.Avenant
	var numero, canal *string
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.DevisID, &numero, &a.Objet, &a.Statut,
		&a.MontantHT, &a.MontantTTC, &a.TauxTVA,
		&a.DateEnvoi, &a.DateSignature, &canal, &a.NbEnvois,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Numero = derefStr(numero)
	a.CanalEnvoi = derefStr(canal)
	return &a, nil
}
