package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/facturio/facturation-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo : allocation de numéros définitifs, séquentiels par société,
// type de document et exercice. L'UPSERT atomique garantit ni trou ni doublon
// même sous concurrence ; appelé dans la transaction d'émission, le numéro
// alloué est perdu si elle échoue, ce qui laisserait un trou : l'envoi
// précède donc toujours l'allocation.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Préfixes des numéros définitifs par type de document.
var sequencePrefixes = map[string]string{
	repository.DocTypeDevis:   "DEV",
	repository.DocTypeAvenant: "AVE",
	repository.DocTypeFacture: "FAC",
	repository.DocTypeAvoir:   "AVO",
}

// NextNumber alloue le prochain numéro du type demandé, au format
// PREFIXE-ANNEE-NNNN (ex. FAC-2026-0042). La séquence repart à 1 à chaque
// exercice.
func (r *SequenceRepo) NextNumber(companyID, documentType string) (string, error) {
	prefix, ok := sequencePrefixes[documentType]
	if !ok {
		return "", fmt.Errorf("type de document inconnu: %q", documentType)
	}
	year := time.Now().Year()
	query := `
		INSERT INTO document_sequences (company_id, document_type, year, last_number)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (company_id, document_type, year)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number`
	var n int64
	if err := r.q.QueryRow(context.Background(), query, companyID, documentType, year).Scan(&n); err != nil {
		return "", fmt.Errorf("allocation numéro %s: %w", documentType, err)
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, n), nil
}
