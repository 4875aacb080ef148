package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/facturation-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo : piste d'audit en base, append-only. Aucune mise à jour ni
// suppression n'est exposée, la table se purge par rétention légale.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construit l'adaptateur. Passer pool ou tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Record insère un enregistrement d'audit horodaté.
func (r *AuditRepo) Record(entityType, entityID, action, oldValue, newValue string) error {
	query := `
		INSERT INTO audit_log (id, entity_type, entity_id, action, old_value, new_value, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		uuid.NewString(), entityType, entityID, action,
		nullIfEmpty(oldValue), nullIfEmpty(newValue), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}
