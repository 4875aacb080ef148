package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facturio/facturation-api/internal/application/billing"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner exécute des callbacks dans une transaction PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construit le runner avec le pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBilling ouvre une transaction, exécute fn avec les repos liés à la tx,
// puis Commit ou Rollback. Numérotation, statut et audit d'une transition
// partagent ainsi la même transaction.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	devisRepo repository.DevisRepository,
	avenantRepo repository.AvenantRepository,
	factureRepo repository.FactureRepository,
	avoirRepo repository.AvoirRepository,
	seqRepo repository.SequenceRepository,
	auditRepo repository.AuditRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	devisRepo := NewDevisRepository(tx)
	avenantRepo := NewAvenantRepository(tx)
	factureRepo := NewFactureRepository(tx)
	avoirRepo := NewAvoirRepository(tx)
	seqRepo := NewSequenceRepository(tx)
	auditRepo := NewAuditRepository(tx)

	if err := fn(devisRepo, avenantRepo, factureRepo, avoirRepo, seqRepo, auditRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
