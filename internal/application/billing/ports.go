package billing

import (
	"context"
	"time"

	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

// BillingTxRunner exécute une fonction dans une transaction couvrant tous les
// repos de facturation. Numérotation, changement de statut et écriture d'audit
// d'une même transition partagent la transaction : tout ou rien.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		devisRepo repository.DevisRepository,
		avenantRepo repository.AvenantRepository,
		factureRepo repository.FactureRepository,
		avoirRepo repository.AvoirRepository,
		seqRepo repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error) error
}

// SendReceipt : accusé du collaborateur de livraison. SentAt et Channel sont
// consignés sur le document (DateEnvoi, CanalEnvoi).
type SendReceipt struct {
	SentAt  time.Time
	Channel string
}

// DocumentSender : collaborateur de livraison (email, courrier...).
// L'échec d'envoi bloque la transition : pas de passage en SENT sans accusé.
type DocumentSender interface {
	Send(ctx context.Context, documentType, documentID, numero, canal string) (SendReceipt, error)
}

// DocumentPDFGenerator produit la représentation PDF d'un document émis.
type DocumentPDFGenerator interface {
	GenerateDevisPDF(ctx context.Context, devis *entity.Devis, company *entity.Company, client *entity.Client) ([]byte, error)
	GenerateFacturePDF(ctx context.Context, facture *entity.Facture, company *entity.Company, client *entity.Client) ([]byte, error)
}

// FacturXBuilder produit le XML CII (Factur-X, profil BASIC) d'une facture émise.
type FacturXBuilder interface {
	Build(facture *entity.Facture, company *entity.Company, client *entity.Client) ([]byte, error)
}
