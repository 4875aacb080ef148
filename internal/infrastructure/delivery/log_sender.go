// Package delivery fournit le collaborateur de livraison des documents.
// L'implémentation actuelle trace l'envoi et rend l'accusé ; le branchement
// SMTP se fera derrière la même interface.
package delivery

import (
	"context"
	"time"

	appbilling "github.com/facturio/facturation-api/internal/application/billing"
	"github.com/facturio/facturation-api/pkg/logger"
)

var _ appbilling.DocumentSender = (*LogSender)(nil)

// LogSender implémente billing.DocumentSender en consignant chaque envoi.
type LogSender struct {
	log         *logger.Logger
	canalDefaut string
}

// NewLogSender construit l'expéditeur. canalDefaut est utilisé quand l'appel
// ne précise pas de canal.
func NewLogSender(log *logger.Logger, canalDefaut string) *LogSender {
	return &LogSender{log: log, canalDefaut: canalDefaut}
}

// Send consigne l'envoi et retourne l'accusé. L'horodatage de l'accusé fait
// foi pour DateEnvoi sur le document.
func (s *LogSender) Send(_ context.Context, documentType, documentID, numero, canal string) (appbilling.SendReceipt, error) {
	if canal == "" {
		canal = s.canalDefaut
	}
	now := time.Now()
	s.log.Document(documentType, documentID).Info().
		Str("numero", numero).
		Str("canal", canal).
		Msg("document envoyé")
	return appbilling.SendReceipt{SentAt: now, Channel: canal}, nil
}
