package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturation-api/pkg/logger"
)

func TestNew_ChampServiceSurChaqueLigne(t *testing.T) {
	l := logger.New(logger.Config{Service: "facturation-api", Env: "production", Level: "info"})

	var buf bytes.Buffer
	zl := l.Zerolog().Output(&buf)
	zl.Info().Msg("démarrage")

	require.Contains(t, buf.String(), `"service":"facturation-api"`)
}

func TestNew_NiveauInconnuRetombeSurInfo(t *testing.T) {
	l := logger.New(logger.Config{Level: "verbeux"})
	assert.Equal(t, zerolog.InfoLevel, l.Zerolog().GetLevel())
}

func TestDocument_PorteLeContexteDuDocument(t *testing.T) {
	l := logger.New(logger.Config{Service: "facturation-api", Env: "production"})

	var buf bytes.Buffer
	zl := l.Document("facture", "f-1").Zerolog().Output(&buf)
	zl.Info().Msg("document envoyé")

	assert.Contains(t, buf.String(), `"document_type":"facture"`)
	assert.Contains(t, buf.String(), `"document_id":"f-1"`)
}
