package repository

import (
	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/domain/entity"
)

// AvoirRepository définit le port de persistance de l'avoir et de ses lignes.
type AvoirRepository interface {
	Create(avoir *entity.Avoir) error
	Update(avoir *entity.Avoir) error
	GetByID(id string) (*entity.Avoir, error)
	GetWithLignes(id string) (*entity.Avoir, error)
	ListByFactureID(factureID string) ([]*entity.Avoir, error)
	// SumTTCByFactureID : cumul TTC des avoirs non annulés de la facture,
	// en excluant excludeID (l'avoir en cours d'émission). Alimente la
	// garde de plafond.
	SumTTCByFactureID(factureID, excludeID string) (decimal.Decimal, error)
	// ListEmittedByYear : avoirs émis d'un exercice (export FEC).
	ListEmittedByYear(companyID string, year int) ([]*entity.Avoir, error)
	CreateLigne(ligne *entity.LigneAvoir) error
	GetLignesByAvoirID(avoirID string) ([]*entity.LigneAvoir, error)
}
