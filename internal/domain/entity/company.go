package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company : société émettrice des documents (multi-tenant).
// TVAEnabled vaut false pour une société en franchise en base (art. 293 B du
// CGI) : ses documents sortent sans TVA quel que soit le taux par défaut.
type Company struct {
	ID        string
	Name      string
	SIREN     string // 9 chiffres, registre national
	NumeroTVA string // numéro de TVA intracommunautaire (FRxx...)
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive

	// Paramètres de facturation consultés quand un document n'a pas de
	// taux explicite.
	DefaultTauxTVA decimal.Decimal // taux normal français : 20.00
	TVAEnabled     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TauxEffectif : taux par défaut applicable à un nouveau document.
func (c *Company) TauxEffectif() decimal.Decimal {
	if !c.TVAEnabled {
		return decimal.Zero
	}
	return c.DefaultTauxTVA
}
