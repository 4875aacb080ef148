package entity

import "time"

// Client : destinataire des devis, factures et avoirs d'une société.
type Client struct {
	ID        string
	CompanyID string
	Name      string
	SIREN     string // vide pour un particulier
	NumeroTVA string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
