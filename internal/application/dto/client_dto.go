package dto

// CreateClientRequest : corps de POST /api/clients.
type CreateClientRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	SIREN     string `json:"siren" validate:"omitempty,len=9"`
	NumeroTVA string `json:"numero_tva"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// ClientResponse : client dans les réponses.
type ClientResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	SIREN     string `json:"siren,omitempty"`
	NumeroTVA string `json:"numero_tva,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}
