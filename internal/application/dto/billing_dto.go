package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LigneRequest : ligne en entrée (devis, facture, avoir, avenant).
// Pour une ligne d'avenant, LigneSourceID référence la ligne de devis
// modifiée et PrixUnitaire s'interprète alors comme un delta par unité ;
// sans LigneSourceID la ligne est un ajout et le prix est absolu.
type LigneRequest struct {
	Description   string           `json:"description" validate:"required,min=1"`
	Quantite      int64            `json:"quantite" validate:"required,min=1"`
	PrixUnitaire  decimal.Decimal  `json:"prix_unitaire"`
	TauxTVA       *decimal.Decimal `json:"taux_tva"`
	CatalogueRef  string           `json:"catalogue_ref,omitempty"`
	LigneSourceID string           `json:"ligne_source_id,omitempty"`
}

// LigneResponse : ligne en sortie.
type LigneResponse struct {
	ID           string           `json:"id"`
	Description  string           `json:"description"`
	Quantite     int64            `json:"quantite"`
	PrixUnitaire decimal.Decimal  `json:"prix_unitaire"`
	TotalHT      decimal.Decimal  `json:"total_ht"`
	TauxTVA      *decimal.Decimal `json:"taux_tva,omitempty"`
	CatalogueRef string           `json:"catalogue_ref,omitempty"`
}

// LigneAvenantResponse : ligne d'avenant avec sa comptabilité delta.
type LigneAvenantResponse struct {
	LigneResponse
	LigneSourceID  string          `json:"ligne_source_id,omitempty"`
	AncienneValeur decimal.Decimal `json:"ancienne_valeur"`
	NouvelleValeur decimal.Decimal `json:"nouvelle_valeur"`
	Delta          decimal.Decimal `json:"delta"`
	DeltaTTC       decimal.Decimal `json:"delta_ttc"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Devis
// ─────────────────────────────────────────────────────────────────────────────

// CreateDevisRequest : corps de POST /api/devis.
type CreateDevisRequest struct {
	ClientID           string           `json:"client_id" validate:"required,uuid"`
	Objet              string           `json:"objet"`
	TauxTVA            *decimal.Decimal `json:"taux_tva"`      // absent : taux par défaut de la société
	TVAParLigne        *bool            `json:"tva_par_ligne"` // absent : false
	AcomptePourcentage decimal.Decimal  `json:"acompte_pourcentage"`
	DateValidite       time.Time        `json:"date_validite"`
	Lignes             []LigneRequest   `json:"lignes"`
}

// UpdateDevisRequest : corps de PUT /api/devis/:id. Remplace les champs
// modifiables d'un brouillon ; lignes remplacées en bloc si présentes.
type UpdateDevisRequest struct {
	Objet              *string          `json:"objet"`
	TauxTVA            *decimal.Decimal `json:"taux_tva"`
	TVAParLigne        *bool            `json:"tva_par_ligne"`
	AcomptePourcentage *decimal.Decimal `json:"acompte_pourcentage"`
	DateValidite       *time.Time       `json:"date_validite"`
	Lignes             []LigneRequest   `json:"lignes"`
}

// DevisResponse : devis complet avec sa vue corrigée des avenants.
type DevisResponse struct {
	ID                 string          `json:"id"`
	CompanyID          string          `json:"company_id"`
	ClientID           string          `json:"client_id"`
	Numero             string          `json:"numero,omitempty"`
	Objet              string          `json:"objet"`
	Statut             string          `json:"statut"`
	StatutLabel        string          `json:"statut_label"`
	StatutCouleur      string          `json:"statut_couleur"`
	Lignes             []LigneResponse `json:"lignes"`
	MontantHT          decimal.Decimal `json:"montant_ht"`
	MontantTTC         decimal.Decimal `json:"montant_ttc"`
	TauxTVA            decimal.Decimal `json:"taux_tva"`
	TVAParLigne        bool            `json:"tva_par_ligne"`
	AcomptePourcentage decimal.Decimal `json:"acompte_pourcentage"`
	DateValidite       time.Time       `json:"date_validite"`
	DateEnvoi          *time.Time      `json:"date_envoi,omitempty"`
	DateSignature      *time.Time      `json:"date_signature,omitempty"`
	CanalEnvoi         string          `json:"canal_envoi,omitempty"`
	NbEnvois           int             `json:"nb_envois"`

	// Vue corrigée : TTC d'origine corrigé des avenants non annulés.
	TotalCorrige   decimal.Decimal `json:"total_corrige"`
	AcompteCorrige decimal.Decimal `json:"acompte_corrige"`
	SoldeCorrige   decimal.Decimal `json:"solde_corrige"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Avenant
// ─────────────────────────────────────────────────────────────────────────────

// CreateAvenantRequest : corps de POST /api/avenants.
type CreateAvenantRequest struct {
	DevisID string           `json:"devis_id" validate:"required,uuid"`
	Objet   string           `json:"objet"`
	TauxTVA *decimal.Decimal `json:"taux_tva"`
	Lignes  []LigneRequest   `json:"lignes"`
}

// UpdateAvenantRequest : corps de PUT /api/avenants/:id (brouillon uniquement).
type UpdateAvenantRequest struct {
	Objet   *string          `json:"objet"`
	TauxTVA *decimal.Decimal `json:"taux_tva"`
	Lignes  []LigneRequest   `json:"lignes"`
}

// AvenantResponse : avenant complet. MontantHT/TTC sont la valeur après
// avenant des lignes touchées ; DeltaTotalTTC l'impact net sur le devis.
type AvenantResponse struct {
	ID            string                 `json:"id"`
	CompanyID     string                 `json:"company_id"`
	DevisID       string                 `json:"devis_id"`
	Numero        string                 `json:"numero,omitempty"`
	Objet         string                 `json:"objet"`
	Statut        string                 `json:"statut"`
	StatutLabel   string                 `json:"statut_label"`
	StatutCouleur string                 `json:"statut_couleur"`
	Lignes        []LigneAvenantResponse `json:"lignes"`
	MontantHT     decimal.Decimal        `json:"montant_ht"`
	MontantTTC    decimal.Decimal        `json:"montant_ttc"`
	DeltaTotalTTC decimal.Decimal        `json:"delta_total_ttc"`
	TauxTVA       *decimal.Decimal       `json:"taux_tva,omitempty"`
	DateEnvoi     *time.Time             `json:"date_envoi,omitempty"`
	DateSignature *time.Time             `json:"date_signature,omitempty"`
	CanalEnvoi    string                 `json:"canal_envoi,omitempty"`
	NbEnvois      int                    `json:"nb_envois"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Facture
// ─────────────────────────────────────────────────────────────────────────────

// GenerateFactureRequest : corps de POST /api/factures.
// La facture est toujours dérivée d'un devis signé, jamais saisie à la main :
// ACOMPTE facture le pourcentage d'acompte du total corrigé, SOLDE le reste,
// TOTALE la totalité (lignes du devis plus lignes de delta des avenants non annulés).
type GenerateFactureRequest struct {
	DevisID      string    `json:"devis_id" validate:"required,uuid"`
	Type         string    `json:"type" validate:"required,oneof=ACOMPTE SOLDE TOTALE"`
	DateEcheance time.Time `json:"date_echeance"`
	Objet        string    `json:"objet"`
}

// FactureResponse : facture complète.
type FactureResponse struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	ClientID      string          `json:"client_id"`
	DevisID       string          `json:"devis_id"`
	Numero        string          `json:"numero,omitempty"`
	Objet         string          `json:"objet"`
	Type          string          `json:"type"`
	Statut        string          `json:"statut"`
	StatutLabel   string          `json:"statut_label"`
	StatutCouleur string          `json:"statut_couleur"`
	Lignes        []LigneResponse `json:"lignes"`
	MontantHT     decimal.Decimal `json:"montant_ht"`
	MontantTTC    decimal.Decimal `json:"montant_ttc"`
	TauxTVA       decimal.Decimal `json:"taux_tva"`
	TVAParLigne   bool            `json:"tva_par_ligne"`
	DateEmission  *time.Time      `json:"date_emission,omitempty"`
	DateEcheance  time.Time       `json:"date_echeance"`
	DatePaiement  *time.Time      `json:"date_paiement,omitempty"`
	DateEnvoi     *time.Time      `json:"date_envoi,omitempty"`
	CanalEnvoi    string          `json:"canal_envoi,omitempty"`
	NbEnvois      int             `json:"nb_envois"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Avoir
// ─────────────────────────────────────────────────────────────────────────────

// CreateAvoirRequest : corps de POST /api/avoirs. Le motif est exigé dès
// la création pour ne pas découvrir son absence au moment de l'émission.
type CreateAvoirRequest struct {
	FactureID   string           `json:"facture_id" validate:"required,uuid"`
	Motif       string           `json:"motif" validate:"required,min=1"`
	TauxTVA     *decimal.Decimal `json:"taux_tva"`
	TVAParLigne *bool            `json:"tva_par_ligne"`
	Lignes      []LigneRequest   `json:"lignes"`
}

// AvoirResponse : avoir complet.
type AvoirResponse struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"company_id"`
	ClientID          string          `json:"client_id"`
	FactureID         string          `json:"facture_id"`
	Numero            string          `json:"numero,omitempty"`
	Motif             string          `json:"motif"`
	Statut            string          `json:"statut"`
	StatutLabel       string          `json:"statut_label"`
	StatutCouleur     string          `json:"statut_couleur"`
	Lignes            []LigneResponse `json:"lignes"`
	MontantHT         decimal.Decimal `json:"montant_ht"`
	MontantTTC        decimal.Decimal `json:"montant_ttc"`
	TauxTVA           decimal.Decimal `json:"taux_tva"`
	DateEmission      *time.Time      `json:"date_emission,omitempty"`
	DateRemboursement *time.Time      `json:"date_remboursement,omitempty"`
	DateEnvoi         *time.Time      `json:"date_envoi,omitempty"`
	CanalEnvoi        string          `json:"canal_envoi,omitempty"`
	NbEnvois          int             `json:"nb_envois"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// EnvoiRequest : corps des transitions d'envoi et de renvoi.
type EnvoiRequest struct {
	Canal string `json:"canal" validate:"omitempty,oneof=email courrier main_propre"`
}
