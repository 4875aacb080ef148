package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/facturio/facturation-api/internal/application/billing"
	"github.com/facturio/facturation-api/internal/application/dto"
)

// AvoirHandler gère les avoirs (remboursement total ou partiel d'une facture).
type AvoirHandler struct {
	uc *billing.AvoirUseCase
}

// NewAvoirHandler construit le handler.
func NewAvoirHandler(uc *billing.AvoirUseCase) *AvoirHandler {
	return &AvoirHandler{uc: uc}
}

// Create crée un avoir en brouillon visant une facture émise.
// POST /api/avoirs
func (h *AvoirHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	var in dto.CreateAvoirRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	out, err := h.uc.Create(c.Context(), companyID, in)
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID retourne un avoir avec ses lignes.
// GET /api/avoirs/:id
func (h *AvoirHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	out, err := h.uc.Get(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.JSON(out)
}

// ListByFacture liste les avoirs visant une facture.
// GET /api/factures/:id/avoirs
func (h *AvoirHandler) ListByFacture(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	out, err := h.uc.ListByFacture(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.JSON(out)
}

// Emettre émet l'avoir : contrôle du plafond cumulé, numérotation définitive.
// POST /api/avoirs/:id/emettre
func (h *AvoirHandler) Emettre(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Emettre)
}

// Envoyer envoie un avoir émis.
// POST /api/avoirs/:id/envoyer
func (h *AvoirHandler) Envoyer(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	var in dto.EnvoiRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
		}
	}
	out, err := h.uc.Envoyer(c.Context(), companyID, c.Params("id"), in)
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.JSON(out)
}

// MarquerRembourse passe l'avoir en REFUNDED.
// POST /api/avoirs/:id/rembourser
func (h *AvoirHandler) MarquerRembourse(c *fiber.Ctx) error {
	return h.transition(c, h.uc.MarquerRembourse)
}

// Annuler passe l'avoir en CANCELLED (il libère le plafond consommé).
// POST /api/avoirs/:id/annuler
func (h *AvoirHandler) Annuler(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Annuler)
}

func (h *AvoirHandler) transition(c *fiber.Ctx, op func(ctx context.Context, companyID, id string) (*dto.AvoirResponse, error)) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	out, err := op(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.JSON(out)
}
