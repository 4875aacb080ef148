package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/facturio/facturation-api/internal/application/billing"
	"github.com/facturio/facturation-api/internal/application/dto"
)

// AvenantHandler gère les avenants (corrections post-signature d'un devis).
type AvenantHandler struct {
	uc *billing.AvenantUseCase
}

// NewAvenantHandler construit le handler.
func NewAvenantHandler(uc *billing.AvenantUseCase) *AvenantHandler {
	return &AvenantHandler{uc: uc}
}

// Create crée un avenant en brouillon rattaché à un devis signé.
// POST /api/avenants
func (h *AvenantHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	var in dto.CreateAvenantRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	out, err := h.uc.Create(c.Context(), companyID, in)
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update modifie un avenant en brouillon (lignes remplacées en bloc).
// PUT /api/avenants/:id
func (h *AvenantHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	var in dto.UpdateAvenantRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	out, err := h.uc.Update(c.Context(), companyID, c.Params("id"), in)
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.JSON(out)
}

// GetByID retourne un avenant avec ses deltas.
// GET /api/avenants/:id
func (h *AvenantHandler) GetByID(c *fiber.Ctx) error {
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

// ListByDevis liste les avenants d'un devis dans l'ordre de création.
// GET /api/devis/:id/avenants
func (h *AvenantHandler) ListByDevis(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	out, err := h.uc.ListByDevis(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.JSON(out)
}

// Envoyer émet l'avenant : numérotation, envoi, passage en SENT.
// POST /api/avenants/:id/envoyer
func (h *AvenantHandler) Envoyer(c *fiber.Ctx) error {
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

// Signer passe l'avenant en SIGNED (les deltas deviennent effectifs).
// POST /api/avenants/:id/signer
func (h *AvenantHandler) Signer(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Signer)
}

// Rejeter passe l'avenant en REJECTED.
// POST /api/avenants/:id/rejeter
func (h *AvenantHandler) Rejeter(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Rejeter)
}

// Annuler passe l'avenant en CANCELLED (il sort de la vue corrigée).
// POST /api/avenants/:id/annuler
func (h *AvenantHandler) Annuler(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Annuler)
}

func (h *AvenantHandler) transition(c *fiber.Ctx, op func(ctx context.Context, companyID, id string) (*dto.AvenantResponse, error)) error {
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
