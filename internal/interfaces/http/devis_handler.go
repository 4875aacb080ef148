package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/facturio/facturation-api/internal/application/billing"
	"github.com/facturio/facturation-api/internal/application/dto"
)

// DevisHandler gère le cycle de vie du devis.
type DevisHandler struct {
	uc     *billing.DevisUseCase
	export *billing.ExportUseCase
}

// NewDevisHandler construit le handler.
func NewDevisHandler(uc *billing.DevisUseCase, export *billing.ExportUseCase) *DevisHandler {
	return &DevisHandler{uc: uc, export: export}
}

// Create crée un devis en brouillon, lignes comprises.
// POST /api/devis
func (h *DevisHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	var in dto.CreateDevisRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	out, err := h.uc.Create(c.Context(), companyID, in)
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update modifie un brouillon (les lignes sont remplacées en bloc).
// PUT /api/devis/:id
func (h *DevisHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	var in dto.UpdateDevisRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	out, err := h.uc.Update(c.Context(), companyID, c.Params("id"), in)
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.JSON(out)
}

// GetByID retourne le devis avec sa vue corrigée des avenants.
// GET /api/devis/:id
func (h *DevisHandler) GetByID(c *fiber.Ctx) error {
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

// List liste les devis de la société.
// GET /api/devis
func (h *DevisHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "pagination invalide"})
	}
	page.DefaultPage()
	out, err := h.uc.List(c.Context(), companyID, page.Limit, page.Offset)
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.JSON(out)
}

// Envoyer émet le devis : numérotation, envoi, passage en SENT.
// POST /api/devis/:id/envoyer
func (h *DevisHandler) Envoyer(c *fiber.Ctx) error {
	return h.envoi(c, h.uc.Envoyer)
}

// Renvoyer consigne un renvoi (statut inchangé).
// POST /api/devis/:id/renvoyer
func (h *DevisHandler) Renvoyer(c *fiber.Ctx) error {
	return h.envoi(c, h.uc.Renvoyer)
}

func (h *DevisHandler) envoi(c *fiber.Ctx, op func(ctx context.Context, companyID, id string, in dto.EnvoiRequest) (*dto.DevisResponse, error)) error {
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
	out, err := op(c.Context(), companyID, c.Params("id"), in)
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.JSON(out)
}

// Signer passe le devis en SIGNED.
// POST /api/devis/:id/signer
func (h *DevisHandler) Signer(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Signer)
}

// Refuser passe le devis en REFUSED.
// POST /api/devis/:id/refuser
func (h *DevisHandler) Refuser(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Refuser)
}

// Annuler passe le devis en CANCELLED.
// POST /api/devis/:id/annuler
func (h *DevisHandler) Annuler(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Annuler)
}

// Expirer constate l'expiration d'un devis envoyé.
// POST /api/devis/:id/expirer
func (h *DevisHandler) Expirer(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Expirer)
}

func (h *DevisHandler) transition(c *fiber.Ctx, op func(ctx context.Context, companyID, id string) (*dto.DevisResponse, error)) error {
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

// DownloadPDF télécharge le PDF du devis.
// GET /api/devis/:id/pdf
func (h *DevisHandler) DownloadPDF(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	data, filename, err := h.export.DownloadDevisPDF(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return repondreErreur(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
