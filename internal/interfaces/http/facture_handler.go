package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/facturio/facturation-api/internal/application/billing"
	"github.com/facturio/facturation-api/internal/application/dto"
)

// FactureHandler gère les factures (générées depuis un devis signé).
type FactureHandler struct {
	uc     *billing.FactureUseCase
	export *billing.ExportUseCase
}

// NewFactureHandler construit le handler.
func NewFactureHandler(uc *billing.FactureUseCase, export *billing.ExportUseCase) *FactureHandler {
	return &FactureHandler{uc: uc, export: export}
}

// Generate génère une facture (ACOMPTE, SOLDE ou TOTALE) depuis un devis signé.
// POST /api/factures
func (h *FactureHandler) Generate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	var in dto.GenerateFactureRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	out, err := h.uc.GenerateFromDevis(c.Context(), companyID, in)
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID retourne une facture avec ses lignes.
// GET /api/factures/:id
func (h *FactureHandler) GetByID(c *fiber.Ctx) error {
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

// List liste les factures de la société.
// GET /api/factures
func (h *FactureHandler) List(c *fiber.Ctx) error {
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

// Envoyer émet la facture : numérotation définitive, envoi, gel des montants.
// POST /api/factures/:id/envoyer
func (h *FactureHandler) Envoyer(c *fiber.Ctx) error {
	return h.envoi(c, h.uc.Envoyer)
}

// Renvoyer consigne un renvoi (statut inchangé).
// POST /api/factures/:id/renvoyer
func (h *FactureHandler) Renvoyer(c *fiber.Ctx) error {
	return h.envoi(c, h.uc.Renvoyer)
}

func (h *FactureHandler) envoi(c *fiber.Ctx, op func(ctx context.Context, companyID, id string, in dto.EnvoiRequest) (*dto.FactureResponse, error)) error {
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

// MarquerPayee passe la facture en PAID.
// POST /api/factures/:id/payer
func (h *FactureHandler) MarquerPayee(c *fiber.Ctx) error {
	return h.transition(c, h.uc.MarquerPayee)
}

// MarquerEnRetard constate le dépassement d'échéance.
// POST /api/factures/:id/retard
func (h *FactureHandler) MarquerEnRetard(c *fiber.Ctx) error {
	return h.transition(c, h.uc.MarquerEnRetard)
}

// Annuler passe la facture en CANCELLED (autorise la régénération).
// POST /api/factures/:id/annuler
func (h *FactureHandler) Annuler(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Annuler)
}

func (h *FactureHandler) transition(c *fiber.Ctx, op func(ctx context.Context, companyID, id string) (*dto.FactureResponse, error)) error {
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

// DownloadPDF télécharge le PDF de la facture émise.
// GET /api/factures/:id/pdf
func (h *FactureHandler) DownloadPDF(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	data, filename, err := h.export.DownloadFacturePDF(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return repondreErreur(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// DownloadFacturX télécharge le XML CII Factur-X de la facture émise.
// GET /api/factures/:id/facturx
func (h *FactureHandler) DownloadFacturX(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	data, filename, err := h.export.DownloadFacturX(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return repondreErreur(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
