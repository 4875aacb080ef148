package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturio/facturation-api/internal/application/billing"
	"github.com/facturio/facturation-api/internal/application/dto"
)

// CatalogueHandler gère le catalogue de prix de la société.
type CatalogueHandler struct {
	uc *billing.CatalogueUseCase
}

// NewCatalogueHandler construit le handler.
func NewCatalogueHandler(uc *billing.CatalogueUseCase) *CatalogueHandler {
	return &CatalogueHandler{uc: uc}
}

// Create crée une entrée de catalogue.
// POST /api/catalogue
func (h *CatalogueHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	var in dto.CreateCatalogueEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corps invalide"})
	}
	out, err := h.uc.Create(c.Context(), companyID, in)
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List liste les entrées de catalogue.
// GET /api/catalogue
func (h *CatalogueHandler) List(c *fiber.Ctx) error {
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

// Desactiver désactive une entrée (elle ne pré-remplit plus de lignes).
// POST /api/catalogue/:id/desactiver
func (h *CatalogueHandler) Desactiver(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token invalide"})
	}
	out, err := h.uc.Desactiver(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return repondreErreur(c, err)
	}
	return c.JSON(out)
}
