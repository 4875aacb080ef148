package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturio/facturation-api/internal/application/auth"
	"github.com/facturio/facturation-api/internal/application/billing"
	"github.com/facturio/facturation-api/internal/application/usecase"
	"github.com/facturio/facturation-api/internal/domain/entity"
)

// RouterDeps : dépendances du routeur.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CompanyUC   *usecase.CompanyUseCase
	UserUC      *usecase.UserUseCase
	ClientUC    *billing.ClientUseCase
	CatalogueUC *billing.CatalogueUseCase
	DevisUC     *billing.DevisUseCase
	AvenantUC   *billing.AvenantUseCase
	FactureUC   *billing.FactureUseCase
	AvoirUC     *billing.AvoirUseCase
	ExportUC    *billing.ExportUseCase
	JWTSecret   string
}

// Router enregistre les routes de l'API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (création publique pour l'amorçage, lecture publique)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Routes protégées (Bearer Token requis)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Utilisateurs. Le changement de rôle est réservé à l'admin.
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Post("/:id/role", RequireRole(entity.RoleAdmin), userHandler.ChangerRole)

	// Clients
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)

	// Catalogue de prix
	catalogue := protected.Group("/catalogue")
	catalogueHandler := NewCatalogueHandler(deps.CatalogueUC)
	catalogue.Post("/", catalogueHandler.Create)
	catalogue.Get("/", catalogueHandler.List)
	catalogue.Post("/:id/desactiver", catalogueHandler.Desactiver)

	// Devis
	devis := protected.Group("/devis")
	devisHandler := NewDevisHandler(deps.DevisUC, deps.ExportUC)
	avenantHandler := NewAvenantHandler(deps.AvenantUC)
	devis.Post("/", devisHandler.Create)
	devis.Get("/", devisHandler.List)
	devis.Get("/:id", devisHandler.GetByID)
	devis.Put("/:id", devisHandler.Update)
	devis.Post("/:id/envoyer", devisHandler.Envoyer)
	devis.Post("/:id/renvoyer", devisHandler.Renvoyer)
	devis.Post("/:id/signer", devisHandler.Signer)
	devis.Post("/:id/refuser", devisHandler.Refuser)
	devis.Post("/:id/annuler", devisHandler.Annuler)
	devis.Post("/:id/expirer", devisHandler.Expirer)
	devis.Get("/:id/pdf", devisHandler.DownloadPDF)
	devis.Get("/:id/avenants", avenantHandler.ListByDevis)

	// Avenants
	avenants := protected.Group("/avenants")
	avenants.Post("/", avenantHandler.Create)
	avenants.Get("/:id", avenantHandler.GetByID)
	avenants.Put("/:id", avenantHandler.Update)
	avenants.Post("/:id/envoyer", avenantHandler.Envoyer)
	avenants.Post("/:id/signer", avenantHandler.Signer)
	avenants.Post("/:id/rejeter", avenantHandler.Rejeter)
	avenants.Post("/:id/annuler", avenantHandler.Annuler)

	// Factures. L'encaissement et l'annulation sont réservés aux rôles
	// comptable et admin.
	factures := protected.Group("/factures")
	factureHandler := NewFactureHandler(deps.FactureUC, deps.ExportUC)
	avoirHandler := NewAvoirHandler(deps.AvoirUC)
	comptable := RequireRole(entity.RoleAdmin, entity.RoleComptable)
	factures.Post("/", factureHandler.Generate)
	factures.Get("/", factureHandler.List)
	factures.Get("/:id", factureHandler.GetByID)
	factures.Post("/:id/envoyer", factureHandler.Envoyer)
	factures.Post("/:id/renvoyer", factureHandler.Renvoyer)
	factures.Post("/:id/payer", comptable, factureHandler.MarquerPayee)
	factures.Post("/:id/retard", comptable, factureHandler.MarquerEnRetard)
	factures.Post("/:id/annuler", comptable, factureHandler.Annuler)
	factures.Get("/:id/pdf", factureHandler.DownloadPDF)
	factures.Get("/:id/facturx", factureHandler.DownloadFacturX)
	factures.Get("/:id/avoirs", avoirHandler.ListByFacture)

	// Avoirs. L'émission consomme le plafond de la facture : comptable/admin.
	avoirs := protected.Group("/avoirs")
	avoirs.Post("/", avoirHandler.Create)
	avoirs.Get("/:id", avoirHandler.GetByID)
	avoirs.Post("/:id/emettre", comptable, avoirHandler.Emettre)
	avoirs.Post("/:id/envoyer", avoirHandler.Envoyer)
	avoirs.Post("/:id/rembourser", comptable, avoirHandler.MarquerRembourse)
	avoirs.Post("/:id/annuler", comptable, avoirHandler.Annuler)
}
