package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/facturio/facturation-api/internal/application/auth"
	"github.com/facturio/facturation-api/internal/application/billing"
	"github.com/facturio/facturation-api/internal/application/usecase"
	"github.com/facturio/facturation-api/internal/infrastructure/delivery"
	"github.com/facturio/facturation-api/internal/infrastructure/facturx"
	infrapdf "github.com/facturio/facturation-api/internal/infrastructure/pdf"
	"github.com/facturio/facturation-api/internal/infrastructure/postgres"
	httpRouter "github.com/facturio/facturation-api/internal/interfaces/http"
	"github.com/facturio/facturation-api/pkg/config"
	"github.com/facturio/facturation-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("chargement de la configuration : " + err.Error())
	}

	log := logger.New(logger.Config{
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("démarrage de l'application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connexion à PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	catalogueRepo := postgres.NewCatalogueRepository(pool)
	devisRepo := postgres.NewDevisRepository(pool)
	avenantRepo := postgres.NewAvenantRepository(pool)
	factureRepo := postgres.NewFactureRepository(pool)
	avoirRepo := postgres.NewAvoirRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	sender := delivery.NewLogSender(log, cfg.Billing.CanalDefaut)
	pdfGenerator := infrapdf.NewMarotoGenerator()
	facturxBuilder := facturx.NewCIIBuilder()

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	userUC := usecase.NewUserUseCase(userRepo)
	clientUC := billing.NewClientUseCase(clientRepo)
	catalogueUC := billing.NewCatalogueUseCase(catalogueRepo)
	devisUC := billing.NewDevisUseCase(txRunner, devisRepo, avenantRepo, clientRepo, companyRepo, catalogueRepo, sender)
	avenantUC := billing.NewAvenantUseCase(txRunner, avenantRepo, devisRepo, catalogueRepo, sender)
	factureUC := billing.NewFactureUseCase(txRunner, factureRepo, devisRepo, avenantRepo, sender, cfg.Billing.EcheanceJours)
	avoirUC := billing.NewAvoirUseCase(txRunner, avoirRepo, factureRepo, catalogueRepo, sender)
	exportUC := billing.NewExportUseCase(devisRepo, factureRepo, companyRepo, clientRepo, pdfGenerator, facturxBuilder)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI : http://localhost:<port>/docs
	if cfg.Docs.Enabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.Docs.FilePath,
			Path:     strings.TrimPrefix(cfg.Docs.BasePath, "/"),
			Title:    cfg.App.Name,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CompanyUC:   companyUC,
		UserUC:      userUC,
		ClientUC:    clientUC,
		CatalogueUC: catalogueUC,
		DevisUC:     devisUC,
		AvenantUC:   avenantUC,
		FactureUC:   factureUC,
		AvoirUC:     avoirUC,
		ExportUC:    exportUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("serveur HTTP arrêté")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("signal d'arrêt reçu, fermeture du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("fermeture du serveur")
	}

	log.Info().Msg("application arrêtée")
}
