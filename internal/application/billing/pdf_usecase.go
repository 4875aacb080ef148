package billing

import (
	"context"
	"fmt"

	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

// ExportUseCase génère les représentations téléchargeables : PDF des devis
// et factures, XML Factur-X des factures. Un document en brouillon n'a pas
// de représentation officielle, il n'a pas encore de numéro.
type ExportUseCase struct {
	devisRepo   repository.DevisRepository
	factureRepo repository.FactureRepository
	companyRepo repository.CompanyRepository
	clientRepo  repository.ClientRepository
	generator   DocumentPDFGenerator
	facturx     FacturXBuilder
}

// NewExportUseCase construit le cas d'usage.
func NewExportUseCase(
	devisRepo repository.DevisRepository,
	factureRepo repository.FactureRepository,
	companyRepo repository.CompanyRepository,
	clientRepo repository.ClientRepository,
	generator DocumentPDFGenerator,
	facturx FacturXBuilder,
) *ExportUseCase {
	return &ExportUseCase{
		devisRepo:   devisRepo,
		factureRepo: factureRepo,
		companyRepo: companyRepo,
		clientRepo:  clientRepo,
		generator:   generator,
		facturx:     facturx,
	}
}

// DownloadDevisPDF génère le PDF d'un devis émis.
//
// Retourne :
//   - (pdfBytes, filename, nil) en cas de succès ;
//   - domain.ErrNotFound si le devis n'existe pas ;
//   - domain.ErrForbidden s'il n'appartient pas à la société du token ;
//   - domain.ErrInvalidInput s'il est encore en brouillon (pas de numéro).
func (uc *ExportUseCase) DownloadDevisPDF(ctx context.Context, companyID, devisID string) ([]byte, string, error) {
	devis, err := uc.devisRepo.GetWithLignes(devisID)
	if err != nil || devis == nil {
		return nil, "", domain.ErrNotFound
	}
	if devis.CompanyID != companyID {
		return nil, "", domain.ErrForbidden
	}
	if !devis.Statut.IsEmitted() || devis.Numero == "" {
		return nil, "", fmt.Errorf("%w : le devis est en brouillon, émettez-le avant de télécharger le PDF", domain.ErrInvalidInput)
	}
	company, client, err := uc.chargerParties(companyID, devis.ClientID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.generator.GenerateDevisPDF(ctx, devis, company, client)
	if err != nil {
		return nil, "", fmt.Errorf("pdf devis %s : %w", devis.Numero, err)
	}
	return pdfBytes, "devis_" + devis.Numero + ".pdf", nil
}

// DownloadFacturePDF génère le PDF d'une facture émise.
func (uc *ExportUseCase) DownloadFacturePDF(ctx context.Context, companyID, factureID string) ([]byte, string, error) {
	facture, company, client, err := uc.chargerFactureEmise(companyID, factureID)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := uc.generator.GenerateFacturePDF(ctx, facture, company, client)
	if err != nil {
		return nil, "", fmt.Errorf("pdf facture %s : %w", facture.Numero, err)
	}
	return pdfBytes, "facture_" + facture.Numero + ".pdf", nil
}

// DownloadFacturX génère le XML CII (Factur-X) d'une facture émise.
func (uc *ExportUseCase) DownloadFacturX(ctx context.Context, companyID, factureID string) ([]byte, string, error) {
	facture, company, client, err := uc.chargerFactureEmise(companyID, factureID)
	if err != nil {
		return nil, "", err
	}
	xmlBytes, err := uc.facturx.Build(facture, company, client)
	if err != nil {
		return nil, "", fmt.Errorf("factur-x %s : %w", facture.Numero, err)
	}
	return xmlBytes, "facture_" + facture.Numero + ".xml", nil
}

func (uc *ExportUseCase) chargerFactureEmise(companyID, factureID string) (*entity.Facture, *entity.Company, *entity.Client, error) {
	facture, err := uc.factureRepo.GetWithLignes(factureID)
	if err != nil || facture == nil {
		return nil, nil, nil, domain.ErrNotFound
	}
	if facture.CompanyID != companyID {
		return nil, nil, nil, domain.ErrForbidden
	}
	if !facture.Statut.IsEmitted() || facture.Numero == "" {
		return nil, nil, nil, fmt.Errorf("%w : la facture est en brouillon, émettez-la avant de l'exporter", domain.ErrInvalidInput)
	}
	company, client, err := uc.chargerParties(companyID, facture.ClientID)
	if err != nil {
		return nil, nil, nil, err
	}
	return facture, company, client, nil
}

func (uc *ExportUseCase) chargerParties(companyID, clientID string) (*entity.Company, *entity.Client, error) {
	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil || company == nil {
		return nil, nil, domain.ErrNotFound
	}
	client, err := uc.clientRepo.GetByID(clientID)
	if err != nil || client == nil {
		return nil, nil, domain.ErrNotFound
	}
	return company, client, nil
}
