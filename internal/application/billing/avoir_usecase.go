package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/facturation-api/internal/application/dto"
	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

// AvoirUseCase : cycle de vie de l'avoir. L'émission rejoue la garde de
// plafond dans la transaction : le cumul TTC des avoirs d'une facture ne
// dépasse jamais le TTC de la facture, même sous émissions concurrentes.
type AvoirUseCase struct {
	txRunner      BillingTxRunner
	avoirRepo     repository.AvoirRepository
	factureRepo   repository.FactureRepository
	catalogueRepo repository.CatalogueRepository
	sender        DocumentSender
}

// NewAvoirUseCase construit le cas d'usage.
func NewAvoirUseCase(
	txRunner BillingTxRunner,
	avoirRepo repository.AvoirRepository,
	factureRepo repository.FactureRepository,
	catalogueRepo repository.CatalogueRepository,
	sender DocumentSender,
) *AvoirUseCase {
	return &AvoirUseCase{
		txRunner:      txRunner,
		avoirRepo:     avoirRepo,
		factureRepo:   factureRepo,
		catalogueRepo: catalogueRepo,
		sender:        sender,
	}
}

// Create crée un avoir en brouillon visant une facture de la société.
// Le motif est exigé dès la création.
func (uc *AvoirUseCase) Create(ctx context.Context, companyID string, in dto.CreateAvoirRequest) (*dto.AvoirResponse, error) {
	if in.FactureID == "" || in.Motif == "" {
		return nil, domain.ErrInvalidInput
	}
	facture, err := uc.chargerFacture(companyID, in.FactureID)
	if err != nil {
		return nil, err
	}

	taux := facture.TauxTVA
	if in.TauxTVA != nil {
		taux = *in.TauxTVA
	}
	parLigne := facture.UsesTVAParLigne()
	if in.TVAParLigne != nil {
		parLigne = *in.TVAParLigne
	}

	now := time.Now()
	avoir := &entity.Avoir{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		ClientID:    facture.ClientID,
		FactureID:   facture.ID,
		Motif:       in.Motif,
		Statut:      entity.AvoirBrouillon,
		TauxTVA:     taux,
		TVAParLigne: &parLigne,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, lr := range in.Lignes {
		base, err := buildLigneDocument(uc.catalogueRepo, companyID, lr)
		if err != nil {
			return nil, err
		}
		if err := avoir.AjouterLigne(&entity.LigneAvoir{LigneDocument: base}); err != nil {
			return nil, err
		}
	}
	if err := avoir.Recalculate(); err != nil {
		return nil, err
	}

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		_ repository.AvenantRepository,
		_ repository.FactureRepository,
		avoirRepo repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := avoirRepo.Create(avoir); err != nil {
			return err
		}
		for _, l := range avoir.Lignes {
			if err := avoirRepo.CreateLigne(l); err != nil {
				return err
			}
		}
		return auditRepo.Record("avoir", avoir.ID, "CREATION", "", avoir.MontantTTC.StringFixed(2))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(avoir), nil
}

// Get retourne l'avoir avec ses lignes.
func (uc *AvoirUseCase) Get(ctx context.Context, companyID, id string) (*dto.AvoirResponse, error) {
	avoir, err := uc.chargerAvoir(companyID, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(avoir), nil
}

// ListByFacture liste les avoirs visant une facture.
func (uc *AvoirUseCase) ListByFacture(ctx context.Context, companyID, factureID string) ([]*dto.AvoirResponse, error) {
	if _, err := uc.chargerFacture(companyID, factureID); err != nil {
		return nil, err
	}
	list, err := uc.avoirRepo.ListByFactureID(factureID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.AvoirResponse, 0, len(list))
	for _, a := range list {
		out = append(out, uc.toResponse(a))
	}
	return out, nil
}

// Emettre passe l'avoir en ISSUED. Le cumul des avoirs frères est relu dans
// la transaction, juste avant la garde : deux émissions concurrentes ne
// peuvent pas dépasser le plafond à elles deux.
func (uc *AvoirUseCase) Emettre(ctx context.Context, companyID, id string) (*dto.AvoirResponse, error) {
	avoir, err := uc.chargerAvoir(companyID, id)
	if err != nil {
		return nil, err
	}
	facture, err := uc.chargerFacture(companyID, avoir.FactureID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ancienStatut := string(avoir.Statut)
	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		_ repository.AvenantRepository,
		_ repository.FactureRepository,
		avoirRepo repository.AvoirRepository,
		seqRepo repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		sommeAutres, err := avoirRepo.SumTTCByFactureID(avoir.FactureID, avoir.ID)
		if err != nil {
			return err
		}
		if avoir.Numero == "" {
			numero, err := seqRepo.NextNumber(companyID, repository.DocTypeAvoir)
			if err != nil {
				return err
			}
			if err := avoir.AssignerNumero(numero); err != nil {
				return err
			}
		}
		if err := avoir.Emettre(facture, sommeAutres, now); err != nil {
			return err
		}
		avoir.UpdatedAt = now
		if err := avoirRepo.Update(avoir); err != nil {
			return err
		}
		return auditRepo.Record("avoir", avoir.ID, "EMISSION", ancienStatut, string(avoir.Statut))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(avoir), nil
}

// Envoyer passe l'avoir émis en SENT avec trace d'envoi.
func (uc *AvoirUseCase) Envoyer(ctx context.Context, companyID, id string, in dto.EnvoiRequest) (*dto.AvoirResponse, error) {
	avoir, err := uc.chargerAvoir(companyID, id)
	if err != nil {
		return nil, err
	}
	if !avoir.Statut.CanBeSent() {
		return nil, domain.NewGuardError("avoir", "envoi possible uniquement après émission (statut "+string(avoir.Statut)+")")
	}
	receipt, err := uc.sender.Send(ctx, "avoir", avoir.ID, avoir.Numero, in.Canal)
	if err != nil {
		return nil, err
	}

	ancienStatut := string(avoir.Statut)
	if err := avoir.Envoyer(receipt.SentAt, receipt.Channel); err != nil {
		return nil, err
	}
	avoir.UpdatedAt = receipt.SentAt

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		_ repository.AvenantRepository,
		_ repository.FactureRepository,
		avoirRepo repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := avoirRepo.Update(avoir); err != nil {
			return err
		}
		return auditRepo.Record("avoir", avoir.ID, "ENVOI", ancienStatut, string(avoir.Statut))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(avoir), nil
}

// MarquerRembourse passe l'avoir en REFUNDED.
func (uc *AvoirUseCase) MarquerRembourse(ctx context.Context, companyID, id string) (*dto.AvoirResponse, error) {
	return uc.transition(ctx, companyID, id, "REMBOURSEMENT", func(a *entity.Avoir, now time.Time) error {
		return a.MarquerRembourse(now)
	})
}

// Annuler passe l'avoir en CANCELLED : il sort du cumul de plafond.
func (uc *AvoirUseCase) Annuler(ctx context.Context, companyID, id string) (*dto.AvoirResponse, error) {
	return uc.transition(ctx, companyID, id, "ANNULATION", func(a *entity.Avoir, _ time.Time) error {
		return a.Annuler()
	})
}

func (uc *AvoirUseCase) transition(ctx context.Context, companyID, id, action string, mutate func(*entity.Avoir, time.Time) error) (*dto.AvoirResponse, error) {
	avoir, err := uc.chargerAvoir(companyID, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	ancienStatut := string(avoir.Statut)
	if err := mutate(avoir, now); err != nil {
		return nil, err
	}
	avoir.UpdatedAt = now

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		_ repository.AvenantRepository,
		_ repository.FactureRepository,
		avoirRepo repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := avoirRepo.Update(avoir); err != nil {
			return err
		}
		return auditRepo.Record("avoir", avoir.ID, action, ancienStatut, string(avoir.Statut))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(avoir), nil
}

func (uc *AvoirUseCase) chargerAvoir(companyID, id string) (*entity.Avoir, error) {
	avoir, err := uc.avoirRepo.GetWithLignes(id)
	if err != nil || avoir == nil {
		return nil, domain.ErrNotFound
	}
	if avoir.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return avoir, nil
}

func (uc *AvoirUseCase) chargerFacture(companyID, id string) (*entity.Facture, error) {
	facture, err := uc.factureRepo.GetByID(id)
	if err != nil || facture == nil {
		return nil, domain.ErrNotFound
	}
	if facture.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return facture, nil
}

func (uc *AvoirUseCase) toResponse(a *entity.Avoir) *dto.AvoirResponse {
	lignes := make([]dto.LigneResponse, 0, len(a.Lignes))
	for _, l := range a.Lignes {
		lignes = append(lignes, ligneToResponse(l.LigneDocument))
	}
	return &dto.AvoirResponse{
		ID:                a.ID,
		CompanyID:         a.CompanyID,
		ClientID:          a.ClientID,
		FactureID:         a.FactureID,
		Numero:            a.Numero,
		Motif:             a.Motif,
		Statut:            string(a.Statut),
		StatutLabel:       a.Statut.Label(),
		StatutCouleur:     a.Statut.Couleur(),
		Lignes:            lignes,
		MontantHT:         a.MontantHT,
		MontantTTC:        a.MontantTTC,
		TauxTVA:           a.TauxTVA,
		DateEmission:      a.DateEmission,
		DateRemboursement: a.DateRemboursement,
		DateEnvoi:         a.DateEnvoi,
		CanalEnvoi:        a.CanalEnvoi,
		NbEnvois:          a.NbEnvois,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
