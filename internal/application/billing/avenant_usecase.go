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

// AvenantUseCase : cycle de vie de l'avenant. Chaque ligne consigne son delta
// par rapport à la ligne de devis source ; le devis d'origine n'est jamais
// réécrit.
type AvenantUseCase struct {
	txRunner      BillingTxRunner
	avenantRepo   repository.AvenantRepository
	devisRepo     repository.DevisRepository
	catalogueRepo repository.CatalogueRepository
	sender        DocumentSender
}

// NewAvenantUseCase construit le cas d'usage.
func NewAvenantUseCase(
	txRunner BillingTxRunner,
	avenantRepo repository.AvenantRepository,
	devisRepo repository.DevisRepository,
	catalogueRepo repository.CatalogueRepository,
	sender DocumentSender,
) *AvenantUseCase {
	return &AvenantUseCase{
		txRunner:      txRunner,
		avenantRepo:   avenantRepo,
		devisRepo:     devisRepo,
		catalogueRepo: catalogueRepo,
		sender:        sender,
	}
}

// Create crée un avenant en brouillon rattaché à un devis de la société.
// Les lignes portant une LigneSourceID figent la valeur HT de la ligne de
// devis au moment de la création (AncienneValeur).
func (uc *AvenantUseCase) Create(ctx context.Context, companyID string, in dto.CreateAvenantRequest) (*dto.AvenantResponse, error) {
	if in.DevisID == "" {
		return nil, domain.ErrInvalidInput
	}
	devis, err := uc.chargerDevis(companyID, in.DevisID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	avenant := &entity.Avenant{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Objet:     in.Objet,
		Statut:    entity.AvenantBrouillon,
		TauxTVA:   in.TauxTVA,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := avenant.RattacherDevis(devis.ID); err != nil {
		return nil, err
	}
	if err := uc.ajouterLignes(avenant, devis, companyID, in.Lignes); err != nil {
		return nil, err
	}
	if err := avenant.Recalculate(devis); err != nil {
		return nil, err
	}

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		avenantRepo repository.AvenantRepository,
		_ repository.FactureRepository,
		_ repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := avenantRepo.Create(avenant); err != nil {
			return err
		}
		for _, l := range avenant.Lignes {
			if err := avenantRepo.CreateLigne(l); err != nil {
				return err
			}
		}
		return auditRepo.Record("avenant", avenant.ID, "CREATION", "", avenant.DeltaTotalTTC(devis).StringFixed(2))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(avenant, devis), nil
}

// Update remplace les champs modifiables d'un brouillon, lignes en bloc.
func (uc *AvenantUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateAvenantRequest) (*dto.AvenantResponse, error) {
	avenant, devis, err := uc.chargerAvenantEtDevis(companyID, id)
	if err != nil {
		return nil, err
	}
	if !avenant.Statut.IsModifiable() {
		return nil, domain.ErrImmutable
	}

	if in.Objet != nil {
		avenant.Objet = *in.Objet
	}
	if in.TauxTVA != nil {
		avenant.TauxTVA = in.TauxTVA
	}
	anciennesLignes := avenant.Lignes
	if in.Lignes != nil {
		avenant.Lignes = nil
		if err := uc.ajouterLignes(avenant, devis, companyID, in.Lignes); err != nil {
			return nil, err
		}
	}
	ancienDelta := avenant.DeltaTotalTTC(devis)
	if err := avenant.Recalculate(devis); err != nil {
		return nil, err
	}
	avenant.UpdatedAt = time.Now()
	nouveauDelta := avenant.DeltaTotalTTC(devis)

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		avenantRepo repository.AvenantRepository,
		_ repository.FactureRepository,
		_ repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if in.Lignes != nil {
			for _, l := range anciennesLignes {
				if err := avenantRepo.DeleteLigne(l.ID); err != nil {
					return err
				}
			}
			for _, l := range avenant.Lignes {
				if err := avenantRepo.CreateLigne(l); err != nil {
					return err
				}
			}
		}
		if err := avenantRepo.Update(avenant); err != nil {
			return err
		}
		if !ancienDelta.Equal(nouveauDelta) {
			return auditRepo.Record("avenant", avenant.ID, "MODIFICATION",
				ancienDelta.StringFixed(2), nouveauDelta.StringFixed(2))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(avenant, devis), nil
}

// Get retourne l'avenant avec ses lignes et leurs deltas.
func (uc *AvenantUseCase) Get(ctx context.Context, companyID, id string) (*dto.AvenantResponse, error) {
	avenant, devis, err := uc.chargerAvenantEtDevis(companyID, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(avenant, devis), nil
}

// ListByDevis liste les avenants d'un devis, lignes comprises.
func (uc *AvenantUseCase) ListByDevis(ctx context.Context, companyID, devisID string) ([]*dto.AvenantResponse, error) {
	devis, err := uc.chargerDevis(companyID, devisID)
	if err != nil {
		return nil, err
	}
	avenants, err := uc.avenantRepo.ListByDevisID(devisID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.AvenantResponse, 0, len(avenants))
	for _, av := range avenants {
		lignes, err := uc.avenantRepo.GetLignesByAvenantID(av.ID)
		if err != nil {
			return nil, err
		}
		av.Lignes = lignes
		out = append(out, uc.toResponse(av, devis))
	}
	return out, nil
}

// Envoyer émet l'avenant : numérotation définitive, SENT, trace d'envoi.
func (uc *AvenantUseCase) Envoyer(ctx context.Context, companyID, id string, in dto.EnvoiRequest) (*dto.AvenantResponse, error) {
	avenant, devis, err := uc.chargerAvenantEtDevis(companyID, id)
	if err != nil {
		return nil, err
	}
	if err := avenant.ValidateCanBeSent(); err != nil {
		return nil, err
	}
	receipt, err := uc.sender.Send(ctx, "avenant", avenant.ID, avenant.Numero, in.Canal)
	if err != nil {
		return nil, err
	}

	ancienStatut := string(avenant.Statut)
	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		avenantRepo repository.AvenantRepository,
		_ repository.FactureRepository,
		_ repository.AvoirRepository,
		seqRepo repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if avenant.Numero == "" {
			numero, err := seqRepo.NextNumber(companyID, repository.DocTypeAvenant)
			if err != nil {
				return err
			}
			if err := avenant.AssignerNumero(numero); err != nil {
				return err
			}
		}
		if err := avenant.Envoyer(receipt.SentAt, receipt.Channel); err != nil {
			return err
		}
		avenant.UpdatedAt = receipt.SentAt
		if err := avenantRepo.Update(avenant); err != nil {
			return err
		}
		return auditRepo.Record("avenant", avenant.ID, "ENVOI", ancienStatut, string(avenant.Statut))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(avenant, devis), nil
}

// Signer passe l'avenant en SIGNED. La garde trans-document est rejouée au
// moment de la tentative : le devis de rattachement doit être SIGNED, un
// devis annulé ou refusé entre-temps bloque la signature.
func (uc *AvenantUseCase) Signer(ctx context.Context, companyID, id string) (*dto.AvenantResponse, error) {
	return uc.transition(ctx, companyID, id, "SIGNATURE", func(a *entity.Avenant, d *entity.Devis, now time.Time) error {
		return a.Signer(d, now)
	})
}

// Rejeter passe l'avenant en REJECTED.
func (uc *AvenantUseCase) Rejeter(ctx context.Context, companyID, id string) (*dto.AvenantResponse, error) {
	return uc.transition(ctx, companyID, id, "REJET", func(a *entity.Avenant, _ *entity.Devis, _ time.Time) error {
		return a.Rejeter()
	})
}

// Annuler passe l'avenant en CANCELLED : ses deltas sortent du total
// corrigé du devis.
func (uc *AvenantUseCase) Annuler(ctx context.Context, companyID, id string) (*dto.AvenantResponse, error) {
	return uc.transition(ctx, companyID, id, "ANNULATION", func(a *entity.Avenant, _ *entity.Devis, _ time.Time) error {
		return a.Annuler()
	})
}

func (uc *AvenantUseCase) transition(ctx context.Context, companyID, id, action string, mutate func(*entity.Avenant, *entity.Devis, time.Time) error) (*dto.AvenantResponse, error) {
	avenant, devis, err := uc.chargerAvenantEtDevis(companyID, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	ancienStatut := string(avenant.Statut)
	if err := mutate(avenant, devis, now); err != nil {
		return nil, err
	}
	avenant.UpdatedAt = now

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		avenantRepo repository.AvenantRepository,
		_ repository.FactureRepository,
		_ repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := avenantRepo.Update(avenant); err != nil {
			return err
		}
		return auditRepo.Record("avenant", avenant.ID, action, ancienStatut, string(avenant.Statut))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(avenant, devis), nil
}

// ajouterLignes construit et rattache les lignes ; une LigneSourceID doit
// référencer une ligne du devis de rattachement.
func (uc *AvenantUseCase) ajouterLignes(avenant *entity.Avenant, devis *entity.Devis, companyID string, lignes []dto.LigneRequest) error {
	sources := make(map[string]*entity.LigneDevis, len(devis.Lignes))
	for _, l := range devis.Lignes {
		sources[l.ID] = l
	}
	for _, lr := range lignes {
		base, err := buildLigneDocument(uc.catalogueRepo, companyID, lr)
		if err != nil {
			return err
		}
		ligne := &entity.LigneAvenant{LigneDocument: base}
		if lr.LigneSourceID != "" {
			src, ok := sources[lr.LigneSourceID]
			if !ok {
				return domain.NewGuardError("avenant", "ligne source "+lr.LigneSourceID+" absente du devis de rattachement")
			}
			ligne.LigneSource = src
		}
		if err := avenant.AjouterLigne(ligne); err != nil {
			return err
		}
	}
	return nil
}

func (uc *AvenantUseCase) chargerDevis(companyID, id string) (*entity.Devis, error) {
	devis, err := uc.devisRepo.GetWithLignes(id)
	if err != nil || devis == nil {
		return nil, domain.ErrNotFound
	}
	if devis.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return devis, nil
}

func (uc *AvenantUseCase) chargerAvenantEtDevis(companyID, id string) (*entity.Avenant, *entity.Devis, error) {
	avenant, err := uc.avenantRepo.GetWithLignes(id)
	if err != nil || avenant == nil {
		return nil, nil, domain.ErrNotFound
	}
	if avenant.CompanyID != companyID {
		return nil, nil, domain.ErrForbidden
	}
	devis, err := uc.chargerDevis(companyID, avenant.DevisID)
	if err != nil {
		return nil, nil, err
	}
	return avenant, devis, nil
}

func (uc *AvenantUseCase) toResponse(a *entity.Avenant, devis *entity.Devis) *dto.AvenantResponse {
	parLigne := devis.UsesTVAParLigne()
	lignes := make([]dto.LigneAvenantResponse, 0, len(a.Lignes))
	for _, l := range a.Lignes {
		lr := dto.LigneAvenantResponse{
			LigneResponse:  ligneToResponse(l.LigneDocument),
			AncienneValeur: l.AncienneValeur,
			NouvelleValeur: l.NouvelleValeur,
			Delta:          l.Delta,
			DeltaTTC:       l.DeltaTTC(parLigne, devis.TauxTVA, a.TauxTVA),
		}
		if l.LigneSource != nil {
			lr.LigneSourceID = l.LigneSource.ID
		}
		lignes = append(lignes, lr)
	}
	return &dto.AvenantResponse{
		ID:            a.ID,
		CompanyID:     a.CompanyID,
		DevisID:       a.DevisID,
		Numero:        a.Numero,
		Objet:         a.Objet,
		Statut:        string(a.Statut),
		StatutLabel:   a.Statut.Label(),
		StatutCouleur: a.Statut.Couleur(),
		Lignes:        lignes,
		MontantHT:     a.MontantHT,
		MontantTTC:    a.MontantTTC,
		DeltaTotalTTC: a.DeltaTotalTTC(devis),
		TauxTVA:       a.TauxTVA,
		DateEnvoi:     a.DateEnvoi,
		DateSignature: a.DateSignature,
		CanalEnvoi:    a.CanalEnvoi,
		NbEnvois:      a.NbEnvois,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
