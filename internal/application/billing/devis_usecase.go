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

// DevisUseCase : cycle de vie du devis, de la création brouillon à la
// signature, avec la vue corrigée des avenants dans chaque réponse.
type DevisUseCase struct {
	txRunner      BillingTxRunner
	devisRepo     repository.DevisRepository
	avenantRepo   repository.AvenantRepository
	clientRepo    repository.ClientRepository
	companyRepo   repository.CompanyRepository
	catalogueRepo repository.CatalogueRepository
	sender        DocumentSender
}

// NewDevisUseCase construit le cas d'usage.
func NewDevisUseCase(
	txRunner BillingTxRunner,
	devisRepo repository.DevisRepository,
	avenantRepo repository.AvenantRepository,
	clientRepo repository.ClientRepository,
	companyRepo repository.CompanyRepository,
	catalogueRepo repository.CatalogueRepository,
	sender DocumentSender,
) *DevisUseCase {
	return &DevisUseCase{
		txRunner:      txRunner,
		devisRepo:     devisRepo,
		avenantRepo:   avenantRepo,
		clientRepo:    clientRepo,
		companyRepo:   companyRepo,
		catalogueRepo: catalogueRepo,
		sender:        sender,
	}
}

// Create crée un devis en brouillon, lignes comprises, et calcule ses totaux.
func (uc *DevisUseCase) Create(ctx context.Context, companyID string, in dto.CreateDevisRequest) (*dto.DevisResponse, error) {
	if in.ClientID == "" {
		return nil, domain.ErrInvalidInput
	}
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil || client == nil {
		return nil, domain.ErrNotFound
	}
	if client.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil || company == nil {
		return nil, domain.ErrNotFound
	}
	if in.AcomptePourcentage.IsNegative() || in.AcomptePourcentage.GreaterThan(centPourcent) {
		return nil, domain.ErrInvalidInput
	}

	taux := company.TauxEffectif()
	if in.TauxTVA != nil {
		taux = *in.TauxTVA
	}
	parLigne := false
	if in.TVAParLigne != nil {
		parLigne = *in.TVAParLigne
	}

	now := time.Now()
	devis := &entity.Devis{
		ID:                 uuid.New().String(),
		CompanyID:          companyID,
		ClientID:           in.ClientID,
		Objet:              in.Objet,
		Statut:             entity.DevisBrouillon,
		TauxTVA:            taux,
		TVAParLigne:        &parLigne,
		AcomptePourcentage: in.AcomptePourcentage,
		DateValidite:       in.DateValidite,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, lr := range in.Lignes {
		base, err := buildLigneDocument(uc.catalogueRepo, companyID, lr)
		if err != nil {
			return nil, err
		}
		if err := devis.AjouterLigne(&entity.LigneDevis{LigneDocument: base}); err != nil {
			return nil, err
		}
	}
	if err := devis.Recalculate(); err != nil {
		return nil, err
	}

	err = uc.txRunner.RunBilling(ctx, func(
		devisRepo repository.DevisRepository,
		_ repository.AvenantRepository,
		_ repository.FactureRepository,
		_ repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := devisRepo.Create(devis); err != nil {
			return err
		}
		for _, l := range devis.Lignes {
			if err := devisRepo.CreateLigne(l); err != nil {
				return err
			}
		}
		return auditRepo.Record("devis", devis.ID, "CREATION", "", devis.MontantTTC.StringFixed(2))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(devis, nil), nil
}

// Update remplace les champs modifiables d'un brouillon. Les lignes, si
// présentes, sont remplacées en bloc puis les totaux recalculés.
func (uc *DevisUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateDevisRequest) (*dto.DevisResponse, error) {
	devis, err := uc.chargerDevis(companyID, id)
	if err != nil {
		return nil, err
	}
	if !devis.Statut.IsModifiable() {
		return nil, domain.ErrImmutable
	}

	if in.Objet != nil {
		devis.Objet = *in.Objet
	}
	if in.TauxTVA != nil {
		devis.TauxTVA = *in.TauxTVA
	}
	if in.TVAParLigne != nil {
		devis.TVAParLigne = in.TVAParLigne
	}
	if in.AcomptePourcentage != nil {
		if in.AcomptePourcentage.IsNegative() || in.AcomptePourcentage.GreaterThan(centPourcent) {
			return nil, domain.ErrInvalidInput
		}
		devis.AcomptePourcentage = *in.AcomptePourcentage
	}
	if in.DateValidite != nil {
		devis.DateValidite = *in.DateValidite
	}

	anciennesLignes := devis.Lignes
	if in.Lignes != nil {
		devis.Lignes = nil
		for _, lr := range in.Lignes {
			base, err := buildLigneDocument(uc.catalogueRepo, companyID, lr)
			if err != nil {
				return nil, err
			}
			if err := devis.AjouterLigne(&entity.LigneDevis{LigneDocument: base}); err != nil {
				return nil, err
			}
		}
	}
	ancienTTC := devis.MontantTTC
	if err := devis.Recalculate(); err != nil {
		return nil, err
	}
	devis.UpdatedAt = time.Now()

	err = uc.txRunner.RunBilling(ctx, func(
		devisRepo repository.DevisRepository,
		_ repository.AvenantRepository,
		_ repository.FactureRepository,
		_ repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if in.Lignes != nil {
			for _, l := range anciennesLignes {
				if err := devisRepo.DeleteLigne(l.ID); err != nil {
					return err
				}
			}
			for _, l := range devis.Lignes {
				if err := devisRepo.CreateLigne(l); err != nil {
					return err
				}
			}
		}
		if err := devisRepo.Update(devis); err != nil {
			return err
		}
		if !ancienTTC.Equal(devis.MontantTTC) {
			return auditRepo.Record("devis", devis.ID, "MODIFICATION",
				ancienTTC.StringFixed(2), devis.MontantTTC.StringFixed(2))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(devis, nil), nil
}

// Get retourne le devis avec sa vue corrigée des avenants non annulés.
func (uc *DevisUseCase) Get(ctx context.Context, companyID, id string) (*dto.DevisResponse, error) {
	devis, err := uc.chargerDevis(companyID, id)
	if err != nil {
		return nil, err
	}
	avenants, err := uc.chargerAvenants(id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(devis, avenants), nil
}

// List liste les devis de la société (sans lignes ni vue corrigée).
func (uc *DevisUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]*dto.DevisResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.devisRepo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.DevisResponse, 0, len(list))
	for _, d := range list {
		out = append(out, uc.toResponse(d, nil))
	}
	return out, nil
}

// Envoyer émet le devis : numérotation définitive, passage en SENT et
// trace d'envoi, le tout dans une transaction avec l'écriture d'audit.
// L'envoi effectif (collaborateur de livraison) précède la transaction :
// pas d'accusé, pas de changement de statut.
func (uc *DevisUseCase) Envoyer(ctx context.Context, companyID, id string, in dto.EnvoiRequest) (*dto.DevisResponse, error) {
	devis, err := uc.chargerDevis(companyID, id)
	if err != nil {
		return nil, err
	}
	if err := devis.ValidateCanBeSent(); err != nil {
		return nil, err
	}
	receipt, err := uc.sender.Send(ctx, "devis", devis.ID, devis.Numero, in.Canal)
	if err != nil {
		return nil, err
	}

	ancienStatut := string(devis.Statut)
	err = uc.txRunner.RunBilling(ctx, func(
		devisRepo repository.DevisRepository,
		_ repository.AvenantRepository,
		_ repository.FactureRepository,
		_ repository.AvoirRepository,
		seqRepo repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if devis.Numero == "" {
			numero, err := seqRepo.NextNumber(companyID, repository.DocTypeDevis)
			if err != nil {
				return err
			}
			if err := devis.AssignerNumero(numero); err != nil {
				return err
			}
		}
		if err := devis.Envoyer(receipt.SentAt, receipt.Channel); err != nil {
			return err
		}
		devis.UpdatedAt = receipt.SentAt
		if err := devisRepo.Update(devis); err != nil {
			return err
		}
		return auditRepo.Record("devis", devis.ID, "ENVOI", ancienStatut, string(devis.Statut))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(devis, nil), nil
}

// Renvoyer consigne un renvoi d'un devis déjà émis (statut inchangé).
func (uc *DevisUseCase) Renvoyer(ctx context.Context, companyID, id string, in dto.EnvoiRequest) (*dto.DevisResponse, error) {
	devis, err := uc.chargerDevis(companyID, id)
	if err != nil {
		return nil, err
	}
	receipt, err := uc.sender.Send(ctx, "devis", devis.ID, devis.Numero, in.Canal)
	if err != nil {
		return nil, err
	}
	if err := devis.EnregistrerRenvoi(receipt.SentAt, receipt.Channel); err != nil {
		return nil, err
	}
	devis.UpdatedAt = receipt.SentAt

	err = uc.txRunner.RunBilling(ctx, func(
		devisRepo repository.DevisRepository,
		_ repository.AvenantRepository,
		_ repository.FactureRepository,
		_ repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := devisRepo.Update(devis); err != nil {
			return err
		}
		return auditRepo.Record("devis", devis.ID, "RENVOI", string(devis.Statut), string(devis.Statut))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(devis, nil), nil
}

// Signer passe le devis en SIGNED (garde : lignes, montants positifs,
// statut SENT, validité non dépassée).
func (uc *DevisUseCase) Signer(ctx context.Context, companyID, id string) (*dto.DevisResponse, error) {
	return uc.transition(ctx, companyID, id, "SIGNATURE", func(d *entity.Devis, now time.Time) error {
		return d.Signer(now)
	})
}

// Refuser passe le devis en REFUSED.
func (uc *DevisUseCase) Refuser(ctx context.Context, companyID, id string) (*dto.DevisResponse, error) {
	return uc.transition(ctx, companyID, id, "REFUS", func(d *entity.Devis, _ time.Time) error {
		return d.Refuser()
	})
}

// Annuler passe le devis en CANCELLED.
func (uc *DevisUseCase) Annuler(ctx context.Context, companyID, id string) (*dto.DevisResponse, error) {
	return uc.transition(ctx, companyID, id, "ANNULATION", func(d *entity.Devis, _ time.Time) error {
		return d.Annuler()
	})
}

// Expirer constate l'expiration d'un devis envoyé dont la validité est dépassée.
func (uc *DevisUseCase) Expirer(ctx context.Context, companyID, id string) (*dto.DevisResponse, error) {
	return uc.transition(ctx, companyID, id, "EXPIRATION", func(d *entity.Devis, now time.Time) error {
		return d.Expirer(now)
	})
}

// transition factorise les passages d'état sans collaborateur externe :
// charge, mute via l'entité, persiste et audite dans la même transaction.
func (uc *DevisUseCase) transition(ctx context.Context, companyID, id, action string, mutate func(*entity.Devis, time.Time) error) (*dto.DevisResponse, error) {
	devis, err := uc.chargerDevis(companyID, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	ancienStatut := string(devis.Statut)
	if err := mutate(devis, now); err != nil {
		return nil, err
	}
	devis.UpdatedAt = now

	err = uc.txRunner.RunBilling(ctx, func(
		devisRepo repository.DevisRepository,
		_ repository.AvenantRepository,
		_ repository.FactureRepository,
		_ repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := devisRepo.Update(devis); err != nil {
			return err
		}
		return auditRepo.Record("devis", devis.ID, action, ancienStatut, string(devis.Statut))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(devis, nil), nil
}

// chargerDevis charge le devis avec ses lignes et vérifie l'appartenance.
func (uc *DevisUseCase) chargerDevis(companyID, id string) (*entity.Devis, error) {
	devis, err := uc.devisRepo.GetWithLignes(id)
	if err != nil || devis == nil {
		return nil, domain.ErrNotFound
	}
	if devis.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return devis, nil
}

// chargerAvenants charge les avenants du devis avec leurs lignes
// (la vue corrigée a besoin des deltas ligne à ligne).
func (uc *DevisUseCase) chargerAvenants(devisID string) ([]*entity.Avenant, error) {
	avenants, err := uc.avenantRepo.ListByDevisID(devisID)
	if err != nil {
		return nil, err
	}
	for _, av := range avenants {
		lignes, err := uc.avenantRepo.GetLignesByAvenantID(av.ID)
		if err != nil {
			return nil, err
		}
		av.Lignes = lignes
	}
	return avenants, nil
}

func (uc *DevisUseCase) toResponse(d *entity.Devis, avenants []*entity.Avenant) *dto.DevisResponse {
	lignes := make([]dto.LigneResponse, 0, len(d.Lignes))
	for _, l := range d.Lignes {
		lignes = append(lignes, ligneToResponse(l.LigneDocument))
	}
	return &dto.DevisResponse{
		ID:                 d.ID,
		CompanyID:          d.CompanyID,
		ClientID:           d.ClientID,
		Numero:             d.Numero,
		Objet:              d.Objet,
		Statut:             string(d.Statut),
		StatutLabel:        d.Statut.Label(),
		StatutCouleur:      d.Statut.Couleur(),
		Lignes:             lignes,
		MontantHT:          d.MontantHT,
		MontantTTC:         d.MontantTTC,
		TauxTVA:            d.TauxTVA,
		TVAParLigne:        d.UsesTVAParLigne(),
		AcomptePourcentage: d.AcomptePourcentage,
		DateValidite:       d.DateValidite,
		DateEnvoi:          d.DateEnvoi,
		DateSignature:      d.DateSignature,
		CanalEnvoi:         d.CanalEnvoi,
		NbEnvois:           d.NbEnvois,
		TotalCorrige:       d.TotalCorrige(avenants),
		AcompteCorrige:     d.AcompteCorrige(avenants),
		SoldeCorrige:       d.SoldeCorrige(avenants),
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}
