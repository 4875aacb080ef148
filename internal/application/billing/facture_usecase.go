package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/application/dto"
	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/money"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

// FactureUseCase : génération des factures depuis un devis signé et cycle de
// vie de la pièce. Une facture n'est jamais saisie à la main : ses lignes
// descendent du devis et des avenants non annulés.
type FactureUseCase struct {
	txRunner    BillingTxRunner
	factureRepo repository.FactureRepository
	devisRepo   repository.DevisRepository
	avenantRepo repository.AvenantRepository
	sender      DocumentSender
	// echeance : délai supplétif appliqué quand la requête ne fixe pas de
	// date (art. L441-10 du code de commerce : 30 jours).
	echeance time.Duration
}

// NewFactureUseCase construit le cas d'usage. echeanceJours est le délai de
// paiement par défaut, en jours calendaires.
func NewFactureUseCase(
	txRunner BillingTxRunner,
	factureRepo repository.FactureRepository,
	devisRepo repository.DevisRepository,
	avenantRepo repository.AvenantRepository,
	sender DocumentSender,
	echeanceJours int,
) *FactureUseCase {
	if echeanceJours <= 0 {
		echeanceJours = 30
	}
	return &FactureUseCase{
		txRunner:    txRunner,
		factureRepo: factureRepo,
		devisRepo:   devisRepo,
		avenantRepo: avenantRepo,
		sender:      sender,
		echeance:    time.Duration(echeanceJours) * 24 * time.Hour,
	}
}

// GenerateFromDevis dérive une facture (brouillon) d'un devis signé.
//
//   - TOTALE : lignes du devis plus une ligne de delta par ligne d'avenant
//     non annulé, au taux applicable de chaque delta ;
//   - ACOMPTE : une ligne unique, HT = pourcentage d'acompte du HT corrigé
//     brut, au taux global du devis ;
//   - SOLDE : une ligne unique, HT corrigé moins acompte.
//
// Relation 1:1 : un devis ne porte qu'une facture vivante. Une facture
// annulée ne bloque pas une régénération.
func (uc *FactureUseCase) GenerateFromDevis(ctx context.Context, companyID string, in dto.GenerateFactureRequest) (*dto.FactureResponse, error) {
	devis, err := uc.chargerDevis(companyID, in.DevisID)
	if err != nil {
		return nil, err
	}
	if devis.Statut != entity.DevisSigne {
		return nil, domain.NewGuardError("facture", "génération possible uniquement depuis un devis signé (statut "+string(devis.Statut)+")")
	}
	existante, err := uc.factureRepo.GetByDevisID(devis.ID)
	if err != nil {
		return nil, err
	}
	if existante != nil && existante.Statut != entity.FactureAnnulee {
		return nil, domain.NewGuardError("facture", "le devis "+devis.Numero+" porte déjà la facture "+existante.Numero)
	}

	avenants, err := uc.chargerAvenants(devis.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	echeance := in.DateEcheance
	if echeance.IsZero() {
		echeance = now.Add(uc.echeance)
	}
	objet := in.Objet
	if objet == "" {
		objet = devis.Objet
	}
	parLigne := devis.UsesTVAParLigne()

	facture := &entity.Facture{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		ClientID:     devis.ClientID,
		DevisID:      devis.ID,
		Objet:        objet,
		Type:         entity.TypeFacture(in.Type),
		Statut:       entity.FactureBrouillon,
		TauxTVA:      devis.TauxTVA,
		DateEcheance: echeance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch facture.Type {
	case entity.FactureTotale:
		facture.TVAParLigne = &parLigne
		for _, l := range devis.Lignes {
			copie := &entity.LigneFacture{LigneDocument: l.LigneDocument}
			copie.ID = uuid.New().String()
			if err := facture.AjouterLigne(copie); err != nil {
				return nil, err
			}
		}
		for _, av := range avenants {
			for _, l := range av.Lignes {
				if err := facture.AjouterLigneRegularisation(uc.ligneDelta(devis, av, l)); err != nil {
					return nil, err
				}
			}
		}
	case entity.FactureAcompte, entity.FactureSolde:
		faux := false
		facture.TVAParLigne = &faux
		ligne, err := uc.ligneAcompteOuSolde(devis, avenants, facture.Type)
		if err != nil {
			return nil, err
		}
		if err := facture.AjouterLigneRegularisation(ligne); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrInvalidInput
	}

	if err := facture.Recalculate(); err != nil {
		return nil, err
	}

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		_ repository.AvenantRepository,
		factureRepo repository.FactureRepository,
		_ repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := factureRepo.Create(facture); err != nil {
			return err
		}
		for _, l := range facture.Lignes {
			if err := factureRepo.CreateLigne(l); err != nil {
				return err
			}
		}
		return auditRepo.Record("facture", facture.ID, "GENERATION", string(facture.Type), facture.MontantTTC.StringFixed(2))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(facture), nil
}

// ligneDelta traduit une ligne d'avenant en ligne de facture : quantité 1,
// prix unitaire égal au delta HT, taux applicable du delta posé sur la ligne.
func (uc *FactureUseCase) ligneDelta(devis *entity.Devis, av *entity.Avenant, l *entity.LigneAvenant) *entity.LigneFacture {
	taux := l.TauxApplicable(devis.UsesTVAParLigne(), devis.TauxTVA, av.TauxTVA)
	ref := av.Numero
	if ref == "" {
		ref = av.Objet
	}
	return &entity.LigneFacture{
		LigneDocument: entity.LigneDocument{
			ID:           uuid.New().String(),
			Description:  "Avenant " + ref + " : " + l.Description,
			Quantite:     1,
			PrixUnitaire: l.Delta,
			TauxTVA:      &taux,
		},
	}
}

// ligneAcompteOuSolde construit la ligne unique d'une facture d'acompte ou
// de solde depuis le HT corrigé brut (devis plus deltas des avenants non
// annulés, arrondi final uniquement).
func (uc *FactureUseCase) ligneAcompteOuSolde(devis *entity.Devis, avenants []*entity.Avenant, t entity.TypeFacture) (*entity.LigneFacture, error) {
	brutHT := devis.MontantHT
	for _, av := range avenants {
		for _, l := range av.Lignes {
			brutHT = brutHT.Add(l.Delta)
		}
	}
	acompteHT := money.Round2(brutHT.Mul(devis.AcomptePourcentage).Div(centPourcent))

	var description string
	var montant decimal.Decimal
	switch t {
	case entity.FactureAcompte:
		if !devis.AcomptePourcentage.IsPositive() {
			return nil, domain.NewGuardError("facture", "le devis ne prévoit pas d'acompte")
		}
		description = "Acompte de " + devis.AcomptePourcentage.StringFixed(0) + " % sur devis " + devis.Numero
		montant = acompteHT
	case entity.FactureSolde:
		description = "Solde du devis " + devis.Numero
		montant = money.Round2(brutHT).Sub(acompteHT)
	}
	return &entity.LigneFacture{
		LigneDocument: entity.LigneDocument{
			ID:           uuid.New().String(),
			Description:  description,
			Quantite:     1,
			PrixUnitaire: montant,
		},
	}, nil
}

// Get retourne la facture avec ses lignes.
func (uc *FactureUseCase) Get(ctx context.Context, companyID, id string) (*dto.FactureResponse, error) {
	facture, err := uc.chargerFacture(companyID, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(facture), nil
}

// List liste les factures de la société (sans lignes).
func (uc *FactureUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]*dto.FactureResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.factureRepo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.FactureResponse, 0, len(list))
	for _, f := range list {
		out = append(out, uc.toResponse(f))
	}
	return out, nil
}

// Envoyer émet la facture : numérotation définitive, SENT, gel des montants.
func (uc *FactureUseCase) Envoyer(ctx context.Context, companyID, id string, in dto.EnvoiRequest) (*dto.FactureResponse, error) {
	facture, err := uc.chargerFacture(companyID, id)
	if err != nil {
		return nil, err
	}
	if err := facture.ValidateCanBeSent(); err != nil {
		return nil, err
	}
	receipt, err := uc.sender.Send(ctx, "facture", facture.ID, facture.Numero, in.Canal)
	if err != nil {
		return nil, err
	}

	ancienStatut := string(facture.Statut)
	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		_ repository.AvenantRepository,
		factureRepo repository.FactureRepository,
		_ repository.AvoirRepository,
		seqRepo repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if facture.Numero == "" {
			numero, err := seqRepo.NextNumber(companyID, repository.DocTypeFacture)
			if err != nil {
				return err
			}
			if err := facture.AssignerNumero(numero); err != nil {
				return err
			}
		}
		if err := facture.Envoyer(receipt.SentAt, receipt.Channel); err != nil {
			return err
		}
		facture.UpdatedAt = receipt.SentAt
		if err := factureRepo.Update(facture); err != nil {
			return err
		}
		return auditRepo.Record("facture", facture.ID, "EMISSION", ancienStatut, string(facture.Statut))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(facture), nil
}

// Renvoyer consigne un renvoi d'une facture émise (statut inchangé).
func (uc *FactureUseCase) Renvoyer(ctx context.Context, companyID, id string, in dto.EnvoiRequest) (*dto.FactureResponse, error) {
	facture, err := uc.chargerFacture(companyID, id)
	if err != nil {
		return nil, err
	}
	receipt, err := uc.sender.Send(ctx, "facture", facture.ID, facture.Numero, in.Canal)
	if err != nil {
		return nil, err
	}
	if err := facture.EnregistrerRenvoi(receipt.SentAt, receipt.Channel); err != nil {
		return nil, err
	}
	facture.UpdatedAt = receipt.SentAt

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		_ repository.AvenantRepository,
		factureRepo repository.FactureRepository,
		_ repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := factureRepo.Update(facture); err != nil {
			return err
		}
		return auditRepo.Record("facture", facture.ID, "RENVOI", string(facture.Statut), string(facture.Statut))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(facture), nil
}

// MarquerPayee passe la facture en PAID.
func (uc *FactureUseCase) MarquerPayee(ctx context.Context, companyID, id string) (*dto.FactureResponse, error) {
	return uc.transition(ctx, companyID, id, "PAIEMENT", func(f *entity.Facture, now time.Time) error {
		return f.MarquerPayee(now)
	})
}

// MarquerEnRetard constate le dépassement d'échéance.
func (uc *FactureUseCase) MarquerEnRetard(ctx context.Context, companyID, id string) (*dto.FactureResponse, error) {
	return uc.transition(ctx, companyID, id, "RETARD", func(f *entity.Facture, now time.Time) error {
		return f.MarquerEnRetard(now)
	})
}

// Annuler passe la facture en CANCELLED.
func (uc *FactureUseCase) Annuler(ctx context.Context, companyID, id string) (*dto.FactureResponse, error) {
	return uc.transition(ctx, companyID, id, "ANNULATION", func(f *entity.Facture, _ time.Time) error {
		return f.Annuler()
	})
}

func (uc *FactureUseCase) transition(ctx context.Context, companyID, id, action string, mutate func(*entity.Facture, time.Time) error) (*dto.FactureResponse, error) {
	facture, err := uc.chargerFacture(companyID, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	ancienStatut := string(facture.Statut)
	if err := mutate(facture, now); err != nil {
		return nil, err
	}
	facture.UpdatedAt = now

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.DevisRepository,
		_ repository.AvenantRepository,
		factureRepo repository.FactureRepository,
		_ repository.AvoirRepository,
		_ repository.SequenceRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := factureRepo.Update(facture); err != nil {
			return err
		}
		return auditRepo.Record("facture", facture.ID, action, ancienStatut, string(facture.Statut))
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(facture), nil
}

func (uc *FactureUseCase) chargerDevis(companyID, id string) (*entity.Devis, error) {
	devis, err := uc.devisRepo.GetWithLignes(id)
	if err != nil || devis == nil {
		return nil, domain.ErrNotFound
	}
	if devis.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return devis, nil
}

func (uc *FactureUseCase) chargerFacture(companyID, id string) (*entity.Facture, error) {
	facture, err := uc.factureRepo.GetWithLignes(id)
	if err != nil || facture == nil {
		return nil, domain.ErrNotFound
	}
	if facture.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return facture, nil
}

// chargerAvenants : avenants non annulés du devis, lignes comprises.
func (uc *FactureUseCase) chargerAvenants(devisID string) ([]*entity.Avenant, error) {
	tous, err := uc.avenantRepo.ListByDevisID(devisID)
	if err != nil {
		return nil, err
	}
	avenants := make([]*entity.Avenant, 0, len(tous))
	for _, av := range tous {
		if av.Statut == entity.AvenantAnnule {
			continue
		}
		lignes, err := uc.avenantRepo.GetLignesByAvenantID(av.ID)
		if err != nil {
			return nil, err
		}
		av.Lignes = lignes
		avenants = append(avenants, av)
	}
	return avenants, nil
}

func (uc *FactureUseCase) toResponse(f *entity.Facture) *dto.FactureResponse {
	lignes := make([]dto.LigneResponse, 0, len(f.Lignes))
	for _, l := range f.Lignes {
		lignes = append(lignes, ligneToResponse(l.LigneDocument))
	}
	return &dto.FactureResponse{
		ID:            f.ID,
		CompanyID:     f.CompanyID,
		ClientID:      f.ClientID,
		DevisID:       f.DevisID,
		Numero:        f.Numero,
		Objet:         f.Objet,
		Type:          string(f.Type),
		Statut:        string(f.Statut),
		StatutLabel:   f.Statut.Label(),
		StatutCouleur: f.Statut.Couleur(),
		Lignes:        lignes,
		MontantHT:     f.MontantHT,
		MontantTTC:    f.MontantTTC,
		TauxTVA:       f.TauxTVA,
		TVAParLigne:   f.UsesTVAParLigne(),
		DateEmission:  f.DateEmission,
		DateEcheance:  f.DateEcheance,
		DatePaiement:  f.DatePaiement,
		DateEnvoi:     f.DateEnvoi,
		CanalEnvoi:    f.CanalEnvoi,
		NbEnvois:      f.NbEnvois,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}
