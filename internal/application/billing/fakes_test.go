package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

// Doubles en mémoire partagés par les tests de cas d'usage. Le tx runner
// n'apporte aucune transactionnalité : il passe les mêmes repos au callback,
// ce qui suffit à vérifier le séquencement numérotation/statut/audit.

type fakeStore struct {
	devis     *fakeDevisRepo
	avenants  *fakeAvenantRepo
	factures  *fakeFactureRepo
	avoirs    *fakeAvoirRepo
	sequences *fakeSequenceRepo
	audit     *fakeAuditRepo
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		devis:     &fakeDevisRepo{items: map[string]*entity.Devis{}},
		avenants:  &fakeAvenantRepo{items: map[string]*entity.Avenant{}},
		factures:  &fakeFactureRepo{items: map[string]*entity.Facture{}},
		avoirs:    &fakeAvoirRepo{items: map[string]*entity.Avoir{}},
		sequences: &fakeSequenceRepo{},
		audit:     &fakeAuditRepo{},
	}
}

func (s *fakeStore) RunBilling(_ context.Context, fn func(
	repository.DevisRepository,
	repository.AvenantRepository,
	repository.FactureRepository,
	repository.AvoirRepository,
	repository.SequenceRepository,
	repository.AuditRepository,
) error) error {
	return fn(s.devis, s.avenants, s.factures, s.avoirs, s.sequences, s.audit)
}

// ── devis ────────────────────────────────────────────────────────────────────

type fakeDevisRepo struct {
	items map[string]*entity.Devis
}

func (r *fakeDevisRepo) Create(d *entity.Devis) error { r.items[d.ID] = d; return nil }
func (r *fakeDevisRepo) Update(d *entity.Devis) error { r.items[d.ID] = d; return nil }
func (r *fakeDevisRepo) GetByID(id string) (*entity.Devis, error) {
	return r.items[id], nil
}
func (r *fakeDevisRepo) GetWithLignes(id string) (*entity.Devis, error) {
	return r.items[id], nil
}
func (r *fakeDevisRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Devis, error) {
	var out []*entity.Devis
	for _, d := range r.items {
		if d.CompanyID == companyID {
			out = append(out, d)
		}
	}
	return out, nil
}
func (r *fakeDevisRepo) CreateLigne(*entity.LigneDevis) error { return nil }
func (r *fakeDevisRepo) UpdateLigne(*entity.LigneDevis) error { return nil }
func (r *fakeDevisRepo) DeleteLigne(string) error             { return nil }
func (r *fakeDevisRepo) GetLignesByDevisID(devisID string) ([]*entity.LigneDevis, error) {
	if d := r.items[devisID]; d != nil {
		return d.Lignes, nil
	}
	return nil, nil
}

// ── avenants ─────────────────────────────────────────────────────────────────

type fakeAvenantRepo struct {
	items map[string]*entity.Avenant
}

func (r *fakeAvenantRepo) Create(a *entity.Avenant) error { r.items[a.ID] = a; return nil }
func (r *fakeAvenantRepo) Update(a *entity.Avenant) error { r.items[a.ID] = a; return nil }
func (r *fakeAvenantRepo) GetByID(id string) (*entity.Avenant, error) {
	return r.items[id], nil
}
func (r *fakeAvenantRepo) GetWithLignes(id string) (*entity.Avenant, error) {
	return r.items[id], nil
}
func (r *fakeAvenantRepo) ListByDevisID(devisID string) ([]*entity.Avenant, error) {
	var out []*entity.Avenant
	for _, a := range r.items {
		if a.DevisID == devisID {
			out = append(out, a)
		}
	}
	return out, nil
}
func (r *fakeAvenantRepo) CreateLigne(*entity.LigneAvenant) error { return nil }
func (r *fakeAvenantRepo) UpdateLigne(*entity.LigneAvenant) error { return nil }
func (r *fakeAvenantRepo) DeleteLigne(string) error               { return nil }
func (r *fakeAvenantRepo) GetLignesByAvenantID(avenantID string) ([]*entity.LigneAvenant, error) {
	if a := r.items[avenantID]; a != nil {
		return a.Lignes, nil
	}
	return nil, nil
}

// ── factures ─────────────────────────────────────────────────────────────────

type fakeFactureRepo struct {
	items map[string]*entity.Facture
}

func (r *fakeFactureRepo) Create(f *entity.Facture) error { r.items[f.ID] = f; return nil }
func (r *fakeFactureRepo) Update(f *entity.Facture) error { r.items[f.ID] = f; return nil }
func (r *fakeFactureRepo) GetByID(id string) (*entity.Facture, error) {
	return r.items[id], nil
}
func (r *fakeFactureRepo) GetWithLignes(id string) (*entity.Facture, error) {
	return r.items[id], nil
}
func (r *fakeFactureRepo) GetByDevisID(devisID string) (*entity.Facture, error) {
	for _, f := range r.items {
		if f.DevisID == devisID && f.Statut != entity.FactureAnnulee {
			return f, nil
		}
	}
	return nil, nil
}
func (r *fakeFactureRepo) ListByCompany(string, int, int) ([]*entity.Facture, error) {
	return nil, nil
}
func (r *fakeFactureRepo) ListEmittedByYear(string, int) ([]*entity.Facture, error) {
	return nil, nil
}
func (r *fakeFactureRepo) CreateLigne(*entity.LigneFacture) error { return nil }
func (r *fakeFactureRepo) GetLignesByFactureID(factureID string) ([]*entity.LigneFacture, error) {
	if f := r.items[factureID]; f != nil {
		return f.Lignes, nil
	}
	return nil, nil
}

// ── avoirs ───────────────────────────────────────────────────────────────────

type fakeAvoirRepo struct {
	items map[string]*entity.Avoir
}

func (r *fakeAvoirRepo) Create(a *entity.Avoir) error { r.items[a.ID] = a; return nil }
func (r *fakeAvoirRepo) Update(a *entity.Avoir) error { r.items[a.ID] = a; return nil }
func (r *fakeAvoirRepo) GetByID(id string) (*entity.Avoir, error) {
	return r.items[id], nil
}
func (r *fakeAvoirRepo) GetWithLignes(id string) (*entity.Avoir, error) {
	return r.items[id], nil
}
func (r *fakeAvoirRepo) ListByFactureID(factureID string) ([]*entity.Avoir, error) {
	var out []*entity.Avoir
	for _, a := range r.items {
		if a.FactureID == factureID {
			out = append(out, a)
		}
	}
	return out, nil
}
func (r *fakeAvoirRepo) SumTTCByFactureID(factureID, excludeID string) (decimal.Decimal, error) {
	somme := decimal.Zero
	for _, a := range r.items {
		if a.FactureID != factureID || a.ID == excludeID {
			continue
		}
		if a.Statut == entity.AvoirBrouillon || a.Statut == entity.AvoirAnnule {
			continue
		}
		somme = somme.Add(a.MontantTTC)
	}
	return somme, nil
}
func (r *fakeAvoirRepo) ListEmittedByYear(string, int) ([]*entity.Avoir, error) {
	return nil, nil
}
func (r *fakeAvoirRepo) CreateLigne(*entity.LigneAvoir) error { return nil }
func (r *fakeAvoirRepo) GetLignesByAvoirID(avoirID string) ([]*entity.LigneAvoir, error) {
	if a := r.items[avoirID]; a != nil {
		return a.Lignes, nil
	}
	return nil, nil
}

// ── séquences et audit ───────────────────────────────────────────────────────

type fakeSequenceRepo struct {
	next int
}

func (r *fakeSequenceRepo) NextNumber(companyID, documentType string) (string, error) {
	r.next++
	return fmt.Sprintf("%s-%d-%04d", documentType, time.Now().Year(), r.next), nil
}

type auditEntry struct {
	entityType, entityID, action, oldValue, newValue string
}

type fakeAuditRepo struct {
	records []auditEntry
}

func (r *fakeAuditRepo) Record(entityType, entityID, action, oldValue, newValue string) error {
	r.records = append(r.records, auditEntry{entityType, entityID, action, oldValue, newValue})
	return nil
}

func (r *fakeAuditRepo) actions() []string {
	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.action)
	}
	return out
}

// ── collaborateurs ───────────────────────────────────────────────────────────

type fakeSender struct {
	sent []string // "type:numero:canal"
	fail error
}

func (s *fakeSender) Send(_ context.Context, documentType, _, numero, canal string) (SendReceipt, error) {
	if s.fail != nil {
		return SendReceipt{}, s.fail
	}
	if canal == "" {
		canal = "email"
	}
	s.sent = append(s.sent, documentType+":"+numero+":"+canal)
	return SendReceipt{SentAt: time.Now(), Channel: canal}, nil
}

type fakeClientRepo struct {
	items map[string]*entity.Client
}

func (r *fakeClientRepo) Create(c *entity.Client) error { r.items[c.ID] = c; return nil }
func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	return r.items[id], nil
}
func (r *fakeClientRepo) Update(c *entity.Client) error { r.items[c.ID] = c; return nil }
func (r *fakeClientRepo) ListByCompany(string, int, int) ([]*entity.Client, error) {
	return nil, nil
}

type fakeCompanyRepo struct {
	items map[string]*entity.Company
}

func (r *fakeCompanyRepo) Create(c *entity.Company) error { r.items[c.ID] = c; return nil }
func (r *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	return r.items[id], nil
}
func (r *fakeCompanyRepo) GetBySIREN(siren string) (*entity.Company, error) {
	for _, c := range r.items {
		if c.SIREN == siren {
			return c, nil
		}
	}
	return nil, nil
}
func (r *fakeCompanyRepo) Update(c *entity.Company) error { r.items[c.ID] = c; return nil }
func (r *fakeCompanyRepo) List(int, int) ([]*entity.Company, error) {
	return nil, nil
}

type fakeCatalogueRepo struct {
	items map[string]*entity.CatalogueEntry
}

func (r *fakeCatalogueRepo) GetByID(id string) (*entity.CatalogueEntry, error) {
	return r.items[id], nil
}
func (r *fakeCatalogueRepo) ListByCompany(string, int, int) ([]*entity.CatalogueEntry, error) {
	return nil, nil
}
func (r *fakeCatalogueRepo) Create(e *entity.CatalogueEntry) error { r.items[e.ID] = e; return nil }
func (r *fakeCatalogueRepo) Update(e *entity.CatalogueEntry) error { r.items[e.ID] = e; return nil }
