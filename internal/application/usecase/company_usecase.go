package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturio/facturation-api/internal/application/dto"
	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

// Taux normal français, appliqué quand la société n'en fixe pas d'autre.
var tauxNormal = decimal.New(20, 0)

// CompanyUseCase : gestion des sociétés émettrices et de leurs paramètres
// de facturation.
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construit le cas d'usage avec le port de persistance.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create crée une société. domain.ErrDuplicate si le SIREN existe déjà.
func (uc *CompanyUseCase) Create(in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if in.Name == "" || len(in.SIREN) != 9 {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetBySIREN(in.SIREN)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	taux := tauxNormal
	if in.DefaultTauxTVA != nil {
		if in.DefaultTauxTVA.IsNegative() || in.DefaultTauxTVA.GreaterThan(decimal.NewFromInt(100)) {
			return nil, domain.ErrInvalidInput
		}
		taux = *in.DefaultTauxTVA
	}
	tvaEnabled := true
	if in.TVAEnabled != nil {
		tvaEnabled = *in.TVAEnabled
	}
	now := time.Now()
	company := &entity.Company{
		ID:             uuid.New().String(),
		Name:           in.Name,
		SIREN:          in.SIREN,
		NumeroTVA:      in.NumeroTVA,
		Address:        in.Address,
		Phone:          in.Phone,
		Email:          in.Email,
		Status:         "active",
		DefaultTauxTVA: taux,
		TVAEnabled:     tvaEnabled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID retourne une société par son ID.
func (uc *CompanyUseCase) GetByID(id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, nil
	}
	return entityToCompanyResponse(company), nil
}

// List liste les sociétés avec pagination.
func (uc *CompanyUseCase) List(limit, offset int) ([]*dto.CompanyResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, entityToCompanyResponse(c))
	}
	return out, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:             c.ID,
		Name:           c.Name,
		SIREN:          c.SIREN,
		NumeroTVA:      c.NumeroTVA,
		Address:        c.Address,
		Phone:          c.Phone,
		Email:          c.Email,
		Status:         c.Status,
		DefaultTauxTVA: c.DefaultTauxTVA,
		TVAEnabled:     c.TVAEnabled,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
