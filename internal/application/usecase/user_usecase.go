package usecase

import (
	"time"

	"github.com/facturio/facturation-api/internal/application/dto"
	"github.com/facturio/facturation-api/internal/domain"
	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/domain/repository"
)

// UserUseCase : gestion des utilisateurs d'une société (lecture et rôles).
// L'inscription et la connexion restent dans le cas d'usage d'auth.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construit le cas d'usage avec le port de persistance.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// GetByID retourne un utilisateur de la société.
func (uc *UserUseCase) GetByID(companyID, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(id)
	if err != nil || user == nil {
		return nil, domain.ErrNotFound
	}
	if user.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return entityToUserResponse(user), nil
}

// ListByCompany liste les utilisateurs de la société.
func (uc *UserUseCase) ListByCompany(companyID string, limit, offset int) ([]*dto.UserResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	users, err := uc.repo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, entityToUserResponse(u))
	}
	return out, nil
}

// ChangerRole modifie le rôle d'un utilisateur de la société.
func (uc *UserUseCase) ChangerRole(companyID, id, role string) (*dto.UserResponse, error) {
	if role != entity.RoleAdmin && role != entity.RoleComptable && role != entity.RoleCommercial {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.repo.GetByID(id)
	if err != nil || user == nil {
		return nil, domain.ErrNotFound
	}
	if user.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(user); err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
