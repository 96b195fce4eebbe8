// Package user resolves the identity behind an access token.
package user

import (
	"context"

	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
)

func NewService(repository userRepository) *Service {
	return &Service{
		repository: repository,
	}
}

type userRepository interface {
	create(ctx context.Context, u *model.User) error
	findById(ctx context.Context, id uuid.UUID) (*model.User, error)
	findByEmail(ctx context.Context, email string) (*model.User, error)
}

type Service struct {
	repository userRepository
}

func (s Service) Create(ctx context.Context, user *model.User) error {
	return s.repository.create(ctx, user)
}

func (s Service) FindById(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repository.findById(ctx, id)
}

func (s Service) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.repository.findByEmail(ctx, email)
}
