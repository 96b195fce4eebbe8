package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) create(ctx context.Context, u *model.User) error {
	ctx = context.WithoutCancel(ctx)
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("user %q already exists", u.Email)
	}

	return err
}

func (r repository) findById(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u *model.User
	err := r.db.
		WithContext(ctx).
		First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find user with id %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user with id %q: %v", id, err)
	}
	return u, nil
}

func (r repository) findByEmail(ctx context.Context, email string) (*model.User, error) {
	var u *model.User
	err := r.db.
		WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("failed to find user with email %q", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user with email %q: %v", email, err)
	}
	return u, nil
}
